package service

import (
	"context"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/segmentio/kafka-go"
)

type kafkaMessage = kafka.Message

// MessageIterator is the consumer side of a Kafka topic.
// *kafkaclient.KafkaConsumer implements it.
type MessageIterator interface {
	// Messages is closed by the implementation when the consumer stops.
	Messages() <-chan kafka.Message

	CommitOffset(ctx context.Context, msg kafka.Message) error
}

// LoaderFunc loads and decodes the object at bucket/key. It must honor ctx.
type LoaderFunc[T any] func(ctx context.Context, bucket, key string) (T, error)

// FetchedObject pairs a loaded object with the event that announced it.
type FetchedObject[T any] struct {
	Data   T
	Event  notification.Event
	Bucket string
	// Key is the URL-decoded object key.
	Key string
}
