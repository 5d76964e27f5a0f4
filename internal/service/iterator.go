// Package service turns storage notifications delivered over Kafka into
// loaded objects. An Iterator decodes each MinIO notification, loads the
// referenced object with a LoaderFunc and commits the offset once the
// object has been handed on.
//
// Kafka commits are per-partition high-water marks, so a message whose
// object cannot be loaded stops the iterator: committing any later offset
// would acknowledge the failed one as well.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7/pkg/notification"
	"github.com/rs/zerolog"
)

// Iterator is generic over the loaded item type T. It does not own the
// message source; callers start and stop their consumer themselves.
type Iterator[T any] struct {
	msgIterator MessageIterator
	loader      LoaderFunc[T]
	filter      func(bucket, key string) bool
	attempts    int
	backoff     time.Duration
	logger      zerolog.Logger

	err error
}

// Option configures an Iterator.
type Option func(*options)

type options struct {
	filter   func(bucket, key string) bool
	attempts int
	backoff  time.Duration
}

// WithKeyFilter drops events whose bucket/key do not satisfy keep. Dropped
// events are committed without loading.
func WithKeyFilter(keep func(bucket, key string) bool) Option {
	return func(o *options) { o.filter = keep }
}

// WithRetry sets how often a failing load is tried before the iterator
// stops, and the delay before the first retry. The delay doubles per retry.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		if attempts > 0 {
			o.attempts = attempts
		}
		o.backoff = backoff
	}
}

// OnlyKey keeps events for exactly bucket/key.
func OnlyKey(bucket, key string) Option {
	return WithKeyFilter(func(b, k string) bool { return b == bucket && k == key })
}

func NewIterator[T any](iterator MessageIterator, loader LoaderFunc[T], logger zerolog.Logger, opts ...Option) *Iterator[T] {
	o := options{
		filter:   func(string, string) bool { return true },
		attempts: 3,
		backoff:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Iterator[T]{
		msgIterator: iterator,
		loader:      loader,
		filter:      o.filter,
		attempts:    o.attempts,
		backoff:     o.backoff,
		logger:      logger.With().Str("component", "iterator").Logger(),
	}
}

// Objects streams loaded objects until the message channel closes, ctx is
// done, or a load still fails after all retries. Undecodable messages and
// events rejected by the key filter are committed. A failed load is never
// committed and ends the stream; Err reports it once the channel is closed,
// and the message is redelivered when the consumer group restarts.
func (it *Iterator[T]) Objects(ctx context.Context) <-chan *FetchedObject[T] {
	out := make(chan *FetchedObject[T])
	go func() {
		defer close(out)

		for {
			var msg kafkaMessage
			select {
			case <-ctx.Done():
				return
			case m, ok := <-it.msgIterator.Messages():
				if !ok {
					return
				}
				msg = m
			}

			fetched, err := it.fetch(ctx, msg)
			if err != nil {
				if ctx.Err() == nil {
					it.err = err
					it.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Stopping before committing past a failed load")
				}
				return
			}
			if fetched != nil {
				select {
				case out <- fetched:
				case <-ctx.Done():
					return
				}
			}
			if err := it.msgIterator.CommitOffset(ctx, msg); err != nil {
				it.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Failed to commit offset")
			}
		}
	}()
	return out
}

// Err returns the load failure that stopped the iterator, if any. It is only
// meaningful after the channel returned by Objects has been closed.
func (it *Iterator[T]) Err() error {
	return it.err
}

// fetch returns the loaded object, or nil for messages that are committed
// without one. An error means the message must not be committed.
func (it *Iterator[T]) fetch(ctx context.Context, msg kafkaMessage) (*FetchedObject[T], error) {
	var info notification.Info
	if err := json.Unmarshal(msg.Value, &info); err != nil {
		it.logger.Error().Err(err).Int64("offset", msg.Offset).Msg("Error unmarshalling notification")
		return nil, nil
	}
	if len(info.Records) == 0 {
		it.logger.Warn().Int64("offset", msg.Offset).Msg("Notification without records")
		return nil, nil
	}

	event := info.Records[0]
	bucket := event.S3.Bucket.Name
	key, err := url.QueryUnescape(event.S3.Object.Key)
	if err != nil {
		it.logger.Error().Err(err).Str("key", event.S3.Object.Key).Msg("Error decoding object key")
		return nil, nil
	}
	if !it.filter(bucket, key) {
		it.logger.Debug().Str("bucket", bucket).Str("key", key).Msg("Skipping event")
		return nil, nil
	}

	data, err := it.load(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("loading %s/%s at offset %d: %w", bucket, key, msg.Offset, err)
	}
	return &FetchedObject[T]{Data: data, Event: event, Bucket: bucket, Key: key}, nil
}

func (it *Iterator[T]) load(ctx context.Context, bucket, key string) (T, error) {
	delay := it.backoff
	for attempt := 1; ; attempt++ {
		data, err := it.loader(ctx, bucket, key)
		if err == nil {
			return data, nil
		}
		it.logger.Error().Err(err).Str("bucket", bucket).Str("key", key).Int("attempt", attempt).Msg("Error loading object")
		if attempt >= it.attempts {
			return data, err
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return data, ctx.Err()
		}
		delay *= 2
	}
}
