package kafkaclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"companymap/internal/models"
)

// EventLayoutPublished is the type of events written after a layout is built.
const EventLayoutPublished = "layout.published"

// KafkaWriter is the part of *kafka.Writer used by Publisher.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// LayoutEvent announces a new layout to downstream consumers.
type LayoutEvent struct {
	Type           string    `json:"type"`
	LayoutID       string    `json:"layoutId"`
	CreatedAt      time.Time `json:"createdAt"`
	Source         string    `json:"source,omitempty"`
	Points         int       `json:"points"`
	PointsJittered int       `json:"pointsJittered"`
	GroupsJittered int       `json:"groupsJittered"`
}

// Publisher writes layout events keyed by layout ID.
type Publisher struct {
	writer KafkaWriter
	logger zerolog.Logger
}

func NewPublisher(broker, topic string, logger zerolog.Logger) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}, logger)
}

func NewPublisherWithWriter(w KafkaWriter, logger zerolog.Logger) *Publisher {
	return &Publisher{writer: w, logger: logger.With().Str("component", "kafka_publisher").Logger()}
}

// Publish writes one LayoutEvent for l.
func (p *Publisher) Publish(ctx context.Context, l *models.Layout) error {
	value, err := json.Marshal(LayoutEvent{
		Type:           EventLayoutPublished,
		LayoutID:       l.ID,
		CreatedAt:      l.CreatedAt,
		Source:         l.Source,
		Points:         l.Stats.Points,
		PointsJittered: l.Stats.PointsJittered,
		GroupsJittered: l.Stats.GroupsJittered,
	})
	if err != nil {
		return fmt.Errorf("failed to encode layout event: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(l.ID), Value: value}); err != nil {
		return fmt.Errorf("failed to write layout event: %w", err)
	}
	p.logger.Info().Str("layout_id", l.ID).Msg("Layout event published")
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
