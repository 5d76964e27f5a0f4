// Package layout distributes prepared layouts to the places that serve them.
package layout

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"companymap/internal/models"
)

// Sink receives every published layout.
type Sink interface {
	Publish(ctx context.Context, l *models.Layout) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, l *models.Layout) error

func (f SinkFunc) Publish(ctx context.Context, l *models.Layout) error { return f(ctx, l) }

type namedSink struct {
	name string
	sink Sink
}

// Publisher hands a layout to its sinks in registration order and stops at
// the first failure.
type Publisher struct {
	sinks  []namedSink
	logger zerolog.Logger
}

func NewPublisher(logger zerolog.Logger) *Publisher {
	return &Publisher{logger: logger}
}

// Add registers a sink under name, which is used in logs and errors.
func (p *Publisher) Add(name string, s Sink) *Publisher {
	p.sinks = append(p.sinks, namedSink{name: name, sink: s})
	return p
}

func (p *Publisher) Publish(ctx context.Context, l *models.Layout) error {
	for _, s := range p.sinks {
		if err := s.sink.Publish(ctx, l); err != nil {
			return fmt.Errorf("publish layout %s to %s: %w", l.ID, s.name, err)
		}
		p.logger.Debug().Str("sink", s.name).Str("layout_id", l.ID).Msg("Layout published")
	}
	return nil
}
