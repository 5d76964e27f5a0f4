package kafkaclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companymap/internal/models"
)

type fakeWriter struct {
	written []kafka.Message
	err     error
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(w, zerolog.Nop())

	l := &models.Layout{
		ID:        "0b7c",
		CreatedAt: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
		Source:    "companies/companies.json",
		Stats:     models.LayoutStats{Companies: 4, Points: 3, PointsJittered: 2, GroupsJittered: 1},
	}
	require.NoError(t, p.Publish(context.Background(), l))

	require.Len(t, w.written, 1)
	assert.Equal(t, "0b7c", string(w.written[0].Key))
	assert.JSONEq(t, `{
		"type": "layout.published",
		"layoutId": "0b7c",
		"createdAt": "2026-10-15T12:00:00Z",
		"source": "companies/companies.json",
		"points": 3,
		"pointsJittered": 2,
		"groupsJittered": 1
	}`, string(w.written[0].Value))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	err := NewPublisherWithWriter(w, zerolog.Nop()).Publish(context.Background(), &models.Layout{ID: "x"})

	require.Error(t, err)
	assert.ErrorContains(t, err, "leader not available")
}
