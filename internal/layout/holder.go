package layout

import (
	"context"
	"errors"
	"sync"

	"companymap/internal/models"
)

// ErrNoLayout is returned by Holder.Latest before any layout was published.
var ErrNoLayout = errors.New("layout: none published yet")

// Holder keeps the most recently published layout in memory. It is a Sink
// and is safe for concurrent use.
type Holder struct {
	mu     sync.RWMutex
	latest *models.Layout
}

func NewHolder() *Holder {
	return &Holder{}
}

func (h *Holder) Publish(_ context.Context, l *models.Layout) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = l
	return nil
}

// Latest returns the current layout. Callers must not modify it.
func (h *Holder) Latest() (*models.Layout, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return nil, ErrNoLayout
	}
	return h.latest, nil
}
