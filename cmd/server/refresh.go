package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"companymap/internal/keys"
	"companymap/internal/layout"
	"companymap/internal/models"
	"companymap/internal/storage"
)

type datasetStore interface {
	GetDataset(ctx context.Context, bucket, key string) ([]models.Company, error)
	GetLayout(ctx context.Context, bucket, key string) (*models.Layout, error)
}

type preparer interface {
	Prepare(ctx context.Context, source string, companies []models.Company) (*models.Layout, error)
}

// refresher rebuilds and publishes the layout whenever a dataset is loaded.
type refresher struct {
	store     datasetStore
	preparer  preparer
	publisher layout.Sink
	holder    *layout.Holder
	logger    zerolog.Logger
}

func (r *refresher) apply(ctx context.Context, source string, companies []models.Company) error {
	l, err := r.preparer.Prepare(ctx, source, companies)
	if err != nil {
		return fmt.Errorf("failed to prepare layout from %s: %w", source, err)
	}
	if err := r.publisher.Publish(ctx, l); err != nil {
		return fmt.Errorf("failed to publish layout %s: %w", l.ID, err)
	}
	return nil
}

// bootstrap loads the configured dataset once at startup. When it is not
// there yet, the last stored layout is served until a dataset event arrives.
func (r *refresher) bootstrap(ctx context.Context, bucket, key, layoutBucket string) error {
	companies, err := r.store.GetDataset(ctx, bucket, key)
	if err == nil {
		return r.apply(ctx, bucket+"/"+key, companies)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return err
	}

	r.logger.Warn().Str("bucket", bucket).Str("key", key).Msg("Dataset not found, trying last stored layout")
	l, lerr := r.store.GetLayout(ctx, layoutBucket, keys.LatestLayout)
	if errors.Is(lerr, storage.ErrNotFound) {
		r.logger.Warn().Msg("No stored layout, waiting for dataset events")
		return nil
	}
	if lerr != nil {
		return lerr
	}
	return r.holder.Publish(ctx, l)
}
