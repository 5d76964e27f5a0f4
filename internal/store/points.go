// Package store persists published layouts in PostgreSQL so other services
// can query map points with SQL.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"companymap/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS map_points (
	name         TEXT PRIMARY KEY,
	layout_id    TEXT NOT NULL,
	lat          DOUBLE PRECISION NOT NULL,
	lon          DOUBLE PRECISION NOT NULL,
	original_lat DOUBLE PRECISION NOT NULL,
	original_lon DOUBLE PRECISION NOT NULL,
	jittered     BOOLEAN NOT NULL DEFAULT FALSE,
	info         JSONB NOT NULL DEFAULT '{}'::jsonb,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS map_points_layout_id_idx ON map_points (layout_id);
`

const upsertPoint = `
INSERT INTO map_points (name, layout_id, lat, lon, original_lat, original_lon, jittered, info, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (name) DO UPDATE SET
	layout_id    = EXCLUDED.layout_id,
	lat          = EXCLUDED.lat,
	lon          = EXCLUDED.lon,
	original_lat = EXCLUDED.original_lat,
	original_lon = EXCLUDED.original_lon,
	jittered     = EXCLUDED.jittered,
	info         = EXCLUDED.info,
	updated_at   = EXCLUDED.updated_at`

const deleteStale = `DELETE FROM map_points WHERE layout_id <> $1`

// DB is the subset of *pgxpool.Pool and pgx.Tx used by PointStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TxBeginner starts transactions; *pgxpool.Pool implements it.
type TxBeginner interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PointStore writes layouts to the map_points table.
type PointStore struct {
	db     TxBeginner
	logger zerolog.Logger
}

func NewPointStore(db TxBeginner, logger zerolog.Logger) *PointStore {
	return &PointStore{db: db, logger: logger}
}

// Connect opens a pgx pool for dsn and checks it with a ping.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return pool, nil
}

// Migrate creates the map_points table when it does not exist.
func (s *PointStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate map_points: %w", err)
	}
	return nil
}

// Publish replaces the stored points with the points of l in one
// transaction. Points no longer in the layout are removed.
func (s *PointStore) Publish(ctx context.Context, l *models.Layout) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := writePoints(ctx, tx, l); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteStale, l.ID)
	if err != nil {
		return fmt.Errorf("failed to delete stale points: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit layout %s: %w", l.ID, err)
	}

	s.logger.Info().
		Str("layout_id", l.ID).
		Int("points", len(l.Points)).
		Int64("removed", tag.RowsAffected()).
		Msg("Layout written to postgres")
	return nil
}

func writePoints(ctx context.Context, db DB, l *models.Layout) error {
	for _, p := range l.Points {
		info, err := json.Marshal(p.CompanyInfo)
		if err != nil {
			return fmt.Errorf("failed to encode info for %q: %w", p.Name, err)
		}
		if _, err := db.Exec(ctx, upsertPoint,
			p.Name, l.ID, p.Lat, p.Lon, p.Original.Lat, p.Original.Lon, p.Jittered, info, l.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert point %q: %w", p.Name, err)
		}
	}
	return nil
}
