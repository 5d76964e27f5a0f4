// Package prepare turns a companies dataset into a map-ready layout.
package prepare

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"companymap/internal/dataset"
	"companymap/internal/enrich"
	"companymap/internal/metrics"
	"companymap/internal/models"
	"companymap/pkg/jitter"
)

// Preparer enriches company records, shapes them into points and spreads
// collocated points apart. It holds no per-run state and may be shared.
type Preparer struct {
	pipeline   *enrich.Pipeline[models.Company]
	jitterOpts []jitter.Option
	recorder   *metrics.Recorder
	logger     zerolog.Logger
	now        func() time.Time
	newID      func() string
}

type Option func(*Preparer)

// WithPipeline runs p over the records before they are shaped into points.
func WithPipeline(p *enrich.Pipeline[models.Company]) Option {
	return func(pr *Preparer) { pr.pipeline = p }
}

// WithCollation orders collocated names with the collator for tag.
func WithCollation(tag language.Tag) Option {
	return func(pr *Preparer) { pr.jitterOpts = append(pr.jitterOpts, jitter.WithCollation(tag)) }
}

func WithRecorder(r *metrics.Recorder) Option {
	return func(pr *Preparer) { pr.recorder = r }
}

// WithClock overrides the time source and ID generator.
func WithClock(now func() time.Time, newID func() string) Option {
	return func(pr *Preparer) {
		pr.now = now
		pr.newID = newID
	}
}

func New(logger zerolog.Logger, opts ...Option) *Preparer {
	p := &Preparer{
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare builds a layout from companies. The input slice is not modified.
// source names where the records came from and is stored on the layout.
func (p *Preparer) Prepare(ctx context.Context, source string, companies []models.Company) (*models.Layout, error) {
	start := p.now()
	records := cloneCompanies(companies)

	if p.pipeline != nil && p.pipeline.Len() > 0 {
		if err := p.pipeline.ProcessSlice(ctx, records); err != nil {
			return nil, fmt.Errorf("enrichment interrupted: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	points, skipped := dataset.ToPoints(records)
	resolved, stats := jitter.Resolve(points, p.jitterOpts...)

	mapPoints := make([]models.MapPoint, len(resolved))
	for i, r := range resolved {
		orig := points[i]
		mapPoints[i] = models.MapPoint{
			Name:        r.Name,
			Lat:         r.Lat,
			Lon:         r.Lon,
			Original:    models.Coordinates{Lat: orig.Lat, Lon: orig.Lon},
			Jittered:    r.Lat != orig.Lat || r.Lon != orig.Lon,
			CompanyInfo: r.Data,
		}
	}

	layout := &models.Layout{
		ID:        p.newID(),
		CreatedAt: start.UTC(),
		Source:    source,
		Points:    mapPoints,
		Stats: models.LayoutStats{
			Companies:      len(companies),
			Points:         len(mapPoints),
			PointsJittered: stats.PointsAffected,
			GroupsJittered: stats.GroupsAffected,
			Skipped:        skipped,
		},
	}

	took := p.now().Sub(start)
	p.recorder.ObserveLayout(len(mapPoints), stats.PointsAffected, stats.GroupsAffected, skipped, took)
	p.logger.Info().
		Str("layout_id", layout.ID).
		Str("source", source).
		Int("companies", len(companies)).
		Int("points", len(mapPoints)).
		Int("skipped", skipped.Total()).
		Int("points_jittered", stats.PointsAffected).
		Int("groups_jittered", stats.GroupsAffected).
		Dur("took", took).
		Msg("Layout prepared")

	return layout, nil
}

// cloneCompanies copies records deeply enough that enrichment steps can edit
// headquarters without touching the caller's data.
func cloneCompanies(in []models.Company) []models.Company {
	out := make([]models.Company, len(in))
	for i, c := range in {
		if len(c.Headquarters) > 0 {
			hqs := make([]models.Headquarters, len(c.Headquarters))
			for j, hq := range c.Headquarters {
				if hq.Lat != nil {
					lat := *hq.Lat
					hq.Lat = &lat
				}
				if hq.Lon != nil {
					lon := *hq.Lon
					hq.Lon = &lon
				}
				hqs[j] = hq
			}
			c.Headquarters = hqs
		}
		out[i] = c
	}
	return out
}
