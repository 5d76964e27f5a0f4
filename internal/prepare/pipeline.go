package prepare

import (
	"github.com/rs/zerolog"

	"companymap/internal/enrich"
	"companymap/internal/models"
)

// Enrichers are the optional external lookups of the company pipeline.
// Nil fields leave the corresponding step out.
type Enrichers struct {
	Geocoder   enrich.Geocoder
	Summarizer enrich.Summarizer
	Observer   enrich.GeocodeObserver
}

// NewCompanyPipeline builds the standard enrichment pipeline: country names
// are normalised first, then geocoding and article lookups run side by side.
func NewCompanyPipeline(logger zerolog.Logger, e Enrichers) *enrich.Pipeline[models.Company] {
	stages := []enrich.Stage[models.Company]{
		enrich.NewStage(enrich.CountryStep),
	}
	var lookups []enrich.Step[models.Company]
	if e.Geocoder != nil {
		lookups = append(lookups, enrich.GeocodeStep(e.Geocoder, e.Observer))
	}
	if e.Summarizer != nil {
		lookups = append(lookups, enrich.SummaryStep(e.Summarizer))
	}
	if len(lookups) > 0 {
		stages = append(stages, enrich.NewStage(lookups...))
	}
	return enrich.NewPipeline(logger, stages...)
}
