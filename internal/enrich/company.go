package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"companymap/internal/models"
	"companymap/pkg/geo"
	"companymap/pkg/location"
	"companymap/pkg/wikipedia"
)

// Geocoder resolves a free-text place to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (location.Location, error)
}

// Summarizer finds a short article about a company.
type Summarizer interface {
	Summary(ctx context.Context, title string) (wikipedia.Summary, error)
}

// GeocodeObserver is notified of each geocoding attempt.
type GeocodeObserver interface {
	ObserveGeocode(result string)
}

// CountryStep normalises the country of a company's primary headquarters to
// its canonical name. When the country is missing but the city carries one
// ("Austin, USA"), the country is split off the city.
func CountryStep(_ context.Context, c *models.Company) error {
	hq, ok := c.PrimaryHeadquarters()
	if !ok {
		return nil
	}
	if hq.Country == "" && strings.Contains(hq.City, ",") {
		if country := geo.ExtractCountry(hq.City); geo.IsCountry(country) {
			hq.Country = country
			hq.City = strings.TrimSpace(hq.City[:strings.LastIndex(hq.City, ",")])
		}
	}
	if canonical, ok := geo.CanonicalCountry(hq.Country); ok {
		hq.Country = canonical
	}
	return nil
}

// GeocodeStep fills in coordinates for a primary headquarters that has a city
// or country but no usable position. obs may be nil.
func GeocodeStep(g Geocoder, obs GeocodeObserver) Step[models.Company] {
	observe := func(result string) {
		if obs != nil {
			obs.ObserveGeocode(result)
		}
	}
	return func(ctx context.Context, c *models.Company) error {
		hq, ok := c.PrimaryHeadquarters()
		if !ok || hq.Coordinates().Valid() {
			return nil
		}
		query := placeQuery(hq.City, hq.Country)
		if query == "" {
			return nil
		}

		loc, err := g.Geocode(ctx, query)
		switch {
		case errors.Is(err, location.ErrNoResults):
			observe("miss")
			return nil
		case err != nil:
			observe("error")
			return fmt.Errorf("geocoding headquarters of %q: %w", c.Name, err)
		}

		coords := models.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}
		if !coords.Valid() {
			observe("miss")
			return nil
		}
		hq.SetCoordinates(coords)
		if hq.Country == "" {
			hq.Country = loc.Country
		}
		observe("ok")
		return nil
	}
}

func placeQuery(city, country string) string {
	var parts []string
	for _, p := range []string{city, country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// SummaryStep fills an empty description or image URL from the company's
// Wikipedia article. Fields already present are never replaced.
func SummaryStep(s Summarizer) Step[models.Company] {
	return func(ctx context.Context, c *models.Company) error {
		name := strings.TrimSpace(c.Name)
		if name == "" || (c.Description != "" && c.ImageURL != "") {
			return nil
		}
		sum, err := s.Summary(ctx, name)
		if errors.Is(err, wikipedia.ErrNoArticle) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("summary of %q: %w", c.Name, err)
		}
		if c.Description == "" {
			c.Description = sum.Extract
		}
		if c.ImageURL == "" {
			c.ImageURL = sum.ImageURL
		}
		return nil
	}
}
