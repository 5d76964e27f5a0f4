package dataset

import (
	"strings"

	"companymap/internal/models"
	"companymap/pkg/jitter"
)

// Reasons a record can be left off the map.
const (
	SkipNoName         = "no_name"
	SkipNoHeadquarters = "no_headquarters"
	SkipNoCoordinates  = "no_coordinates"
)

// Skipped counts dropped records by reason.
type Skipped map[string]int

// Total returns the number of dropped records.
func (s Skipped) Total() int {
	n := 0
	for _, v := range s {
		n += v
	}
	return n
}

// ToPoints maps companies to map points, keeping only records with a name and
// a primary headquarters with usable coordinates. Input order is preserved.
func ToPoints(companies []models.Company) ([]jitter.Point[models.CompanyInfo], Skipped) {
	points := make([]jitter.Point[models.CompanyInfo], 0, len(companies))
	skipped := make(Skipped)

	for i := range companies {
		c := &companies[i]
		name := strings.TrimSpace(c.Name)
		if name == "" {
			skipped[SkipNoName]++
			continue
		}
		hq, ok := c.PrimaryHeadquarters()
		if !ok {
			skipped[SkipNoHeadquarters]++
			continue
		}
		coords := hq.Coordinates()
		if !coords.Valid() {
			skipped[SkipNoCoordinates]++
			continue
		}

		points = append(points, jitter.Point[models.CompanyInfo]{
			Name: name,
			Lat:  coords.Lat,
			Lon:  coords.Lon,
			Data: models.CompanyInfo{
				Description: c.Description,
				Website:     c.Website,
				LogoURL:     c.LogoURL,
				ImageURL:    c.ImageURL,
				City:        hq.City,
				Country:     hq.Country,
			},
		})
	}

	return points, skipped
}
