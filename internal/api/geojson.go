package api

import "companymap/internal/models"

// FeatureCollection is the GeoJSON (RFC 7946) form of a layout.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string            `json:"type"`
	Geometry   Geometry          `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// Geometry is always a Point; Coordinates are [lon, lat].
type Geometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type FeatureProperties struct {
	Name     string             `json:"name"`
	Jittered bool               `json:"jittered"`
	Original models.Coordinates `json:"original"`
	models.CompanyInfo
}

func toFeatureCollection(l *models.Layout) FeatureCollection {
	fc := FeatureCollection{Type: "FeatureCollection", Features: make([]Feature, 0, len(l.Points))}
	for _, p := range l.Points {
		fc.Features = append(fc.Features, Feature{
			Type:     "Feature",
			Geometry: Geometry{Type: "Point", Coordinates: [2]float64{p.Lon, p.Lat}},
			Properties: FeatureProperties{
				Name:        p.Name,
				Jittered:    p.Jittered,
				Original:    p.Original,
				CompanyInfo: p.CompanyInfo,
			},
		})
	}
	return fc
}
