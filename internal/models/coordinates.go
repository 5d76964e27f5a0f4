package models

import "math"

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are set. Zero is treated as unset,
// matching how the dataset marks unknown locations.
func (c Coordinates) Valid() bool {
	return c.Lat != 0 && c.Lon != 0 && finite(c.Lat) && finite(c.Lon)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
