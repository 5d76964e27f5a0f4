package models

import "time"

// MapPoint is a company placed on the map after collocated markers have been
// spread apart. Original holds the headquarters position before displacement.
type MapPoint struct {
	Name     string      `json:"name"`
	Lat      float64     `json:"lat"`
	Lon      float64     `json:"lon"`
	Original Coordinates `json:"original"`
	Jittered bool        `json:"jittered"`
	CompanyInfo
}

// LayoutStats summarises a preparation run.
type LayoutStats struct {
	Companies      int            `json:"companies"`
	Points         int            `json:"points"`
	PointsJittered int            `json:"pointsJittered"`
	GroupsJittered int            `json:"groupsJittered"`
	Skipped        map[string]int `json:"skipped,omitempty"`
}

// Layout is the full, map-ready point list produced from one dataset load.
type Layout struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"createdAt"`
	Source    string      `json:"source,omitempty"`
	Points    []MapPoint  `json:"points"`
	Stats     LayoutStats `json:"stats"`
}
