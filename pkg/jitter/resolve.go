// Package jitter spreads map points that share identical coordinates onto a
// small circle around the shared coordinate so every marker stays visible.
//
// The displacement is fully determined by the members of a collocated group,
// the alphabetical rank of a point's name within its group and a hash of that
// name. Resolving the same input always yields bit-identical output.
package jitter

import (
	"math"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// BaseRadius is the largest displacement, in degrees, applied to a point.
	BaseRadius = 0.0008

	minVariation  = 0.3
	variationSpan = 0.4
)

// Point is a named geographic point carrying an opaque payload. Data is
// copied through the resolver untouched.
type Point[T any] struct {
	Name string
	Lat  float64
	Lon  float64
	Data T
}

// Stats reports how much of the input the resolver displaced.
type Stats struct {
	PointsAffected int `json:"pointsAffected"`
	GroupsAffected int `json:"groupsAffected"`
}

type config struct {
	collation *language.Tag
}

// Option configures a single Resolve call.
type Option func(*config)

// WithCollation orders group members with the locale collator for tag
// instead of the default ordinal comparison.
func WithCollation(tag language.Tag) Option {
	return func(c *config) { c.collation = &tag }
}

// coordKey groups points by exact coordinate value. +0 and -0 compare equal
// and therefore share a group.
type coordKey struct {
	lat, lon float64
}

// Resolve returns a copy of points in which every group of two or more points
// sharing an exact (Lat, Lon) pair has been displaced onto a circle around
// the shared coordinate. Points that are alone at their coordinate, and
// points with a NaN or infinite coordinate, are returned unchanged.
//
// For a group of size n, members are ranked by name (stable, so duplicate
// names keep their input order). The member with rank i is placed at angle
// 2πi/n on a circle of radius Radius(name).
func Resolve[T any](points []Point[T], opts ...Option) ([]Point[T], Stats) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	groups := make(map[coordKey][]int)
	for i, p := range points {
		if !finite(p.Lat) || !finite(p.Lon) {
			continue
		}
		k := coordKey{lat: p.Lat, lon: p.Lon}
		groups[k] = append(groups[k], i)
	}

	out := slices.Clone(points)
	var stats Stats
	compare := cfg.comparer()

	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		// members is already in input order, which the stable sort preserves
		// among equal names.
		ranked := slices.Clone(members)
		slices.SortStableFunc(ranked, func(a, b int) int {
			return compare(points[a].Name, points[b].Name)
		})
		for rank, idx := range ranked {
			out[idx].Lat, out[idx].Lon = displace(points[idx], rank, len(ranked))
		}
		stats.GroupsAffected++
		stats.PointsAffected += len(ranked)
	}

	return out, stats
}

// Radius returns the displacement radius, in degrees, for a point named name.
// It lies in [0.3, 0.7) times BaseRadius.
func Radius(name string) float64 {
	variation := minVariation + float64(HashString(name)%100)/100*variationSpan
	return BaseRadius * variation
}

func displace[T any](p Point[T], rank, size int) (lat, lon float64) {
	angle := 2 * math.Pi * float64(rank) / float64(size)
	r := Radius(p.Name)
	return p.Lat + r*math.Cos(angle), p.Lon + r*math.Sin(angle)
}

func (c config) comparer() func(a, b string) int {
	if c.collation == nil {
		return strings.Compare
	}
	// Collators keep internal buffers, so each call gets its own.
	col := collate.New(*c.collation)
	return col.CompareString
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
