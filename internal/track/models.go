package track

import (
	"context"

	"github.com/paulmach/orb/geojson"
)

type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Track is a named circuit outline. Points are ordered and never mutated
// after loading.
type Track struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

type Bounds struct {
	SouthWest Point `json:"south_west"`
	NorthEast Point `json:"north_east"`
}

// Source looks tracks up by name. Both the in-memory CSV catalog and the
// Postgres store satisfy it.
type Source interface {
	Get(ctx context.Context, name string) (Track, error)
	Names(ctx context.Context) ([]string, error)
}

// Detail is the outward view of one track: the outline as GeoJSON plus
// what a map needs to frame it.
type Detail struct {
	Name       string           `json:"name"`
	PointCount int              `json:"point_count"`
	LengthKm   float64          `json:"length_km"`
	Center     Point            `json:"center"`
	Feature    *geojson.Feature `json:"feature"`
	Bounds     *Bounds          `json:"bounds,omitempty"`
}
