package track

import (
	"backend-racehub/internal/shared/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Bounds returns the south-west and north-east corners enclosing the track,
// the box a map fits its viewport to. ok is false for an empty track.
func (t Track) Bounds() (Bounds, bool) {
	if len(t.Points) == 0 {
		return Bounds{}, false
	}
	b := t.LineString().Bound()
	return Bounds{
		SouthWest: Point{Lat: b.Min.Lat(), Lng: b.Min.Lon()},
		NorthEast: Point{Lat: b.Max.Lat(), Lng: b.Max.Lon()},
	}, true
}

// Center is the median latitude and median longitude of the outline.
func (t Track) Center() Point {
	lats := make([]float64, len(t.Points))
	lngs := make([]float64, len(t.Points))
	for i, p := range t.Points {
		lats[i] = p.Lat
		lngs[i] = p.Lng
	}
	return Point{Lat: geo.Median(lats), Lng: geo.Median(lngs)}
}

func (t Track) LengthKm() float64 {
	return DistanceKm(t.Points)
}

// DistanceKm sums the haversine distance along consecutive points.
func DistanceKm(points []Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		total += geo.HaversineKm(a.Lat, a.Lng, b.Lat, b.Lng)
	}
	return total
}

// LineString returns the outline in GeoJSON axis order (lon, lat).
func (t Track) LineString() orb.LineString {
	ls := make(orb.LineString, len(t.Points))
	for i, p := range t.Points {
		ls[i] = p.Orb()
	}
	return ls
}

func (t Track) Feature() *geojson.Feature {
	f := geojson.NewFeature(t.LineString())
	f.Properties["name"] = t.Name
	f.Properties["point_count"] = len(t.Points)
	return f
}

func (p Point) Orb() orb.Point {
	return orb.Point{p.Lng, p.Lat}
}

func (t Track) Detail() Detail {
	d := Detail{
		Name:       t.Name,
		PointCount: len(t.Points),
		LengthKm:   t.LengthKm(),
		Center:     t.Center(),
		Feature:    t.Feature(),
	}
	if b, ok := t.Bounds(); ok {
		d.Bounds = &b
	}
	return d
}
