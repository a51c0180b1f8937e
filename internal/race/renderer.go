package race

import (
	"context"
	"encoding/json"
	"errors"

	"backend-racehub/internal/track"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Broadcaster is the slice of the stream hub a renderer needs.
type Broadcaster interface {
	Broadcast(sessionID string, payload []byte)
}

// HubRenderer publishes frames as map payloads to every viewer of the session.
type HubRenderer struct {
	hub Broadcaster
}

func NewHubRenderer(hub Broadcaster) *HubRenderer {
	return &HubRenderer{hub: hub}
}

func (h *HubRenderer) Render(_ context.Context, frame Frame) error {
	payload, err := EncodeFrame(frame)
	if err != nil {
		return err
	}
	h.hub.Broadcast(frame.SessionID, payload)
	return nil
}

// Renderers fans one frame out to several renderers. Every renderer sees
// the frame even when an earlier one fails.
type Renderers []Renderer

func (rs Renderers) Render(ctx context.Context, frame Frame) error {
	var errs []error
	for _, r := range rs {
		if err := r.Render(ctx, frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type framePayload struct {
	Frame
	Map *geojson.FeatureCollection `json:"map"`
}

// EncodeFrame renders a frame as JSON carrying the progress fields and a
// GeoJSON collection with the track polyline, the marker and, when shown,
// the trail of visited points.
func EncodeFrame(frame Frame) ([]byte, error) {
	return json.Marshal(framePayload{Frame: frame, Map: FrameMap(frame)})
}

func FrameMap(frame Frame) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	path := frame.Path()
	if path.Name != "" {
		line := path.Feature()
		line.Properties["role"] = "track"
		fc.Append(line)
	}
	if frame.Marker != nil {
		marker := geojson.NewFeature(frame.Marker.Orb())
		marker.Properties["role"] = "marker"
		marker.Properties["cursor"] = frame.Cursor
		marker.Properties["fraction"] = frame.Fraction
		fc.Append(marker)
	}
	if frame.ShowMarker && len(path.Points) > 0 {
		trail := geojson.NewFeature(trailPoints(path.Points, frame.Cursor))
		trail.Properties["role"] = "trail"
		fc.Append(trail)
	}
	return fc
}

// trailPoints are the points visited up to and including cursor.
func trailPoints(points []track.Point, cursor int) orb.MultiPoint {
	last := min(cursor, len(points)-1)
	mp := make(orb.MultiPoint, 0, last+1)
	for _, p := range points[:last+1] {
		mp = append(mp, p.Orb())
	}
	return mp
}
