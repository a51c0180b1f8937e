package race

import "backend-racehub/internal/track"

type State string

const (
	StateIdle     State = "idle"
	StateRacing   State = "racing"
	StateFinished State = "finished"
)

// Frame is one animation step: the progress bar value plus the marker to
// draw on the track polyline.
type Frame struct {
	SessionID   string       `json:"session_id"`
	Track       string       `json:"track,omitempty"`
	Cursor      int          `json:"cursor"`
	TrackLength int          `json:"track_length"`
	Fraction    float64      `json:"fraction"`
	Marker      *track.Point `json:"marker,omitempty"`
	ShowMarker  bool         `json:"show_marker"`
	State       State        `json:"state"`

	path track.Track
}

// Path returns the selected track the frame was taken on.
func (f Frame) Path() track.Track { return f.path }

type Summary struct {
	SessionID       string  `json:"session_id"`
	Track           string  `json:"track,omitempty"`
	State           State   `json:"state"`
	PointsTravelled int     `json:"points_travelled"`
	PointCount      int     `json:"point_count"`
	DistanceKm      float64 `json:"distance_km"`
	TrackLengthKm   float64 `json:"track_length_km"`
	Fraction        float64 `json:"fraction"`
}
