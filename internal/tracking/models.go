package tracking

import "time"

// Result is one race watched to the end.
type Result struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Track       string    `json:"track"`
	PointCount  int       `json:"point_count"`
	DistanceKm  float64   `json:"distance_km"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	DurationSec int64     `json:"duration_sec"`
}

type Filter struct {
	Track string
	Limit int
}

type TrackStats struct {
	Track      string  `json:"track"`
	Races      int     `json:"races"`
	FastestSec float64 `json:"fastest_sec"`
	AverageSec float64 `json:"average_sec"`
}
