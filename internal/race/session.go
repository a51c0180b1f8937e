package race

import (
	"context"
	"fmt"
	"sync"

	"backend-racehub/internal/track"
)

// Session is the progress state of one viewer: a cursor into the selected
// track's points. Invariant: 0 <= cursor <= trackLength.
type Session struct {
	ID string

	source track.Source

	mu          sync.Mutex
	selected    track.Track
	hasTrack    bool
	cursor      int
	trackLength int
	finished    bool
	showMarker  bool
}

func NewSession(id string, source track.Source) *Session {
	return &Session{
		ID:          id,
		source:      source,
		trackLength: 1,
		showMarker:  true,
	}
}

// SelectTrack looks name up and restarts the race on it from cursor 0. An
// unknown name leaves the session untouched.
func (s *Session) SelectTrack(ctx context.Context, name string) error {
	t, err := s.source.Get(ctx, name)
	if err != nil {
		return fmt.Errorf("select track: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = t
	s.hasTrack = true
	s.cursor = 0
	s.trackLength = len(t.Points)
	s.finished = false
	return nil
}

// Tick emits the frame at the current cursor and advances it. The frame at
// cursor == trackLength is the last one; after it the session is finished
// and Tick reports false.
func (s *Session) Tick() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasTrack || s.finished {
		return Frame{}, false
	}

	frame := s.frameLocked()
	if s.cursor < s.trackLength {
		s.cursor++
	} else {
		s.finished = true
	}
	frame.State = s.stateLocked()
	return frame, true
}

// CurrentMarker returns the point at the cursor, or the last point once the
// cursor reached the end. ok is false before a track is selected or for a
// track without points.
func (s *Session) CurrentMarker() (track.Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markerLocked()
}

func (s *Session) Fraction() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fractionLocked()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// SetMarkerVisible only changes what frames ask the map to draw; progress
// keeps advancing either way.
func (s *Session) SetMarkerVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showMarker = visible
}

// Snapshot returns the current frame without advancing.
func (s *Session) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		SessionID: s.ID,
		State:     s.stateLocked(),
		Fraction:  s.fractionLocked(),
	}
	if !s.hasTrack {
		return sum
	}
	points := s.selected.Points
	travelled := s.cursor
	if travelled > len(points) {
		travelled = len(points)
	}
	sum.Track = s.selected.Name
	sum.PointCount = len(points)
	sum.PointsTravelled = travelled
	if len(points) > 0 {
		last := travelled
		if last > len(points)-1 {
			last = len(points) - 1
		}
		sum.DistanceKm = track.DistanceKm(points[:last+1])
	}
	sum.TrackLengthKm = s.selected.LengthKm()
	return sum
}

func (s *Session) frameLocked() Frame {
	f := Frame{
		SessionID:   s.ID,
		Cursor:      s.cursor,
		TrackLength: s.trackLength,
		Fraction:    s.fractionLocked(),
		ShowMarker:  s.showMarker,
		State:       s.stateLocked(),
	}
	if s.hasTrack {
		f.Track = s.selected.Name
		f.path = s.selected
	}
	if p, ok := s.markerLocked(); ok {
		f.Marker = &p
	}
	return f
}

func (s *Session) markerLocked() (track.Point, bool) {
	if !s.hasTrack || len(s.selected.Points) == 0 {
		return track.Point{}, false
	}
	if s.cursor >= len(s.selected.Points) {
		return s.selected.Points[len(s.selected.Points)-1], true
	}
	return s.selected.Points[s.cursor], true
}

func (s *Session) fractionLocked() float64 {
	if s.trackLength <= 0 {
		return 0
	}
	f := float64(s.cursor) / float64(s.trackLength)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func (s *Session) stateLocked() State {
	switch {
	case !s.hasTrack:
		return StateIdle
	case s.finished:
		return StateFinished
	}
	return StateRacing
}
