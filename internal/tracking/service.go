package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"backend-racehub/internal/db"
	"backend-racehub/internal/race"
	"backend-racehub/internal/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Service records finished races in race_results. It is a race.Renderer:
// the first frame of a race marks its start and the finished frame writes
// the result.
type Service struct {
	db  db.Querier
	now func() time.Time

	mu      sync.Mutex
	started map[string]time.Time
}

func NewService(db db.Querier) *Service {
	return &Service{db: db, now: time.Now, started: map[string]time.Time{}}
}

func (s *Service) Render(ctx context.Context, frame race.Frame) error {
	now := s.now()
	switch frame.State {
	case race.StateRacing:
		if frame.Cursor == 0 {
			s.mu.Lock()
			s.started[frame.SessionID] = now
			s.mu.Unlock()
		}
		return nil
	case race.StateFinished:
		s.mu.Lock()
		startedAt, ok := s.started[frame.SessionID]
		delete(s.started, frame.SessionID)
		s.mu.Unlock()
		if !ok {
			startedAt = now
		}
		path := frame.Path()
		_, err := s.Record(ctx, Result{
			SessionID:  frame.SessionID,
			Track:      frame.Track,
			PointCount: len(path.Points),
			DistanceKm: path.LengthKm(),
			StartedAt:  startedAt,
			FinishedAt: now,
		})
		return err
	}
	return nil
}

// Forget drops the start time of a race that ended without finishing.
func (s *Service) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.started, sessionID)
}

func (s *Service) Record(ctx context.Context, input Result) (Result, error) {
	input.ID = uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO race_results (id, session_id, track, point_count, distance_km, started_at, finished_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, input.ID, input.SessionID, input.Track, input.PointCount, input.DistanceKm, input.StartedAt, input.FinishedAt)
	if err != nil {
		return Result{}, fmt.Errorf("record result: %w", err)
	}
	input.DurationSec = int64(input.FinishedAt.Sub(input.StartedAt).Seconds())
	return input, nil
}

func (s *Service) Get(ctx context.Context, id string) (Result, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, session_id, track, point_count, distance_km, started_at, finished_at
		FROM race_results WHERE id=$1
	`, id)

	var r Result
	if err := row.Scan(&r.ID, &r.SessionID, &r.Track, &r.PointCount, &r.DistanceKm, &r.StartedAt, &r.FinishedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Result{}, shared.ErrResultNotFound
		}
		return Result{}, err
	}
	r.DurationSec = int64(r.FinishedAt.Sub(r.StartedAt).Seconds())
	return r, nil
}

// Results lists the newest results first, optionally for one track.
func (s *Service) Results(ctx context.Context, f Filter) ([]Result, error) {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, track, point_count, distance_km, started_at, finished_at
		FROM race_results
		WHERE ($1 = '' OR track = $1)
		ORDER BY finished_at DESC
		LIMIT $2
	`, f.Track, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Track, &r.PointCount, &r.DistanceKm, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		r.DurationSec = int64(r.FinishedAt.Sub(r.StartedAt).Seconds())
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *Service) Stats(ctx context.Context, track string) (TrackStats, error) {
	stats := TrackStats{Track: track}
	row := s.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(MIN(EXTRACT(EPOCH FROM finished_at - started_at)),0),
		       COALESCE(AVG(EXTRACT(EPOCH FROM finished_at - started_at)),0)
		FROM race_results WHERE track=$1
	`, track)
	if err := row.Scan(&stats.Races, &stats.FastestSec, &stats.AverageSec); err != nil {
		return TrackStats{}, err
	}
	return stats, nil
}
