package track

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"backend-racehub/internal/db"
	"backend-racehub/internal/shared"

	"github.com/jackc/pgx/v5"
)

// Store mirrors the catalog into Postgres so other services can query it.
type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

// Import upserts every track and returns the number written.
func (s *Store) Import(ctx context.Context, tracks []Track) (int, error) {
	written := 0
	for _, t := range tracks {
		coords, err := json.Marshal(t.Points)
		if err != nil {
			return written, err
		}
		_, err = s.db.Exec(ctx, `
			INSERT INTO race_tracks (name, coordinates, point_count)
			VALUES ($1,$2,$3)
			ON CONFLICT (name) DO UPDATE
			SET coordinates=EXCLUDED.coordinates, point_count=EXCLUDED.point_count, imported_at=now()
		`, t.Name, string(coords), len(t.Points))
		if err != nil {
			return written, fmt.Errorf("import %q: %w", t.Name, err)
		}
		written++
	}
	return written, nil
}

func (s *Store) Get(ctx context.Context, name string) (Track, error) {
	row := s.db.QueryRow(ctx, `
		SELECT name, coordinates
		FROM race_tracks WHERE name=$1
	`, name)

	var t Track
	var coords []byte
	if err := row.Scan(&t.Name, &coords); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Track{}, fmt.Errorf("%q: %w", name, shared.ErrTrackNotFound)
		}
		return Track{}, err
	}
	if err := json.Unmarshal(coords, &t.Points); err != nil {
		return Track{}, fmt.Errorf("decode %q: %w", name, err)
	}
	return t, nil
}

func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT name FROM race_tracks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
