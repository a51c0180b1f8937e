package db

import (
	"context"
	"time"

	"backend-racehub/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	newPoolFn  = pgxpool.New
	pingPoolFn = func(ctx context.Context, pool *pgxpool.Pool) error { return pool.Ping(ctx) }
)

// ConnectPostgres returns a nil pool without error when no URL is configured;
// the track mirror is optional and the CSV catalog is served on its own.
func ConnectPostgres(cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.PostgresURL == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := newPoolFn(ctx, cfg.PostgresURL)
	if err != nil {
		return nil, err
	}
	if err := pingPoolFn(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

var migrations = []string{`
CREATE TABLE IF NOT EXISTS race_tracks (
	name        TEXT PRIMARY KEY,
	coordinates JSONB NOT NULL,
	point_count INTEGER NOT NULL,
	imported_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, `
CREATE TABLE IF NOT EXISTS race_results (
	id          TEXT PRIMARY KEY,
	session_id  TEXT NOT NULL,
	track       TEXT NOT NULL,
	point_count INTEGER NOT NULL,
	distance_km DOUBLE PRECISION NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`}

// Migrate creates the track mirror and race results tables.
func Migrate(ctx context.Context, q Querier) error {
	for _, stmt := range migrations {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
