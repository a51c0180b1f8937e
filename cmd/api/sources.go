package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"backend-racehub/internal/auth"
	"backend-racehub/internal/config"
	"backend-racehub/internal/db"
	"backend-racehub/internal/track"

	"github.com/charmbracelet/log"
)

// loadTracks serves the CSV catalog. With Postgres available the CSV is
// mirrored into race_tracks and the mirror is served instead, which also
// keeps tracks available when the CSV is missing on this host.
func loadTracks(ctx context.Context, cfg config.Config, q db.Querier, logger *log.Logger) (track.Source, error) {
	tracks, csvErr := track.LoadCSVFile(cfg.TracksCSV)
	if q == nil {
		if csvErr != nil {
			return nil, csvErr
		}
		logger.Info("loaded track catalog", "path", cfg.TracksCSV, "tracks", len(tracks))
		return track.NewCatalog(tracks), nil
	}

	if err := db.Migrate(ctx, q); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	store := track.NewStore(q)
	if csvErr != nil {
		logger.Warn("track csv unavailable, serving postgres mirror", "path", cfg.TracksCSV, "err", csvErr)
		return store, nil
	}
	n, err := store.Import(ctx, tracks)
	if err != nil {
		return nil, err
	}
	logger.Info("mirrored track catalog", "path", cfg.TracksCSV, "tracks", n)
	return store, nil
}

// loadCredentials returns nil when the file is absent and login is not
// required; the auth routes are then left out.
func loadCredentials(cfg config.Config, logger *log.Logger) (*auth.CredentialsFile, error) {
	file, err := auth.LoadCredentials(cfg.CredentialsPath)
	if err == nil {
		return file, nil
	}
	if errors.Is(err, os.ErrNotExist) && !cfg.AuthRequired {
		logger.Warn("no credentials file, auth routes disabled", "path", cfg.CredentialsPath)
		return nil, nil
	}
	return nil, err
}
