package main

import (
	"context"
	"errors"
	"fmt"

	"backend-racehub/internal/db"
	"backend-racehub/internal/track"

	"github.com/urfave/cli/v3"
)

type trackInfo struct {
	Name       string  `json:"name"`
	PointCount int     `json:"point_count"`
	LengthKm   float64 `json:"length_km"`
}

func (r *Runner) TracksList(_ context.Context, cmd *cli.Command) error {
	tracks, err := track.LoadCSVFile(cmd.String("csv"))
	if err != nil {
		return err
	}

	infos := make([]trackInfo, 0, len(tracks))
	for _, t := range tracks {
		infos = append(infos, trackInfo{Name: t.Name, PointCount: len(t.Points), LengthKm: t.LengthKm()})
	}
	if cmd.Bool("json") {
		return r.writeJSON(infos, cmd.Bool("pretty"))
	}
	for _, info := range infos {
		if err := r.writePlain("%-40s %5d points %8.2f km\n", info.Name, info.PointCount, info.LengthKm); err != nil {
			return err
		}
	}
	return nil
}

// TracksShow prints one track as it is served by GET /tracks/:name.
func (r *Runner) TracksShow(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return errors.New("track name is required")
	}
	tracks, err := track.LoadCSVFile(cmd.String("csv"))
	if err != nil {
		return err
	}
	t, err := track.NewCatalog(tracks).Get(ctx, name)
	if err != nil {
		return err
	}
	return r.writeJSON(t.Detail(), cmd.Bool("pretty"))
}

// TracksImport mirrors the CSV catalog into Postgres.
func (r *Runner) TracksImport(ctx context.Context, cmd *cli.Command) error {
	url := cmd.String("postgres-url")
	if url == "" {
		return errors.New("postgres url is required")
	}
	tracks, err := track.LoadCSVFile(cmd.String("csv"))
	if err != nil {
		return err
	}

	q, release, err := r.connect(ctx, url)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer release()

	if err := db.Migrate(ctx, q); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	n, err := track.NewStore(q).Import(ctx, tracks)
	if err != nil {
		return err
	}
	r.logger.Info("imported tracks", "count", n, "csv", cmd.String("csv"))
	return r.writePlain("imported %d tracks\n", n)
}

func csvFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "csv",
		Usage:   "Path to the race tracks CSV",
		Value:   "2018_F1_race_tracks.csv",
		Sources: cli.EnvVars("TRACKS_CSV"),
	}
}

func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "Inspect and import the race track catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List tracks with point counts and lengths",
				Flags: []cli.Flag{
					csvFlag(),
					&cli.BoolFlag{Name: "json", Usage: "Output JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON"},
				},
				Action: r.TracksList,
			},
			{
				Name:  "show",
				Usage: "Print a track as GeoJSON with bounds and center",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					csvFlag(),
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print JSON", Value: true},
				},
				Action: r.TracksShow,
			},
			{
				Name:  "import",
				Usage: "Upsert the CSV tracks into Postgres",
				Flags: []cli.Flag{
					csvFlag(),
					&cli.StringFlag{
						Name:    "postgres-url",
						Usage:   "Postgres connection string",
						Sources: cli.EnvVars("POSTGRES_URL"),
					},
				},
				Action: r.TracksImport,
			},
		},
	}
}
