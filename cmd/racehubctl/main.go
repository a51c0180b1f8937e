package main

import (
	"context"
	"os"

	"backend-racehub/internal/shared"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	_ = godotenv.Load()

	runner := NewRunner(RunnerOpts{Logger: logger})

	app := &cli.Command{
		Name:     "racehubctl",
		Usage:    "Admin tasks for the race hub: password hashes and the track catalog",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("racehubctl: %v", err)
	}
}
