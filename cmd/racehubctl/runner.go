package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"backend-racehub/internal/db"
	"backend-racehub/internal/shared"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v3"
)

// ConnectFunc opens the Postgres mirror; the returned func releases it.
type ConnectFunc func(ctx context.Context, url string) (db.Querier, func(), error)

// Runner holds the dependencies shared by every command action.
type Runner struct {
	logger  *log.Logger
	output  io.Writer
	connect ConnectFunc
}

type RunnerOpts struct {
	Logger  *log.Logger
	Output  io.Writer
	Connect ConnectFunc
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Connect == nil {
		opts.Connect = connectPostgres
	}
	return &Runner{logger: opts.Logger, output: opts.Output, connect: opts.Connect}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){hashCommand, tracksCommand} {
		commands = append(commands, fn(r))
	}
	return commands
}

func connectPostgres(ctx context.Context, url string) (db.Querier, func(), error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return pool, pool.Close, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error
	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintf(r.output, "%s\n", output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
