package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backend-racehub/internal/config"
	"backend-racehub/internal/db"
	"backend-racehub/internal/server"
	"backend-racehub/internal/shared"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadEnv         func(...string) error
	loadConfig      func() config.Config
	newLogger       func() *log.Logger
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, *log.Logger, <-chan os.Signal, ListenFunc) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadEnv:         godotenv.Load,
		loadConfig:      config.Load,
		newLogger:       func() *log.Logger { return shared.NewLogger(os.Stderr) },
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	logger := deps.newLogger()

	// .env is optional; real environment variables win.
	if err := deps.loadEnv(); err != nil && !os.IsNotExist(err) {
		logger.Warn("could not load .env", "err", err)
	}

	cfg := deps.loadConfig()
	shared.SetLogLevel(logger, cfg.LogLevel)

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		logger.Warn("postgres connection failed, serving tracks from csv", "err", err)
		pg = nil
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, logger, signals, nil); err != nil {
		logger.Error("server exited with error", "err", err)
	}
}

type ListenFunc func(app *fiber.App, addr string) error

var defaultListen ListenFunc = func(app *fiber.App, addr string) error {
	return app.Listen(addr)
}

var shutdownFn = func(app *fiber.App, ctx context.Context) error {
	return app.ShutdownWithContext(ctx)
}

// Run loads tracks and credentials, starts the HTTP server and waits for
// termination signals.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, logger *log.Logger, signals <-chan os.Signal, listen ListenFunc) error {
	if logger == nil {
		logger = log.Default()
	}

	var querier db.Querier
	if pg != nil {
		querier = pg
	}
	tracks, err := loadTracks(ctx, cfg, querier, logger)
	if err != nil {
		return err
	}
	creds, err := loadCredentials(cfg, logger)
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg, server.Deps{
		DB:          pg,
		Redis:       rdb,
		Logger:      logger,
		Tracks:      tracks,
		Credentials: creds,
	})

	if listen == nil {
		listen = defaultListen
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listen(srv.App, cfg.ServerPort)
	}()
	logger.Info("racehub listening", "addr", cfg.ServerPort, "auth_required", cfg.AuthRequired)

	var runErr error
	select {
	case <-signals:
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	srv.Close()
	if runErr != nil {
		return runErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := shutdownFn(srv.App, shutdownCtx); err != nil {
		return err
	}
	if pg != nil {
		pg.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	return nil
}
