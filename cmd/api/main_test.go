package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"backend-racehub/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
)

const testCSV = "../../internal/track/testdata/tracks.csv"

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		ServerPort:       ":0",
		TracksCSV:        testCSV,
		CredentialsPath:  filepath.Join(t.TempDir(), "config.yaml"),
		RaceTickInterval: time.Second,
	}
}

func TestRunHandlesSignal(t *testing.T) {
	cfg := testConfig(t)
	signals := make(chan os.Signal, 1)

	listenCalled := make(chan struct{}, 1)
	listen := func(_ *fiber.App, _ string) error {
		listenCalled <- struct{}{}
		signals <- syscall.SIGINT
		select {}
	}

	if err := Run(context.Background(), cfg, nil, nil, nil, signals, listen); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	select {
	case <-listenCalled:
	default:
		t.Fatalf("expected listen to be called")
	}
}

func TestRunContextCancel(t *testing.T) {
	cfg := testConfig(t)
	signals := make(chan os.Signal, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Run(ctx, cfg, nil, nil, nil, signals, func(_ *fiber.App, _ string) error { select {} }); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

func TestRunListenError(t *testing.T) {
	cfg := testConfig(t)
	signals := make(chan os.Signal, 1)

	err := Run(context.Background(), cfg, nil, nil, nil, signals, func(_ *fiber.App, _ string) error {
		return errListen
	})
	if !errors.Is(err, errListen) {
		t.Fatalf("expected listen error, got %v", err)
	}
}

func TestRunMissingCSV(t *testing.T) {
	cfg := testConfig(t)
	cfg.TracksCSV = filepath.Join(t.TempDir(), "missing.csv")

	if err := Run(context.Background(), cfg, nil, nil, nil, make(chan os.Signal, 1), nil); err == nil {
		t.Fatalf("expected error for missing csv")
	}
}

func TestRunAuthRequiredWithoutCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.AuthRequired = true

	if err := Run(context.Background(), cfg, nil, nil, nil, make(chan os.Signal, 1), nil); err == nil {
		t.Fatalf("expected error when credentials are required but missing")
	}
}

func TestRunDefaultListen(t *testing.T) {
	cfg := testConfig(t)
	signals := make(chan os.Signal, 1)

	oldListen := defaultListen
	defaultListen = func(_ *fiber.App, _ string) error { return nil }
	defer func() { defaultListen = oldListen }()

	if err := Run(context.Background(), cfg, nil, nil, nil, signals, nil); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
}

var errListen = errors.New("listen failed")

func TestRealMainHandlesErrors(t *testing.T) {
	calledNotify := false
	calledRun := false
	var gotPool *pgxpool.Pool
	deps := mainDeps{
		loadEnv:         func(...string) error { return os.ErrNotExist },
		loadConfig:      func() config.Config { return config.Config{ServerPort: ":0", LogLevel: "debug"} },
		newLogger:       func() *log.Logger { return log.New(os.Stderr) },
		connectPostgres: func(config.Config) (*pgxpool.Pool, error) { return &pgxpool.Pool{}, errListen },
		connectRedis:    func(config.Config) *redis.Client { return nil },
		notify: func(ch chan<- os.Signal, _ ...os.Signal) {
			calledNotify = true
			close(ch)
		},
		run: func(_ context.Context, _ config.Config, pg *pgxpool.Pool, _ *redis.Client, _ *log.Logger, _ <-chan os.Signal, _ ListenFunc) error {
			calledRun = true
			gotPool = pg
			return errListen
		},
	}

	realMain(deps)
	if !calledNotify {
		t.Fatalf("expected notify to be called")
	}
	if !calledRun {
		t.Fatalf("expected run to be called")
	}
	if gotPool != nil {
		t.Fatalf("expected failed postgres pool to be dropped")
	}
}

func TestDefaultDeps(t *testing.T) {
	deps := defaultDeps()
	if deps.loadEnv == nil || deps.loadConfig == nil || deps.newLogger == nil || deps.connectPostgres == nil ||
		deps.connectRedis == nil || deps.notify == nil || deps.run == nil {
		t.Fatalf("expected default deps to be set")
	}
}

func TestMainUsesOverrides(t *testing.T) {
	oldProvider := mainDepsProvider
	oldRunner := mainRunner
	defer func() {
		mainDepsProvider = oldProvider
		mainRunner = oldRunner
	}()

	called := false
	mainDepsProvider = func() mainDeps { return mainDeps{} }
	mainRunner = func(mainDeps) { called = true }

	main()
	if !called {
		t.Fatalf("expected main runner to be called")
	}
}

func TestRunClosesRedis(t *testing.T) {
	cfg := testConfig(t)
	signals := make(chan os.Signal, 1)

	redisServer := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: redisServer.Addr()})

	listen := func(_ *fiber.App, _ string) error {
		signals <- syscall.SIGINT
		select {}
	}

	if err := Run(context.Background(), cfg, nil, client, nil, signals, listen); err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if err := client.Ping(context.Background()).Err(); !errors.Is(err, redis.ErrClosed) {
		t.Fatalf("expected closed client, got %v", err)
	}
}

func TestRunShutdownError(t *testing.T) {
	cfg := testConfig(t)
	signals := make(chan os.Signal, 1)

	oldShutdown := shutdownFn
	shutdownFn = func(_ *fiber.App, _ context.Context) error { return errListen }
	defer func() { shutdownFn = oldShutdown }()

	signals <- syscall.SIGINT

	if err := Run(context.Background(), cfg, nil, nil, nil, signals, func(_ *fiber.App, _ string) error { select {} }); err == nil {
		t.Fatalf("expected shutdown error")
	}
}

func TestLoadTracksMirrorsIntoPostgres(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS race_tracks`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS race_results`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	for _, name := range []string{"Monaco", "Monza", "Empty"} {
		mock.ExpectExec(`INSERT INTO race_tracks`).
			WithArgs(name, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	src, err := loadTracks(context.Background(), testConfig(t), mock, log.Default())
	if err != nil {
		t.Fatalf("load tracks: %v", err)
	}
	if src == nil {
		t.Fatalf("expected a track source")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestLoadTracksFallsBackToMirror(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS race_tracks`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS race_results`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectQuery(`SELECT name FROM race_tracks`).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("Monaco"))

	cfg := testConfig(t)
	cfg.TracksCSV = filepath.Join(t.TempDir(), "missing.csv")
	src, err := loadTracks(context.Background(), cfg, mock, log.Default())
	if err != nil {
		t.Fatalf("load tracks: %v", err)
	}
	names, err := src.Names(context.Background())
	if err != nil || len(names) != 1 || names[0] != "Monaco" {
		t.Fatalf("unexpected names %v %v", names, err)
	}
}

func TestLoadCredentialsOptional(t *testing.T) {
	cfg := testConfig(t)
	file, err := loadCredentials(cfg, log.Default())
	if err != nil || file != nil {
		t.Fatalf("expected no credentials and no error, got %v %v", file, err)
	}

	cfg.AuthRequired = true
	if _, err := loadCredentials(cfg, log.Default()); err == nil {
		t.Fatalf("expected error when auth is required")
	}
}
