package server

import (
	"backend-racehub/internal/auth"
	"backend-racehub/internal/config"
	"backend-racehub/internal/race"
	"backend-racehub/internal/stream"
	"backend-racehub/internal/track"
	"backend-racehub/internal/tracking"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Deps are the resources the server is built from. DB, Redis and
// Credentials are optional.
type Deps struct {
	DB          *pgxpool.Pool
	Redis       *redis.Client
	Logger      *log.Logger
	Tracks      track.Source
	Credentials *auth.CredentialsFile
}

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Logger   *log.Logger
	Stream   *stream.Hub
	Tracks   track.Source
	Runner   *race.Runner
	Registry *race.Registry
	Auth     *auth.Service
	Results  *tracking.Service
}

func NewServer(cfg config.Config, deps Deps) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	if deps.Logger == nil {
		deps.Logger = log.Default()
	}

	hub := stream.NewHub(deps.Redis, deps.Logger.WithPrefix("stream"))
	renderers := race.Renderers{race.NewHubRenderer(hub)}

	var results *tracking.Service
	if deps.DB != nil {
		results = tracking.NewService(deps.DB)
		renderers = append(renderers, results)
	}

	runner := race.NewRunner(
		renderers,
		func() race.Scheduler { return race.NewIntervalScheduler(cfg.RaceTickInterval) },
		deps.Logger.WithPrefix("race"),
	)

	s := &Server{
		App:      app,
		Cfg:      cfg,
		DB:       deps.DB,
		Redis:    deps.Redis,
		Logger:   deps.Logger,
		Stream:   hub,
		Tracks:   deps.Tracks,
		Runner:   runner,
		Registry: race.NewRegistry(deps.Tracks, runner),
		Results:  results,
	}
	if results != nil {
		s.Registry.OnEnd(results.Forget)
	}
	if deps.Credentials != nil {
		s.Auth = auth.NewService(cfg.CredentialsPath, deps.Credentials, cfg.PreauthorizedReg)
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	raceMiddleware := fiber.Handler(auth.PassThrough)
	if s.Auth != nil {
		auth.RegisterRoutes(s.App.Group("/auth"), s.Auth)
		if s.Cfg.AuthRequired {
			raceMiddleware = auth.CookieMiddleware(s.Auth)
		}
	}

	track.RegisterRoutes(s.App.Group("/tracks"), s.Tracks)
	race.RegisterRoutes(s.App.Group("/race"), s.Registry, s.Runner, raceMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream, s.Registry.Exists)
	if s.Results != nil {
		tracking.RegisterRoutes(s.App.Group("/results"), s.Results)
	}
}

// Close stops every running race and the stream relay.
func (s *Server) Close() {
	s.Runner.StopAll()
	s.Stream.Close()
}
