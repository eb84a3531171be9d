package server

import (
	"context"

	"sado-notes-be/internal/bootstrap"
	"sado-notes-be/internal/config"
	"sado-notes-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             1 * 1024 * 1024,
		ErrorHandler:          serverutils.ErrorHandler(container.Logger),
		DisableStartupMessage: cfg.IsProduction(),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(otelfiber.Middleware())

	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) Run() error {
	s.container.Logger.Info("SERVER", "Server is running", map[string]interface{}{"port": s.cfg.App.Port})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	api := app.Group("/api")

	api.Get("/health", func(ctx *fiber.Ctx) error {
		return ctx.JSON(serverutils.SuccessResponse("ok", fiber.Map{
			"scheduled_jobs": c.Scheduler.Len(),
		}))
	})

	if cfg.Telemetry.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(c.MetricsRegistry, promhttp.HandlerOpts{})))
	}

	auth := serverutils.JwtMiddleware(cfg.App.JwtSecret)
	c.NoteController.RegisterRoutes(api, auth)
	c.NotificationController.RegisterRoutes(api, auth)
}
