package server

import (
	"log/slog"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	handlers "attachbridge/internal/http/handler"
	"attachbridge/internal/http/middleware"
	"attachbridge/internal/service"
)

// AppOptions selects the optional middleware of the bridge app.
type AppOptions struct {
	// Metrics, when set, counts and times every request.
	Metrics *middleware.PrometheusMiddleware
	// Tracing adds an OpenTelemetry span per request.
	Tracing bool
}

// NewApp builds the fiber app serving the bridge routes and nothing else.
func NewApp(svc service.AttachService, logger *slog.Logger, opts AppOptions) *fiber.App {
	cfg := handlers.Config(logger)
	cfg.AppName = "attachbridge"
	cfg.DisableStartupMessage = true
	app := fiber.New(cfg)

	app.Use(middleware.CORS())
	app.Use(middleware.RequestID())
	if opts.Tracing {
		app.Use(otelfiber.Middleware())
	}
	if opts.Metrics != nil {
		app.Use(opts.Metrics.Handler())
	}
	app.Use(middleware.Logger(logger))
	app.Use(fiberrecover.New())

	handlers.RegisterRoutes(app, svc, logger)
	return app
}
