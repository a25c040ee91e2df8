package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// ServerConfig controls the fiber application.
type ServerConfig struct {
	AppName        string
	BodyLimit      int
	RequestTimeout time.Duration
}

// NewServer builds the fiber application with global middleware and routes.
func NewServer(cfg ServerConfig, logger *zap.Logger, metrics *observability.Metrics, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.AppName,
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		// Values read from the request outlive the handler in async event handlers.
		Immutable:    true,
		ErrorHandler: ErrorHandler(logger, metrics),
	})
	RegisterMiddlewares(app, logger, metrics, cfg.RequestTimeout)
	routes.Metrics = metrics
	RegisterRoutes(app, routes)
	return app
}
