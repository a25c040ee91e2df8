package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
	LoginThrottle  *auth.LoginThrottle
	Metrics        *observability.Metrics
	// EnforceRoles gates account management and ticket mutations by role.
	EnforceRoles bool
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	gate := func(roles ...string) []fiber.Handler {
		if !cfg.EnforceRoles {
			return nil
		}
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(roles...)}
	}
	with := func(h fiber.Handler, roles ...string) []fiber.Handler {
		return append(gate(roles...), h)
	}

	api := app.Group("/api")
	api.Post("/login", cfg.LoginThrottle.Handler(), cfg.Users.Login)
	api.Post("/users", with(cfg.Users.Register, domain.RoleAdmin)...)

	tickets := app.Group("/tickets")
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/status", with(cfg.Tickets.UpdateStatus, domain.RoleAdmin, domain.RoleTechTeam)...)
	tickets.Post("/:id/notify", with(cfg.Tickets.Notify, domain.RoleAdmin, domain.RoleTechTeam)...)
	tickets.Delete("/:id", with(cfg.Tickets.DeleteTicket, domain.RoleAdmin)...)
}
