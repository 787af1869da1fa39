package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/maintenance-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Tickets     *handlers.TicketsHandler
	Actions     *handlers.ActionsHandler
	VendorTasks *handlers.VendorTasksHandler
	Audit       *handlers.AuditHandler
	Events      *handlers.EventsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Get("/:id/actions", cfg.Tickets.Actions)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Get("/:id/vendor-tasks", cfg.Tickets.VendorTasks)

	actions := app.Group("/actions")
	actions.Post("", cfg.Actions.Create)
	actions.Post("/:id/approve", cfg.Actions.Approve)
	actions.Post("/:id/reject", cfg.Actions.Reject)

	app.Post("/vendor-tasks/:id/complete", cfg.VendorTasks.Complete)

	app.Get("/audit", cfg.Audit.Recent)
	app.Get("/audit/stats", cfg.Audit.Stats)

	app.Post("/events/claim", cfg.Events.Claim)
}
