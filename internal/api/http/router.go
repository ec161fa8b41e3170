package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/caltman24/zaptrack/internal/api/http/handlers"
	"github.com/caltman24/zaptrack/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Members        *handlers.MembersHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Members.Register)
	authGroup.Post("/login", cfg.Members.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Put("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Put("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Put("/:id/type", cfg.Tickets.UpdateType)
	tickets.Put("/:id/developer", cfg.Tickets.AssignDeveloper)
	tickets.Put("/:id/archive", cfg.Tickets.ToggleArchive)
	tickets.Delete("/:id", cfg.Tickets.Delete)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Post("/:id/comments", cfg.Comments.Create)
	tickets.Get("/:id/comments", cfg.Comments.List)

	comments := app.Group("/comments", cfg.AuthMiddleware.Handle)
	comments.Put("/:id", cfg.Comments.Update)
	comments.Delete("/:id", cfg.Comments.Delete)
}
