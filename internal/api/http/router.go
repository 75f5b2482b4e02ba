package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-hub/support-service/internal/api/http/handlers"
	"github.com/campus-hub/support-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Chat           *handlers.ChatHandler
	Users          *handlers.UsersHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.StaffLogin)
	authGroup.Post("/students/login", cfg.Auth.StudentLogin)

	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Patch("/:id", cfg.Tickets.Update)
	tickets.Post("/:id/reopen", cfg.Tickets.Reopen)
	tickets.Delete("/:id", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Tickets.Delete)

	tickets.Get("/:id/chat", cfg.Chat.List)
	tickets.Post("/:id/chat", cfg.Chat.Send)

	app.Get("/users", cfg.Users.List)
}
