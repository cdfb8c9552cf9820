package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gymcore/gym-gateway/internal/api/http/handlers"
	"github.com/gymcore/gym-gateway/internal/auth"
)

// RouteConfig bundles dependencies for route registration. OAuth is nil when
// federated login is not configured.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	OAuth          *handlers.OAuthHandler
	Members        *handlers.MembersHandler
	Trainers       *handlers.TrainersHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes behind the authentication filter. Every
// request passes the route matrix, including requests for unknown paths.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthMiddleware.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Post("/login", cfg.Auth.Login)

	if cfg.OAuth != nil {
		provider := cfg.OAuth.Provider()
		app.Get("/oauth2/authorization/"+provider, cfg.OAuth.Authorize)
		app.Get("/oauth2/callback/"+provider, cfg.OAuth.Callback)
	}

	members := app.Group("/members")
	members.Get("/me", cfg.Members.Me)
	members.Put("/me", cfg.Members.UpdateMe)
	members.Post("/complete-profile", cfg.Members.CompleteProfile)
	members.Get("/by-trainer/:trainerId", cfg.Members.ListByTrainer)
	members.Get("/", cfg.Members.List)
	members.Post("/", cfg.Members.Create)
	members.Put("/:id", cfg.Members.Update)
	members.Delete("/:id", cfg.Members.Delete)

	trainers := app.Group("/trainers")
	trainers.Get("/", cfg.Trainers.List)
	trainers.Get("/:id", cfg.Trainers.Get)
	trainers.Post("/", cfg.Trainers.Create)
	trainers.Delete("/:id", cfg.Trainers.Delete)

	app.Get("/metrics", cfg.Metrics.Snapshot)
}
