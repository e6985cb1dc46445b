package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skilllink/marketplace/internal/api/http/handlers"
	"github.com/skilllink/marketplace/internal/auth"
	"github.com/skilllink/marketplace/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Workers        *handlers.WorkersHandler
	Jobs           *handlers.JobsHandler
	Classify       *handlers.ClassifyHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/categories", handlers.Categories)

	authGroup := app.Group("/auth")
	authGroup.Post("/signup", cfg.Users.Signup)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.Users.Logout)
	authGroup.Get("/session", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Users.Session)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	seekerOnly := auth.RequireRole(domain.RoleSeeker)
	workerOnly := auth.RequireRole(domain.RoleWorker)

	protected.Get("/workers", cfg.Workers.List)
	protected.Patch("/workers/me/availability", workerOnly, cfg.Workers.SetAvailability)

	protected.Post("/jobs", seekerOnly, cfg.Jobs.CreateJob)
	protected.Get("/jobs", cfg.Jobs.ListJobs)
	protected.Get("/jobs/:id", cfg.Jobs.GetJob)
	protected.Post("/jobs/:id/accept", workerOnly, cfg.Jobs.Accept)
	protected.Post("/jobs/:id/decline", workerOnly, cfg.Jobs.Decline)
	protected.Post("/jobs/:id/complete", workerOnly, cfg.Jobs.Complete)
	protected.Patch("/jobs/:id/status", cfg.Jobs.UpdateStatus)
	protected.Post("/jobs/:id/settle", seekerOnly, cfg.Jobs.Settle)

	protected.Post("/classify", cfg.Classify.Classify)
	protected.Get("/ledger", cfg.Jobs.Ledger)
}
