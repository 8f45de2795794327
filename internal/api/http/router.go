package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fixtrack/fixtrack/internal/api/http/handlers"
	"github.com/fixtrack/fixtrack/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Stats          *handlers.StatsHandler
	Support        *handlers.SupportHandler
	ExtraTime      *handlers.ExtraTimeHandler
	Announcements  *handlers.AnnouncementsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Post("/submit", auth.RequireAction(auth.ActionSubmitTicket), cfg.Tickets.Submit)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Post("/:id", cfg.Tickets.Action)
	tickets.Delete("/:id/delete", auth.RequireAction(auth.ActionDeleteTicket), cfg.Tickets.Delete)

	engineers := api.Group("/engineers", auth.RequireAction(auth.ActionViewEngineerStats))
	engineers.Get("/stats", cfg.Stats.EngineerStats)
	engineers.Get("/xp", cfg.Stats.Leaderboard)
	engineers.Get("/detailed-stats", cfg.Stats.DetailedStats)
	engineers.Get("/team-stats", cfg.Stats.TeamStats)

	support := api.Group("/unregistered-support")
	support.Post("/", auth.RequireAction(auth.ActionSubmitSupport), cfg.Support.Submit)
	support.Get("/", cfg.Support.List)
	support.Post("/:id/approve", auth.RequireAction(auth.ActionReviewSupport), cfg.Support.Approve)
	support.Post("/:id/reject", auth.RequireAction(auth.ActionReviewSupport), cfg.Support.Reject)

	extraTime := api.Group("/extra-time")
	extraTime.Post("/", auth.RequireAction(auth.ActionRequestExtraTime), cfg.ExtraTime.Create)
	extraTime.Get("/", cfg.ExtraTime.List)
	extraTime.Post("/:id", auth.RequireAction(auth.ActionReviewExtraTime), cfg.ExtraTime.Review)
	extraTime.Delete("/:id/delete", auth.RequireAction(auth.ActionDeleteExtraTime), cfg.ExtraTime.Delete)

	changelog := api.Group("/changelog")
	changelog.Post("/", auth.RequireAction(auth.ActionPublishChangelog), cfg.Announcements.Publish)
	changelog.Get("/", cfg.Announcements.List)
	changelog.Get("/:id", cfg.Announcements.Get)
	changelog.Post("/:id/comments", cfg.Announcements.AddComment)
	changelog.Post("/:id/updates", cfg.Announcements.AddUpdate)
}
