package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/support-inbox/internal/api/http/handlers"
	"github.com/spec-kit/support-inbox/internal/auth"
	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Team           *handlers.TeamHandler
	Company        *handlers.CompanyHandler
	Notifications  *handlers.NotificationsHandler
	Personal       *handlers.PersonalHandler
	Contact        *handlers.ContactHandler
	Inbound        *handlers.InboundHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	api.Post("/auth/register", cfg.Auth.Register)
	api.Post("/auth/login", cfg.Auth.Login)
	api.Post("/contact", cfg.Contact.Submit)
	api.Get("/company/google/callback", cfg.Company.GoogleCallback)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Get("/auth/me", cfg.Auth.Me)
	protected.Post("/direct-mail/send", auth.RequireBusinessRole(domain.RoleAdmin, domain.RoleAgent), cfg.Contact.SendMail)
	protected.Post("/inbound", cfg.Inbound.Receive)

	notifications := protected.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Patch("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Patch("/:id/read", cfg.Notifications.MarkRead)
	notifications.Delete("", cfg.Notifications.Clear)
	notifications.Delete("/:id", cfg.Notifications.Delete)

	business := []fiber.Handler{auth.RequireAccountType(domain.AccountTypeBusiness), cfg.AuthMiddleware.RequireCompany}
	staff := auth.RequireRole(domain.RoleAdmin, domain.RoleAgent)
	admin := auth.RequireRole(domain.RoleAdmin)

	tickets := protected.Group("/tickets", business...)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Post("", staff, cfg.Tickets.CreateTicket)
	tickets.Get("/count", cfg.Tickets.CountTickets)
	tickets.Get("/analytics", cfg.Tickets.Analytics)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Get("/:id/activities", cfg.Tickets.ListActivities)
	tickets.Patch("/:id/status", staff, cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", staff, cfg.Tickets.UpdatePriority)
	tickets.Post("/:id/assign", staff, cfg.Tickets.Assign)
	tickets.Post("/:id/escalate", staff, cfg.Tickets.Escalate)
	tickets.Post("/:id/resolve", staff, cfg.Tickets.Resolve)
	tickets.Post("/:id/notes", staff, cfg.Tickets.AddNote)
	tickets.Post("/:id/comments", staff, cfg.Tickets.AddComment)
	tickets.Post("/:id/reply", staff, cfg.Tickets.Reply)
	tickets.Post("/:id/ai-response", staff, cfg.Tickets.RecordAIResponse)

	team := protected.Group("/team", business...)
	team.Get("", cfg.Team.List)
	team.Post("", admin, cfg.Team.Add)
	team.Patch("/:id/role", admin, cfg.Team.ChangeRole)
	team.Delete("/:id", admin, cfg.Team.Remove)

	company := protected.Group("/company", business...)
	company.Get("/settings", cfg.Company.Settings)
	company.Patch("/settings", admin, cfg.Company.UpdateSettings)
	company.Put("/email-template", admin, cfg.Company.UpdateEmailTemplate)
	company.Get("/google/auth-url", admin, cfg.Company.GoogleAuthURL)
	company.Post("/google/disconnect", admin, cfg.Company.DisconnectGoogle)

	personal := protected.Group("/personal", auth.RequireAccountType(domain.AccountTypePersonal))
	personal.Get("/emails", cfg.Personal.List)
	personal.Patch("/emails/:id/category", cfg.Personal.SetCategory)
	personal.Patch("/emails/:id/read", cfg.Personal.SetRead)
}
