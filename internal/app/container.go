// Package app wires configuration, repositories and services into an HTTP application.
package app

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-inbox/internal/api/http"
	"github.com/spec-kit/support-inbox/internal/api/http/handlers"
	"github.com/spec-kit/support-inbox/internal/auth"
	"github.com/spec-kit/support-inbox/internal/config"
	"github.com/spec-kit/support-inbox/internal/events"
	"github.com/spec-kit/support-inbox/internal/observability"
	"github.com/spec-kit/support-inbox/internal/repository"
	"github.com/spec-kit/support-inbox/internal/service"
	"github.com/spec-kit/support-inbox/internal/worker"
)

// Options carries the infrastructure chosen by the caller.
type Options struct {
	Repos     repository.Set
	Mailer    service.Mailer
	Deduper   service.Deduper
	Metrics   *observability.Metrics
	Publisher *events.AMQPPublisher
	// Health lists the dependencies probed by /health/ready.
	Health map[string]handlers.Pinger
}

// Container holds the application graph. There are no package-level singletons; every
// collaborator is reachable from here.
type Container struct {
	Config     config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Repos      repository.Set
	Dispatcher events.Dispatcher
	Tokens     *auth.TokenManager

	Auth          *service.AuthService
	Tickets       *service.TicketService
	Notifications *service.NotificationService
	Team          *service.TeamService
	Companies     *service.CompanyService
	Contact       *service.ContactService
	DirectMail    *service.DirectMailService
	Ingest        *service.IngestService
	Inbox         *service.InboxService

	health map[string]handlers.Pinger
}

// New builds the service graph and registers event subscribers.
func New(cfg config.Config, logger *zap.Logger, opts Options) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	mailer := opts.Mailer
	if mailer == nil {
		mailer = service.NewMailer(cfg.SMTP, logger)
	}

	repos := opts.Repos
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	dispatcher := events.NewInMemoryDispatcher(logger)

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Repos:      repos,
		Dispatcher: dispatcher,
		Tokens:     tokens,
		health:     opts.Health,
	}

	c.Auth = service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:    repos.Users,
		CompanyRepo: repos.Companies,
		Tokens:      tokens,
		Logger:      logger,
	})
	c.Tickets = service.NewTicketService(service.TicketDependencies{
		TicketRepo:   repos.Tickets,
		ActivityRepo: repos.Activities,
		UserRepo:     repos.Users,
		CompanyRepo:  repos.Companies,
		Dispatcher:   dispatcher,
		Mailer:       mailer,
		Logger:       logger,
	})
	c.Notifications = service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: repos.Notifications,
		UserRepo:         repos.Users,
		TicketRepo:       repos.Tickets,
		Logger:           logger,
	})
	c.Team = service.NewTeamService(cfg, service.TeamDependencies{UserRepo: repos.Users, Logger: logger})
	c.Companies = service.NewCompanyService(cfg, service.CompanyDependencies{
		CompanyRepo: repos.Companies,
		Tokens:      tokens,
		Logger:      logger,
	})
	c.Contact = service.NewContactService(repos.Contacts, logger)
	c.DirectMail = service.NewDirectMailService(mailer, metrics, logger)
	c.Ingest = service.NewIngestService(service.IngestDependencies{
		Tickets:   c.Tickets,
		InboxRepo: repos.InboxEmails,
		Deduper:   opts.Deduper,
		Recorder:  metrics,
		Logger:    logger,
	})
	c.Inbox = service.NewInboxService(repos.InboxEmails)

	worker.StartNotificationWorker(dispatcher, worker.Subscribers{
		Notifications: c.Notifications,
		Metrics:       metrics,
		Publisher:     opts.Publisher,
	})
	return c
}

// HTTPApp returns a Fiber application with middlewares and routes registered.
func (c *Container) HTTPApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               c.Config.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, c.Logger, c.Metrics, c.Config.App.RequestTimeout())

	v := handlers.NewAppValidator()
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(c.Config.App.Name, c.Config.App.Version, c.health),
		Auth:           handlers.NewAuthHandler(c.Auth, v),
		Tickets:        handlers.NewTicketsHandler(c.Tickets, v),
		Team:           handlers.NewTeamHandler(c.Team, v),
		Company:        handlers.NewCompanyHandler(c.Companies, v, c.Config.App.FrontendURL, c.Logger),
		Notifications:  handlers.NewNotificationsHandler(c.Notifications),
		Personal:       handlers.NewPersonalHandler(c.Inbox, v),
		Contact:        handlers.NewContactHandler(c.Contact, c.DirectMail),
		Inbound:        handlers.NewInboundHandler(c.Ingest, v),
		AuthMiddleware: auth.NewAuthMiddleware(c.Tokens),
		Metrics:        c.Metrics,
	})
	return app
}
