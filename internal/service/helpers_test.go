package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/auth"
	"github.com/spec-kit/support-inbox/internal/config"
	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/events"
	"github.com/spec-kit/support-inbox/internal/repository"
	"github.com/spec-kit/support-inbox/internal/repository/memory"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []MailMessage
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg MailMessage) (*MailReceipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, msg)
	return &MailReceipt{MessageID: "<test@local>", Accepted: []string{msg.To}, Transport: "fake"}, nil
}

func (m *fakeMailer) messages() []MailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MailMessage(nil), m.sent...)
}

type fixture struct {
	cfg           config.Config
	repos         repository.Set
	tokens        *auth.TokenManager
	dispatcher    events.Dispatcher
	mailer        *fakeMailer
	authSvc       *AuthService
	tickets       *TicketService
	notifications *NotificationService
	team          *TeamService
	companies     *CompanyService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4}}
	repos := memory.NewSet()
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	mailer := &fakeMailer{}

	f := &fixture{
		cfg:        cfg,
		repos:      repos,
		tokens:     tokens,
		dispatcher: dispatcher,
		mailer:     mailer,
		authSvc: NewAuthService(cfg, AuthDependencies{
			UserRepo:    repos.Users,
			CompanyRepo: repos.Companies,
			Tokens:      tokens,
		}),
		tickets: NewTicketService(TicketDependencies{
			TicketRepo:   repos.Tickets,
			ActivityRepo: repos.Activities,
			UserRepo:     repos.Users,
			CompanyRepo:  repos.Companies,
			Dispatcher:   dispatcher,
			Mailer:       mailer,
		}),
		notifications: NewNotificationService(NotificationDependencies{
			NotificationRepo: repos.Notifications,
			UserRepo:         repos.Users,
			TicketRepo:       repos.Tickets,
		}),
		team:      NewTeamService(cfg, TeamDependencies{UserRepo: repos.Users}),
		companies: NewCompanyService(cfg, CompanyDependencies{CompanyRepo: repos.Companies, Tokens: tokens}),
	}
	f.notifications.RegisterHandlers(dispatcher)
	return f
}

// registerBusiness signs up an admin and returns its identity.
func (f *fixture) registerBusiness(t *testing.T, company, email string) domain.Identity {
	t.Helper()
	result, err := f.authSvc.Register(context.Background(), RegisterInput{
		Name:        "Admin " + company,
		Email:       email,
		Password:    "password123",
		AccountType: domain.AccountTypeBusiness,
		CompanyName: company,
	})
	require.NoError(t, err)
	return identityOf(result.User)
}

// addMember adds a team member under admin and returns its identity.
func (f *fixture) addMember(t *testing.T, admin domain.Identity, email string, role domain.Role) domain.Identity {
	t.Helper()
	member, err := f.team.AddMember(context.Background(), admin, AddMemberInput{
		Name:     "Member " + email,
		Email:    email,
		Password: "password123",
		Role:     role,
	})
	require.NoError(t, err)
	user, err := f.repos.Users.GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	return identityOf(user)
}

func (f *fixture) newTicket(t *testing.T, actor domain.Identity) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), actor, TicketCreateInput{
		Subject:     "Order missing",
		Body:        "My order never arrived.",
		SenderName:  "Casey",
		SenderEmail: "casey@example.com",
	})
	require.NoError(t, err)
	return ticket
}

func identityOf(u *domain.User) domain.Identity {
	return domain.Identity{UserID: u.ID, AccountType: u.AccountType, CompanyID: u.CompanyID, Role: u.Role}
}

func requireDomainError(t *testing.T, err error, status int) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T", err)
	require.Equal(t, status, domainErr.HTTPStatus, domainErr.Message)
	return domainErr
}
