package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/auth"
	"github.com/spec-kit/support-inbox/internal/config"
	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	companies  repository.CompanyRepository
	tokenMgr   *auth.TokenManager
	passwords  auth.Hasher
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	CompanyRepo repository.CompanyRepository
	Tokens      *auth.TokenManager
	Logger      *zap.Logger
}

// RegisterInput describes a sign-up request. Company fields apply to business accounts.
type RegisterInput struct {
	Name          string
	Email         string
	Password      string
	AccountType   domain.AccountType
	CompanyName   string
	CompanyDomain string
	SupportEmail  string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User      *domain.User
	Company   *domain.Company
	Token     string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	tokens := deps.Tokens
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	return &AuthService{
		users:      deps.UserRepo,
		companies:  deps.CompanyRepo,
		tokenMgr:   tokens,
		passwords:  auth.NewHasher(cfg.Auth.BcryptCost),
		logger:     loggerOrNop(deps.Logger),
	}
}

// TokenManager exposes the token manager for middleware construction.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// Register creates an account. Business sign-ups also create the company and make the
// registering user its admin.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.AccountType == "" {
		input.AccountType = domain.AccountTypeBusiness
	}
	if !input.AccountType.Valid() {
		return nil, apperrors.NewValidationError("invalid account type", map[string]any{"accountType": input.AccountType})
	}
	if input.AccountType == domain.AccountTypeBusiness && strings.TrimSpace(input.CompanyName) == "" {
		return nil, apperrors.NewValidationError("company name is required for business accounts", nil)
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
	} else if !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	}

	hash, err := s.passwords.Hash(input.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hash,
		AccountType:  input.AccountType,
		Active:       true,
	}

	var company *domain.Company
	if input.AccountType == domain.AccountTypeBusiness {
		company, err = s.createCompany(ctx, input)
		if err != nil {
			return nil, err
		}
		role := domain.RoleAdmin
		user.CompanyID = &company.ID
		user.Role = &role
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": input.Email})
		}
		return nil, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("account registered",
		zap.String("user_id", user.ID),
		zap.String("account_type", string(user.AccountType)))
	return &AuthResult{User: user, Company: company, Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) createCompany(ctx context.Context, input RegisterInput) (*domain.Company, error) {
	supportEmail := strings.TrimSpace(input.SupportEmail)
	if supportEmail == "" {
		supportEmail = input.Email
	}
	company := &domain.Company{
		Name:         strings.TrimSpace(input.CompanyName),
		Slug:         slug.Make(input.CompanyName),
		Domain:       strings.ToLower(strings.TrimSpace(input.CompanyDomain)),
		SupportEmail: supportEmail,
		AckTemplate:  domain.DefaultAckTemplate(),
		Portal:       domain.PortalSettings{},
	}
	if company.Slug == "" {
		company.Slug = "company"
	}

	err := s.companies.Create(ctx, company)
	if errors.Is(err, repository.ErrDuplicate) {
		company.Slug = company.Slug + "-" + uuid.NewString()[:8]
		err = s.companies.Create(ctx, company)
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if !s.passwords.Verify(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.Active {
		return nil, apperrors.NewForbidden("account disabled")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	result := &AuthResult{User: user, Token: token, ExpiresAt: exp}
	if user.CompanyID != nil {
		company, err := s.companies.GetByID(ctx, *user.CompanyID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result.Company = company
	}
	return result, nil
}

// Me loads the account behind an identity.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.User, *domain.Company, error) {
	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, apperrors.NewNotFound("user", map[string]any{"id": identity.UserID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	if user.CompanyID == nil {
		return user, nil, nil
	}
	company, err := s.companies.GetByID(ctx, *user.CompanyID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return user, company, nil
}

func loggerOrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
