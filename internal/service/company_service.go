package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/spec-kit/support-inbox/internal/auth"
	"github.com/spec-kit/support-inbox/internal/config"
	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// CompanyService manages tenant settings and the Google mailbox connection.
type CompanyService struct {
	companies   repository.CompanyRepository
	tokens      *auth.TokenManager
	oauth       *oauth2.Config
	userInfoURL string
	logger      *zap.Logger
}

// CompanyDependencies bundles collaborators for the company service.
type CompanyDependencies struct {
	CompanyRepo repository.CompanyRepository
	Tokens      *auth.TokenManager
	Logger      *zap.Logger
}

// CompanySettingsInput carries a partial settings update. Nil fields are unchanged.
type CompanySettingsInput struct {
	Name         *string
	Domain       *string
	SupportEmail *string
	Portal       *domain.PortalSettings
}

// NewCompanyService constructs the service.
func NewCompanyService(cfg config.Config, deps CompanyDependencies) *CompanyService {
	return &CompanyService{
		companies: deps.CompanyRepo,
		tokens:    deps.Tokens,
		oauth: &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			Endpoint:     googleOAuth.Endpoint,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes: []string{
				"openid",
				"email",
				"https://www.googleapis.com/auth/gmail.readonly",
				"https://www.googleapis.com/auth/gmail.send",
			},
		},
		userInfoURL: googleUserInfoURL,
		logger:      loggerOrNop(deps.Logger),
	}
}

// GetSettings loads the company.
func (s *CompanyService) GetSettings(ctx context.Context, companyID string) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("company", map[string]any{"id": companyID})
		}
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// UpdateSettings applies a partial update.
func (s *CompanyService) UpdateSettings(ctx context.Context, actor domain.Identity, input CompanySettingsInput) (*domain.Company, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	company, err := s.GetSettings(ctx, actor.Company())
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("company name cannot be empty", nil)
		}
		company.Name = name
	}
	if input.Domain != nil {
		company.Domain = strings.ToLower(strings.TrimSpace(*input.Domain))
	}
	if input.SupportEmail != nil {
		company.SupportEmail = strings.TrimSpace(*input.SupportEmail)
	}
	if input.Portal != nil {
		company.Portal = *input.Portal
	}
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// UpdateEmailTemplate replaces the acknowledgment template. An enabled template needs
// a subject and body.
func (s *CompanyService) UpdateEmailTemplate(ctx context.Context, actor domain.Identity, tpl domain.AckTemplate) (*domain.Company, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	tpl.Subject = strings.TrimSpace(tpl.Subject)
	if tpl.Enabled && (tpl.Subject == "" || strings.TrimSpace(tpl.Body) == "") {
		return nil, apperrors.NewValidationError("subject and body are required when the template is enabled", nil)
	}
	company, err := s.GetSettings(ctx, actor.Company())
	if err != nil {
		return nil, err
	}
	company.AckTemplate = tpl
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

func (s *CompanyService) oauthConfigured() error {
	if s.oauth.ClientID == "" || s.oauth.ClientSecret == "" {
		return apperrors.NewDomainError("OAUTH_NOT_CONFIGURED", "Google OAuth is not configured", http.StatusServiceUnavailable, nil)
	}
	return nil
}

// GoogleAuthURL returns the consent URL for connecting the company mailbox.
func (s *CompanyService) GoogleAuthURL(_ context.Context, actor domain.Identity) (string, error) {
	if err := requireAdmin(actor); err != nil {
		return "", err
	}
	if err := s.oauthConfigured(); err != nil {
		return "", err
	}
	state, err := s.tokens.GenerateState(actor.Company())
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// GoogleCallback exchanges the authorization code and stores the connection.
func (s *CompanyService) GoogleCallback(ctx context.Context, state, code string) (*domain.Company, error) {
	if err := s.oauthConfigured(); err != nil {
		return nil, err
	}
	if code == "" {
		return nil, apperrors.NewValidationError("authorization code is required", nil)
	}
	companyID, err := s.tokens.ParseState(state)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid oauth state", nil)
	}
	company, err := s.GetSettings(ctx, companyID)
	if err != nil {
		return nil, err
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.NewUpstreamError("Google token exchange failed", fmt.Errorf("google token exchange: %w", err))
	}
	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, apperrors.NewUpstreamError("Failed to read Google account", err)
	}

	company.GoogleConnected = true
	company.GoogleEmail = &info.Email
	if token.RefreshToken != "" {
		refresh := token.RefreshToken
		company.GoogleRefreshToken = &refresh
	}
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("google mailbox connected", zap.String("company_id", company.ID), zap.String("google_email", info.Email))
	return company, nil
}

func (s *CompanyService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("google user info has no email")
	}
	return &info, nil
}

// DisconnectGoogle clears the stored mailbox connection.
func (s *CompanyService) DisconnectGoogle(ctx context.Context, actor domain.Identity) (*domain.Company, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	company, err := s.GetSettings(ctx, actor.Company())
	if err != nil {
		return nil, err
	}
	company.GoogleConnected = false
	company.GoogleEmail = nil
	company.GoogleRefreshToken = nil
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}
