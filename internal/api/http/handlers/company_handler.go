package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/service"
)

// CompanyHandler exposes company settings and the Google mailbox connection.
type CompanyHandler struct {
	companies   *service.CompanyService
	validator   *AppValidator
	frontendURL string
	logger      *zap.Logger
}

// NewCompanyHandler constructs handler. frontendURL is where the OAuth callback
// redirects the browser.
func NewCompanyHandler(companies *service.CompanyService, v *AppValidator, frontendURL string, logger *zap.Logger) *CompanyHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyHandler{companies: companies, validator: v, frontendURL: strings.TrimRight(frontendURL, "/"), logger: logger}
}

// Settings GET /api/company/settings.
func (h *CompanyHandler) Settings(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	company, err := h.companies.GetSettings(c.UserContext(), id.Company())
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewCompanyResponse(company))
}

// UpdateSettings PATCH /api/company/settings.
func (h *CompanyHandler) UpdateSettings(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.UpdateCompanyRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	input := service.CompanySettingsInput{
		Name:         req.Name,
		Domain:       req.Domain,
		SupportEmail: req.SupportEmail,
	}
	if req.Portal != nil {
		input.Portal = &domain.PortalSettings{
			Enabled:              req.Portal.Enabled,
			IncludeTicketHistory: req.Portal.IncludeTicketHistory,
		}
	}
	company, err := h.companies.UpdateSettings(c.UserContext(), id, input)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewCompanyResponse(company))
}

// UpdateEmailTemplate PUT /api/company/email-template.
func (h *CompanyHandler) UpdateEmailTemplate(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.AckTemplateDTO
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	company, err := h.companies.UpdateEmailTemplate(c.UserContext(), id, domain.AckTemplate{
		Enabled: req.Enabled,
		Subject: req.Subject,
		Body:    req.Body,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewCompanyResponse(company))
}

// GoogleAuthURL GET /api/company/google/auth-url.
func (h *CompanyHandler) GoogleAuthURL(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	authURL, err := h.companies.GoogleAuthURL(c.UserContext(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.GoogleAuthURLResponse{URL: authURL})
}

// GoogleCallback GET /api/company/google/callback. The browser lands here from Google,
// so outcomes are reported by redirecting to the settings page.
func (h *CompanyHandler) GoogleCallback(c *fiber.Ctx) error {
	if errParam := c.Query("error"); errParam != "" {
		return c.Redirect(h.settingsURL("error", errParam), http.StatusFound)
	}
	if _, err := h.companies.GoogleCallback(c.UserContext(), c.Query("state"), c.Query("code")); err != nil {
		h.logger.Warn("google callback failed", zap.Error(err))
		return c.Redirect(h.settingsURL("error", "connect_failed"), http.StatusFound)
	}
	return c.Redirect(h.settingsURL("connected", ""), http.StatusFound)
}

// DisconnectGoogle POST /api/company/google/disconnect.
func (h *CompanyHandler) DisconnectGoogle(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	company, err := h.companies.DisconnectGoogle(c.UserContext(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewCompanyResponse(company))
}

func (h *CompanyHandler) settingsURL(status, reason string) string {
	q := url.Values{}
	q.Set("google", status)
	if reason != "" {
		q.Set("reason", reason)
	}
	return h.frontendURL + "/settings?" + q.Encode()
}
