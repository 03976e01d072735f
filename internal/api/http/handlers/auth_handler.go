package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/service"
)

// AuthHandler exposes registration, login and the current identity.
type AuthHandler struct {
	auth      *service.AuthService
	validator *AppValidator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, v *AppValidator) *AuthHandler {
	return &AuthHandler{auth: authService, validator: v}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:          req.Name,
		Email:         req.Email,
		Password:      req.Password,
		AccountType:   req.AccountType,
		CompanyName:   req.CompanyName,
		CompanyDomain: req.CompanyDomain,
		SupportEmail:  req.SupportEmail,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, authResponse(result))
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, authResponse(result))
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	user, company, err := h.auth.Me(c.UserContext(), id)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.MeResponse{
		User:    dto.NewUserResponse(user),
		Company: dto.NewCompanyResponse(company),
	})
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.NewUserResponse(result.User),
		Company:   dto.NewCompanyResponse(result.Company),
	}
}
