package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-inbox/internal/domain"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// Error codes surfaced by the middleware.
const (
	CodeTokenMissing   = "TOKEN_MISSING"
	CodeTokenInvalid   = "TOKEN_INVALID"
	CodeCompanyMissing = "COMPANY_MISSING"
)

// AuthMiddleware validates bearer tokens and attaches the decoded identity.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := bearerToken(c.Get(fiber.HeaderAuthorization))
	if token == "" {
		return apperrors.NewDomainError(CodeTokenMissing, "Access token missing", http.StatusUnauthorized, nil)
	}

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return apperrors.NewDomainError(CodeTokenInvalid, "Invalid or expired token", http.StatusForbidden, nil)
	}
	if claims.AccountType == domain.AccountTypeBusiness && (claims.CompanyID == nil || *claims.CompanyID == "") {
		return apperrors.NewDomainError(CodeCompanyMissing, "Missing company association", http.StatusForbidden, nil)
	}

	c.Locals(identityKey, claims.Identity())
	return c.Next()
}

// RequireCompany rejects identities without a company, personal accounts included.
func (m *AuthMiddleware) RequireCompany(c *fiber.Ctx) error {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return apperrors.NewDomainError(CodeTokenMissing, "Access token missing", http.StatusUnauthorized, nil)
	}
	if identity.Company() == "" {
		return apperrors.NewDomainError(CodeCompanyMissing, "Missing company association", http.StatusForbidden, nil)
	}
	return c.Next()
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}
