package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-inbox/internal/domain"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// RequireAccountType ensures the caller signed up with the given account type.
func RequireAccountType(accountType domain.AccountType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Access token missing")
		}
		if identity.AccountType != accountType {
			return apperrors.NewForbidden(string(accountType) + " account required")
		}
		return c.Next()
	}
}

// RequireRole ensures the business caller has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Access token missing")
		}
		if len(allowed) == 0 {
			return c.Next()
		}
		if !identity.HasRole(allowed...) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireBusinessRole applies RequireRole to business callers and lets personal
// accounts through.
func RequireBusinessRole(allowed ...domain.Role) fiber.Handler {
	guard := RequireRole(allowed...)
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("Access token missing")
		}
		if identity.AccountType != domain.AccountTypeBusiness {
			return c.Next()
		}
		return guard(c)
	}
}
