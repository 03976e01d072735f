package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/support-inbox/internal/auth"
	"github.com/spec-kit/support-inbox/internal/domain"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

func identity(c *fiber.Ctx) (domain.Identity, error) {
	id, ok := auth.IdentityFromContext(c)
	if !ok {
		return domain.Identity{}, apperrors.NewUnauthorized("Access token missing")
	}
	return id, nil
}

// pathID returns the :id route parameter. Ids are UUIDs on every backend, so anything
// else cannot name an existing resource.
func pathID(c *fiber.Ctx) (string, error) {
	raw := c.Params("id")
	if uuid.Validate(raw) != nil {
		return "", apperrors.NewNotFound("resource", map[string]any{"id": raw})
	}
	return raw, nil
}

func data(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"data": payload})
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func optionalString(val string) *string {
	if val = strings.TrimSpace(val); val == "" {
		return nil
	}
	return &val
}
