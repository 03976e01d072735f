package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/service"
)

// PersonalHandler serves the personal inbox.
type PersonalHandler struct {
	inbox     *service.InboxService
	validator *AppValidator
}

// NewPersonalHandler constructs handler.
func NewPersonalHandler(inbox *service.InboxService, v *AppValidator) *PersonalHandler {
	return &PersonalHandler{inbox: inbox, validator: v}
}

// List GET /api/personal/emails?category=.
func (h *PersonalHandler) List(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var category *domain.EmailCategory
	if raw := c.Query("category"); raw != "" {
		cat := domain.EmailCategory(raw)
		category = &cat
	}
	items, err := h.inbox.List(c.UserContext(), id.UserID, category)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewInboxEmailResponses(items))
}

// SetCategory PATCH /api/personal/emails/:id/category.
func (h *PersonalHandler) SetCategory(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	resourceID, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	email, err := h.inbox.SetCategory(c.UserContext(), id.UserID, resourceID, req.Category)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewInboxEmailResponse(email))
}

// SetRead PATCH /api/personal/emails/:id/read.
func (h *PersonalHandler) SetRead(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	resourceID, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.ReadRequest
	if len(c.Body()) > 0 {
		if err := h.validator.Bind(c, &req); err != nil {
			return err
		}
	}
	read := true
	if req.Read != nil {
		read = *req.Read
	}
	email, err := h.inbox.SetRead(c.UserContext(), id.UserID, resourceID, read)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewInboxEmailResponse(email))
}
