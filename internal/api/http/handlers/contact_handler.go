package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/service"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// ContactHandler serves the public contact form and dashboard direct mail.
type ContactHandler struct {
	contact *service.ContactService
	mail    *service.DirectMailService
}

// NewContactHandler constructs handler.
func NewContactHandler(contact *service.ContactService, mail *service.DirectMailService) *ContactHandler {
	return &ContactHandler{contact: contact, mail: mail}
}

// Submit POST /api/contact.
func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(service.MessageAllFieldsRequired, nil)
	}
	if _, err := h.contact.Submit(c.UserContext(), req.Name, req.Email, req.Message); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{Message: "Message sent successfully."})
}

// SendMail POST /api/direct-mail/send.
func (h *ContactHandler) SendMail(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.DirectMailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError(service.MessageAllFieldsRequired, nil)
	}
	receipt, err := h.mail.Send(c.UserContext(), id, req.To, req.Subject, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Email sent successfully", "info": receipt})
}
