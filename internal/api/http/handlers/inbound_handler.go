package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/service"
)

// InboundHandler accepts emails from the mailbox fetcher for the caller's account.
type InboundHandler struct {
	ingest    *service.IngestService
	validator *AppValidator
}

// NewInboundHandler constructs handler.
func NewInboundHandler(ingest *service.IngestService, v *AppValidator) *InboundHandler {
	return &InboundHandler{ingest: ingest, validator: v}
}

// Receive POST /api/inbound. Duplicates answer 200, new records 201.
func (h *InboundHandler) Receive(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.InboundEmailRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	result, err := h.ingest.Ingest(c.UserContext(), id, service.InboundEmail{
		MessageID:    req.MessageID,
		FromName:     req.FromName,
		FromEmail:    req.FromEmail,
		Subject:      req.Subject,
		Body:         req.Body,
		Priority:     req.Priority,
		Category:     req.Category,
		AIConfidence: req.AIConfidence,
		Language:     req.Language,
	})
	if err != nil {
		return err
	}

	resp := dto.InboundEmailResponse{Outcome: result.Outcome}
	status := http.StatusCreated
	switch {
	case result.Ticket != nil:
		t := dto.NewTicketResponse(result.Ticket)
		resp.Ticket = &t
	case result.Email != nil:
		e := dto.NewInboxEmailResponse(result.Email)
		resp.Email = &e
	default:
		status = http.StatusOK
	}
	return data(c, status, resp)
}
