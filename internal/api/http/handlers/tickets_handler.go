package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/support-inbox/internal/analytics"
	"github.com/spec-kit/support-inbox/internal/api/dto"
	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/service"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// TicketsHandler manages the business ticket dashboard endpoints.
type TicketsHandler struct {
	service   *service.TicketService
	validator *AppValidator
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, v *AppValidator) *TicketsHandler {
	return &TicketsHandler{service: ticketService, validator: v}
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.CreateTicket(c.UserContext(), id, service.TicketCreateInput{
		Subject:      req.Subject,
		Body:         req.Body,
		SenderName:   req.SenderName,
		SenderEmail:  req.SenderEmail,
		Priority:     req.Priority,
		AIConfidence: req.AIConfidence,
		Language:     req.Language,
	})
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewTicketResponse(ticket))
}

// ListTickets GET /api/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListTickets(c.UserContext(), id.Company(), filter)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewTicketResponses(tickets))
}

// CountTickets GET /api/tickets/count.
func (h *TicketsHandler) CountTickets(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	filter, err := parseTicketQuery(c)
	if err != nil {
		return err
	}
	count, err := h.service.CountTickets(c.UserContext(), id.Company(), filter)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.CountResponse{Count: count})
}

// Analytics GET /api/tickets/analytics?range=7d|30d|90d|1y.
func (h *TicketsHandler) Analytics(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	r, err := analytics.ParseRange(c.Query("range"))
	if err != nil {
		return apperrors.NewValidationError("invalid range", map[string]any{
			"range":   c.Query("range"),
			"allowed": []analytics.Range{analytics.Range7Days, analytics.Range30Days, analytics.Range90Days, analytics.Range1Year},
		})
	}
	metrics, err := h.service.Analytics(c.UserContext(), id.Company(), r)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, metrics)
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	resourceID, err := pathID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id.Company(), resourceID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewTicketResponse(ticket))
}

// ListActivities GET /api/tickets/:id/activities.
func (h *TicketsHandler) ListActivities(c *fiber.Ctx) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	resourceID, err := pathID(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListActivities(c.UserContext(), id.Company(), resourceID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewActivityResponses(items))
}

// UpdateStatus PATCH /api/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(id domain.Identity, ticketID string) (*domain.Ticket, *domain.TicketActivity, error) {
		return h.service.UpdateStatus(c.UserContext(), id, ticketID, req.Status, req.Reason)
	})
}

// UpdatePriority PATCH /api/tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	var req dto.UpdatePriorityRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(id domain.Identity, ticketID string) (*domain.Ticket, *domain.TicketActivity, error) {
		return h.service.UpdatePriority(c.UserContext(), id, ticketID, req.Priority)
	})
}

// Assign POST /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(id domain.Identity, ticketID string) (*domain.Ticket, *domain.TicketActivity, error) {
		return h.service.Assign(c.UserContext(), id, ticketID, req.AssigneeID)
	})
}

// Escalate POST /api/tickets/:id/escalate.
func (h *TicketsHandler) Escalate(c *fiber.Ctx) error {
	var req dto.EscalateRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(id domain.Identity, ticketID string) (*domain.Ticket, *domain.TicketActivity, error) {
		return h.service.Escalate(c.UserContext(), id, ticketID, req.Reason)
	})
}

// Resolve POST /api/tickets/:id/resolve.
func (h *TicketsHandler) Resolve(c *fiber.Ctx) error {
	return h.mutate(c, func(id domain.Identity, ticketID string) (*domain.Ticket, *domain.TicketActivity, error) {
		return h.service.Resolve(c.UserContext(), id, ticketID)
	})
}

// Reply POST /api/tickets/:id/reply.
func (h *TicketsHandler) Reply(c *fiber.Ctx) error {
	var req dto.TextRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(id domain.Identity, ticketID string) (*domain.Ticket, *domain.TicketActivity, error) {
		return h.service.Reply(c.UserContext(), id, ticketID, req.Text)
	})
}

// RecordAIResponse POST /api/tickets/:id/ai-response.
func (h *TicketsHandler) RecordAIResponse(c *fiber.Ctx) error {
	var req dto.TextRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	return h.mutate(c, func(id domain.Identity, ticketID string) (*domain.Ticket, *domain.TicketActivity, error) {
		return h.service.RecordAIResponse(c.UserContext(), id, ticketID, req.Text)
	})
}

// AddNote POST /api/tickets/:id/notes.
func (h *TicketsHandler) AddNote(c *fiber.Ctx) error {
	return h.annotate(c, h.service.AddNote)
}

// AddComment POST /api/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	return h.annotate(c, h.service.AddComment)
}

type annotateFunc func(ctx context.Context, id domain.Identity, ticketID, text string) (*domain.TicketActivity, error)

func (h *TicketsHandler) annotate(c *fiber.Ctx, fn annotateFunc) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	resourceID, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.TextRequest
	if err := h.validator.Bind(c, &req); err != nil {
		return err
	}
	activity, err := fn(c.UserContext(), id, resourceID, req.Text)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewActivityResponse(activity))
}

func (h *TicketsHandler) mutate(c *fiber.Ctx, fn func(domain.Identity, string) (*domain.Ticket, *domain.TicketActivity, error)) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	resourceID, err := pathID(c)
	if err != nil {
		return err
	}
	ticket, activity, err := fn(id, resourceID)
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewTicketMutationResponse(ticket, activity))
}

func parseTicketQuery(c *fiber.Ctx) (service.TicketListFilter, error) {
	assignee := optionalString(c.Query("assigneeId"))
	if assignee != nil && uuid.Validate(*assignee) != nil {
		return service.TicketListFilter{}, apperrors.NewValidationError("assigneeId must be a valid id", map[string]any{"field": "assigneeId"})
	}
	filter := service.TicketListFilter{
		AssigneeID:  assignee,
		SearchTerm:  optionalString(c.Query("search")),
		CreatedFrom: parseTime(c.Query("createdFrom")),
		CreatedTo:   parseTime(c.Query("createdTo")),
		Limit:       parseInt(c.Query("limit"), 0),
		Offset:      parseInt(c.Query("offset"), 0),
	}
	for _, s := range splitList(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(s))
	}
	for _, p := range splitList(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(p))
	}
	return filter, nil
}
