package dto

import (
	"time"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// CreateTicketRequest payload for manually opened tickets.
type CreateTicketRequest struct {
	Subject      string                `json:"subject" validate:"required"`
	Body         string                `json:"body"`
	SenderName   string                `json:"senderName"`
	SenderEmail  string                `json:"senderEmail" validate:"required,email"`
	Priority     domain.TicketPriority `json:"priority"`
	AIConfidence *float64              `json:"aiConfidence" validate:"omitempty,gte=0,lte=1"`
	Language     *string               `json:"language"`
}

// UpdateStatusRequest payload for PATCH /tickets/:id/status.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status" validate:"required"`
	Reason string              `json:"reason"`
}

// UpdatePriorityRequest payload for PATCH /tickets/:id/priority.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority" validate:"required"`
}

// AssignRequest payload.
type AssignRequest struct {
	AssigneeID string `json:"assigneeId" validate:"required"`
}

// EscalateRequest payload.
type EscalateRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// TextRequest carries a note, comment, reply or AI response.
type TextRequest struct {
	Text string `json:"text" validate:"required"`
}

// TicketResponse is the wire form of a ticket.
type TicketResponse struct {
	ID                  string                `json:"id"`
	TicketNumber        string                `json:"ticketNumber"`
	CompanyID           string                `json:"companyId"`
	Subject             string                `json:"subject"`
	Body                string                `json:"body"`
	SenderName          string                `json:"senderName"`
	SenderEmail         string                `json:"senderEmail"`
	Status              domain.TicketStatus   `json:"status"`
	Priority            domain.TicketPriority `json:"priority"`
	AssigneeID          *string               `json:"assigneeId"`
	AIConfidence        *float64              `json:"aiConfidence"`
	Language            *string               `json:"language"`
	CreatedAt           time.Time             `json:"createdAt"`
	UpdatedAt           time.Time             `json:"updatedAt"`
	ResponseGeneratedAt *time.Time            `json:"responseGeneratedAt"`
	EscalatedAt         *time.Time            `json:"escalatedAt"`
	ResolvedAt          *time.Time            `json:"resolvedAt"`
}

// ActivityResponse is the wire form of an activity entry.
type ActivityResponse struct {
	ID        string              `json:"id"`
	TicketID  string              `json:"ticketId"`
	Type      domain.ActivityType `json:"type"`
	ActorID   *string             `json:"actorId"`
	Details   string              `json:"details"`
	CreatedAt time.Time           `json:"createdAt"`
}

// TicketMutationResponse returns the updated ticket with the activity it produced.
type TicketMutationResponse struct {
	Ticket   TicketResponse    `json:"ticket"`
	Activity *ActivityResponse `json:"activity,omitempty"`
}

// CountResponse wraps a total.
type CountResponse struct {
	Count int `json:"count"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                  t.ID,
		TicketNumber:        t.TicketNumber,
		CompanyID:           t.CompanyID,
		Subject:             t.Subject,
		Body:                t.Body,
		SenderName:          t.SenderName,
		SenderEmail:         t.SenderEmail,
		Status:              t.Status,
		Priority:            t.Priority,
		AssigneeID:          t.AssigneeID,
		AIConfidence:        t.AIConfidence,
		Language:            t.Language,
		CreatedAt:           t.CreatedAt,
		UpdatedAt:           t.UpdatedAt,
		ResponseGeneratedAt: t.ResponseGeneratedAt,
		EscalatedAt:         t.EscalatedAt,
		ResolvedAt:          t.ResolvedAt,
	}
}

// NewTicketResponses maps a slice, never returning nil.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// NewActivityResponse maps an activity entry.
func NewActivityResponse(a *domain.TicketActivity) ActivityResponse {
	return ActivityResponse{
		ID:        a.ID,
		TicketID:  a.TicketID,
		Type:      a.Type,
		ActorID:   a.ActorID,
		Details:   a.Details,
		CreatedAt: a.CreatedAt,
	}
}

// NewActivityResponses maps a slice, never returning nil.
func NewActivityResponses(items []domain.TicketActivity) []ActivityResponse {
	out := make([]ActivityResponse, 0, len(items))
	for i := range items {
		out = append(out, NewActivityResponse(&items[i]))
	}
	return out
}

// NewTicketMutationResponse pairs a ticket with its activity. activity may be nil.
func NewTicketMutationResponse(t *domain.Ticket, activity *domain.TicketActivity) TicketMutationResponse {
	resp := TicketMutationResponse{Ticket: NewTicketResponse(t)}
	if activity != nil {
		a := NewActivityResponse(activity)
		resp.Activity = &a
	}
	return resp
}
