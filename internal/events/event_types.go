package events

import (
	"time"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketEscalated       EventType = "ticket_escalated"
	EventTicketResolved        EventType = "ticket_resolved"
	EventTicketNoteAdded       EventType = "ticket_note_added"
)

// EventTypes lists every ticket event.
var EventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketPriorityChanged,
	EventTicketAssigned,
	EventTicketEscalated,
	EventTicketResolved,
	EventTicketNoteAdded,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	TicketID     string      `json:"ticketId"`
	TicketNumber string      `json:"ticketNumber"`
	CompanyID    string      `json:"companyId"`
	ActorID      *string     `json:"actorId,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject     string                `json:"subject"`
	SenderName  string                `json:"senderName"`
	SenderEmail string                `json:"senderEmail"`
	Priority    domain.TicketPriority `json:"priority"`
}

// TicketStatusChangedPayload is shared by status, escalation and resolution events.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"oldStatus"`
	NewStatus domain.TicketStatus `json:"newStatus"`
	Reason    string              `json:"reason,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"oldPriority"`
	NewPriority domain.TicketPriority `json:"newPriority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeID *string `json:"assigneeId,omitempty"`
}

// TicketNoteAddedPayload is emitted for notes and comments.
type TicketNoteAddedPayload struct {
	Kind        domain.ActivityType `json:"kind"`
	BodyPreview string              `json:"bodyPreview"`
}
