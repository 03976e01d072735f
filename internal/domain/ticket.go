package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew          TicketStatus = "new"
	TicketStatusAcknowledged TicketStatus = "acknowledged"
	TicketStatusInProgress   TicketStatus = "inProgress"
	TicketStatusResponded    TicketStatus = "responded"
	TicketStatusEscalated    TicketStatus = "escalated"
	TicketStatusResolved     TicketStatus = "resolved"
	TicketStatusClosed       TicketStatus = "closed"
)

// TicketStatuses lists every status in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusNew,
	TicketStatusAcknowledged,
	TicketStatusInProgress,
	TicketStatusResponded,
	TicketStatusEscalated,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	for _, candidate := range TicketStatuses {
		if s == candidate {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// TicketPriorities lists every priority from lowest to highest.
var TicketPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityUrgent,
}

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	for _, candidate := range TicketPriorities {
		if p == candidate {
			return true
		}
	}
	return false
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID                  string
	TicketNumber        string
	CompanyID           string
	Subject             string
	Body                string
	SenderName          string
	SenderEmail         string
	Status              TicketStatus
	Priority            TicketPriority
	AssigneeID          *string
	AIConfidence        *float64
	Language            *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	ResponseGeneratedAt *time.Time
	EscalatedAt         *time.Time
	ResolvedAt          *time.Time
}

// ApplyStatus moves the ticket to status and stamps the transition timestamps.
// Timestamps are only written on first entry so the original transition time survives
// later status changes. Any status may follow any other.
func (t *Ticket) ApplyStatus(status TicketStatus, now time.Time) {
	t.Status = status
	switch status {
	case TicketStatusResolved:
		if t.ResolvedAt == nil {
			t.ResolvedAt = &now
		}
	case TicketStatusEscalated:
		if t.EscalatedAt == nil {
			t.EscalatedAt = &now
		}
	case TicketStatusResponded:
		t.MarkResponded(now)
	}
}

// MarkResponded stamps ResponseGeneratedAt once.
func (t *Ticket) MarkResponded(now time.Time) {
	if t.ResponseGeneratedAt == nil {
		t.ResponseGeneratedAt = &now
	}
}

// IsClosed reports whether staff controls should be locked for this ticket.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusResolved || t.Status == TicketStatusEscalated
}
