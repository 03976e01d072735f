package domain

import "time"

// NotificationType enumerates ticket events that raise an inbox alert.
type NotificationType string

const (
	NotificationTicketCreated         NotificationType = "ticket_created"
	NotificationTicketAssigned        NotificationType = "ticket_assigned"
	NotificationTicketStatusChanged   NotificationType = "ticket_status_changed"
	NotificationTicketEscalated       NotificationType = "ticket_escalated"
	NotificationTicketResolved        NotificationType = "ticket_resolved"
	NotificationTicketNoteAdded       NotificationType = "ticket_note_added"
	NotificationTicketPriorityChanged NotificationType = "ticket_priority_changed"
)

// NotificationPriority ranks how prominently an alert should be shown.
type NotificationPriority string

const (
	NotificationPriorityLow    NotificationPriority = "low"
	NotificationPriorityMedium NotificationPriority = "medium"
	NotificationPriorityHigh   NotificationPriority = "high"
)

// Notification is an inbox alert for one recipient.
type Notification struct {
	ID              string
	RecipientID     string
	CompanyID       *string
	Type            NotificationType
	Title           string
	Message         string
	RelatedTicketID *string
	RelatedUserID   *string
	IsRead          bool
	ReadAt          *time.Time
	Priority        NotificationPriority
	Metadata        map[string]any
	CreatedAt       time.Time
}

// MarkRead flips the read flag and stamps ReadAt once.
func (n *Notification) MarkRead(now time.Time) {
	if n.IsRead {
		return
	}
	n.IsRead = true
	n.ReadAt = &now
}
