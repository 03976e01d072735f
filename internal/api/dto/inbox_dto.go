package dto

import (
	"time"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// NotificationResponse is the wire form of a notification.
type NotificationResponse struct {
	ID              string                      `json:"id"`
	RecipientID     string                      `json:"recipientId"`
	CompanyID       *string                     `json:"companyId"`
	Type            domain.NotificationType     `json:"type"`
	Title           string                      `json:"title"`
	Message         string                      `json:"message"`
	RelatedTicketID *string                     `json:"relatedTicketId"`
	RelatedUserID   *string                     `json:"relatedUserId"`
	IsRead          bool                        `json:"isRead"`
	ReadAt          *time.Time                  `json:"readAt"`
	Priority        domain.NotificationPriority `json:"priority"`
	Metadata        map[string]any              `json:"metadata"`
	CreatedAt       time.Time                   `json:"createdAt"`
}

// InboxEmailResponse is the wire form of a personal inbox email.
type InboxEmailResponse struct {
	ID           string               `json:"id"`
	MessageID    string               `json:"messageId"`
	FromName     string               `json:"fromName"`
	FromEmail    string               `json:"fromEmail"`
	Subject      string               `json:"subject"`
	Body         string               `json:"body"`
	Category     domain.EmailCategory `json:"category"`
	AIConfidence *float64             `json:"aiConfidence"`
	IsRead       bool                 `json:"isRead"`
	ReceivedAt   time.Time            `json:"receivedAt"`
}

// CategoryRequest payload for PATCH /personal/emails/:id/category.
type CategoryRequest struct {
	Category domain.EmailCategory `json:"category" validate:"required"`
}

// ReadRequest payload for PATCH /personal/emails/:id/read. Read defaults to true.
type ReadRequest struct {
	Read *bool `json:"read"`
}

// InboundEmailRequest is delivered by the mailbox fetcher.
type InboundEmailRequest struct {
	MessageID    string                `json:"messageId"`
	FromName     string                `json:"fromName"`
	FromEmail    string                `json:"fromEmail" validate:"required,email"`
	Subject      string                `json:"subject" validate:"required"`
	Body         string                `json:"body"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     domain.EmailCategory  `json:"category"`
	AIConfidence *float64              `json:"aiConfidence" validate:"omitempty,gte=0,lte=1"`
	Language     *string               `json:"language"`
}

// InboundEmailResponse reports the ingestion outcome.
type InboundEmailResponse struct {
	Outcome string              `json:"outcome"`
	Ticket  *TicketResponse     `json:"ticket,omitempty"`
	Email   *InboxEmailResponse `json:"email,omitempty"`
}

// ContactRequest is a public contact-form submission.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// DirectMailRequest payload for POST /direct-mail/send.
type DirectMailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MessageResponse is a bare confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewNotificationResponse maps a notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return NotificationResponse{
		ID:              n.ID,
		RecipientID:     n.RecipientID,
		CompanyID:       n.CompanyID,
		Type:            n.Type,
		Title:           n.Title,
		Message:         n.Message,
		RelatedTicketID: n.RelatedTicketID,
		RelatedUserID:   n.RelatedUserID,
		IsRead:          n.IsRead,
		ReadAt:          n.ReadAt,
		Priority:        n.Priority,
		Metadata:        metadata,
		CreatedAt:       n.CreatedAt,
	}
}

// NewNotificationResponses maps a slice, never returning nil.
func NewNotificationResponses(items []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for i := range items {
		out = append(out, NewNotificationResponse(&items[i]))
	}
	return out
}

// NewInboxEmailResponse maps an inbox email.
func NewInboxEmailResponse(e *domain.InboxEmail) InboxEmailResponse {
	return InboxEmailResponse{
		ID:           e.ID,
		MessageID:    e.MessageID,
		FromName:     e.FromName,
		FromEmail:    e.FromEmail,
		Subject:      e.Subject,
		Body:         e.Body,
		Category:     e.Category,
		AIConfidence: e.AIConfidence,
		IsRead:       e.IsRead,
		ReceivedAt:   e.ReceivedAt,
	}
}

// NewInboxEmailResponses maps a slice, never returning nil.
func NewInboxEmailResponses(items []domain.InboxEmail) []InboxEmailResponse {
	out := make([]InboxEmailResponse, 0, len(items))
	for i := range items {
		out = append(out, NewInboxEmailResponse(&items[i]))
	}
	return out
}
