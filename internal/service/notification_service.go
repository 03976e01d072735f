package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/events"
	"github.com/spec-kit/support-inbox/internal/repository"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// NotificationService turns ticket events into inbox alerts and serves the recipient's
// notification list.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	tickets       repository.TicketRepository
	logger        *zap.Logger
}

// NotificationDependencies bundles repositories for the notification service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	TicketRepo       repository.TicketRepository
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		tickets:       deps.TicketRepo,
		logger:        loggerOrNop(deps.Logger),
	}
}

// RegisterHandlers subscribes to ticket events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	events.SubscribeAll(dispatcher, n.handleTicketEvent)
}

func (n *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	ticket, err := n.tickets.GetByID(ctx, event.CompanyID, event.TicketID)
	if err != nil {
		return fmt.Errorf("load ticket %s: %w", event.TicketID, err)
	}
	recipients, err := n.recipientsFor(ctx, event, ticket)
	if err != nil {
		return err
	}

	notifType, priority, title, message := describeEvent(event, ticket)
	companyID := ticket.CompanyID
	for _, recipientID := range recipients {
		notification := &domain.Notification{
			RecipientID:     recipientID,
			CompanyID:       &companyID,
			Type:            notifType,
			Title:           title,
			Message:         message,
			RelatedTicketID: &ticket.ID,
			RelatedUserID:   event.ActorID,
			Priority:        priority,
			Metadata: map[string]any{
				"ticketNumber": ticket.TicketNumber,
				"eventId":      event.ID,
			},
		}
		if err := n.notifications.Create(ctx, notification); err != nil {
			return fmt.Errorf("create notification: %w", err)
		}
	}
	n.logger.Debug("notifications created",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", ticket.ID),
		zap.Int("recipients", len(recipients)))
	return nil
}

// recipientsFor picks who hears about an event. The actor is never notified of their
// own action.
func (n *NotificationService) recipientsFor(ctx context.Context, event events.Event, ticket *domain.Ticket) ([]string, error) {
	seen := map[string]struct{}{}
	if event.ActorID != nil {
		seen[*event.ActorID] = struct{}{}
	}
	var out []string
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	switch event.Type {
	case events.EventTicketCreated, events.EventTicketEscalated:
		members, err := n.users.ListByCompany(ctx, ticket.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("list company members: %w", err)
		}
		roles := []domain.Role{domain.RoleAdmin, domain.RoleAgent}
		if event.Type == events.EventTicketEscalated {
			roles = []domain.Role{domain.RoleAdmin}
		}
		for _, member := range members {
			if member.Active && member.Role != nil && containsRole(roles, *member.Role) {
				add(member.ID)
			}
		}
	}
	if ticket.AssigneeID != nil {
		add(*ticket.AssigneeID)
	}
	return out, nil
}

func describeEvent(event events.Event, ticket *domain.Ticket) (domain.NotificationType, domain.NotificationPriority, string, string) {
	ref := ticket.TicketNumber
	switch event.Type {
	case events.EventTicketCreated:
		priority := domain.NotificationPriorityMedium
		if ticket.Priority == domain.TicketPriorityHigh || ticket.Priority == domain.TicketPriorityUrgent {
			priority = domain.NotificationPriorityHigh
		}
		return domain.NotificationTicketCreated, priority, "New ticket " + ref,
			fmt.Sprintf("%s: %s", ticket.SenderEmail, ticket.Subject)
	case events.EventTicketAssigned:
		return domain.NotificationTicketAssigned, domain.NotificationPriorityMedium, "Ticket assigned",
			fmt.Sprintf("%s has been assigned to you: %s", ref, ticket.Subject)
	case events.EventTicketEscalated:
		msg := fmt.Sprintf("%s was escalated", ref)
		if p, ok := event.Payload.(events.TicketStatusChangedPayload); ok && p.Reason != "" {
			msg += ": " + p.Reason
		}
		return domain.NotificationTicketEscalated, domain.NotificationPriorityHigh, "Ticket escalated", msg
	case events.EventTicketResolved:
		return domain.NotificationTicketResolved, domain.NotificationPriorityLow, "Ticket resolved",
			fmt.Sprintf("%s has been resolved", ref)
	case events.EventTicketNoteAdded:
		msg := fmt.Sprintf("New note on %s", ref)
		if p, ok := event.Payload.(events.TicketNoteAddedPayload); ok {
			msg += ": " + p.BodyPreview
		}
		return domain.NotificationTicketNoteAdded, domain.NotificationPriorityLow, "Note added", msg
	case events.EventTicketPriorityChanged:
		priority := domain.NotificationPriorityMedium
		if ticket.Priority == domain.TicketPriorityUrgent {
			priority = domain.NotificationPriorityHigh
		}
		return domain.NotificationTicketPriorityChanged, priority, "Priority changed",
			fmt.Sprintf("%s is now %s priority", ref, ticket.Priority)
	default:
		return domain.NotificationTicketStatusChanged, domain.NotificationPriorityLow, "Status updated",
			fmt.Sprintf("%s is now %s", ref, ticket.Status)
	}
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}

// List returns the recipient's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	items, err := n.notifications.ListByRecipient(ctx, recipientID, limit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return items, nil
}

// UnreadCount counts unread notifications.
func (n *NotificationService) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	count, err := n.notifications.CountUnread(ctx, recipientID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// MarkRead marks one notification read.
func (n *NotificationService) MarkRead(ctx context.Context, recipientID, id string) (*domain.Notification, error) {
	item, err := n.notifications.MarkRead(ctx, recipientID, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("notification", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return item, nil
}

// MarkAllRead marks every unread notification read and returns how many changed.
func (n *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	updated, err := n.notifications.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return updated, nil
}

// Delete removes one notification.
func (n *NotificationService) Delete(ctx context.Context, recipientID, id string) error {
	if err := n.notifications.Delete(ctx, recipientID, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("notification", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}

// Clear removes every notification for the recipient.
func (n *NotificationService) Clear(ctx context.Context, recipientID string) (int, error) {
	removed, err := n.notifications.DeleteAll(ctx, recipientID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return removed, nil
}
