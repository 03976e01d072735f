package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// NotificationRepository stores alerts in insertion order.
type NotificationRepository struct {
	mu    sync.RWMutex
	items []*domain.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	if n.Metadata == nil {
		n.Metadata = map[string]any{}
	}
	stored := *n
	r.items = append(r.items, &stored)
	return nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, recipientID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.Notification{}
	for i := len(r.items) - 1; i >= 0 && len(result) < limit; i-- {
		if r.items[i].RecipientID == recipientID {
			result = append(result, *r.items[i])
		}
	}
	return result, nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, recipientID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, recipientID, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			n.MarkRead(time.Now().UTC())
			copied := *n
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	updated := 0
	for _, n := range r.items {
		if n.RecipientID == recipientID && !n.IsRead {
			n.MarkRead(now)
			updated++
		}
	}
	return updated, nil
}

func (r *NotificationRepository) Delete(_ context.Context, recipientID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.items {
		if n.ID == id && n.RecipientID == recipientID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *NotificationRepository) DeleteAll(_ context.Context, recipientID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	removed := 0
	for _, n := range r.items {
		if n.RecipientID == recipientID {
			removed++
			continue
		}
		kept = append(kept, n)
	}
	r.items = kept
	return removed, nil
}

// InboxEmailRepository stores personal inbox emails.
type InboxEmailRepository struct {
	mu     sync.RWMutex
	emails []*domain.InboxEmail
}

func NewInboxEmailRepository() *InboxEmailRepository {
	return &InboxEmailRepository{}
}

func (r *InboxEmailRepository) Create(_ context.Context, email *domain.InboxEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email.ID = uuid.NewString()
	email.ReceivedAt = time.Now().UTC()
	stored := *email
	r.emails = append(r.emails, &stored)
	return nil
}

func (r *InboxEmailRepository) Update(_ context.Context, email *domain.InboxEmail) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.emails {
		if stored.ID == email.ID && stored.UserID == email.UserID {
			stored.Category = email.Category
			stored.IsRead = email.IsRead
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *InboxEmailRepository) GetByID(_ context.Context, userID, id string) (*domain.InboxEmail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stored := range r.emails {
		if stored.ID == id && stored.UserID == userID {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *InboxEmailRepository) ListByUser(_ context.Context, userID string, category *domain.EmailCategory) ([]domain.InboxEmail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.InboxEmail{}
	for i := len(r.emails) - 1; i >= 0; i-- {
		e := r.emails[i]
		if e.UserID != userID {
			continue
		}
		if category != nil && e.Category != *category {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

// ContactRepository keeps contact submissions.
type ContactRepository struct {
	mu       sync.Mutex
	messages []domain.ContactMessage
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{}
}

func (r *ContactRepository) Create(_ context.Context, msg *domain.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now().UTC()
	r.messages = append(r.messages, *msg)
	return nil
}

// Messages returns a snapshot of stored submissions.
func (r *ContactRepository) Messages() []domain.ContactMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ContactMessage(nil), r.messages...)
}
