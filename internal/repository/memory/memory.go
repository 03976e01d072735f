// Package memory provides mutex-guarded repository implementations used when no
// Postgres DSN is configured and in tests. Missing rows surface as pgx.ErrNoRows so
// callers map them exactly like the Postgres implementations.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
)

// NewSet returns a repository.Set backed by process memory.
func NewSet() repository.Set {
	return repository.Set{
		Tickets:       NewTicketRepository(),
		Activities:    NewTicketActivityRepository(),
		Users:         NewUserRepository(),
		Companies:     NewCompanyRepository(),
		Notifications: NewNotificationRepository(),
		InboxEmails:   NewInboxEmailRepository(),
		Contacts:      NewContactRepository(),
	}
}

// TicketRepository stores tickets in insertion order.
type TicketRepository struct {
	mu      sync.RWMutex
	tickets []*domain.Ticket
}

func NewTicketRepository() *TicketRepository {
	return &TicketRepository{}
}

func (r *TicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	ticket.ID = uuid.NewString()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	ticket.UpdatedAt = now
	stored := *ticket
	r.tickets = append(r.tickets, &stored)
	return nil
}

func (r *TicketRepository) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.tickets {
		if stored.ID == ticket.ID && stored.CompanyID == ticket.CompanyID {
			ticket.UpdatedAt = time.Now().UTC()
			*stored = *ticket
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *TicketRepository) GetByID(_ context.Context, companyID, id string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stored := range r.tickets {
		if stored.ID == id && stored.CompanyID == companyID {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *TicketRepository) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := []domain.Ticket{}
	for i := len(r.tickets) - 1; i >= 0; i-- {
		if ticketMatches(r.tickets[i], filter) {
			matched = append(matched, *r.tickets[i])
		}
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []domain.Ticket{}, nil
	}
	matched = matched[offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *TicketRepository) Count(_ context.Context, filter repository.TicketFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, stored := range r.tickets {
		if ticketMatches(stored, filter) {
			count++
		}
	}
	return count, nil
}

func ticketMatches(t *domain.Ticket, f repository.TicketFilter) bool {
	if t.CompanyID != f.CompanyID {
		return false
	}
	if f.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *f.AssigneeID) {
		return false
	}
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, t.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, t.Priority) {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	if f.SearchTerm != nil && strings.TrimSpace(*f.SearchTerm) != "" {
		term := strings.ToLower(strings.TrimSpace(*f.SearchTerm))
		haystack := strings.ToLower(t.Subject + "\n" + t.Body + "\n" + t.SenderEmail)
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

func containsStatus(list []domain.TicketStatus, s domain.TicketStatus) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.TicketPriority, p domain.TicketPriority) bool {
	for _, candidate := range list {
		if candidate == p {
			return true
		}
	}
	return false
}

// TicketActivityRepository is an append-only activity log.
type TicketActivityRepository struct {
	mu      sync.RWMutex
	entries []domain.TicketActivity
}

func NewTicketActivityRepository() *TicketActivityRepository {
	return &TicketActivityRepository{}
}

func (r *TicketActivityRepository) Create(_ context.Context, activity *domain.TicketActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	activity.ID = uuid.NewString()
	activity.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *activity)
	return nil
}

func (r *TicketActivityRepository) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketActivity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.TicketActivity{}
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].TicketID == ticketID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}
