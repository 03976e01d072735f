package service

import (
	"context"

	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// InboxService serves a personal account's categorized inbox.
type InboxService struct {
	emails repository.InboxEmailRepository
}

// NewInboxService constructs the service.
func NewInboxService(emails repository.InboxEmailRepository) *InboxService {
	return &InboxService{emails: emails}
}

// List returns the user's emails, optionally restricted to one category.
func (s *InboxService) List(ctx context.Context, userID string, category *domain.EmailCategory) ([]domain.InboxEmail, error) {
	if category != nil && !category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": *category})
	}
	emails, err := s.emails.ListByUser(ctx, userID, category)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return emails, nil
}

// SetCategory overrides the AI-assigned category.
func (s *InboxService) SetCategory(ctx context.Context, userID, id string, category domain.EmailCategory) (*domain.InboxEmail, error) {
	if !category.Valid() {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": category})
	}
	return s.update(ctx, userID, id, func(e *domain.InboxEmail) { e.Category = category })
}

// SetRead flips the read flag.
func (s *InboxService) SetRead(ctx context.Context, userID, id string, read bool) (*domain.InboxEmail, error) {
	return s.update(ctx, userID, id, func(e *domain.InboxEmail) { e.IsRead = read })
}

func (s *InboxService) update(ctx context.Context, userID, id string, apply func(*domain.InboxEmail)) (*domain.InboxEmail, error) {
	email, err := s.emails.GetByID(ctx, userID, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("email", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	apply(email)
	if err := s.emails.Update(ctx, email); err != nil {
		return nil, apperrors.MapError(err)
	}
	return email, nil
}
