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

// UserRepository stores accounts keyed by id.
type UserRepository struct {
	mu    sync.RWMutex
	users []*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.users {
		if strings.EqualFold(stored.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.users = append(r.users, &stored)
	return nil
}

func (r *UserRepository) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.users {
		if stored.ID == user.ID {
			user.UpdatedAt = time.Now().UTC()
			*stored = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, stored := range r.users {
		if stored.ID == id {
			r.users = append(r.users[:i], r.users[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) ListByCompany(_ context.Context, companyID string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.User{}
	for _, stored := range r.users {
		if stored.CompanyID != nil && *stored.CompanyID == companyID {
			result = append(result, *stored)
		}
	}
	return result, nil
}

func (r *UserRepository) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, stored := range r.users {
		if match(stored) {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// CompanyRepository stores tenants.
type CompanyRepository struct {
	mu        sync.RWMutex
	companies map[string]domain.Company
}

func NewCompanyRepository() *CompanyRepository {
	return &CompanyRepository{companies: make(map[string]domain.Company)}
}

func (r *CompanyRepository) Create(_ context.Context, company *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.companies {
		if stored.Slug == company.Slug {
			return repository.ErrDuplicate
		}
	}
	now := time.Now().UTC()
	company.ID = uuid.NewString()
	company.CreatedAt = now
	company.UpdatedAt = now
	r.companies[company.ID] = *company
	return nil
}

func (r *CompanyRepository) Update(_ context.Context, company *domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[company.ID]; !ok {
		return pgx.ErrNoRows
	}
	company.UpdatedAt = time.Now().UTC()
	r.companies[company.ID] = *company
	return nil
}

func (r *CompanyRepository) GetByID(_ context.Context, id string) (*domain.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	company, ok := r.companies[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &company, nil
}
