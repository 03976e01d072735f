package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/support-inbox/internal/auth"
	"github.com/spec-kit/support-inbox/internal/config"
	"github.com/spec-kit/support-inbox/internal/domain"
	"github.com/spec-kit/support-inbox/internal/repository"
	apperrors "github.com/spec-kit/support-inbox/pkg/util/errorutil"
)

// TeamService manages the members of a business account.
type TeamService struct {
	users      repository.UserRepository
	passwords  auth.Hasher
	logger     *zap.Logger
}

// TeamDependencies encapsulates repositories required for team management.
type TeamDependencies struct {
	UserRepo repository.UserRepository
	Logger   *zap.Logger
}

// AddMemberInput describes a new team member.
type AddMemberInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// NewTeamService constructs the service.
func NewTeamService(cfg config.Config, deps TeamDependencies) *TeamService {
	return &TeamService{
		users:      deps.UserRepo,
		passwords:  auth.NewHasher(cfg.Auth.BcryptCost),
		logger:     loggerOrNop(deps.Logger),
	}
}

func requireAdmin(identity domain.Identity) error {
	if !identity.HasRole(domain.RoleAdmin) {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// ListMembers returns every member of the company.
func (s *TeamService) ListMembers(ctx context.Context, companyID string) ([]domain.TeamMember, error) {
	users, err := s.users.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	members := make([]domain.TeamMember, 0, len(users))
	for i := range users {
		members = append(members, users[i].AsTeamMember())
	}
	return members, nil
}

// AddMember creates a business account inside the caller's company.
func (s *TeamService) AddMember(ctx context.Context, actor domain.Identity, input AddMemberInput) (*domain.TeamMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if input.Role == "" {
		input.Role = domain.RoleAgent
	}
	if !input.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, apperrors.MapError(err)
	}

	hash, err := s.passwords.Hash(input.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "password"})
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	companyID := actor.Company()
	role := input.Role
	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		AccountType:  domain.AccountTypeBusiness,
		CompanyID:    &companyID,
		Role:         &role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
		}
		return nil, apperrors.MapError(err)
	}
	s.logger.Info("team member added", zap.String("company_id", companyID), zap.String("user_id", user.ID))
	member := user.AsTeamMember()
	return &member, nil
}

// RemoveMember deletes a member. Admins cannot remove themselves.
func (s *TeamService) RemoveMember(ctx context.Context, actor domain.Identity, memberID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if memberID == actor.UserID {
		return apperrors.NewConflict("you cannot remove yourself", nil)
	}
	if _, err := s.loadMember(ctx, actor.Company(), memberID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, memberID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// ChangeRole reassigns a member's role. The last admin cannot be demoted.
func (s *TeamService) ChangeRole(ctx context.Context, actor domain.Identity, memberID string, role domain.Role) (*domain.TeamMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	user, err := s.loadMember(ctx, actor.Company(), memberID)
	if err != nil {
		return nil, err
	}

	if user.Role != nil && *user.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		admins, err := s.countAdmins(ctx, actor.Company())
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, apperrors.NewConflict("company must keep at least one admin", nil)
		}
	}

	user.Role = &role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	member := user.AsTeamMember()
	return &member, nil
}

func (s *TeamService) loadMember(ctx context.Context, companyID, memberID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, memberID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("team member", map[string]any{"id": memberID})
		}
		return nil, apperrors.MapError(err)
	}
	if user.CompanyID == nil || *user.CompanyID != companyID {
		return nil, apperrors.NewNotFound("team member", map[string]any{"id": memberID})
	}
	return user, nil
}

func (s *TeamService) countAdmins(ctx context.Context, companyID string) (int, error) {
	users, err := s.users.ListByCompany(ctx, companyID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	admins := 0
	for _, u := range users {
		if u.Active && u.Role != nil && *u.Role == domain.RoleAdmin {
			admins++
		}
	}
	return admins, nil
}
