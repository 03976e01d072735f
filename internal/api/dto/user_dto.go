package dto

import (
	"time"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name          string             `json:"name" validate:"required"`
	Email         string             `json:"email" validate:"required,email"`
	Password      string             `json:"password" validate:"required,min=8"`
	AccountType   domain.AccountType `json:"accountType" validate:"omitempty,oneof=business personal"`
	CompanyName   string             `json:"companyName"`
	CompanyDomain string             `json:"companyDomain"`
	SupportEmail  string             `json:"supportEmail" validate:"omitempty,email"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Email       string             `json:"email"`
	AccountType domain.AccountType `json:"accountType"`
	CompanyID   *string            `json:"companyId"`
	Role        *domain.Role       `json:"role"`
	Active      bool               `json:"active"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	User      UserResponse     `json:"user"`
	Company   *CompanyResponse `json:"company,omitempty"`
}

// MeResponse describes the current caller.
type MeResponse struct {
	User    UserResponse     `json:"user"`
	Company *CompanyResponse `json:"company,omitempty"`
}

// AddMemberRequest payload for POST /team.
type AddMemberRequest struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Password string      `json:"password" validate:"required,min=8"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=admin agent viewer"`
}

// ChangeRoleRequest payload for PATCH /team/:id/role.
type ChangeRoleRequest struct {
	Role domain.Role `json:"role" validate:"required,oneof=admin agent viewer"`
}

// TeamMemberResponse is the wire form of a team member.
type TeamMemberResponse struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	Active   bool        `json:"active"`
	JoinedAt time.Time   `json:"joinedAt"`
}

// NewUserResponse maps an account, leaving out the password hash.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		AccountType: u.AccountType,
		CompanyID:   u.CompanyID,
		Role:        u.Role,
		Active:      u.Active,
		CreatedAt:   u.CreatedAt,
	}
}

// NewTeamMemberResponse maps a team member.
func NewTeamMemberResponse(m *domain.TeamMember) TeamMemberResponse {
	return TeamMemberResponse{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		Role:     m.Role,
		Active:   m.Active,
		JoinedAt: m.JoinedAt,
	}
}

// NewTeamMemberResponses maps a slice, never returning nil.
func NewTeamMemberResponses(members []domain.TeamMember) []TeamMemberResponse {
	out := make([]TeamMemberResponse, 0, len(members))
	for i := range members {
		out = append(out, NewTeamMemberResponse(&members[i]))
	}
	return out
}
