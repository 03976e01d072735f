package domain

import "time"

// AccountType discriminates business tenants from personal inbox users.
type AccountType string

const (
	AccountTypeBusiness AccountType = "business"
	AccountTypePersonal AccountType = "personal"
)

// Valid reports whether a is a known account type.
func (a AccountType) Valid() bool {
	return a == AccountTypeBusiness || a == AccountTypePersonal
}

// Role enumerates business team roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAgent  Role = "agent"
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the three team roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAgent || r == RoleViewer
}

// User is an account able to sign in. Business users carry a company and a role.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AccountType  AccountType
	CompanyID    *string
	Role         *Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TeamMember is the team-facing view of a business user.
type TeamMember struct {
	ID       string
	Name     string
	Email    string
	Role     Role
	Active   bool
	JoinedAt time.Time
}

// AsTeamMember projects a business user onto its team view.
func (u *User) AsTeamMember() TeamMember {
	role := RoleViewer
	if u.Role != nil {
		role = *u.Role
	}
	return TeamMember{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     role,
		Active:   u.Active,
		JoinedAt: u.CreatedAt,
	}
}
