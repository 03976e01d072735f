package domain

import "time"

// Identity is the decoded token payload attached to authenticated requests.
type Identity struct {
	UserID      string
	AccountType AccountType
	CompanyID   *string
	Role        *Role
	ExpiresAt   time.Time
}

// HasRole reports whether the identity carries one of the given roles.
func (i Identity) HasRole(roles ...Role) bool {
	if i.Role == nil {
		return false
	}
	for _, role := range roles {
		if *i.Role == role {
			return true
		}
	}
	return false
}

// Company returns the company id or an empty string.
func (i Identity) Company() string {
	if i.CompanyID == nil {
		return ""
	}
	return *i.CompanyID
}
