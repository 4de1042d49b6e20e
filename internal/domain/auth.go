package domain

import "time"

// Role is the fixed capability set of a user. It never changes after creation.
type Role string

const (
	RoleVolunteer  Role = "VOLUNTEER"
	RoleOrgAdmin   Role = "ORG_ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleVolunteer, RoleOrgAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Identity is the authenticated caller handed to every core operation.
type Identity struct {
	UserID string
	Role   Role
	Email  string
	Name   string
}

// Anonymous reports whether the identity carries no user.
func (i Identity) Anonymous() bool {
	return i.UserID == ""
}

// Is reports whether the identity is authenticated with role r.
func (i Identity) Is(r Role) bool {
	return !i.Anonymous() && i.Role == r
}

// VerificationToken backs the email verification link sent after registration.
type VerificationToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t *VerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
