package domain

import "time"

// User is an account of any role.
type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	Role            Role
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Identity projects the user into the caller value used by services.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Role: u.Role, Email: u.Email, Name: u.Name}
}

// Verified reports whether the email address was confirmed.
func (u *User) Verified() bool {
	return u.EmailVerifiedAt != nil
}
