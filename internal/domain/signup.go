package domain

import "time"

// SignUpStatus describes a reservation.
type SignUpStatus string

const (
	SignUpConfirmed SignUpStatus = "CONFIRMED"
)

// SignUp is a volunteer's reservation of one slot. Unique per volunteer and opportunity.
type SignUp struct {
	ID            string
	VolunteerID   string
	OpportunityID string
	Status        SignUpStatus
	Notes         *string
	CreatedAt     time.Time
}

// SignUpDetail joins a sign-up with what dashboards display alongside it.
type SignUpDetail struct {
	SignUp       SignUp
	Volunteer    *User
	Opportunity  *Opportunity
	Organization *Organization
}
