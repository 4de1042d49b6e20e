package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignUpCreated        EventType = "signup_created"
	EventUserRegistered       EventType = "user_registered"
	EventOrganizationCreated  EventType = "organization_created"
	EventOrganizationDecided  EventType = "organization_decided"
	EventOpportunityPublished EventType = "opportunity_published"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services after commit.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New builds an event stamped with a fresh ID.
func New(eventType EventType, actor domain.Identity, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     Actor{UserID: actor.UserID, Role: actor.Role},
		Timestamp: at,
		Payload:   payload,
	}
}

// SignUpCreatedPayload carries the committed sign-up with what notifications need.
type SignUpCreatedPayload struct {
	SignUp       domain.SignUp       `json:"signup"`
	Volunteer    domain.User         `json:"volunteer"`
	Opportunity  domain.Opportunity  `json:"opportunity"`
	Organization domain.Organization `json:"organization"`
}

// UserRegisteredPayload carries the verification link data.
type UserRegisteredPayload struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// OrganizationCreatedPayload payload.
type OrganizationCreatedPayload struct {
	Organization domain.Organization `json:"organization"`
	Admin        domain.User         `json:"admin"`
}

// OrganizationDecidedPayload payload.
type OrganizationDecidedPayload struct {
	Organization domain.Organization       `json:"organization"`
	OldStatus    domain.OrganizationStatus `json:"old_status"`
	AdminEmail   string                    `json:"admin_email"`
}

// OpportunityPublishedPayload payload.
type OpportunityPublishedPayload struct {
	Opportunity domain.Opportunity `json:"opportunity"`
}
