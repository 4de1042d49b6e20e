package dto

import (
	"time"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// SignUpRequest payload.
type SignUpRequest struct {
	OpportunityID string  `json:"opportunity_id"`
	Notes         *string `json:"notes"`
}

// SignUpResponse is a confirmed reservation.
type SignUpResponse struct {
	ID            string              `json:"id"`
	VolunteerID   string              `json:"volunteer_id"`
	OpportunityID string              `json:"opportunity_id"`
	Status        domain.SignUpStatus `json:"status"`
	Notes         *string             `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// SignUpDetailResponse joins a sign-up with what is displayed alongside it.
type SignUpDetailResponse struct {
	SignUpResponse
	Volunteer    *UserResponse        `json:"volunteer,omitempty"`
	Opportunity  *OpportunityResponse `json:"opportunity,omitempty"`
	Organization *OrganizationSummary `json:"organization,omitempty"`
}

// VolunteerSignUpsResponse splits sign-ups on whether the opportunity has started.
type VolunteerSignUpsResponse struct {
	Upcoming []SignUpDetailResponse `json:"upcoming"`
	Past     []SignUpDetailResponse `json:"past"`
}

// NewSignUpResponse maps a domain sign-up.
func NewSignUpResponse(s *domain.SignUp) SignUpResponse {
	return SignUpResponse{
		ID:            s.ID,
		VolunteerID:   s.VolunteerID,
		OpportunityID: s.OpportunityID,
		Status:        s.Status,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
	}
}

// NewSignUpDetailResponse maps a joined sign-up.
func NewSignUpDetailResponse(d domain.SignUpDetail) SignUpDetailResponse {
	out := SignUpDetailResponse{SignUpResponse: NewSignUpResponse(&d.SignUp)}
	if d.Volunteer != nil {
		v := NewUserResponse(d.Volunteer)
		out.Volunteer = &v
	}
	if d.Opportunity != nil {
		o := NewOpportunityResponse(d.Opportunity)
		out.Opportunity = &o
	}
	if d.Organization != nil {
		org := NewOrganizationSummary(d.Organization)
		out.Organization = &org
	}
	return out
}

// NewSignUpDetailList maps a slice of joined sign-ups.
func NewSignUpDetailList(details []domain.SignUpDetail) []SignUpDetailResponse {
	items := make([]SignUpDetailResponse, 0, len(details))
	for _, d := range details {
		items = append(items, NewSignUpDetailResponse(d))
	}
	return items
}
