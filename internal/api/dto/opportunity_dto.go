package dto

import (
	"time"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// CreateOpportunityRequest payload.
type CreateOpportunityRequest struct {
	OrganizationID string    `json:"organization_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Location       string    `json:"location"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TotalSlots     int       `json:"total_slots"`
	Requirements   *string   `json:"requirements"`
}

// OpportunityResponse is an opportunity with its derived remaining capacity.
type OpportunityResponse struct {
	ID             string                   `json:"id"`
	OrganizationID string                   `json:"organization_id"`
	Title          string                   `json:"title"`
	Description    string                   `json:"description"`
	Location       string                   `json:"location"`
	StartDate      time.Time                `json:"start_date"`
	EndDate        time.Time                `json:"end_date"`
	TotalSlots     int                      `json:"total_slots"`
	FilledSlots    int                      `json:"filled_slots"`
	RemainingSlots int                      `json:"remaining_slots"`
	Requirements   *string                  `json:"requirements,omitempty"`
	Status         domain.OpportunityStatus `json:"status"`
	CreatedAt      time.Time                `json:"created_at"`
}

// OpportunityDetailResponse adds the organization and the past flag. SignedUp is
// set only for volunteer callers.
type OpportunityDetailResponse struct {
	OpportunityResponse
	Organization OrganizationSummary `json:"organization"`
	Past         bool                `json:"past"`
	SignedUp     *bool               `json:"signed_up,omitempty"`
}

// NewOpportunityResponse maps a domain opportunity.
func NewOpportunityResponse(o *domain.Opportunity) OpportunityResponse {
	return OpportunityResponse{
		ID:             o.ID,
		OrganizationID: o.OrganizationID,
		Title:          o.Title,
		Description:    o.Description,
		Location:       o.Location,
		StartDate:      o.StartDate,
		EndDate:        o.EndDate,
		TotalSlots:     o.TotalSlots,
		FilledSlots:    o.FilledSlots,
		RemainingSlots: o.RemainingSlots(),
		Requirements:   o.Requirements,
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
	}
}

// NewOpportunityList maps a slice of opportunities.
func NewOpportunityList(opps []domain.Opportunity) []OpportunityResponse {
	items := make([]OpportunityResponse, 0, len(opps))
	for i := range opps {
		items = append(items, NewOpportunityResponse(&opps[i]))
	}
	return items
}
