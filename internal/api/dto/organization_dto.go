package dto

import (
	"time"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

// CreateOrganizationRequest creates an organization together with its admin account.
type CreateOrganizationRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	Website       *string `json:"website"`
	Description   *string `json:"description"`
	AdminName     string  `json:"admin_name"`
	AdminEmail    string  `json:"admin_email"`
	AdminPassword string  `json:"admin_password"`
}

// ApprovalRequest carries a super admin decision.
type ApprovalRequest struct {
	Approved *bool `json:"approved"`
}

// OrganizationSummary is the short form embedded in other responses.
type OrganizationSummary struct {
	ID     string                    `json:"id"`
	Name   string                    `json:"name"`
	Status domain.OrganizationStatus `json:"status"`
}

// OrganizationResponse is the full organization view.
type OrganizationResponse struct {
	ID          string                    `json:"id"`
	Name        string                    `json:"name"`
	Email       string                    `json:"email"`
	Phone       *string                   `json:"phone,omitempty"`
	Address     *string                   `json:"address,omitempty"`
	Website     *string                   `json:"website,omitempty"`
	Description *string                   `json:"description,omitempty"`
	Status      domain.OrganizationStatus `json:"status"`
	AdminID     string                    `json:"admin_id"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// NewOrganizationSummary maps the short form.
func NewOrganizationSummary(o *domain.Organization) OrganizationSummary {
	return OrganizationSummary{ID: o.ID, Name: o.Name, Status: o.Status}
}

// NewOrganizationResponse maps a domain organization.
func NewOrganizationResponse(o *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:          o.ID,
		Name:        o.Name,
		Email:       o.Email,
		Phone:       o.Phone,
		Address:     o.Address,
		Website:     o.Website,
		Description: o.Description,
		Status:      o.Status,
		AdminID:     o.AdminID,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

// NewOrganizationList maps a slice of organizations.
func NewOrganizationList(orgs []domain.Organization) []OrganizationResponse {
	items := make([]OrganizationResponse, 0, len(orgs))
	for i := range orgs {
		items = append(items, NewOrganizationResponse(&orgs[i]))
	}
	return items
}
