package domain

import "time"

// OrganizationStatus is the approval state set by a super admin.
type OrganizationStatus string

const (
	OrganizationPending  OrganizationStatus = "PENDING"
	OrganizationApproved OrganizationStatus = "APPROVED"
	OrganizationRejected OrganizationStatus = "REJECTED"
)

// Organization posts opportunities once approved. AdminID owns it one-to-one.
type Organization struct {
	ID          string
	Name        string
	Email       string
	Phone       *string
	Address     *string
	Website     *string
	Description *string
	Status      OrganizationStatus
	AdminID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Approved reports whether the organization may create opportunities.
func (o *Organization) Approved() bool {
	return o.Status == OrganizationApproved
}
