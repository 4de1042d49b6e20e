package dto

// OpportunitySignUpsResponse is one opportunity row of the org admin dashboard.
type OpportunitySignUpsResponse struct {
	Opportunity OpportunityResponse    `json:"opportunity"`
	SignUps     []SignUpDetailResponse `json:"signups"`
	Past        bool                   `json:"past"`
}

// OrgAdminDashboardResponse payload.
type OrgAdminDashboardResponse struct {
	Organization OrganizationResponse         `json:"organization"`
	Approved     bool                         `json:"approved"`
	Upcoming     []OpportunitySignUpsResponse `json:"upcoming"`
	Past         []OpportunitySignUpsResponse `json:"past"`
	TotalSignUps int                          `json:"total_signups"`
}

// SuperAdminDashboardResponse payload.
type SuperAdminDashboardResponse struct {
	Pending            []OrganizationResponse `json:"pending"`
	Approved           []OrganizationResponse `json:"approved"`
	Rejected           []OrganizationResponse `json:"rejected"`
	TotalVolunteers    int                    `json:"total_volunteers"`
	TotalOpportunities int                    `json:"total_opportunities"`
	TotalSignUps       int                    `json:"total_signups"`
}
