package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/api/dto"
	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/service"
)

// DashboardHandler serves one dashboard per role.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: dashboardService}
}

// Volunteer GET /dashboard/volunteer.
func (h *DashboardHandler) Volunteer(c *fiber.Ctx) error {
	view, err := h.service.Volunteer(c.UserContext(), auth.IdentityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VolunteerSignUpsResponse{
		Upcoming: dto.NewSignUpDetailList(view.Upcoming),
		Past:     dto.NewSignUpDetailList(view.Past),
	}})
}

// OrgAdmin GET /dashboard/org-admin.
func (h *DashboardHandler) OrgAdmin(c *fiber.Ctx) error {
	view, err := h.service.OrgAdmin(c.UserContext(), auth.IdentityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OrgAdminDashboardResponse{
		Organization: dto.NewOrganizationResponse(&view.Organization),
		Approved:     view.Approved,
		Upcoming:     opportunityRows(view.Upcoming),
		Past:         opportunityRows(view.Past),
		TotalSignUps: view.TotalSignUps,
	}})
}

// SuperAdmin GET /dashboard/super-admin.
func (h *DashboardHandler) SuperAdmin(c *fiber.Ctx) error {
	view, err := h.service.SuperAdmin(c.UserContext(), auth.IdentityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SuperAdminDashboardResponse{
		Pending:            dto.NewOrganizationList(view.Pending),
		Approved:           dto.NewOrganizationList(view.Approved),
		Rejected:           dto.NewOrganizationList(view.Rejected),
		TotalVolunteers:    view.TotalVolunteers,
		TotalOpportunities: view.TotalOpportunities,
		TotalSignUps:       view.TotalSignUps,
	}})
}

func opportunityRows(rows []service.OpportunityWithSignUps) []dto.OpportunitySignUpsResponse {
	out := make([]dto.OpportunitySignUpsResponse, 0, len(rows))
	for i := range rows {
		out = append(out, dto.OpportunitySignUpsResponse{
			Opportunity: dto.NewOpportunityResponse(&rows[i].Opportunity),
			SignUps:     dto.NewSignUpDetailList(rows[i].SignUps),
			Past:        rows[i].Past,
		})
	}
	return out
}
