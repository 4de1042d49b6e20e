package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/api/dto"
	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/service"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

// OpportunitiesHandler serves the public catalog and opportunity creation.
type OpportunitiesHandler struct {
	service *service.OpportunityService
}

// NewOpportunitiesHandler constructs handler.
func NewOpportunitiesHandler(opportunityService *service.OpportunityService) *OpportunitiesHandler {
	return &OpportunitiesHandler{service: opportunityService}
}

// List GET /opportunities.
func (h *OpportunitiesHandler) List(c *fiber.Ctx) error {
	opps, err := h.service.ListOpen(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOpportunityList(opps)})
}

// Get GET /opportunities/:id.
func (h *OpportunitiesHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	resp := dto.OpportunityDetailResponse{
		OpportunityResponse: dto.NewOpportunityResponse(&detail.Opportunity),
		Organization:        dto.NewOrganizationSummary(&detail.Organization),
		Past:                detail.Past,
	}

	caller := auth.IdentityFromContext(c)
	if caller.Is(domain.RoleVolunteer) {
		signedUp, err := h.service.SignedUp(c.UserContext(), caller, detail.Opportunity.ID)
		if err != nil {
			return err
		}
		resp.SignedUp = &signedUp
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create POST /opportunities.
func (h *OpportunitiesHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOpportunityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	opp, err := h.service.CreateOpportunity(c.UserContext(), auth.IdentityFromContext(c), service.OpportunityInput{
		OrganizationID: req.OrganizationID,
		Title:          req.Title,
		Description:    req.Description,
		Location:       req.Location,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		TotalSlots:     req.TotalSlots,
		Requirements:   req.Requirements,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOpportunityResponse(opp)})
}
