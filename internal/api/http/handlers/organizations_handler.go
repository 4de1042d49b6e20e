package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/api/dto"
	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/service"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

// OrganizationsHandler exposes the super admin registry endpoints.
type OrganizationsHandler struct {
	service *service.OrganizationService
}

// NewOrganizationsHandler constructs handler.
func NewOrganizationsHandler(organizationService *service.OrganizationService) *OrganizationsHandler {
	return &OrganizationsHandler{service: organizationService}
}

// List GET /organizations.
func (h *OrganizationsHandler) List(c *fiber.Ctx) error {
	orgs, err := h.service.ListOrganizations(c.UserContext(), auth.IdentityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrganizationList(orgs)})
}

// Create POST /organizations.
func (h *OrganizationsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOrganizationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	org, err := h.service.CreateOrganization(c.UserContext(), auth.IdentityFromContext(c),
		service.OrganizationInput{
			Name:        req.Name,
			Email:       req.Email,
			Phone:       req.Phone,
			Address:     req.Address,
			Website:     req.Website,
			Description: req.Description,
		},
		service.AdminInput{
			Name:     req.AdminName,
			Email:    req.AdminEmail,
			Password: req.AdminPassword,
		})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOrganizationResponse(org)})
}

// Decide PATCH /organizations/:id/approval.
func (h *OrganizationsHandler) Decide(c *fiber.Ctx) error {
	var req dto.ApprovalRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Approved == nil {
		return apperrors.NewValidationError("approved required", map[string]any{"fields": []string{"approved"}})
	}

	org, err := h.service.DecideApproval(c.UserContext(), auth.IdentityFromContext(c), c.Params("id"), *req.Approved)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrganizationResponse(org)})
}
