package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/api/dto"
	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/service"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

// SignUpsHandler reserves slots for volunteers.
type SignUpsHandler struct {
	service *service.SignUpService
}

// NewSignUpsHandler constructs handler.
func NewSignUpsHandler(signUpService *service.SignUpService) *SignUpsHandler {
	return &SignUpsHandler{service: signUpService}
}

// Create POST /signups.
func (h *SignUpsHandler) Create(c *fiber.Ctx) error {
	var req dto.SignUpRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OpportunityID == "" {
		return apperrors.NewValidationError("opportunity_id required", map[string]any{"fields": []string{"opportunity_id"}})
	}

	signUp, err := h.service.SignUp(c.UserContext(), auth.IdentityFromContext(c), req.OpportunityID, req.Notes)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewSignUpResponse(signUp)})
}

// ListMine GET /me/signups.
func (h *SignUpsHandler) ListMine(c *fiber.Ctx) error {
	view, err := h.service.ListForVolunteer(c.UserContext(), auth.IdentityFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.VolunteerSignUpsResponse{
		Upcoming: dto.NewSignUpDetailList(view.Upcoming),
		Past:     dto.NewSignUpDetailList(view.Past),
	}})
}
