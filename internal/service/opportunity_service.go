package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/events"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

// OpportunityService creates and lists opportunities.
type OpportunityService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	now        Clock
	logger     *zap.Logger
}

// OpportunityDependencies bundles collaborators for the opportunity service.
type OpportunityDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Clock      Clock
	Logger     *zap.Logger
}

// OpportunityInput describes opportunity creation payload. An empty OrganizationID means the
// caller's own organization.
type OpportunityInput struct {
	OrganizationID string
	Title          string
	Description    string
	Location       string
	StartDate      time.Time
	EndDate        time.Time
	TotalSlots     int
	Requirements   *string
}

// OpportunityDetail is an opportunity with its organization and derived past flag.
type OpportunityDetail struct {
	Opportunity  domain.Opportunity
	Organization domain.Organization
	Past         bool
}

// NewOpportunityService builds the service.
func NewOpportunityService(deps OpportunityDependencies) *OpportunityService {
	return &OpportunityService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		now:        deps.Clock.orDefault(),
		logger:     loggerOrNop(deps.Logger),
	}
}

// CreateOpportunity publishes a new OPEN opportunity for the caller's approved organization.
func (s *OpportunityService) CreateOpportunity(ctx context.Context, caller domain.Identity, in OpportunityInput) (*domain.Opportunity, error) {
	if !caller.Is(domain.RoleOrgAdmin) {
		return nil, apperrors.NewUnauthorized("organization admin required")
	}

	repos := s.store.Repos()
	org, err := s.resolveOrganization(ctx, repos, caller, in.OrganizationID)
	if err != nil {
		return nil, err
	}
	if org.AdminID != caller.UserID {
		return nil, apperrors.NewUnauthorized("not the admin of this organization")
	}
	if !org.Approved() {
		return nil, apperrors.NewForbidden("organization is not approved")
	}

	if err := requireFields(map[string]string{
		"title":       in.Title,
		"description": in.Description,
		"location":    in.Location,
	}); err != nil {
		return nil, err
	}

	now := s.now()
	switch {
	case !in.EndDate.After(in.StartDate):
		return nil, apperrors.NewInvalidRange("end date must be after start date", map[string]any{
			"start_date": in.StartDate, "end_date": in.EndDate,
		})
	case in.StartDate.Before(now):
		return nil, apperrors.NewInvalidRange("start date is in the past", map[string]any{"start_date": in.StartDate})
	case in.TotalSlots <= 0:
		return nil, apperrors.NewInvalidRange("total slots must be positive", map[string]any{"total_slots": in.TotalSlots})
	}

	opp := &domain.Opportunity{
		OrganizationID: org.ID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Location:       strings.TrimSpace(in.Location),
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		TotalSlots:     in.TotalSlots,
		FilledSlots:    0,
		Requirements:   in.Requirements,
		Status:         domain.OpportunityOpen,
	}
	if err := repos.Opportunities.Create(ctx, opp); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("opportunity created",
		zap.String("opportunity_id", opp.ID),
		zap.String("organization_id", org.ID),
		zap.Int("total_slots", opp.TotalSlots))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventOpportunityPublished, caller, now,
		events.OpportunityPublishedPayload{Opportunity: *opp}))
	return opp, nil
}

func (s *OpportunityService) resolveOrganization(ctx context.Context, repos repository.Repositories, caller domain.Identity, orgID string) (*domain.Organization, error) {
	if strings.TrimSpace(orgID) == "" {
		org, err := repos.Organizations.GetByAdminID(ctx, caller.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("caller has no organization")
		}
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		return org, nil
	}
	org, err := repos.Organizations.GetByID(ctx, orgID)
	if err != nil {
		return nil, lookupError(err, "organization", map[string]any{"organization_id": orgID})
	}
	return org, nil
}

// ListOpen returns OPEN opportunities of approved organizations that have not started, soonest first.
func (s *OpportunityService) ListOpen(ctx context.Context) ([]domain.Opportunity, error) {
	opps, err := s.store.Repos().Opportunities.ListOpen(ctx, s.now())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return opps, nil
}

// Get returns one opportunity with its organization.
func (s *OpportunityService) Get(ctx context.Context, id string) (*OpportunityDetail, error) {
	repos := s.store.Repos()
	opp, err := repos.Opportunities.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "opportunity", map[string]any{"opportunity_id": id})
	}
	org, err := repos.Organizations.GetByID(ctx, opp.OrganizationID)
	if err != nil {
		return nil, lookupError(err, "organization", map[string]any{"organization_id": opp.OrganizationID})
	}
	return &OpportunityDetail{Opportunity: *opp, Organization: *org, Past: opp.IsPast(s.now())}, nil
}

// SignedUp reports whether a volunteer caller already holds a sign-up for the opportunity.
// Other callers always get false.
func (s *OpportunityService) SignedUp(ctx context.Context, caller domain.Identity, opportunityID string) (bool, error) {
	if !caller.Is(domain.RoleVolunteer) {
		return false, nil
	}
	exists, err := s.store.Repos().SignUps.Exists(ctx, caller.UserID, opportunityID)
	if err != nil {
		return false, apperrors.NewInternalError(err)
	}
	return exists, nil
}
