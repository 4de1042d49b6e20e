package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

// DashboardService assembles the per-role dashboard views. Reads take no locks.
type DashboardService struct {
	store   repository.Store
	signUps *SignUpService
	now     Clock
	logger  *zap.Logger
}

// DashboardDependencies bundles collaborators for the dashboard service.
type DashboardDependencies struct {
	Store   repository.Store
	SignUps *SignUpService
	Clock   Clock
	Logger  *zap.Logger
}

// OpportunityWithSignUps is one row of the org admin dashboard.
type OpportunityWithSignUps struct {
	Opportunity domain.Opportunity
	SignUps     []domain.SignUpDetail
	Past        bool
}

// OrgAdminDashboard is the org admin's view of their organization.
type OrgAdminDashboard struct {
	Organization domain.Organization
	Approved     bool
	Upcoming     []OpportunityWithSignUps
	Past         []OpportunityWithSignUps
	TotalSignUps int
}

// SuperAdminDashboard groups organizations by status and carries platform totals.
type SuperAdminDashboard struct {
	Pending            []domain.Organization
	Approved           []domain.Organization
	Rejected           []domain.Organization
	TotalVolunteers    int
	TotalOpportunities int
	TotalSignUps       int
}

// NewDashboardService builds the service.
func NewDashboardService(deps DashboardDependencies) *DashboardService {
	return &DashboardService{
		store:   deps.Store,
		signUps: deps.SignUps,
		now:     deps.Clock.orDefault(),
		logger:  loggerOrNop(deps.Logger),
	}
}

// Volunteer returns the caller's sign-ups split into upcoming and past.
func (s *DashboardService) Volunteer(ctx context.Context, caller domain.Identity) (*VolunteerSignUps, error) {
	return s.signUps.ListForVolunteer(ctx, caller)
}

// OrgAdmin returns the caller's organization with its opportunities, newest first.
func (s *DashboardService) OrgAdmin(ctx context.Context, caller domain.Identity) (*OrgAdminDashboard, error) {
	if !caller.Is(domain.RoleOrgAdmin) {
		return nil, apperrors.NewUnauthorized("organization admin required")
	}
	repos := s.store.Repos()
	org, err := repos.Organizations.GetByAdminID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"admin_id": caller.UserID})
		}
		return nil, apperrors.NewInternalError(err)
	}

	opps, err := repos.Opportunities.ListByOrganization(ctx, org.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now()
	view := &OrgAdminDashboard{Organization: *org, Approved: org.Approved()}
	for _, opp := range opps {
		signUps, err := repos.SignUps.ListByOpportunity(ctx, opp.ID)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		row := OpportunityWithSignUps{Opportunity: opp, Past: opp.IsPast(now)}
		for _, su := range signUps {
			detail, err := loadSignUpDetail(ctx, repos, su, true)
			if err != nil {
				return nil, err
			}
			row.SignUps = append(row.SignUps, detail)
		}
		view.TotalSignUps += len(row.SignUps)
		if row.Past {
			view.Past = append(view.Past, row)
		} else {
			view.Upcoming = append(view.Upcoming, row)
		}
	}
	return view, nil
}

// SuperAdmin returns organizations grouped by status and platform-wide totals.
func (s *DashboardService) SuperAdmin(ctx context.Context, caller domain.Identity) (*SuperAdminDashboard, error) {
	if !caller.Is(domain.RoleSuperAdmin) {
		return nil, apperrors.NewUnauthorized("super admin required")
	}
	repos := s.store.Repos()
	orgs, err := repos.Organizations.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	view := &SuperAdminDashboard{}
	for _, org := range orgs {
		switch org.Status {
		case domain.OrganizationPending:
			view.Pending = append(view.Pending, org)
		case domain.OrganizationApproved:
			view.Approved = append(view.Approved, org)
		case domain.OrganizationRejected:
			view.Rejected = append(view.Rejected, org)
		}
	}

	if view.TotalVolunteers, err = repos.Users.CountByRole(ctx, domain.RoleVolunteer); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if view.TotalOpportunities, err = repos.Opportunities.Count(ctx); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if view.TotalSignUps, err = repos.SignUps.Count(ctx); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return view, nil
}
