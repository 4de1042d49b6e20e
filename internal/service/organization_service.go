package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/auth"
	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/events"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

// OrganizationService runs the organization registry: creation by a super admin and approval decisions.
type OrganizationService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	bcryptCost int
	now        Clock
	logger     *zap.Logger
}

// OrganizationDependencies bundles collaborators for the organization service.
type OrganizationDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Clock      Clock
	Logger     *zap.Logger
}

// OrganizationInput describes the organization part of a creation request.
type OrganizationInput struct {
	Name        string
	Email       string
	Phone       *string
	Address     *string
	Website     *string
	Description *string
}

// AdminInput describes the account created to administer the organization.
type AdminInput struct {
	Name     string
	Email    string
	Password string
}

// NewOrganizationService builds the service.
func NewOrganizationService(cfg config.Config, deps OrganizationDependencies) *OrganizationService {
	return &OrganizationService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
		now:        deps.Clock.orDefault(),
		logger:     loggerOrNop(deps.Logger),
	}
}

// CreateOrganization creates a pending organization together with its pre-verified admin account.
// Both rows are written in one transaction.
func (s *OrganizationService) CreateOrganization(ctx context.Context, caller domain.Identity, org OrganizationInput, admin AdminInput) (*domain.Organization, error) {
	if !caller.Is(domain.RoleSuperAdmin) {
		return nil, apperrors.NewUnauthorized("super admin required")
	}
	if err := requireFields(map[string]string{
		"name":           org.Name,
		"email":          org.Email,
		"admin_name":     admin.Name,
		"admin_email":    admin.Email,
		"admin_password": admin.Password,
	}); err != nil {
		return nil, err
	}

	adminEmail := normalizeEmail(admin.Email)
	if _, err := s.store.Repos().Users.GetByEmail(ctx, adminEmail); err == nil {
		return nil, apperrors.NewConflict("email already belongs to a user", map[string]any{"admin_email": adminEmail})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(admin.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	verifiedAt := s.now()
	user := &domain.User{
		Name:            admin.Name,
		Email:           adminEmail,
		PasswordHash:    hash,
		Role:            domain.RoleOrgAdmin,
		EmailVerifiedAt: &verifiedAt,
	}
	created := &domain.Organization{
		Name:        org.Name,
		Email:       normalizeEmail(org.Email),
		Phone:       org.Phone,
		Address:     org.Address,
		Website:     org.Website,
		Description: org.Description,
		Status:      domain.OrganizationPending,
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		created.AdminID = user.ID
		return repos.Organizations.Create(ctx, created)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already belongs to a user", map[string]any{"admin_email": adminEmail})
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.logger.Info("organization created",
		zap.String("organization_id", created.ID),
		zap.String("admin_id", user.ID))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventOrganizationCreated, caller, s.now(),
		events.OrganizationCreatedPayload{Organization: *created, Admin: *user}))
	return created, nil
}

// DecideApproval sets the organization to APPROVED or REJECTED. A later decision overwrites an earlier one.
func (s *OrganizationService) DecideApproval(ctx context.Context, caller domain.Identity, orgID string, approved bool) (*domain.Organization, error) {
	if !caller.Is(domain.RoleSuperAdmin) {
		return nil, apperrors.NewUnauthorized("super admin required")
	}

	repos := s.store.Repos()
	current, err := repos.Organizations.GetByID(ctx, orgID)
	if err != nil {
		return nil, lookupError(err, "organization", map[string]any{"organization_id": orgID})
	}

	status := domain.OrganizationRejected
	if approved {
		status = domain.OrganizationApproved
	}
	updated, err := repos.Organizations.UpdateStatus(ctx, orgID, status)
	if err != nil {
		return nil, lookupError(err, "organization", map[string]any{"organization_id": orgID})
	}

	s.logger.Info("organization decided",
		zap.String("organization_id", orgID),
		zap.String("old_status", string(current.Status)),
		zap.String("new_status", string(status)))

	payload := events.OrganizationDecidedPayload{Organization: *updated, OldStatus: current.Status}
	if adminUser, err := repos.Users.GetByID(ctx, updated.AdminID); err == nil {
		payload.AdminEmail = adminUser.Email
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventOrganizationDecided, caller, s.now(), payload))
	return updated, nil
}

// ListOrganizations returns every organization, newest first.
func (s *OrganizationService) ListOrganizations(ctx context.Context, caller domain.Identity) ([]domain.Organization, error) {
	if !caller.Is(domain.RoleSuperAdmin) {
		return nil, apperrors.NewUnauthorized("super admin required")
	}
	orgs, err := s.store.Repos().Organizations.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return orgs, nil
}
