package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/events"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

// SignUpRecorder receives the outcome code of every sign-up attempt.
type SignUpRecorder interface {
	RecordSignUp(outcome string)
}

// SignUpService reserves opportunity slots for volunteers.
type SignUpService struct {
	store       repository.Store
	dispatcher  events.Dispatcher
	recorder    SignUpRecorder
	maxAttempts int
	backoff     time.Duration
	now         Clock
	logger      *zap.Logger
}

// SignUpDependencies bundles collaborators for the sign-up service.
type SignUpDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Recorder   SignUpRecorder
	Clock      Clock
	Logger     *zap.Logger
}

// VolunteerSignUps splits a volunteer's sign-ups on whether the opportunity has started.
type VolunteerSignUps struct {
	Upcoming []domain.SignUpDetail
	Past     []domain.SignUpDetail
}

const outcomeConfirmed = "CONFIRMED"

// NewSignUpService builds the service.
func NewSignUpService(cfg config.SignUpConfig, deps SignUpDependencies) *SignUpService {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &SignUpService{
		store:       deps.Store,
		dispatcher:  deps.Dispatcher,
		recorder:    deps.Recorder,
		maxAttempts: maxAttempts,
		backoff:     cfg.RetryBackoff(),
		now:         deps.Clock.orDefault(),
		logger:      loggerOrNop(deps.Logger),
	}
}

// SignUp reserves one slot on the opportunity for the calling volunteer.
//
// The lookup, the eligibility checks and the writes run in one transaction holding the
// opportunity's row lock, so concurrent callers are serialized per opportunity. Transient
// storage contention retries the whole unit a bounded number of times.
func (s *SignUpService) SignUp(ctx context.Context, caller domain.Identity, opportunityID string, notes *string) (*domain.SignUp, error) {
	if !caller.Is(domain.RoleVolunteer) {
		s.record(apperrors.CodeUnauthorized)
		return nil, apperrors.NewUnauthorized("volunteer required")
	}

	var (
		signUp *domain.SignUp
		opp    *domain.Opportunity
		err    error
	)
	for attempt := 1; ; attempt++ {
		signUp, opp, err = s.reserve(ctx, caller, opportunityID, notes)
		if err == nil || !errors.Is(err, apperrors.ErrTransient) {
			break
		}
		if attempt >= s.maxAttempts {
			s.logger.Error("sign-up retries exhausted",
				zap.String("opportunity_id", opportunityID),
				zap.Int("attempts", attempt),
				zap.Error(err))
			err = apperrors.NewInternalError(err)
			break
		}
		s.logger.Warn("sign-up contention; retrying",
			zap.String("opportunity_id", opportunityID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if waitErr := wait(ctx, s.backoff*time.Duration(attempt)); waitErr != nil {
			err = apperrors.NewInternalError(waitErr)
			break
		}
	}
	if err != nil {
		err = apperrors.MapError(err)
		s.record(apperrors.ToDomainError(err).Code)
		return nil, err
	}
	s.record(outcomeConfirmed)

	s.logger.Info("sign-up confirmed",
		zap.String("signup_id", signUp.ID),
		zap.String("opportunity_id", opp.ID),
		zap.String("volunteer_id", caller.UserID),
		zap.Int("filled_slots", opp.FilledSlots),
		zap.String("status", string(opp.Status)))
	s.announce(ctx, caller, signUp, opp)
	return signUp, nil
}

func (s *SignUpService) reserve(ctx context.Context, caller domain.Identity, opportunityID string, notes *string) (*domain.SignUp, *domain.Opportunity, error) {
	var (
		created *domain.SignUp
		locked  *domain.Opportunity
	)
	details := map[string]any{"opportunity_id": opportunityID}

	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		opp, err := repos.Opportunities.GetByIDForUpdate(ctx, opportunityID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NewNotFound("opportunity", details)
			}
			return err
		}

		switch {
		case opp.Status == domain.OpportunityFull:
			return apperrors.NewFull(details)
		case opp.Status != domain.OpportunityOpen:
			return apperrors.NewClosed(details)
		case !opp.HasCapacity():
			return apperrors.NewFull(details)
		}

		exists, err := repos.SignUps.Exists(ctx, caller.UserID, opp.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.NewAlreadyRegistered(details)
		}

		signUp := &domain.SignUp{
			VolunteerID:   caller.UserID,
			OpportunityID: opp.ID,
			Status:        domain.SignUpConfirmed,
			Notes:         notes,
		}
		if err := repos.SignUps.Create(ctx, signUp); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return apperrors.NewAlreadyRegistered(details)
			}
			return err
		}

		opp.ReserveSlot()
		if err := repos.Opportunities.SaveCapacity(ctx, opp); err != nil {
			return err
		}
		created, locked = signUp, opp
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return created, locked, nil
}

// announce publishes the committed sign-up. It runs after commit and never fails the caller.
func (s *SignUpService) announce(ctx context.Context, caller domain.Identity, signUp *domain.SignUp, opp *domain.Opportunity) {
	repos := s.store.Repos()
	payload := events.SignUpCreatedPayload{SignUp: *signUp, Opportunity: *opp}

	if volunteer, err := repos.Users.GetByID(ctx, caller.UserID); err == nil {
		payload.Volunteer = *volunteer
	} else {
		payload.Volunteer = domain.User{ID: caller.UserID, Email: caller.Email, Name: caller.Name, Role: caller.Role}
	}
	if org, err := repos.Organizations.GetByID(ctx, opp.OrganizationID); err == nil {
		payload.Organization = *org
	} else {
		s.logger.Warn("organization lookup for sign-up notice failed",
			zap.String("organization_id", opp.OrganizationID), zap.Error(err))
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventSignUpCreated, caller, s.now(), payload))
}

// ListForVolunteer returns the caller's sign-ups with their opportunity and organization, newest first.
func (s *SignUpService) ListForVolunteer(ctx context.Context, caller domain.Identity) (*VolunteerSignUps, error) {
	if !caller.Is(domain.RoleVolunteer) {
		return nil, apperrors.NewUnauthorized("volunteer required")
	}
	repos := s.store.Repos()
	signUps, err := repos.SignUps.ListByVolunteer(ctx, caller.UserID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now()
	result := &VolunteerSignUps{}
	for _, su := range signUps {
		detail, err := loadSignUpDetail(ctx, repos, su, false)
		if err != nil {
			return nil, err
		}
		if detail.Opportunity.IsPast(now) {
			result.Past = append(result.Past, detail)
		} else {
			result.Upcoming = append(result.Upcoming, detail)
		}
	}
	return result, nil
}

func loadSignUpDetail(ctx context.Context, repos repository.Repositories, su domain.SignUp, withVolunteer bool) (domain.SignUpDetail, error) {
	detail := domain.SignUpDetail{SignUp: su}
	opp, err := repos.Opportunities.GetByID(ctx, su.OpportunityID)
	if err != nil {
		return detail, lookupError(err, "opportunity", map[string]any{"opportunity_id": su.OpportunityID})
	}
	detail.Opportunity = opp
	org, err := repos.Organizations.GetByID(ctx, opp.OrganizationID)
	if err != nil {
		return detail, lookupError(err, "organization", map[string]any{"organization_id": opp.OrganizationID})
	}
	detail.Organization = org
	if withVolunteer {
		volunteer, err := repos.Users.GetByID(ctx, su.VolunteerID)
		if err != nil {
			return detail, lookupError(err, "user", map[string]any{"user_id": su.VolunteerID})
		}
		volunteer.PasswordHash = ""
		detail.Volunteer = volunteer
	}
	return detail, nil
}

func (s *SignUpService) record(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordSignUp(outcome)
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
