package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/notify"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	"github.com/spec-kit/volunteer-hub/internal/repository/memory"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

func TestSignUpLastSlotFlipsToFull(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 2)

	first := f.volunteer(t, "ana")
	_, err := f.signUps.SignUp(ctx, first, opp.ID, nil)
	require.NoError(t, err)

	stored, err := f.store.Repos().Opportunities.GetByID(ctx, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FilledSlots)
	assert.Equal(t, domain.OpportunityOpen, stored.Status)

	second := f.volunteer(t, "ben")
	su, err := f.signUps.SignUp(ctx, second, opp.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.SignUpConfirmed, su.Status)

	stored, err = f.store.Repos().Opportunities.GetByID(ctx, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.FilledSlots)
	assert.Equal(t, domain.OpportunityFull, stored.Status)

	_, err = f.signUps.SignUp(ctx, f.volunteer(t, "cid"), opp.ID, nil)
	requireCode(t, err, apperrors.CodeFull)
}

func TestSignUpSequentialDuplicateIsAlreadyRegistered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 5)
	vol := f.volunteer(t, "ana")

	_, err := f.signUps.SignUp(ctx, vol, opp.ID, nil)
	require.NoError(t, err)
	_, err = f.signUps.SignUp(ctx, vol, opp.ID, nil)
	requireCode(t, err, apperrors.CodeAlreadyRegistered)

	stored, err := f.store.Repos().Opportunities.GetByID(ctx, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FilledSlots)
}

func TestSignUpPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 1)

	_, err := f.signUps.SignUp(ctx, admin, opp.ID, nil)
	requireCode(t, err, apperrors.CodeUnauthorized)

	_, err = f.signUps.SignUp(ctx, domain.Identity{}, opp.ID, nil)
	requireCode(t, err, apperrors.CodeUnauthorized)

	_, err = f.signUps.SignUp(ctx, f.volunteer(t, "ana"), "missing", nil)
	requireCode(t, err, apperrors.CodeNotFound)

	closed := *opp
	closed.Status = domain.OpportunityClosed
	require.NoError(t, f.store.Repos().Opportunities.SaveCapacity(ctx, &closed))
	_, err = f.signUps.SignUp(ctx, f.volunteer(t, "ben"), opp.ID, nil)
	requireCode(t, err, apperrors.CodeClosed)
}

func TestSignUpExactlyOneWinnerForLastSlot(t *testing.T) {
	for round := 0; round < 25; round++ {
		f := newFixture(t)
		admin, _ := f.organization(t, true)
		opp := f.opportunity(t, admin, 1)
		a, b := f.volunteer(t, "a"), f.volunteer(t, "b")

		var wg sync.WaitGroup
		start := make(chan struct{})
		errs := make([]error, 2)
		for i, vol := range []domain.Identity{a, b} {
			wg.Add(1)
			go func(i int, vol domain.Identity) {
				defer wg.Done()
				<-start
				_, errs[i] = f.signUps.SignUp(context.Background(), vol, opp.ID, nil)
			}(i, vol)
		}
		close(start)
		wg.Wait()

		winners := 0
		for _, err := range errs {
			if err == nil {
				winners++
				continue
			}
			requireCode(t, err, apperrors.CodeFull)
		}
		require.Equal(t, 1, winners, "round %d", round)
	}
}

func TestSignUpCapacityInvariantUnderLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 7)

	const volunteers = 40
	ids := make([]domain.Identity, volunteers)
	for i := range ids {
		ids[i] = f.volunteer(t, "v")
	}

	var (
		wg        sync.WaitGroup
		succeeded int32
		full      int32
		already   int32
	)
	for i := 0; i < volunteers*2; i++ {
		wg.Add(1)
		go func(vol domain.Identity) {
			defer wg.Done()
			_, err := f.signUps.SignUp(ctx, vol, opp.ID, nil)
			switch {
			case err == nil:
				atomic.AddInt32(&succeeded, 1)
			case apperrors.HasCode(err, apperrors.CodeFull):
				atomic.AddInt32(&full, 1)
			case apperrors.HasCode(err, apperrors.CodeAlreadyRegistered):
				atomic.AddInt32(&already, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(ids[i%volunteers])
	}
	wg.Wait()

	assert.Equal(t, int32(7), succeeded)
	assert.Equal(t, int32(volunteers*2-7), full+already)

	stored, err := f.store.Repos().Opportunities.GetByID(ctx, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, stored.FilledSlots)
	assert.Equal(t, domain.OpportunityFull, stored.Status)

	signUps, err := f.store.Repos().SignUps.ListByOpportunity(ctx, opp.ID)
	require.NoError(t, err)
	assert.Len(t, signUps, 7)
	seen := map[string]bool{}
	for _, su := range signUps {
		assert.False(t, seen[su.VolunteerID], "volunteer %s signed up twice", su.VolunteerID)
		seen[su.VolunteerID] = true
	}
}

func TestSignUpEndToEndExample(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 2)

	_, err := f.signUps.SignUp(ctx, f.volunteer(t, "early"), opp.ID, nil)
	require.NoError(t, err)

	_, err = f.signUps.SignUp(ctx, f.volunteer(t, "a"), opp.ID, nil)
	require.NoError(t, err)
	stored, err := f.store.Repos().Opportunities.GetByID(ctx, opp.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.FilledSlots)
	assert.Equal(t, domain.OpportunityFull, stored.Status)

	_, err = f.signUps.SignUp(ctx, f.volunteer(t, "b"), opp.ID, nil)
	requireCode(t, err, apperrors.CodeFull)
}

func TestSignUpRetriesTransientErrors(t *testing.T) {
	base := memory.NewStore(memory.WithClock(func() time.Time { return fixedNow }))
	f := newFixtureWithStore(t, base)
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 3)
	vol := f.volunteer(t, "ana")

	flaky := &flakyStore{Store: base, remaining: 2}
	svc := NewSignUpService(config.SignUpConfig{MaxAttempts: 3, RetryBackoffMS: 1}, SignUpDependencies{Store: flaky})

	_, err := svc.SignUp(context.Background(), vol, opp.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&flaky.calls))
}

func TestSignUpGivesUpAfterRetryBudget(t *testing.T) {
	base := memory.NewStore(memory.WithClock(func() time.Time { return fixedNow }))
	f := newFixtureWithStore(t, base)
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 3)
	vol := f.volunteer(t, "ana")

	flaky := &flakyStore{Store: base, remaining: 10}
	rec := &outcomeRecorder{}
	svc := NewSignUpService(config.SignUpConfig{MaxAttempts: 3, RetryBackoffMS: 1}, SignUpDependencies{Store: flaky, Recorder: rec})

	_, err := svc.SignUp(context.Background(), vol, opp.ID, nil)
	requireCode(t, err, apperrors.CodeInternal)
	assert.True(t, errors.Is(err, apperrors.ErrTransient))
	assert.Equal(t, int32(3), atomic.LoadInt32(&flaky.calls))
	assert.Equal(t, []string{apperrors.CodeInternal}, rec.outcomes)

	stored, err := base.Repos().Opportunities.GetByID(context.Background(), opp.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FilledSlots)
}

// racedSignUps hides an existing pair from Exists and rejects the insert the
// way the unique index does when a concurrent transaction won.
type racedSignUps struct {
	repository.SignUpRepository
}

func (racedSignUps) Exists(context.Context, string, string) (bool, error) {
	return false, nil
}

func (racedSignUps) Create(context.Context, *domain.SignUp) error {
	return fmt.Errorf("%w: sign_ups_volunteer_id_opportunity_id_key", repository.ErrDuplicate)
}

type racedStore struct {
	repository.Store
}

func (s racedStore) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	return s.Store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		repos.SignUps = racedSignUps{SignUpRepository: repos.SignUps}
		return fn(ctx, repos)
	})
}

func TestSignUpDuplicateInsertIsAlreadyRegistered(t *testing.T) {
	base := memory.NewStore(memory.WithClock(func() time.Time { return fixedNow }))
	f := newFixtureWithStore(t, base)
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 3)
	vol := f.volunteer(t, "ana")

	rec := &outcomeRecorder{}
	svc := NewSignUpService(config.SignUpConfig{MaxAttempts: 3, RetryBackoffMS: 1},
		SignUpDependencies{Store: racedStore{Store: base}, Recorder: rec})

	_, err := svc.SignUp(context.Background(), vol, opp.ID, nil)
	requireCode(t, err, apperrors.CodeAlreadyRegistered)
	assert.Equal(t, []string{apperrors.CodeAlreadyRegistered}, rec.outcomes)

	stored, err := base.Repos().Opportunities.GetByID(context.Background(), opp.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.FilledSlots)
	assert.Equal(t, domain.OpportunityOpen, stored.Status)
}

type failingSink struct{ calls int32 }

func (s *failingSink) Deliver(context.Context, notify.Message) error {
	atomic.AddInt32(&s.calls, 1)
	return errors.New("mail relay unavailable")
}

func TestSignUpSucceedsWhenNotificationsFail(t *testing.T) {
	f := newFixture(t)
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 1)

	core, logs := observer.New(zap.WarnLevel)
	sink := &failingSink{}
	NewNotificationService(f.dispatcher, sink, zap.New(core), testConfig().Notification).RegisterHandlers()

	su, err := f.signUps.SignUp(context.Background(), f.volunteer(t, "ana"), opp.ID, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, su.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&sink.calls))
	assert.Equal(t, 2, logs.FilterMessage("notification delivery failed").Len())
}

type outcomeRecorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *outcomeRecorder) RecordSignUp(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func TestListForVolunteerSplitsUpcomingAndPast(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, _ := f.organization(t, true)
	soon := f.opportunity(t, admin, 3)
	vol := f.volunteer(t, "ana")
	_, err := f.signUps.SignUp(ctx, vol, soon.ID, nil)
	require.NoError(t, err)

	list, err := f.signUps.ListForVolunteer(ctx, vol)
	require.NoError(t, err)
	require.Len(t, list.Upcoming, 1)
	assert.Empty(t, list.Past)
	assert.Equal(t, soon.ID, list.Upcoming[0].Opportunity.ID)
	assert.Equal(t, "Food Bank", list.Upcoming[0].Organization.Name)

	f.now = f.now.Add(48 * time.Hour)
	list, err = f.signUps.ListForVolunteer(ctx, vol)
	require.NoError(t, err)
	assert.Empty(t, list.Upcoming)
	require.Len(t, list.Past, 1)

	_, err = f.signUps.ListForVolunteer(ctx, admin)
	requireCode(t, err, apperrors.CodeUnauthorized)
}
