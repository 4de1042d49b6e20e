package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/events"
	"github.com/spec-kit/volunteer-hub/internal/repository"
	"github.com/spec-kit/volunteer-hub/internal/repository/memory"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:              "test-secret",
			AccessTokenTTLMinutes:  30,
			VerificationTTLMinutes: 24 * 60,
			BcryptCost:             4,
		},
		Notification: config.NotificationConfig{PublicURL: "http://hub.test"},
		SignUp:       config.SignUpConfig{MaxAttempts: 3, RetryBackoffMS: 1},
	}
}

type fixture struct {
	store      repository.Store
	dispatcher events.Dispatcher
	now        time.Time

	orgs       *OrganizationService
	opps       *OpportunityService
	signUps    *SignUpService
	auth       *AuthService
	dashboards *DashboardService

	super domain.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, memory.NewStore(memory.WithClock(func() time.Time { return fixedNow })))
}

func newFixtureWithStore(t *testing.T, store repository.Store) *fixture {
	t.Helper()
	cfg := testConfig()
	f := &fixture{
		store:      store,
		dispatcher: events.NewInMemoryDispatcher(nil),
		now:        fixedNow,
	}
	clock := func() time.Time { return f.now }

	f.orgs = NewOrganizationService(cfg, OrganizationDependencies{Store: store, Dispatcher: f.dispatcher, Clock: clock})
	f.opps = NewOpportunityService(OpportunityDependencies{Store: store, Dispatcher: f.dispatcher, Clock: clock})
	f.signUps = NewSignUpService(cfg.SignUp, SignUpDependencies{Store: store, Dispatcher: f.dispatcher, Clock: clock})
	f.auth = NewAuthService(cfg, AuthDependencies{Store: store, Dispatcher: f.dispatcher, Clock: clock})
	f.dashboards = NewDashboardService(DashboardDependencies{Store: store, SignUps: f.signUps, Clock: clock})

	admin, created, err := f.auth.BootstrapSuperAdmin(context.Background(), "Root", unique("root"), "rootpass")
	require.NoError(t, err)
	require.True(t, created)
	f.super = admin.Identity()
	return f
}

func unique(prefix string) string {
	return fmt.Sprintf("%s-%s@example.com", prefix, uuid.NewString()[:8])
}

// organization creates an organization and returns its admin identity.
func (f *fixture) organization(t *testing.T, approved bool) (domain.Identity, *domain.Organization) {
	t.Helper()
	ctx := context.Background()
	adminEmail := unique("admin")
	org, err := f.orgs.CreateOrganization(ctx, f.super,
		OrganizationInput{Name: "Food Bank", Email: unique("org")},
		AdminInput{Name: "Olga", Email: adminEmail, Password: "orgpass"})
	require.NoError(t, err)
	if approved {
		org, err = f.orgs.DecideApproval(ctx, f.super, org.ID, true)
		require.NoError(t, err)
	}
	user, err := f.store.Repos().Users.GetByEmail(ctx, adminEmail)
	require.NoError(t, err)
	return user.Identity(), org
}

func (f *fixture) volunteer(t *testing.T, name string) domain.Identity {
	t.Helper()
	user := &domain.User{Name: name, Email: unique(name), PasswordHash: "x", Role: domain.RoleVolunteer}
	require.NoError(t, f.store.Repos().Users.Create(context.Background(), user))
	return user.Identity()
}

func (f *fixture) opportunity(t *testing.T, admin domain.Identity, slots int) *domain.Opportunity {
	t.Helper()
	opp, err := f.opps.CreateOpportunity(context.Background(), admin, OpportunityInput{
		Title:       "Sort donations",
		Description: "Help sort the weekly food donations",
		Location:    "Warehouse 4",
		StartDate:   f.now.Add(24 * time.Hour),
		EndDate:     f.now.Add(27 * time.Hour),
		TotalSlots:  slots,
	})
	require.NoError(t, err)
	return opp
}

// flakyStore fails the first n transactions with a transient error.
type flakyStore struct {
	repository.Store
	remaining int32
	calls     int32
}

func (s *flakyStore) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	atomic.AddInt32(&s.calls, 1)
	if atomic.AddInt32(&s.remaining, -1) >= 0 {
		return fmt.Errorf("%w: could not serialize access", apperrors.ErrTransient)
	}
	return s.Store.WithinTx(ctx, fn)
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}
