package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/repository"
)

func seedOrganization(t *testing.T, s *Store, status domain.OrganizationStatus) (*domain.User, *domain.Organization) {
	t.Helper()
	ctx := context.Background()
	repos := s.Repos()

	admin := &domain.User{Name: "Admin", Email: "admin@shelter.org", Role: domain.RoleOrgAdmin}
	require.NoError(t, repos.Users.Create(ctx, admin))
	org := &domain.Organization{Name: "Shelter", Email: "hello@shelter.org", Status: status, AdminID: admin.ID}
	require.NoError(t, repos.Organizations.Create(ctx, org))
	return admin, org
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user := &domain.User{Name: "Ana", Email: "ana@example.com", Role: domain.RoleOrgAdmin}
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Repos().Users.GetByEmail(ctx, "ana@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestWithinTxCommits(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user := &domain.User{Name: "Ana", Email: "ana@example.com", Role: domain.RoleOrgAdmin}
		if err := repos.Users.Create(ctx, user); err != nil {
			return err
		}
		return repos.Organizations.Create(ctx, &domain.Organization{Name: "Org", Email: "o@example.com", Status: domain.OrganizationPending, AdminID: user.ID})
	})
	require.NoError(t, err)

	user, err := s.Repos().Users.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	org, err := s.Repos().Organizations.GetByAdminID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrganizationPending, org.Status)
}

func TestDuplicateEmailAndSignUp(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, org := seedOrganization(t, s, domain.OrganizationApproved)
	repos := s.Repos()

	err := repos.Users.Create(ctx, &domain.User{Email: "admin@shelter.org", Role: domain.RoleVolunteer})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	opp := &domain.Opportunity{OrganizationID: org.ID, TotalSlots: 2, Status: domain.OpportunityOpen}
	require.NoError(t, repos.Opportunities.Create(ctx, opp))
	require.NoError(t, repos.SignUps.Create(ctx, &domain.SignUp{VolunteerID: "v1", OpportunityID: opp.ID}))
	err = repos.SignUps.Create(ctx, &domain.SignUp{VolunteerID: "v1", OpportunityID: opp.ID})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	exists, err := repos.SignUps.Exists(ctx, "v1", opp.ID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSaveCapacityRejectsOverflow(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, org := seedOrganization(t, s, domain.OrganizationApproved)
	repos := s.Repos()

	opp := &domain.Opportunity{OrganizationID: org.ID, TotalSlots: 1, Status: domain.OpportunityOpen}
	require.NoError(t, repos.Opportunities.Create(ctx, opp))

	opp.FilledSlots = 2
	assert.Error(t, repos.Opportunities.SaveCapacity(ctx, opp))
}

func TestListOpenFiltersAndOrders(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return now }))
	ctx := context.Background()
	_, approved := seedOrganization(t, s, domain.OrganizationApproved)
	repos := s.Repos()

	pendingAdmin := &domain.User{Email: "p@example.com", Role: domain.RoleOrgAdmin}
	require.NoError(t, repos.Users.Create(ctx, pendingAdmin))
	pending := &domain.Organization{Name: "Pending", Status: domain.OrganizationPending, AdminID: pendingAdmin.ID}
	require.NoError(t, repos.Organizations.Create(ctx, pending))

	mk := func(orgID, title string, start time.Time, status domain.OpportunityStatus) {
		require.NoError(t, repos.Opportunities.Create(ctx, &domain.Opportunity{
			OrganizationID: orgID, Title: title, StartDate: start, EndDate: start.Add(time.Hour),
			TotalSlots: 3, Status: status,
		}))
	}
	mk(approved.ID, "later", now.Add(48*time.Hour), domain.OpportunityOpen)
	mk(approved.ID, "sooner", now.Add(2*time.Hour), domain.OpportunityOpen)
	mk(approved.ID, "past", now.Add(-time.Hour), domain.OpportunityOpen)
	mk(approved.ID, "full", now.Add(time.Hour), domain.OpportunityFull)
	mk(pending.ID, "unapproved", now.Add(time.Hour), domain.OpportunityOpen)

	open, err := repos.Opportunities.ListOpen(ctx, now)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "sooner", open[0].Title)
	assert.Equal(t, "later", open[1].Title)
}

func TestCanceledContextSkipsTx(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := s.WithinTx(ctx, func(context.Context, repository.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
