package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	apperrors "github.com/spec-kit/volunteer-hub/pkg/util/errorutil"
)

func validInput(now time.Time) OpportunityInput {
	return OpportunityInput{
		Title:       "Beach cleanup",
		Description: "Collect litter along the shore",
		Location:    "North Beach",
		StartDate:   now.Add(time.Hour),
		EndDate:     now.Add(3 * time.Hour),
		TotalSlots:  10,
	}
}

func TestCreateOpportunityApprovalGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, org := f.organization(t, false)

	_, err := f.opps.CreateOpportunity(ctx, admin, validInput(f.now))
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.orgs.DecideApproval(ctx, f.super, org.ID, true)
	require.NoError(t, err)

	opp, err := f.opps.CreateOpportunity(ctx, admin, validInput(f.now))
	require.NoError(t, err)
	assert.Equal(t, org.ID, opp.OrganizationID)
	assert.Equal(t, domain.OpportunityOpen, opp.Status)
	assert.Zero(t, opp.FilledSlots)
}

func TestCreateOpportunityDateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, _ := f.organization(t, true)

	sameEnd := validInput(f.now)
	sameEnd.EndDate = sameEnd.StartDate
	_, err := f.opps.CreateOpportunity(ctx, admin, sameEnd)
	requireCode(t, err, apperrors.CodeInvalidRange)

	past := validInput(f.now)
	past.StartDate = f.now.Add(-time.Second)
	past.EndDate = f.now.Add(time.Hour)
	_, err = f.opps.CreateOpportunity(ctx, admin, past)
	requireCode(t, err, apperrors.CodeInvalidRange)

	noSlots := validInput(f.now)
	noSlots.TotalSlots = 0
	_, err = f.opps.CreateOpportunity(ctx, admin, noSlots)
	requireCode(t, err, apperrors.CodeInvalidRange)

	ok := validInput(f.now)
	ok.StartDate = f.now.Add(time.Hour)
	ok.EndDate = ok.StartDate.Add(2 * time.Hour)
	opp, err := f.opps.CreateOpportunity(ctx, admin, ok)
	require.NoError(t, err)
	assert.Equal(t, domain.OpportunityOpen, opp.Status)
	assert.Zero(t, opp.FilledSlots)
}

func TestCreateOpportunityAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, org := f.organization(t, true)
	otherAdmin, _ := f.organization(t, true)

	_, err := f.opps.CreateOpportunity(ctx, f.volunteer(t, "ana"), validInput(f.now))
	requireCode(t, err, apperrors.CodeUnauthorized)

	in := validInput(f.now)
	in.OrganizationID = "missing"
	_, err = f.opps.CreateOpportunity(ctx, admin, in)
	requireCode(t, err, apperrors.CodeNotFound)

	in.OrganizationID = org.ID
	_, err = f.opps.CreateOpportunity(ctx, otherAdmin, in)
	requireCode(t, err, apperrors.CodeUnauthorized)

	orphan := &domain.User{Name: "No Org", Email: unique("orphan"), Role: domain.RoleOrgAdmin}
	require.NoError(t, f.store.Repos().Users.Create(ctx, orphan))
	_, err = f.opps.CreateOpportunity(ctx, orphan.Identity(), validInput(f.now))
	requireCode(t, err, apperrors.CodeUnauthorized)

	blank := validInput(f.now)
	blank.Title = ""
	_, err = f.opps.CreateOpportunity(ctx, admin, blank)
	requireCode(t, err, apperrors.CodeValidation)
}

func TestListOpenAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, _ := f.organization(t, true)
	_, pendingOrg := f.organization(t, false)

	later := validInput(f.now)
	later.Title = "Later"
	later.StartDate = f.now.Add(48 * time.Hour)
	later.EndDate = later.StartDate.Add(time.Hour)
	_, err := f.opps.CreateOpportunity(ctx, admin, later)
	require.NoError(t, err)

	sooner := validInput(f.now)
	sooner.Title = "Sooner"
	soonerOpp, err := f.opps.CreateOpportunity(ctx, admin, sooner)
	require.NoError(t, err)

	full := f.opportunity(t, admin, 1)
	_, err = f.signUps.SignUp(ctx, f.volunteer(t, "ana"), full.ID, nil)
	require.NoError(t, err)

	open, err := f.opps.ListOpen(ctx)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, "Sooner", open[0].Title)
	assert.Equal(t, "Later", open[1].Title)
	for _, o := range open {
		assert.NotEqual(t, pendingOrg.ID, o.OrganizationID)
	}

	detail, err := f.opps.Get(ctx, soonerOpp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Food Bank", detail.Organization.Name)
	assert.False(t, detail.Past)

	f.now = f.now.Add(2 * time.Hour)
	detail, err = f.opps.Get(ctx, soonerOpp.ID)
	require.NoError(t, err)
	assert.True(t, detail.Past)
	assert.Equal(t, domain.OpportunityOpen, detail.Opportunity.Status)

	_, err = f.opps.Get(ctx, "missing")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestSignedUpReflectsCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin, _ := f.organization(t, true)
	opp := f.opportunity(t, admin, 2)
	vol := f.volunteer(t, "ana")

	signedUp, err := f.opps.SignedUp(ctx, vol, opp.ID)
	require.NoError(t, err)
	assert.False(t, signedUp)

	_, err = f.signUps.SignUp(ctx, vol, opp.ID, nil)
	require.NoError(t, err)

	signedUp, err = f.opps.SignedUp(ctx, vol, opp.ID)
	require.NoError(t, err)
	assert.True(t, signedUp)

	signedUp, err = f.opps.SignedUp(ctx, admin, opp.ID)
	require.NoError(t, err)
	assert.False(t, signedUp)

	signedUp, err = f.opps.SignedUp(ctx, domain.Identity{}, opp.ID)
	require.NoError(t, err)
	assert.False(t, signedUp)
}
