package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/events"
	"github.com/spec-kit/volunteer-hub/internal/notify"
)

type captureSink struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (s *captureSink) Deliver(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *captureSink) byKind(kind string) []notify.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notify.Message
	for _, m := range s.messages {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func TestNotificationsForSignUpAndRegistration(t *testing.T) {
	f := newFixture(t)
	sink := &captureSink{}
	NewNotificationService(f.dispatcher, sink, nil, testConfig().Notification).RegisterHandlers()
	ctx := context.Background()

	admin, org := f.organization(t, true)
	created := sink.byKind(notify.KindOrganizationCreated)
	require.Len(t, created, 1)
	assert.Equal(t, admin.Email, created[0].To)

	status := sink.byKind(notify.KindOrganizationStatus)
	require.Len(t, status, 2)
	assert.Contains(t, status[0].Subject, "approved")

	opp := f.opportunity(t, admin, 2)
	vol := f.volunteer(t, "ana")
	_, err := f.signUps.SignUp(ctx, vol, opp.ID, nil)
	require.NoError(t, err)

	confirm := sink.byKind(notify.KindSignUpConfirmation)
	require.Len(t, confirm, 1)
	assert.Equal(t, vol.Email, confirm[0].To)
	assert.Equal(t, "Confirmed: Sort donations", confirm[0].Subject)

	orgNotice := sink.byKind(notify.KindSignUpOrganization)
	require.Len(t, orgNotice, 1)
	assert.Equal(t, org.Email, orgNotice[0].To)
	assert.Contains(t, orgNotice[0].Body, "1 of 2")

	_, err = f.auth.RegisterVolunteer(ctx, "Zed", "zed@example.com", "pw")
	require.NoError(t, err)
	verify := sink.byKind(notify.KindEmailVerification)
	require.Len(t, verify, 1)
	assert.True(t, strings.Contains(verify[0].Body, "http://hub.test/auth/verify-email?token="))
}

func TestNotificationHandlerRejectsUnexpectedPayload(t *testing.T) {
	n := NewNotificationService(nil, &captureSink{}, nil, testConfig().Notification)
	err := n.handleSignUpCreated(context.Background(), events.Event{Type: events.EventSignUpCreated, Payload: "nope"})
	assert.Error(t, err)

	err = n.handleOrganizationDecided(context.Background(), events.Event{Payload: events.OrganizationDecidedPayload{
		Organization: domain.Organization{Name: "Org", Email: "same@example.com", Status: domain.OrganizationRejected},
		AdminEmail:   "SAME@example.com",
	}})
	assert.NoError(t, err)
}

func TestOpportunityPublishedIsLogged(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zap.InfoLevel)
	NewNotificationService(f.dispatcher, &captureSink{}, zap.New(core), testConfig().Notification).RegisterHandlers()

	admin, org := f.organization(t, true)
	opp := f.opportunity(t, admin, 4)

	entries := logs.FilterMessage("opportunity published").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, opp.ID, fields["opportunity_id"])
	assert.Equal(t, org.ID, fields["organization_id"])
	assert.Equal(t, admin.UserID, fields["actor_id"])
	assert.EqualValues(t, 4, fields["total_slots"])

	n := NewNotificationService(nil, &captureSink{}, nil, testConfig().Notification)
	assert.Error(t, n.handleOpportunityPublished(context.Background(), events.Event{Payload: "nope"}))
}

func TestUniqueRecipients(t *testing.T) {
	assert.Equal(t, []string{"a@x.org", "b@x.org"}, uniqueRecipients("a@x.org", "", "A@x.org", "b@x.org"))
}
