package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/config"
	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/events"
	"github.com/spec-kit/volunteer-hub/internal/notify"
)

// NotificationService turns domain events into outbound messages.
// Delivery is best effort: sink failures are logged and absorbed.
type NotificationService struct {
	dispatcher events.Dispatcher
	sink       notify.Sink
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, sink notify.Sink, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		sink:       sink,
		logger:     loggerOrNop(logger),
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSignUpCreated, n.handleSignUpCreated)
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventOrganizationCreated, n.handleOrganizationCreated)
	n.dispatcher.Subscribe(events.EventOrganizationDecided, n.handleOrganizationDecided)
	n.dispatcher.Subscribe(events.EventOpportunityPublished, n.handleOpportunityPublished)
}

// handleOpportunityPublished only records the publication; there is no subscriber list to mail yet.
func (n *NotificationService) handleOpportunityPublished(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OpportunityPublishedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Info("opportunity published",
		zap.String("opportunity_id", payload.Opportunity.ID),
		zap.String("organization_id", payload.Opportunity.OrganizationID),
		zap.String("actor_id", event.Actor.UserID),
		zap.Int("total_slots", payload.Opportunity.TotalSlots),
		zap.Time("start_date", payload.Opportunity.StartDate))
	return nil
}

func (n *NotificationService) handleSignUpCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SignUpCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.logger.Info("SignUpCreated",
		zap.String("signup_id", payload.SignUp.ID),
		zap.String("opportunity_id", payload.Opportunity.ID))

	volunteerName := nonBlank(payload.Volunteer.Name, "Volunteer")
	n.send(ctx, notify.Message{
		Kind:    notify.KindSignUpConfirmation,
		To:      payload.Volunteer.Email,
		Subject: "Confirmed: " + payload.Opportunity.Title,
		Body: fmt.Sprintf("Hi %s,\n\nYou've successfully signed up for %s with %s on %s.\n\nThank you for volunteering!",
			volunteerName,
			payload.Opportunity.Title,
			payload.Organization.Name,
			payload.Opportunity.StartDate.Format("Mon Jan 2, 2006 at 15:04 MST")),
	})
	n.send(ctx, notify.Message{
		Kind:    notify.KindSignUpOrganization,
		To:      payload.Organization.Email,
		Subject: "New volunteer sign-up: " + payload.Opportunity.Title,
		Body: fmt.Sprintf("%s has signed up for %s. %d of %d slots are now filled.",
			nonBlank(payload.Volunteer.Name, "A volunteer"),
			payload.Opportunity.Title,
			payload.Opportunity.FilledSlots,
			payload.Opportunity.TotalSlots),
	})
	return nil
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	link := n.verificationURL(payload.Token)
	n.send(ctx, notify.Message{
		Kind:    notify.KindEmailVerification,
		To:      payload.User.Email,
		Subject: "Verify your email address",
		Body:    "Welcome! Verify your email address by opening this link within 24 hours:\n\n" + link,
	})
	return nil
}

func (n *NotificationService) handleOrganizationCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrganizationCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	n.send(ctx, notify.Message{
		Kind:    notify.KindOrganizationCreated,
		To:      payload.Admin.Email,
		Subject: "Your organization account for " + payload.Organization.Name,
		Body: fmt.Sprintf("An administrator account was created for %s. The organization is pending approval; "+
			"you can sign in at %s once it is approved.", payload.Organization.Name, strings.TrimRight(n.cfg.PublicURL, "/")),
	})
	return nil
}

func (n *NotificationService) handleOrganizationDecided(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.OrganizationDecidedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", event.Payload)
	}
	verdict := "rejected"
	if payload.Organization.Status == domain.OrganizationApproved {
		verdict = "approved"
	}
	for _, to := range uniqueRecipients(payload.Organization.Email, payload.AdminEmail) {
		n.send(ctx, notify.Message{
			Kind:    notify.KindOrganizationStatus,
			To:      to,
			Subject: fmt.Sprintf("%s has been %s", payload.Organization.Name, verdict),
			Body:    fmt.Sprintf("Your organization %s has been %s.", payload.Organization.Name, verdict),
		})
	}
	return nil
}

func (n *NotificationService) send(ctx context.Context, msg notify.Message) {
	if n.sink == nil || strings.TrimSpace(msg.To) == "" {
		return
	}
	if err := n.sink.Deliver(ctx, msg); err != nil {
		n.logger.Warn("notification delivery failed",
			zap.String("kind", msg.Kind),
			zap.String("to", msg.To),
			zap.Error(err))
	}
}

func (n *NotificationService) verificationURL(token string) string {
	base := strings.TrimRight(n.cfg.PublicURL, "/")
	return base + "/auth/verify-email?token=" + url.QueryEscape(token)
}

func nonBlank(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func uniqueRecipients(addrs ...string) []string {
	seen := make(map[string]struct{}, len(addrs))
	var out []string
	for _, a := range addrs {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
