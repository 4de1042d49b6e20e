// Package notify delivers outbound messages produced by domain events.
package notify

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/volunteer-hub/internal/queue"
)

var errMissingRecipient = errors.New("message has no recipient")

// Message kinds.
const (
	KindSignUpConfirmation  = "signup_confirmation"
	KindSignUpOrganization  = "signup_organization"
	KindEmailVerification   = "email_verification"
	KindOrganizationCreated = "organization_created"
	KindOrganizationStatus  = "organization_status"
)

// Message is one outbound email.
type Message struct {
	Kind    string
	To      string
	Subject string
	Body    string
}

// Sink accepts messages for delivery. Implementations may deliver later.
type Sink interface {
	Deliver(ctx context.Context, msg Message) error
}

// Mailer hands a message to the actual mail transport.
type Mailer interface {
	Send(ctx context.Context, from string, msg Message) error
}

// LogSink writes messages to the log instead of sending them.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a sink that only logs.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Deliver logs the message.
func (s *LogSink) Deliver(_ context.Context, msg Message) error {
	s.logger.Info("notification",
		zap.String("kind", msg.Kind),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// QueueSink pushes messages onto the Redis email queue for the worker.
type QueueSink struct {
	queue *queue.Queue
}

// NewQueueSink wraps q.
func NewQueueSink(q *queue.Queue) *QueueSink {
	return &QueueSink{queue: q}
}

// Deliver enqueues the message.
func (s *QueueSink) Deliver(ctx context.Context, msg Message) error {
	return s.queue.EnqueueEmail(ctx, queue.EmailPayload{
		Kind:           msg.Kind,
		RecipientEmail: msg.To,
		Subject:        msg.Subject,
		Body:           msg.Body,
	})
}

// FromPayload converts a queued email back into a message.
func FromPayload(p queue.EmailPayload) Message {
	return Message{Kind: p.Kind, To: p.RecipientEmail, Subject: p.Subject, Body: p.Body}
}

// LogMailer is the development mail transport: it logs instead of sending.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a logging mailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// Send logs the message with its sender.
func (m *LogMailer) Send(_ context.Context, from string, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errMissingRecipient
	}
	m.logger.Info("email sent",
		zap.String("from", from),
		zap.String("to", msg.To),
		zap.String("kind", msg.Kind),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.Body)))
	return nil
}
