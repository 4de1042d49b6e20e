package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/volunteer-hub/internal/observability"
	"github.com/spec-kit/volunteer-hub/internal/queue"
)

const deadLetterSample = 20

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmailQueue is the view of the email queue reported on /metrics.
type EmailQueue interface {
	Len(ctx context.Context) (int64, error)
	DeadLetters(ctx context.Context, limit int64) ([]queue.Job, error)
}

// HealthHandler responds to liveness and readiness probes and serves metrics.
type HealthHandler struct {
	serviceName  string
	version      string
	dependencies map[string]Pinger
	metrics      *observability.Metrics
	emails       EmailQueue
}

type deadLetter struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind,omitempty"`
	Recipient string    `json:"recipient,omitempty"`
	Attempt   int       `json:"attempt"`
	CreatedAt time.Time `json:"created_at"`
}

type emailQueueStats struct {
	Pending     int64        `json:"pending"`
	DeadLetters []deadLetter `json:"dead_letters"`
	Error       string       `json:"error,omitempty"`
}

type metricsResponse struct {
	observability.Snapshot
	EmailQueue *emailQueueStats `json:"email_queue,omitempty"`
}

// NewHealthHandler returns a new handler instance. Nil dependencies are skipped.
func NewHealthHandler(serviceName, version string, metrics *observability.Metrics, dependencies map[string]Pinger) *HealthHandler {
	deps := make(map[string]Pinger, len(dependencies))
	for name, dep := range dependencies {
		if dep != nil {
			deps[name] = dep
		}
	}
	return &HealthHandler{serviceName: serviceName, version: version, dependencies: deps, metrics: metrics}
}

// WithEmailQueue adds queue depth and the oldest dead letters to /metrics.
func (h *HealthHandler) WithEmailQueue(q EmailQueue) *HealthHandler {
	h.emails = q
	return h
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for name, dep := range h.dependencies {
		if err := dep.Ping(ctx); err != nil {
			depStatus[name] = err.Error()
			ready = false
		} else {
			depStatus[name] = "ok"
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

// Metrics GET /metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	resp := metricsResponse{Snapshot: h.metrics.Snapshot()}
	if h.emails != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		resp.EmailQueue = h.emailQueueStats(ctx)
	}
	return c.JSON(resp)
}

func (h *HealthHandler) emailQueueStats(ctx context.Context) *emailQueueStats {
	stats := &emailQueueStats{DeadLetters: []deadLetter{}}
	pending, err := h.emails.Len(ctx)
	if err != nil {
		stats.Error = err.Error()
		return stats
	}
	stats.Pending = pending

	jobs, err := h.emails.DeadLetters(ctx, deadLetterSample)
	if err != nil {
		stats.Error = err.Error()
		return stats
	}
	for i := range jobs {
		entry := deadLetter{ID: jobs[i].ID, Attempt: jobs[i].Attempt, CreatedAt: jobs[i].CreatedAt}
		if payload, err := jobs[i].Email(); err == nil {
			entry.Kind = payload.Kind
			entry.Recipient = payload.RecipientEmail
		}
		stats.DeadLetters = append(stats.DeadLetters, entry)
	}
	return stats
}
