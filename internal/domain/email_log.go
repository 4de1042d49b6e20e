package domain

import "time"

// EmailLogStatus is the delivery outcome recorded by the worker.
type EmailLogStatus string

const (
	EmailLogSent   EmailLogStatus = "sent"
	EmailLogFailed EmailLogStatus = "failed"
)

// EmailLog records one delivery attempt outcome.
type EmailLog struct {
	ID             string
	Kind           string
	RecipientEmail string
	Subject        string
	Status         EmailLogStatus
	Attempt        int
	ErrorMessage   *string
	CreatedAt      time.Time
}
