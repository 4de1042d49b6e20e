package repository

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkVerified(ctx context.Context, id string, at time.Time) error
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}

// OrganizationRepository defines persistence access for organizations.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) error
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	GetByAdminID(ctx context.Context, adminID string) (*domain.Organization, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrganizationStatus) (*domain.Organization, error)
	List(ctx context.Context) ([]domain.Organization, error)
}

// OpportunityRepository encapsulates opportunity persistence.
type OpportunityRepository interface {
	Create(ctx context.Context, opp *domain.Opportunity) error
	GetByID(ctx context.Context, id string) (*domain.Opportunity, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.Opportunity, error)
	// SaveCapacity persists FilledSlots and Status.
	SaveCapacity(ctx context.Context, opp *domain.Opportunity) error
	// ListOpen returns OPEN opportunities of approved organizations starting at or after from, soonest first.
	ListOpen(ctx context.Context, from time.Time) ([]domain.Opportunity, error)
	ListByOrganization(ctx context.Context, orgID string) ([]domain.Opportunity, error)
	Count(ctx context.Context) (int, error)
}

// SignUpRepository encapsulates sign-up persistence.
type SignUpRepository interface {
	// Create returns ErrDuplicate when the volunteer already holds a sign-up for the opportunity.
	Create(ctx context.Context, signUp *domain.SignUp) error
	Exists(ctx context.Context, volunteerID, opportunityID string) (bool, error)
	ListByVolunteer(ctx context.Context, volunteerID string) ([]domain.SignUp, error)
	ListByOpportunity(ctx context.Context, opportunityID string) ([]domain.SignUp, error)
	Count(ctx context.Context) (int, error)
}

// VerificationTokenRepository manages email verification tokens.
type VerificationTokenRepository interface {
	Create(ctx context.Context, token *domain.VerificationToken) error
	GetByToken(ctx context.Context, token string) (*domain.VerificationToken, error)
	Delete(ctx context.Context, id string) error
}

// EmailLogRepository records notification delivery outcomes.
type EmailLogRepository interface {
	Create(ctx context.Context, entry *domain.EmailLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.EmailLog, error)
}

// Repositories bundles repositories bound to the same connection or transaction.
type Repositories struct {
	Users              UserRepository
	Organizations      OrganizationRepository
	Opportunities      OpportunityRepository
	SignUps            SignUpRepository
	VerificationTokens VerificationTokenRepository
	EmailLogs          EmailLogRepository
}

// TxFunc runs inside a scoped transaction. Returning an error rolls back.
type TxFunc func(ctx context.Context, repos Repositories) error

// Store hands out repositories and scoped transactions.
type Store interface {
	// Repos returns repositories that run outside any transaction.
	Repos() Repositories
	// WithinTx commits when fn returns nil and rolls back otherwise,
	// releasing the transaction on every exit path.
	WithinTx(ctx context.Context, fn TxFunc) error
	Ping(ctx context.Context) error
}
