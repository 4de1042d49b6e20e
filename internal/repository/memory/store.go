// Package memory is a process-local implementation of repository.Store.
//
// A transaction holds the store's write lock for its whole duration and works
// on a private copy of the data set, which replaces the live one only when the
// transaction function returns nil. Reads outside a transaction take the read
// lock and see the last committed state.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/repository"
)

type signUpKey struct {
	volunteerID   string
	opportunityID string
}

type dataset struct {
	users        map[string]domain.User
	userByEmail  map[string]string
	orgs         map[string]domain.Organization
	orgByAdmin   map[string]string
	opps         map[string]domain.Opportunity
	signUps      map[string]domain.SignUp
	signUpByPair map[signUpKey]string
	tokens       map[string]domain.VerificationToken
	emailLogs    []domain.EmailLog
}

func newDataset() *dataset {
	return &dataset{
		users:        make(map[string]domain.User),
		userByEmail:  make(map[string]string),
		orgs:         make(map[string]domain.Organization),
		orgByAdmin:   make(map[string]string),
		opps:         make(map[string]domain.Opportunity),
		signUps:      make(map[string]domain.SignUp),
		signUpByPair: make(map[signUpKey]string),
		tokens:       make(map[string]domain.VerificationToken),
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		users:        make(map[string]domain.User, len(d.users)),
		userByEmail:  make(map[string]string, len(d.userByEmail)),
		orgs:         make(map[string]domain.Organization, len(d.orgs)),
		orgByAdmin:   make(map[string]string, len(d.orgByAdmin)),
		opps:         make(map[string]domain.Opportunity, len(d.opps)),
		signUps:      make(map[string]domain.SignUp, len(d.signUps)),
		signUpByPair: make(map[signUpKey]string, len(d.signUpByPair)),
		tokens:       make(map[string]domain.VerificationToken, len(d.tokens)),
		emailLogs:    append([]domain.EmailLog(nil), d.emailLogs...),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.userByEmail {
		c.userByEmail[k] = v
	}
	for k, v := range d.orgs {
		c.orgs[k] = v
	}
	for k, v := range d.orgByAdmin {
		c.orgByAdmin[k] = v
	}
	for k, v := range d.opps {
		c.opps[k] = v
	}
	for k, v := range d.signUps {
		c.signUps[k] = v
	}
	for k, v := range d.signUpByPair {
		c.signUpByPair[k] = v
	}
	for k, v := range d.tokens {
		c.tokens[k] = v
	}
	return c
}

// Store keeps every entity in maps guarded by one RWMutex.
type Store struct {
	mu   sync.RWMutex
	data *dataset
	now  func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock sets the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{data: newDataset(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repos returns repositories reading and writing committed state.
func (s *Store) Repos() repository.Repositories {
	return s.reposFor(&view{store: s})
}

// WithinTx runs fn against a private copy and commits it if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(ctx, s.reposFor(&view{store: s, tx: working})); err != nil {
		return err
	}
	s.data = working
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) reposFor(v *view) repository.Repositories {
	return repository.Repositories{
		Users:              &userRepository{v},
		Organizations:      &organizationRepository{v},
		Opportunities:      &opportunityRepository{v},
		SignUps:            &signUpRepository{v},
		VerificationTokens: &verificationTokenRepository{v},
		EmailLogs:          &emailLogRepository{v},
	}
}

// view binds repositories either to committed state or to a transaction's copy.
type view struct {
	store *Store
	tx    *dataset
}

func (v *view) read(fn func(d *dataset)) {
	if v.tx != nil {
		fn(v.tx)
		return
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	fn(v.store.data)
}

func (v *view) write(fn func(d *dataset) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}

func (v *view) now() time.Time {
	return v.store.now()
}

func newID() string {
	return uuid.NewString()
}
