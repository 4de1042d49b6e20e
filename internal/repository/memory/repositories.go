package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spec-kit/volunteer-hub/internal/domain"
	"github.com/spec-kit/volunteer-hub/internal/repository"
)

type userRepository struct{ v *view }

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	return r.v.write(func(d *dataset) error {
		key := strings.ToLower(user.Email)
		if _, taken := d.userByEmail[key]; taken {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
		now := r.v.now()
		user.ID = newID()
		user.CreatedAt = now
		user.UpdatedAt = now
		d.users[user.ID] = *user
		d.userByEmail[key] = user.ID
		return nil
	})
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	var (
		user domain.User
		ok   bool
	)
	r.v.read(func(d *dataset) { user, ok = d.users[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var (
		user domain.User
		ok   bool
	)
	r.v.read(func(d *dataset) {
		if id, found := d.userByEmail[strings.ToLower(email)]; found {
			user, ok = d.users[id]
		}
	})
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) MarkVerified(_ context.Context, id string, at time.Time) error {
	return r.v.write(func(d *dataset) error {
		user, ok := d.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		user.EmailVerifiedAt = &at
		user.UpdatedAt = r.v.now()
		d.users[id] = user
		return nil
	})
}

func (r *userRepository) CountByRole(_ context.Context, role domain.Role) (int, error) {
	count := 0
	r.v.read(func(d *dataset) {
		for _, u := range d.users {
			if u.Role == role {
				count++
			}
		}
	})
	return count, nil
}

type organizationRepository struct{ v *view }

func (r *organizationRepository) Create(_ context.Context, org *domain.Organization) error {
	return r.v.write(func(d *dataset) error {
		if _, ok := d.users[org.AdminID]; !ok {
			return fmt.Errorf("organization admin %s does not exist", org.AdminID)
		}
		if _, taken := d.orgByAdmin[org.AdminID]; taken {
			return fmt.Errorf("%w: organizations_admin_id_key", repository.ErrDuplicate)
		}
		now := r.v.now()
		org.ID = newID()
		org.CreatedAt = now
		org.UpdatedAt = now
		d.orgs[org.ID] = *org
		d.orgByAdmin[org.AdminID] = org.ID
		return nil
	})
}

func (r *organizationRepository) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	var (
		org domain.Organization
		ok  bool
	)
	r.v.read(func(d *dataset) { org, ok = d.orgs[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &org, nil
}

func (r *organizationRepository) GetByAdminID(_ context.Context, adminID string) (*domain.Organization, error) {
	var (
		org domain.Organization
		ok  bool
	)
	r.v.read(func(d *dataset) {
		if id, found := d.orgByAdmin[adminID]; found {
			org, ok = d.orgs[id]
		}
	})
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &org, nil
}

func (r *organizationRepository) UpdateStatus(_ context.Context, id string, status domain.OrganizationStatus) (*domain.Organization, error) {
	var org domain.Organization
	err := r.v.write(func(d *dataset) error {
		current, ok := d.orgs[id]
		if !ok {
			return repository.ErrNotFound
		}
		current.Status = status
		current.UpdatedAt = r.v.now()
		d.orgs[id] = current
		org = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *organizationRepository) List(_ context.Context) ([]domain.Organization, error) {
	var result []domain.Organization
	r.v.read(func(d *dataset) {
		for _, org := range d.orgs {
			result = append(result, org)
		}
	})
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

type opportunityRepository struct{ v *view }

func (r *opportunityRepository) Create(_ context.Context, opp *domain.Opportunity) error {
	return r.v.write(func(d *dataset) error {
		if _, ok := d.orgs[opp.OrganizationID]; !ok {
			return fmt.Errorf("organization %s does not exist", opp.OrganizationID)
		}
		if opp.TotalSlots <= 0 || opp.FilledSlots < 0 || opp.FilledSlots > opp.TotalSlots {
			return fmt.Errorf("opportunity capacity %d/%d violates constraint", opp.FilledSlots, opp.TotalSlots)
		}
		now := r.v.now()
		opp.ID = newID()
		opp.CreatedAt = now
		opp.UpdatedAt = now
		d.opps[opp.ID] = *opp
		return nil
	})
}

func (r *opportunityRepository) GetByID(_ context.Context, id string) (*domain.Opportunity, error) {
	var (
		opp domain.Opportunity
		ok  bool
	)
	r.v.read(func(d *dataset) { opp, ok = d.opps[id] })
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &opp, nil
}

// GetByIDForUpdate needs no extra locking: a transaction already holds the store's write lock.
func (r *opportunityRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Opportunity, error) {
	return r.GetByID(ctx, id)
}

func (r *opportunityRepository) SaveCapacity(_ context.Context, opp *domain.Opportunity) error {
	return r.v.write(func(d *dataset) error {
		current, ok := d.opps[opp.ID]
		if !ok {
			return repository.ErrNotFound
		}
		if opp.FilledSlots < 0 || opp.FilledSlots > current.TotalSlots {
			return fmt.Errorf("opportunity capacity %d/%d violates constraint", opp.FilledSlots, current.TotalSlots)
		}
		current.FilledSlots = opp.FilledSlots
		current.Status = opp.Status
		current.UpdatedAt = r.v.now()
		d.opps[opp.ID] = current
		opp.UpdatedAt = current.UpdatedAt
		return nil
	})
}

func (r *opportunityRepository) ListOpen(_ context.Context, from time.Time) ([]domain.Opportunity, error) {
	var result []domain.Opportunity
	r.v.read(func(d *dataset) {
		for _, opp := range d.opps {
			org, ok := d.orgs[opp.OrganizationID]
			if !ok || org.Status != domain.OrganizationApproved {
				continue
			}
			if opp.Status != domain.OpportunityOpen || opp.StartDate.Before(from) {
				continue
			}
			result = append(result, opp)
		}
	})
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].StartDate.Before(result[j].StartDate)
	})
	return result, nil
}

func (r *opportunityRepository) ListByOrganization(_ context.Context, orgID string) ([]domain.Opportunity, error) {
	var result []domain.Opportunity
	r.v.read(func(d *dataset) {
		for _, opp := range d.opps {
			if opp.OrganizationID == orgID {
				result = append(result, opp)
			}
		}
	})
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *opportunityRepository) Count(_ context.Context) (int, error) {
	var count int
	r.v.read(func(d *dataset) { count = len(d.opps) })
	return count, nil
}

type signUpRepository struct{ v *view }

func (r *signUpRepository) Create(_ context.Context, signUp *domain.SignUp) error {
	return r.v.write(func(d *dataset) error {
		key := signUpKey{volunteerID: signUp.VolunteerID, opportunityID: signUp.OpportunityID}
		if _, taken := d.signUpByPair[key]; taken {
			return fmt.Errorf("%w: signups_volunteer_opportunity_key", repository.ErrDuplicate)
		}
		signUp.ID = newID()
		signUp.CreatedAt = r.v.now()
		d.signUps[signUp.ID] = *signUp
		d.signUpByPair[key] = signUp.ID
		return nil
	})
}

func (r *signUpRepository) Exists(_ context.Context, volunteerID, opportunityID string) (bool, error) {
	var ok bool
	r.v.read(func(d *dataset) {
		_, ok = d.signUpByPair[signUpKey{volunteerID: volunteerID, opportunityID: opportunityID}]
	})
	return ok, nil
}

func (r *signUpRepository) ListByVolunteer(_ context.Context, volunteerID string) ([]domain.SignUp, error) {
	result := r.filter(func(s domain.SignUp) bool { return s.VolunteerID == volunteerID })
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *signUpRepository) ListByOpportunity(_ context.Context, opportunityID string) ([]domain.SignUp, error) {
	result := r.filter(func(s domain.SignUp) bool { return s.OpportunityID == opportunityID })
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *signUpRepository) Count(_ context.Context) (int, error) {
	var count int
	r.v.read(func(d *dataset) { count = len(d.signUps) })
	return count, nil
}

func (r *signUpRepository) filter(keep func(domain.SignUp) bool) []domain.SignUp {
	var result []domain.SignUp
	r.v.read(func(d *dataset) {
		for _, s := range d.signUps {
			if keep(s) {
				result = append(result, s)
			}
		}
	})
	return result
}

type verificationTokenRepository struct{ v *view }

func (r *verificationTokenRepository) Create(_ context.Context, token *domain.VerificationToken) error {
	return r.v.write(func(d *dataset) error {
		for _, existing := range d.tokens {
			if existing.Token == token.Token {
				return fmt.Errorf("%w: verification_tokens_token_key", repository.ErrDuplicate)
			}
		}
		token.ID = newID()
		token.CreatedAt = r.v.now()
		d.tokens[token.ID] = *token
		return nil
	})
}

func (r *verificationTokenRepository) GetByToken(_ context.Context, tokenStr string) (*domain.VerificationToken, error) {
	var (
		token domain.VerificationToken
		ok    bool
	)
	r.v.read(func(d *dataset) {
		for _, t := range d.tokens {
			if t.Token == tokenStr {
				token, ok = t, true
				return
			}
		}
	})
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &token, nil
}

func (r *verificationTokenRepository) Delete(_ context.Context, id string) error {
	return r.v.write(func(d *dataset) error {
		delete(d.tokens, id)
		return nil
	})
}

type emailLogRepository struct{ v *view }

func (r *emailLogRepository) Create(_ context.Context, entry *domain.EmailLog) error {
	return r.v.write(func(d *dataset) error {
		entry.ID = newID()
		entry.CreatedAt = r.v.now()
		d.emailLogs = append(d.emailLogs, *entry)
		return nil
	})
}

func (r *emailLogRepository) ListRecent(_ context.Context, limit int) ([]domain.EmailLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var result []domain.EmailLog
	r.v.read(func(d *dataset) {
		for i := len(d.emailLogs) - 1; i >= 0 && len(result) < limit; i-- {
			result = append(result, d.emailLogs[i])
		}
	})
	return result, nil
}
