package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

type signUpRepository struct {
	db dbtx
}

// NewSignUpRepository instantiates repository.
func NewSignUpRepository(db dbtx) SignUpRepository {
	return &signUpRepository{db: db}
}

const signUpColumns = `id, volunteer_id, opportunity_id, status, notes, created_at`

func (r *signUpRepository) Create(ctx context.Context, signUp *domain.SignUp) error {
	const query = `
        INSERT INTO signups (volunteer_id, opportunity_id, status, notes)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		signUp.VolunteerID,
		signUp.OpportunityID,
		signUp.Status,
		signUp.Notes,
	).Scan(&signUp.ID, &signUp.CreatedAt)
	return translate(err)
}

func (r *signUpRepository) Exists(ctx context.Context, volunteerID, opportunityID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM signups WHERE volunteer_id=$1 AND opportunity_id=$2)`
	var exists bool
	err := r.db.QueryRow(ctx, query, volunteerID, opportunityID).Scan(&exists)
	return exists, translate(err)
}

func (r *signUpRepository) ListByVolunteer(ctx context.Context, volunteerID string) ([]domain.SignUp, error) {
	const query = `SELECT ` + signUpColumns + ` FROM signups WHERE volunteer_id=$1 ORDER BY created_at DESC`
	return r.list(ctx, query, volunteerID)
}

func (r *signUpRepository) ListByOpportunity(ctx context.Context, opportunityID string) ([]domain.SignUp, error) {
	const query = `SELECT ` + signUpColumns + ` FROM signups WHERE opportunity_id=$1 ORDER BY created_at ASC`
	return r.list(ctx, query, opportunityID)
}

func (r *signUpRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM signups`).Scan(&count)
	return count, translate(err)
}

func (r *signUpRepository) list(ctx context.Context, query string, arg any) ([]domain.SignUp, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	return scanSignUps(rows)
}

func scanSignUps(rows pgx.Rows) ([]domain.SignUp, error) {
	var result []domain.SignUp
	for rows.Next() {
		var s domain.SignUp
		if err := rows.Scan(
			&s.ID,
			&s.VolunteerID,
			&s.OpportunityID,
			&s.Status,
			&s.Notes,
			&s.CreatedAt,
		); err != nil {
			return nil, translate(err)
		}
		result = append(result, s)
	}
	return result, translate(rows.Err())
}
