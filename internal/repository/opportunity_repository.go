package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

type opportunityRepository struct {
	db dbtx
}

// NewOpportunityRepository instantiates repository.
func NewOpportunityRepository(db dbtx) OpportunityRepository {
	return &opportunityRepository{db: db}
}

const opportunityColumns = `o.id, o.organization_id, o.title, o.description, o.location, o.start_date, o.end_date,
               o.total_slots, o.filled_slots, o.requirements, o.status, o.created_at, o.updated_at`

func (r *opportunityRepository) Create(ctx context.Context, opp *domain.Opportunity) error {
	const query = `
        INSERT INTO opportunities (organization_id, title, description, location, start_date, end_date,
                                   total_slots, filled_slots, requirements, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		opp.OrganizationID,
		opp.Title,
		opp.Description,
		opp.Location,
		opp.StartDate,
		opp.EndDate,
		opp.TotalSlots,
		opp.FilledSlots,
		opp.Requirements,
		opp.Status,
	).Scan(&opp.ID, &opp.CreatedAt, &opp.UpdatedAt)
	return translate(err)
}

func (r *opportunityRepository) GetByID(ctx context.Context, id string) (*domain.Opportunity, error) {
	const query = `SELECT ` + opportunityColumns + ` FROM opportunities o WHERE o.id=$1`
	return scanOpportunity(r.db.QueryRow(ctx, query, id))
}

func (r *opportunityRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.Opportunity, error) {
	const query = `SELECT ` + opportunityColumns + ` FROM opportunities o WHERE o.id=$1 FOR UPDATE`
	return scanOpportunity(r.db.QueryRow(ctx, query, id))
}

func (r *opportunityRepository) SaveCapacity(ctx context.Context, opp *domain.Opportunity) error {
	const query = `
        UPDATE opportunities SET filled_slots=$1, status=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query, opp.FilledSlots, opp.Status, opp.ID).Scan(&opp.UpdatedAt)
	return translate(err)
}

func (r *opportunityRepository) ListOpen(ctx context.Context, from time.Time) ([]domain.Opportunity, error) {
	const query = `
        SELECT ` + opportunityColumns + `
        FROM opportunities o
        JOIN organizations org ON org.id = o.organization_id
        WHERE o.status=$1 AND org.status=$2 AND o.start_date >= $3
        ORDER BY o.start_date ASC`
	rows, err := r.db.Query(ctx, query, domain.OpportunityOpen, domain.OrganizationApproved, from)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	return scanOpportunities(rows)
}

func (r *opportunityRepository) ListByOrganization(ctx context.Context, orgID string) ([]domain.Opportunity, error) {
	const query = `
        SELECT ` + opportunityColumns + `
        FROM opportunities o
        WHERE o.organization_id=$1
        ORDER BY o.created_at DESC`
	rows, err := r.db.Query(ctx, query, orgID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()
	return scanOpportunities(rows)
}

func (r *opportunityRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM opportunities`).Scan(&count)
	return count, translate(err)
}

func scanOpportunity(row pgx.Row) (*domain.Opportunity, error) {
	var opp domain.Opportunity
	if err := row.Scan(
		&opp.ID,
		&opp.OrganizationID,
		&opp.Title,
		&opp.Description,
		&opp.Location,
		&opp.StartDate,
		&opp.EndDate,
		&opp.TotalSlots,
		&opp.FilledSlots,
		&opp.Requirements,
		&opp.Status,
		&opp.CreatedAt,
		&opp.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &opp, nil
}

func scanOpportunities(rows pgx.Rows) ([]domain.Opportunity, error) {
	var result []domain.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *opp)
	}
	return result, translate(rows.Err())
}
