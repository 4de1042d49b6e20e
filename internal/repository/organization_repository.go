package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

type organizationRepository struct {
	db dbtx
}

// NewOrganizationRepository instantiates repository.
func NewOrganizationRepository(db dbtx) OrganizationRepository {
	return &organizationRepository{db: db}
}

const organizationColumns = `id, name, email, phone, address, website, description, status, admin_id, created_at, updated_at`

func (r *organizationRepository) Create(ctx context.Context, org *domain.Organization) error {
	const query = `
        INSERT INTO organizations (name, email, phone, address, website, description, status, admin_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		org.Name,
		org.Email,
		org.Phone,
		org.Address,
		org.Website,
		org.Description,
		org.Status,
		org.AdminID,
	).Scan(&org.ID, &org.CreatedAt, &org.UpdatedAt)
	return translate(err)
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	const query = `SELECT ` + organizationColumns + ` FROM organizations WHERE id=$1`
	return scanOrganization(r.db.QueryRow(ctx, query, id))
}

func (r *organizationRepository) GetByAdminID(ctx context.Context, adminID string) (*domain.Organization, error) {
	const query = `SELECT ` + organizationColumns + ` FROM organizations WHERE admin_id=$1`
	return scanOrganization(r.db.QueryRow(ctx, query, adminID))
}

func (r *organizationRepository) UpdateStatus(ctx context.Context, id string, status domain.OrganizationStatus) (*domain.Organization, error) {
	const query = `
        UPDATE organizations SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING ` + organizationColumns
	return scanOrganization(r.db.QueryRow(ctx, query, status, id))
}

func (r *organizationRepository) List(ctx context.Context) ([]domain.Organization, error) {
	const query = `SELECT ` + organizationColumns + ` FROM organizations ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *org)
	}
	return result, translate(rows.Err())
}

func scanOrganization(row pgx.Row) (*domain.Organization, error) {
	var org domain.Organization
	if err := row.Scan(
		&org.ID,
		&org.Name,
		&org.Email,
		&org.Phone,
		&org.Address,
		&org.Website,
		&org.Description,
		&org.Status,
		&org.AdminID,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &org, nil
}
