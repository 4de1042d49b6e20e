package repository

import (
	"context"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

type verificationTokenRepository struct {
	db dbtx
}

// NewVerificationTokenRepository constructs repository.
func NewVerificationTokenRepository(db dbtx) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

func (r *verificationTokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	const query = `
        INSERT INTO verification_tokens (user_id, token, expires_at)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		token.UserID,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
	return translate(err)
}

func (r *verificationTokenRepository) GetByToken(ctx context.Context, tokenStr string) (*domain.VerificationToken, error) {
	const query = `
        SELECT id, user_id, token, expires_at, created_at
        FROM verification_tokens WHERE token=$1`
	var token domain.VerificationToken
	if err := r.db.QueryRow(ctx, query, tokenStr).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.ExpiresAt,
		&token.CreatedAt,
	); err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *verificationTokenRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM verification_tokens WHERE id=$1`, id)
	return translate(err)
}
