package repository

import (
	"context"

	"github.com/spec-kit/volunteer-hub/internal/domain"
)

type emailLogRepository struct {
	db dbtx
}

// NewEmailLogRepository creates an email log repository.
func NewEmailLogRepository(db dbtx) EmailLogRepository {
	return &emailLogRepository{db: db}
}

func (r *emailLogRepository) Create(ctx context.Context, entry *domain.EmailLog) error {
	const query = `
        INSERT INTO email_logs (kind, recipient_email, subject, status, attempt, error_message)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		entry.Kind,
		entry.RecipientEmail,
		entry.Subject,
		entry.Status,
		entry.Attempt,
		entry.ErrorMessage,
	).Scan(&entry.ID, &entry.CreatedAt)
	return translate(err)
}

// ListRecent returns logs newest first.
func (r *emailLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.EmailLog, error) {
	if limit <= 0 {
		limit = 50
	}
	const query = `
        SELECT id, kind, recipient_email, subject, status, attempt, error_message, created_at
        FROM email_logs
        ORDER BY created_at DESC
        LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var list []domain.EmailLog
	for rows.Next() {
		var el domain.EmailLog
		if err := rows.Scan(&el.ID, &el.Kind, &el.RecipientEmail, &el.Subject, &el.Status, &el.Attempt, &el.ErrorMessage, &el.CreatedAt); err != nil {
			return nil, translate(err)
		}
		list = append(list, el)
	}
	return list, translate(rows.Err())
}
