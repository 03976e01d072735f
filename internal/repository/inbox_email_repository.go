package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// InboxEmailRepository persists personal inbox emails.
type InboxEmailRepository interface {
	Create(ctx context.Context, email *domain.InboxEmail) error
	Update(ctx context.Context, email *domain.InboxEmail) error
	GetByID(ctx context.Context, userID, id string) (*domain.InboxEmail, error)
	ListByUser(ctx context.Context, userID string, category *domain.EmailCategory) ([]domain.InboxEmail, error)
}

type inboxEmailRepository struct {
	pool *pgxpool.Pool
}

// NewInboxEmailRepository constructs repository.
func NewInboxEmailRepository(pool *pgxpool.Pool) InboxEmailRepository {
	return &inboxEmailRepository{pool: pool}
}

const inboxColumns = `id, user_id, message_id, from_name, from_email, subject, body, category, ai_confidence, is_read, received_at`

func (r *inboxEmailRepository) Create(ctx context.Context, email *domain.InboxEmail) error {
	const query = `
        INSERT INTO inbox_emails (user_id, message_id, from_name, from_email, subject, body, category, ai_confidence)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, received_at`
	return r.pool.QueryRow(ctx, query,
		email.UserID,
		email.MessageID,
		email.FromName,
		email.FromEmail,
		email.Subject,
		email.Body,
		email.Category,
		email.AIConfidence,
	).Scan(&email.ID, &email.ReceivedAt)
}

func (r *inboxEmailRepository) Update(ctx context.Context, email *domain.InboxEmail) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE inbox_emails SET category=$1, is_read=$2 WHERE id=$3 AND user_id=$4`,
		email.Category, email.IsRead, email.ID, email.UserID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *inboxEmailRepository) GetByID(ctx context.Context, userID, id string) (*domain.InboxEmail, error) {
	email, err := scanInboxEmail(r.pool.QueryRow(ctx, `SELECT `+inboxColumns+` FROM inbox_emails WHERE id=$1 AND user_id=$2`, id, userID))
	if err != nil {
		return nil, err
	}
	return &email, nil
}

func (r *inboxEmailRepository) ListByUser(ctx context.Context, userID string, category *domain.EmailCategory) ([]domain.InboxEmail, error) {
	query := `SELECT ` + inboxColumns + ` FROM inbox_emails WHERE user_id=$1`
	args := []any{userID}
	if category != nil {
		args = append(args, *category)
		query += ` AND category=$2`
	}
	query += ` ORDER BY received_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.InboxEmail{}
	for rows.Next() {
		email, err := scanInboxEmail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, email)
	}
	return result, rows.Err()
}

func scanInboxEmail(row pgx.Row) (domain.InboxEmail, error) {
	var email domain.InboxEmail
	err := row.Scan(
		&email.ID,
		&email.UserID,
		&email.MessageID,
		&email.FromName,
		&email.FromEmail,
		&email.Subject,
		&email.Body,
		&email.Category,
		&email.AIConfidence,
		&email.IsRead,
		&email.ReceivedAt,
	)
	return email, err
}
