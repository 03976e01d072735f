package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-inbox/internal/domain"
)

// CompanyRepository persists business tenants. Companies are never deleted.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	Update(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
}

type companyRepository struct {
	pool *pgxpool.Pool
}

// NewCompanyRepository constructs repository.
func NewCompanyRepository(pool *pgxpool.Pool) CompanyRepository {
	return &companyRepository{pool: pool}
}

func (r *companyRepository) Create(ctx context.Context, company *domain.Company) error {
	const query = `
        INSERT INTO companies (name, slug, domain, support_email, ack_enabled, ack_subject, ack_body,
            portal_enabled, portal_include_history)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		company.Name,
		company.Slug,
		company.Domain,
		company.SupportEmail,
		company.AckTemplate.Enabled,
		company.AckTemplate.Subject,
		company.AckTemplate.Body,
		company.Portal.Enabled,
		company.Portal.IncludeTicketHistory,
	).Scan(&company.ID, &company.CreatedAt, &company.UpdatedAt)
	return translateUnique(err)
}

func (r *companyRepository) Update(ctx context.Context, company *domain.Company) error {
	const query = `
        UPDATE companies SET name=$1, domain=$2, support_email=$3, google_connected=$4, google_email=$5,
            google_refresh_token=$6, ack_enabled=$7, ack_subject=$8, ack_body=$9, portal_enabled=$10,
            portal_include_history=$11, updated_at=NOW()
        WHERE id=$12
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		company.Name,
		company.Domain,
		company.SupportEmail,
		company.GoogleConnected,
		company.GoogleEmail,
		company.GoogleRefreshToken,
		company.AckTemplate.Enabled,
		company.AckTemplate.Subject,
		company.AckTemplate.Body,
		company.Portal.Enabled,
		company.Portal.IncludeTicketHistory,
		company.ID,
	).Scan(&company.UpdatedAt)
}

func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	const query = `
        SELECT id, name, slug, domain, support_email, google_connected, google_email, google_refresh_token,
               ack_enabled, ack_subject, ack_body, portal_enabled, portal_include_history, created_at, updated_at
        FROM companies WHERE id=$1`
	var company domain.Company
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Slug,
		&company.Domain,
		&company.SupportEmail,
		&company.GoogleConnected,
		&company.GoogleEmail,
		&company.GoogleRefreshToken,
		&company.AckTemplate.Enabled,
		&company.AckTemplate.Subject,
		&company.AckTemplate.Body,
		&company.Portal.Enabled,
		&company.Portal.IncludeTicketHistory,
		&company.CreatedAt,
		&company.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &company, nil
}
