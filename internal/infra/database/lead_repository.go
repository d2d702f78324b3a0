package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/danverse/danverse-api/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, company, message, budget_range, service, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		nullString(lead.Name),
		lead.Email,
		nullString(lead.Phone),
		nullString(lead.Company),
		nullString(lead.Message),
		nullString(lead.BudgetRange),
		nullString(lead.Service),
		lead.Source,
		lead.CreatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrDuplicateKey
	}
	return err
}

func (r *LeadRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads`).Scan(&count)
	return count, err
}

func (r *LeadRepository) Recent(ctx context.Context, limit int) ([]entity.Lead, error) {
	query := `
		SELECT id, name, email, phone, company, message, budget_range, service, source, created_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeads(rows)
}

func (r *LeadRepository) All(ctx context.Context) ([]entity.Lead, error) {
	query := `
		SELECT id, name, email, phone, company, message, budget_range, service, source, created_at
		FROM leads
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLeads(rows)
}

func scanLeads(rows *sql.Rows) ([]entity.Lead, error) {
	var leads []entity.Lead
	for rows.Next() {
		var lead entity.Lead
		var name, phone, company, message, budgetRange, service sql.NullString

		if err := rows.Scan(
			&lead.ID, &name, &lead.Email, &phone, &company,
			&message, &budgetRange, &service, &lead.Source, &lead.CreatedAt,
		); err != nil {
			return nil, err
		}

		lead.Name = name.String
		lead.Phone = phone.String
		lead.Company = company.String
		lead.Message = message.String
		lead.BudgetRange = budgetRange.String
		lead.Service = service.String
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
