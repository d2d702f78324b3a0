package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/danverse/danverse-api/internal/entity"
)

type OrderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{DB: db}
}

const orderColumns = `
	order_code, plan, customer_name, customer_email, customer_phone,
	customer_company, notes, amount, currency, status, payment_method,
	transaction_reference, payment_instructions, paid_at, created_at, updated_at
`

func (r *OrderRepository) Insert(ctx context.Context, order *entity.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.DB.ExecContext(ctx, query,
		order.OrderCode,
		order.Plan,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		nullString(order.CustomerCompany),
		nullString(order.Notes),
		order.Amount,
		order.Currency,
		string(order.Status),
		nullString(order.PaymentMethod),
		nullString(order.TransactionReference),
		nullString(order.PaymentInstructions),
		order.PaidAt,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return entity.ErrDuplicateKey
	}
	return err
}

func (r *OrderRepository) FindByCode(ctx context.Context, code string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_code = $1`

	order, err := scanOrder(r.DB.QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Update applies the patch with COALESCE so untouched columns keep their
// values, and always bumps updated_at.
func (r *OrderRepository) Update(ctx context.Context, code string, patch entity.OrderPatch) (*entity.Order, error) {
	query := `
		UPDATE orders SET
			status = COALESCE($2, status),
			payment_method = COALESCE($3, payment_method),
			transaction_reference = COALESCE($4, transaction_reference),
			paid_at = COALESCE($5, paid_at),
			updated_at = $6
		WHERE order_code = $1
		RETURNING ` + orderColumns

	var status *string
	if patch.Status != nil {
		s := string(*patch.Status)
		status = &s
	}

	order, err := scanOrder(r.DB.QueryRowContext(ctx, query,
		code, status, patch.PaymentMethod, patch.TransactionReference,
		patch.PaidAt, time.Now().UTC(),
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) Count(ctx context.Context, filter entity.OrderFilter) (int, error) {
	query := `
		SELECT COUNT(*) FROM orders
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR plan = $2)
	`
	var count int
	err := r.DB.QueryRowContext(ctx, query, string(filter.Status), filter.Plan).Scan(&count)
	return count, err
}

func (r *OrderRepository) Recent(ctx context.Context, limit int) ([]entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

func (r *OrderRepository) All(ctx context.Context) ([]entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanOrders(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var order entity.Order
	var company, notes, method, ref, instructions sql.NullString
	var paidAt sql.NullTime
	var status string

	if err := row.Scan(
		&order.OrderCode, &order.Plan, &order.CustomerName, &order.CustomerEmail,
		&order.CustomerPhone, &company, &notes, &order.Amount, &order.Currency,
		&status, &method, &ref, &instructions, &paidAt,
		&order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return nil, err
	}

	order.Status = entity.OrderStatus(status)
	order.CustomerCompany = company.String
	order.Notes = notes.String
	order.PaymentMethod = method.String
	order.TransactionReference = ref.String
	order.PaymentInstructions = instructions.String
	if paidAt.Valid {
		order.PaidAt = &paidAt.Time
	}
	return &order, nil
}

func scanOrders(rows *sql.Rows) ([]entity.Order, error) {
	var orders []entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}
