package postgres

import (
	"context"
	"errors"
	"fmt"

	"payflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `id, order_ref, merchant_id, amount, currency, receipt, notes, status, auto_capture, idempotency_key, created_at`

// OrderRepo implements ports.OrderRepository.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

func (r *OrderRepo) Create(ctx context.Context, tx pgx.Tx, o *domain.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := tx.Exec(ctx, query,
		o.ID, o.OrderRef, o.MerchantID, o.Amount, o.Currency, o.Receipt, o.Notes,
		o.Status, o.AutoCapture, o.IdempotencyKey, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scan(r.pool.QueryRow(ctx, query, id))
}

func (r *OrderRepo) GetByIdempotencyKey(ctx context.Context, merchantID uuid.UUID, key string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE merchant_id = $1 AND idempotency_key = $2`
	return r.scan(r.pool.QueryRow(ctx, query, merchantID, key))
}

func (r *OrderRepo) GetByRef(ctx context.Context, orderRef string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_ref = $1`
	return r.scan(r.pool.QueryRow(ctx, query, orderRef))
}

func (r *OrderRepo) GetByRefForUpdate(ctx context.Context, tx pgx.Tx, orderRef string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_ref = $1 FOR UPDATE`
	return r.scan(tx.QueryRow(ctx, query, orderRef))
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1 WHERE id = $2`
	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("order not found: %s", id)
	}
	return nil
}

func (r *OrderRepo) List(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE merchant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

func (r *OrderRepo) scan(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(&o.ID, &o.OrderRef, &o.MerchantID, &o.Amount, &o.Currency, &o.Receipt, &o.Notes,
		&o.Status, &o.AutoCapture, &o.IdempotencyKey, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}
	return o, nil
}

func (r *OrderRepo) scanRow(rows pgx.Rows) (*domain.Order, error) {
	o := &domain.Order{}
	err := rows.Scan(&o.ID, &o.OrderRef, &o.MerchantID, &o.Amount, &o.Currency, &o.Receipt, &o.Notes,
		&o.Status, &o.AutoCapture, &o.IdempotencyKey, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan order row: %w", err)
	}
	return o, nil
}
