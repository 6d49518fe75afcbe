package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const paymentColumns = `id, payment_ref, order_id, amount, method, vpa, card_last4, card_name, email, contact, phone,
	status, is_flagged, rule_hits, error_code, error_reason, created_at`

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

func (r *PaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := tx.Exec(ctx, query,
		p.ID, p.PaymentRef, p.OrderID, p.Amount, p.Method, p.VPA, p.CardLast4, p.CardName,
		p.Email, p.Contact, p.Phone, p.Status, p.IsFlagged, p.RuleHits, p.ErrorCode, p.ErrorReason, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *PaymentRepo) GetByRef(ctx context.Context, paymentRef string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_ref = $1`
	return r.scan(r.pool.QueryRow(ctx, query, paymentRef))
}

func (r *PaymentRepo) GetByRefForUpdate(ctx context.Context, tx pgx.Tx, paymentRef string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE payment_ref = $1 FOR UPDATE`
	return r.scan(tx.QueryRow(ctx, query, paymentRef))
}

func (r *PaymentRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentStatus, errorCode, errorReason *string) error {
	query := `UPDATE payments SET status = $1, error_code = $2, error_reason = $3 WHERE id = $4`
	tag, err := tx.Exec(ctx, query, status, errorCode, errorReason, id)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments by order: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListRecentByIdentity returns payments sharing the given vpa/email/contact
// identity for merchantID within window, newest first. The fraud engine
// consumes this as its sole I/O-derived input.
func (r *PaymentRepo) ListRecentByIdentity(ctx context.Context, merchantID uuid.UUID, identity string, window time.Duration) ([]*domain.Payment, error) {
	query := `SELECT p.id, p.payment_ref, p.order_id, p.amount, p.method, p.vpa, p.card_last4, p.card_name,
			p.email, p.contact, p.phone, p.status, p.is_flagged, p.rule_hits, p.error_code, p.error_reason, p.created_at
		FROM payments p
		JOIN orders o ON o.id = p.order_id
		WHERE o.merchant_id = $1
		  AND (p.vpa = $2 OR p.email = $2 OR p.contact = $2)
		  AND p.created_at >= $3
		ORDER BY p.created_at DESC`
	since := time.Now().UTC().Add(-window)
	rows, err := r.pool.Query(ctx, query, merchantID, identity, since)
	if err != nil {
		return nil, fmt.Errorf("list payments by identity: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *PaymentRepo) ListFlagged(ctx context.Context, limit, offset int) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE is_flagged = true ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list flagged payments: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *PaymentRepo) scan(row pgx.Row) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(&p.ID, &p.PaymentRef, &p.OrderID, &p.Amount, &p.Method, &p.VPA, &p.CardLast4, &p.CardName,
		&p.Email, &p.Contact, &p.Phone, &p.Status, &p.IsFlagged, &p.RuleHits, &p.ErrorCode, &p.ErrorReason, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return p, nil
}

func (r *PaymentRepo) scanAll(rows pgx.Rows) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	for rows.Next() {
		p := &domain.Payment{}
		err := rows.Scan(&p.ID, &p.PaymentRef, &p.OrderID, &p.Amount, &p.Method, &p.VPA, &p.CardLast4, &p.CardName,
			&p.Email, &p.Contact, &p.Phone, &p.Status, &p.IsFlagged, &p.RuleHits, &p.ErrorCode, &p.ErrorReason, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}
	return payments, nil
}
