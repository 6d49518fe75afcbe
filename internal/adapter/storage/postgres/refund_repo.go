package postgres

import (
	"context"
	"fmt"

	"payflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const refundColumns = `id, refund_ref, payment_id, amount, reason, notes, status, created_at`

// RefundRepo implements ports.RefundRepository.
type RefundRepo struct {
	pool Pool
}

// NewRefundRepo creates a new RefundRepo.
func NewRefundRepo(pool Pool) *RefundRepo {
	return &RefundRepo{pool: pool}
}

func (r *RefundRepo) Create(ctx context.Context, tx pgx.Tx, rf *domain.Refund) error {
	query := `INSERT INTO refunds (` + refundColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.Exec(ctx, query, rf.ID, rf.RefundRef, rf.PaymentID, rf.Amount, rf.Reason, rf.Notes, rf.Status, rf.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert refund: %w", err)
	}
	return nil
}

// SumProcessedByPayment sums processed refund amounts for paymentID, read
// inside the caller's locking transaction so it reflects any refund the
// transaction itself has already inserted this call.
func (r *RefundRepo) SumProcessedByPayment(ctx context.Context, tx pgx.Tx, paymentID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM refunds WHERE payment_id = $1 AND status = $2`
	var sum int64
	if err := tx.QueryRow(ctx, query, paymentID, domain.RefundProcessed).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum processed refunds: %w", err)
	}
	return sum, nil
}

func (r *RefundRepo) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]*domain.Refund, error) {
	query := `SELECT ` + refundColumns + ` FROM refunds WHERE payment_id = $1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list refunds by payment: %w", err)
	}
	defer rows.Close()

	var refunds []*domain.Refund
	for rows.Next() {
		rf := &domain.Refund{}
		if err := rows.Scan(&rf.ID, &rf.RefundRef, &rf.PaymentID, &rf.Amount, &rf.Reason, &rf.Notes, &rf.Status, &rf.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan refund row: %w", err)
		}
		refunds = append(refunds, rf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refund rows: %w", err)
	}
	return refunds, nil
}
