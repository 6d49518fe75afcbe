package postgres

import (
	"context"
	"fmt"

	"payflow/internal/core/ports"
)

// AdminRepo implements ports.AdminRepository.
type AdminRepo struct {
	pool Pool
}

// NewAdminRepo creates a new AdminRepo.
func NewAdminRepo(pool Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

func (r *AdminRepo) Stats(ctx context.Context) (*ports.AdminStats, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM orders) AS total_orders,
		(SELECT COUNT(*) FROM payments) AS total_payments,
		(SELECT COALESCE(SUM(amount), 0) FROM payments WHERE status IN ('captured', 'partially_refunded', 'refunded')) AS captured_amount,
		(SELECT COALESCE(SUM(amount), 0) FROM refunds WHERE status = 'processed') AS refunded_amount,
		(SELECT COUNT(*) FROM payments WHERE is_flagged = true) AS flagged_payments,
		(SELECT COUNT(*) FROM payments WHERE status = 'failed') AS failed_payments`

	stats := &ports.AdminStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalOrders, &stats.TotalPayments, &stats.CapturedAmount,
		&stats.RefundedAmount, &stats.FlaggedPayments, &stats.FailedPayments,
	)
	if err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return stats, nil
}
