package postgres

import (
	"context"
	"fmt"

	"payflow/internal/core/domain"
)

// WebhookLogRepo implements ports.WebhookLogRepository.
type WebhookLogRepo struct {
	pool Pool
}

// NewWebhookLogRepo creates a new WebhookLogRepo.
func NewWebhookLogRepo(pool Pool) *WebhookLogRepo {
	return &WebhookLogRepo{pool: pool}
}

func (r *WebhookLogRepo) Create(ctx context.Context, l *domain.WebhookLog) error {
	query := `INSERT INTO webhook_logs (webhook_event_id, attempt, http_status, response_body, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.pool.QueryRow(ctx, query, l.WebhookEventID, l.Attempt, l.HTTPStatus, l.ResponseBody, l.Error, l.CreatedAt).Scan(&l.ID)
}

func (r *WebhookLogRepo) ListByEvent(ctx context.Context, eventID int64) ([]*domain.WebhookLog, error) {
	query := `SELECT id, webhook_event_id, attempt, http_status, response_body, error, created_at
		FROM webhook_logs WHERE webhook_event_id = $1 ORDER BY attempt ASC`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("list webhook logs by event: %w", err)
	}
	defer rows.Close()

	var logs []*domain.WebhookLog
	for rows.Next() {
		l := &domain.WebhookLog{}
		if err := rows.Scan(&l.ID, &l.WebhookEventID, &l.Attempt, &l.HTTPStatus, &l.ResponseBody, &l.Error, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook log rows: %w", err)
	}
	return logs, nil
}
