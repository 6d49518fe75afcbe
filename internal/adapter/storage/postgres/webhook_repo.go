package postgres

import (
	"context"
	"fmt"
	"time"

	"payflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const webhookEventColumns = `id, merchant_id, event, payload, status, attempts, next_attempt_at, last_response_code, last_response_body, created_at`

// claimLease is how far ClaimPending pushes next_attempt_at out for a row it
// hands to a worker, so a second poller won't grab the same row mid-delivery.
// If the worker crashes before calling Mark*, the row becomes claimable
// again once the lease expires, at the cost of one uncounted extra attempt.
const claimLease = 60 * time.Second

// WebhookEventRepo implements ports.WebhookEventRepository.
type WebhookEventRepo struct {
	pool Pool
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(pool Pool) *WebhookEventRepo {
	return &WebhookEventRepo{pool: pool}
}

func (r *WebhookEventRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.WebhookEvent) error {
	query := `INSERT INTO webhook_events (merchant_id, event, payload, status, attempts, next_attempt_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return tx.QueryRow(ctx, query, e.MerchantID, e.Event, e.Payload, e.Status, e.Attempts, e.NextAttemptAt, e.CreatedAt).Scan(&e.ID)
}

// ClaimPending atomically claims up to limit due rows via
// SELECT ... FOR UPDATE SKIP LOCKED, leasing them out by pushing
// next_attempt_at forward so concurrent dispatcher instances don't collide.
func (r *WebhookEventRepo) ClaimPending(ctx context.Context, limit int) ([]*domain.WebhookEvent, error) {
	query := `WITH claimed AS (
			SELECT id FROM webhook_events
			WHERE status = $1 AND next_attempt_at <= now()
			ORDER BY next_attempt_at
			FOR UPDATE SKIP LOCKED
			LIMIT $2
		)
		UPDATE webhook_events w
		SET next_attempt_at = now() + make_interval(secs => $3)
		FROM claimed
		WHERE w.id = claimed.id
		RETURNING w.id, w.merchant_id, w.event, w.payload, w.status, w.attempts, w.next_attempt_at,
			w.last_response_code, w.last_response_body, w.created_at`

	rows, err := r.pool.Query(ctx, query, domain.WebhookPending, limit, claimLease.Seconds())
	if err != nil {
		return nil, fmt.Errorf("claim pending webhook events: %w", err)
	}
	defer rows.Close()

	var events []*domain.WebhookEvent
	for rows.Next() {
		e := &domain.WebhookEvent{}
		err := rows.Scan(&e.ID, &e.MerchantID, &e.Event, &e.Payload, &e.Status, &e.Attempts, &e.NextAttemptAt,
			&e.LastResponseCode, &e.LastResponseBody, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan claimed webhook event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claimed webhook events: %w", err)
	}
	return events, nil
}

func (r *WebhookEventRepo) MarkDelivered(ctx context.Context, id int64, responseCode int, responseBody string) error {
	query := `UPDATE webhook_events SET status = $1, attempts = attempts + 1,
		last_response_code = $2, last_response_body = $3 WHERE id = $4`
	_, err := r.pool.Exec(ctx, query, domain.WebhookDelivered, responseCode, responseBody, id)
	if err != nil {
		return fmt.Errorf("mark webhook event delivered: %w", err)
	}
	return nil
}

func (r *WebhookEventRepo) MarkRetry(ctx context.Context, id int64, attempts int, nextAttemptAt time.Time, responseCode *int, responseBody *string) error {
	query := `UPDATE webhook_events SET status = $1, attempts = $2, next_attempt_at = $3,
		last_response_code = $4, last_response_body = $5 WHERE id = $6`
	_, err := r.pool.Exec(ctx, query, domain.WebhookPending, attempts, nextAttemptAt, responseCode, responseBody, id)
	if err != nil {
		return fmt.Errorf("schedule webhook event retry: %w", err)
	}
	return nil
}

func (r *WebhookEventRepo) MarkFailed(ctx context.Context, id int64, responseCode *int, responseBody *string) error {
	query := `UPDATE webhook_events SET status = $1, attempts = attempts + 1,
		last_response_code = $2, last_response_body = $3 WHERE id = $4`
	_, err := r.pool.Exec(ctx, query, domain.WebhookFailed, responseCode, responseBody, id)
	if err != nil {
		return fmt.Errorf("mark webhook event failed: %w", err)
	}
	return nil
}

func (r *WebhookEventRepo) ListByMerchant(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.WebhookEvent, error) {
	query := `SELECT ` + webhookEventColumns + ` FROM webhook_events WHERE merchant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, merchantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list webhook events by merchant: %w", err)
	}
	defer rows.Close()

	var events []*domain.WebhookEvent
	for rows.Next() {
		e := &domain.WebhookEvent{}
		err := rows.Scan(&e.ID, &e.MerchantID, &e.Event, &e.Payload, &e.Status, &e.Attempts, &e.NextAttemptAt,
			&e.LastResponseCode, &e.LastResponseBody, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan webhook event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook event rows: %w", err)
	}
	return events, nil
}
