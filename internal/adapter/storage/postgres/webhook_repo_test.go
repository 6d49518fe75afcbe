package postgres

import (
	"context"
	"testing"
	"time"

	"payflow/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWebhookEvent() *domain.WebhookEvent {
	return &domain.WebhookEvent{
		ID:            1,
		MerchantID:    uuid.New(),
		Event:         domain.EventPaymentCaptured,
		Payload:       `{"payment_ref":"pay_abc123"}`,
		Status:        domain.WebhookPending,
		Attempts:      0,
		NextAttemptAt: time.Now().UTC(),
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func webhookEventColumnNames() []string {
	return []string{"id", "merchant_id", "event", "payload", "status", "attempts", "next_attempt_at", "last_response_code", "last_response_body", "created_at"}
}

func webhookEventRow(e *domain.WebhookEvent) *pgxmock.Rows {
	return pgxmock.NewRows(webhookEventColumnNames()).AddRow(
		e.ID, e.MerchantID, e.Event, e.Payload, e.Status, e.Attempts, e.NextAttemptAt,
		e.LastResponseCode, e.LastResponseBody, e.CreatedAt,
	)
}

func TestWebhookEventRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	e := newTestWebhookEvent()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO webhook_events").
		WithArgs(e.MerchantID, e.Event, e.Payload, e.Status, e.Attempts, e.NextAttemptAt, e.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, e)
	require.NoError(t, err)
	assert.Equal(t, int64(42), e.ID)
}

func TestWebhookEventRepo_ClaimPending_LeasesRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	e := newTestWebhookEvent()

	mock.ExpectQuery("WITH claimed AS").
		WithArgs(domain.WebhookPending, 25, claimLease.Seconds()).
		WillReturnRows(webhookEventRow(e))

	events, err := repo.ClaimPending(context.Background(), 25)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, e.ID, events[0].ID)
}

func TestWebhookEventRepo_MarkFailed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWebhookEventRepo(mock)
	status := 500
	body := "internal server error"

	mock.ExpectExec("UPDATE webhook_events SET status").
		WithArgs(domain.WebhookFailed, &status, &body, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkFailed(context.Background(), 7, &status, &body)
	assert.NoError(t, err)
}
