package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEventType names the event carried in a webhook body.
type WebhookEventType string

const (
	EventPaymentCaptured WebhookEventType = "payment.captured"
	EventPaymentFailed   WebhookEventType = "payment.failed"
	EventOrderPaid       WebhookEventType = "order.paid"
	EventRefundProcessed WebhookEventType = "refund.processed"
)

// WebhookStatus is the outbox row's delivery state.
type WebhookStatus string

const (
	WebhookPending   WebhookStatus = "pending"
	WebhookDelivered WebhookStatus = "delivered"
	WebhookFailed    WebhookStatus = "failed"
)

const MaxWebhookAttempts = 8

// WebhookEvent is a durable outbox row. Rows are appended in the same
// transaction that advances order/payment state and drained independently
// by the dispatcher worker pool.
type WebhookEvent struct {
	ID               int64
	MerchantID       uuid.UUID
	Event            WebhookEventType
	Payload          string // raw JSON body, exactly as signed and sent
	Status           WebhookStatus
	Attempts         int
	NextAttemptAt    time.Time
	LastResponseCode *int
	LastResponseBody *string
	CreatedAt        time.Time
}

// Backoff returns the delay before the next attempt given the number of
// attempts already made: min(600, 2^attempts) seconds.
func Backoff(attempts int) time.Duration {
	seconds := 1 << uint(attempts)
	if seconds > 600 || seconds <= 0 {
		seconds = 600
	}
	return time.Duration(seconds) * time.Second
}

// Exhausted reports whether the event has used up its retry budget.
func (w *WebhookEvent) Exhausted() bool {
	return w.Attempts >= MaxWebhookAttempts
}

// WebhookLog is one delivery attempt record, append-only.
type WebhookLog struct {
	ID             int64
	WebhookEventID int64
	Attempt        int
	HTTPStatus     *int
	ResponseBody   *string
	Error          *string
	CreatedAt      time.Time
}
