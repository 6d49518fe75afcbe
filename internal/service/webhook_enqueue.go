package service

import (
	"context"
	"encoding/json"
	"time"

	"payflow/internal/core/domain"

	"github.com/google/uuid"
)

// WebhookNotifier wakes an idle dispatcher worker immediately after a new
// outbox row is committed, instead of waiting for the next poll tick. It is
// the "notification channel" alternative the dispatcher design allows;
// delivery still works with no notifier wired, via the poll loop alone.
type WebhookNotifier interface {
	Notify(ctx context.Context)
}

// webhookEnvelope is the body every delivery actually sends: the event name
// and timestamp alongside the payload, so a receiver can dedupe on
// payload.payment_ref without having to read it back out of a header.
type webhookEnvelope struct {
	Event     domain.WebhookEventType `json:"event"`
	CreatedAt string                  `json:"created_at"`
	Payload   interface{}             `json:"payload"`
}

// buildWebhookEvent wraps payload in the envelope merchants receive and
// returns a pending outbox row ready to be appended inside the caller's
// transaction.
func buildWebhookEvent(merchantID uuid.UUID, event domain.WebhookEventType, payload interface{}) (*domain.WebhookEvent, error) {
	now := time.Now().UTC()
	body, err := json.Marshal(webhookEnvelope{
		Event:     event,
		CreatedAt: now.Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return nil, err
	}
	return &domain.WebhookEvent{
		MerchantID:    merchantID,
		Event:         event,
		Payload:       string(body),
		Status:        domain.WebhookPending,
		Attempts:      0,
		NextAttemptAt: now,
		CreatedAt:     now,
	}, nil
}

func notify(ctx context.Context, n WebhookNotifier) {
	if n != nil {
		n.Notify(ctx)
	}
}
