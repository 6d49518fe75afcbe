package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefundStatus is the refund's (single-shot) outcome.
type RefundStatus string

const (
	RefundProcessed RefundStatus = "processed"
	RefundFailed    RefundStatus = "failed"
)

// Refund is a reversal of a captured payment, in whole or in part.
type Refund struct {
	ID        uuid.UUID
	RefundRef string
	PaymentID uuid.UUID
	Amount    int64
	Reason    string
	Notes     *string
	Status    RefundStatus
	CreatedAt time.Time
}
