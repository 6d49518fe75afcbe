package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the order's position in its state machine.
type OrderStatus string

const (
	OrderCreated   OrderStatus = "created"
	OrderAttempted OrderStatus = "attempted"
	OrderPaid      OrderStatus = "paid"
)

// Order is a merchant's declared intent to collect a fixed amount. It is the
// unit of idempotency from the merchant's perspective.
type Order struct {
	ID             uuid.UUID
	OrderRef       string
	MerchantID     uuid.UUID
	Amount         int64
	Currency       string
	Receipt        string
	Notes          *string
	Status         OrderStatus
	AutoCapture    bool
	IdempotencyKey *string
	CreatedAt      time.Time
}

// CanAcceptPayment reports whether a new payment attempt may be created
// against this order. Only created/attempted orders accept attempts; a paid
// order is terminal for anything except a refund of its payment.
func (o *Order) CanAcceptPayment() bool {
	return o.Status == OrderCreated || o.Status == OrderAttempted
}

// NextOnFailedPayment is the status an order moves to after a payment on it
// fails to authorize: attempted, whether or not it already was.
func (o *Order) NextOnFailedPayment() OrderStatus {
	return OrderAttempted
}
