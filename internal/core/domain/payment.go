package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how the customer attempted to pay.
type PaymentMethod string

const (
	MethodUPI        PaymentMethod = "upi"
	MethodCard       PaymentMethod = "card"
	MethodNetbanking PaymentMethod = "netbanking"
	MethodWallet     PaymentMethod = "wallet"
)

// PaymentStatus is the payment's position in its state machine.
type PaymentStatus string

const (
	PaymentCreated            PaymentStatus = "created"
	PaymentAuthorized         PaymentStatus = "authorized"
	PaymentCaptured           PaymentStatus = "captured"
	PaymentFailed             PaymentStatus = "failed"
	PaymentRefunded           PaymentStatus = "refunded"
	PaymentPartiallyRefunded  PaymentStatus = "partially_refunded"
)

// Payment is a customer's attempt to satisfy an order via one method.
type Payment struct {
	ID          uuid.UUID
	PaymentRef  string
	OrderID     uuid.UUID
	Amount      int64
	Method      PaymentMethod
	VPA         *string
	CardLast4   *string
	CardName    *string
	Email       *string
	Contact     *string
	Phone       *string
	Status      PaymentStatus
	IsFlagged   bool
	RuleHits    []string
	ErrorCode   *string
	ErrorReason *string
	CreatedAt   time.Time
}

// IsTerminal reports whether the payment will never transition again.
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentFailed || p.Status == PaymentRefunded
}

// IsRefundable reports whether a refund may currently be created against
// this payment: captured or partially refunded funds remain refundable.
func (p *Payment) IsRefundable() bool {
	return p.Status == PaymentCaptured || p.Status == PaymentPartiallyRefunded
}

// HoldsSettledFunds reports whether this payment counts toward the
// "at most one payment per order in a post-authorization state" invariant.
func (p *Payment) HoldsSettledFunds() bool {
	switch p.Status {
	case PaymentAuthorized, PaymentCaptured, PaymentPartiallyRefunded, PaymentRefunded:
		return true
	default:
		return false
	}
}
