package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrder_CanAcceptPayment(t *testing.T) {
	cases := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderCreated, true},
		{OrderAttempted, true},
		{OrderPaid, false},
	}
	for _, tc := range cases {
		o := &Order{Status: tc.status}
		assert.Equal(t, tc.want, o.CanAcceptPayment(), "status=%s", tc.status)
	}
}

func TestPayment_IsTerminal(t *testing.T) {
	cases := []struct {
		status PaymentStatus
		want   bool
	}{
		{PaymentCreated, false},
		{PaymentAuthorized, false},
		{PaymentCaptured, false},
		{PaymentPartiallyRefunded, false},
		{PaymentFailed, true},
		{PaymentRefunded, true},
	}
	for _, tc := range cases {
		p := &Payment{Status: tc.status}
		assert.Equal(t, tc.want, p.IsTerminal(), "status=%s", tc.status)
	}
}

func TestPayment_IsRefundable(t *testing.T) {
	cases := []struct {
		status PaymentStatus
		want   bool
	}{
		{PaymentCaptured, true},
		{PaymentPartiallyRefunded, true},
		{PaymentAuthorized, false},
		{PaymentFailed, false},
		{PaymentRefunded, false},
	}
	for _, tc := range cases {
		p := &Payment{Status: tc.status}
		assert.Equal(t, tc.want, p.IsRefundable(), "status=%s", tc.status)
	}
}

func TestPayment_HoldsSettledFunds(t *testing.T) {
	settled := []PaymentStatus{PaymentAuthorized, PaymentCaptured, PaymentPartiallyRefunded, PaymentRefunded}
	for _, s := range settled {
		p := &Payment{Status: s}
		assert.True(t, p.HoldsSettledFunds(), "status=%s", s)
	}
	notSettled := []PaymentStatus{PaymentCreated, PaymentFailed}
	for _, s := range notSettled {
		p := &Payment{Status: s}
		assert.False(t, p.HoldsSettledFunds(), "status=%s", s)
	}
}

func TestBackoff(t *testing.T) {
	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{5, 32 * time.Second},
		{10, 600 * time.Second}, // 2^10=1024 > 600 cap
		{20, 600 * time.Second},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Backoff(tc.attempts), "attempts=%d", tc.attempts)
	}
}

func TestWebhookEvent_Exhausted(t *testing.T) {
	w := &WebhookEvent{Attempts: 7}
	assert.False(t, w.Exhausted())
	w.Attempts = 8
	assert.True(t, w.Exhausted())
	w.Attempts = 9
	assert.True(t, w.Exhausted())
}
