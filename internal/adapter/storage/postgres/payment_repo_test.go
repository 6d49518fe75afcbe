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

func newTestPayment() *domain.Payment {
	vpa := "payer@upi"
	return &domain.Payment{
		ID:         uuid.New(),
		PaymentRef: "pay_abc123",
		OrderID:    uuid.New(),
		Amount:     150000,
		Method:     domain.MethodUPI,
		VPA:        &vpa,
		Status:     domain.PaymentAuthorized,
		IsFlagged:  false,
		RuleHits:   nil,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func paymentColumnNames() []string {
	return []string{"id", "payment_ref", "order_id", "amount", "method", "vpa", "card_last4", "card_name",
		"email", "contact", "phone", "status", "is_flagged", "rule_hits", "error_code", "error_reason", "created_at"}
}

func paymentRow(p *domain.Payment) *pgxmock.Rows {
	return pgxmock.NewRows(paymentColumnNames()).AddRow(
		p.ID, p.PaymentRef, p.OrderID, p.Amount, p.Method, p.VPA, p.CardLast4, p.CardName,
		p.Email, p.Contact, p.Phone, p.Status, p.IsFlagged, p.RuleHits, p.ErrorCode, p.ErrorReason, p.CreatedAt,
	)
}

func TestPaymentRepo_GetByRefForUpdate_Locks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM payments WHERE payment_ref = .+ FOR UPDATE").
		WithArgs(p.PaymentRef).
		WillReturnRows(paymentRow(p))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByRefForUpdate(context.Background(), tx, p.PaymentRef)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, p.ID, result.ID)
}

func TestPaymentRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments SET status").
		WithArgs(domain.PaymentCaptured, (*string)(nil), (*string)(nil), p.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, p.ID, domain.PaymentCaptured, nil, nil)
	assert.NoError(t, err)
}

func TestPaymentRepo_ListRecentByIdentity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment()
	merchantID := uuid.New()

	mock.ExpectQuery("SELECT p.id.+FROM payments p.+JOIN orders").
		WithArgs(merchantID, *p.VPA, pgxmock.AnyArg()).
		WillReturnRows(paymentRow(p))

	results, err := repo.ListRecentByIdentity(context.Background(), merchantID, *p.VPA, 60*time.Second)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, p.PaymentRef, results[0].PaymentRef)
}
