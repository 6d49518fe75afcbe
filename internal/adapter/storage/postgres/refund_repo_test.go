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

func newTestRefund() *domain.Refund {
	return &domain.Refund{
		ID:        uuid.New(),
		RefundRef: "rfnd_abc123",
		PaymentID: uuid.New(),
		Amount:    50000,
		Reason:    "customer request",
		Status:    domain.RefundProcessed,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestRefundRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRefundRepo(mock)
	rf := newTestRefund()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO refunds").
		WithArgs(rf.ID, rf.RefundRef, rf.PaymentID, rf.Amount, rf.Reason, rf.Notes, rf.Status, rf.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, rf)
	assert.NoError(t, err)
}

func TestRefundRepo_SumProcessedByPayment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRefundRepo(mock)
	paymentID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COALESCE.SUM.amount.+FROM refunds").
		WithArgs(paymentID, domain.RefundProcessed).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(25000)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	sum, err := repo.SumProcessedByPayment(context.Background(), tx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, int64(25000), sum)
}
