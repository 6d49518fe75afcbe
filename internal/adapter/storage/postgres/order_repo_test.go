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

func newTestOrder() *domain.Order {
	key := "idem-key-1"
	notes := "order notes"
	return &domain.Order{
		ID:             uuid.New(),
		OrderRef:       "order_abc123",
		MerchantID:     uuid.New(),
		Amount:         150000,
		Currency:       "INR",
		Receipt:        "receipt-1",
		Notes:          &notes,
		Status:         domain.OrderCreated,
		AutoCapture:    true,
		IdempotencyKey: &key,
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
	}
}

func orderColumnNames() []string {
	return []string{"id", "order_ref", "merchant_id", "amount", "currency", "receipt", "notes", "status", "auto_capture", "idempotency_key", "created_at"}
}

func orderRow(o *domain.Order) *pgxmock.Rows {
	return pgxmock.NewRows(orderColumnNames()).AddRow(
		o.ID, o.OrderRef, o.MerchantID, o.Amount, o.Currency, o.Receipt, o.Notes,
		o.Status, o.AutoCapture, o.IdempotencyKey, o.CreatedAt,
	)
}

func TestOrderRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").
		WithArgs(o.ID, o.OrderRef, o.MerchantID, o.Amount, o.Currency, o.Receipt, o.Notes,
			o.Status, o.AutoCapture, o.IdempotencyKey, o.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, o)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_GetByIdempotencyKey_ReplaysExisting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()

	mock.ExpectQuery("SELECT .+ FROM orders WHERE merchant_id = .+ AND idempotency_key").
		WithArgs(o.MerchantID, *o.IdempotencyKey).
		WillReturnRows(orderRow(o))

	result, err := repo.GetByIdempotencyKey(context.Background(), o.MerchantID, *o.IdempotencyKey)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, o.OrderRef, result.OrderRef)
}

func TestOrderRepo_GetByRefForUpdate_Locks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	o := newTestOrder()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM orders WHERE order_ref = .+ FOR UPDATE").
		WithArgs(o.OrderRef).
		WillReturnRows(orderRow(o))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByRefForUpdate(context.Background(), tx, o.OrderRef)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, o.ID, result.ID)
}

func TestOrderRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOrderRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs(domain.OrderPaid, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, id, domain.OrderPaid)
	assert.Error(t, err)
}
