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

func strPtr(s string) *string { return &s }

func newTestMerchant() *domain.Merchant {
	return &domain.Merchant{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		BusinessName:  "Test Shop",
		BusinessEmail: "billing@testshop.example",
		Website:       strPtr("https://testshop.example"),
		WebhookURL:    strPtr("https://testshop.example/webhooks"),
		WebhookSecret: "deadbeefcafef00d",
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func merchantColumns() []string {
	return []string{"id", "user_id", "business_name", "business_email", "website", "webhook_url", "webhook_secret", "created_at"}
}

func merchantRow(m *domain.Merchant) *pgxmock.Rows {
	return pgxmock.NewRows(merchantColumns()).AddRow(
		m.ID, m.UserID, m.BusinessName, m.BusinessEmail, m.Website, m.WebhookURL, m.WebhookSecret, m.CreatedAt,
	)
}

func TestMerchantRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	m := newTestMerchant()

	mock.ExpectExec("INSERT INTO merchants").
		WithArgs(m.ID, m.UserID, m.BusinessName, m.BusinessEmail, m.Website, m.WebhookURL, m.WebhookSecret, m.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), m)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMerchantRepo_GetByUserID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	userID := uuid.New()
	mock.ExpectQuery("SELECT .+ FROM merchants WHERE user_id").
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows(merchantColumns()))

	result, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestMerchantRepo_UpdateWebhookURL(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMerchantRepo(mock)
	m := newTestMerchant()
	url := "https://testshop.example/new-webhook"

	mock.ExpectExec("UPDATE merchants SET webhook_url").
		WithArgs(&url, m.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateWebhookURL(context.Background(), m.ID, &url)
	assert.NoError(t, err)
}
