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

func newTestApiKey() *domain.ApiKey {
	return &domain.ApiKey{
		KeyID:         "pf_key_abc123",
		KeySecretHash: "$2a$10$abcdefghijklmnopqrstuv",
		MerchantID:    uuid.New(),
		Label:         "production",
		Active:        true,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func apiKeyColumns() []string {
	return []string{"key_id", "key_secret_hash", "merchant_id", "label", "active", "created_at", "last_used_at"}
}

func apiKeyRow(k *domain.ApiKey) *pgxmock.Rows {
	return pgxmock.NewRows(apiKeyColumns()).AddRow(k.KeyID, k.KeySecretHash, k.MerchantID, k.Label, k.Active, k.CreatedAt, k.LastUsedAt)
}

func TestApiKeyRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewApiKeyRepo(mock)
	k := newTestApiKey()

	mock.ExpectExec("INSERT INTO api_keys").
		WithArgs(k.KeyID, k.KeySecretHash, k.MerchantID, k.Label, k.Active, k.CreatedAt, k.LastUsedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), k)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApiKeyRepo_GetByKeyID_Inactive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewApiKeyRepo(mock)
	k := newTestApiKey()
	k.Active = false

	mock.ExpectQuery("SELECT .+ FROM api_keys WHERE key_id").
		WithArgs(k.KeyID).
		WillReturnRows(apiKeyRow(k))

	result, err := repo.GetByKeyID(context.Background(), k.KeyID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Active)
}

func TestApiKeyRepo_Revoke_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewApiKeyRepo(mock)
	mock.ExpectExec("UPDATE api_keys SET active").
		WithArgs("pf_key_missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Revoke(context.Background(), "pf_key_missing")
	assert.Error(t, err)
}
