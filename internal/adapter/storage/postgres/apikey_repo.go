package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payflow/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ApiKeyRepo implements ports.ApiKeyRepository.
type ApiKeyRepo struct {
	pool Pool
}

// NewApiKeyRepo creates a new ApiKeyRepo.
func NewApiKeyRepo(pool Pool) *ApiKeyRepo {
	return &ApiKeyRepo{pool: pool}
}

func (r *ApiKeyRepo) Create(ctx context.Context, k *domain.ApiKey) error {
	query := `INSERT INTO api_keys (key_id, key_secret_hash, merchant_id, label, active, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, k.KeyID, k.KeySecretHash, k.MerchantID, k.Label, k.Active, k.CreatedAt, k.LastUsedAt)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	return nil
}

func (r *ApiKeyRepo) GetByKeyID(ctx context.Context, keyID string) (*domain.ApiKey, error) {
	query := `SELECT key_id, key_secret_hash, merchant_id, label, active, created_at, last_used_at
		FROM api_keys WHERE key_id = $1`
	k := &domain.ApiKey{}
	err := r.pool.QueryRow(ctx, query, keyID).Scan(
		&k.KeyID, &k.KeySecretHash, &k.MerchantID, &k.Label, &k.Active, &k.CreatedAt, &k.LastUsedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get api key by key_id: %w", err)
	}
	return k, nil
}

func (r *ApiKeyRepo) Revoke(ctx context.Context, keyID string) error {
	query := `UPDATE api_keys SET active = false WHERE key_id = $1`
	tag, err := r.pool.Exec(ctx, query, keyID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("api key not found: %s", keyID)
	}
	return nil
}

func (r *ApiKeyRepo) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	query := `UPDATE api_keys SET last_used_at = $1 WHERE key_id = $2`
	_, err := r.pool.Exec(ctx, query, at, keyID)
	if err != nil {
		return fmt.Errorf("touch api key last_used_at: %w", err)
	}
	return nil
}
