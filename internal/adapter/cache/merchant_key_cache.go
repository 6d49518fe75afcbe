// Package cache holds the in-process caches sitting in front of hot repository
// lookups. No LRU/TTL library is pulled in for this: the cache is small
// (one entry per active API key) and short-lived, so sync.Map plus a
// wall-clock expiry check is simpler than wiring a dependency for it.
package cache

import (
	"context"
	"sync"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
)

type entry struct {
	key       *domain.ApiKey
	expiresAt time.Time
}

// MerchantKeyCache decorates an ApiKeyRepository with a short TTL cache keyed
// on key_id, so Basic-auth middleware does not round-trip to Postgres on
// every request. It still satisfies ports.ApiKeyRepository, and doubles as
// the MerchantKeyInvalidator the key store service invalidates through on
// revoke.
type MerchantKeyCache struct {
	next ports.ApiKeyRepository
	ttl  time.Duration
	m    sync.Map // key_id -> entry
}

// NewMerchantKeyCache wraps next with a cache whose entries expire after ttl.
func NewMerchantKeyCache(next ports.ApiKeyRepository, ttl time.Duration) *MerchantKeyCache {
	return &MerchantKeyCache{next: next, ttl: ttl}
}

func (c *MerchantKeyCache) Create(ctx context.Context, k *domain.ApiKey) error {
	return c.next.Create(ctx, k)
}

func (c *MerchantKeyCache) GetByKeyID(ctx context.Context, keyID string) (*domain.ApiKey, error) {
	if v, ok := c.m.Load(keyID); ok {
		e := v.(entry)
		if time.Now().Before(e.expiresAt) {
			return e.key, nil
		}
		c.m.Delete(keyID)
	}

	key, err := c.next.GetByKeyID(ctx, keyID)
	if err != nil {
		return nil, err
	}
	if key != nil {
		c.m.Store(keyID, entry{key: key, expiresAt: time.Now().Add(c.ttl)})
	}
	return key, nil
}

func (c *MerchantKeyCache) Revoke(ctx context.Context, keyID string) error {
	if err := c.next.Revoke(ctx, keyID); err != nil {
		return err
	}
	c.Invalidate(keyID)
	return nil
}

func (c *MerchantKeyCache) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	return c.next.TouchLastUsed(ctx, keyID, at)
}

// Invalidate evicts keyID, satisfying service.MerchantKeyInvalidator.
func (c *MerchantKeyCache) Invalidate(keyID string) {
	c.m.Delete(keyID)
}
