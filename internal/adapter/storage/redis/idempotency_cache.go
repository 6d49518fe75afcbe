package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const idempotencyKeyTTL = 24 * time.Hour

// IdempotencyCache caches idempotency-key -> order_ref lookups in front of
// Postgres, so a burst of retried requests for the same key during a slow
// first attempt don't all queue up on the database. Postgres's unique
// constraint on (merchant_id, idempotency_key) remains the source of truth;
// a cache miss always falls back to it.
type IdempotencyCache struct {
	client *goredis.Client
	prefix string
}

// NewIdempotencyCache creates a new Redis-backed idempotency cache.
func NewIdempotencyCache(client *goredis.Client) *IdempotencyCache {
	return &IdempotencyCache{client: client, prefix: "order_idem:"}
}

// GetOrderRef returns the order_ref previously cached for (merchantID, key),
// or ok=false on a cache miss.
func (c *IdempotencyCache) GetOrderRef(ctx context.Context, merchantID, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.cacheKey(merchantID, key)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis idempotency get: %w", err)
	}
	return val, true, nil
}

// SetOrderRef remembers orderRef for (merchantID, key) for idempotencyKeyTTL.
func (c *IdempotencyCache) SetOrderRef(ctx context.Context, merchantID, key, orderRef string) error {
	if err := c.client.Set(ctx, c.cacheKey(merchantID, key), orderRef, idempotencyKeyTTL).Err(); err != nil {
		return fmt.Errorf("redis idempotency set: %w", err)
	}
	return nil
}

func (c *IdempotencyCache) cacheKey(merchantID, key string) string {
	return c.prefix + merchantID + ":" + key
}
