package redis_test

import (
	"context"
	"testing"

	"payflow/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyCache_SetAndGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewIdempotencyCache(client)
	ctx := context.Background()

	_, ok, err := cache.GetOrderRef(ctx, "merchant1", "key1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SetOrderRef(ctx, "merchant1", "key1", "order_abc123"))

	ref, ok, err := cache.GetOrderRef(ctx, "merchant1", "key1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "order_abc123", ref)
}

func TestIdempotencyCache_DistinctMerchantsDoNotCollide(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := redis.NewIdempotencyCache(client)
	ctx := context.Background()

	require.NoError(t, cache.SetOrderRef(ctx, "merchant1", "key1", "order_one"))
	require.NoError(t, cache.SetOrderRef(ctx, "merchant2", "key1", "order_two"))

	ref1, _, err := cache.GetOrderRef(ctx, "merchant1", "key1")
	require.NoError(t, err)
	ref2, _, err := cache.GetOrderRef(ctx, "merchant2", "key1")
	require.NoError(t, err)

	assert.Equal(t, "order_one", ref1)
	assert.Equal(t, "order_two", ref2)
}
