package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/example/storefront/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache on it
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client, 0), mr
}

// ============================================
// Dashboard stats
// ============================================

func TestStats_RoundTrip(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	stats := &model.DashboardStats{
		TotalOrders:    3,
		Revenue:        decimal.RequireFromString("4599.50"),
		OrdersByStatus: map[model.OrderStatus]int{model.OrderProcessing: 2, model.OrderFailed: 1},
	}
	require.NoError(t, cache.SetStats(ctx, stats))

	got, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalOrders)
	assert.True(t, stats.Revenue.Equal(got.Revenue))
	assert.Equal(t, 2, got.OrdersByStatus[model.OrderProcessing])

	assert.Equal(t, DefaultStatsTTL, mr.TTL(statsKey))
}

func TestStats_MissAndExpiry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	_, err := cache.GetStats(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, cache.SetStats(ctx, &model.DashboardStats{TotalOrders: 1}))
	mr.FastForward(61 * time.Second)

	_, err = cache.GetStats(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestStats_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)

	require.NoError(t, mr.Set(statsKey, "{not json"))

	_, err := cache.GetStats(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestStats_Delete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.SetStats(ctx, &model.DashboardStats{}))
	require.NoError(t, cache.DeleteStats(ctx))

	assert.False(t, mr.Exists(statsKey))
}

func TestStats_ServerDown(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.GetStats(context.Background())

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

// ============================================
// Locks
// ============================================

func TestLock_AcquireRelease(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	ok, err := cache.Acquire(ctx, "payment:pay_1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 30*time.Second, mr.TTL(lockPrefix+"payment:pay_1"))

	ok, err = cache.Acquire(ctx, "payment:pay_1", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Release(ctx, "payment:pay_1"))

	ok, err = cache.Acquire(ctx, "payment:pay_1", 30*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLock_ExpiresWithTTL(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	ok, err := cache.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = cache.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLock_ReleaseAfterLapseKeepsNewHolder(t *testing.T) {
	first, mr := setupTestRedis(t)
	second := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
	ctx := context.Background()

	ok, err := first.Acquire(ctx, "payment:pay_1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	// the first holder overruns its TTL and another replica takes over
	mr.FastForward(2 * time.Second)
	ok, err = second.Acquire(ctx, "payment:pay_1", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, first.Release(ctx, "payment:pay_1"))
	assert.True(t, mr.Exists(lockPrefix+"payment:pay_1"), "late release must not drop the new holder's lock")

	ok, err = first.Acquire(ctx, "payment:pay_1", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, second.Release(ctx, "payment:pay_1"))
	assert.False(t, mr.Exists(lockPrefix+"payment:pay_1"))
}

func TestLock_ReleaseWithoutAcquire(t *testing.T) {
	owner, mr := setupTestRedis(t)
	other := NewRedisCache(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
	ctx := context.Background()

	ok, err := owner.Acquire(ctx, "k", 30*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, other.Release(ctx, "k"))
	assert.True(t, mr.Exists(lockPrefix+"k"))
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), mr.Addr())
	require.NoError(t, err)
	client.Close()

	mr.Close()
	_, err = Connect(context.Background(), mr.Addr())
	assert.Error(t, err)
}
