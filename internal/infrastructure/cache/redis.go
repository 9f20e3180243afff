package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultStatsTTL = 60 * time.Second
	statsKey        = "admin:dashboard:stats"
	lockPrefix      = "lock:"
)

// releaseLock deletes the lock only while it still carries our token
var releaseLock = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Connect opens a client and checks the server answers
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

func NewRedisCache(client *redis.Client, statsTTL time.Duration) *RedisCache {
	if statsTTL <= 0 {
		statsTTL = DefaultStatsTTL
	}
	return &RedisCache{client: client, statsTTL: statsTTL}
}

type RedisCache struct {
	client   *redis.Client
	statsTTL time.Duration
	// lock key -> token written by our Acquire
	tokens sync.Map
}

func (r *RedisCache) GetStats(ctx context.Context) (*model.DashboardStats, error) {
	data, err := r.client.Get(ctx, statsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var stats model.DashboardStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats failed: %w", err)
	}
	return &stats, nil
}

func (r *RedisCache) SetStats(ctx context.Context, stats *model.DashboardStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats failed: %w", err)
	}
	if err := r.client.Set(ctx, statsKey, data, r.statsTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) DeleteStats(ctx context.Context) error {
	if err := r.client.Del(ctx, statsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Acquire takes a lock with SET NX under a fresh token. It reports false when
// someone else holds it.
func (r *RedisCache) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, lockPrefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	if ok {
		r.tokens.Store(key, token)
	}
	return ok, nil
}

// Release drops a lock this cache acquired. A lock that lapsed and was taken
// by another holder is left alone.
func (r *RedisCache) Release(ctx context.Context, key string) error {
	token, ok := r.tokens.LoadAndDelete(key)
	if !ok {
		return nil
	}
	if err := releaseLock.Run(ctx, r.client, []string{lockPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("redis release failed: %w", err)
	}
	return nil
}
