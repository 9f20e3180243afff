package admin

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/example/storefront/internal/infrastructure/cache"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
)

// countingStore counts dashboard recomputes and can block them
type countingStore struct {
	*store.MemoryStore
	calls   atomic.Int32
	release chan struct{}
}

func (c *countingStore) DashboardStats(ctx context.Context, lowStockThreshold int) (*model.DashboardStats, error) {
	c.calls.Add(1)
	if c.release != nil {
		<-c.release
	}
	// a database driver aborts the query once ctx is done
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.MemoryStore.DashboardStats(ctx, lowStockThreshold)
}

type memoryStatsCache struct {
	mu      sync.Mutex
	stats   *model.DashboardStats
	readErr error
}

func (m *memoryStatsCache) GetStats(ctx context.Context) (*model.DashboardStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	if m.stats == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.stats, nil
}

func (m *memoryStatsCache) SetStats(ctx context.Context, stats *model.DashboardStats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = stats
	return nil
}

func (m *memoryStatsCache) DeleteStats(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = nil
	return nil
}
