package cache

import (
	"context"
	"errors"

	"github.com/example/storefront/internal/model"
)

var ErrCacheMiss = errors.New("cache miss")

// StatsCache holds the computed admin dashboard figures
type StatsCache interface {
	GetStats(ctx context.Context) (*model.DashboardStats, error)
	SetStats(ctx context.Context, stats *model.DashboardStats) error
	DeleteStats(ctx context.Context) error
}
