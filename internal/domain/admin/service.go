// Package admin serves the back-office dashboard and notification feed.
package admin

import (
	"context"
	"errors"
	"log"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/cache"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultLowStockThreshold = 5
	defaultNotificationLimit = 50
)

var ErrNotificationNotFound = domain.NotFound("notification not found")

type Service struct {
	store    store.Store
	cache    cache.StatsCache
	sfg      singleflight.Group // coalesces concurrent dashboard recomputes
	lowStock int
}

// NewService creates the admin service. statsCache may be nil.
func NewService(st store.Store, statsCache cache.StatsCache, lowStockThreshold int) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Service{store: st, cache: statsCache, lowStock: lowStockThreshold}
}

// Dashboard returns the dashboard figures, served from cache while fresh.
// The shared recompute outlives any one caller: a caller that gives up gets
// its own ctx error while the others still receive the figures.
func (s *Service) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	ch := s.sfg.DoChan("dashboard", func() (interface{}, error) {
		return s.computeDashboard(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*model.DashboardStats), nil
	}
}

func (s *Service) computeDashboard(ctx context.Context) (*model.DashboardStats, error) {
	if s.cache != nil {
		stats, err := s.cache.GetStats(ctx)
		if err == nil {
			return stats, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("[Admin] Stats cache read failed: %v", err)
		}
	}

	stats, err := s.store.DashboardStats(ctx, s.lowStock)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, stats); err != nil {
			log.Printf("[Admin] Stats cache write failed: %v", err)
		}
	}
	return stats, nil
}

// RefreshDashboard drops cached figures so the next read recomputes them
func (s *Service) RefreshDashboard(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DeleteStats(ctx)
}

func (s *Service) Notifications(ctx context.Context, unreadOnly bool, limit int) ([]model.AdminNotification, error) {
	if limit <= 0 || limit > domain.MaxPageSize {
		limit = defaultNotificationLimit
	}
	return s.store.ListNotifications(ctx, unreadOnly, limit)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	err := s.store.MarkNotificationRead(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *Service) MarkAllRead(ctx context.Context) error {
	return s.store.MarkAllNotificationsRead(ctx)
}
