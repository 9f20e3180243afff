// Package content manages storefront banners, announcements and feature videos.
package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

var (
	ErrBannerNotFound       = domain.NotFound("banner not found")
	ErrAnnouncementNotFound = domain.NotFound("announcement not found")
	ErrVideoNotFound        = domain.NotFound("feature video not found")
	ErrTitleRequired        = domain.Invalid("title is required")
	ErrImageRequired        = domain.Invalid("image url is required")
	ErrMessageRequired      = domain.Invalid("message is required")
	ErrVideoURLRequired     = domain.Invalid("video url is required")
)

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

func notFound(err, kind error) error {
	if errors.Is(err, store.ErrNotFound) {
		return kind
	}
	return err
}

// ==========================================
// Banners
// ==========================================

func (s *Service) Banners(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	return s.store.ListBanners(ctx, activeOnly)
}

// SaveBanner creates a banner, or replaces it when b.ID is set
func (s *Service) SaveBanner(ctx context.Context, b model.Banner) (*model.Banner, error) {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(b.ImageURL) == "" {
		return nil, ErrImageRequired
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
		b.CreatedAt = s.now()
	} else {
		existing, err := s.store.GetBanner(ctx, b.ID)
		if err != nil {
			return nil, notFound(err, ErrBannerNotFound)
		}
		b.CreatedAt = existing.CreatedAt
	}
	if err := s.store.SaveBanner(ctx, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Service) DeleteBanner(ctx context.Context, id string) error {
	return notFound(s.store.DeleteBanner(ctx, id), ErrBannerNotFound)
}

// ==========================================
// Announcements
// ==========================================

func (s *Service) Announcements(ctx context.Context, activeOnly bool) ([]model.Announcement, error) {
	return s.store.ListAnnouncements(ctx, activeOnly)
}

func (s *Service) SaveAnnouncement(ctx context.Context, a model.Announcement) (*model.Announcement, error) {
	a.Message = strings.TrimSpace(a.Message)
	if a.Message == "" {
		return nil, ErrMessageRequired
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
		a.CreatedAt = s.now()
	} else {
		existing, err := s.store.GetAnnouncement(ctx, a.ID)
		if err != nil {
			return nil, notFound(err, ErrAnnouncementNotFound)
		}
		a.CreatedAt = existing.CreatedAt
	}
	if err := s.store.SaveAnnouncement(ctx, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Service) DeleteAnnouncement(ctx context.Context, id string) error {
	return notFound(s.store.DeleteAnnouncement(ctx, id), ErrAnnouncementNotFound)
}

// ==========================================
// Feature videos
// ==========================================

func (s *Service) FeatureVideos(ctx context.Context, activeOnly bool) ([]model.FeatureVideo, error) {
	return s.store.ListFeatureVideos(ctx, activeOnly)
}

func (s *Service) SaveFeatureVideo(ctx context.Context, v model.FeatureVideo) (*model.FeatureVideo, error) {
	v.Title = strings.TrimSpace(v.Title)
	if v.Title == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(v.VideoURL) == "" {
		return nil, ErrVideoURLRequired
	}
	if v.ProductID != "" {
		if _, err := s.store.GetProduct(ctx, v.ProductID); err != nil {
			return nil, notFound(err, domain.NotFound("linked product not found"))
		}
	}
	if v.ID == "" {
		v.ID = uuid.New().String()
		v.CreatedAt = s.now()
	} else {
		existing, err := s.store.GetFeatureVideo(ctx, v.ID)
		if err != nil {
			return nil, notFound(err, ErrVideoNotFound)
		}
		v.CreatedAt = existing.CreatedAt
	}
	if err := s.store.SaveFeatureVideo(ctx, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Service) DeleteFeatureVideo(ctx context.Context, id string) error {
	return notFound(s.store.DeleteFeatureVideo(ctx, id), ErrVideoNotFound)
}
