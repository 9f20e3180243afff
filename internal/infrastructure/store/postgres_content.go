package store

import (
	"context"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

func activeClause(activeOnly bool) string {
	if activeOnly {
		return " WHERE is_active"
	}
	return ""
}

// ==========================================
// Banners
// ==========================================

func (s *PostgresStore) ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, title, image_url, link, sort_order, is_active, created_at FROM banners`+
			activeClause(activeOnly)+` ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Banner{}
	for rows.Next() {
		var b model.Banner
		if err := rows.Scan(&b.ID, &b.Title, &b.ImageURL, &b.Link, &b.SortOrder, &b.IsActive, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetBanner(ctx context.Context, id string) (*model.Banner, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var b model.Banner
	err := s.q.QueryRowContext(ctx,
		`SELECT id, title, image_url, link, sort_order, is_active, created_at FROM banners WHERE id = $1`, id,
	).Scan(&b.ID, &b.Title, &b.ImageURL, &b.Link, &b.SortOrder, &b.IsActive, &b.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (s *PostgresStore) SaveBanner(ctx context.Context, b *model.Banner) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO banners (id, title, image_url, link, sort_order, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, image_url = EXCLUDED.image_url,
		        link = EXCLUDED.link, sort_order = EXCLUDED.sort_order, is_active = EXCLUDED.is_active`,
		b.ID, b.Title, b.ImageURL, b.Link, b.SortOrder, b.IsActive, b.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) DeleteBanner(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return expectRows(s.q.ExecContext(ctx, `DELETE FROM banners WHERE id = $1`, id))
}

// ==========================================
// Announcements
// ==========================================

func (s *PostgresStore) ListAnnouncements(ctx context.Context, activeOnly bool) ([]model.Announcement, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, message, link, sort_order, is_active, created_at FROM announcements`+
			activeClause(activeOnly)+` ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Announcement{}
	for rows.Next() {
		var a model.Announcement
		if err := rows.Scan(&a.ID, &a.Message, &a.Link, &a.SortOrder, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetAnnouncement(ctx context.Context, id string) (*model.Announcement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var a model.Announcement
	err := s.q.QueryRowContext(ctx,
		`SELECT id, message, link, sort_order, is_active, created_at FROM announcements WHERE id = $1`, id,
	).Scan(&a.ID, &a.Message, &a.Link, &a.SortOrder, &a.IsActive, &a.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (s *PostgresStore) SaveAnnouncement(ctx context.Context, a *model.Announcement) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO announcements (id, message, link, sort_order, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET message = EXCLUDED.message, link = EXCLUDED.link,
		        sort_order = EXCLUDED.sort_order, is_active = EXCLUDED.is_active`,
		a.ID, a.Message, a.Link, a.SortOrder, a.IsActive, a.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) DeleteAnnouncement(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return expectRows(s.q.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id))
}

// ==========================================
// Feature videos
// ==========================================

func (s *PostgresStore) ListFeatureVideos(ctx context.Context, activeOnly bool) ([]model.FeatureVideo, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, title, video_url, thumbnail_url, COALESCE(product_id::text, ''), sort_order, is_active, created_at
		   FROM feature_videos`+activeClause(activeOnly)+` ORDER BY sort_order, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.FeatureVideo{}
	for rows.Next() {
		var v model.FeatureVideo
		if err := rows.Scan(&v.ID, &v.Title, &v.VideoURL, &v.ThumbnailURL, &v.ProductID, &v.SortOrder, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetFeatureVideo(ctx context.Context, id string) (*model.FeatureVideo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var v model.FeatureVideo
	err := s.q.QueryRowContext(ctx,
		`SELECT id, title, video_url, thumbnail_url, COALESCE(product_id::text, ''), sort_order, is_active, created_at
		   FROM feature_videos WHERE id = $1`, id,
	).Scan(&v.ID, &v.Title, &v.VideoURL, &v.ThumbnailURL, &v.ProductID, &v.SortOrder, &v.IsActive, &v.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &v, nil
}

func (s *PostgresStore) SaveFeatureVideo(ctx context.Context, v *model.FeatureVideo) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO feature_videos (id, title, video_url, thumbnail_url, product_id, sort_order, is_active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title, video_url = EXCLUDED.video_url,
		        thumbnail_url = EXCLUDED.thumbnail_url, product_id = EXCLUDED.product_id,
		        sort_order = EXCLUDED.sort_order, is_active = EXCLUDED.is_active`,
		v.ID, v.Title, v.VideoURL, v.ThumbnailURL, nullString(v.ProductID), v.SortOrder, v.IsActive, v.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) DeleteFeatureVideo(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return expectRows(s.q.ExecContext(ctx, `DELETE FROM feature_videos WHERE id = $1`, id))
}
