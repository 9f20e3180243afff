package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

const maxCommentLength = 2000

var (
	ErrReviewNotFound  = domain.NotFound("review not found")
	ErrProductNotFound = domain.NotFound("product not found")
	ErrInvalidRating   = domain.Invalid("rating must be between 1 and 5")
	ErrCommentTooLong  = domain.Invalid("comment is too long")
	ErrAlreadyReviewed = domain.Conflict("you have already reviewed this product")
)

// Summary is one page of a product's reviews plus the overall average
type Summary struct {
	domain.Page[model.Review]
	Average float64 `json:"average_rating"`
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Create adds the user's review of a product. Each user reviews a product once.
func (s *Service) Create(ctx context.Context, userID, productID string, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if len(comment) > maxCommentLength {
		return nil, ErrCommentTooLong
	}

	p, err := s.store.GetProduct(ctx, productID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && p.Status != model.ProductActive) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	r := &model.Review{
		ID:        uuid.New().String(),
		ProductID: p.ID,
		UserID:    u.ID,
		UserName:  u.Name,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: s.now(),
	}

	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.CreateReview(ctx, r); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrAlreadyReviewed
			}
			return err
		}
		return tx.CreateNotification(ctx, &model.AdminNotification{
			ID:        uuid.New().String(),
			Type:      model.NotificationNewReview,
			Title:     "New review",
			Message:   fmt.Sprintf("%s rated %s %d/5", u.Name, p.Name, rating),
			RefID:     r.ID,
			CreatedAt: r.CreatedAt,
		})
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListForProduct pages a product's reviews, newest first, with the average rating
func (s *Service) ListForProduct(ctx context.Context, productID string, page, limit int) (*Summary, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	all, _, err := s.store.ListReviews(ctx, productID, 0, 0)
	if err != nil {
		return nil, err
	}
	sum := 0
	for _, r := range all {
		sum += r.Rating
	}
	avg := 0.0
	if len(all) > 0 {
		avg = float64(sum) / float64(len(all))
	}

	page, limit, offset := domain.Paging(page, limit)
	end := min(offset+limit, len(all))
	items := []model.Review{}
	if offset < len(all) {
		items = all[offset:end]
	}
	return &Summary{Page: domain.NewPage(items, len(all), page, limit), Average: avg}, nil
}

// AdminList pages through every review
func (s *Service) AdminList(ctx context.Context, page, limit int) (domain.Page[model.Review], error) {
	page, limit, offset := domain.Paging(page, limit)
	items, total, err := s.store.ListReviews(ctx, "", limit, offset)
	if err != nil {
		return domain.Page[model.Review]{}, err
	}
	return domain.NewPage(items, total, page, limit), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteReview(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrReviewNotFound
	}
	return err
}
