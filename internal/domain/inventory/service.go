package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

// DefaultReservationTTL is how long reserved stock is held
const DefaultReservationTTL = 10 * time.Minute

var (
	ErrInsufficientStock   = domain.Rejected("insufficient stock")
	ErrInvalidQuantity     = domain.Invalid("quantity must be positive")
	ErrNoLines             = domain.Invalid("nothing to reserve")
	ErrProductNotFound     = domain.NotFound("product not found")
	ErrReservationNotFound = domain.NotFound("reservation not found")
	ErrNotOwner            = domain.Forbidden("reservation belongs to another user")
	ErrReservationClosed   = domain.Rejected("reservation is no longer pending")
)

// InsufficientStockError names the product that could not be reserved
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Line is a quantity of one product to reserve
type Line struct {
	ProductID string
	Quantity  int
}

// Service manages time-boxed stock reservations
type Service struct {
	store store.Store
	ttl   time.Duration
	now   func() time.Time
}

func NewService(st store.Store, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultReservationTTL
	}
	return &Service{store: st, ttl: ttl, now: time.Now}
}

// TTL returns the reservation hold duration
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// AvailableStock is stock minus live pending reservations, never below zero
func AvailableStock(ctx context.Context, st store.ReservationStore, p *model.Product, now time.Time) (int, error) {
	reserved, err := st.ReservedQuantity(ctx, p.ID, now)
	if err != nil {
		return 0, err
	}
	return max(p.Stock-reserved, 0), nil
}

// HeldByOthers sums the product's live pending reservations that belong to
// users other than userID
func HeldByOthers(ctx context.Context, st store.ReservationStore, productID, userID string, now time.Time) (int, error) {
	held, err := st.ReservedQuantity(ctx, productID, now)
	if err != nil {
		return 0, err
	}
	own, err := st.ListUserReservations(ctx, userID)
	if err != nil {
		return 0, err
	}
	for _, r := range own {
		if r.ProductID == productID && r.Active(now) {
			held -= r.Quantity
		}
	}
	return held, nil
}

// Available reads availability for one product. Lapsed reservations are
// excluded by the query predicate, so no write is needed here.
func (s *Service) Available(ctx context.Context, productID string) (int, error) {
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}
	return AvailableStock(ctx, s.store, p, s.now())
}

// Reserve holds quantity units of a product for the user
func (s *Service) Reserve(ctx context.Context, userID, productID string, quantity int) (*model.Reservation, error) {
	reservations, err := s.ReserveAll(ctx, userID, []Line{{ProductID: productID, Quantity: quantity}})
	if err != nil {
		return nil, err
	}
	return &reservations[0], nil
}

// ReserveAll reserves every line in one transaction with a shared expiry.
// Either all lines are reserved or none is.
func (s *Service) ReserveAll(ctx context.Context, userID string, lines []Line) ([]model.Reservation, error) {
	return s.reserve(ctx, userID, lines, false)
}

// ReserveCheckout is ReserveAll for a checkout attempt. The user's earlier
// pending reservations on the same products are released first, in the same
// transaction, so a retried checkout does not hold stock twice.
func (s *Service) ReserveCheckout(ctx context.Context, userID string, lines []Line) ([]model.Reservation, error) {
	return s.reserve(ctx, userID, lines, true)
}

func (s *Service) reserve(ctx context.Context, userID string, lines []Line, supersede bool) ([]model.Reservation, error) {
	if len(lines) == 0 {
		return nil, ErrNoLines
	}

	wanted := make(map[string]int)
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		wanted[l.ProductID] += l.Quantity
	}

	// Lock rows in a stable order so concurrent checkouts cannot deadlock.
	productIDs := make([]string, 0, len(wanted))
	for id := range wanted {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	now := s.now()
	expiresAt := now.Add(s.ttl)
	var reservations []model.Reservation

	err := s.store.InTx(ctx, func(tx store.Store) error {
		for _, id := range productIDs {
			p, err := tx.LockProduct(ctx, id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, id)
				}
				return err
			}
			if _, err := tx.ExpireReservations(ctx, id, now); err != nil {
				return err
			}
			if supersede {
				if err := releaseOwn(ctx, tx, userID, id); err != nil {
					return err
				}
			}
			available, err := AvailableStock(ctx, tx, p, now)
			if err != nil {
				return err
			}
			if wanted[id] > available {
				return &InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   wanted[id],
					Available:   available,
				}
			}
		}

		for _, id := range productIDs {
			r := model.Reservation{
				ID:        uuid.New().String(),
				ProductID: id,
				UserID:    userID,
				Quantity:  wanted[id],
				Status:    model.ReservationPending,
				ExpiresAt: expiresAt,
				CreatedAt: now,
			}
			if err := tx.CreateReservation(ctx, &r); err != nil {
				return err
			}
			reservations = append(reservations, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

func releaseOwn(ctx context.Context, tx store.Store, userID, productID string) error {
	own, err := tx.ListUserReservations(ctx, userID)
	if err != nil {
		return err
	}
	for _, r := range own {
		if r.ProductID == productID && r.Status == model.ReservationPending {
			if err := tx.UpdateReservationStatus(ctx, r.ID, model.ReservationExpired); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cancel releases a pending reservation owned by the user
func (s *Service) Cancel(ctx context.Context, userID, reservationID string) error {
	return s.store.InTx(ctx, func(tx store.Store) error {
		r, err := tx.GetReservation(ctx, reservationID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if r.UserID != userID {
			return ErrNotOwner
		}
		if r.Status != model.ReservationPending {
			return ErrReservationClosed
		}
		return tx.UpdateReservationStatus(ctx, r.ID, model.ReservationExpired)
	})
}

// ListForUser returns the user's reservations, reporting lapsed pending ones as expired
func (s *Service) ListForUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	reservations, err := s.store.ListUserReservations(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range reservations {
		if reservations[i].Status == model.ReservationPending && !reservations[i].ExpiresAt.After(now) {
			reservations[i].Status = model.ReservationExpired
		}
	}
	return reservations, nil
}

// ExpireStale marks every lapsed pending reservation expired
func (s *Service) ExpireStale(ctx context.Context) (int, error) {
	return s.store.ExpireReservations(ctx, "", s.now())
}
