package cart

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = domain.NotFound("product not found")
	ErrItemNotFound    = domain.NotFound("item not in cart")
	ErrInvalidQuantity = domain.Invalid("quantity must be positive")
	ErrSizeRequired    = domain.Invalid("size is required for this product")
	ErrUnknownSize     = domain.Invalid("size not offered for this product")
)

// Service manages the one cart each user owns
type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Get returns the user's cart with current names, unit prices and subtotal.
// A user without a cart gets an empty one.
func (s *Service) Get(ctx context.Context, userID string) (*model.Cart, error) {
	c, err := s.store.GetCart(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &model.Cart{UserID: userID, Items: []model.CartItem{}, Subtotal: decimal.Zero}, nil
	}
	if err != nil {
		return nil, err
	}

	c.Subtotal = decimal.Zero
	for i := range c.Items {
		it := &c.Items[i]
		p, err := s.store.GetProduct(ctx, it.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		it.Name = p.Name
		it.Price = p.UnitPrice(it.Size)
		c.Subtotal = c.Subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return c, nil
}

// AddItem adds quantity to the (product, size) line
func (s *Service) AddItem(ctx context.Context, userID, productID, size string, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	current := 0
	if c, err := s.store.GetCart(ctx, userID); err == nil {
		for _, it := range c.Items {
			if it.ProductID == productID && it.Size == size {
				current = it.Quantity
			}
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.SetQuantity(ctx, userID, productID, size, current+quantity)
}

// SetQuantity sets the line quantity; zero removes the line
func (s *Service) SetQuantity(ctx context.Context, userID, productID, size string, quantity int) (*model.Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID, size)
	}
	if err := s.checkLine(ctx, productID, size, quantity); err != nil {
		return nil, err
	}
	if err := s.store.UpsertCartItem(ctx, userID, model.CartItem{
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	}); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID, size string) (*model.Cart, error) {
	if err := s.store.RemoveCartItem(ctx, userID, productID, size); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.store.DeleteCart(ctx, userID)
}

// checkLine rejects lines the catalog cannot currently satisfy
func (s *Service) checkLine(ctx context.Context, productID, size string, quantity int) error {
	p, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if p.Status != model.ProductActive {
		return ErrProductNotFound
	}

	if len(p.Sizes) > 0 && size == "" {
		return ErrSizeRequired
	}
	if size != "" {
		sz, ok := p.Size(size)
		if !ok {
			return ErrUnknownSize
		}
		if quantity > sz.Stock {
			return &inventory.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name + " (" + size + ")",
				Requested:   quantity,
				Available:   sz.Stock,
			}
		}
	}

	available, err := inventory.AvailableStock(ctx, s.store, p, s.now())
	if err != nil {
		return err
	}
	if quantity > available {
		return &inventory.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   quantity,
			Available:   available,
		}
	}
	return nil
}
