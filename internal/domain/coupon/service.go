package coupon

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
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCoupon   = domain.Rejected("invalid coupon")
	ErrCouponInactive  = fmt.Errorf("%w: coupon is not active", ErrInvalidCoupon)
	ErrCouponUsed      = fmt.Errorf("%w: coupon already used", ErrInvalidCoupon)
	ErrMinimumPurchase = fmt.Errorf("%w: minimum purchase not met", ErrInvalidCoupon)

	ErrCouponNotFound    = domain.NotFound("coupon not found")
	ErrCodeTaken         = domain.Conflict("coupon code already exists")
	ErrInvalidCode       = domain.Invalid("coupon code is required")
	ErrInvalidType       = domain.Invalid("discount type must be percentage or flat")
	ErrInvalidValue      = domain.Invalid("discount value must be positive")
	ErrPercentageTooHigh = domain.Invalid("percentage discount cannot exceed 100")
	ErrInvalidWindow     = domain.Invalid("end date must be after start date")
)

// Result is the outcome of a successful validation
type Result struct {
	Coupon   *model.Coupon   `json:"coupon"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
}

// Input carries admin-editable coupon fields
type Input struct {
	Code          string
	Description   string
	DiscountType  model.DiscountType
	DiscountValue decimal.Decimal
	MinPurchase   decimal.Decimal
	MaxDiscount   decimal.Decimal
	StartDate     time.Time
	EndDate       time.Time
	IsActive      bool
}

type Service struct {
	store store.Store
	now   func() time.Time
}

func NewService(st store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

// Discount computes the rounded discount a coupon gives on total.
// Percentage discounts are capped by MaxDiscount when it is positive;
// no discount ever exceeds the total.
func Discount(c *model.Coupon, total decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch c.DiscountType {
	case model.DiscountPercentage:
		d = total.Mul(c.DiscountValue).Div(decimal.NewFromInt(100))
		if c.MaxDiscount.IsPositive() && d.GreaterThan(c.MaxDiscount) {
			d = c.MaxDiscount
		}
	case model.DiscountFlat:
		d = c.DiscountValue
	default:
		return decimal.Zero
	}
	if d.GreaterThan(total) {
		d = total
	}
	return d.Round(0)
}

// ActiveAt reports whether the coupon can be redeemed at t
func ActiveAt(c *model.Coupon, t time.Time) bool {
	return c.IsActive && !t.Before(c.StartDate) && !t.After(c.EndDate)
}

// Validate checks a coupon code against the cart total for a user. It never writes.
func (s *Service) Validate(ctx context.Context, code string, cartTotal decimal.Decimal, userID string) (*Result, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidCoupon
	}

	c, err := s.store.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCoupon
		}
		return nil, err
	}
	if !ActiveAt(c, s.now()) {
		return nil, ErrCouponInactive
	}

	used, err := s.store.HasCouponUsage(ctx, c.ID, userID)
	if err != nil {
		return nil, err
	}
	if used {
		return nil, ErrCouponUsed
	}

	if cartTotal.LessThan(c.MinPurchase) {
		return nil, fmt.Errorf("%w: spend at least %s", ErrMinimumPurchase, c.MinPurchase.StringFixed(2))
	}

	discount := Discount(c, cartTotal)
	return &Result{Coupon: c, Discount: discount, Total: cartTotal.Sub(discount)}, nil
}

// ==========================================
// Admin
// ==========================================

func (s *Service) List(ctx context.Context) ([]model.Coupon, error) {
	return s.store.ListCoupons(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*model.Coupon, error) {
	c, err := s.store.GetCoupon(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCouponNotFound
	}
	return c, err
}

func (in *Input) normalize() error {
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if in.Code == "" {
		return ErrInvalidCode
	}
	switch in.DiscountType {
	case model.DiscountPercentage:
		if in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
			return ErrPercentageTooHigh
		}
	case model.DiscountFlat:
	default:
		return ErrInvalidType
	}
	if !in.DiscountValue.IsPositive() {
		return ErrInvalidValue
	}
	if in.MinPurchase.IsNegative() || in.MaxDiscount.IsNegative() {
		return ErrInvalidValue
	}
	if !in.EndDate.After(in.StartDate) {
		return ErrInvalidWindow
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Input) (*model.Coupon, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c := &model.Coupon{
		ID:            uuid.New().String(),
		Code:          in.Code,
		Description:   in.Description,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		MinPurchase:   in.MinPurchase,
		MaxDiscount:   in.MaxDiscount,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		IsActive:      in.IsActive,
		CreatedAt:     s.now(),
	}
	if err := s.store.CreateCoupon(ctx, c); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrCodeTaken
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Coupon, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Code = in.Code
	c.Description = in.Description
	c.DiscountType = in.DiscountType
	c.DiscountValue = in.DiscountValue
	c.MinPurchase = in.MinPurchase
	c.MaxDiscount = in.MaxDiscount
	c.StartDate = in.StartDate
	c.EndDate = in.EndDate
	c.IsActive = in.IsActive

	if err := s.store.UpdateCoupon(ctx, c); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrCodeTaken
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteCoupon(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCouponNotFound
	}
	return err
}
