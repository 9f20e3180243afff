package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/domain/coupon"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency = "INR"
	paymentLockTTL  = 30 * time.Second
)

var (
	ErrOrderNotFound      = domain.NotFound("order not found")
	ErrEmptyCart          = domain.Rejected("cart is empty")
	ErrProductUnavailable = domain.Rejected("product is no longer available")
	ErrNonPositiveTotal   = domain.Rejected("order total must be positive")
	ErrAddressRequired    = domain.Invalid("a shipping address is required")
	ErrInvalidPayload     = domain.Invalid("order id, payment id and signature are required")
	ErrInvalidSignature   = domain.Rejected("payment signature verification failed")
	ErrPaymentFailed      = domain.Rejected("payment already marked failed")
	ErrPaymentInProgress  = domain.Conflict("payment is already being processed")
	ErrAlreadyPaid        = domain.Conflict("order already paid with a different payment")
	ErrPaymentIDUsed      = domain.Conflict("payment id already used for another order")
)

// PaymentGateway mints gateway orders and checks callback signatures
type PaymentGateway interface {
	// CreateOrder registers amount (in the smallest currency unit) and returns the gateway order id
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
	VerifySignature(gatewayOrderID, paymentID, signature string) bool
}

// Notifier delivers the order confirmation to the customer
type Notifier interface {
	OrderConfirmed(ctx context.Context, o *model.Order, u *model.User) error
}

// Locker is a best-effort distributed mutex
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// Service orchestrates checkout, payment verification and order management
type Service struct {
	store     store.Store
	inventory *inventory.Service
	coupons   *coupon.Service
	users     *user.Service
	gateway   PaymentGateway
	notifier  Notifier
	locker    Locker
	currency  string
	now       func() time.Time
}

// NewService wires the checkout flow. notifier and locker may be nil.
func NewService(
	st store.Store,
	inv *inventory.Service,
	coupons *coupon.Service,
	users *user.Service,
	gateway PaymentGateway,
	notifier Notifier,
	locker Locker,
	currency string,
) *Service {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Service{
		store:     st,
		inventory: inv,
		coupons:   coupons,
		users:     users,
		gateway:   gateway,
		notifier:  notifier,
		locker:    locker,
		currency:  currency,
		now:       time.Now,
	}
}

// ==========================================
// Checkout
// ==========================================

// Checkout is the result of reserving a cart
type Checkout struct {
	Reservations []model.Reservation `json:"reservations"`
	ExpiresAt    time.Time           `json:"expires_at"`
}

func (s *Service) cartItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	c, err := s.store.GetCart(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}
	return c.Items, nil
}

// InitiateCheckout reserves every cart line for the reservation TTL.
// If any line is short nothing is reserved.
func (s *Service) InitiateCheckout(ctx context.Context, userID string) (*Checkout, error) {
	items, err := s.cartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	lines := make([]inventory.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, inventory.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	reservations, err := s.inventory.ReserveCheckout(ctx, userID, lines)
	if err != nil {
		return nil, err
	}
	return &Checkout{Reservations: reservations, ExpiresAt: reservations[0].ExpiresAt}, nil
}

// PaymentOrderInput selects the coupon and address for a payment order
type PaymentOrderInput struct {
	CouponCode string
	AddressID  string
}

// PaymentOrder is what the client needs to open the gateway checkout
type PaymentOrder struct {
	Order          *model.Order `json:"order"`
	GatewayOrderID string       `json:"gateway_order_id"`
	Amount         int64        `json:"amount"`
	Currency       string       `json:"currency"`
}

// CreatePaymentOrder prices the cart, registers the amount with the gateway
// and stores a pending order holding a snapshot of the lines.
func (s *Service) CreatePaymentOrder(ctx context.Context, userID string, in PaymentOrderInput) (*PaymentOrder, error) {
	items, err := s.cartItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	orderID := uuid.New().String()
	subtotal := decimal.Zero
	lines := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		p, err := s.store.GetProduct(ctx, it.ProductID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, it.ProductID)
		}
		if err != nil {
			return nil, err
		}
		if p.Status != model.ProductActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, p.Name)
		}
		if it.Size != "" {
			if _, ok := p.Size(it.Size); !ok {
				return nil, fmt.Errorf("%w: %s size %s", ErrProductUnavailable, p.Name, it.Size)
			}
		}

		price := p.UnitPrice(it.Size)
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		lines = append(lines, model.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: p.ID,
			Name:      p.Name,
			Size:      it.Size,
			Price:     price,
			Quantity:  it.Quantity,
		})
	}

	discount := decimal.Zero
	couponID := ""
	if in.CouponCode != "" {
		res, err := s.coupons.Validate(ctx, in.CouponCode, subtotal, userID)
		if err != nil {
			return nil, err
		}
		discount = res.Discount
		couponID = res.Coupon.ID
	}
	total := subtotal.Sub(discount)
	if !total.IsPositive() {
		return nil, ErrNonPositiveTotal
	}

	address, err := s.shippingAddress(ctx, userID, in.AddressID)
	if err != nil {
		return nil, err
	}

	amount := total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	gatewayOrderID, err := s.gateway.CreateOrder(ctx, amount, s.currency, orderID)
	if err != nil {
		return nil, fmt.Errorf("create gateway order: %w", err)
	}

	now := s.now()
	o := &model.Order{
		ID:              orderID,
		UserID:          userID,
		Items:           lines,
		Subtotal:        subtotal,
		Discount:        discount,
		Total:           total,
		CouponID:        couponID,
		Status:          model.OrderPending,
		PaymentStatus:   model.PaymentPending,
		GatewayOrderID:  gatewayOrderID,
		ShippingAddress: address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	return &PaymentOrder{Order: o, GatewayOrderID: gatewayOrderID, Amount: amount, Currency: s.currency}, nil
}

func (s *Service) shippingAddress(ctx context.Context, userID, addressID string) (*model.Address, error) {
	var (
		a   *model.Address
		err error
	)
	if addressID != "" {
		a, err = s.users.GetAddress(ctx, userID, addressID)
	} else {
		a, err = s.users.DefaultAddress(ctx, userID)
		if errors.Is(err, user.ErrAddressNotFound) {
			return nil, ErrAddressRequired
		}
	}
	return a, err
}

// VerifyInput is the gateway callback payload
type VerifyInput struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
}

// VerifyPayment checks the gateway signature and confirms the order.
// Confirmation decrements stock, completes reservations, clears the cart,
// records coupon usage and notifies admins in one transaction. Re-submitting
// an already confirmed payment returns the order without repeating any of it.
func (s *Service) VerifyPayment(ctx context.Context, userID string, in VerifyInput) (*model.Order, error) {
	if in.GatewayOrderID == "" || in.PaymentID == "" || in.Signature == "" {
		return nil, ErrInvalidPayload
	}

	if s.locker != nil {
		key := "payment:" + in.PaymentID
		acquired, err := s.locker.Acquire(ctx, key, paymentLockTTL)
		switch {
		case err != nil:
			// the transaction below still guarantees a single confirmation
			log.Printf("[Checkout] Payment lock unavailable for %s: %v", in.PaymentID, err)
		case !acquired:
			return nil, ErrPaymentInProgress
		default:
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), key); err != nil {
					log.Printf("[Checkout] Failed to release payment lock %s: %v", key, err)
				}
			}()
		}
	}

	o, err := s.store.LockOrderByGatewayID(ctx, in.GatewayOrderID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && o.UserID != userID) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if !s.gateway.VerifySignature(in.GatewayOrderID, in.PaymentID, in.Signature) {
		log.Printf("[Checkout] Signature mismatch for order %s", o.ID)
		s.markFailed(ctx, in.GatewayOrderID)
		return nil, ErrInvalidSignature
	}

	confirmed, replay, err := s.confirm(ctx, userID, in)
	if err != nil {
		if !errors.Is(err, ErrAlreadyPaid) && !errors.Is(err, ErrPaymentFailed) {
			log.Printf("[Checkout] Confirmation of order %s failed: %v", o.ID, err)
			s.markFailed(ctx, in.GatewayOrderID)
		}
		return nil, err
	}

	if !replay {
		s.notify(ctx, confirmed)
	}
	return confirmed, nil
}

// confirm runs the confirmation transaction. replay is true when the order
// was already confirmed by the same payment.
func (s *Service) confirm(ctx context.Context, userID string, in VerifyInput) (*model.Order, bool, error) {
	var (
		confirmed *model.Order
		replay    bool
	)

	err := s.store.InTx(ctx, func(tx store.Store) error {
		o, err := tx.LockOrderByGatewayID(ctx, in.GatewayOrderID)
		if err != nil {
			return err
		}

		switch o.PaymentStatus {
		case model.PaymentCompleted:
			if o.PaymentID == in.PaymentID {
				confirmed, replay = o, true
				return nil
			}
			return ErrAlreadyPaid
		case model.PaymentFailed:
			return ErrPaymentFailed
		}

		now := s.now()
		if err := claimStock(ctx, tx, userID, o.Items, now); err != nil {
			return err
		}

		productIDs := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			if err := tx.DecrementStock(ctx, it.ProductID, it.Size, it.Quantity); err != nil {
				return stockError(ctx, tx, it, err)
			}
			productIDs = append(productIDs, it.ProductID)
		}

		if err := tx.UpdatePayment(ctx, o.ID, model.OrderProcessing, model.PaymentCompleted, in.PaymentID); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrPaymentIDUsed
			}
			return err
		}
		if err := tx.CompleteReservations(ctx, userID, productIDs); err != nil {
			return err
		}
		if err := tx.DeleteCart(ctx, userID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if o.CouponID != "" {
			err := tx.RecordCouponUsage(ctx, &model.CouponUsage{
				ID:       uuid.New().String(),
				CouponID: o.CouponID,
				UserID:   userID,
				OrderID:  o.ID,
				UsedAt:   now,
			})
			if errors.Is(err, store.ErrConflict) {
				return coupon.ErrCouponUsed
			}
			if err != nil {
				return err
			}
		}

		if err := tx.CreateNotification(ctx, &model.AdminNotification{
			ID:        uuid.New().String(),
			Type:      model.NotificationNewOrder,
			Title:     "New order",
			Message:   fmt.Sprintf("Order %s paid: %s %s", o.ID, s.currency, o.Total.StringFixed(2)),
			RefID:     o.ID,
			CreatedAt: now,
		}); err != nil {
			return err
		}

		o.Status = model.OrderProcessing
		o.PaymentStatus = model.PaymentCompleted
		o.PaymentID = in.PaymentID
		o.UpdatedAt = now
		confirmed = o
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return confirmed, replay, nil
}

// claimStock locks every ordered product and checks that the order fits in
// stock not held by other users' live reservations. The buyer's own holds
// count as theirs.
func claimStock(ctx context.Context, tx store.Store, userID string, items []model.OrderItem, now time.Time) error {
	needed := make(map[string]int)
	names := make(map[string]string)
	for _, it := range items {
		needed[it.ProductID] += it.Quantity
		names[it.ProductID] = it.Name
	}
	ids := make([]string, 0, len(needed))
	for id := range needed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p, err := tx.LockProduct(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, names[id])
			}
			return err
		}
		if _, err := tx.ExpireReservations(ctx, id, now); err != nil {
			return err
		}
		held, err := inventory.HeldByOthers(ctx, tx, id, userID, now)
		if err != nil {
			return err
		}
		if free := p.Stock - held; needed[id] > free {
			return &inventory.InsufficientStockError{
				ProductID:   id,
				ProductName: p.Name,
				Requested:   needed[id],
				Available:   max(free, 0),
			}
		}
	}
	return nil
}

func stockError(ctx context.Context, tx store.Store, it model.OrderItem, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrProductUnavailable, it.Name)
	}
	if !errors.Is(err, store.ErrStockExhausted) {
		return err
	}
	available := 0
	if p, perr := tx.GetProduct(ctx, it.ProductID); perr == nil {
		available = p.Stock
		if sz, ok := p.Size(it.Size); ok {
			available = min(available, sz.Stock)
		}
	}
	return &inventory.InsufficientStockError{
		ProductID:   it.ProductID,
		ProductName: it.Name,
		Requested:   it.Quantity,
		Available:   available,
	}
}

// markFailed moves a still-pending order to Failed. Errors are only logged.
func (s *Service) markFailed(ctx context.Context, gatewayOrderID string) {
	err := s.store.InTx(ctx, func(tx store.Store) error {
		o, err := tx.LockOrderByGatewayID(ctx, gatewayOrderID)
		if err != nil {
			return err
		}
		if o.PaymentStatus != model.PaymentPending {
			return nil
		}
		return tx.UpdatePayment(ctx, o.ID, model.OrderFailed, model.PaymentFailed, "")
	})
	if err != nil {
		log.Printf("[Checkout] Failed to mark order %s failed: %v", gatewayOrderID, err)
	}
}

func (s *Service) notify(ctx context.Context, o *model.Order) {
	if s.notifier == nil {
		return
	}
	u, err := s.store.GetUser(ctx, o.UserID)
	if err != nil {
		log.Printf("[Checkout] Order %s confirmed but customer lookup failed: %v", o.ID, err)
		return
	}
	if err := s.notifier.OrderConfirmed(ctx, o, u); err != nil {
		log.Printf("[Checkout] Order confirmation for %s not delivered: %v", o.ID, err)
	}
}

// ==========================================
// Customer queries
// ==========================================

// List returns the user's orders, newest first
func (s *Service) List(ctx context.Context, userID string, page, limit int) (domain.Page[model.Order], error) {
	page, limit, offset := domain.Paging(page, limit)
	orders, total, err := s.store.ListOrders(ctx, store.OrderFilter{UserID: userID, Limit: limit, Offset: offset})
	if err != nil {
		return domain.Page[model.Order]{}, err
	}
	return domain.NewPage(orders, total, page, limit), nil
}

// Get returns one of the user's orders. Other users' orders are reported missing.
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Order, error) {
	o, err := s.AdminGet(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// ==========================================
// Admin
// ==========================================

// AdminList pages through every order, optionally filtered by status
func (s *Service) AdminList(ctx context.Context, status string, page, limit int) (domain.Page[model.Order], error) {
	f := store.OrderFilter{}
	if status != "" {
		st, err := ParseStatus(status)
		if err != nil {
			return domain.Page[model.Order]{}, err
		}
		f.Status = st
	}
	page, limit, f.Offset = domain.Paging(page, limit)
	f.Limit = limit

	orders, total, err := s.store.ListOrders(ctx, f)
	if err != nil {
		return domain.Page[model.Order]{}, err
	}
	return domain.NewPage(orders, total, page, limit), nil
}

// AdminGet returns any order
func (s *Service) AdminGet(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return o, err
}

// UpdateStatus moves an order along the fulfilment path
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*model.Order, error) {
	target, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var updated *model.Order
	err = s.store.InTx(ctx, func(tx store.Store) error {
		o, err := tx.GetOrder(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if !CanTransition(o.Status, target) {
			return transitionError(o, target)
		}
		if o.Status == model.OrderPending {
			// an unpaid order failing also closes its payment
			err = tx.UpdatePayment(ctx, o.ID, target, model.PaymentFailed, "")
		} else {
			err = tx.UpdateOrderStatus(ctx, o.ID, target)
		}
		if err != nil {
			return err
		}
		o.Status = target
		o.UpdatedAt = s.now()
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
