package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/storefront/internal/model"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	// ErrStockExhausted is returned by DecrementStock when the guarded update matches no row.
	ErrStockExhausted = errors.New("stock exhausted")
)

// Product sort orders
const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortName      = "name"
)

// ProductFilter narrows ListProducts. Zero values mean "no constraint".
type ProductFilter struct {
	Query         string
	CategoryID    string
	SubCategoryID string
	MinPrice      decimal.Decimal
	MaxPrice      decimal.Decimal
	Status        model.ProductStatus
	Sort          string
	Limit         int
	Offset        int
}

// OrderFilter narrows ListOrders
type OrderFilter struct {
	UserID string
	Status model.OrderStatus
	Limit  int
	Offset int
}

type ProductStore interface {
	ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, int, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	// LockProduct reads the product and holds a row lock until the enclosing transaction ends.
	LockProduct(ctx context.Context, id string) (*model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) error
	UpdateProduct(ctx context.Context, p *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
	// DecrementStock lowers product stock, and the size stock when size is set.
	// It fails with ErrStockExhausted without writing anything if either would go negative.
	DecrementStock(ctx context.Context, productID, size string, qty int) error
}

type CategoryStore interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id string) error
	GetSubCategory(ctx context.Context, id string) (*model.SubCategory, error)
	CreateSubCategory(ctx context.Context, s *model.SubCategory) error
	UpdateSubCategory(ctx context.Context, s *model.SubCategory) error
	DeleteSubCategory(ctx context.Context, id string) error
}

type CartStore interface {
	// GetCart returns ErrNotFound when the user has no cart yet.
	GetCart(ctx context.Context, userID string) (*model.Cart, error)
	// UpsertCartItem sets the quantity of the (product, size) line, creating the cart if needed.
	UpsertCartItem(ctx context.Context, userID string, item model.CartItem) error
	RemoveCartItem(ctx context.Context, userID, productID, size string) error
	DeleteCart(ctx context.Context, userID string) error
}

type ReservationStore interface {
	// ExpireReservations marks lapsed pending reservations expired. An empty productID covers all products.
	ExpireReservations(ctx context.Context, productID string, now time.Time) (int, error)
	// ReservedQuantity sums pending reservations of the product that are still live at now.
	ReservedQuantity(ctx context.Context, productID string, now time.Time) (int, error)
	CreateReservation(ctx context.Context, r *model.Reservation) error
	GetReservation(ctx context.Context, id string) (*model.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id string, status model.ReservationStatus) error
	// CompleteReservations marks the user's pending reservations for the products completed.
	CompleteReservations(ctx context.Context, userID string, productIDs []string) error
	ListUserReservations(ctx context.Context, userID string) ([]model.Reservation, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o *model.Order) error
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	// LockOrderByGatewayID reads the order and holds a row lock until the enclosing transaction ends.
	LockOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*model.Order, error)
	ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error
	// UpdatePayment fails with ErrConflict when paymentID is already attached to another order.
	UpdatePayment(ctx context.Context, id string, status model.OrderStatus, paymentStatus model.PaymentStatus, paymentID string) error
}

type CouponStore interface {
	ListCoupons(ctx context.Context) ([]model.Coupon, error)
	GetCoupon(ctx context.Context, id string) (*model.Coupon, error)
	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)
	CreateCoupon(ctx context.Context, c *model.Coupon) error
	UpdateCoupon(ctx context.Context, c *model.Coupon) error
	DeleteCoupon(ctx context.Context, id string) error
	HasCouponUsage(ctx context.Context, couponID, userID string) (bool, error)
	// RecordCouponUsage fails with ErrConflict when the user already used the coupon.
	RecordCouponUsage(ctx context.Context, u *model.CouponUsage) error
}

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	ListUsers(ctx context.Context, role string, limit, offset int) ([]model.User, int, error)
	ListAddresses(ctx context.Context, userID string) ([]model.Address, error)
	GetAddress(ctx context.Context, id string) (*model.Address, error)
	SaveAddress(ctx context.Context, a *model.Address) error
	DeleteAddress(ctx context.Context, id string) error
}

type ReviewStore interface {
	CreateReview(ctx context.Context, r *model.Review) error
	GetReview(ctx context.Context, id string) (*model.Review, error)
	ListReviews(ctx context.Context, productID string, limit, offset int) ([]model.Review, int, error)
	DeleteReview(ctx context.Context, id string) error
}

type ContentStore interface {
	ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error)
	GetBanner(ctx context.Context, id string) (*model.Banner, error)
	SaveBanner(ctx context.Context, b *model.Banner) error
	DeleteBanner(ctx context.Context, id string) error

	ListAnnouncements(ctx context.Context, activeOnly bool) ([]model.Announcement, error)
	GetAnnouncement(ctx context.Context, id string) (*model.Announcement, error)
	SaveAnnouncement(ctx context.Context, a *model.Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) error

	ListFeatureVideos(ctx context.Context, activeOnly bool) ([]model.FeatureVideo, error)
	GetFeatureVideo(ctx context.Context, id string) (*model.FeatureVideo, error)
	SaveFeatureVideo(ctx context.Context, v *model.FeatureVideo) error
	DeleteFeatureVideo(ctx context.Context, id string) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *model.AdminNotification) error
	ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]model.AdminNotification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

type DashboardStore interface {
	DashboardStats(ctx context.Context, lowStockThreshold int) (*model.DashboardStats, error)
}

// Store is the complete persistence surface.
// InTx runs fn against a transactional view; fn's error rolls everything back.
// Calling InTx on a transactional view runs fn inside the existing transaction.
type Store interface {
	ProductStore
	CategoryStore
	CartStore
	ReservationStore
	OrderStore
	CouponStore
	UserStore
	ReviewStore
	ContentStore
	NotificationStore
	DashboardStore

	InTx(ctx context.Context, fn func(tx Store) error) error
}
