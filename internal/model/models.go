package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Roles
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// ProductStatus controls storefront visibility
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductInactive ProductStatus = "inactive"
)

// Product is a catalog entry. Stock is the aggregate on-hand quantity.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock"`
	CategoryID    string          `json:"category_id,omitempty"`
	SubCategoryID string          `json:"subcategory_id,omitempty"`
	Images        []string        `json:"images"`
	Status        ProductStatus   `json:"status"`
	Sizes         []ProductSize   `json:"sizes"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Size returns the size variant with the given label
func (p *Product) Size(label string) (*ProductSize, bool) {
	for i := range p.Sizes {
		if p.Sizes[i].Size == label {
			return &p.Sizes[i], true
		}
	}
	return nil, false
}

// UnitPrice is the price for a line, using the size price when one is set
func (p *Product) UnitPrice(size string) decimal.Decimal {
	if s, ok := p.Size(size); ok && s.Price.IsPositive() {
		return s.Price
	}
	return p.Price
}

// ProductSize is a size variant with its own stock and optional price
type ProductSize struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Size      string          `json:"size"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

// ReservationStatus is pending until it completes or lapses
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationCompleted ReservationStatus = "completed"
	ReservationExpired   ReservationStatus = "expired"
)

// Reservation holds stock for a user until ExpiresAt
type Reservation struct {
	ID        string            `json:"id"`
	ProductID string            `json:"product_id"`
	UserID    string            `json:"user_id"`
	Quantity  int               `json:"quantity"`
	Status    ReservationStatus `json:"status"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
}

// Active reports whether the reservation still counts against stock at now
func (r *Reservation) Active(now time.Time) bool {
	return r.Status == ReservationPending && r.ExpiresAt.After(now)
}

// CartItem is one line of a cart
type CartItem struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Size      string          `json:"size,omitempty"`
	Quantity  int             `json:"quantity"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
}

// Cart belongs to exactly one user
type Cart struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Items     []CartItem      `json:"items"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderStatus is the fulfilment state
type OrderStatus string

const (
	OrderPending    OrderStatus = "Pending"
	OrderProcessing OrderStatus = "Processing"
	OrderShipping   OrderStatus = "Shipping"
	OrderDelivered  OrderStatus = "Delivered"
	OrderFailed     OrderStatus = "Failed"
)

// PaymentStatus moves pending -> completed or pending -> failed
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// OrderItem snapshots price, quantity and size at purchase time
type OrderItem struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"order_id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Size      string          `json:"size,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Order is a purchase
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []OrderItem     `json:"items"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Total           decimal.Decimal `json:"total"`
	CouponID        string          `json:"coupon_id,omitempty"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	GatewayOrderID  string          `json:"gateway_order_id"`
	PaymentID       string          `json:"payment_id,omitempty"`
	ShippingAddress *Address        `json:"shipping_address,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DiscountType is how a coupon discount is computed
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

// Coupon is a discount code valid within [StartDate, EndDate]
type Coupon struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	Description   string          `json:"description"`
	DiscountType  DiscountType    `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MinPurchase   decimal.Decimal `json:"min_purchase"`
	MaxDiscount   decimal.Decimal `json:"max_discount"`
	StartDate     time.Time       `json:"start_date"`
	EndDate       time.Time       `json:"end_date"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// CouponUsage records a user's single use of a coupon
type CouponUsage struct {
	ID       string    `json:"id"`
	CouponID string    `json:"coupon_id"`
	UserID   string    `json:"user_id"`
	OrderID  string    `json:"order_id"`
	UsedAt   time.Time `json:"used_at"`
}

// User is a customer or administrator account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Address is a shipping address
type Address struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	IsDefault  bool   `json:"is_default"`
}

// Category groups products and owns subcategories
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Slug          string        `json:"slug"`
	Description   string        `json:"description,omitempty"`
	ImageURL      string        `json:"image_url,omitempty"`
	SortOrder     int           `json:"sort_order"`
	SubCategories []SubCategory `json:"subcategories"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SubCategory belongs to a category
type SubCategory struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	CreatedAt  time.Time `json:"created_at"`
}

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type Banner struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ImageURL  string    `json:"image_url"`
	Link      string    `json:"link,omitempty"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type Announcement struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type FeatureVideo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	ProductID    string    `json:"product_id,omitempty"`
	SortOrder    int       `json:"sort_order"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Admin notification types
const (
	NotificationNewOrder  = "new_order"
	NotificationNewUser   = "new_user"
	NotificationNewReview = "new_review"
)

// AdminNotification is shown on the admin dashboard
type AdminNotification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	RefID     string    `json:"ref_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// DashboardStats aggregates figures for the admin dashboard
type DashboardStats struct {
	TotalOrders    int                 `json:"total_orders"`
	PendingOrders  int                 `json:"pending_orders"`
	Revenue        decimal.Decimal     `json:"revenue"`
	TotalCustomers int                 `json:"total_customers"`
	TotalProducts  int                 `json:"total_products"`
	OrdersByStatus map[OrderStatus]int `json:"orders_by_status"`
	LowStock       []Product           `json:"low_stock"`
	RecentOrders   []Order             `json:"recent_orders"`
}
