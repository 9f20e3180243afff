package store

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memData holds every table. Stored values are never mutated in place,
// so a shallow copy of the maps is a consistent snapshot.
type memData struct {
	products      map[string]model.Product
	categories    map[string]model.Category
	subcategories map[string]model.SubCategory
	carts         map[string]model.Cart // userID -> cart
	reservations  map[string]model.Reservation
	orders        map[string]model.Order
	coupons       map[string]model.Coupon
	usages        map[string]model.CouponUsage
	users         map[string]model.User
	addresses     map[string]model.Address
	reviews       map[string]model.Review
	banners       map[string]model.Banner
	announcements map[string]model.Announcement
	videos        map[string]model.FeatureVideo
	notifications map[string]model.AdminNotification
}

func newMemData() *memData {
	return &memData{
		products:      make(map[string]model.Product),
		categories:    make(map[string]model.Category),
		subcategories: make(map[string]model.SubCategory),
		carts:         make(map[string]model.Cart),
		reservations:  make(map[string]model.Reservation),
		orders:        make(map[string]model.Order),
		coupons:       make(map[string]model.Coupon),
		usages:        make(map[string]model.CouponUsage),
		users:         make(map[string]model.User),
		addresses:     make(map[string]model.Address),
		reviews:       make(map[string]model.Review),
		banners:       make(map[string]model.Banner),
		announcements: make(map[string]model.Announcement),
		videos:        make(map[string]model.FeatureVideo),
		notifications: make(map[string]model.AdminNotification),
	}
}

func (d *memData) snapshot() *memData {
	return &memData{
		products:      maps.Clone(d.products),
		categories:    maps.Clone(d.categories),
		subcategories: maps.Clone(d.subcategories),
		carts:         maps.Clone(d.carts),
		reservations:  maps.Clone(d.reservations),
		orders:        maps.Clone(d.orders),
		coupons:       maps.Clone(d.coupons),
		usages:        maps.Clone(d.usages),
		users:         maps.Clone(d.users),
		addresses:     maps.Clone(d.addresses),
		reviews:       maps.Clone(d.reviews),
		banners:       maps.Clone(d.banners),
		announcements: maps.Clone(d.announcements),
		videos:        maps.Clone(d.videos),
		notifications: maps.Clone(d.notifications),
	}
}

// MemoryStore is an in-process Store. Transactions are fully serialized
// and roll back to a snapshot on error.
type MemoryStore struct {
	mu   *sync.Mutex
	data *memData
	inTx bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{mu: &sync.Mutex{}, data: newMemData()}
}

func (s *MemoryStore) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *MemoryStore) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.data.snapshot()
	tx := &MemoryStore{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *before
		return err
	}
	return nil
}

func copyProduct(p model.Product) model.Product {
	p.Sizes = slices.Clone(p.Sizes)
	p.Images = slices.Clone(p.Images)
	return p
}

func copyOrder(o model.Order) model.Order {
	o.Items = slices.Clone(o.Items)
	if o.ShippingAddress != nil {
		a := *o.ShippingAddress
		o.ShippingAddress = &a
	}
	return o
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ==========================================
// Products
// ==========================================

func (s *MemoryStore) ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, int, error) {
	s.lock()
	defer s.unlock()

	q := strings.ToLower(f.Query)
	var out []model.Product
	for _, p := range s.data.products {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.CategoryID != "" && p.CategoryID != f.CategoryID {
			continue
		}
		if f.SubCategoryID != "" && p.SubCategoryID != f.SubCategoryID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		if f.MinPrice.IsPositive() && p.Price.LessThan(f.MinPrice) {
			continue
		}
		if f.MaxPrice.IsPositive() && p.Price.GreaterThan(f.MaxPrice) {
			continue
		}
		out = append(out, copyProduct(p))
	}

	sort.Slice(out, func(i, j int) bool {
		switch f.Sort {
		case SortPriceAsc:
			return out[i].Price.LessThan(out[j].Price)
		case SortPriceDesc:
			return out[i].Price.GreaterThan(out[j].Price)
		case SortName:
			return out[i].Name < out[j].Name
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})

	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	s.lock()
	defer s.unlock()
	p, ok := s.data.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p = copyProduct(p)
	return &p, nil
}

func (s *MemoryStore) LockProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.GetProduct(ctx, id)
}

func (s *MemoryStore) CreateProduct(ctx context.Context, p *model.Product) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.products[p.ID]; ok {
		return ErrConflict
	}
	for _, existing := range s.data.products {
		if existing.Slug == p.Slug {
			return ErrConflict
		}
	}
	for i := range p.Sizes {
		if p.Sizes[i].ID == "" {
			p.Sizes[i].ID = uuid.New().String()
		}
		p.Sizes[i].ProductID = p.ID
	}
	s.data.products[p.ID] = copyProduct(*p)
	return nil
}

func (s *MemoryStore) UpdateProduct(ctx context.Context, p *model.Product) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.products[p.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range s.data.products {
		if id != p.ID && existing.Slug == p.Slug {
			return ErrConflict
		}
	}
	for i := range p.Sizes {
		if p.Sizes[i].ID == "" {
			p.Sizes[i].ID = uuid.New().String()
		}
		p.Sizes[i].ProductID = p.ID
	}
	s.data.products[p.ID] = copyProduct(*p)
	return nil
}

func (s *MemoryStore) DeleteProduct(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.products, id)
	return nil
}

func (s *MemoryStore) DecrementStock(ctx context.Context, productID, size string, qty int) error {
	s.lock()
	defer s.unlock()
	stored, ok := s.data.products[productID]
	if !ok {
		return ErrNotFound
	}
	p := copyProduct(stored)
	if p.Stock < qty {
		return ErrStockExhausted
	}
	if size != "" {
		sz, ok := p.Size(size)
		if !ok {
			return ErrNotFound
		}
		if sz.Stock < qty {
			return ErrStockExhausted
		}
		sz.Stock -= qty
	}
	p.Stock -= qty
	p.UpdatedAt = time.Now()
	s.data.products[productID] = p
	return nil
}

// ==========================================
// Categories
// ==========================================

func (s *MemoryStore) withSubCategories(c model.Category) model.Category {
	c.SubCategories = []model.SubCategory{}
	for _, sc := range s.data.subcategories {
		if sc.CategoryID == c.ID {
			c.SubCategories = append(c.SubCategories, sc)
		}
	}
	sort.Slice(c.SubCategories, func(i, j int) bool { return c.SubCategories[i].Name < c.SubCategories[j].Name })
	return c
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	s.lock()
	defer s.unlock()
	out := make([]model.Category, 0, len(s.data.categories))
	for _, c := range s.data.categories {
		out = append(out, s.withSubCategories(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *MemoryStore) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	s.lock()
	defer s.unlock()
	c, ok := s.data.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = s.withSubCategories(c)
	return &c, nil
}

func (s *MemoryStore) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	s.lock()
	defer s.unlock()
	for _, c := range s.data.categories {
		if c.Slug == slug {
			c = s.withSubCategories(c)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateCategory(ctx context.Context, c *model.Category) error {
	s.lock()
	defer s.unlock()
	for _, existing := range s.data.categories {
		if existing.Slug == c.Slug {
			return ErrConflict
		}
	}
	stored := *c
	stored.SubCategories = nil
	s.data.categories[c.ID] = stored
	return nil
}

func (s *MemoryStore) UpdateCategory(ctx context.Context, c *model.Category) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.categories[c.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range s.data.categories {
		if id != c.ID && existing.Slug == c.Slug {
			return ErrConflict
		}
	}
	stored := *c
	stored.SubCategories = nil
	s.data.categories[c.ID] = stored
	return nil
}

func (s *MemoryStore) DeleteCategory(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.categories[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.categories, id)
	for scID, sc := range s.data.subcategories {
		if sc.CategoryID == id {
			delete(s.data.subcategories, scID)
		}
	}
	return nil
}

func (s *MemoryStore) GetSubCategory(ctx context.Context, id string) (*model.SubCategory, error) {
	s.lock()
	defer s.unlock()
	sc, ok := s.data.subcategories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &sc, nil
}

func (s *MemoryStore) CreateSubCategory(ctx context.Context, sc *model.SubCategory) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.categories[sc.CategoryID]; !ok {
		return ErrNotFound
	}
	for _, existing := range s.data.subcategories {
		if existing.CategoryID == sc.CategoryID && existing.Slug == sc.Slug {
			return ErrConflict
		}
	}
	s.data.subcategories[sc.ID] = *sc
	return nil
}

func (s *MemoryStore) UpdateSubCategory(ctx context.Context, sc *model.SubCategory) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.subcategories[sc.ID]; !ok {
		return ErrNotFound
	}
	s.data.subcategories[sc.ID] = *sc
	return nil
}

func (s *MemoryStore) DeleteSubCategory(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.subcategories[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.subcategories, id)
	return nil
}

// ==========================================
// Cart
// ==========================================

func (s *MemoryStore) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	s.lock()
	defer s.unlock()
	c, ok := s.data.carts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Items = slices.Clone(c.Items)
	return &c, nil
}

func (s *MemoryStore) UpsertCartItem(ctx context.Context, userID string, item model.CartItem) error {
	s.lock()
	defer s.unlock()
	c, ok := s.data.carts[userID]
	if !ok {
		c = model.Cart{ID: uuid.New().String(), UserID: userID}
	}
	c.Items = slices.Clone(c.Items)
	found := false
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID && c.Items[i].Size == item.Size {
			c.Items[i].Quantity = item.Quantity
			found = true
			break
		}
	}
	if !found {
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		c.Items = append(c.Items, item)
	}
	c.UpdatedAt = time.Now()
	s.data.carts[userID] = c
	return nil
}

func (s *MemoryStore) RemoveCartItem(ctx context.Context, userID, productID, size string) error {
	s.lock()
	defer s.unlock()
	c, ok := s.data.carts[userID]
	if !ok {
		return ErrNotFound
	}
	items := make([]model.CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ProductID == productID && it.Size == size {
			continue
		}
		items = append(items, it)
	}
	if len(items) == len(c.Items) {
		return ErrNotFound
	}
	c.Items = items
	c.UpdatedAt = time.Now()
	s.data.carts[userID] = c
	return nil
}

func (s *MemoryStore) DeleteCart(ctx context.Context, userID string) error {
	s.lock()
	defer s.unlock()
	delete(s.data.carts, userID)
	return nil
}

// ==========================================
// Reservations
// ==========================================

func (s *MemoryStore) ExpireReservations(ctx context.Context, productID string, now time.Time) (int, error) {
	s.lock()
	defer s.unlock()
	n := 0
	for id, r := range s.data.reservations {
		if productID != "" && r.ProductID != productID {
			continue
		}
		if r.Status == model.ReservationPending && !r.ExpiresAt.After(now) {
			r.Status = model.ReservationExpired
			s.data.reservations[id] = r
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) ReservedQuantity(ctx context.Context, productID string, now time.Time) (int, error) {
	s.lock()
	defer s.unlock()
	total := 0
	for _, r := range s.data.reservations {
		if r.ProductID == productID && r.Active(now) {
			total += r.Quantity
		}
	}
	return total, nil
}

func (s *MemoryStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.products[r.ProductID]; !ok {
		return ErrNotFound
	}
	s.data.reservations[r.ID] = *r
	return nil
}

func (s *MemoryStore) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	s.lock()
	defer s.unlock()
	r, ok := s.data.reservations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) UpdateReservationStatus(ctx context.Context, id string, status model.ReservationStatus) error {
	s.lock()
	defer s.unlock()
	r, ok := s.data.reservations[id]
	if !ok {
		return ErrNotFound
	}
	r.Status = status
	s.data.reservations[id] = r
	return nil
}

func (s *MemoryStore) CompleteReservations(ctx context.Context, userID string, productIDs []string) error {
	s.lock()
	defer s.unlock()
	for id, r := range s.data.reservations {
		if r.UserID == userID && r.Status == model.ReservationPending && slices.Contains(productIDs, r.ProductID) {
			r.Status = model.ReservationCompleted
			s.data.reservations[id] = r
		}
	}
	return nil
}

func (s *MemoryStore) ListUserReservations(ctx context.Context, userID string) ([]model.Reservation, error) {
	s.lock()
	defer s.unlock()
	out := []model.Reservation{}
	for _, r := range s.data.reservations {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ==========================================
// Orders
// ==========================================

func (s *MemoryStore) CreateOrder(ctx context.Context, o *model.Order) error {
	s.lock()
	defer s.unlock()
	for _, existing := range s.data.orders {
		if existing.GatewayOrderID == o.GatewayOrderID {
			return ErrConflict
		}
	}
	for i := range o.Items {
		if o.Items[i].ID == "" {
			o.Items[i].ID = uuid.New().String()
		}
		o.Items[i].OrderID = o.ID
	}
	s.data.orders[o.ID] = copyOrder(*o)
	return nil
}

func (s *MemoryStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	s.lock()
	defer s.unlock()
	o, ok := s.data.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o = copyOrder(o)
	return &o, nil
}

func (s *MemoryStore) LockOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	s.lock()
	defer s.unlock()
	for _, o := range s.data.orders {
		if o.GatewayOrderID == gatewayOrderID {
			o = copyOrder(o)
			return &o, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	s.lock()
	defer s.unlock()
	var out []model.Order
	for _, o := range s.data.orders {
		if f.UserID != "" && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	s.lock()
	defer s.unlock()
	o, ok := s.data.orders[id]
	if !ok {
		return ErrNotFound
	}
	o = copyOrder(o)
	o.Status = status
	o.UpdatedAt = time.Now()
	s.data.orders[id] = o
	return nil
}

func (s *MemoryStore) UpdatePayment(ctx context.Context, id string, status model.OrderStatus, paymentStatus model.PaymentStatus, paymentID string) error {
	s.lock()
	defer s.unlock()
	o, ok := s.data.orders[id]
	if !ok {
		return ErrNotFound
	}
	if paymentID != "" {
		for otherID, other := range s.data.orders {
			if otherID != id && other.PaymentID == paymentID {
				return ErrConflict
			}
		}
	}
	o = copyOrder(o)
	o.Status = status
	o.PaymentStatus = paymentStatus
	if paymentID != "" {
		o.PaymentID = paymentID
	}
	o.UpdatedAt = time.Now()
	s.data.orders[id] = o
	return nil
}

// ==========================================
// Coupons
// ==========================================

func (s *MemoryStore) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	s.lock()
	defer s.unlock()
	out := make([]model.Coupon, 0, len(s.data.coupons))
	for _, c := range s.data.coupons {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) GetCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	s.lock()
	defer s.unlock()
	c, ok := s.data.coupons[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	s.lock()
	defer s.unlock()
	for _, c := range s.data.coupons {
		if strings.EqualFold(c.Code, code) {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateCoupon(ctx context.Context, c *model.Coupon) error {
	s.lock()
	defer s.unlock()
	for _, existing := range s.data.coupons {
		if strings.EqualFold(existing.Code, c.Code) {
			return ErrConflict
		}
	}
	s.data.coupons[c.ID] = *c
	return nil
}

func (s *MemoryStore) UpdateCoupon(ctx context.Context, c *model.Coupon) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.coupons[c.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range s.data.coupons {
		if id != c.ID && strings.EqualFold(existing.Code, c.Code) {
			return ErrConflict
		}
	}
	s.data.coupons[c.ID] = *c
	return nil
}

func (s *MemoryStore) DeleteCoupon(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.coupons[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.coupons, id)
	return nil
}

func (s *MemoryStore) HasCouponUsage(ctx context.Context, couponID, userID string) (bool, error) {
	s.lock()
	defer s.unlock()
	for _, u := range s.data.usages {
		if u.CouponID == couponID && u.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) RecordCouponUsage(ctx context.Context, u *model.CouponUsage) error {
	s.lock()
	defer s.unlock()
	for _, existing := range s.data.usages {
		if existing.CouponID == u.CouponID && existing.UserID == u.UserID {
			return ErrConflict
		}
	}
	s.data.usages[u.ID] = *u
	return nil
}

// ==========================================
// Users and addresses
// ==========================================

func (s *MemoryStore) CreateUser(ctx context.Context, u *model.User) error {
	s.lock()
	defer s.unlock()
	for _, existing := range s.data.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrConflict
		}
	}
	s.data.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.lock()
	defer s.unlock()
	u, ok := s.data.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.lock()
	defer s.unlock()
	for _, u := range s.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateUser(ctx context.Context, u *model.User) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.users[u.ID]; !ok {
		return ErrNotFound
	}
	s.data.users[u.ID] = *u
	return nil
}

func (s *MemoryStore) ListUsers(ctx context.Context, role string, limit, offset int) ([]model.User, int, error) {
	s.lock()
	defer s.unlock()
	var out []model.User
	for _, u := range s.data.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), len(out), nil
}

func (s *MemoryStore) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	s.lock()
	defer s.unlock()
	out := []model.Address{}
	for _, a := range s.data.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetAddress(ctx context.Context, id string) (*model.Address, error) {
	s.lock()
	defer s.unlock()
	a, ok := s.data.addresses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) SaveAddress(ctx context.Context, a *model.Address) error {
	s.lock()
	defer s.unlock()
	if a.IsDefault {
		for id, other := range s.data.addresses {
			if other.UserID == a.UserID && id != a.ID && other.IsDefault {
				other.IsDefault = false
				s.data.addresses[id] = other
			}
		}
	}
	s.data.addresses[a.ID] = *a
	return nil
}

func (s *MemoryStore) DeleteAddress(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.addresses[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.addresses, id)
	return nil
}

// ==========================================
// Reviews
// ==========================================

func (s *MemoryStore) CreateReview(ctx context.Context, r *model.Review) error {
	s.lock()
	defer s.unlock()
	for _, existing := range s.data.reviews {
		if existing.ProductID == r.ProductID && existing.UserID == r.UserID {
			return ErrConflict
		}
	}
	s.data.reviews[r.ID] = *r
	return nil
}

func (s *MemoryStore) GetReview(ctx context.Context, id string) (*model.Review, error) {
	s.lock()
	defer s.unlock()
	r, ok := s.data.reviews[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (s *MemoryStore) ListReviews(ctx context.Context, productID string, limit, offset int) ([]model.Review, int, error) {
	s.lock()
	defer s.unlock()
	var out []model.Review
	for _, r := range s.data.reviews {
		if productID != "" && r.ProductID != productID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), len(out), nil
}

func (s *MemoryStore) DeleteReview(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.reviews, id)
	return nil
}

// ==========================================
// Content
// ==========================================

func listSorted[T any](m map[string]T, keep func(T) bool, less func(a, b T) bool) []T {
	out := []T{}
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (s *MemoryStore) ListBanners(ctx context.Context, activeOnly bool) ([]model.Banner, error) {
	s.lock()
	defer s.unlock()
	return listSorted(s.data.banners,
		func(b model.Banner) bool { return !activeOnly || b.IsActive },
		func(a, b model.Banner) bool { return a.SortOrder < b.SortOrder }), nil
}

func (s *MemoryStore) GetBanner(ctx context.Context, id string) (*model.Banner, error) {
	s.lock()
	defer s.unlock()
	b, ok := s.data.banners[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) SaveBanner(ctx context.Context, b *model.Banner) error {
	s.lock()
	defer s.unlock()
	s.data.banners[b.ID] = *b
	return nil
}

func (s *MemoryStore) DeleteBanner(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.banners[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.banners, id)
	return nil
}

func (s *MemoryStore) ListAnnouncements(ctx context.Context, activeOnly bool) ([]model.Announcement, error) {
	s.lock()
	defer s.unlock()
	return listSorted(s.data.announcements,
		func(a model.Announcement) bool { return !activeOnly || a.IsActive },
		func(a, b model.Announcement) bool { return a.SortOrder < b.SortOrder }), nil
}

func (s *MemoryStore) GetAnnouncement(ctx context.Context, id string) (*model.Announcement, error) {
	s.lock()
	defer s.unlock()
	a, ok := s.data.announcements[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) SaveAnnouncement(ctx context.Context, a *model.Announcement) error {
	s.lock()
	defer s.unlock()
	s.data.announcements[a.ID] = *a
	return nil
}

func (s *MemoryStore) DeleteAnnouncement(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.announcements[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.announcements, id)
	return nil
}

func (s *MemoryStore) ListFeatureVideos(ctx context.Context, activeOnly bool) ([]model.FeatureVideo, error) {
	s.lock()
	defer s.unlock()
	return listSorted(s.data.videos,
		func(v model.FeatureVideo) bool { return !activeOnly || v.IsActive },
		func(a, b model.FeatureVideo) bool { return a.SortOrder < b.SortOrder }), nil
}

func (s *MemoryStore) GetFeatureVideo(ctx context.Context, id string) (*model.FeatureVideo, error) {
	s.lock()
	defer s.unlock()
	v, ok := s.data.videos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &v, nil
}

func (s *MemoryStore) SaveFeatureVideo(ctx context.Context, v *model.FeatureVideo) error {
	s.lock()
	defer s.unlock()
	s.data.videos[v.ID] = *v
	return nil
}

func (s *MemoryStore) DeleteFeatureVideo(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	if _, ok := s.data.videos[id]; !ok {
		return ErrNotFound
	}
	delete(s.data.videos, id)
	return nil
}

// ==========================================
// Notifications and dashboard
// ==========================================

func (s *MemoryStore) CreateNotification(ctx context.Context, n *model.AdminNotification) error {
	s.lock()
	defer s.unlock()
	s.data.notifications[n.ID] = *n
	return nil
}

func (s *MemoryStore) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]model.AdminNotification, error) {
	s.lock()
	defer s.unlock()
	out := listSorted(s.data.notifications,
		func(n model.AdminNotification) bool { return !unreadOnly || !n.IsRead },
		func(a, b model.AdminNotification) bool { return a.CreatedAt.After(b.CreatedAt) })
	return paginate(out, limit, 0), nil
}

func (s *MemoryStore) MarkNotificationRead(ctx context.Context, id string) error {
	s.lock()
	defer s.unlock()
	n, ok := s.data.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.IsRead = true
	s.data.notifications[id] = n
	return nil
}

func (s *MemoryStore) MarkAllNotificationsRead(ctx context.Context) error {
	s.lock()
	defer s.unlock()
	for id, n := range s.data.notifications {
		n.IsRead = true
		s.data.notifications[id] = n
	}
	return nil
}

func (s *MemoryStore) DashboardStats(ctx context.Context, lowStockThreshold int) (*model.DashboardStats, error) {
	s.lock()
	defer s.unlock()
	stats := &model.DashboardStats{
		Revenue:        decimal.Zero,
		OrdersByStatus: make(map[model.OrderStatus]int),
		LowStock:       []model.Product{},
		RecentOrders:   []model.Order{},
	}
	var orders []model.Order
	for _, o := range s.data.orders {
		stats.TotalOrders++
		stats.OrdersByStatus[o.Status]++
		if o.Status == model.OrderPending || o.Status == model.OrderProcessing {
			stats.PendingOrders++
		}
		if o.PaymentStatus == model.PaymentCompleted {
			stats.Revenue = stats.Revenue.Add(o.Total)
		}
		orders = append(orders, copyOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	stats.RecentOrders = append(stats.RecentOrders, paginate(orders, 5, 0)...)

	for _, u := range s.data.users {
		if u.Role == model.RoleCustomer {
			stats.TotalCustomers++
		}
	}
	for _, p := range s.data.products {
		stats.TotalProducts++
		if p.Stock <= lowStockThreshold {
			stats.LowStock = append(stats.LowStock, copyProduct(p))
		}
	}
	sort.Slice(stats.LowStock, func(i, j int) bool { return stats.LowStock[i].Stock < stats.LowStock[j].Stock })
	return stats, nil
}
