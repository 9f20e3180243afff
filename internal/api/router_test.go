package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain/admin"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/category"
	"github.com/example/storefront/internal/domain/content"
	"github.com/example/storefront/internal/domain/coupon"
	"github.com/example/storefront/internal/domain/enquiry"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/review"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/payment"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret        = "test-secret-key-for-testing-only-32chars"
	testPaymentSecret = "rzp_test_secret"
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin-password-123"
)

// testGateway signs like the real gateway but never leaves the process
type testGateway struct {
	mu sync.Mutex
	n  int
}

func (g *testGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("order_test_%d", g.n), nil
}

func (g *testGateway) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	return payment.VerifySignature(testPaymentSecret, gatewayOrderID, paymentID, signature)
}

type testMailer struct {
	mu       sync.Mutex
	contacts []email.ContactMessage
	quotes   []email.Quote
}

func (m *testMailer) SendContactMessage(c email.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, c)
	return nil
}

func (m *testMailer) SendBulkQuote(q email.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes = append(m.quotes, q)
	return nil
}

type testServer struct {
	router http.Handler
	store  *store.MemoryStore
	jwt    *auth.JWTService
	mailer *testMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := store.NewMemoryStore()
	ctx := context.Background()
	jwtService := auth.NewJWTService(testSecret, 7*24*time.Hour, 2*time.Hour)

	users := user.NewService(st)
	require.NoError(t, users.EnsureAdmin(ctx, testAdminEmail, testAdminPassword, ""))

	categories := category.NewService(st)
	inv := inventory.NewService(st, inventory.DefaultReservationTTL)
	products := product.NewService(st, categories, inv)
	coupons := coupon.NewService(st)
	orders := order.NewService(st, inv, coupons, users, &testGateway{}, nil, nil, "INR")
	reviews := review.NewService(st)
	contentSvc := content.NewService(st)
	mailer := &testMailer{}

	require.NoError(t, st.CreateProduct(ctx, &model.Product{
		ID: "prod-saree", Name: "Silk Saree", Slug: "silk-saree",
		Price: decimal.NewFromInt(1500), Stock: 4, Status: model.ProductActive, CreatedAt: time.Now(),
	}))
	require.NoError(t, st.CreateProduct(ctx, &model.Product{
		ID: "prod-hidden", Name: "Draft Lehenga", Slug: "draft-lehenga",
		Price: decimal.NewFromInt(9000), Stock: 1, Status: model.ProductInactive, CreatedAt: time.Now(),
	}))

	router := NewRouter(RouterConfig{
		Handlers:        NewHandlers(cart.NewService(st), inv, orders, coupons, enquiry.NewService(st, mailer), "rzp_test_key"),
		AuthHandlers:    NewAuthHandlers(users, jwtService, false),
		CatalogHandlers: NewCatalogHandlers(products, categories, reviews, contentSvc),
		AdminHandlers: NewAdminHandlers(AdminServices{
			Admin:      admin.NewService(st, nil, 0),
			Products:   products,
			Categories: categories,
			Coupons:    coupons,
			Content:    contentSvc,
			Orders:     orders,
			Users:      users,
			Reviews:    reviews,
		}),
		JWTService: jwtService,
		Accounts:   users,
	})

	return &testServer{router: router, store: st, jwt: jwtService, mailer: mailer}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func (s *testServer) register(t *testing.T, emailAddr string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": emailAddr, "password": "password123", "name": "Asha",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := sessionCookie(rec)
	require.NotNil(t, c)
	return c.Value
}

func (s *testServer) adminToken(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{
		"email": testAdminEmail, "password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return sessionCookie(rec).Value
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// ============================================
// Health / Auth Tests
// ============================================

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "Asha@Example.com", "password": "password123", "name": "Asha",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Equal(t, 7*24*60*60, c.MaxAge)
	assert.True(t, c.HttpOnly)

	body := decodeBody(t, rec)
	u := body["user"].(map[string]any)
	assert.Equal(t, "asha@example.com", u["email"])
	assert.Equal(t, "customer", u["role"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegister_Errors(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "taken@example.com")

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"duplicate email", map[string]string{"email": "taken@example.com", "password": "password123", "name": "B"}, http.StatusConflict, "email"},
		{"short password", map[string]string{"email": "new@example.com", "password": "short", "name": "B"}, http.StatusBadRequest, "at least 8"},
		{"bad email", map[string]string{"email": "nope", "password": "password123", "name": "B"}, http.StatusBadRequest, "validation failed"},
		{"missing name", map[string]string{"email": "new@example.com", "password": "password123"}, http.StatusBadRequest, "validation failed"},
		{"malformed json", `{"email":`, http.StatusBadRequest, "invalid request body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, decodeBody(t, rec)["error"], tt.wantError)
		})
	}
}

func TestRegister_ValidationDetails(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "nope", "password": "password123"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeBody(t, rec)["details"].(map[string]any)
	assert.Equal(t, "must be a valid email address", details["Email"])
	assert.Equal(t, "is required", details["Name"])
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "asha@example.com")

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "asha@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	token := sessionCookie(rec).Value

	me := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "asha@example.com", decodeBody(t, me)["email"])

	bad := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "asha@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
}

func TestAdminLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "asha@example.com")

	rec := s.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"email": testAdminEmail, "password": testAdminPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2*60*60, sessionCookie(rec).MaxAge)

	customer := s.do(t, http.MethodPost, "/api/admin/login", "", map[string]string{"email": "asha@example.com", "password": "password123"})
	assert.Equal(t, http.StatusForbidden, customer.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/auth/logout", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	c := sessionCookie(rec)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	s := newTestServer(t)
	customer := s.register(t, "asha@example.com")

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"me anonymous", http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
		{"cart anonymous", http.MethodGet, "/api/cart", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/cart", "not-a-jwt", http.StatusUnauthorized},
		{"admin anonymous", http.MethodGet, "/api/admin/dashboard", "", http.StatusUnauthorized},
		{"admin as customer", http.MethodGet, "/api/admin/dashboard", customer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

// ============================================
// Catalog Tests
// ============================================

func TestListProducts_OnlyActive(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products?limit=10", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 1, body["total"])
	assert.EqualValues(t, 10, body["limit"])
	assert.EqualValues(t, 1, body["pages"])
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "prod-saree", items[0].(map[string]any)["id"])
}

func TestListProducts_BadParams(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/products?sort=random", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/products?min_price=cheap", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/products?category=no-such-slug", "", nil).Code)
}

func TestGetProduct(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/products/prod-saree", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 4, decodeBody(t, rec)["available"])

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/products/prod-hidden", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/products/missing", "", nil).Code)
}

func TestReviews(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "asha@example.com")

	rec := s.do(t, http.MethodPost, "/api/products/prod-saree/reviews", token, map[string]any{"rating": 4, "comment": "Lovely"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	dup := s.do(t, http.MethodPost, "/api/products/prod-saree/reviews", token, map[string]any{"rating": 5})
	assert.Equal(t, http.StatusConflict, dup.Code)

	bad := s.do(t, http.MethodPost, "/api/products/prod-saree/reviews", token, map[string]any{"rating": 9})
	assert.Equal(t, http.StatusBadRequest, bad.Code)

	list := s.do(t, http.MethodGet, "/api/products/prod-saree/reviews", "", nil)
	require.Equal(t, http.StatusOK, list.Code)
	body := decodeBody(t, list)
	assert.EqualValues(t, 4, body["average_rating"])
	assert.EqualValues(t, 1, body["total"])
}

// ============================================
// Reservation / Checkout Tests
// ============================================

func TestReservations(t *testing.T) {
	s := newTestServer(t)
	asha := s.register(t, "asha@example.com")
	ravi := s.register(t, "ravi@example.com")

	rec := s.do(t, http.MethodPost, "/api/reservations", asha, map[string]any{"product_id": "prod-saree", "quantity": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reservationID := decodeBody(t, rec)["id"].(string)

	short := s.do(t, http.MethodPost, "/api/reservations", ravi, map[string]any{"product_id": "prod-saree", "quantity": 2})
	require.Equal(t, http.StatusBadRequest, short.Code)
	body := decodeBody(t, short)
	assert.Contains(t, body["error"], "insufficient stock")
	assert.EqualValues(t, 1, body["details"].(map[string]any)["available"])

	forbidden := s.do(t, http.MethodDelete, "/api/reservations/"+reservationID, ravi, nil)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/api/reservations/"+reservationID, asha, nil).Code)

	again := s.do(t, http.MethodPost, "/api/reservations", ravi, map[string]any{"product_id": "prod-saree", "quantity": 2})
	assert.Equal(t, http.StatusCreated, again.Code)

	product := s.do(t, http.MethodGet, "/api/products/prod-saree", "", nil)
	assert.EqualValues(t, 2, decodeBody(t, product)["available"])
}

func TestCheckoutFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "asha@example.com")

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/addresses", token, map[string]any{
		"full_name": "Asha", "phone": "9876543210", "line1": "1 Park Street",
		"city": "Kolkata", "state": "West Bengal", "postal_code": "700016",
	}).Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/cart/items", token, map[string]any{"product_id": "prod-saree", "quantity": 2}).Code)

	reserve := s.do(t, http.MethodPost, "/api/checkout/reserve", token, nil)
	require.Equal(t, http.StatusCreated, reserve.Code, reserve.Body.String())

	po := s.do(t, http.MethodPost, "/api/payments/order", token, map[string]any{})
	require.Equal(t, http.StatusCreated, po.Code, po.Body.String())
	poBody := decodeBody(t, po)
	assert.Equal(t, "rzp_test_key", poBody["key_id"])
	assert.EqualValues(t, 300000, poBody["amount"])
	gatewayOrderID := poBody["gateway_order_id"].(string)

	tampered := s.do(t, http.MethodPost, "/api/payments/verify", token, map[string]string{
		"razorpay_order_id": gatewayOrderID, "razorpay_payment_id": "pay_1", "razorpay_signature": "deadbeef",
	})
	assert.Equal(t, http.StatusBadRequest, tampered.Code)

	// A rejected signature fails the order, so start a fresh one.
	po = s.do(t, http.MethodPost, "/api/payments/order", token, map[string]any{})
	require.Equal(t, http.StatusCreated, po.Code, po.Body.String())
	gatewayOrderID = decodeBody(t, po)["gateway_order_id"].(string)

	verify := s.do(t, http.MethodPost, "/api/payments/verify", token, map[string]string{
		"razorpay_order_id":   gatewayOrderID,
		"razorpay_payment_id": "pay_2",
		"razorpay_signature":  payment.Sign(testPaymentSecret, gatewayOrderID, "pay_2"),
	})
	require.Equal(t, http.StatusOK, verify.Code, verify.Body.String())
	o := decodeBody(t, verify)["order"].(map[string]any)
	assert.Equal(t, "Processing", o["status"])
	assert.Equal(t, "completed", o["payment_status"])

	p, err := s.store.GetProduct(context.Background(), "prod-saree")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)

	cartRec := s.do(t, http.MethodGet, "/api/cart", token, nil)
	assert.Empty(t, decodeBody(t, cartRec)["items"])

	orders := s.do(t, http.MethodGet, "/api/orders", token, nil)
	require.Equal(t, http.StatusOK, orders.Code)
	assert.EqualValues(t, 2, decodeBody(t, orders)["total"])

	other := s.register(t, "ravi@example.com")
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/orders/"+o["id"].(string), other, nil).Code)
}

func TestVerifyPayment_MissingFields(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "asha@example.com")

	rec := s.do(t, http.MethodPost, "/api/payments/verify", token, map[string]string{"razorpay_order_id": "order_1"})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeBody(t, rec)["details"].(map[string]any)
	assert.Contains(t, details, "PaymentID")
	assert.Contains(t, details, "Signature")
}

// ============================================
// Admin Tests
// ============================================

func TestAdmin_CouponLifecycle(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)
	customer := s.register(t, "asha@example.com")

	now := time.Now()
	create := s.do(t, http.MethodPost, "/api/admin/coupons", adminToken, map[string]any{
		"code": "festive20", "discount_type": "percentage", "discount_value": "20",
		"start_date": now.Add(-time.Hour), "end_date": now.Add(time.Hour), "is_active": true,
	})
	require.Equal(t, http.StatusCreated, create.Code, create.Body.String())
	assert.Equal(t, "FESTIVE20", decodeBody(t, create)["code"])

	badType := s.do(t, http.MethodPost, "/api/admin/coupons", adminToken, map[string]any{
		"code": "X", "discount_type": "bogus", "discount_value": "5",
		"start_date": now, "end_date": now.Add(time.Hour),
	})
	assert.Equal(t, http.StatusBadRequest, badType.Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/cart/items", customer, map[string]any{"product_id": "prod-saree", "quantity": 1}).Code)
	validate := s.do(t, http.MethodPost, "/api/coupons/validate", customer, map[string]string{"code": "FESTIVE20"})
	require.Equal(t, http.StatusOK, validate.Code, validate.Body.String())
	assert.Equal(t, "300", decodeBody(t, validate)["discount"])

	invalid := s.do(t, http.MethodPost, "/api/coupons/validate", customer, map[string]string{"code": "NOPE"})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
}

func TestAdmin_ProductsAndDashboard(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)

	rec := s.do(t, http.MethodPost, "/api/admin/products", adminToken, map[string]any{
		"name": "Kurta", "price": "800", "status": "active",
		"sizes": []map[string]any{{"size": "M", "stock": 3}, {"size": "L", "stock": 1}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.EqualValues(t, 4, decodeBody(t, rec)["stock"])

	list := s.do(t, http.MethodGet, "/api/admin/products", adminToken, nil)
	require.Equal(t, http.StatusOK, list.Code)
	assert.EqualValues(t, 3, decodeBody(t, list)["total"], "admin listing includes inactive products")

	dash := s.do(t, http.MethodGet, "/api/admin/dashboard", adminToken, nil)
	require.Equal(t, http.StatusOK, dash.Code)
	assert.EqualValues(t, 3, decodeBody(t, dash)["total_products"])
}

func TestAdmin_OrderStatusTransitions(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)
	ctx := context.Background()
	require.NoError(t, s.store.CreateOrder(ctx, &model.Order{
		ID: "order-1", UserID: "someone", Status: model.OrderProcessing, PaymentStatus: model.PaymentCompleted,
		GatewayOrderID: "order_x", Total: decimal.NewFromInt(100), CreatedAt: time.Now(),
	}))

	skip := s.do(t, http.MethodPut, "/api/admin/orders/order-1/status", adminToken, map[string]string{"status": "Delivered"})
	assert.Equal(t, http.StatusBadRequest, skip.Code)

	ship := s.do(t, http.MethodPut, "/api/admin/orders/order-1/status", adminToken, map[string]string{"status": "Shipping"})
	require.Equal(t, http.StatusOK, ship.Code, ship.Body.String())
	assert.Equal(t, "Shipping", decodeBody(t, ship)["status"])

	missing := s.do(t, http.MethodPut, "/api/admin/orders/nope/status", adminToken, map[string]string{"status": "Shipping"})
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestAdmin_Customers(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)
	customerToken := s.register(t, "asha@example.com")

	list := s.do(t, http.MethodGet, "/api/admin/customers", adminToken, nil)
	require.Equal(t, http.StatusOK, list.Code)
	items := decodeBody(t, list)["items"].([]any)
	require.Len(t, items, 1)
	id := items[0].(map[string]any)["id"].(string)

	missingFlag := s.do(t, http.MethodPut, "/api/admin/customers/"+id+"/active", adminToken, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, missingFlag.Code)

	deactivate := s.do(t, http.MethodPut, "/api/admin/customers/"+id+"/active", adminToken, map[string]any{"active": false})
	require.Equal(t, http.StatusOK, deactivate.Code)

	login := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "asha@example.com", "password": "password123"})
	assert.Equal(t, http.StatusForbidden, login.Code)

	// the session issued before deactivation stops working too
	cart := s.do(t, http.MethodGet, "/api/cart", customerToken, nil)
	assert.Equal(t, http.StatusForbidden, cart.Code)

	reactivate := s.do(t, http.MethodPut, "/api/admin/customers/"+id+"/active", adminToken, map[string]any{"active": true})
	require.Equal(t, http.StatusOK, reactivate.Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/cart", customerToken, nil).Code)
}

func TestAdmin_Notifications(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)
	s.register(t, "asha@example.com")

	rec := s.do(t, http.MethodGet, "/api/admin/notifications?unread=true", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var notes []model.AdminNotification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationNewUser, notes[0].Type)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPut, "/api/admin/notifications/read", adminToken, nil).Code)

	after := s.do(t, http.MethodGet, "/api/admin/notifications?unread=true", adminToken, nil)
	assert.JSONEq(t, "[]", strings.TrimSpace(after.Body.String()))
}

func TestAdmin_ContentPublishedToStorefront(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)

	create := s.do(t, http.MethodPost, "/api/admin/banners", adminToken, map[string]any{
		"title": "Diwali Sale", "image_url": "https://cdn.example.com/diwali.jpg", "is_active": true,
	})
	require.Equal(t, http.StatusCreated, create.Code, create.Body.String())
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/admin/banners", adminToken, map[string]any{
		"title": "Hidden", "image_url": "https://cdn.example.com/hidden.jpg",
	}).Code)

	public := s.do(t, http.MethodGet, "/api/banners", "", nil)
	var banners []model.Banner
	require.NoError(t, json.Unmarshal(public.Body.Bytes(), &banners))
	require.Len(t, banners, 1)
	assert.Equal(t, "Diwali Sale", banners[0].Title)

	noImage := s.do(t, http.MethodPost, "/api/admin/banners", adminToken, map[string]any{"title": "Broken"})
	assert.Equal(t, http.StatusBadRequest, noImage.Code)
}

// ============================================
// Enquiry Tests
// ============================================

func TestContactAndBulkOrder(t *testing.T) {
	s := newTestServer(t)

	contact := s.do(t, http.MethodPost, "/api/contact", "", map[string]string{
		"name": "Meera", "email": "meera@example.com", "message": "Do you ship abroad?",
	})
	require.Equal(t, http.StatusOK, contact.Code, contact.Body.String())
	assert.Len(t, s.mailer.contacts, 1)

	bulk := s.do(t, http.MethodPost, "/api/bulk-orders", "", map[string]any{
		"name": "Ravi", "email": "ravi@example.com",
		"items": []map[string]any{{"product_id": "prod-saree", "quantity": 12}},
	})
	require.Equal(t, http.StatusOK, bulk.Code, bulk.Body.String())
	assert.Equal(t, "18000.00", decodeBody(t, bulk)["total"])
	assert.Len(t, s.mailer.quotes, 1)

	empty := s.do(t, http.MethodPost, "/api/bulk-orders", "", map[string]any{"name": "Ravi", "email": "ravi@example.com"})
	assert.Equal(t, http.StatusBadRequest, empty.Code)
}
