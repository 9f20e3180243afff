package api

import (
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/coupon"
	"github.com/example/storefront/internal/domain/enquiry"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/email"
	"github.com/go-chi/chi/v5"
)

// Handlers serves the signed-in customer flows and public enquiries
type Handlers struct {
	carts        *cart.Service
	inventory    *inventory.Service
	orders       *order.Service
	coupons      *coupon.Service
	enquiries    *enquiry.Service
	paymentKeyID string
}

func NewHandlers(carts *cart.Service, inv *inventory.Service, orders *order.Service, coupons *coupon.Service, enquiries *enquiry.Service, paymentKeyID string) *Handlers {
	return &Handlers{
		carts:        carts,
		inventory:    inv,
		orders:       orders,
		coupons:      coupons,
		enquiries:    enquiries,
		paymentKeyID: paymentKeyID,
	}
}

// Cart Handlers

func (h *Handlers) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id" validate:"required"`
		Size      string `json:"size"`
		Quantity  int    `json:"quantity" validate:"required,min=1"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	c, err := h.carts.AddItem(r.Context(), middleware.GetUserID(r.Context()), req.ProductID, req.Size, req.Quantity)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// UpdateCartItem sets a line's quantity; zero removes the line
func (h *Handlers) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Size     string `json:"size"`
		Quantity int    `json:"quantity" validate:"min=0"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	c, err := h.carts.SetQuantity(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "productID"), req.Size, req.Quantity)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	size := r.URL.Query().Get("size")
	c, err := h.carts.RemoveItem(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "productID"), size)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *Handlers) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.Clear(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		respondErr(w, r, err)
		return
	}
	respondMessage(w, "Cart cleared")
}

// Reservation Handlers

func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id" validate:"required"`
		Quantity  int    `json:"quantity" validate:"required,min=1"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	res, err := h.inventory.Reserve(r.Context(), middleware.GetUserID(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.inventory.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	respondList(w, r, reservations, err)
}

func (h *Handlers) CancelReservation(w http.ResponseWriter, r *http.Request) {
	if err := h.inventory.Cancel(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	respondMessage(w, "Reservation cancelled")
}

// Checkout Handlers

// ReserveCheckout holds stock for every cart line before payment
func (h *Handlers) ReserveCheckout(w http.ResponseWriter, r *http.Request) {
	checkout, err := h.orders.InitiateCheckout(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, checkout)
}

func (h *Handlers) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code" validate:"required"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	userID := middleware.GetUserID(r.Context())
	c, err := h.carts.Get(r.Context(), userID)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	result, err := h.coupons.Validate(r.Context(), req.Code, c.Subtotal, userID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// PaymentOrderResponse adds the public gateway key the browser widget needs
type PaymentOrderResponse struct {
	*order.PaymentOrder
	KeyID string `json:"key_id"`
}

func (h *Handlers) CreatePaymentOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CouponCode string `json:"coupon_code"`
		AddressID  string `json:"address_id"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	po, err := h.orders.CreatePaymentOrder(r.Context(), middleware.GetUserID(r.Context()), order.PaymentOrderInput{
		CouponCode: req.CouponCode,
		AddressID:  req.AddressID,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, PaymentOrderResponse{PaymentOrder: po, KeyID: h.paymentKeyID})
}

// VerifyPayment receives the gateway callback fields from the browser
func (h *Handlers) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID   string `json:"razorpay_order_id" validate:"required"`
		PaymentID string `json:"razorpay_payment_id" validate:"required"`
		Signature string `json:"razorpay_signature" validate:"required"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	o, err := h.orders.VerifyPayment(r.Context(), middleware.GetUserID(r.Context()), order.VerifyInput{
		GatewayOrderID: req.OrderID,
		PaymentID:      req.PaymentID,
		Signature:      req.Signature,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"message": "Payment verified", "order": o})
}

// Order Handlers

func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	orders, err := h.orders.List(r.Context(), middleware.GetUserID(r.Context()), page, limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Enquiry Handlers

func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name" validate:"required"`
		Email   string `json:"email" validate:"required,email"`
		Phone   string `json:"phone"`
		Subject string `json:"subject"`
		Message string `json:"message" validate:"required"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	err := h.enquiries.Contact(r.Context(), email.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondMessage(w, "Message sent")
}

func (h *Handlers) BulkOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name" validate:"required"`
		Email   string `json:"email" validate:"required,email"`
		Phone   string `json:"phone"`
		Company string `json:"company"`
		Notes   string `json:"notes"`
		Items   []struct {
			ProductID string `json:"product_id" validate:"required"`
			Size      string `json:"size"`
			Quantity  int    `json:"quantity" validate:"required"`
		} `json:"items" validate:"required,min=1,dive"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	in := enquiry.QuoteRequest{Name: req.Name, Email: req.Email, Phone: req.Phone, Company: req.Company, Notes: req.Notes}
	for _, it := range req.Items {
		in.Lines = append(in.Lines, enquiry.QuoteLine{ProductID: it.ProductID, Size: it.Size, Quantity: it.Quantity})
	}

	q, err := h.enquiries.BulkOrder(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, quoteResponse(q))
}

type quoteLineResponse struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

func quoteResponse(q *email.Quote) map[string]any {
	lines := make([]quoteLineResponse, len(q.Lines))
	for i, l := range q.Lines {
		lines[i] = quoteLineResponse{Name: l.Name, Quantity: l.Quantity, UnitPrice: l.UnitPrice.StringFixed(2), LineTotal: l.LineTotal.StringFixed(2)}
	}
	return map[string]any{
		"message": "Estimate sent to " + q.Email,
		"items":   lines,
		"total":   q.Total.StringFixed(2),
	}
}
