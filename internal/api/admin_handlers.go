package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/example/storefront/internal/domain/admin"
	"github.com/example/storefront/internal/domain/category"
	"github.com/example/storefront/internal/domain/content"
	"github.com/example/storefront/internal/domain/coupon"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/review"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// AdminHandlers serves the back office. Every route is behind RequireAdmin.
type AdminHandlers struct {
	admin      *admin.Service
	products   *product.Service
	categories *category.Service
	coupons    *coupon.Service
	content    *content.Service
	orders     *order.Service
	users      *user.Service
	reviews    *review.Service
}

// AdminServices groups the services the back office needs
type AdminServices struct {
	Admin      *admin.Service
	Products   *product.Service
	Categories *category.Service
	Coupons    *coupon.Service
	Content    *content.Service
	Orders     *order.Service
	Users      *user.Service
	Reviews    *review.Service
}

func NewAdminHandlers(s AdminServices) *AdminHandlers {
	return &AdminHandlers{
		admin:      s.Admin,
		products:   s.Products,
		categories: s.Categories,
		coupons:    s.Coupons,
		content:    s.Content,
		orders:     s.Orders,
		users:      s.Users,
		reviews:    s.Reviews,
	}
}

// Dashboard

func (h *AdminHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Dashboard(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *AdminHandlers) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.RefreshDashboard(r.Context()); err != nil {
		respondErr(w, r, err)
		return
	}
	h.Dashboard(w, r)
}

// Product Handlers

// ProductRequest is the admin product body. Sizes replace the existing set.
type ProductRequest struct {
	Name          string          `json:"name" validate:"required"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock" validate:"min=0"`
	CategoryID    string          `json:"category_id"`
	SubCategoryID string          `json:"subcategory_id"`
	Images        []string        `json:"images"`
	Status        string          `json:"status" validate:"omitempty,oneof=active inactive"`
	Sizes         []struct {
		Size  string          `json:"size" validate:"required"`
		Price decimal.Decimal `json:"price"`
		Stock int             `json:"stock" validate:"min=0"`
	} `json:"sizes" validate:"dive"`
}

func (req ProductRequest) input() product.Input {
	in := product.Input{
		Name:          req.Name,
		Slug:          req.Slug,
		Description:   req.Description,
		Price:         req.Price,
		Stock:         req.Stock,
		CategoryID:    req.CategoryID,
		SubCategoryID: req.SubCategoryID,
		Images:        req.Images,
		Status:        model.ProductStatus(req.Status),
	}
	if in.Status == "" {
		in.Status = model.ProductActive
	}
	for _, s := range req.Sizes {
		in.Sizes = append(in.Sizes, product.SizeInput{Size: s.Size, Price: s.Price, Stock: s.Stock})
	}
	return in
}

func (h *AdminHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()
	result, err := h.products.List(r.Context(), product.ListParams{
		Query:           q.Get("q"),
		CategoryID:      q.Get("category_id"),
		SubCategoryID:   q.Get("subcategory_id"),
		Sort:            q.Get("sort"),
		Page:            page,
		Limit:           limit,
		IncludeInactive: true,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *AdminHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"), true)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *AdminHandlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	p, err := h.products.Create(r.Context(), req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *AdminHandlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	p, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *AdminHandlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.products.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	respondMessage(w, "Product deleted")
}

// Category Handlers

// CategoryRequest represents the request body for creating or updating a category
type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SortOrder   int    `json:"sort_order"`
}

func (req CategoryRequest) input() category.Input {
	return category.Input{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
	}
}

type subCategoryRequest struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug"`
}

func (h *AdminHandlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	c, err := h.categories.Create(r.Context(), req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *AdminHandlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	c, err := h.categories.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *AdminHandlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	respondMessage(w, "Category deleted")
}

func (h *AdminHandlers) CreateSubCategory(w http.ResponseWriter, r *http.Request) {
	var req subCategoryRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	sc, err := h.categories.CreateSubCategory(r.Context(), chi.URLParam(r, "id"), req.Name, req.Slug)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, sc)
}

func (h *AdminHandlers) UpdateSubCategory(w http.ResponseWriter, r *http.Request) {
	var req subCategoryRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	sc, err := h.categories.UpdateSubCategory(r.Context(), chi.URLParam(r, "id"), req.Name, req.Slug)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sc)
}

func (h *AdminHandlers) DeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.categories.DeleteSubCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	respondMessage(w, "Subcategory deleted")
}

// Coupon Handlers

// CouponRequest is the admin coupon body
type CouponRequest struct {
	Code          string          `json:"code" validate:"required"`
	Description   string          `json:"description"`
	DiscountType  string          `json:"discount_type" validate:"required,oneof=percentage flat"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	MinPurchase   decimal.Decimal `json:"min_purchase"`
	MaxDiscount   decimal.Decimal `json:"max_discount"`
	StartDate     time.Time       `json:"start_date" validate:"required"`
	EndDate       time.Time       `json:"end_date" validate:"required"`
	IsActive      bool            `json:"is_active"`
}

func (req CouponRequest) input() coupon.Input {
	return coupon.Input{
		Code:          req.Code,
		Description:   req.Description,
		DiscountType:  model.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		MinPurchase:   req.MinPurchase,
		MaxDiscount:   req.MaxDiscount,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsActive:      req.IsActive,
	}
}

func (h *AdminHandlers) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	respondList(w, r, coupons, err)
}

func (h *AdminHandlers) GetCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *AdminHandlers) CreateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	c, err := h.coupons.Create(r.Context(), req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (h *AdminHandlers) UpdateCoupon(w http.ResponseWriter, r *http.Request) {
	var req CouponRequest
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	c, err := h.coupons.Update(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (h *AdminHandlers) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.coupons.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondErr(w, r, err)
		return
	}
	respondMessage(w, "Coupon deleted")
}

// Content Handlers. POST creates; PUT /{id} replaces.

func (h *AdminHandlers) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.content.Banners(r.Context(), false)
	respondList(w, r, banners, err)
}

func (h *AdminHandlers) SaveBanner(w http.ResponseWriter, r *http.Request) {
	var b model.Banner
	if err := decode(w, r, &b); err != nil {
		respondErr(w, r, err)
		return
	}
	b.ID = chi.URLParam(r, "id")

	saved, err := h.content.SaveBanner(r.Context(), b)
	respondSaved(w, r, saved, err)
}

func (h *AdminHandlers) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.content.DeleteBanner(r.Context(), chi.URLParam(r, "id")), "Banner deleted")
}

func (h *AdminHandlers) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.content.Announcements(r.Context(), false)
	respondList(w, r, announcements, err)
}

func (h *AdminHandlers) SaveAnnouncement(w http.ResponseWriter, r *http.Request) {
	var a model.Announcement
	if err := decode(w, r, &a); err != nil {
		respondErr(w, r, err)
		return
	}
	a.ID = chi.URLParam(r, "id")

	saved, err := h.content.SaveAnnouncement(r.Context(), a)
	respondSaved(w, r, saved, err)
}

func (h *AdminHandlers) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.content.DeleteAnnouncement(r.Context(), chi.URLParam(r, "id")), "Announcement deleted")
}

func (h *AdminHandlers) ListFeatureVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.content.FeatureVideos(r.Context(), false)
	respondList(w, r, videos, err)
}

func (h *AdminHandlers) SaveFeatureVideo(w http.ResponseWriter, r *http.Request) {
	var v model.FeatureVideo
	if err := decode(w, r, &v); err != nil {
		respondErr(w, r, err)
		return
	}
	v.ID = chi.URLParam(r, "id")

	saved, err := h.content.SaveFeatureVideo(r.Context(), v)
	respondSaved(w, r, saved, err)
}

func (h *AdminHandlers) DeleteFeatureVideo(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.content.DeleteFeatureVideo(r.Context(), chi.URLParam(r, "id")), "Feature video deleted")
}

func respondSaved[T any](w http.ResponseWriter, r *http.Request, saved *T, err error) {
	if err != nil {
		respondErr(w, r, err)
		return
	}
	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	respondJSON(w, status, saved)
}

func respondDone(w http.ResponseWriter, r *http.Request, err error, message string) {
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondMessage(w, message)
}

// Order Handlers

func (h *AdminHandlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	orders, err := h.orders.AdminList(r.Context(), r.URL.Query().Get("status"), page, limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *AdminHandlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.AdminGet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *AdminHandlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

// Customer Handlers

func (h *AdminHandlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	customers, err := h.users.ListCustomers(r.Context(), page, limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, customers)
}

func (h *AdminHandlers) SetCustomerActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Active *bool `json:"active" validate:"required"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	u, err := h.users.SetActive(r.Context(), chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// Review Handlers

func (h *AdminHandlers) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	reviews, err := h.reviews.AdminList(r.Context(), page, limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reviews)
}

func (h *AdminHandlers) DeleteReview(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.reviews.Delete(r.Context(), chi.URLParam(r, "id")), "Review deleted")
}

// Notification Handlers

func (h *AdminHandlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notes, err := h.admin.Notifications(r.Context(), boolParam(r, "unread"), limit)
	respondList(w, r, notes, err)
}

func (h *AdminHandlers) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.admin.MarkRead(r.Context(), chi.URLParam(r, "id")), "Notification marked read")
}

func (h *AdminHandlers) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	respondDone(w, r, h.admin.MarkAllRead(r.Context()), "All notifications marked read")
}
