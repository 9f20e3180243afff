package api

import (
	"net/http"
	"strings"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/domain/category"
	"github.com/example/storefront/internal/domain/content"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/review"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

var errInvalidPrice = domain.Invalid("min_price and max_price must be numbers")

// CatalogHandlers serves the public storefront catalog
type CatalogHandlers struct {
	products   *product.Service
	categories *category.Service
	reviews    *review.Service
	content    *content.Service
}

// NewCatalogHandlers creates a new CatalogHandlers instance
func NewCatalogHandlers(products *product.Service, categories *category.Service, reviews *review.Service, content *content.Service) *CatalogHandlers {
	return &CatalogHandlers{
		products:   products,
		categories: categories,
		reviews:    reviews,
		content:    content,
	}
}

// listParams reads catalog filters from the query string. The category may be
// given by id or by slug.
func (h *CatalogHandlers) listParams(r *http.Request) (product.ListParams, error) {
	q := r.URL.Query()
	page, limit := pageParams(r)
	p := product.ListParams{
		Query:         q.Get("q"),
		CategoryID:    q.Get("category_id"),
		SubCategoryID: q.Get("subcategory_id"),
		Sort:          q.Get("sort"),
		Page:          page,
		Limit:         limit,
	}

	if slug := strings.TrimSpace(q.Get("category")); slug != "" && p.CategoryID == "" {
		c, err := h.categories.GetBySlug(r.Context(), slug)
		if err != nil {
			return p, err
		}
		p.CategoryID = c.ID
	}

	for key, dst := range map[string]*decimal.Decimal{"min_price": &p.MinPrice, "max_price": &p.MaxPrice} {
		if v := q.Get(key); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				return p, errInvalidPrice
			}
			*dst = d
		}
	}
	return p, nil
}

// ListProducts handles product search with filters
func (h *CatalogHandlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	params, err := h.listParams(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	result, err := h.products.List(r.Context(), params)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetProduct returns an active product with its availability
func (h *CatalogHandlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Get(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// ListCategories returns all categories with their subcategories
func (h *CatalogHandlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

// GetCategory returns a single category by slug
func (h *CatalogHandlers) GetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.categories.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Review Handlers

func (h *CatalogHandlers) ListReviews(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	summary, err := h.reviews.ListForProduct(r.Context(), chi.URLParam(r, "id"), page, limit)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *CatalogHandlers) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Rating  int    `json:"rating" validate:"required,min=1,max=5"`
		Comment string `json:"comment"`
	}
	if err := decode(w, r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	rv, err := h.reviews.Create(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rv)
}

// Content Handlers

func (h *CatalogHandlers) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.content.Banners(r.Context(), true)
	respondList(w, r, banners, err)
}

func (h *CatalogHandlers) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.content.Announcements(r.Context(), true)
	respondList(w, r, announcements, err)
}

func (h *CatalogHandlers) ListFeatureVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.content.FeatureVideos(r.Context(), true)
	respondList(w, r, videos, err)
}

// respondList writes items as a JSON array, never null
func respondList[T any](w http.ResponseWriter, r *http.Request, items []T, err error) {
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	respondJSON(w, http.StatusOK, items)
}
