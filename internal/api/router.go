package api

import (
	"net/http"
	"time"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RouterConfig holds the handler groups and shared settings
type RouterConfig struct {
	Handlers        *Handlers
	AuthHandlers    *AuthHandlers
	CatalogHandlers *CatalogHandlers
	AdminHandlers   *AdminHandlers
	JWTService      *auth.JWTService
	// Accounts re-checks the account behind each session; nil trusts the token alone
	Accounts       middleware.Accounts
	RequestTimeout time.Duration
	// AccessLog enables chi's request logger
	AccessLog bool
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP)
	if cfg.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	requireAuth := middleware.NewSessions(cfg.JWTService, cfg.Accounts).Require
	h, ah, ch, adm := cfg.Handlers, cfg.AuthHandlers, cfg.CatalogHandlers, cfg.AdminHandlers

	r.Route("/api", func(r chi.Router) {
		// Auth
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)
		r.Post("/auth/logout", ah.Logout)
		r.With(requireAuth).Get("/auth/me", ah.Me)
		r.With(requireAuth).Put("/auth/me", ah.UpdateProfile)
		r.With(requireAuth).Post("/auth/password", ah.ChangePassword)

		// Catalog
		r.Get("/products", ch.ListProducts)
		r.Get("/products/{id}", ch.GetProduct)
		r.Get("/products/{id}/reviews", ch.ListReviews)
		r.With(requireAuth).Post("/products/{id}/reviews", ch.CreateReview)
		r.Get("/categories", ch.ListCategories)
		r.Get("/categories/{slug}", ch.GetCategory)
		r.Get("/banners", ch.ListBanners)
		r.Get("/announcements", ch.ListAnnouncements)
		r.Get("/feature-videos", ch.ListFeatureVideos)

		// Enquiries
		r.Post("/contact", h.Contact)
		r.Post("/bulk-orders", h.BulkOrder)

		// Customer
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/cart", h.GetCart)
			r.Delete("/cart", h.ClearCart)
			r.Post("/cart/items", h.AddToCart)
			r.Put("/cart/items/{productID}", h.UpdateCartItem)
			r.Delete("/cart/items/{productID}", h.RemoveFromCart)

			r.Get("/reservations", h.ListReservations)
			r.Post("/reservations", h.CreateReservation)
			r.Delete("/reservations/{id}", h.CancelReservation)

			r.Post("/checkout/reserve", h.ReserveCheckout)
			r.Post("/coupons/validate", h.ValidateCoupon)
			r.Post("/payments/order", h.CreatePaymentOrder)
			r.Post("/payments/verify", h.VerifyPayment)

			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{id}", h.GetOrder)

			r.Get("/addresses", ah.ListAddresses)
			r.Post("/addresses", ah.CreateAddress)
			r.Get("/addresses/{id}", ah.GetAddress)
			r.Put("/addresses/{id}", ah.UpdateAddress)
			r.Delete("/addresses/{id}", ah.DeleteAddress)
		})

		// Back office
		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", ah.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth, middleware.RequireAdmin)

				r.Get("/dashboard", adm.Dashboard)
				r.Post("/dashboard/refresh", adm.RefreshDashboard)

				r.Get("/products", adm.ListProducts)
				r.Post("/products", adm.CreateProduct)
				r.Get("/products/{id}", adm.GetProduct)
				r.Put("/products/{id}", adm.UpdateProduct)
				r.Delete("/products/{id}", adm.DeleteProduct)

				r.Get("/categories", ch.ListCategories)
				r.Post("/categories", adm.CreateCategory)
				r.Put("/categories/{id}", adm.UpdateCategory)
				r.Delete("/categories/{id}", adm.DeleteCategory)
				r.Post("/categories/{id}/subcategories", adm.CreateSubCategory)
				r.Put("/subcategories/{id}", adm.UpdateSubCategory)
				r.Delete("/subcategories/{id}", adm.DeleteSubCategory)

				r.Get("/coupons", adm.ListCoupons)
				r.Post("/coupons", adm.CreateCoupon)
				r.Get("/coupons/{id}", adm.GetCoupon)
				r.Put("/coupons/{id}", adm.UpdateCoupon)
				r.Delete("/coupons/{id}", adm.DeleteCoupon)

				r.Get("/banners", adm.ListBanners)
				r.Post("/banners", adm.SaveBanner)
				r.Put("/banners/{id}", adm.SaveBanner)
				r.Delete("/banners/{id}", adm.DeleteBanner)

				r.Get("/announcements", adm.ListAnnouncements)
				r.Post("/announcements", adm.SaveAnnouncement)
				r.Put("/announcements/{id}", adm.SaveAnnouncement)
				r.Delete("/announcements/{id}", adm.DeleteAnnouncement)

				r.Get("/feature-videos", adm.ListFeatureVideos)
				r.Post("/feature-videos", adm.SaveFeatureVideo)
				r.Put("/feature-videos/{id}", adm.SaveFeatureVideo)
				r.Delete("/feature-videos/{id}", adm.DeleteFeatureVideo)

				r.Get("/orders", adm.ListOrders)
				r.Get("/orders/{id}", adm.GetOrder)
				r.Put("/orders/{id}/status", adm.UpdateOrderStatus)

				r.Get("/customers", adm.ListCustomers)
				r.Put("/customers/{id}/active", adm.SetCustomerActive)

				r.Get("/reviews", adm.ListReviews)
				r.Delete("/reviews/{id}", adm.DeleteReview)

				r.Get("/notifications", adm.ListNotifications)
				r.Put("/notifications/read", adm.MarkAllNotificationsRead)
				r.Put("/notifications/{id}/read", adm.MarkNotificationRead)
			})
		})
	})

	return r
}
