package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/config"
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
	"github.com/example/storefront/internal/infrastructure/cache"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/payment"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/notification"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[API] Invalid configuration: %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Storefront API")
	log.Println("[API] ========================================")

	// Persistence
	var st store.Store
	if cfg.DatabaseURL == "" {
		log.Println("[API] DATABASE_URL not set, using in-memory store (data is lost on restart)")
		st = store.NewMemoryStore()
	} else {
		db, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
		}
		defer closeDB(db)
		if err := store.RunMigrations(db); err != nil {
			log.Fatalf("[API] Failed to run migrations: %v", err)
		}
		log.Println("[API] Connected to PostgreSQL, migrations applied")
		st = store.NewPostgresStore(db)
	}

	// Optional Redis: dashboard cache and payment verification lock
	var (
		statsCache cache.StatsCache
		locker     order.Locker
	)
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("[API] Failed to connect to Redis: %v", err)
		}
		defer client.Close()
		rc := cache.NewRedisCache(client, cache.DefaultStatsTTL)
		statsCache, locker = rc, rc
		log.Printf("[API] Redis: %s", cfg.RedisAddr)
	}

	gateway, err := payment.NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	if err != nil {
		log.Fatalf("[API] Payment gateway: %v", err)
	}

	emailSvc := email.NewService(email.Config{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.SMTPUsername,
		Password:   cfg.SMTPPassword,
		From:       cfg.SMTPFrom,
		AdminEmail: cfg.AdminEmail,
	})

	// Order confirmations go through Kafka when configured, otherwise straight to SMTP
	var notifier order.Notifier
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		notifier = notification.NewEventPublisher(producer)
		log.Printf("[API] Kafka: %v (topic %s)", cfg.KafkaBrokers, cfg.KafkaTopic)
	} else {
		notifier = notification.NewEmailNotifier(emailSvc)
		log.Println("[API] Kafka not configured, sending confirmation emails directly")
	}

	// Domain services
	userSvc := user.NewService(st)
	categorySvc := category.NewService(st)
	inventorySvc := inventory.NewService(st, cfg.ReservationTTL)
	productSvc := product.NewService(st, categorySvc, inventorySvc)
	cartSvc := cart.NewService(st)
	couponSvc := coupon.NewService(st)
	orderSvc := order.NewService(st, inventorySvc, couponSvc, userSvc, gateway, notifier, locker, cfg.Currency)
	reviewSvc := review.NewService(st)
	contentSvc := content.NewService(st)
	adminSvc := admin.NewService(st, statsCache, cfg.LowStockThreshold)
	enquirySvc := enquiry.NewService(st, emailSvc)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminName); err != nil {
			log.Fatalf("[API] Failed to bootstrap admin: %v", err)
		}
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.StorefrontSessionTTL, cfg.AdminSessionTTL)

	router := api.NewRouter(api.RouterConfig{
		Handlers:        api.NewHandlers(cartSvc, inventorySvc, orderSvc, couponSvc, enquirySvc, gateway.KeyID()),
		AuthHandlers:    api.NewAuthHandlers(userSvc, jwtService, cfg.CookieSecure),
		CatalogHandlers: api.NewCatalogHandlers(productSvc, categorySvc, reviewSvc, contentSvc),
		AdminHandlers: api.NewAdminHandlers(api.AdminServices{
			Admin:      adminSvc,
			Products:   productSvc,
			Categories: categorySvc,
			Coupons:    couponSvc,
			Content:    contentSvc,
			Orders:     orderSvc,
			Users:      userSvc,
			Reviews:    reviewSvc,
		}),
		JWTService: jwtService,
		Accounts:   userSvc,
		AccessLog:  true,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[API] Shutdown error: %v", err)
	}
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		log.Printf("[API] Error closing database: %v", err)
	}
}
