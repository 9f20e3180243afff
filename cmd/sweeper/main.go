package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/infrastructure/store"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("[Sweeper] DATABASE_URL environment variable is required")
	}

	log.Println("[Sweeper] ========================================")
	log.Println("[Sweeper] Storefront - Reservation Sweeper")
	log.Println("[Sweeper] ========================================")
	log.Printf("[Sweeper] Interval: %s", cfg.SweepInterval)

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Sweeper] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[Sweeper] Connected to PostgreSQL")

	inv := inventory.NewService(store.NewPostgresStore(db), cfg.ReservationTTL)

	go run(ctx, inv, cfg.SweepInterval)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Sweeper] Shutting down...")
	cancel()
}

// expirer is the part of the inventory service the sweeper drives
type expirer interface {
	ExpireStale(ctx context.Context) (int, error)
}

// run sweeps once immediately, then on every tick until ctx is done
func run(ctx context.Context, inv expirer, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		sweep(ctx, inv)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func sweep(ctx context.Context, inv expirer) {
	n, err := inv.ExpireStale(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("[Sweeper] Sweep failed: %v", err)
		}
		return
	}
	if n > 0 {
		log.Printf("[Sweeper] Expired %d lapsed reservations", n)
	}
}
