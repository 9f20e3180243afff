package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/storefront/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProduct(t *testing.T, st Store, id string, stock int) {
	t.Helper()
	require.NoError(t, st.CreateProduct(context.Background(), &model.Product{
		ID:     id,
		Name:   "Product " + id,
		Slug:   "product-" + id,
		Price:  decimal.NewFromInt(100),
		Stock:  stock,
		Status: model.ProductActive,
		Sizes: []model.ProductSize{
			{Size: "M", Stock: stock},
		},
	}))
}

// ==========================================
// Transactions
// ==========================================

func TestMemoryStore_InTxRollsBackOnError(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	seedProduct(t, st, "p1", 5)

	boom := errors.New("boom")
	err := st.InTx(ctx, func(tx Store) error {
		require.NoError(t, tx.DecrementStock(ctx, "p1", "M", 2))
		require.NoError(t, tx.CreateReservation(ctx, &model.Reservation{
			ID: "r1", ProductID: "p1", UserID: "u1", Quantity: 1,
			Status: model.ReservationPending, ExpiresAt: time.Now().Add(time.Minute),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, 5, p.Sizes[0].Stock)

	_, err = st.GetReservation(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_InTxCommits(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	seedProduct(t, st, "p1", 5)

	err := st.InTx(ctx, func(tx Store) error {
		// nested InTx joins the outer transaction
		return tx.InTx(ctx, func(inner Store) error {
			return inner.DecrementStock(ctx, "p1", "", 3)
		})
	})
	require.NoError(t, err)

	p, err := st.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stock)
}

// ==========================================
// Products
// ==========================================

func TestMemoryStore_DecrementStock(t *testing.T) {
	tests := []struct {
		name    string
		size    string
		qty     int
		wantErr error
	}{
		{name: "product only", qty: 5},
		{name: "with size", size: "M", qty: 2},
		{name: "exceeds stock", qty: 6, wantErr: ErrStockExhausted},
		{name: "unknown size", size: "XXL", qty: 1, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := NewMemoryStore()
			seedProduct(t, st, "p1", 5)

			err := st.DecrementStock(context.Background(), "p1", tt.size, tt.qty)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				p, _ := st.GetProduct(context.Background(), "p1")
				assert.Equal(t, 5, p.Stock)
				return
			}
			require.NoError(t, err)
			p, _ := st.GetProduct(context.Background(), "p1")
			assert.Equal(t, 5-tt.qty, p.Stock)
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	st := NewMemoryStore()
	seedProduct(t, st, "p1", 5)

	p, err := st.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	p.Sizes[0].Stock = 99
	p.Stock = 99

	again, err := st.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.Stock)
	assert.Equal(t, 5, again.Sizes[0].Stock)
}

// ==========================================
// Uniqueness
// ==========================================

func TestMemoryStore_Uniqueness(t *testing.T) {
	ctx := context.Background()

	t.Run("product slug", func(t *testing.T) {
		st := NewMemoryStore()
		seedProduct(t, st, "p1", 1)
		err := st.CreateProduct(ctx, &model.Product{ID: "p2", Slug: "product-p1"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("user email ignores case", func(t *testing.T) {
		st := NewMemoryStore()
		require.NoError(t, st.CreateUser(ctx, &model.User{ID: "u1", Email: "asha@example.com"}))
		err := st.CreateUser(ctx, &model.User{ID: "u2", Email: "Asha@Example.com"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("coupon usage once per user", func(t *testing.T) {
		st := NewMemoryStore()
		require.NoError(t, st.RecordCouponUsage(ctx, &model.CouponUsage{ID: "x1", CouponID: "c1", UserID: "u1"}))
		err := st.RecordCouponUsage(ctx, &model.CouponUsage{ID: "x2", CouponID: "c1", UserID: "u1"})
		assert.ErrorIs(t, err, ErrConflict)

		used, err := st.HasCouponUsage(ctx, "c1", "u1")
		require.NoError(t, err)
		assert.True(t, used)
	})

	t.Run("payment id on one order", func(t *testing.T) {
		st := NewMemoryStore()
		require.NoError(t, st.CreateOrder(ctx, &model.Order{ID: "o1", GatewayOrderID: "g1"}))
		require.NoError(t, st.CreateOrder(ctx, &model.Order{ID: "o2", GatewayOrderID: "g2"}))
		require.NoError(t, st.UpdatePayment(ctx, "o1", model.OrderProcessing, model.PaymentCompleted, "pay_1"))

		err := st.UpdatePayment(ctx, "o2", model.OrderProcessing, model.PaymentCompleted, "pay_1")
		assert.ErrorIs(t, err, ErrConflict)
	})
}

// ==========================================
// Reservations
// ==========================================

func TestMemoryStore_ReservedQuantityAndExpiry(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	seedProduct(t, st, "p1", 10)
	now := time.Now()

	for _, r := range []model.Reservation{
		{ID: "live", ProductID: "p1", UserID: "u1", Quantity: 2, Status: model.ReservationPending, ExpiresAt: now.Add(time.Minute)},
		{ID: "lapsed", ProductID: "p1", UserID: "u2", Quantity: 3, Status: model.ReservationPending, ExpiresAt: now.Add(-time.Second)},
		{ID: "done", ProductID: "p1", UserID: "u3", Quantity: 4, Status: model.ReservationCompleted, ExpiresAt: now.Add(time.Minute)},
	} {
		require.NoError(t, st.CreateReservation(ctx, &r))
	}

	reserved, err := st.ReservedQuantity(ctx, "p1", now)
	require.NoError(t, err)
	assert.Equal(t, 2, reserved)

	n, err := st.ExpireReservations(ctx, "", now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	r, err := st.GetReservation(ctx, "lapsed")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationExpired, r.Status)

	require.NoError(t, st.CompleteReservations(ctx, "u1", []string{"p1"}))
	reserved, err = st.ReservedQuantity(ctx, "p1", now)
	require.NoError(t, err)
	assert.Zero(t, reserved)
}
