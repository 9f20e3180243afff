package product

import (
	"context"
	"testing"
	"time"

	"github.com/example/storefront/internal/domain/category"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProductService() (*Service, *category.Service, *inventory.Service) {
	st := store.NewMemoryStore()
	categories := category.NewService(st)
	inv := inventory.NewService(st, inventory.DefaultReservationTTL)
	return NewService(st, categories, inv), categories, inv
}

func price(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// ============================================
// Create Tests
// ============================================

func TestService_Create_WithSizes(t *testing.T) {
	svc, _, _ := newTestProductService()

	p, err := svc.Create(context.Background(), Input{
		Name:  "Cotton Kurta",
		Price: price(1200),
		Stock: 99,
		Sizes: []SizeInput{
			{Size: "S", Stock: 3},
			{Size: "M", Stock: 4, Price: price(1300)},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "cotton-kurta", p.Slug)
	assert.Equal(t, model.ProductActive, p.Status)
	assert.Equal(t, 7, p.Stock, "aggregate stock follows sizes")
	assert.True(t, price(1300).Equal(p.UnitPrice("M")))
	assert.True(t, price(1200).Equal(p.UnitPrice("S")))
}

func TestService_Create_Validation(t *testing.T) {
	svc, _, _ := newTestProductService()

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{"missing name", Input{Price: price(10)}, ErrInvalidName},
		{"negative price", Input{Name: "A", Price: price(-1)}, ErrInvalidPrice},
		{"negative stock", Input{Name: "A", Stock: -1}, ErrInvalidStock},
		{"bad status", Input{Name: "A", Status: "archived"}, ErrInvalidStatus},
		{"duplicate size", Input{Name: "A", Sizes: []SizeInput{{Size: "M"}, {Size: "M"}}}, ErrDuplicateSize},
		{"unknown category", Input{Name: "A", CategoryID: "missing"}, category.ErrCategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Create_SubCategoryMustMatchCategory(t *testing.T) {
	svc, categories, _ := newTestProductService()
	ctx := context.Background()

	women, err := categories.Create(ctx, category.Input{Name: "Women"})
	require.NoError(t, err)
	men, err := categories.Create(ctx, category.Input{Name: "Men"})
	require.NoError(t, err)
	sarees, err := categories.CreateSubCategory(ctx, women.ID, "Sarees", "")
	require.NoError(t, err)

	_, err = svc.Create(ctx, Input{Name: "Silk Saree", CategoryID: men.ID, SubCategoryID: sarees.ID})
	assert.ErrorIs(t, err, category.ErrSubCategoryNotFound)

	p, err := svc.Create(ctx, Input{Name: "Silk Saree", CategoryID: women.ID, SubCategoryID: sarees.ID})
	require.NoError(t, err)
	assert.Equal(t, sarees.ID, p.SubCategoryID)
}

// ============================================
// Query Tests
// ============================================

func seedCatalog(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []Input{
		{Name: "Blue Denim Jacket", Price: price(2500), Stock: 5},
		{Name: "Red Scarf", Price: price(400), Stock: 10},
		{Name: "Leather Belt", Price: price(900), Stock: 2},
		{Name: "Hidden Hat", Price: price(300), Stock: 1, Status: model.ProductInactive},
	}
	for i, in := range items {
		svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}
	svc.now = time.Now
}

func TestService_List(t *testing.T) {
	svc, _, _ := newTestProductService()
	seedCatalog(t, svc)
	ctx := context.Background()

	tests := []struct {
		name      string
		params    ListParams
		wantNames []string
		wantTotal int
	}{
		{
			name:      "newest first, active only",
			params:    ListParams{},
			wantNames: []string{"Leather Belt", "Red Scarf", "Blue Denim Jacket"},
			wantTotal: 3,
		},
		{
			name:      "price ascending",
			params:    ListParams{Sort: "price_asc"},
			wantNames: []string{"Red Scarf", "Leather Belt", "Blue Denim Jacket"},
			wantTotal: 3,
		},
		{
			name:      "search",
			params:    ListParams{Query: "scarf"},
			wantNames: []string{"Red Scarf"},
			wantTotal: 1,
		},
		{
			name:      "price window",
			params:    ListParams{MinPrice: price(500), MaxPrice: price(2000)},
			wantNames: []string{"Leather Belt"},
			wantTotal: 1,
		},
		{
			name:      "second page",
			params:    ListParams{Sort: "name", Page: 2, Limit: 2},
			wantNames: []string{"Red Scarf"},
			wantTotal: 3,
		},
		{
			name:      "admin sees inactive",
			params:    ListParams{IncludeInactive: true, Sort: "price_asc", Limit: 1},
			wantNames: []string{"Hidden Hat"},
			wantTotal: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.List(ctx, tt.params)
			require.NoError(t, err)

			names := make([]string, len(page.Items))
			for i, p := range page.Items {
				names[i] = p.Name
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, tt.wantTotal, page.Total)
		})
	}
}

func TestService_List_InvalidSort(t *testing.T) {
	svc, _, _ := newTestProductService()

	_, err := svc.List(context.Background(), ListParams{Sort: "random"})

	assert.ErrorIs(t, err, ErrInvalidSort)
}

func TestService_Get_ReportsAvailability(t *testing.T) {
	svc, _, inv := newTestProductService()
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{Name: "Red Scarf", Price: price(400), Stock: 10})
	require.NoError(t, err)
	_, err = inv.Reserve(ctx, "user-1", p.ID, 3)
	require.NoError(t, err)

	detail, err := svc.Get(ctx, p.ID, false)

	require.NoError(t, err)
	assert.Equal(t, 10, detail.Stock)
	assert.Equal(t, 7, detail.Available)
}

func TestService_Get_HidesInactive(t *testing.T) {
	svc, _, _ := newTestProductService()
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{Name: "Hidden Hat", Status: model.ProductInactive})
	require.NoError(t, err)

	_, err = svc.Get(ctx, p.ID, false)
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Get(ctx, p.ID, true)
	assert.NoError(t, err)
}

// ============================================
// Update / Delete Tests
// ============================================

func TestService_UpdateAndDelete(t *testing.T) {
	svc, _, _ := newTestProductService()
	ctx := context.Background()

	p, err := svc.Create(ctx, Input{Name: "Red Scarf", Price: price(400), Stock: 10})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: "Blue Scarf", Price: price(400), Stock: 10})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ID, Input{Name: "Crimson Scarf", Price: price(450), Stock: 8})
	require.NoError(t, err)
	assert.Equal(t, "crimson-scarf", updated.Slug)
	assert.Equal(t, p.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(ctx, p.ID, Input{Name: "Blue Scarf"})
	assert.ErrorIs(t, err, ErrSlugTaken)

	_, err = svc.Update(ctx, "missing", Input{Name: "X"})
	assert.ErrorIs(t, err, ErrProductNotFound)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), ErrProductNotFound)
}
