package category

import (
	"context"
	"testing"

	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCategoryService() *Service {
	return NewService(store.NewMemoryStore())
}

// ============================================
// Create Tests
// ============================================

func TestService_Create_GeneratesSlug(t *testing.T) {
	svc := newTestCategoryService()

	c, err := svc.Create(context.Background(), Input{Name: "Ethnic Wear", SortOrder: 2})

	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "ethnic-wear", c.Slug)
	assert.Equal(t, 2, c.SortOrder)
}

func TestService_Create_Validation(t *testing.T) {
	svc := newTestCategoryService()

	tests := []struct {
		name    string
		input   Input
		wantErr error
	}{
		{"empty name", Input{Name: "  "}, ErrInvalidName},
		{"bad slug", Input{Name: "Shoes", Slug: "Bad Slug"}, ErrInvalidSlug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_Create_DuplicateSlug(t *testing.T) {
	svc := newTestCategoryService()
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: "Shoes"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Input{Name: "shoes"})
	assert.ErrorIs(t, err, ErrSlugTaken)
}

// ============================================
// Update / Delete Tests
// ============================================

func TestService_UpdateAndDelete(t *testing.T) {
	svc := newTestCategoryService()
	ctx := context.Background()

	c, err := svc.Create(ctx, Input{Name: "Shoes"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, c.ID, Input{Name: "Footwear", Description: "All shoes"})
	require.NoError(t, err)
	assert.Equal(t, "footwear", updated.Slug)

	got, err := svc.GetBySlug(ctx, "footwear")
	require.NoError(t, err)
	assert.Equal(t, "All shoes", got.Description)

	_, err = svc.Update(ctx, "missing", Input{Name: "X"})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	require.NoError(t, svc.Delete(ctx, c.ID))
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), ErrCategoryNotFound)
}

// ============================================
// SubCategory Tests
// ============================================

func TestService_SubCategories(t *testing.T) {
	svc := newTestCategoryService()
	ctx := context.Background()

	women, err := svc.Create(ctx, Input{Name: "Women"})
	require.NoError(t, err)
	men, err := svc.Create(ctx, Input{Name: "Men"})
	require.NoError(t, err)

	kurtas, err := svc.CreateSubCategory(ctx, women.ID, "Kurtas", "")
	require.NoError(t, err)
	assert.Equal(t, "kurtas", kurtas.Slug)

	_, err = svc.CreateSubCategory(ctx, "missing", "Kurtas", "")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	got, err := svc.Get(ctx, women.ID)
	require.NoError(t, err)
	require.Len(t, got.SubCategories, 1)
	assert.Equal(t, kurtas.ID, got.SubCategories[0].ID)

	assert.NoError(t, svc.SubCategoryIn(ctx, women.ID, kurtas.ID))
	assert.ErrorIs(t, svc.SubCategoryIn(ctx, men.ID, kurtas.ID), ErrSubCategoryNotFound)

	renamed, err := svc.UpdateSubCategory(ctx, kurtas.ID, "Kurta Sets", "")
	require.NoError(t, err)
	assert.Equal(t, "kurta-sets", renamed.Slug)

	require.NoError(t, svc.DeleteSubCategory(ctx, kurtas.ID))
	assert.ErrorIs(t, svc.DeleteSubCategory(ctx, kurtas.ID), ErrSubCategoryNotFound)
}

// ============================================
// Slug Tests
// ============================================

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Electronics", "electronics"},
		{"Home & Garden", "home-garden"},
		{"Men's Clothing", "mens-clothing"},
		{"  spaced  out  ", "spaced-out"},
		{"snake_case_name", "snake-case-name"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, GenerateSlug(tt.input))
		})
	}
}

func TestSlugRegex(t *testing.T) {
	validSlugs := []string{"a", "abc", "abc-def", "a1b2c3", "multi-word-slug"}
	invalidSlugs := []string{"", "-", "-abc", "abc-", "abc--def", "ABC", "abc def", "abc_def", "abc.def"}

	for _, slug := range validSlugs {
		t.Run("valid: "+slug, func(t *testing.T) {
			assert.True(t, ValidSlug(slug), "Expected %s to be valid", slug)
		})
	}

	for _, slug := range invalidSlugs {
		t.Run("invalid: "+slug, func(t *testing.T) {
			assert.False(t, ValidSlug(slug), "Expected %s to be invalid", slug)
		})
	}
}
