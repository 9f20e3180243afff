package category

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

var (
	ErrCategoryNotFound    = domain.NotFound("category not found")
	ErrSubCategoryNotFound = domain.NotFound("subcategory not found")
	ErrInvalidName         = domain.Invalid("name is required")
	ErrInvalidSlug         = domain.Invalid("invalid slug format")
	ErrSlugTaken           = domain.Conflict("slug already in use")
)

// Input carries editable category fields
type Input struct {
	Name        string
	Slug        string
	Description string
	ImageURL    string
	SortOrder   int
}

// Service handles category and subcategory operations
type Service struct {
	store store.Store
}

// NewService creates a new category service
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

func resolveSlug(name, slug string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	// Generate slug from name if not provided
	if slug == "" {
		slug = GenerateSlug(name)
	}
	if !ValidSlug(slug) {
		return "", ErrInvalidSlug
	}
	return slug, nil
}

func mapStoreErr(err error, notFound error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFound
	case errors.Is(err, store.ErrConflict):
		return ErrSlugTaken
	}
	return err
}

// List returns every category with its subcategories
func (s *Service) List(ctx context.Context) ([]model.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*model.Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, ErrCategoryNotFound)
	}
	return c, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	c, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, mapStoreErr(err, ErrCategoryNotFound)
	}
	return c, nil
}

// Create creates a new category
func (s *Service) Create(ctx context.Context, in Input) (*model.Category, error) {
	slug, err := resolveSlug(in.Name, in.Slug)
	if err != nil {
		return nil, err
	}
	c := &model.Category{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(in.Name),
		Slug:          slug,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		SortOrder:     in.SortOrder,
		SubCategories: []model.SubCategory{},
		CreatedAt:     time.Now(),
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, mapStoreErr(err, ErrCategoryNotFound)
	}
	return c, nil
}

// Update updates an existing category
func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Category, error) {
	slug, err := resolveSlug(in.Name, in.Slug)
	if err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Slug = slug
	c.Description = in.Description
	c.ImageURL = in.ImageURL
	c.SortOrder = in.SortOrder
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, mapStoreErr(err, ErrCategoryNotFound)
	}
	return c, nil
}

// Delete removes a category and its subcategories
func (s *Service) Delete(ctx context.Context, id string) error {
	return mapStoreErr(s.store.DeleteCategory(ctx, id), ErrCategoryNotFound)
}

func (s *Service) CreateSubCategory(ctx context.Context, categoryID, name, slug string) (*model.SubCategory, error) {
	slug, err := resolveSlug(name, slug)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, categoryID); err != nil {
		return nil, err
	}
	sc := &model.SubCategory{
		ID:         uuid.New().String(),
		CategoryID: categoryID,
		Name:       strings.TrimSpace(name),
		Slug:       slug,
		CreatedAt:  time.Now(),
	}
	if err := s.store.CreateSubCategory(ctx, sc); err != nil {
		return nil, mapStoreErr(err, ErrCategoryNotFound)
	}
	return sc, nil
}

func (s *Service) UpdateSubCategory(ctx context.Context, id, name, slug string) (*model.SubCategory, error) {
	slug, err := resolveSlug(name, slug)
	if err != nil {
		return nil, err
	}
	sc, err := s.store.GetSubCategory(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err, ErrSubCategoryNotFound)
	}
	sc.Name = strings.TrimSpace(name)
	sc.Slug = slug
	if err := s.store.UpdateSubCategory(ctx, sc); err != nil {
		return nil, mapStoreErr(err, ErrSubCategoryNotFound)
	}
	return sc, nil
}

func (s *Service) DeleteSubCategory(ctx context.Context, id string) error {
	return mapStoreErr(s.store.DeleteSubCategory(ctx, id), ErrSubCategoryNotFound)
}

// SubCategoryIn checks that subCategoryID belongs to categoryID
func (s *Service) SubCategoryIn(ctx context.Context, categoryID, subCategoryID string) error {
	sc, err := s.store.GetSubCategory(ctx, subCategoryID)
	if err != nil {
		return mapStoreErr(err, ErrSubCategoryNotFound)
	}
	if sc.CategoryID != categoryID {
		return ErrSubCategoryNotFound
	}
	return nil
}
