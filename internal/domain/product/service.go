package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/domain/category"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = domain.NotFound("product not found")
	ErrInvalidName     = domain.Invalid("name is required")
	ErrInvalidPrice    = domain.Invalid("price must not be negative")
	ErrInvalidStock    = domain.Invalid("stock must not be negative")
	ErrInvalidStatus   = domain.Invalid("status must be active or inactive")
	ErrDuplicateSize   = domain.Invalid("size labels must be unique")
	ErrInvalidSort     = domain.Invalid("unknown sort order")
	ErrSlugTaken       = domain.Conflict("product slug already in use")
)

// Input carries admin-editable product fields
type Input struct {
	Name          string
	Slug          string
	Description   string
	Price         decimal.Decimal
	Stock         int
	CategoryID    string
	SubCategoryID string
	Images        []string
	Status        model.ProductStatus
	Sizes         []SizeInput
}

type SizeInput struct {
	Size  string
	Price decimal.Decimal
	Stock int
}

// ListParams is a catalog query
type ListParams struct {
	Query           string
	CategoryID      string
	SubCategoryID   string
	MinPrice        decimal.Decimal
	MaxPrice        decimal.Decimal
	Sort            string
	Page            int
	Limit           int
	IncludeInactive bool
}

// Detail is a product with its current availability
type Detail struct {
	model.Product
	Available int `json:"available"`
}

type Service struct {
	store      store.Store
	categories *category.Service
	inventory  *inventory.Service
	now        func() time.Time
}

func NewService(st store.Store, categories *category.Service, inv *inventory.Service) *Service {
	return &Service{store: st, categories: categories, inventory: inv, now: time.Now}
}

// List returns one page of the catalog
func (s *Service) List(ctx context.Context, p ListParams) (domain.Page[model.Product], error) {
	switch p.Sort {
	case "", store.SortNewest, store.SortPriceAsc, store.SortPriceDesc, store.SortName:
	default:
		return domain.Page[model.Product]{}, ErrInvalidSort
	}

	page, limit, offset := domain.Paging(p.Page, p.Limit)
	f := store.ProductFilter{
		Query:         strings.TrimSpace(p.Query),
		CategoryID:    p.CategoryID,
		SubCategoryID: p.SubCategoryID,
		MinPrice:      p.MinPrice,
		MaxPrice:      p.MaxPrice,
		Sort:          p.Sort,
		Limit:         limit,
		Offset:        offset,
	}
	if !p.IncludeInactive {
		f.Status = model.ProductActive
	}

	items, total, err := s.store.ListProducts(ctx, f)
	if err != nil {
		return domain.Page[model.Product]{}, err
	}
	return domain.NewPage(items, total, page, limit), nil
}

// Get returns a product with availability. Inactive products are hidden unless includeInactive.
func (s *Service) Get(ctx context.Context, id string, includeInactive bool) (*Detail, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if p.Status != model.ProductActive && !includeInactive {
		return nil, ErrProductNotFound
	}
	available, err := s.inventory.Available(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Product: *p, Available: available}, nil
}

func (s *Service) validate(ctx context.Context, in *Input) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrInvalidName
	}
	if in.Slug == "" {
		in.Slug = category.GenerateSlug(in.Name)
	}
	if !category.ValidSlug(in.Slug) {
		return category.ErrInvalidSlug
	}
	if in.Price.IsNegative() {
		return ErrInvalidPrice
	}
	if in.Stock < 0 {
		return ErrInvalidStock
	}
	switch in.Status {
	case "":
		in.Status = model.ProductActive
	case model.ProductActive, model.ProductInactive:
	default:
		return ErrInvalidStatus
	}

	seen := make(map[string]bool, len(in.Sizes))
	for _, sz := range in.Sizes {
		if sz.Size == "" || seen[sz.Size] {
			return ErrDuplicateSize
		}
		seen[sz.Size] = true
		if sz.Stock < 0 {
			return ErrInvalidStock
		}
		if sz.Price.IsNegative() {
			return ErrInvalidPrice
		}
	}

	if in.CategoryID != "" {
		if _, err := s.categories.Get(ctx, in.CategoryID); err != nil {
			return err
		}
	}
	if in.SubCategoryID != "" {
		if err := s.categories.SubCategoryIn(ctx, in.CategoryID, in.SubCategoryID); err != nil {
			return err
		}
	}
	return nil
}

// apply copies input onto p. Aggregate stock follows the sizes when there are any.
func apply(p *model.Product, in Input) {
	p.Name = in.Name
	p.Slug = in.Slug
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
	p.SubCategoryID = in.SubCategoryID
	p.Images = in.Images
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Status = in.Status
	p.Sizes = make([]model.ProductSize, 0, len(in.Sizes))
	if len(in.Sizes) > 0 {
		p.Stock = 0
	}
	for _, sz := range in.Sizes {
		p.Sizes = append(p.Sizes, model.ProductSize{
			ProductID: p.ID,
			Size:      sz.Size,
			Price:     sz.Price,
			Stock:     sz.Stock,
		})
		p.Stock += sz.Stock
	}
}

func (s *Service) Create(ctx context.Context, in Input) (*model.Product, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	now := s.now()
	p := &model.Product{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	apply(p, in)

	if err := s.store.CreateProduct(ctx, p); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, id string, in Input) (*model.Product, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	apply(p, in)
	p.UpdatedAt = s.now()

	if err := s.store.UpdateProduct(ctx, p); err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			return nil, ErrSlugTaken
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.store.DeleteProduct(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	return err
}
