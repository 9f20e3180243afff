package store

import (
	"context"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

const categoryColumns = `id, name, slug, description, image_url, sort_order, created_at`

func scanCategory(row rowScanner) (*model.Category, error) {
	var c model.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL, &c.SortOrder, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.SubCategories = []model.SubCategory{}
	return &c, nil
}

func (s *PostgresStore) subCategoriesByCategory(ctx context.Context, categoryID string) (map[string][]model.SubCategory, error) {
	query := `SELECT id, category_id, name, slug, created_at FROM subcategories`
	var args []any
	if categoryID != "" {
		query += ` WHERE category_id = $1`
		args = append(args, categoryID)
	}
	rows, err := s.q.QueryContext(ctx, query+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]model.SubCategory)
	for rows.Next() {
		var sc model.SubCategory
		if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Slug, &sc.CreatedAt); err != nil {
			return nil, err
		}
		out[sc.CategoryID] = append(out[sc.CategoryID], sc)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subs, err := s.subCategoriesByCategory(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if sc, ok := subs[categories[i].ID]; ok {
			categories[i].SubCategories = sc
		}
	}
	return categories, nil
}

func (s *PostgresStore) categoryWhere(ctx context.Context, column, value string) (*model.Category, error) {
	c, err := scanCategory(s.q.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE `+column+` = $1`, value))
	if err != nil {
		return nil, mapErr(err)
	}
	subs, err := s.subCategoriesByCategory(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if sc, ok := subs[c.ID]; ok {
		c.SubCategories = sc
	}
	return c, nil
}

func (s *PostgresStore) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.categoryWhere(ctx, "id", id)
}

func (s *PostgresStore) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return s.categoryWhere(ctx, "slug", slug)
}

func (s *PostgresStore) CreateCategory(ctx context.Context, c *model.Category) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.SortOrder, c.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, c *model.Category) error {
	return expectRows(s.q.ExecContext(ctx,
		`UPDATE categories SET name = $2, slug = $3, description = $4, image_url = $5, sort_order = $6 WHERE id = $1`,
		c.ID, c.Name, c.Slug, c.Description, c.ImageURL, c.SortOrder))
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return expectRows(s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id))
}

func (s *PostgresStore) GetSubCategory(ctx context.Context, id string) (*model.SubCategory, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var sc model.SubCategory
	err := s.q.QueryRowContext(ctx,
		`SELECT id, category_id, name, slug, created_at FROM subcategories WHERE id = $1`, id,
	).Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Slug, &sc.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &sc, nil
}

func (s *PostgresStore) CreateSubCategory(ctx context.Context, sc *model.SubCategory) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO subcategories (id, category_id, name, slug, created_at) VALUES ($1, $2, $3, $4, $5)`,
		sc.ID, sc.CategoryID, sc.Name, sc.Slug, sc.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) UpdateSubCategory(ctx context.Context, sc *model.SubCategory) error {
	return expectRows(s.q.ExecContext(ctx,
		`UPDATE subcategories SET category_id = $2, name = $3, slug = $4 WHERE id = $1`,
		sc.ID, sc.CategoryID, sc.Name, sc.Slug))
}

func (s *PostgresStore) DeleteSubCategory(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return expectRows(s.q.ExecContext(ctx, `DELETE FROM subcategories WHERE id = $1`, id))
}
