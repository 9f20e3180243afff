package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const productColumns = `id, name, slug, description, price, stock, category_id, subcategory_id, images, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p             model.Product
		categoryID    sql.NullString
		subCategoryID sql.NullString
	)
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.Stock,
		&categoryID, &subCategoryID, pq.Array(&p.Images), &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CategoryID = categoryID.String
	p.SubCategoryID = subCategoryID.String
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Sizes = []model.ProductSize{}
	return &p, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, int, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	if f.CategoryID != "" {
		where = append(where, "category_id = "+arg(f.CategoryID))
	}
	if f.SubCategoryID != "" {
		where = append(where, "subcategory_id = "+arg(f.SubCategoryID))
	}
	if f.Query != "" {
		p := arg("%" + f.Query + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s)", p, p))
	}
	if f.MinPrice.IsPositive() {
		where = append(where, "price >= "+arg(f.MinPrice))
	}
	if f.MaxPrice.IsPositive() {
		where = append(where, "price <= "+arg(f.MaxPrice))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM products"+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	switch f.Sort {
	case SortPriceAsc:
		order = "price ASC"
	case SortPriceDesc:
		order = "price DESC"
	case SortName:
		order = "name ASC"
	}

	query := "SELECT " + productColumns + " FROM products" + clause + " ORDER BY " + order + ", id"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}
	if f.Offset > 0 {
		query += " OFFSET " + arg(f.Offset)
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.attachSizes(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (s *PostgresStore) attachSizes(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		ids[i] = p.ID
		index[p.ID] = i
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT id, product_id, size, price, stock FROM product_sizes WHERE product_id = ANY($1) ORDER BY size`,
		pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var sz model.ProductSize
		if err := rows.Scan(&sz.ID, &sz.ProductID, &sz.Size, &sz.Price, &sz.Stock); err != nil {
			return err
		}
		i := index[sz.ProductID]
		products[i].Sizes = append(products[i].Sizes, sz)
	}
	return rows.Err()
}

func (s *PostgresStore) getProduct(ctx context.Context, id, suffix string) (*model.Product, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1"+suffix, id)
	p, err := scanProduct(row)
	if err != nil {
		return nil, mapErr(err)
	}
	list := []model.Product{*p}
	if err := s.attachSizes(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.getProduct(ctx, id, "")
}

func (s *PostgresStore) LockProduct(ctx context.Context, id string) (*model.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.getProduct(ctx, id, s.lockClause())
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p *model.Product) error {
	return s.InTx(ctx, func(tx Store) error {
		pg := tx.(*PostgresStore)
		_, err := pg.q.ExecContext(ctx,
			`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			p.ID, p.Name, p.Slug, p.Description, p.Price, p.Stock,
			nullString(p.CategoryID), nullString(p.SubCategoryID), pq.Array(p.Images), string(p.Status),
			p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return mapErr(err)
		}
		return pg.insertSizes(ctx, p)
	})
}

func (s *PostgresStore) insertSizes(ctx context.Context, p *model.Product) error {
	for i := range p.Sizes {
		sz := &p.Sizes[i]
		if sz.ID == "" {
			sz.ID = uuid.New().String()
		}
		sz.ProductID = p.ID
		_, err := s.q.ExecContext(ctx,
			`INSERT INTO product_sizes (id, product_id, size, price, stock) VALUES ($1, $2, $3, $4, $5)`,
			sz.ID, sz.ProductID, sz.Size, sz.Price, sz.Stock)
		if err != nil {
			return mapErr(err)
		}
	}
	return nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p *model.Product) error {
	return s.InTx(ctx, func(tx Store) error {
		pg := tx.(*PostgresStore)
		res, err := pg.q.ExecContext(ctx,
			`UPDATE products SET name = $2, slug = $3, description = $4, price = $5, stock = $6,
			        category_id = $7, subcategory_id = $8, images = $9, status = $10, updated_at = $11
			  WHERE id = $1`,
			p.ID, p.Name, p.Slug, p.Description, p.Price, p.Stock,
			nullString(p.CategoryID), nullString(p.SubCategoryID), pq.Array(p.Images), string(p.Status), p.UpdatedAt)
		if err := expectRows(res, err); err != nil {
			return err
		}
		if _, err := pg.q.ExecContext(ctx, `DELETE FROM product_sizes WHERE product_id = $1`, p.ID); err != nil {
			return err
		}
		return pg.insertSizes(ctx, p)
	})
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return expectRows(s.q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id))
}

func (s *PostgresStore) DecrementStock(ctx context.Context, productID, size string, qty int) error {
	return s.InTx(ctx, func(tx Store) error {
		pg := tx.(*PostgresStore)
		if size != "" {
			res, err := pg.q.ExecContext(ctx,
				`UPDATE product_sizes SET stock = stock - $3 WHERE product_id = $1 AND size = $2 AND stock >= $3`,
				productID, size, qty)
			if err := expectRows(res, err); err != nil {
				if err == ErrNotFound {
					return pg.stockMissOrNotFound(ctx, productID, size)
				}
				return err
			}
		}
		res, err := pg.q.ExecContext(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = $3 WHERE id = $1 AND stock >= $2`,
			productID, qty, time.Now())
		if err := expectRows(res, err); err != nil {
			if err == ErrNotFound {
				return pg.stockMissOrNotFound(ctx, productID, "")
			}
			return err
		}
		return nil
	})
}

// stockMissOrNotFound tells a missing row apart from a failed stock guard
func (s *PostgresStore) stockMissOrNotFound(ctx context.Context, productID, size string) error {
	var exists bool
	var err error
	if size != "" {
		err = s.q.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM product_sizes WHERE product_id = $1 AND size = $2)`, productID, size).Scan(&exists)
	} else {
		err = s.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	}
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStockExhausted
}
