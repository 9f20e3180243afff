package store

import (
	"context"
	"fmt"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

const reviewColumns = `id, product_id, user_id, user_name, rating, comment, created_at`

func scanReview(row rowScanner) (*model.Review, error) {
	var r model.Review
	if err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.UserName, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) CreateReview(ctx context.Context, r *model.Review) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO reviews (`+reviewColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.ProductID, r.UserID, r.UserName, r.Rating, r.Comment, r.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) GetReview(ctx context.Context, id string) (*model.Review, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	r, err := scanReview(s.q.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
	return r, mapErr(err)
}

func (s *PostgresStore) ListReviews(ctx context.Context, productID string, limit, offset int) ([]model.Review, int, error) {
	clause := ""
	args := []any{}
	if productID != "" {
		clause = " WHERE product_id = $1"
		args = append(args, productID)
	}

	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	query := `SELECT ` + reviewColumns + ` FROM reviews` + clause + ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) DeleteReview(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return expectRows(s.q.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id))
}
