package store

import (
	"context"
	"time"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const reservationColumns = `id, product_id, user_id, quantity, status, expires_at, created_at`

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var r model.Reservation
	if err := row.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Quantity, &r.Status, &r.ExpiresAt, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *PostgresStore) ExpireReservations(ctx context.Context, productID string, now time.Time) (int, error) {
	query := `UPDATE product_reservations SET status = 'expired' WHERE status = 'pending' AND expires_at <= $1`
	args := []any{now}
	if productID != "" {
		query += ` AND product_id = $2`
		args = append(args, productID)
	}
	res, err := s.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *PostgresStore) ReservedQuantity(ctx context.Context, productID string, now time.Time) (int, error) {
	var total int
	err := s.q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM product_reservations
		  WHERE product_id = $1 AND status = 'pending' AND expires_at > $2`,
		productID, now,
	).Scan(&total)
	return total, err
}

func (s *PostgresStore) CreateReservation(ctx context.Context, r *model.Reservation) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO product_reservations (`+reservationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.ProductID, r.UserID, r.Quantity, string(r.Status), r.ExpiresAt, r.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) GetReservation(ctx context.Context, id string) (*model.Reservation, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	r, err := scanReservation(s.q.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM product_reservations WHERE id = $1`+s.lockClause(), id))
	if err != nil {
		return nil, mapErr(err)
	}
	return r, nil
}

func (s *PostgresStore) UpdateReservationStatus(ctx context.Context, id string, status model.ReservationStatus) error {
	return expectRows(s.q.ExecContext(ctx,
		`UPDATE product_reservations SET status = $2 WHERE id = $1`, id, string(status)))
}

func (s *PostgresStore) CompleteReservations(ctx context.Context, userID string, productIDs []string) error {
	_, err := s.q.ExecContext(ctx,
		`UPDATE product_reservations SET status = 'completed'
		  WHERE user_id = $1 AND status = 'pending' AND product_id = ANY($2)`,
		userID, pq.Array(productIDs))
	return err
}

func (s *PostgresStore) ListUserReservations(ctx context.Context, userID string) ([]model.Reservation, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+reservationColumns+` FROM product_reservations WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}
