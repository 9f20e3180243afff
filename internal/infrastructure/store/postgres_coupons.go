package store

import (
	"context"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

const couponColumns = `id, code, description, discount_type, discount_value, min_purchase, max_discount,
	start_date, end_date, is_active, created_at`

func scanCoupon(row rowScanner) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.ID, &c.Code, &c.Description, &c.DiscountType, &c.DiscountValue, &c.MinPurchase, &c.MaxDiscount,
		&c.StartDate, &c.EndDate, &c.IsActive, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+couponColumns+` FROM coupons ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Coupon{}
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetCoupon(ctx context.Context, id string) (*model.Coupon, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	c, err := scanCoupon(s.q.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	return c, mapErr(err)
}

func (s *PostgresStore) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	c, err := scanCoupon(s.q.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons WHERE UPPER(code) = UPPER($1)`, code))
	return c, mapErr(err)
}

func (s *PostgresStore) CreateCoupon(ctx context.Context, c *model.Coupon) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO coupons (`+couponColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.Code, c.Description, string(c.DiscountType), c.DiscountValue, c.MinPurchase, c.MaxDiscount,
		c.StartDate, c.EndDate, c.IsActive, c.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) UpdateCoupon(ctx context.Context, c *model.Coupon) error {
	return expectRows(s.q.ExecContext(ctx,
		`UPDATE coupons SET code = $2, description = $3, discount_type = $4, discount_value = $5,
		        min_purchase = $6, max_discount = $7, start_date = $8, end_date = $9, is_active = $10
		  WHERE id = $1`,
		c.ID, c.Code, c.Description, string(c.DiscountType), c.DiscountValue, c.MinPurchase, c.MaxDiscount,
		c.StartDate, c.EndDate, c.IsActive))
}

func (s *PostgresStore) DeleteCoupon(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return expectRows(s.q.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id))
}

func (s *PostgresStore) HasCouponUsage(ctx context.Context, couponID, userID string) (bool, error) {
	var exists bool
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM coupon_usages WHERE coupon_id = $1 AND user_id = $2)`, couponID, userID,
	).Scan(&exists)
	return exists, mapErr(err)
}

func (s *PostgresStore) RecordCouponUsage(ctx context.Context, u *model.CouponUsage) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO coupon_usages (id, coupon_id, user_id, order_id, used_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.CouponID, u.UserID, u.OrderID, u.UsedAt)
	return mapErr(err)
}
