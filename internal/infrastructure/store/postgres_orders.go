package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const orderColumns = `id, user_id, subtotal, discount, total, coupon_id, status, payment_status,
	gateway_order_id, payment_id, shipping_address, created_at, updated_at`

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		o         model.Order
		couponID  sql.NullString
		paymentID sql.NullString
		address   []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &o.Subtotal, &o.Discount, &o.Total, &couponID, &o.Status, &o.PaymentStatus,
		&o.GatewayOrderID, &paymentID, &address, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.CouponID = couponID.String
	o.PaymentID = paymentID.String
	if len(address) > 0 {
		var a model.Address
		if err := json.Unmarshal(address, &a); err != nil {
			return nil, fmt.Errorf("decode shipping address: %w", err)
		}
		o.ShippingAddress = &a
	}
	o.Items = []model.OrderItem{}
	return &o, nil
}

func (s *PostgresStore) CreateOrder(ctx context.Context, o *model.Order) error {
	var address []byte
	if o.ShippingAddress != nil {
		var err error
		if address, err = json.Marshal(o.ShippingAddress); err != nil {
			return err
		}
	}

	return s.InTx(ctx, func(tx Store) error {
		pg := tx.(*PostgresStore)
		_, err := pg.q.ExecContext(ctx,
			`INSERT INTO orders (`+orderColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			o.ID, o.UserID, o.Subtotal, o.Discount, o.Total, nullString(o.CouponID), string(o.Status), string(o.PaymentStatus),
			o.GatewayOrderID, nullString(o.PaymentID), nullString(string(address)), o.CreatedAt, o.UpdatedAt)
		if err != nil {
			return mapErr(err)
		}

		for i := range o.Items {
			it := &o.Items[i]
			if it.ID == "" {
				it.ID = uuid.New().String()
			}
			it.OrderID = o.ID
			_, err := pg.q.ExecContext(ctx,
				`INSERT INTO order_items (id, order_id, product_id, name, size, price, quantity)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				it.ID, it.OrderID, it.ProductID, it.Name, it.Size, it.Price, it.Quantity)
			if err != nil {
				return mapErr(err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) attachOrderItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT id, order_id, product_id, name, size, price, quantity FROM order_items
		  WHERE order_id = ANY($1) ORDER BY name, size`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Size, &it.Price, &it.Quantity); err != nil {
			return err
		}
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}
	return rows.Err()
}

func (s *PostgresStore) orderWhere(ctx context.Context, column, value, suffix string) (*model.Order, error) {
	o, err := scanOrder(s.q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+column+` = $1`+suffix, value))
	if err != nil {
		return nil, mapErr(err)
	}
	list := []model.Order{*o}
	if err := s.attachOrderItems(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.orderWhere(ctx, "id", id, "")
}

func (s *PostgresStore) LockOrderByGatewayID(ctx context.Context, gatewayOrderID string) (*model.Order, error) {
	return s.orderWhere(ctx, "gateway_order_id", gatewayOrderID, s.lockClause())
}

func (s *PostgresStore) ListOrders(ctx context.Context, f OrderFilter) ([]model.Order, int, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders"+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapErr(err)
	}

	query := "SELECT " + orderColumns + " FROM orders" + clause + " ORDER BY created_at DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapErr(err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := s.attachOrderItems(ctx, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) error {
	return expectRows(s.q.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), time.Now()))
}

func (s *PostgresStore) UpdatePayment(ctx context.Context, id string, status model.OrderStatus, paymentStatus model.PaymentStatus, paymentID string) error {
	return expectRows(s.q.ExecContext(ctx,
		`UPDATE orders SET status = $2, payment_status = $3, payment_id = COALESCE($4, payment_id), updated_at = $5
		  WHERE id = $1`,
		id, string(status), string(paymentStatus), nullString(paymentID), time.Now()))
}
