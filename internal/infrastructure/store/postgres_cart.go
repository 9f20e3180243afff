package store

import (
	"context"
	"time"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

func (s *PostgresStore) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	var c model.Cart
	err := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&c.ID, &c.UserID, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}

	rows, err := s.q.QueryContext(ctx,
		`SELECT id, product_id, size, quantity FROM cart_items WHERE cart_id = $1 ORDER BY id`, c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Items = []model.CartItem{}
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Size, &it.Quantity); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

func (s *PostgresStore) UpsertCartItem(ctx context.Context, userID string, item model.CartItem) error {
	return s.InTx(ctx, func(tx Store) error {
		pg := tx.(*PostgresStore)
		var cartID string
		err := pg.q.QueryRowContext(ctx,
			`INSERT INTO carts (id, user_id, updated_at) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id) DO UPDATE SET updated_at = EXCLUDED.updated_at
			 RETURNING id`,
			uuid.New().String(), userID, time.Now(),
		).Scan(&cartID)
		if err != nil {
			return mapErr(err)
		}

		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err = pg.q.ExecContext(ctx,
			`INSERT INTO cart_items (id, cart_id, product_id, size, quantity) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (cart_id, product_id, size) DO UPDATE SET quantity = EXCLUDED.quantity`,
			item.ID, cartID, item.ProductID, item.Size, item.Quantity)
		return mapErr(err)
	})
}

func (s *PostgresStore) RemoveCartItem(ctx context.Context, userID, productID, size string) error {
	return expectRows(s.q.ExecContext(ctx,
		`DELETE FROM cart_items ci USING carts c
		  WHERE ci.cart_id = c.id AND c.user_id = $1 AND ci.product_id = $2 AND ci.size = $3`,
		userID, productID, size))
}

func (s *PostgresStore) DeleteCart(ctx context.Context, userID string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
	return err
}
