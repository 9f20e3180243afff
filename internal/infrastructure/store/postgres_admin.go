package store

import (
	"context"
	"fmt"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func (s *PostgresStore) CreateNotification(ctx context.Context, n *model.AdminNotification) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO admin_notifications (id, type, title, message, ref_id, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.Type, n.Title, n.Message, n.RefID, n.IsRead, n.CreatedAt)
	return mapErr(err)
}

func (s *PostgresStore) ListNotifications(ctx context.Context, unreadOnly bool, limit int) ([]model.AdminNotification, error) {
	query := `SELECT id, type, title, message, ref_id, is_read, created_at FROM admin_notifications`
	if unreadOnly {
		query += ` WHERE NOT is_read`
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AdminNotification{}
	for rows.Next() {
		var n model.AdminNotification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.RefID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *PostgresStore) MarkNotificationRead(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return expectRows(s.q.ExecContext(ctx, `UPDATE admin_notifications SET is_read = TRUE WHERE id = $1`, id))
}

func (s *PostgresStore) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := s.q.ExecContext(ctx, `UPDATE admin_notifications SET is_read = TRUE WHERE NOT is_read`)
	return err
}

func (s *PostgresStore) DashboardStats(ctx context.Context, lowStockThreshold int) (*model.DashboardStats, error) {
	stats := &model.DashboardStats{
		Revenue:        decimal.Zero,
		OrdersByStatus: make(map[model.OrderStatus]int),
	}

	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status IN ('Pending', 'Processing')),
		        COALESCE(SUM(total) FILTER (WHERE payment_status = 'completed'), 0)
		   FROM orders`,
	).Scan(&stats.TotalOrders, &stats.PendingOrders, &stats.Revenue)
	if err != nil {
		return nil, err
	}

	if err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, model.RoleCustomer).Scan(&stats.TotalCustomers); err != nil {
		return nil, err
	}
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&stats.TotalProducts); err != nil {
		return nil, err
	}

	rows, err := s.q.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			status model.OrderStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, err
		}
		stats.OrdersByStatus[status] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lowRows, err := s.q.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE stock <= $1 ORDER BY stock, name`, lowStockThreshold)
	if err != nil {
		return nil, err
	}
	stats.LowStock = []model.Product{}
	for lowRows.Next() {
		p, err := scanProduct(lowRows)
		if err != nil {
			lowRows.Close()
			return nil, err
		}
		stats.LowStock = append(stats.LowStock, *p)
	}
	lowRows.Close()
	if err := lowRows.Err(); err != nil {
		return nil, err
	}

	recent, _, err := s.ListOrders(ctx, OrderFilter{Limit: 5})
	if err != nil {
		return nil, err
	}
	stats.RecentOrders = recent
	return stats, nil
}
