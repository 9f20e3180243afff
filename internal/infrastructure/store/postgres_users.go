package store

import (
	"context"
	"fmt"

	"github.com/example/storefront/internal/model"
	"github.com/google/uuid"
)

const userColumns = `id, email, password_hash, name, phone, role, is_active, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt)
	return mapErr(err)
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	u, err := scanUser(s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	return u, mapErr(err)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
	return u, mapErr(err)
}

func (s *PostgresStore) UpdateUser(ctx context.Context, u *model.User) error {
	return expectRows(s.q.ExecContext(ctx,
		`UPDATE users SET email = $2, password_hash = $3, name = $4, phone = $5, role = $6, is_active = $7, updated_at = $8
		  WHERE id = $1`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, u.Role, u.IsActive, u.UpdatedAt))
}

func (s *PostgresStore) ListUsers(ctx context.Context, role string, limit, offset int) ([]model.User, int, error) {
	clause := ""
	args := []any{}
	if role != "" {
		clause = " WHERE role = $1"
		args = append(args, role)
	}

	var total int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + userColumns + ` FROM users` + clause + ` ORDER BY created_at DESC`
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
		return nil, 0, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, total, rows.Err()
}

const addressColumns = `id, user_id, full_name, phone, line1, line2, city, state, postal_code, country, is_default`

func scanAddress(row rowScanner) (*model.Address, error) {
	var a model.Address
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) ListAddresses(ctx context.Context, userID string) ([]model.Address, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, id`, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []model.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetAddress(ctx context.Context, id string) (*model.Address, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	a, err := scanAddress(s.q.QueryRowContext(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = $1`, id))
	return a, mapErr(err)
}

func (s *PostgresStore) SaveAddress(ctx context.Context, a *model.Address) error {
	return s.InTx(ctx, func(tx Store) error {
		pg := tx.(*PostgresStore)
		if a.IsDefault {
			if _, err := pg.q.ExecContext(ctx,
				`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND id <> $2`, a.UserID, a.ID); err != nil {
				return err
			}
		}
		_, err := pg.q.ExecContext(ctx,
			`INSERT INTO addresses (`+addressColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name, phone = EXCLUDED.phone,
			        line1 = EXCLUDED.line1, line2 = EXCLUDED.line2, city = EXCLUDED.city, state = EXCLUDED.state,
			        postal_code = EXCLUDED.postal_code, country = EXCLUDED.country, is_default = EXCLUDED.is_default`,
			a.ID, a.UserID, a.FullName, a.Phone, a.Line1, a.Line2, a.City, a.State, a.PostalCode, a.Country, a.IsDefault)
		return mapErr(err)
	})
}

func (s *PostgresStore) DeleteAddress(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	return expectRows(s.q.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1`, id))
}
