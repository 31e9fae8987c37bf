package store

import (
	"context"
	"errors"
	"github.com/ariefcatur/go-tool-rental/internal/rental"
	"github.com/jackc/pgx/v5"
)

// FindOrCreateByEmail inserts first and falls back to a lookup when the
// (lower(email), role) unique index reports the customer already exists.
// Two concurrent callers for a new email end up with the same id.
func (s *Store) FindOrCreateByEmail(ctx context.Context, email, fullName, phone string) (int64, error) {
	var id int64
	err := s.q(ctx).QueryRow(ctx, `
		INSERT INTO users (username, email, full_name, phone, role)
		VALUES ($1, $2, $3, $4, 'customer')
		ON CONFLICT (lower(email), role) DO NOTHING
		RETURNING id`, rental.CustomerHandle(fullName), email, fullName, phone).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapErr(err, "customer", email)
	}

	err = s.q(ctx).QueryRow(ctx, `
		SELECT id FROM users WHERE lower(email) = lower($1) AND role = 'customer'`, email).Scan(&id)
	return id, mapErr(err, "customer", email)
}

func (s *Store) FindAdmin(ctx context.Context, username string) (rental.Admin, error) {
	var a rental.Admin
	err := s.q(ctx).QueryRow(ctx, `
		SELECT id, username, full_name, password_hash FROM users
		WHERE username = $1 AND role = 'admin'`, username).
		Scan(&a.ID, &a.Username, &a.FullName, &a.PasswordHash)
	return a, mapErr(err, "admin", username)
}

// EnsureAdmin creates the admin account if the username is free. Existing
// accounts keep their password.
func (s *Store) EnsureAdmin(ctx context.Context, username, fullName, passwordHash string) error {
	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO users (username, full_name, password_hash, role)
		VALUES ($1, $2, $3, 'admin')
		ON CONFLICT (username) DO NOTHING`, username, fullName, passwordHash)
	return mapErr(err, "admin", username)
}
