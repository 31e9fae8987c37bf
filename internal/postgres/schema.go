package postgres

import (
	"context"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Foreign-key policy:
//
//	rentals.item_id      -> items       ON DELETE CASCADE (engine refuses while rentals are active)
//	rentals.customer_id  -> users       ON DELETE RESTRICT
//	feedback.item_id     -> items       ON DELETE SET NULL
//	feedback.customer_id -> users       ON DELETE CASCADE
//	items.category_id    -> categories  ON DELETE SET NULL
var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		email         TEXT,
		full_name     TEXT NOT NULL DEFAULT '',
		phone         TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role          TEXT NOT NULL CHECK (role IN ('customer', 'admin')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_role_uq ON users (lower(email), role)`,
	`CREATE TABLE IF NOT EXISTS items (
		id                 BIGSERIAL PRIMARY KEY,
		name               TEXT NOT NULL,
		description        TEXT NOT NULL DEFAULT '',
		category_id        BIGINT REFERENCES categories(id) ON DELETE SET NULL,
		price_per_day      NUMERIC(10,2) NOT NULL CHECK (price_per_day >= 0),
		image_url          TEXT NOT NULL DEFAULT '',
		specifications     TEXT NOT NULL DEFAULT '',
		total_quantity     INT NOT NULL CHECK (total_quantity >= 0),
		available_quantity INT NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT items_available_range CHECK (available_quantity BETWEEN 0 AND total_quantity)
	)`,
	`CREATE TABLE IF NOT EXISTS rentals (
		id                 BIGSERIAL PRIMARY KEY,
		customer_id        BIGINT NOT NULL REFERENCES users(id) ON DELETE RESTRICT,
		item_id            BIGINT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		rental_date        DATE NOT NULL,
		return_date        DATE NOT NULL,
		actual_return_date DATE,
		quantity           INT NOT NULL CHECK (quantity >= 1),
		total_amount       NUMERIC(12,2) NOT NULL,
		status             TEXT NOT NULL DEFAULT 'pending'
		                   CHECK (status IN ('pending', 'confirmed', 'ongoing', 'returned', 'cancelled')),
		created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT rentals_dates CHECK (return_date > rental_date)
	)`,
	`CREATE INDEX IF NOT EXISTS rentals_item_status_idx ON rentals (item_id, status)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id          BIGSERIAL PRIMARY KEY,
		customer_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		item_id     BIGINT REFERENCES items(id) ON DELETE SET NULL,
		rating      INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
		message     TEXT NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS contact_inquiries (
		id         BIGSERIAL PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT NOT NULL,
		phone      TEXT NOT NULL DEFAULT '',
		subject    TEXT NOT NULL,
		message    TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'new' CHECK (status IN ('new', 'read', 'replied')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// Migrate membuat tabel kalau belum ada. Idempotent.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
