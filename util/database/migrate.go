package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so startup can always run them.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id              BIGSERIAL PRIMARY KEY,
			first_name      TEXT NOT NULL,
			last_name       TEXT NOT NULL,
			email           TEXT NOT NULL,
			username        TEXT NOT NULL,
			password_hash   TEXT NOT NULL,
			role            TEXT NOT NULL DEFAULT 'PATRON',
			status          TEXT NOT NULL DEFAULT 'PENDING',
			suspended_until DATE,
			max_borrows     INT  NOT NULL DEFAULT 3,
			deleted_at      TIMESTAMPTZ,
			deleted_by      TEXT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,
		`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (lower(username))`,

		`CREATE TABLE IF NOT EXISTS books (
			id         BIGSERIAL PRIMARY KEY,
			title      TEXT NOT NULL,
			author     TEXT NOT NULL,
			isbn       TEXT NOT NULL,
			quantity   BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
			available  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS books_isbn_key ON books (isbn)`,

		`CREATE TABLE IF NOT EXISTS loans (
			id            BIGSERIAL PRIMARY KEY,
			user_id       BIGINT NOT NULL REFERENCES users(id),
			book_id       BIGINT NOT NULL REFERENCES books(id),
			borrow_date   DATE NOT NULL DEFAULT CURRENT_DATE,
			due_date      DATE NOT NULL,
			return_date   DATE,
			status        TEXT NOT NULL DEFAULT 'ACTIVE',
			returned_late BOOLEAN NOT NULL DEFAULT FALSE,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		// duplicate-borrow guard: one open loan per (user, book)
		`CREATE UNIQUE INDEX IF NOT EXISTS loans_one_active_per_user_book
			ON loans (user_id, book_id) WHERE status = 'ACTIVE'`,
		`CREATE INDEX IF NOT EXISTS loans_user_status_idx ON loans (user_id, status)`,
		`CREATE INDEX IF NOT EXISTS loans_due_date_idx ON loans (due_date) WHERE status = 'ACTIVE'`,
	}

	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
