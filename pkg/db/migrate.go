package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
        id         TEXT PRIMARY KEY,
        name       TEXT NOT NULL,
        price      BIGINT NOT NULL CHECK (price >= 0),
        image_url  TEXT,
        created_at TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS transactions (
        id             TEXT PRIMARY KEY,
        customer_name  TEXT NOT NULL,
        total_amount   BIGINT NOT NULL CHECK (total_amount >= 0),
        payment_method TEXT NOT NULL CHECK (payment_method IN ('CASH', 'QRIS')),
        items          JSONB NOT NULL,
        created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS transactions_created_at_idx ON transactions (created_at)`,
}

// Migrate creates the tables the repositories use if they do not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	return nil
}
