// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name      TEXT NOT NULL,
	last_name       TEXT NOT NULL,
	email           TEXT NOT NULL UNIQUE,
	phone_number    TEXT NOT NULL UNIQUE,
	birthday        TEXT NOT NULL,
	additional_info TEXT
);
CREATE INDEX IF NOT EXISTS idx_contacts_first_name ON contacts(first_name);
CREATE INDEX IF NOT EXISTS idx_contacts_last_name  ON contacts(last_name);

CREATE TABLE IF NOT EXISTS users (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	email           TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	is_verified     INTEGER NOT NULL DEFAULT 0,
	avatar_url      TEXT
);
`

// Migrate applies the schema. Statements are idempotent so Migrate is safe
// to run on every startup.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("store: migrate failed: %w", err)
	}
	return nil
}
