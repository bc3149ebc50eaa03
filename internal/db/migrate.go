package db

import (
	"context"
	"database/sql"
	"fmt"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT UNIQUE NOT NULL,
		target_url TEXT NOT NULL,
		total_clicks INTEGER NOT NULL DEFAULT 0,
		last_clicked_at TEXT,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at);
	`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS links (
		id BIGSERIAL PRIMARY KEY,
		code VARCHAR(8) UNIQUE NOT NULL,
		target_url TEXT NOT NULL,
		total_clicks BIGINT NOT NULL DEFAULT 0,
		last_clicked_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_links_created_at ON links(created_at);
	`

func migrate(ctx context.Context, db *sql.DB, dialect string) error {
	var schema string
	switch dialect {
	case DialectSQLite:
		schema = sqliteSchema
	case DialectPostgres:
		schema = postgresSchema
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	_, err := db.ExecContext(ctx, schema)
	return err
}
