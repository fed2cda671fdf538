package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// catalog_entries is owned by the admin UI; the statement only guarantees the
// columns the pipeline reads and writes exist on a fresh database.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS catalog_entries (
		id                 BIGSERIAL PRIMARY KEY,
		name               TEXT NOT NULL,
		developer          TEXT NOT NULL DEFAULT 'Unknown',
		canonical_id       TEXT,
		canonical_url      TEXT,
		on_canonical_store BOOLEAN NOT NULL DEFAULT FALSE,
		website_url        TEXT NOT NULL DEFAULT '',
		source             TEXT NOT NULL DEFAULT '',
		category_slug      TEXT NOT NULL DEFAULT '',
		version            TEXT NOT NULL DEFAULT 'Unknown',
		price              DOUBLE PRECISION,
		rating             DOUBLE PRECISION,
		description        TEXT NOT NULL DEFAULT '',
		icon_url           TEXT NOT NULL DEFAULT '',
		screenshots        JSONB NOT NULL DEFAULT '[]',
		requirements       JSONB NOT NULL DEFAULT '[]',
		developer_website  TEXT,
		file_size          TEXT,
		architecture       TEXT,
		last_updated       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS catalog_entries_website_url_idx ON catalog_entries (website_url)`,
	`CREATE INDEX IF NOT EXISTS catalog_entries_lower_name_idx ON catalog_entries (LOWER(name), source)`,
	`CREATE TABLE IF NOT EXISTS crawl_sessions (
		id             BIGSERIAL PRIMARY KEY,
		name           TEXT NOT NULL,
		category_url   TEXT NOT NULL,
		source_type    TEXT NOT NULL,
		page_number    INTEGER NOT NULL DEFAULT 0,
		status         TEXT NOT NULL,
		items_imported INTEGER NOT NULL DEFAULT 0,
		items_skipped  INTEGER NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at   TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS crawl_sessions_category_url_idx ON crawl_sessions (category_url)`,
	`CREATE TABLE IF NOT EXISTS match_attempts (
		id            BIGSERIAL PRIMARY KEY,
		entry_id      BIGINT NOT NULL,
		search_term   TEXT NOT NULL,
		developer     TEXT NOT NULL DEFAULT '',
		raw_response  JSONB,
		confidence    DOUBLE PRECISION NOT NULL DEFAULT 0,
		status        TEXT NOT NULL,
		canonical_id  TEXT,
		canonical_url TEXT,
		error_message TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS match_attempts_entry_id_idx ON match_attempts (entry_id)`,
}

// Migrate creates the tables the pipeline needs if they are missing.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
