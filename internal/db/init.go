// Package db opens the PostgreSQL store, bootstraps its schema and purges
// soft-deleted media in the background.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash BYTEA NOT NULL
);

CREATE TABLE IF NOT EXISTS media (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    genre TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL CHECK (type IN ('MOVIE', 'SERIES')),
    watched BOOLEAN NOT NULL DEFAULT FALSE,
    rating DOUBLE PRECISION CHECK (rating BETWEEN 0 AND 10),
    comment TEXT,
    tmdb_id BIGINT,
    trailer_url TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    rating_date TIMESTAMPTZ,
    deleted_at TIMESTAMPTZ,
    CHECK (watched OR rating IS NULL)
);

CREATE INDEX IF NOT EXISTS media_user_live_idx ON media (user_id, id) WHERE deleted_at IS NULL;
`

// InitPostgres opens dsn, checks connectivity and creates missing tables.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate applies the schema. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
