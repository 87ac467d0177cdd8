// Package db persists listings and render jobs in Postgres.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

type DB struct {
	*sql.DB
}

func New(databaseURL string) (*DB, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

// Migrate creates the schema when it does not exist yet. Kept as plain DDL
// since the schema is two tables.
func (db *DB) Migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS listings (
			dealer_id     TEXT NOT NULL,
			stock_number  TEXT NOT NULL,
			payload       JSONB NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (dealer_id, stock_number)
		);

		CREATE TABLE IF NOT EXISTS render_jobs (
			id            UUID PRIMARY KEY,
			type          TEXT NOT NULL,
			dealer_id     TEXT NOT NULL,
			stock_number  TEXT NOT NULL,
			style         TEXT NOT NULL,
			status        TEXT NOT NULL,
			error_message TEXT,
			video_path    TEXT,
			remote_url    TEXT,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS render_jobs_stock_idx ON render_jobs (stock_number);
		CREATE INDEX IF NOT EXISTS render_jobs_status_idx ON render_jobs (status);
	`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
