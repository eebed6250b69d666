package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// schema is applied by EnsureSchema. Runs are stored whole as JSONB with a
// few summary columns for listing.
const schema = `
CREATE TABLE IF NOT EXISTS projection_runs (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	variant    TEXT NOT NULL,
	years      INT NOT NULL,
	balanced   BOOLEAN NOT NULL,
	run_json   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS projection_runs_created_at_idx ON projection_runs (created_at DESC);
`

// InitDB initializes the connection pool. An empty url falls back to the
// DATABASE_URL environment variable.
func InitDB(ctx context.Context, url string) error {
	var err error
	once.Do(func() {
		if url == "" {
			url = os.Getenv("DATABASE_URL")
		}
		if url == "" {
			err = fmt.Errorf("database url not configured and DATABASE_URL not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(url)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}
		if pingErr := pool.Ping(ctx); pingErr != nil {
			pool.Close()
			pool = nil
			err = fmt.Errorf("failed to reach database: %w", pingErr)
		}
	})
	return err
}

// EnsureSchema creates the projection tables when missing.
func EnsureSchema(ctx context.Context, p *pgxpool.Pool) error {
	if p == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if _, err := p.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// GetPool returns the database connection pool, nil before InitDB succeeds.
func GetPool() *pgxpool.Pool {
	return pool
}

// Close closes the database connection pool. GetPool returns nil afterwards.
func Close() {
	if pool != nil {
		pool.Close()
		pool = nil
	}
}
