// Package history journals terminal submission outcomes to PostgreSQL for
// diagnostics. It is not a cache: balances and listings are never persisted
// and nothing is ever read back into the pipeline.
package history

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"creatorhub/internal/contract"
)

// PostgresJournal records submission outcomes in a single append-only table.
type PostgresJournal struct {
	pool *pgxpool.Pool
}

// NewPostgresJournal connects to the database and ensures the journal table
// exists.
func NewPostgresJournal(ctx context.Context, databaseURL string) (*PostgresJournal, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS submission_outcomes (
			id         BIGSERIAL PRIMARY KEY,
			tx_hash    TEXT NOT NULL,
			status     TEXT NOT NULL,
			raw_error  TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure journal table: %w", err)
	}

	return &PostgresJournal{pool: pool}, nil
}

// Record appends a terminal outcome. Best-effort: a journal failure is
// logged and never propagated into the submission result.
func (j *PostgresJournal) Record(ctx context.Context, outcome *contract.Outcome) {
	query := `
		INSERT INTO submission_outcomes (tx_hash, status, raw_error)
		VALUES ($1, $2, $3)
	`

	_, err := j.pool.Exec(ctx, query,
		outcome.Hash,
		string(outcome.Status),
		outcome.RawError,
	)
	if err != nil {
		slog.Warn("failed to journal submission outcome",
			"hash", outcome.Hash,
			"status", outcome.Status,
			"error", err,
		)
	}
}

// Close releases the connection pool.
func (j *PostgresJournal) Close() {
	j.pool.Close()
}
