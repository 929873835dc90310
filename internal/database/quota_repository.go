package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// QuotaSchema creates the usage table. Applied by EnsureSchema at startup.
const QuotaSchema = `
CREATE TABLE IF NOT EXISTS ai_usage (
	user_id    TEXT        NOT NULL,
	date_key   DATE        NOT NULL,
	count      INTEGER     NOT NULL DEFAULT 0,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_id, date_key)
)`

// QuotaRepository stores daily analysis counters in PostgreSQL.
type QuotaRepository struct {
	pool DatabasePool
}

// NewQuotaRepository creates a new quota repository.
func NewQuotaRepository(pool DatabasePool) *QuotaRepository {
	return &QuotaRepository{pool: pool}
}

// EnsureSchema creates the usage table when missing.
func (r *QuotaRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, QuotaSchema); err != nil {
		return fmt.Errorf("failed to create ai_usage table: %w", err)
	}
	return nil
}

// GetCount returns 0 when there is no row for the user and day.
func (r *QuotaRepository) GetCount(ctx context.Context, userID, dateKey string) (int, error) {
	query := `SELECT count FROM ai_usage WHERE user_id = $1 AND date_key = $2::date`

	var count int
	err := r.pool.QueryRow(ctx, query, userID, dateKey).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read quota: %w", err)
	}
	return count, nil
}

// Increment upserts the counter; the row lock makes it atomic.
func (r *QuotaRepository) Increment(ctx context.Context, userID, dateKey string) error {
	query := `
		INSERT INTO ai_usage (user_id, date_key, count, updated_at)
		VALUES ($1, $2::date, 1, NOW())
		ON CONFLICT (user_id, date_key)
		DO UPDATE SET count = ai_usage.count + 1, updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, userID, dateKey); err != nil {
		return fmt.Errorf("failed to increment quota: %w", err)
	}
	return nil
}
