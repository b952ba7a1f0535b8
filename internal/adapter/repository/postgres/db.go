package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection.
type DB struct {
	*sql.DB
}

// NewDB opens a connection and pings it with exponential backoff, so the
// server survives starting before the database is ready.
func NewDB(connectionString string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 500 * time.Millisecond
	policy.MaxInterval = 5 * time.Second

	notify := func(err error, wait time.Duration) {
		logger.Info("waiting for database", zap.Error(err), zap.Duration("backoff", wait))
	}

	operation := func() (struct{}, error) {
		return struct{}{}, db.Ping()
	}

	if _, err := backoff.Retry(context.Background(), operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(10),
		backoff.WithNotify(notify)); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.DB.Close()
}

// EnsureSchema creates the tables when they do not exist yet.
func (db *DB) EnsureSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS fund_states (
			id BIGSERIAL PRIMARY KEY,
			state JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS month_snapshots (
			period INTEGER PRIMARY KEY,
			nav TEXT NOT NULL,
			unit_price TEXT NOT NULL,
			total_units TEXT NOT NULL,
			cash_balance TEXT NOT NULL,
			investments_value TEXT NOT NULL,
			land_value TEXT NOT NULL,
			contributions_total TEXT NOT NULL,
			expenses_total TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS simulation_events (
			id UUID PRIMARY KEY,
			event_type TEXT NOT NULL,
			period INTEGER NOT NULL,
			message TEXT NOT NULL,
			details JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to ensure schema: %w", err)
		}
	}
	return nil
}
