package migration

import (
	"context"

	"abtest/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. Every statement
// is idempotent so Run is safe on each start.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range Steps() {
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			return errors.DatabaseError("migration step "+step.Name+" failed", err)
		}
	}
	return nil
}

// Step is one named schema statement.
type Step struct {
	Name string
	SQL  string
}

// Steps returns the schema statements in execution order.
func Steps() []Step {
	return []Step{
		{Name: "create_shared_analyses", SQL: `
		CREATE TABLE IF NOT EXISTS shared_analyses (
			id UUID PRIMARY KEY,
			token TEXT NOT NULL,
			input_hash CHAR(64) NOT NULL,
			metric_count INTEGER NOT NULL CHECK (metric_count >= 0),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`},
		{Name: "unique_input_hash", SQL: `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_shared_analyses_input_hash
			ON shared_analyses(input_hash)`},
		{Name: "index_created_at", SQL: `
		CREATE INDEX IF NOT EXISTS idx_shared_analyses_created_at
			ON shared_analyses(created_at DESC)`},
	}
}
