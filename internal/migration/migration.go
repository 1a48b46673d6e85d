package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"surveyinsight/internal/errors"
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

// Statements returns the DDL in execution order
func (r *MigrationRunner) Statements() []string {
	return []string{
		createSurveyDatasetsTable,
		createUploadedAtIndex,
	}
}

// Run executes all database migrations in the correct order. Every
// statement is idempotent so Run is safe on every boot.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range r.Statements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to run survey dataset migrations")
		}
	}
	return nil
}

const createSurveyDatasetsTable = `
	CREATE TABLE IF NOT EXISTS survey_datasets (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		uploaded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		headers JSONB NOT NULL,
		cells JSONB NOT NULL,
		classification JSONB NOT NULL
	)
`

const createUploadedAtIndex = `
	CREATE INDEX IF NOT EXISTS idx_survey_datasets_uploaded_at ON survey_datasets (uploaded_at)
`
