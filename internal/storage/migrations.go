package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS evaluation_runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					institution TEXT NOT NULL,
					evaluated_at DATETIME NOT NULL,
					total_credits REAL NOT NULL DEFAULT 0,
					transferable_credits REAL NOT NULL DEFAULT 0,
					rejected_credits REAL NOT NULL DEFAULT 0,
					low_confidence_credits REAL NOT NULL DEFAULT 0,
					transferable_courses INTEGER NOT NULL DEFAULT 0,
					rejected_courses INTEGER NOT NULL DEFAULT 0,
					low_confidence_courses INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_evaluation_runs_institution ON evaluation_runs(institution)`,

				`CREATE TABLE IF NOT EXISTS course_evaluations (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_id INTEGER NOT NULL,
					position INTEGER NOT NULL,
					course_code TEXT,
					course_name TEXT,
					credits REAL NOT NULL DEFAULT 0,
					adjusted_credits REAL NOT NULL DEFAULT 0,
					grade TEXT,
					status TEXT,
					term TEXT,
					year TEXT,
					source_institution TEXT,
					confidence_score REAL NOT NULL DEFAULT 0,
					transferable INTEGER NOT NULL DEFAULT 0,
					needs_review INTEGER NOT NULL DEFAULT 0,
					rejection_reasons TEXT,
					FOREIGN KEY (run_id) REFERENCES evaluation_runs(id)
				)`,
				`CREATE INDEX idx_course_evaluations_run_id ON course_evaluations(run_id)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Record policy verification verdicts per course",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE course_evaluations ADD COLUMN policy_verification TEXT`,
				`ALTER TABLE course_evaluations ADD COLUMN verifier_error TEXT`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Index runs by evaluation time for listing",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_evaluation_runs_evaluated_at ON evaluation_runs(evaluated_at DESC)`)
			return err
		},
	},
	{
		Version:     4,
		Description: "Record the institution's credit system per run",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`ALTER TABLE evaluation_runs ADD COLUMN credit_system TEXT NOT NULL DEFAULT 'semester'`)
			return err
		},
	},
}

// Migrate brings the database schema up to the expected version.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
