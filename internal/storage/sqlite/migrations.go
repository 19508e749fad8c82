package sqlite

import (
	"context"
	"database/sql"
)

// Migrate runs all database migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	migrations := []string{
		// One row per step; payload is the binary snapshot of its subtree
		`CREATE TABLE IF NOT EXISTS steps (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			modified_at DATETIME NOT NULL,
			payload BLOB NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_steps_path ON steps(path)`,
	}

	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return err
		}
	}

	return nil
}
