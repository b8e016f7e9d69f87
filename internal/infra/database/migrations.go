package database

import (
	"context"
	"database/sql"
	"fmt"
)

var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS provider_connections (
			account_id   TEXT NOT NULL,
			provider     TEXT NOT NULL,
			status       TEXT NOT NULL,
			connected_at TIMESTAMP NULL,
			updated_at   TIMESTAMP NOT NULL,
			PRIMARY KEY (account_id, provider)
		)`,
	},
}

// Migrate applies pending migrations, tracked by version in
// schema_migrations. Statements are portable between Postgres and SQLite.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for i, stmts := range migrations {
		version := i + 1

		var exists int
		q := rebind(driver, "SELECT COUNT(*) FROM schema_migrations WHERE version = $1")
		if err := db.QueryRowContext(ctx, q, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", version, err)
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d: %w", version, err)
			}
		}
		if _, err := tx.ExecContext(ctx, rebind(driver, "INSERT INTO schema_migrations (version) VALUES ($1)"), version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", version, err)
		}
	}

	return nil
}
