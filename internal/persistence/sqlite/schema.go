package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migrationStep is one versioned schema change applied inside a transaction.
type migrationStep struct {
	version     int
	description string
	statements  []string
}

var migrations = []migrationStep{
	{
		version:     1,
		description: "directory accounts",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				name          TEXT NOT NULL,
				email         TEXT NOT NULL,
				role          TEXT NOT NULL CHECK (role IN ('admin', 'tutor')),
				password_hash TEXT NOT NULL,
				created_at    TEXT NOT NULL,
				updated_at    TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (lower(email))`,
		},
	},
	{
		version:     2,
		description: "shift registry",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS lab_shifts (
				id        TEXT PRIMARY KEY,
				tutor_id  TEXT NOT NULL,
				day       TEXT NOT NULL,
				time_slot TEXT NOT NULL,
				lab_name  TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			// Backs the duplicate-slot scan against write races.
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_shifts_slot ON lab_shifts (day, time_slot, lab_name)`,
			`CREATE INDEX IF NOT EXISTS idx_shifts_tutor ON lab_shifts (tutor_id)`,
		},
	},
	{
		version:     3,
		description: "lab status register",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS lab_status (
				lab_name      TEXT PRIMARY KEY,
				lab_open      INTEGER NOT NULL,
				note          TEXT NOT NULL DEFAULT '',
				updated_by    TEXT NOT NULL,
				updated_by_id TEXT NOT NULL,
				timestamp     TEXT NOT NULL
			)`,
		},
	},
	{
		version:     4,
		description: "lab session ledger",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS lab_sessions (
				id             TEXT PRIMARY KEY,
				lab_name       TEXT NOT NULL,
				opened_by_id   TEXT NOT NULL,
				opened_by_name TEXT NOT NULL,
				opened_at      TEXT NOT NULL,
				closed_by_id   TEXT,
				closed_by_name TEXT,
				closed_at      TEXT,
				note           TEXT NOT NULL DEFAULT ''
			)`,
			// At most one open session per lab.
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_open_lab ON lab_sessions (lab_name) WHERE closed_at IS NULL`,
			`CREATE INDEX IF NOT EXISTS idx_sessions_opened_at ON lab_sessions (opened_at)`,
		},
	},
	{
		version:     5,
		description: "auth sessions",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS auth_sessions (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
				token      TEXT NOT NULL UNIQUE,
				expires_at TEXT NOT NULL,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				revoked_at TEXT
			)`,
		},
	},
}

// Migrate applies any schema steps newer than the recorded version. Each
// step runs in its own transaction and is recorded in schema_migrations.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version     INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
	)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	var current sql.NullInt64
	if err := cp.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, step := range migrations {
		if current.Valid && step.version <= int(current.Int64) {
			continue
		}

		err := cp.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range step.statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d (%s): %w", step.version, step.description, err)
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, description) VALUES (?, ?)`,
				step.version, step.description,
			)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}
