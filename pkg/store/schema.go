package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the version written by createSchema.
const SchemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS runs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	configuration TEXT NOT NULL,
	g             REAL NOT NULL,
	dt            REAL NOT NULL,
	started_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS samples (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	step   INTEGER NOT NULL,
	time   REAL NOT NULL,
	body   INTEGER NOT NULL,
	x      REAL NOT NULL,
	y      REAL NOT NULL,
	vx     REAL NOT NULL,
	vy     REAL NOT NULL,
	PRIMARY KEY (run_id, step, body)
);

CREATE INDEX IF NOT EXISTS idx_samples_body ON samples(run_id, body, step);
`

// InitSchema creates the tables when the database is new and rejects a
// database written by a newer version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	var version int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		// schema_version does not exist yet
		return createSchema(ctx, db)
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported %d", version, SchemaVersion)
	}
	return nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}
