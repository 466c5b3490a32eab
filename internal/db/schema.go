package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed schema.sql
var Schema string

// SchemaVersion is the version of Schema, it is bumped whenever the
// schema changes in a way older binaries cannot read.
const SchemaVersion = 1

// EnsureSchema creates all tables if they do not exist yet, it is safe
// to call on every startup.
func EnsureSchema(ctx context.Context, database *sql.DB) error {
	_, err := database.ExecContext(ctx, Schema)
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	_, err = database.ExecContext(
		ctx,
		"INSERT OR IGNORE INTO schema_version (version) VALUES (?)",
		SchemaVersion,
	)
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	var version int64
	err = database.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}
	return nil
}
