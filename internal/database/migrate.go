package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_initial.up.sql
var initialMigrationSQL string

//go:embed migrations/002_column_backfill.up.sql
var columnBackfillSQL string

type tableRef struct {
	schema string
	name   string
}

var requiredTables = []tableRef{
	{"medportal", "doctors"},
	{"medportal", "sessions"},
	{"medportal", "auth_audit"},
	{"public", "hospitals"},
	{"public", "prediction_logs"},
}

// EnsureSchema creates missing tables and indexes. Every statement is
// idempotent so it runs on each start.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	missing, err := db.missingTables(ctx)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if len(missing) > 0 {
		slog.Info("database schema missing tables; applying initial migration", "missing", missing)
	}
	if _, err := db.Pool.Exec(ctx, initialMigrationSQL); err != nil {
		return fmt.Errorf("apply initial migration: %w", err)
	}

	missing, err = db.missingTables(ctx)
	if err != nil {
		return fmt.Errorf("re-check tables after migration: %w", err)
	}
	if len(missing) > 0 {
		return fmt.Errorf("schema initialization incomplete: missing %v", missing)
	}

	if _, err := db.Pool.Exec(ctx, columnBackfillSQL); err != nil {
		return fmt.Errorf("apply column backfill migration: %w", err)
	}

	slog.Info("database schema ensured")
	return nil
}

func (db *DB) missingTables(ctx context.Context) ([]string, error) {
	missing := make([]string, 0)
	for _, table := range requiredTables {
		var exists bool
		err := db.Pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM information_schema.tables
				WHERE table_schema = $1 AND table_name = $2
			)
		`, table.schema, table.name).Scan(&exists)
		if err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, table.schema+"."+table.name)
		}
	}
	return missing, nil
}
