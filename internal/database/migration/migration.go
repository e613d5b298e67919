package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"datapost/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinel is the table whose presence means the schema is in place.
const sentinel = "public.records"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_records",
		SQL: `CREATE TABLE IF NOT EXISTS records (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  collection  TEXT        NOT NULL,
  title       TEXT        NOT NULL,
  content     TEXT        NOT NULL DEFAULT '',
  type_tag    TEXT        NOT NULL,
  status      TEXT        NOT NULL DEFAULT 'publish',
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_unique_index_records_identity",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_records_identity ON records (collection, type_tag, title);`,
	},
	{
		Name: "create_index_records_collection_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_records_collection_type ON records (collection, type_tag);`,
	},
}

// EnsureMigrated creates the records schema unless the sentinel table
// already exists. Each step is logged with its duration.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logging.Logger, dbHost string) error {
	start := time.Now()
	fields := func(extra map[string]any) map[string]any {
		f := map[string]any{"component": "database", "db_host": dbHost}
		for k, v := range extra {
			f[k] = v
		}
		return f
	}

	log.Info("checking schema", fields(map[string]any{"event": "db_migration_check"}))

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinel).Scan(&exists)
	if err != nil {
		log.Error("schema check failed", err, fields(map[string]any{
			"event":       "db_migration_failed",
			"duration_ms": time.Since(start).Milliseconds(),
		}))
		return fmt.Errorf("check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration", fields(map[string]any{
			"event":       "db_migration_skip",
			"duration_ms": time.Since(start).Milliseconds(),
		}))
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("migration step failed", err, fields(map[string]any{
				"event":            "db_migration_failed",
				"migration_step":   step.Name,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			}))
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("migration step applied", fields(map[string]any{
			"event":            "db_migration_step",
			"migration_step":   step.Name,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		}))
	}

	log.Info("schema migrated", fields(map[string]any{
		"event":       "db_migration_success",
		"steps":       len(steps),
		"duration_ms": time.Since(start).Milliseconds(),
	}))
	return nil
}
