package main

// Run database migrations for the configured driver:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"promotore-backend/internal/shared/config"
	"promotore-backend/internal/shared/storage/db"
	"promotore-backend/internal/shared/telemetry"
)

func main() {
	defer telemetry.Sync()

	cfg := config.Load()
	ctx := context.Background()

	var (
		dialect db.Dialect
		dsn     string
	)
	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		dialect, dsn = db.Postgres, cfg.DatabaseURL
	case config.DriverSQLite:
		dialect, dsn = db.SQLite, cfg.SQLitePath
	default:
		telemetry.Info("migrate.skipped", map[string]any{"driver": cfg.DatabaseDriver})
		return
	}

	sqlDB, err := db.Connect(ctx, dialect, dsn, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"driver": cfg.DatabaseDriver})
}
