package data

import (
	"context"
	"database/sql"

	"github.com/target/mmk-queue-monitor/internal/migrate"
)

// RunMigrations creates the queue tables for the given driver ("pgx" or "mysql").
func RunMigrations(ctx context.Context, db *sql.DB, driver string) error {
	return migrate.Run(ctx, db, driver)
}
