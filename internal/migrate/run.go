// Package migrate applies the embedded schema migrations for the queue tables.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/target/mmk-queue-monitor/internal/data/database"
)

//go:embed migrations/postgres/*.sql migrations/mysql/*.sql
var migrationsFS embed.FS

type dialectSQL struct {
	dir             string
	createTable     string
	existsQuery     string
	insertStatement string
}

var dialects = map[string]dialectSQL{
	database.DriverPostgres: {
		dir: "migrations/postgres",
		createTable: `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		existsQuery:     `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`,
		insertStatement: `INSERT INTO schema_migrations (version) VALUES ($1)`,
	},
	database.DriverMySQL: {
		dir: "migrations/mysql",
		createTable: "" +
			"CREATE TABLE IF NOT EXISTS `schema_migrations` (" +
			"`version` VARCHAR(255) NOT NULL PRIMARY KEY, " +
			"`applied_at` TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP" +
			") ENGINE=InnoDB",
		existsQuery:     "SELECT EXISTS(SELECT 1 FROM `schema_migrations` WHERE `version` = ?)",
		insertStatement: "INSERT INTO `schema_migrations` (`version`) VALUES (?)",
	},
}

// Run applies all SQL migrations for the given driver ("pgx" or "mysql").
// It is safe to call multiple times.
func Run(ctx context.Context, db *sql.DB, driver string) error {
	d, err := database.DialectFor(driver)
	if err != nil {
		return err
	}
	ds := dialects[d.Name()]

	if _, err := db.ExecContext(ctx, ds.createTable); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	files, err := Files(d.Name())
	if err != nil {
		return err
	}

	for _, f := range files {
		info := migrationInfo{
			versionStr: strings.TrimSuffix(f, ".sql"),
			file:       f,
		}
		if applyErr := applyMigration(ctx, db, ds, info); applyErr != nil {
			return applyErr
		}
	}
	return nil
}

// Files lists the migration files of a driver in apply order.
func Files(driver string) ([]string, error) {
	d, err := database.DialectFor(driver)
	if err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(migrationsFS, dialects[d.Name()].dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// migrationInfo holds information about a migration for processing.
type migrationInfo struct {
	versionStr string
	file       string
}

// SplitStatements splits a migration script on semicolons that end a line.
// MySQL executes one statement per call unless multiStatements is enabled.
func SplitStatements(script string) []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(cur.String()), ";")
			out = append(out, stmt)
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

func migrationExists(ctx context.Context, db *sql.DB, ds dialectSQL, info migrationInfo) (bool, error) {
	var exists bool
	if err := db.QueryRowContext(ctx, ds.existsQuery, info.versionStr).Scan(&exists); err != nil {
		return false, fmt.Errorf("check migration %s: %w", info.file, err)
	}
	return exists, nil
}

func applyMigration(ctx context.Context, db *sql.DB, ds dialectSQL, info migrationInfo) error {
	exists, err := migrationExists(ctx, db, ds, info)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	sqlBytes, err := migrationsFS.ReadFile(ds.dir + "/" + info.file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", info.file, err)
	}

	logger := slog.Default().With("component", "migrations")
	logger.InfoContext(ctx, "applying migration", "version", info.versionStr, "dir", ds.dir)

	// MySQL commits DDL implicitly, so the transaction only guards the version record there.
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			logger.ErrorContext(ctx, "failed to rollback transaction", "err", rollbackErr, "migration_file", info.file)
		}
	}()

	for i, stmt := range SplitStatements(string(sqlBytes)) {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			return fmt.Errorf("exec migration %s statement %d: %w", info.file, i+1, execErr)
		}
	}
	if _, insertErr := tx.ExecContext(ctx, ds.insertStatement, info.versionStr); insertErr != nil {
		return fmt.Errorf("record migration %s: %w", info.file, insertErr)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit migration %s: %w", info.file, commitErr)
	}

	return nil
}
