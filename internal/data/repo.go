package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/mmk-queue-monitor/internal/data/database"
)

// RepoConfig holds configuration shared by the SQL repositories.
type RepoConfig struct {
	Dialect database.Dialect
	Tables  database.Tables
	Logger  *slog.Logger
}

func (c RepoConfig) withDefaults() RepoConfig {
	if c.Dialect == nil {
		c.Dialect = database.Postgres{}
	}
	c.Tables = c.Tables.WithDefaults()
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func closeRows(ctx context.Context, logger *slog.Logger, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		logger.WarnContext(ctx, "close rows", "error", err)
	}
}

// queryOne runs a single-row query, translating sql.ErrNoRows to notFound.
func queryOne[T any](
	ctx context.Context,
	db *sql.DB,
	q string,
	args []any,
	scan func(rowScanner) (T, error),
	notFound error,
) (T, error) {
	v, err := scan(db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, notFound
	}
	return v, err
}

// queryMany runs a query and scans every row.
func queryMany[T any](
	ctx context.Context,
	db *sql.DB,
	logger *slog.Logger,
	q string,
	args []any,
	scan func(rowScanner) (T, error),
) ([]T, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(ctx, logger, rows)

	out := []T{}
	for rows.Next() {
		v, scanErr := scan(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan row: %w", scanErr)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// execUpdate runs an UPDATE and maps zero affected rows to notFound.
// MySQL reports zero affected rows when the value is unchanged, so a
// zero count is only an error when the row does not exist.
func execUpdate(
	ctx context.Context,
	db *sql.DB,
	q string,
	args []any,
	exists func(context.Context) (bool, error),
	notFound error,
) error {
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	ok, err := exists(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return notFound
	}
	return nil
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
