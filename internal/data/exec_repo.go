package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/mmk-queue-monitor/internal/data/database"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
	apperrors "github.com/target/mmk-queue-monitor/internal/errors"
)

var execColumns = []string{
	"id",
	"push_id",
	"worker_id",
	"attempt",
	"started_at",
	"done_at",
	"error",
	"retry",
}

// ExecRepo reads the execution table.
type ExecRepo struct {
	DB     *sql.DB
	cfg    RepoConfig
	logger *slog.Logger
}

// NewExecRepo creates a new ExecRepo.
func NewExecRepo(db *sql.DB, cfg RepoConfig) *ExecRepo {
	cfg = cfg.withDefaults()
	return &ExecRepo{DB: db, cfg: cfg, logger: cfg.Logger.With("repo", "exec")}
}

func scanExec(s rowScanner) (*model.ExecRecord, error) {
	var (
		e        model.ExecRecord
		workerID sql.NullInt64
		doneAt   sql.NullInt64
		errText  sql.NullString
	)
	if err := s.Scan(&e.ID, &e.PushID, &workerID, &e.Attempt, &e.StartedAt, &doneAt, &errText, &e.Retry); err != nil {
		return nil, err
	}
	e.WorkerID = nullInt64Ptr(workerID)
	e.DoneAt = nullInt64Ptr(doneAt)
	e.Error = nullStringPtr(errText)
	return &e, nil
}

func (r *ExecRepo) list(opts ...database.ListQueryOption) (string, []any) {
	return database.BuildListQuery(database.NewListQueryOptions(r.cfg.Dialect, r.cfg.Tables.Exec,
		append([]database.ListQueryOption{database.WithColumns(execColumns...)}, opts...)...,
	))
}

// GetByID returns an execution by id.
func (r *ExecRepo) GetByID(ctx context.Context, id int64) (*model.ExecRecord, error) {
	q, args := r.list(database.WithCondition(database.WhereCond("id", database.Equal, id)))
	e, err := queryOne(ctx, r.DB, q, args, scanExec, ErrExecNotFound)
	if err != nil {
		if errors.Is(err, ErrExecNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get exec %d: %w", id, apperrors.MapDBError(err))
	}
	return e, nil
}

// ListByWorker returns the executions of a worker in start order.
func (r *ExecRepo) ListByWorker(ctx context.Context, workerID int64) ([]*model.ExecRecord, error) {
	q, args := r.list(
		database.WithCondition(database.WhereCond("worker_id", database.Equal, workerID)),
		database.WithOrderBy("id", "ASC"),
	)
	items, err := queryMany(ctx, r.DB, r.logger, q, args, scanExec)
	if err != nil {
		return nil, fmt.Errorf("list execs of worker %d: %w", workerID, apperrors.MapDBError(err))
	}
	return items, nil
}

// ListByPush returns the attempts of a push in start order.
func (r *ExecRepo) ListByPush(ctx context.Context, pushID int64) ([]*model.ExecRecord, error) {
	q, args := r.list(
		database.WithCondition(database.WhereCond("push_id", database.Equal, pushID)),
		database.WithOrderBy("id", "ASC"),
	)
	items, err := queryMany(ctx, r.DB, r.logger, q, args, scanExec)
	if err != nil {
		return nil, fmt.Errorf("list execs of push %d: %w", pushID, apperrors.MapDBError(err))
	}
	return items, nil
}

// TotalsByWorker counts the started and done executions of a worker.
func (r *ExecRepo) TotalsByWorker(ctx context.Context, workerID int64) (model.ExecTotals, error) {
	d := r.cfg.Dialect
	q := fmt.Sprintf(
		"SELECT COUNT(*), COALESCE(SUM(CASE WHEN %s IS NOT NULL THEN 1 ELSE 0 END), 0) FROM %s WHERE %s = %s",
		d.QuoteIdent("done_at"), d.QuoteIdent(r.cfg.Tables.Exec), d.QuoteIdent("worker_id"), d.Placeholder(1),
	)
	var totals model.ExecTotals
	if err := r.DB.QueryRowContext(ctx, q, workerID).Scan(&totals.Started, &totals.Done); err != nil {
		return model.ExecTotals{}, fmt.Errorf("exec totals of worker %d: %w", workerID, apperrors.MapDBError(err))
	}
	return totals, nil
}
