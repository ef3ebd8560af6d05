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

var workerColumns = []string{
	"id",
	"sender_name",
	"pid",
	"started_at",
	"pinged_at",
	"stopped_at",
	"finished_at",
	"last_exec_id",
}

// WorkerRepo reads and updates the worker table.
type WorkerRepo struct {
	DB     *sql.DB
	cfg    RepoConfig
	logger *slog.Logger
}

// NewWorkerRepo creates a new WorkerRepo.
func NewWorkerRepo(db *sql.DB, cfg RepoConfig) *WorkerRepo {
	cfg = cfg.withDefaults()
	return &WorkerRepo{DB: db, cfg: cfg, logger: cfg.Logger.With("repo", "worker")}
}

func scanWorker(s rowScanner) (*model.WorkerRecord, error) {
	var (
		w          model.WorkerRecord
		stoppedAt  sql.NullInt64
		finishedAt sql.NullInt64
		lastExecID sql.NullInt64
	)
	if err := s.Scan(
		&w.ID,
		&w.SenderName,
		&w.PID,
		&w.StartedAt,
		&w.PingedAt,
		&stoppedAt,
		&finishedAt,
		&lastExecID,
	); err != nil {
		return nil, err
	}
	w.StoppedAt = nullInt64Ptr(stoppedAt)
	w.FinishedAt = nullInt64Ptr(finishedAt)
	w.LastExecID = nullInt64Ptr(lastExecID)
	return &w, nil
}

// GetByID returns a worker by id.
func (r *WorkerRepo) GetByID(ctx context.Context, id int64) (*model.WorkerRecord, error) {
	q, args := database.BuildListQuery(database.NewListQueryOptions(r.cfg.Dialect, r.cfg.Tables.Worker,
		database.WithColumns(workerColumns...),
		database.WithCondition(database.WhereCond("id", database.Equal, id)),
	))
	w, err := queryOne(ctx, r.DB, q, args, scanWorker, ErrWorkerNotFound)
	if err != nil {
		if errors.Is(err, ErrWorkerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get worker %d: %w", id, apperrors.MapDBError(err))
	}
	return w, nil
}

// List returns workers newest first, optionally filtered by sender and to unfinished workers.
func (r *WorkerRepo) List(ctx context.Context, opts model.WorkerListOptions) ([]*model.WorkerRecord, error) {
	opts = opts.Normalize()
	listOpts := []database.ListQueryOption{
		database.WithColumns(workerColumns...),
		database.WithOrderBy("id", "DESC"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset),
	}
	if opts.Sender != "" {
		listOpts = append(listOpts, database.WithCondition(database.WhereCond("sender_name", database.Equal, opts.Sender)))
	}
	if opts.ActiveOnly {
		listOpts = append(listOpts, database.WithCondition(database.WhereCond("finished_at", database.IsNull, nil)))
	}
	q, args := database.BuildListQuery(database.NewListQueryOptions(r.cfg.Dialect, r.cfg.Tables.Worker, listOpts...))

	items, err := queryMany(ctx, r.DB, r.logger, q, args, scanWorker)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", apperrors.MapDBError(err))
	}
	return items, nil
}

// UpdateStoppedAt writes stopped_at without checking the current value.
func (r *WorkerRepo) UpdateStoppedAt(ctx context.Context, id, stoppedAt int64) error {
	q, args, err := database.BuildUpdateQuery(r.cfg.Dialect, r.cfg.Tables.Worker,
		[]database.Assignment{{Column: "stopped_at", Value: stoppedAt}},
		database.WhereCond("id", database.Equal, id),
	)
	if err != nil {
		return err
	}
	exists := func(ctx context.Context) (bool, error) {
		_, getErr := r.GetByID(ctx, id)
		if errors.Is(getErr, ErrWorkerNotFound) {
			return false, nil
		}
		return getErr == nil, getErr
	}
	if err := execUpdate(ctx, r.DB, q, args, exists, ErrWorkerNotFound); err != nil {
		if errors.Is(err, ErrWorkerNotFound) {
			return err
		}
		return fmt.Errorf("stop worker %d: %w", id, apperrors.MapDBError(err))
	}
	return nil
}
