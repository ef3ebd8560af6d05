package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/target/mmk-queue-monitor/internal/data/database"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
	apperrors "github.com/target/mmk-queue-monitor/internal/errors"
)

var pushColumns = []string{
	"p.id",
	"p.sender_name",
	"p.job_uid",
	"p.job_class",
	"p.job_data",
	"p.ttr",
	"p.delay",
	"p.pushed_at",
	"p.last_exec_id",
	"p.stopped_at",
}

// PushRepo reads the push history table.
type PushRepo struct {
	DB     *sql.DB
	cfg    RepoConfig
	logger *slog.Logger
}

// NewPushRepo creates a new PushRepo.
func NewPushRepo(db *sql.DB, cfg RepoConfig) *PushRepo {
	cfg = cfg.withDefaults()
	return &PushRepo{DB: db, cfg: cfg, logger: cfg.Logger.With("repo", "push")}
}

func scanPush(s rowScanner) (*model.PushRecord, error) {
	var (
		p          model.PushRecord
		jobData    []byte
		lastExecID sql.NullInt64
		stoppedAt  sql.NullInt64
	)
	if err := s.Scan(
		&p.ID,
		&p.SenderName,
		&p.JobUID,
		&p.JobClass,
		&jobData,
		&p.TTR,
		&p.Delay,
		&p.PushedAt,
		&lastExecID,
		&stoppedAt,
	); err != nil {
		return nil, err
	}
	p.JobData = string(jobData)
	p.LastExecID = nullInt64Ptr(lastExecID)
	p.StoppedAt = nullInt64Ptr(stoppedAt)
	return &p, nil
}

func (r *PushRepo) filter(expr query.Expr) ([]database.ListQueryOption, error) {
	f, err := database.TranslatePushExpr(r.cfg.Dialect, r.cfg.Tables, expr)
	if err != nil {
		return nil, err
	}
	return f.Options(r.cfg.Tables), nil
}

// Search returns pushes matching expr, newest first.
func (r *PushRepo) Search(
	ctx context.Context,
	expr query.Expr,
	opts model.PushListOptions,
) ([]*model.PushRecord, error) {
	filterOpts, err := r.filter(expr)
	if err != nil {
		return nil, fmt.Errorf("search pushes: %w", err)
	}
	opts = opts.Normalize()
	listOpts := append(filterOpts,
		database.WithColumns(pushColumns...),
		database.WithOrderBy("p.id", "DESC"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset),
	)
	q, args := database.BuildListQuery(database.NewListQueryOptions(r.cfg.Dialect, r.cfg.Tables.Push, listOpts...))

	items, err := queryMany(ctx, r.DB, r.logger, q, args, scanPush)
	if err != nil {
		return nil, fmt.Errorf("search pushes: %w", apperrors.MapDBError(err))
	}
	return items, nil
}

// Count returns the number of pushes matching expr.
func (r *PushRepo) Count(ctx context.Context, expr query.Expr) (int, error) {
	filterOpts, err := r.filter(expr)
	if err != nil {
		return 0, fmt.Errorf("count pushes: %w", err)
	}
	q, args := database.BuildListQuery(database.NewListQueryOptions(
		r.cfg.Dialect, r.cfg.Tables.Push, append(filterOpts, database.WithCountOnly())...,
	))

	var n int
	if err := r.DB.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count pushes: %w", apperrors.MapDBError(err))
	}
	return n, nil
}

// CountBy groups pushes matching expr by field, ordered by name ascending.
func (r *PushRepo) CountBy(ctx context.Context, expr query.Expr, field model.PushField) ([]model.NamedCount, error) {
	if field != model.PushFieldSenderName && field != model.PushFieldJobClass {
		return nil, fmt.Errorf("count pushes by %q: unsupported field", field)
	}
	filterOpts, err := r.filter(expr)
	if err != nil {
		return nil, fmt.Errorf("count pushes by %s: %w", field, err)
	}
	col := database.PushColumn(field)
	q, args := database.BuildListQuery(database.NewListQueryOptions(r.cfg.Dialect, r.cfg.Tables.Push,
		append(filterOpts,
			database.WithColumns(col+" AS name", "COUNT(*) AS count"),
			database.WithGroupBy(col),
			database.WithOrderBy("name", "ASC"),
		)...,
	))

	counts, err := queryMany(ctx, r.DB, r.logger, q, args, func(s rowScanner) (model.NamedCount, error) {
		var c model.NamedCount
		err := s.Scan(&c.Name, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("count pushes by %s: %w", field, apperrors.MapDBError(err))
	}
	return counts, nil
}

// Distinct returns the distinct values of field across all pushes, ascending.
func (r *PushRepo) Distinct(ctx context.Context, field model.PushField) ([]string, error) {
	if field != model.PushFieldSenderName && field != model.PushFieldJobClass {
		return nil, fmt.Errorf("distinct %q: unsupported field", field)
	}
	col := database.PushColumn(field)
	q, args := database.BuildListQuery(database.NewListQueryOptions(r.cfg.Dialect, r.cfg.Tables.Push,
		database.WithAlias(database.PushAlias),
		database.WithColumns(col+" AS name"),
		database.WithGroupBy(col),
		database.WithOrderBy("name", "ASC"),
	))

	values, err := queryMany(ctx, r.DB, r.logger, q, args, func(s rowScanner) (string, error) {
		var v string
		err := s.Scan(&v)
		return v, err
	})
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", field, apperrors.MapDBError(err))
	}
	return values, nil
}

// GetByID returns a push by id.
func (r *PushRepo) GetByID(ctx context.Context, id int64) (*model.PushRecord, error) {
	q, args := database.BuildListQuery(database.NewListQueryOptions(r.cfg.Dialect, r.cfg.Tables.Push,
		database.WithAlias(database.PushAlias),
		database.WithColumns(pushColumns...),
		database.WithCondition(database.WhereCond("p.id", database.Equal, id)),
	))
	p, err := queryOne(ctx, r.DB, q, args, scanPush, ErrPushNotFound)
	if err != nil {
		if errors.Is(err, ErrPushNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get push %d: %w", id, apperrors.MapDBError(err))
	}
	return p, nil
}

// MarkStopped sets stopped_at on a push.
func (r *PushRepo) MarkStopped(ctx context.Context, id, stoppedAt int64) error {
	q, args, err := database.BuildUpdateQuery(r.cfg.Dialect, r.cfg.Tables.Push,
		[]database.Assignment{{Column: "stopped_at", Value: stoppedAt}},
		database.WhereCond("id", database.Equal, id),
	)
	if err != nil {
		return err
	}
	exists := func(ctx context.Context) (bool, error) {
		_, getErr := r.GetByID(ctx, id)
		if errors.Is(getErr, ErrPushNotFound) {
			return false, nil
		}
		return getErr == nil, getErr
	}
	if err := execUpdate(ctx, r.DB, q, args, exists, ErrPushNotFound); err != nil {
		if errors.Is(err, ErrPushNotFound) {
			return err
		}
		return fmt.Errorf("stop push %d: %w", id, apperrors.MapDBError(err))
	}
	return nil
}
