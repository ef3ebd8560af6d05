package core

import (
	"context"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// These interfaces define the contracts between the service layer and data layer.
// Service implementations should depend on these interfaces, not concrete implementations.

// PushRepository reads the job push history. Every query method takes a
// query.Expr that the implementation translates for its backend.
type PushRepository interface {
	// Search returns matching pushes newest first.
	Search(ctx context.Context, expr query.Expr, opts model.PushListOptions) ([]*model.PushRecord, error)
	// Count returns the number of matching pushes.
	Count(ctx context.Context, expr query.Expr) (int, error)
	// CountBy groups matching pushes by field and counts each group, ordered by name ascending.
	CountBy(ctx context.Context, expr query.Expr, field model.PushField) ([]model.NamedCount, error)
	// Distinct returns the distinct values of field across all pushes, ascending.
	Distinct(ctx context.Context, field model.PushField) ([]string, error)
	GetByID(ctx context.Context, id int64) (*model.PushRecord, error)
	// MarkStopped sets stopped_at on a push.
	MarkStopped(ctx context.Context, id, stoppedAt int64) error
}

// ExecRepository reads job execution attempts.
type ExecRepository interface {
	GetByID(ctx context.Context, id int64) (*model.ExecRecord, error)
	ListByWorker(ctx context.Context, workerID int64) ([]*model.ExecRecord, error)
	ListByPush(ctx context.Context, pushID int64) ([]*model.ExecRecord, error)
	// TotalsByWorker counts started and done executions of a worker.
	TotalsByWorker(ctx context.Context, workerID int64) (model.ExecTotals, error)
}

// WorkerRepository reads and updates queue worker rows.
type WorkerRepository interface {
	GetByID(ctx context.Context, id int64) (*model.WorkerRecord, error)
	List(ctx context.Context, opts model.WorkerListOptions) ([]*model.WorkerRecord, error)
	// UpdateStoppedAt persists stopped_at without further checks.
	UpdateStoppedAt(ctx context.Context, id, stoppedAt int64) error
}
