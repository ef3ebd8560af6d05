package memstore

import (
	"context"

	"github.com/target/mmk-queue-monitor/internal/data"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
)

// ExecRepo implements core.ExecRepository over a Store.
type ExecRepo struct {
	s *Store
}

func execID(e *model.ExecRecord) int64 { return e.ID }

// GetByID returns an execution by id.
func (r *ExecRepo) GetByID(_ context.Context, id int64) (*model.ExecRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.execs[id]
	if !ok {
		return nil, data.ErrExecNotFound
	}
	return clone(e), nil
}

func (r *ExecRepo) list(keep func(*model.ExecRecord) bool) []*model.ExecRecord {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*model.ExecRecord{}
	for _, e := range sortedByID(r.s.execs, execID, false) {
		if keep(e) {
			out = append(out, clone(e))
		}
	}
	return out
}

// ListByWorker returns the executions of a worker in start order.
func (r *ExecRepo) ListByWorker(_ context.Context, workerID int64) ([]*model.ExecRecord, error) {
	return r.list(func(e *model.ExecRecord) bool {
		return e.WorkerID != nil && *e.WorkerID == workerID
	}), nil
}

// ListByPush returns the attempts of a push in start order.
func (r *ExecRepo) ListByPush(_ context.Context, pushID int64) ([]*model.ExecRecord, error) {
	return r.list(func(e *model.ExecRecord) bool { return e.PushID == pushID }), nil
}

// TotalsByWorker counts the started and done executions of a worker.
func (r *ExecRepo) TotalsByWorker(ctx context.Context, workerID int64) (model.ExecTotals, error) {
	execs, _ := r.ListByWorker(ctx, workerID)
	var totals model.ExecTotals
	for _, e := range execs {
		totals.Started++
		if e.IsDone() {
			totals.Done++
		}
	}
	return totals, nil
}
