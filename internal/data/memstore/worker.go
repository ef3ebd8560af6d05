package memstore

import (
	"context"

	"github.com/target/mmk-queue-monitor/internal/data"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
)

// WorkerRepo implements core.WorkerRepository over a Store.
type WorkerRepo struct {
	s *Store
}

// GetByID returns a worker by id.
func (r *WorkerRepo) GetByID(_ context.Context, id int64) (*model.WorkerRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	w, ok := r.s.workers[id]
	if !ok {
		return nil, data.ErrWorkerNotFound
	}
	return clone(w), nil
}

// List returns workers newest first.
func (r *WorkerRepo) List(_ context.Context, opts model.WorkerListOptions) ([]*model.WorkerRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	opts = opts.Normalize()
	matched := []*model.WorkerRecord{}
	for _, w := range sortedByID(r.s.workers, func(w *model.WorkerRecord) int64 { return w.ID }, true) {
		if opts.Sender != "" && w.SenderName != opts.Sender {
			continue
		}
		if opts.ActiveOnly && w.FinishedAt != nil {
			continue
		}
		matched = append(matched, w)
	}

	items := page(matched, opts.Limit, opts.Offset)
	out := make([]*model.WorkerRecord, len(items))
	for i, w := range items {
		out[i] = clone(w)
	}
	return out, nil
}

// UpdateStoppedAt writes stopped_at without checking the current value.
func (r *WorkerRepo) UpdateStoppedAt(_ context.Context, id, stoppedAt int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w, ok := r.s.workers[id]
	if !ok {
		return data.ErrWorkerNotFound
	}
	w.StoppedAt = &stoppedAt
	return nil
}
