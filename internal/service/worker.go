package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/target/mmk-queue-monitor/internal/core"
	"github.com/target/mmk-queue-monitor/internal/data"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
)

// WorkerServiceOptions groups dependencies for WorkerService.
type WorkerServiceOptions struct {
	Repos  WorkerRepos  // Required: Workers and Execs must be set
	Logger *slog.Logger // Optional: structured logger
}

// WorkerRepos bundles the repositories used by workers.
type WorkerRepos struct {
	Workers      core.WorkerRepository
	Execs        core.ExecRepository
	TimeProvider data.TimeProvider
}

// WorkerService loads worker accessors and stops workers.
type WorkerService struct {
	deps   workerDeps
	logger *slog.Logger
}

type workerDeps struct {
	workers core.WorkerRepository
	execs   core.ExecRepository
	clock   data.TimeProvider
	logger  *slog.Logger
}

// NewWorkerService constructs a new WorkerService.
func NewWorkerService(opts WorkerServiceOptions) (*WorkerService, error) {
	if opts.Repos.Workers == nil {
		return nil, errors.New("WorkerRepository is required")
	}
	if opts.Repos.Execs == nil {
		return nil, errors.New("ExecRepository is required")
	}
	clock := opts.Repos.TimeProvider
	if clock == nil {
		clock = &data.RealTimeProvider{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker_service")
	return &WorkerService{
		deps: workerDeps{
			workers: opts.Repos.Workers,
			execs:   opts.Repos.Execs,
			clock:   clock,
			logger:  logger,
		},
		logger: logger,
	}, nil
}

// MustNewWorkerService constructs a WorkerService and panics on error.
func MustNewWorkerService(opts WorkerServiceOptions) *WorkerService {
	svc, err := NewWorkerService(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast when dependencies are invalid during startup
		panic(fmt.Sprintf("failed to create WorkerService: %v", err))
	}
	return svc
}

// Wrap returns an accessor over an already loaded worker row.
func (s *WorkerService) Wrap(rec *model.WorkerRecord) *Worker {
	return &Worker{rec: rec, deps: s.deps}
}

// Get loads a worker by id. A missing row yields data.ErrWorkerNotFound.
func (s *WorkerService) Get(ctx context.Context, id int64) (*Worker, error) {
	rec, err := s.deps.workers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get worker %d: %w", id, err)
	}
	return s.Wrap(rec), nil
}

// List returns worker accessors, newest first.
func (s *WorkerService) List(ctx context.Context, opts model.WorkerListOptions) ([]*Worker, error) {
	recs, err := s.deps.workers.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	out := make([]*Worker, len(recs))
	for i, rec := range recs {
		out[i] = s.Wrap(rec)
	}
	return out, nil
}

// Stop loads the worker and marks it stopped.
func (s *WorkerService) Stop(ctx context.Context, id int64) (*Worker, error) {
	w, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.Stop(ctx); err != nil {
		return nil, err
	}
	return w, nil
}

// Worker wraps one worker row and derives its lifecycle facts. Related
// execution rows are read on first successful use and reused afterwards;
// a failed load is retried on the next call.
// A Worker is not safe for concurrent Stop calls.
type Worker struct {
	rec  *model.WorkerRecord
	deps workerDeps

	last   lazy[*model.ExecRecord]
	execs  lazy[[]*model.ExecRecord]
	totals lazy[model.ExecTotals]
}

// lazy memoizes the first successful load.
type lazy[T any] struct {
	mu     sync.Mutex
	loaded bool
	val    T
}

func (l *lazy[T]) get(load func() (T, error)) (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		return l.val, nil
	}
	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	l.val, l.loaded = v, true
	return v, nil
}

// Record returns the underlying row.
func (w *Worker) Record() *model.WorkerRecord {
	return w.rec
}

// LastExecution returns the execution referenced by last_exec_id, or nil when
// the worker has none or the row no longer exists.
func (w *Worker) LastExecution(ctx context.Context) (*model.ExecRecord, error) {
	return w.last.get(func() (*model.ExecRecord, error) {
		if w.rec.LastExecID == nil {
			return nil, nil
		}
		e, err := w.deps.execs.GetByID(ctx, *w.rec.LastExecID)
		switch {
		case errors.Is(err, data.ErrExecNotFound):
			return nil, nil
		case err != nil:
			return nil, fmt.Errorf("load last execution of worker %d: %w", w.rec.ID, err)
		}
		return e, nil
	})
}

// Executions returns every execution owned by the worker in start order.
func (w *Worker) Executions(ctx context.Context) ([]*model.ExecRecord, error) {
	return w.execs.get(func() ([]*model.ExecRecord, error) {
		execs, err := w.deps.execs.ListByWorker(ctx, w.rec.ID)
		if err != nil {
			return nil, fmt.Errorf("load executions of worker %d: %w", w.rec.ID, err)
		}
		if execs == nil {
			execs = []*model.ExecRecord{}
		}
		return execs, nil
	})
}

// ExecutionTotals counts started and done executions. A worker without
// executions yields the zero value.
func (w *Worker) ExecutionTotals(ctx context.Context) (model.ExecTotals, error) {
	return w.totals.get(func() (model.ExecTotals, error) {
		totals, err := w.deps.execs.TotalsByWorker(ctx, w.rec.ID)
		if err != nil {
			return model.ExecTotals{}, fmt.Errorf("count executions of worker %d: %w", w.rec.ID, err)
		}
		return totals, nil
	})
}

// Duration is finished_at - started_at, or now - started_at while running.
func (w *Worker) Duration() time.Duration {
	return w.rec.Duration(w.deps.clock.Now())
}

// IsIdle reports whether there is no last execution or it has completed.
func (w *Worker) IsIdle(ctx context.Context) (bool, error) {
	last, err := w.LastExecution(ctx)
	if err != nil {
		return false, err
	}
	return model.IsIdle(last), nil
}

// IsStopped reports whether stopped_at is set.
func (w *Worker) IsStopped() bool {
	return w.rec.IsStopped()
}

// State derives the lifecycle state.
func (w *Worker) State(ctx context.Context) (model.WorkerState, error) {
	last, err := w.LastExecution(ctx)
	if err != nil {
		return "", err
	}
	return model.DeriveWorkerState(w.rec, last), nil
}

// Stop sets stopped_at to now and persists it. Calling Stop again overwrites
// the timestamp.
func (w *Worker) Stop(ctx context.Context) error {
	now := w.deps.clock.Now().Unix()
	if err := w.deps.workers.UpdateStoppedAt(ctx, w.rec.ID, now); err != nil {
		return fmt.Errorf("stop worker %d: %w", w.rec.ID, err)
	}
	w.rec.StoppedAt = &now
	w.deps.logger.InfoContext(ctx, "worker stopped", "id", w.rec.ID, "stopped_at", now)
	return nil
}

// WorkerView is the serialized form of a worker with its derived fields.
type WorkerView struct {
	*model.WorkerRecord
	State            model.WorkerState `json:"state"`
	Idle             bool              `json:"idle"`
	Stopped          bool              `json:"stopped"`
	DurationSeconds  int64             `json:"duration_seconds"`
	ExecTotalStarted int               `json:"exec_total_started"`
	ExecTotalDone    int               `json:"exec_total_done"`
}

// View resolves every derived field.
func (w *Worker) View(ctx context.Context) (*WorkerView, error) {
	state, err := w.State(ctx)
	if err != nil {
		return nil, err
	}
	idle, err := w.IsIdle(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := w.ExecutionTotals(ctx)
	if err != nil {
		return nil, err
	}
	return &WorkerView{
		WorkerRecord:     w.rec,
		State:            state,
		Idle:             idle,
		Stopped:          w.IsStopped(),
		DurationSeconds:  int64(w.Duration() / time.Second),
		ExecTotalStarted: totals.Started,
		ExecTotalDone:    totals.Done,
	}, nil
}
