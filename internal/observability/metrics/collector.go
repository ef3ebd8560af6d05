package metrics

import (
	"context"
	"log/slog"
	"time"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
)

const (
	defaultInterval = time.Minute
	queryTimeout    = 10 * time.Second
)

// ScopeCounter counts pushes matching an expression.
type ScopeCounter interface {
	Count(ctx context.Context, expr query.Expr) (int, error)
}

// CollectScopes refreshes the per-scope job gauge once.
func (r *Recorder) CollectScopes(ctx context.Context, counter ScopeCounter) error {
	if r == nil {
		return nil
	}
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	for _, opt := range model.Scopes() {
		n, err := counter.Count(queryCtx, query.InScope{Scope: opt.Scope})
		if err != nil {
			return err
		}
		r.SetJobs(string(opt.Scope), n)
	}
	return nil
}

// StartCollector refreshes the job gauges every interval until ctx is done.
func (r *Recorder) StartCollector(ctx context.Context, counter ScopeCounter, interval time.Duration, logger *slog.Logger) {
	if r == nil || counter == nil {
		return
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := r.CollectScopes(ctx, counter); err != nil && ctx.Err() == nil {
				logger.WarnContext(ctx, "scope metrics collection failed", "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}
