package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/target/mmk-queue-monitor/internal/data"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
)

// PushRepo implements core.PushRepository over a Store.
type PushRepo struct {
	s *Store
}

func stringField(p *model.PushRecord, f model.PushField) (string, error) {
	switch f {
	case model.PushFieldSenderName:
		return p.SenderName, nil
	case model.PushFieldJobClass:
		return p.JobClass, nil
	case model.PushFieldJobData:
		return p.JobData, nil
	}
	return "", fmt.Errorf("field %q is not a text column", f)
}

// caller must hold s.mu
func (r *PushRepo) match(expr query.Expr, p *model.PushRecord) (bool, error) {
	for _, term := range query.Terms(expr) {
		var ok bool
		switch e := term.(type) {
		case query.None:
			return false, nil
		case query.Eq:
			v, err := stringField(p, e.Field)
			if err != nil {
				return false, err
			}
			ok = v == e.Value
		case query.Contains:
			v, err := stringField(p, e.Field)
			if err != nil {
				return false, err
			}
			ok = strings.Contains(v, e.Value)
		case query.Range:
			if e.Field != model.PushFieldPushedAt {
				return false, fmt.Errorf("field %q is not a numeric column", e.Field)
			}
			ok = p.PushedAt >= e.From && p.PushedAt <= e.To
		case query.InScope:
			if !e.Scope.Valid() {
				return false, fmt.Errorf("unknown scope %q", e.Scope)
			}
			ok = e.Scope.Matches(r.s.pushState(p))
		default:
			return false, fmt.Errorf("unsupported expression %T", term)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// caller must hold s.mu
func (r *PushRepo) filter(expr query.Expr) ([]*model.PushRecord, error) {
	all := sortedByID(r.s.pushes, func(p *model.PushRecord) int64 { return p.ID }, true)
	out := make([]*model.PushRecord, 0, len(all))
	for _, p := range all {
		ok, err := r.match(expr, p)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// Search returns pushes matching expr, newest first.
func (r *PushRepo) Search(_ context.Context, expr query.Expr, opts model.PushListOptions) ([]*model.PushRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched, err := r.filter(expr)
	if err != nil {
		return nil, fmt.Errorf("search pushes: %w", err)
	}
	opts = opts.Normalize()
	items := page(matched, opts.Limit, opts.Offset)
	out := make([]*model.PushRecord, len(items))
	for i, p := range items {
		out[i] = clone(p)
	}
	return out, nil
}

// Count returns the number of pushes matching expr.
func (r *PushRepo) Count(_ context.Context, expr query.Expr) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched, err := r.filter(expr)
	if err != nil {
		return 0, fmt.Errorf("count pushes: %w", err)
	}
	return len(matched), nil
}

// CountBy groups pushes matching expr by field, ordered by name ascending.
func (r *PushRepo) CountBy(_ context.Context, expr query.Expr, field model.PushField) ([]model.NamedCount, error) {
	if field != model.PushFieldSenderName && field != model.PushFieldJobClass {
		return nil, fmt.Errorf("count pushes by %q: unsupported field", field)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched, err := r.filter(expr)
	if err != nil {
		return nil, fmt.Errorf("count pushes by %s: %w", field, err)
	}
	counts := map[string]int{}
	for _, p := range matched {
		v, _ := stringField(p, field)
		counts[v]++
	}
	out := make([]model.NamedCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, model.NamedCount{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b model.NamedCount) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Distinct returns the distinct values of field across all pushes, ascending.
func (r *PushRepo) Distinct(_ context.Context, field model.PushField) ([]string, error) {
	if field != model.PushFieldSenderName && field != model.PushFieldJobClass {
		return nil, fmt.Errorf("distinct %q: unsupported field", field)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]string, 0)
	for _, p := range r.s.pushes {
		v, _ := stringField(p, field)
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// GetByID returns a push by id.
func (r *PushRepo) GetByID(_ context.Context, id int64) (*model.PushRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.pushes[id]
	if !ok {
		return nil, data.ErrPushNotFound
	}
	return clone(p), nil
}

// MarkStopped sets stopped_at on a push.
func (r *PushRepo) MarkStopped(_ context.Context, id, stoppedAt int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.pushes[id]
	if !ok {
		return data.ErrPushNotFound
	}
	p.StoppedAt = &stoppedAt
	return nil
}
