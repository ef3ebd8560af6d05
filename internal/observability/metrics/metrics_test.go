package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
	apperrors "github.com/target/mmk-queue-monitor/internal/errors"
)

type fakeCounter struct {
	counts map[model.Scope]int
	err    error
}

func (f fakeCounter) Count(_ context.Context, expr query.Expr) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[expr.(query.InScope).Scope], nil
}

func TestRecorder_Counters(t *testing.T) {
	r := New("")

	r.ObserveRequest("GET /api/jobs", http.MethodGet, 200, 15*time.Millisecond)
	r.ObserveRequest("GET /api/jobs", http.MethodGet, 200, 5*time.Millisecond)
	r.ObserveRequest("", http.MethodGet, 404, time.Millisecond)
	assert.InDelta(t, 2, testutil.ToFloat64(r.requests.WithLabelValues("GET /api/jobs", "GET", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.requests.WithLabelValues("unmatched", "GET", "404")), 0)

	r.ListLookup("senders", true)
	r.ListLookup("senders", false)
	r.ListLookup("senders", false)
	assert.InDelta(t, 1, testutil.ToFloat64(r.lookups.WithLabelValues("senders", "hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.lookups.WithLabelValues("senders", "miss")), 0)

	r.Operation("stop_worker", nil)
	r.Operation("stop_worker", apperrors.NotFound("Worker"))
	assert.InDelta(t, 1, testutil.ToFloat64(r.ops.WithLabelValues("stop_worker", ResultError, "not_found")), 0)
}

func TestRecorder_CollectScopes(t *testing.T) {
	r := New("qm")
	counter := fakeCounter{counts: map[model.Scope]int{model.ScopeWaiting: 4, model.ScopeBuried: 1}}

	require.NoError(t, r.CollectScopes(context.Background(), counter))
	assert.InDelta(t, 4, testutil.ToFloat64(r.jobs.WithLabelValues("waiting")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.jobs.WithLabelValues("buried")), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(r.jobs.WithLabelValues("stopped")), 0)

	boom := errors.New("db gone")
	assert.ErrorIs(t, r.CollectScopes(context.Background(), fakeCounter{err: boom}), boom)
}

func TestRecorder_Handler(t *testing.T) {
	r := New("qm")
	r.ListLookup("classes", true)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `qm_list_cache_lookups_total{list="classes",result="hit"} 1`)
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveRequest("x", "GET", 200, time.Second)
		r.ListLookup("senders", true)
		r.Operation("x", nil)
		r.SetJobs("waiting", 1)
		require.NoError(t, r.CollectScopes(context.Background(), nil))
		r.StartCollector(context.Background(), nil, time.Second, nil)
	})
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
