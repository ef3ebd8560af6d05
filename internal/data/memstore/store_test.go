package memstore

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/mmk-queue-monitor/internal/core"
	"github.com/target/mmk-queue-monitor/internal/data"
	"github.com/target/mmk-queue-monitor/internal/domain/filter"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
	"github.com/target/mmk-queue-monitor/internal/testutil"
)

var (
	_ core.PushRepository   = (*PushRepo)(nil)
	_ core.ExecRepository   = (*ExecRepo)(nil)
	_ core.WorkerRepository = (*WorkerRepo)(nil)
)

type fixture struct {
	store                                      *Store
	waiting, running, buried, retried, stopped int64
	worker                                     int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := testutil.TestTime().Unix()
	s := New()
	f := fixture{store: s}

	f.worker = s.AddWorker(*testutil.NewWorker().Build())
	f.waiting = s.AddPush(*testutil.NewPush().WithUID("1").WithPushedAt(base).Build())
	f.running = s.AddPush(*testutil.NewPush().WithUID("2").WithClass(`app\jobs\ReportJob`).WithPushedAt(base + 10).Build())
	f.buried = s.AddPush(*testutil.NewPush().WithUID("3").WithSender("mail").
		WithData(`{"to":"100%_sure@example.com"}`).WithPushedAt(base + 20).Build())
	f.retried = s.AddPush(*testutil.NewPush().WithUID("4").WithClass(`app\jobs\ReportJob`).WithPushedAt(base + 30).Build())
	f.stopped = s.AddPush(*testutil.NewPush().WithUID("5").WithPushedAt(base + 40).WithStoppedAt(base + 50).Build())

	for _, e := range []*model.ExecRecord{
		testutil.NewExec(f.running).WithWorker(f.worker).Build(),
		testutil.NewExec(f.buried).WithWorker(f.worker).Done(base + 25).Failed("boom").Build(),
		testutil.NewExec(f.retried).WithWorker(f.worker).Done(base + 31).Failed("timeout").Retry().Build(),
	} {
		_, err := s.AddExec(*e)
		require.NoError(t, err)
	}
	return f
}

func searchIDs(t *testing.T, repo *PushRepo, expr query.Expr) []int64 {
	t.Helper()
	items, err := repo.Search(context.Background(), expr, model.PushListOptions{Limit: 1000})
	require.NoError(t, err)
	ids := make([]int64, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestPushRepo_Scopes(t *testing.T) {
	f := newFixture(t)
	repo := f.store.Pushes()

	tests := map[model.Scope][]int64{
		model.ScopeWaiting:    {f.retried, f.waiting},
		model.ScopeInProgress: {f.running},
		model.ScopeDone:       {f.buried},
		model.ScopeSuccess:    {},
		model.ScopeBuried:     {f.buried},
		model.ScopeFailed:     {f.retried, f.buried},
		model.ScopeStopped:    {f.stopped},
	}
	for scope, want := range tests {
		t.Run(string(scope), func(t *testing.T) {
			assert.Equal(t, want, searchIDs(t, repo, query.InScope{Scope: scope}))
		})
	}
}

func TestPushRepo_DeletedLastExecCountsAsInProgress(t *testing.T) {
	f := newFixture(t)
	p, err := f.store.Pushes().GetByID(context.Background(), f.buried)
	require.NoError(t, err)
	f.store.DeleteExec(*p.LastExecID)

	assert.Contains(t, searchIDs(t, f.store.Pushes(), query.InScope{Scope: model.ScopeInProgress}), f.buried)
	assert.NotContains(t, searchIDs(t, f.store.Pushes(), query.InScope{Scope: model.ScopeBuried}), f.buried)
}

func TestPushRepo_Predicates(t *testing.T) {
	f := newFixture(t)
	repo := f.store.Pushes()
	base := testutil.TestTime().Unix()

	assert.Equal(t, []int64{f.buried},
		searchIDs(t, repo, query.Eq{Field: model.PushFieldSenderName, Value: "mail"}))
	assert.Equal(t, []int64{f.retried, f.running},
		searchIDs(t, repo, query.Contains{Field: model.PushFieldJobClass, Value: "Report"}))
	assert.Empty(t, searchIDs(t, repo, query.Contains{Field: model.PushFieldJobClass, Value: "report"}), "case-sensitive")
	assert.Equal(t, []int64{f.buried},
		searchIDs(t, repo, query.Contains{Field: model.PushFieldJobData, Value: "100%_sure"}))
	assert.Equal(t, []int64{f.retried, f.buried, f.running},
		searchIDs(t, repo, query.Range{Field: model.PushFieldPushedAt, From: base + 10, To: base + 30}))
	assert.Empty(t, searchIDs(t, repo, query.None{}))
	assert.Len(t, searchIDs(t, repo, query.All{}), 5)

	combined := query.And(
		query.Eq{Field: model.PushFieldSenderName, Value: "queue"},
		query.InScope{Scope: model.ScopeWaiting},
	)
	assert.Equal(t, []int64{f.retried, f.waiting}, searchIDs(t, repo, combined))
}

func TestPushRepo_RejectsUnsupportedFields(t *testing.T) {
	repo := newFixture(t).store.Pushes()
	ctx := context.Background()

	_, err := repo.Search(ctx, query.Range{Field: model.PushFieldJobClass}, model.PushListOptions{})
	assert.Error(t, err)
	_, err = repo.Count(ctx, query.Eq{Field: model.PushFieldPushedAt, Value: "1"})
	assert.Error(t, err)
	_, err = repo.CountBy(ctx, query.All{}, model.PushFieldJobData)
	assert.Error(t, err)
	_, err = repo.Distinct(ctx, model.PushFieldPushedAt)
	assert.Error(t, err)
}

func TestPushRepo_Pagination(t *testing.T) {
	f := newFixture(t)
	repo := f.store.Pushes()
	ctx := context.Background()

	items, err := repo.Search(ctx, query.All{}, model.PushListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, f.retried, items[0].ID)
	assert.Equal(t, f.buried, items[1].ID)

	items, err = repo.Search(ctx, query.All{}, model.PushListOptions{Offset: 99})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPushRepo_Aggregates(t *testing.T) {
	f := newFixture(t)
	repo := f.store.Pushes()
	ctx := context.Background()

	byClass, err := repo.CountBy(ctx, query.All{}, model.PushFieldJobClass)
	require.NoError(t, err)
	assert.Equal(t, []model.NamedCount{
		{Name: `app\jobs\MailJob`, Count: 3},
		{Name: `app\jobs\ReportJob`, Count: 2},
	}, byClass)

	bySender, err := repo.CountBy(ctx, query.None{}, model.PushFieldSenderName)
	require.NoError(t, err)
	assert.Empty(t, bySender)

	senders, err := repo.Distinct(ctx, model.PushFieldSenderName)
	require.NoError(t, err)
	assert.Equal(t, []string{"mail", "queue"}, senders)
}

func TestPushRepo_GetAndStop(t *testing.T) {
	f := newFixture(t)
	repo := f.store.Pushes()
	ctx := context.Background()

	require.NoError(t, repo.MarkStopped(ctx, f.waiting, 99))
	p, err := repo.GetByID(ctx, f.waiting)
	require.NoError(t, err)
	require.NotNil(t, p.StoppedAt)
	assert.Equal(t, int64(99), *p.StoppedAt)

	// Returned records are copies.
	p.JobClass = "mutated"
	again, _ := repo.GetByID(ctx, f.waiting)
	assert.NotEqual(t, "mutated", again.JobClass)

	_, err = repo.GetByID(ctx, 12345)
	assert.ErrorIs(t, err, data.ErrPushNotFound)
	assert.ErrorIs(t, repo.MarkStopped(ctx, 12345, 1), data.ErrPushNotFound)
}

// The pushed range ends at 23:59:59 of the end date, inclusive.
func TestPushRepo_PushedRangeBoundaries(t *testing.T) {
	s := New()
	at := func(v string) int64 {
		ts, err := time.ParseInLocation(time.DateTime, v, time.UTC)
		require.NoError(t, err)
		return ts.Unix()
	}
	first := s.AddPush(*testutil.NewPush().WithPushedAt(at("2024-03-01 00:00:00")).Build())
	last := s.AddPush(*testutil.NewPush().WithPushedAt(at("2024-03-01 23:59:59")).Build())
	s.AddPush(*testutil.NewPush().WithPushedAt(at("2024-03-02 00:00:00")).Build())
	s.AddPush(*testutil.NewPush().WithPushedAt(at("2024-02-29 23:59:59")).Build())

	f := filter.FromValues(url.Values{"pushed": {"2024-03-01 - 2024-03-01"}}, filter.WithLocation(time.UTC))
	assert.Equal(t, []int64{last, first}, searchIDs(t, s.Pushes(), f.Expr()))

	// An impossible date passes validation and applies no range at all.
	lenient := filter.FromValues(url.Values{"pushed": {"2024-02-30 - 2024-03-01"}}, filter.WithLocation(time.UTC))
	assert.Len(t, searchIDs(t, s.Pushes(), lenient.Expr()), 4)

	// An unknown scope fails closed.
	invalid := filter.FromValues(url.Values{"is": {"archived"}})
	assert.Empty(t, searchIDs(t, s.Pushes(), invalid.Expr()))
}

func TestExecRepo(t *testing.T) {
	f := newFixture(t)
	repo := f.store.Execs()
	ctx := context.Background()

	totals, err := repo.TotalsByWorker(ctx, f.worker)
	require.NoError(t, err)
	assert.Equal(t, model.ExecTotals{Started: 3, Done: 2}, totals)

	totals, err = repo.TotalsByWorker(ctx, 9999)
	require.NoError(t, err)
	assert.Equal(t, model.ExecTotals{}, totals)

	execs, err := repo.ListByWorker(ctx, f.worker)
	require.NoError(t, err)
	require.Len(t, execs, 3)
	assert.Less(t, execs[0].ID, execs[2].ID)

	attempts, err := repo.ListByPush(ctx, f.waiting)
	require.NoError(t, err)
	assert.Empty(t, attempts)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, data.ErrExecNotFound)

	_, err = f.store.AddExec(model.ExecRecord{PushID: 9999})
	assert.ErrorIs(t, err, errMissingPush)
}

func TestWorkerRepo(t *testing.T) {
	f := newFixture(t)
	finished := f.store.AddWorker(*testutil.NewWorker().WithSender("mail").Finished(testutil.TestTime().Unix() + 60).Build())
	repo := f.store.Workers()
	ctx := context.Background()

	w, err := repo.GetByID(ctx, f.worker)
	require.NoError(t, err)
	require.NotNil(t, w.LastExecID, "AddExec links the worker's last execution")

	all, err := repo.List(ctx, model.WorkerListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, finished, all[0].ID)

	active, err := repo.List(ctx, model.WorkerListOptions{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, f.worker, active[0].ID)

	mail, err := repo.List(ctx, model.WorkerListOptions{Sender: "mail"})
	require.NoError(t, err)
	require.Len(t, mail, 1)

	require.NoError(t, repo.UpdateStoppedAt(ctx, f.worker, 10))
	require.NoError(t, repo.UpdateStoppedAt(ctx, f.worker, 20))
	w, err = repo.GetByID(ctx, f.worker)
	require.NoError(t, err)
	assert.Equal(t, int64(20), *w.StoppedAt)

	assert.ErrorIs(t, repo.UpdateStoppedAt(ctx, 9999, 1), data.ErrWorkerNotFound)
}

func TestStore_SequencePerTable(t *testing.T) {
	s := New()
	workerID := s.AddWorker(*testutil.NewWorker().Build())
	pushID := s.AddPush(*testutil.NewPush().Build())
	execID, err := s.AddExec(*testutil.NewExec(pushID).WithWorker(workerID).Build())
	require.NoError(t, err)

	assert.Equal(t, int64(1), workerID)
	assert.Equal(t, int64(1), pushID)
	assert.Equal(t, int64(1), execID)

	assert.Equal(t, int64(2), s.AddPush(*testutil.NewPush().Build()))
	assert.Equal(t, int64(10), s.AddWorker(*testutil.NewWorker().WithID(10).Build()))
	assert.Equal(t, int64(11), s.AddWorker(*testutil.NewWorker().Build()))
	assert.Equal(t, int64(3), s.AddPush(*testutil.NewPush().Build()))
}
