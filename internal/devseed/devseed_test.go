package devseed

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-queue-monitor/internal/data/database"
	"github.com/target/mmk-queue-monitor/internal/data/memstore"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
	"github.com/target/mmk-queue-monitor/internal/domain/query"
	"github.com/target/mmk-queue-monitor/internal/testutil"
)

func TestRun_MemoryStoreCoversEveryScope(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	sum, err := Run(ctx, StoreSink{Store: store}, testutil.TestTime(), nil)
	require.NoError(t, err)
	assert.Equal(t, Summary{Pushes: 7, Workers: 3, Execs: 6}, sum)

	want := map[model.Scope]int{
		model.ScopeWaiting:    2,
		model.ScopeInProgress: 1,
		model.ScopeDone:       3,
		model.ScopeSuccess:    2,
		model.ScopeBuried:     1,
		model.ScopeFailed:     3,
		model.ScopeStopped:    1,
	}
	for scope, n := range want {
		got, err := store.Pushes().Count(ctx, query.InScope{Scope: scope})
		require.NoError(t, err)
		assert.Equal(t, n, got, "scope %s", scope)
	}

	senders, err := store.Pushes().Distinct(ctx, model.PushFieldSenderName)
	require.NoError(t, err)
	assert.Equal(t, []string{"billing", "mail", "queue"}, senders)
}

func TestRun_StableJobUIDs(t *testing.T) {
	ctx := context.Background()
	a, b := memstore.New(), memstore.New()
	_, err := Run(ctx, StoreSink{Store: a}, testutil.TestTime(), nil)
	require.NoError(t, err)
	_, err = Run(ctx, StoreSink{Store: b}, testutil.TestTime(), nil)
	require.NoError(t, err)

	pa, err := a.Pushes().GetByID(ctx, 4)
	require.NoError(t, err)
	pb, err := b.Pushes().GetByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, pa.JobUID, pb.JobUID)
	assert.Len(t, pa.JobUID, 36)
}

func TestRun_NilSink(t *testing.T) {
	_, err := Run(context.Background(), nil, testutil.TestTime(), nil)
	assert.Error(t, err)
}

func TestNewSQLSink_UnknownDriver(t *testing.T) {
	_, err := NewSQLSink(nil, "sqlite", database.Tables{})
	assert.Error(t, err)
}

func TestSQLSink_Postgres(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		sink, err := NewSQLSink(db, database.DriverPostgres, database.Tables{})
		require.NoError(t, err)

		empty, err := sink.IsEmpty(ctx)
		require.NoError(t, err)
		require.True(t, empty)

		_, err = Run(ctx, sink, testutil.TestTime(), nil)
		require.NoError(t, err)

		empty, err = sink.IsEmpty(ctx)
		require.NoError(t, err)
		assert.False(t, empty)

		var linked int
		require.NoError(t, db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM queue_push WHERE last_exec_id IS NOT NULL`).Scan(&linked))
		assert.Equal(t, 5, linked)
	})
}

func TestRun_MemoryIDsStartAtOnePerTable(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	_, err := Run(ctx, StoreSink{Store: store}, testutil.TestTime(), nil)
	require.NoError(t, err)

	first, err := store.Pushes().GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "queue", first.SenderName)

	fifth, err := store.Pushes().GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "mail", fifth.SenderName)

	_, err = store.Workers().GetByID(ctx, 3)
	require.NoError(t, err)
}
