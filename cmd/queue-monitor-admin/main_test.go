package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/mmk-queue-monitor/config"
	"github.com/target/mmk-queue-monitor/internal/bootstrap"
	"github.com/target/mmk-queue-monitor/internal/domain/filter"
	"github.com/target/mmk-queue-monitor/internal/domain/model"
)

func memoryCommandContext(t *testing.T) (*commandContext, *bytes.Buffer) {
	t.Helper()
	cfg := config.AppConfig{
		DB:      config.DBConfig{Driver: config.DriverMemory, Seed: true},
		Cache:   config.CacheConfig{Backend: config.CacheBackendMemory},
		Monitor: config.MonitorConfig{Timezone: "UTC"},
	}
	cfg.Sanitize()

	out := &bytes.Buffer{}
	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: slog.New(slog.DiscardHandler),
		Config: cfg,
		Out:    out,
		In:     strings.NewReader(""),
	}

	// One container per test so state changes are visible to later commands.
	svcs, err := bootstrap.NewServices(context.Background(), &bootstrap.ServiceDeps{Config: &cmdCtx.Config, Logger: cmdCtx.Logger})
	require.NoError(t, err)
	prev := servicesFactory
	servicesFactory = func(*commandContext, *sql.DB, redis.UniversalClient) (bootstrap.ServiceContainer, error) {
		return svcs, nil
	}
	t.Cleanup(func() { servicesFactory = prev })
	return cmdCtx, out
}

func TestParseSearchFlags(t *testing.T) {
	opts, err := parseSearchFlags("search", []string{"--is", "failed", "--sender", "", "--limit", "5"}, true)
	require.NoError(t, err)
	assert.Equal(t, "failed", opts.Values.Get(filter.FieldIs))
	_, set := opts.Values[filter.FieldSender]
	assert.True(t, set, "explicitly empty flags are kept")
	_, set = opts.Values[filter.FieldClass]
	assert.False(t, set)
	assert.Equal(t, 5, opts.Limit)

	opts, err = parseSearchFlags("search", nil, true)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultPushPageSize, opts.Limit)

	_, err = parseSearchFlags("classes", []string{"--limit", "5"}, false)
	assert.Error(t, err)
	_, err = parseSearchFlags("search", []string{"--offset", "-1"}, true)
	assert.Error(t, err)
	_, err = parseSearchFlags("search", []string{"stray"}, true)
	assert.Error(t, err)
}

func TestParseIDFlags(t *testing.T) {
	id, jsonOut, err := parseIDFlags("job", []string{"--json", "12"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	assert.True(t, jsonOut)

	for _, args := range [][]string{nil, {"0"}, {"abc"}, {"1", "2"}} {
		_, _, err := parseIDFlags("job", args)
		assert.Error(t, err, "args %v", args)
	}
}

func TestParseMigrateFlags(t *testing.T) {
	opts, err := parseMigrateFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultMigrationTimeout, opts.Timeout)

	opts, err = parseMigrateFlags([]string{"--timeout", "30s"})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, opts.Timeout)

	_, err = parseMigrateFlags([]string{"--timeout", "0s"})
	assert.Error(t, err)

	seed, err := parseDBSeedFlags([]string{"--allow-remote", "--force"})
	require.NoError(t, err)
	assert.True(t, seed.AllowRemote)
	assert.True(t, seed.Force)
}

func TestParseWorkersFlags(t *testing.T) {
	opts, err := parseWorkersFlags([]string{"--active", "--sender", "mail"})
	require.NoError(t, err)
	assert.True(t, opts.Active)
	assert.Equal(t, "mail", opts.Sender)
	assert.Equal(t, model.DefaultWorkerPageSize, opts.Limit)

	_, err = parseWorkersFlags([]string{"--limit", "-3"})
	assert.Error(t, err)
}

func TestIsLikelyRemoteHost(t *testing.T) {
	tests := map[string]bool{
		"":               false,
		"localhost":      false,
		"127.0.0.1":      false,
		"::1":            false,
		"db.local":       false,
		"10.1.2.3":       true,
		"db.example.com": true,
	}
	for host, want := range tests {
		assert.Equal(t, want, isLikelyRemoteHost(host), "host %q", host)
	}
}

func TestConfirmAction(t *testing.T) {
	out := &bytes.Buffer{}
	cmdCtx := &commandContext{Out: out, In: strings.NewReader("YES\n")}
	require.NoError(t, confirmAction(cmdCtx, false, "Drop it."))
	assert.Contains(t, out.String(), "Drop it. Continue? [y/N]: ")

	cmdCtx.In = strings.NewReader("n\n")
	assert.Error(t, confirmAction(cmdCtx, false, "Drop it."))

	cmdCtx.In = strings.NewReader("")
	assert.Error(t, confirmAction(cmdCtx, false, "Drop it."))

	assert.NoError(t, confirmAction(&commandContext{}, true, "ignored"))
}

func TestPrintUsage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printUsage(&buf))
	usage := buf.String()
	for name := range commands() {
		assert.Contains(t, usage, "  "+name)
	}
	assert.Less(t, strings.Index(usage, "cache-clear"), strings.Index(usage, "workers"))
}

func TestRenderTTL(t *testing.T) {
	assert.Equal(t, "no expiry", renderTTL(-1))
	assert.Equal(t, "key missing", renderTTL(-2*time.Second))
	assert.Equal(t, "1m0s", renderTTL(time.Minute))
}

func TestRunSearch_Memory(t *testing.T) {
	cmdCtx, out := memoryCommandContext(t)

	require.NoError(t, runSearch(cmdCtx, []string{"--is", "failed"}))
	assert.Contains(t, out.String(), "ID  SENDER")
	assert.Contains(t, out.String(), "Showing 3 of 3")

	out.Reset()
	require.NoError(t, runSearch(cmdCtx, []string{"--sender", "billing", "--json"}))
	var page model.PushPage
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))
	assert.Equal(t, 2, page.Total)
	for _, p := range page.Items {
		assert.Equal(t, "billing", p.SenderName)
	}
}

func TestRunSearch_InvalidFilterMatchesNothing(t *testing.T) {
	cmdCtx, out := memoryCommandContext(t)
	require.NoError(t, runSearch(cmdCtx, []string{"--is", "nonsense"}))
	assert.Contains(t, out.String(), "Showing 0 of 0")
}

func TestRunStopJob_Memory(t *testing.T) {
	cmdCtx, out := memoryCommandContext(t)

	require.NoError(t, runStopJob(cmdCtx, []string{"1"}))
	assert.Contains(t, out.String(), "job 1 marked as stopped")

	out.Reset()
	require.NoError(t, runSearch(cmdCtx, []string{"--is", "stopped"}))
	assert.Contains(t, out.String(), "Showing 2 of 2")

	assert.Error(t, runStopJob(cmdCtx, []string{"999"}))
}

func TestRunJob_Memory(t *testing.T) {
	cmdCtx, out := memoryCommandContext(t)
	require.NoError(t, runJob(cmdCtx, []string{"5"}))
	assert.Contains(t, out.String(), "Sender: mail")
	assert.Contains(t, out.String(), "ATTEMPT")
}

func TestRunGroups_Memory(t *testing.T) {
	cmdCtx, out := memoryCommandContext(t)
	require.NoError(t, runSenders(cmdCtx, []string{"--json"}))
	var rows []model.NamedCount
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	assert.Equal(t, 7, total)
	assert.Len(t, rows, 3)
}

func TestRunWorkers_Memory(t *testing.T) {
	cmdCtx, out := memoryCommandContext(t)

	require.NoError(t, runWorkers(cmdCtx, []string{"--active", "--json"}))
	var views []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &views))
	assert.Len(t, views, 2)

	out.Reset()
	require.NoError(t, runWorkers(cmdCtx, nil))
	assert.Contains(t, out.String(), "billing")
	assert.Contains(t, out.String(), "EXECS (DONE/STARTED)")
}

func TestRunStopWorker_Memory(t *testing.T) {
	cmdCtx, out := memoryCommandContext(t)

	assert.Error(t, runStopWorker(cmdCtx, []string{"1"}), "no confirmation on empty input")

	out.Reset()
	require.NoError(t, runStopWorker(cmdCtx, []string{"--yes", "1"}))
	assert.Contains(t, out.String(), "worker 1")
	assert.Contains(t, out.String(), "marked as stopped")
}

func TestRunCacheClear_Memory(t *testing.T) {
	cmdCtx, out := memoryCommandContext(t)
	require.NoError(t, runCacheClear(cmdCtx, []string{"--yes"}))
	assert.Contains(t, out.String(), "cached lists cleared")
}

func TestRunCacheKeys_WithoutRedis(t *testing.T) {
	cmdCtx, out := memoryCommandContext(t)
	require.NoError(t, runCacheKeys(cmdCtx, nil))
	assert.Empty(t, out.String())
}

func TestWithDatabase_RejectsMemoryDriver(t *testing.T) {
	cmdCtx, _ := memoryCommandContext(t)
	err := withDatabase(cmdCtx, time.Second, func(context.Context, *sql.DB) error { return nil })
	assert.ErrorIs(t, err, errNeedsSQLDriver)
	assert.ErrorIs(t, runMigrations(cmdCtx, nil), errNeedsSQLDriver)
}
