package memcache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/mmk-queue-monitor/internal/core"
)

var _ core.CacheRepository = (*Cache)(nil)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Add(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestCache(capacity int) (*Cache, *clock) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(Config{Capacity: capacity, Now: clk.Now}), clk
}

func TestCache_SetGetExpire(t *testing.T) {
	c, clk := newTestCache(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	clk.Add(time.Minute)
	v, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v, "entry is live at exactly its expiry")

	clk.Add(time.Second)
	v, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Zero(t, c.Len())
}

func TestCache_NoTTL(t *testing.T) {
	c, clk := newTestCache(10)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	clk.Add(24 * 365 * time.Hour)
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestCache_Delete(t *testing.T) {
	c, clk := newTestCache(10)
	ctx := context.Background()

	deleted, err := c.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	deleted, err = c.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, deleted)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	clk.Add(time.Minute)
	deleted, err = c.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, deleted, "expired entries do not count")
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	_, _ = c.Get(ctx, "a")
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))

	v, _ := c.Get(ctx, "b")
	assert.Nil(t, v)
	v, _ = c.Get(ctx, "a")
	assert.Equal(t, []byte("1"), v)

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Evictions)
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, 2, stats.Capacity)
}

func TestCache_EmptyKey(t *testing.T) {
	c := New(DefaultConfig())
	ctx := context.Background()

	require.ErrorIs(t, c.Set(ctx, "", nil, 0), errEmptyKey)
	_, err := c.Get(ctx, "")
	require.ErrorIs(t, err, errEmptyKey)
	_, err = c.Delete(ctx, "")
	require.ErrorIs(t, err, errEmptyKey)
	assert.NoError(t, c.Health(ctx))
}

// A list cached through ListCacheService stays stale until its TTL passes.
func TestCache_ListCacheStaleness(t *testing.T) {
	c, clk := newTestCache(10)
	lists := core.NewListCacheService(core.ListCacheServiceOptions{
		Cache:  c,
		Config: core.ListCacheConfig{Prefix: "qm", TTL: time.Hour},
	})
	ctx := context.Background()

	source := []string{"a", "b"}
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return append([]string(nil), source...), nil
	}

	got, err := lists.Strings(ctx, "senders", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)

	source = []string{"a", "b", "c"}
	clk.Add(59 * time.Minute)
	got, err = lists.Strings(ctx, "senders", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, calls)

	clk.Add(2 * time.Minute)
	got, err = lists.Strings(ctx, "senders", load)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.Equal(t, 2, calls)
}
