package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func loadStatic(values []string, calls *int) func(context.Context) ([]string, error) {
	return func(context.Context) ([]string, error) {
		*calls++
		return values, nil
	}
}

func TestListCacheService_Strings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		setup     func(*MockCacheRepository)
		load      []string
		want      []string
		wantLoads int
	}{
		{
			name: "cache hit skips load",
			setup: func(cache *MockCacheRepository) {
				cache.EXPECT().Get(gomock.Any(), "qm:senders").Return([]byte(`["a","b"]`), nil)
			},
			load:      []string{"x"},
			want:      []string{"a", "b"},
			wantLoads: 0,
		},
		{
			name: "cache miss loads and stores",
			setup: func(cache *MockCacheRepository) {
				cache.EXPECT().Get(gomock.Any(), "qm:senders").Return(nil, nil)
				cache.EXPECT().Set(gomock.Any(), "qm:senders", []byte(`["a","b"]`), 10*time.Minute).Return(nil)
			},
			load:      []string{"a", "b"},
			want:      []string{"a", "b"},
			wantLoads: 1,
		},
		{
			name: "empty list is cached as empty array",
			setup: func(cache *MockCacheRepository) {
				cache.EXPECT().Get(gomock.Any(), "qm:senders").Return(nil, nil)
				cache.EXPECT().Set(gomock.Any(), "qm:senders", []byte(`[]`), 10*time.Minute).Return(nil)
			},
			load:      nil,
			want:      []string{},
			wantLoads: 1,
		},
		{
			name: "cache read error degrades to load",
			setup: func(cache *MockCacheRepository) {
				cache.EXPECT().Get(gomock.Any(), "qm:senders").Return(nil, errors.New("redis down"))
				cache.EXPECT().Set(gomock.Any(), "qm:senders", gomock.Any(), gomock.Any()).Return(errors.New("redis down"))
			},
			load:      []string{"a"},
			want:      []string{"a"},
			wantLoads: 1,
		},
		{
			name: "corrupt cache entry reloads",
			setup: func(cache *MockCacheRepository) {
				cache.EXPECT().Get(gomock.Any(), "qm:senders").Return([]byte(`{bad`), nil)
				cache.EXPECT().Set(gomock.Any(), "qm:senders", []byte(`["a"]`), 10*time.Minute).Return(nil)
			},
			load:      []string{"a"},
			want:      []string{"a"},
			wantLoads: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			cache := NewMockCacheRepository(ctrl)
			tt.setup(cache)

			svc := NewListCacheService(ListCacheServiceOptions{
				Cache:  cache,
				Config: ListCacheConfig{Prefix: "qm", TTL: 10 * time.Minute},
			})
			calls := 0
			got, err := svc.Strings(context.Background(), "senders", loadStatic(tt.load, &calls))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantLoads, calls)
		})
	}
}

func TestListCacheService_LoadErrorNotCached(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := NewMockCacheRepository(ctrl)
	cache.EXPECT().Get(gomock.Any(), "queue-monitor:classes").Return(nil, nil)

	svc := NewListCacheService(ListCacheServiceOptions{Cache: cache})
	_, err := svc.Strings(context.Background(), "classes", func(context.Context) ([]string, error) {
		return nil, errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
}

func TestListCacheService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewListCacheService(ListCacheServiceOptions{})
	assert.Equal(t, "queue-monitor:senders", svc.Key("senders"))
	assert.Equal(t, time.Hour, svc.TTL())

	calls := 0
	got, err := svc.Strings(context.Background(), "senders", loadStatic([]string{"a"}, &calls))
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 1, calls)
	assert.NoError(t, svc.Invalidate(context.Background(), "senders"))
}

func TestListCacheService_Invalidate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := NewMockCacheRepository(ctrl)
	gomock.InOrder(
		cache.EXPECT().Delete(gomock.Any(), "qm:senders").Return(true, nil),
		cache.EXPECT().Delete(gomock.Any(), "qm:classes").Return(false, nil),
	)

	svc := NewListCacheService(ListCacheServiceOptions{
		Cache:  cache,
		Config: ListCacheConfig{Prefix: "qm"},
	})
	require.NoError(t, svc.Invalidate(context.Background(), "senders", "classes"))

	cache.EXPECT().Delete(gomock.Any(), "qm:senders").Return(false, errors.New("boom"))
	assert.Error(t, svc.Invalidate(context.Background(), "senders"))
}

func TestListCacheService_OnLookup(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	cache := NewMockCacheRepository(ctrl)
	cache.EXPECT().Get(gomock.Any(), "qm:classes").Return([]byte(`["A"]`), nil)

	var seen []bool
	svc := NewListCacheService(ListCacheServiceOptions{
		Cache:    cache,
		Config:   ListCacheConfig{Prefix: "qm"},
		OnLookup: func(_ string, hit bool) { seen = append(seen, hit) },
	})
	_, err := svc.Strings(context.Background(), "classes", loadStatic(nil, new(int)))
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, seen)
}
