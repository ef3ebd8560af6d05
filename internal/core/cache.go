// Package core defines the ports of the queue monitor and the list cache built on them.
package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

//go:generate mockgen -source=cache.go -destination=cache_mock.go -package=core

// CacheRepository defines the interface for caching operations.
// This follows the hexagonal architecture pattern where the core defines interfaces
// and the data layer provides implementations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// ListCacheService memoizes string lists under explicit keys with an explicit TTL.
// There is no lock around read-compute-store; concurrent misses recompute.
type ListCacheService struct {
	cache  CacheRepository
	prefix string
	ttl    time.Duration
	logger *slog.Logger
	onHit  func(name string, hit bool)
}

// ListCacheConfig holds key and expiry settings for cached lists.
type ListCacheConfig struct {
	Prefix string
	TTL    time.Duration
}

// ListCacheServiceOptions bundles dependencies for NewListCacheService.
type ListCacheServiceOptions struct {
	Cache  CacheRepository
	Config ListCacheConfig
	Logger *slog.Logger
	// OnLookup is called after every cache lookup. Optional.
	OnLookup func(name string, hit bool)
}

// DefaultListCacheConfig returns a ListCacheConfig with sensible defaults.
func DefaultListCacheConfig() ListCacheConfig {
	return ListCacheConfig{
		Prefix: "queue-monitor",
		TTL:    time.Hour,
	}
}

// NewListCacheService creates a new ListCacheService. A nil cache disables memoization.
func NewListCacheService(opts ListCacheServiceOptions) *ListCacheService {
	cfg := opts.Config
	def := DefaultListCacheConfig()
	if cfg.Prefix == "" {
		cfg.Prefix = def.Prefix
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ListCacheService{
		cache:  opts.Cache,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		logger: logger.With("component", "list_cache"),
		onHit:  opts.OnLookup,
	}
}

// Key returns the cache key of a named list.
func (s *ListCacheService) Key(name string) string {
	return s.prefix + ":" + name
}

// TTL returns the expiry applied to stored lists.
func (s *ListCacheService) TTL() time.Duration {
	return s.ttl
}

// Strings returns the cached list for name, or calls load and caches its result.
// Cache failures are logged and fall back to load.
func (s *ListCacheService) Strings(
	ctx context.Context,
	name string,
	load func(context.Context) ([]string, error),
) ([]string, error) {
	if s.cache == nil {
		return load(ctx)
	}

	key := s.Key(name)
	if cached, ok := s.lookup(ctx, key); ok {
		s.report(name, true)
		return cached, nil
	}
	s.report(name, false)

	values, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}

	raw, err := json.Marshal(values)
	if err != nil {
		s.logger.WarnContext(ctx, "encode cached list", "key", key, "error", err)
		return values, nil
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "store cached list", "key", key, "error", err)
	}
	return values, nil
}

func (s *ListCacheService) lookup(ctx context.Context, key string) ([]string, bool) {
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "read cached list", "key", key, "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		s.logger.WarnContext(ctx, "decode cached list", "key", key, "error", err)
		return nil, false
	}
	return values, true
}

func (s *ListCacheService) report(name string, hit bool) {
	if s.onHit != nil {
		s.onHit(name, hit)
	}
}

// Invalidate removes the named lists from the cache.
func (s *ListCacheService) Invalidate(ctx context.Context, names ...string) error {
	if s.cache == nil {
		return nil
	}
	for _, name := range names {
		if _, err := s.cache.Delete(ctx, s.Key(name)); err != nil {
			return err
		}
	}
	return nil
}
