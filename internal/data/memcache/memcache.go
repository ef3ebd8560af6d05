// Package memcache is an in-process LRU cache with per-entry TTL implementing
// core.CacheRepository, for single-instance deployments without Redis.
package memcache

import (
	"container/list"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

var errEmptyKey = errors.New("key cannot be empty")

// Cache is safe for concurrent use.
type Cache struct {
	mu     sync.Mutex
	cap    int
	ll     *list.List               // front = most-recently used
	items  map[string]*list.Element // key -> element
	now    func() time.Time
	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
}

type entry struct {
	key    string
	value  []byte
	expiry time.Time // zero means no expiry
}

// Config groups constructor options.
type Config struct {
	Capacity int
	// Now is the clock used for expiry. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Capacity: 256, Now: time.Now}
}

// New creates a Cache.
func New(cfg Config) *Cache {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = DefaultConfig().Capacity
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Cache{
		cap:   capacity,
		ll:    list.New(),
		items: make(map[string]*list.Element, capacity),
		now:   nowFn,
	}
}

// Get returns the value for key, or nil when absent or expired.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errEmptyKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, found := c.items[key]
	if !found {
		c.misses.Add(1)
		return nil, nil
	}
	ent := el.Value.(*entry)
	if c.isExpired(ent) {
		c.removeElement(el)
		c.misses.Add(1)
		return nil, nil
	}
	c.ll.MoveToFront(el)
	c.hits.Add(1)
	return ent.value, nil
}

// Set inserts or replaces a value. ttl <= 0 means no expiration.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errEmptyKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}
	if el, found := c.items[key]; found {
		ent := el.Value.(*entry)
		ent.value = value
		ent.expiry = exp
		c.ll.MoveToFront(el)
		return nil
	}

	c.items[key] = c.ll.PushFront(&entry{key: key, value: value, expiry: exp})
	c.evictIfNeeded()
	return nil
}

// Delete removes a key and reports whether a live entry existed.
func (c *Cache) Delete(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false, nil
	}
	live := !c.isExpired(el.Value.(*entry))
	c.removeElement(el)
	return live, nil
}

// Health always succeeds.
func (c *Cache) Health(context.Context) error {
	return nil
}

// Len returns the current number of items, expired ones included until touched.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// Stats are simple counters for observability.
type Stats struct {
	Hits, Misses, Evictions uint64
	Size, Capacity          int
}

// Stats returns a snapshot of counters and sizes.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicts.Load(),
		Size:      c.Len(),
		Capacity:  c.cap,
	}
}

// caller must hold c.mu
func (c *Cache) isExpired(e *entry) bool {
	if e.expiry.IsZero() {
		return false
	}
	return c.now().After(e.expiry)
}

func (c *Cache) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry).key)
}

func (c *Cache) evictIfNeeded() {
	for c.ll.Len() > c.cap {
		el := c.ll.Back()
		if el == nil {
			return
		}
		c.removeElement(el)
		c.evicts.Add(1)
	}
}
