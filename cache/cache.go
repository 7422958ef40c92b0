// Package cache implements the keyed query cache that sits between
// the portal API and the data-bearing surfaces. Reads are memoized by
// (resource kind, parameters); any successful mutation of a kind
// drops every cached entry of that kind, so the next read refetches.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a cached result stays fresh with no
// intervening invalidation.
const DefaultTTL = 5 * time.Minute

// Fetcher produces the value for a cache key.
type Fetcher func(ctx context.Context) (any, error)

// Mutation performs a write against the API.
type Mutation func(ctx context.Context) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
	gen       uint64
}

// Cache memoizes query results per (kind, params) key. Invalidation is
// deliberately coarse: a mutation of "articles" drops every cached
// articles query regardless of parameters.
type Cache struct {
	ttl   time.Duration
	log   *zap.Logger
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry
	gens    map[string]uint64
}

// New creates a Cache. A ttl of zero selects DefaultTTL.
func New(ttl time.Duration, log *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{
		ttl:     ttl,
		log:     log,
		entries: make(map[string]entry),
		gens:    make(map[string]uint64),
	}
}

func cacheKey(kind, params string) string {
	return kind + "?" + params
}

// Do returns the cached value for (kind, params), fetching it when
// missing or stale. Concurrent callers for the same key share one
// in-flight fetch. A fetch whose kind is invalidated while in flight
// still returns its value to waiting callers but is not stored, so the
// next reader refetches (last request wins).
func (c *Cache) Do(ctx context.Context, kind, params string, fetch Fetcher) (any, error) {
	key := cacheKey(kind, params)

	c.mu.Lock()
	gen := c.gens[kind]
	if e, ok := c.entries[key]; ok && e.gen == gen && time.Since(e.fetchedAt) < c.ttl {
		c.mu.Unlock()
		return e.value, nil
	}
	c.mu.Unlock()

	// The generation is part of the flight key so a reader arriving
	// after an invalidation never joins a pre-mutation fetch.
	flightKey := fmt.Sprintf("%s#%d?%s", kind, gen, params)
	value, err, _ := c.group.Do(flightKey, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gens[kind] == gen {
			c.entries[key] = entry{value: v, fetchedAt: time.Now(), gen: gen}
		} else {
			c.log.Debug("discarding stale fetch result", zap.String("key", key))
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Invalidate marks every cached entry of the kind stale.
func (c *Cache) Invalidate(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gens[kind]++
	prefix := kind + "?"
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
}

// Mutate performs a write and, only when it succeeds, invalidates the
// kind so subsequent reads refetch. A failed mutation leaves the cache
// exactly as it was: nothing changed server-side.
func (c *Cache) Mutate(ctx context.Context, kind string, op Mutation) (any, error) {
	value, err := op(ctx)
	if err != nil {
		return nil, err
	}
	c.Invalidate(kind)
	return value, nil
}

// Peek reports whether a fresh cached value exists for the key, without
// fetching. Intended for tests and diagnostics.
func (c *Cache) Peek(kind, params string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[cacheKey(kind, params)]
	if !ok || e.gen != c.gens[kind] || time.Since(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}
