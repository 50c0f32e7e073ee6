// Package primitive caches constructed compute primitives by the shape and
// algorithm parameters they were built for.
//
// A backend derives a Key from an operation descriptor, looks the key up and,
// on a miss, constructs the primitive and stores it. The cache then owns the
// primitive for its own lifetime; nothing is evicted.
package primitive

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"golang.org/x/sync/singleflight"
)

// Releaser is implemented by primitives that hold resources which must be
// freed explicitly. The cache calls Release on handles it stops owning.
type Releaser interface {
	Release()
}

// Config configures a Cache.
type Config struct {
	// Logger overrides the package logger for this cache. Nil follows
	// Logger(), including later SetLogger calls.
	Logger *slog.Logger

	// MeterProvider receives cache hit/miss/build counters.
	// Nil disables metrics.
	MeterProvider metric.MeterProvider
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Entries     int
	Hits        uint64
	Misses      uint64
	Stores      uint64
	Builds      uint64
	BuildErrors uint64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache maps keys to primitive handles of type P.
// It is safe for concurrent use.
type Cache[P any] struct {
	mu      sync.RWMutex
	entries map[Key]P

	group   singleflight.Group
	logger  *slog.Logger
	metrics *cacheMetrics

	hits        atomic.Uint64
	misses      atomic.Uint64
	stores      atomic.Uint64
	builds      atomic.Uint64
	buildErrors atomic.Uint64
}

// NewCache creates an empty cache.
func NewCache[P any](cfg Config) *Cache[P] {
	mp := cfg.MeterProvider
	if mp == nil {
		mp = noop.NewMeterProvider()
	}

	c := &Cache[P]{
		entries: make(map[Key]P),
		logger:  cfg.Logger,
	}

	m, err := newCacheMetrics(mp.Meter(meterName))
	if err != nil {
		c.log().Warn("primitive: metrics disabled", "error", err)
		m, _ = newCacheMetrics(noop.NewMeterProvider().Meter(meterName))
	}

	c.metrics = m
	return c
}

func (c *Cache[P]) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return Logger()
}

// Lookup returns the handle stored under key. A miss is a normal outcome
// and leaves the cache unchanged.
func (c *Cache[P]) Lookup(key Key) (P, bool) {
	c.mu.RLock()
	p, ok := c.entries[key]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	c.metrics.recordLookup(context.Background(), key, ok)
	return p, ok
}

// Store inserts or overwrites the handle under key and takes ownership of it.
// A replaced handle that implements Releaser is released.
func (c *Cache[P]) Store(key Key, p P) {
	c.mu.Lock()
	old, existed := c.entries[key]
	c.entries[key] = p
	c.mu.Unlock()

	c.stores.Add(1)
	if existed && !sameHandle(old, p) {
		release(old)
	}
}

// storeBuilt stores a freshly built handle unless another handle was stored
// under key while the build ran. In that case the stored handle wins, the
// built one is released, and the stored one is returned.
func (c *Cache[P]) storeBuilt(key Key, built P) P {
	c.mu.Lock()
	existing, ok := c.entries[key]
	if !ok {
		c.entries[key] = built
	}
	c.mu.Unlock()

	if !ok {
		c.stores.Add(1)
		return built
	}
	if !sameHandle(existing, built) {
		release(built)
	}
	return existing
}

// GetOrCreate returns the handle stored under key, building and storing it
// on a miss. Concurrent callers missing on the same key share one build.
// A failed build stores nothing and its error is returned to every waiter.
func (c *Cache[P]) GetOrCreate(ctx context.Context, key Key, build func(context.Context) (P, error)) (P, error) {
	var zero P
	if build == nil {
		return zero, ErrNilBuilder
	}
	if p, ok := c.Lookup(key); ok {
		return p, nil
	}

	v, err, shared := c.group.Do(key.flightKey(), func() (any, error) {
		// Another caller may have stored the key since our lookup.
		c.mu.RLock()
		p, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return p, nil
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		p, err := build(ctx)
		c.metrics.recordBuild(ctx, key, err)
		if err != nil {
			c.buildErrors.Add(1)
			c.log().Warn("primitive: build failed", "key", key.String(), "error", err)
			return nil, err
		}
		c.builds.Add(1)
		p = c.storeBuilt(key, p)
		c.log().Debug("primitive: built", "key", key.String(), "elapsed", time.Since(start))
		return p, nil
	})
	if err != nil {
		return zero, fmt.Errorf("primitive: build %s: %w", key, err)
	}
	if shared {
		c.log().Debug("primitive: shared build", "key", key.String())
	}

	p, _ := v.(P)
	return p, nil
}

// Len returns the number of cached primitives.
func (c *Cache[P]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns the cached keys in a stable order.
func (c *Cache[P]) Keys() []Key {
	c.mu.RLock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Family != keys[j].Family {
			return keys[i].Family < keys[j].Family
		}
		return keys[i].Params < keys[j].Params
	})
	return keys
}

// Stats returns a snapshot of cache activity.
func (c *Cache[P]) Stats() Stats {
	return Stats{
		Entries:     c.Len(),
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Stores:      c.stores.Load(),
		Builds:      c.builds.Load(),
		BuildErrors: c.buildErrors.Load(),
	}
}

// Release releases every owned handle and empties the cache.
// The cache stays usable afterwards.
func (c *Cache[P]) Release() {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[Key]P)
	c.mu.Unlock()

	for _, p := range entries {
		release(p)
	}
}

func release[P any](p P) {
	if r, ok := any(p).(Releaser); ok && r != nil {
		r.Release()
	}
}

// sameHandle reports whether a and b are the same handle. Handles of
// non-comparable types are never considered the same.
func sameHandle[P any](a, b P) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	if t := reflect.TypeOf(av); t != reflect.TypeOf(bv) || !t.Comparable() {
		return false
	}
	return av == bv
}
