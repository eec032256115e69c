// Package cache keeps rendered listing data and marks it stale after writes.
package cache

import (
	"context"
	"sync"
	"time"
)

// Loader fetches a fresh value from the source of truth.
type Loader[V any] func(ctx context.Context) (V, error)

// Pages caches listing values per path and variant (typically the query
// string) with a TTL. Invalidate drops every variant of a path at once.
type Pages[V any] struct {
	entries map[string]map[string]*entry[V]
	// versions change on every invalidation; a load that started before
	// one is not stored
	versions map[string]uint64
	epoch    uint64
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewPages creates an empty cache. ttl is how long a listing is served
// before it is re-fetched even without invalidation.
func NewPages[V any](ttl time.Duration) *Pages[V] {
	return &Pages[V]{
		entries:  make(map[string]map[string]*entry[V]),
		versions: make(map[string]uint64),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Load returns the cached value for path/variant, calling load on a miss or
// after expiry. Errors are returned as is and never cached.
func (p *Pages[V]) Load(ctx context.Context, path, variant string, load Loader[V]) (V, error) {
	p.mu.RLock()
	e, ok := p.entries[path][variant]
	version, epoch := p.versions[path], p.epoch
	p.mu.RUnlock()

	if ok && p.now().Before(e.expiresAt) {
		return e.value, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.versions[path] != version || p.epoch != epoch {
		// invalidated while loading: serve the value but keep it out of the cache
		return value, nil
	}
	if p.entries[path] == nil {
		p.entries[path] = make(map[string]*entry[V])
	}
	p.entries[path][variant] = &entry[V]{value: value, expiresAt: p.now().Add(p.ttl)}

	return value, nil
}

// Invalidate drops every cached variant of path.
func (p *Pages[V]) Invalidate(path string) {
	p.mu.Lock()
	delete(p.entries, path)
	p.versions[path]++
	p.mu.Unlock()
}

// InvalidateAll clears the entire cache.
func (p *Pages[V]) InvalidateAll() {
	p.mu.Lock()
	p.entries = make(map[string]map[string]*entry[V])
	p.epoch++
	p.mu.Unlock()
}

// Len returns the number of cached variants of path.
func (p *Pages[V]) Len(path string) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries[path])
}
