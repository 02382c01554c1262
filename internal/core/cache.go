package core

// cache.go keeps built datasets keyed by source identity.
//
// Entries expire after a fixed TTL or on explicit invalidation. Concurrent
// requests for the same uncached identity share one load: the first caller
// runs it, the others wait for its result. A waiter that gives up (context
// cancelled) does not cancel the shared load.
//
// Each handle carries an invalidation generation. A load that was running when
// its handle was invalidated still answers its waiters but is not cached.

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a dataset stays cached without invalidation.
const DefaultCacheTTL = time.Hour

// DefaultCacheEntries bounds the number of dataset versions kept in memory.
const DefaultCacheEntries = 8

// LoadFunc reads and builds a dataset on a cache miss.
type LoadFunc func(ctx context.Context) (*Dataset, error)

// DatasetCache is an identity-keyed, TTL-bounded dataset cache with
// single-flight loading. It is safe for concurrent use.
type DatasetCache struct {
	entries *expirable.LRU[string, *Dataset]
	group   singleflight.Group
	ttl     time.Duration

	mu   sync.Mutex
	gens map[string]uint64 // Invalidations per source handle

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Entries int           `json:"entries"`
	Hits    int64         `json:"hits"`
	Misses  int64         `json:"misses"`
	Loads   int64         `json:"loads"`
	TTL     time.Duration `json:"ttl"`
}

// NewDatasetCache creates a cache holding at most size datasets, each for at
// most ttl.
func NewDatasetCache(size int, ttl time.Duration) *DatasetCache {
	if size <= 0 {
		size = DefaultCacheEntries
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	onEvict := func(key string, ds *Dataset) {
		slog.Debug("dataset evicted", "key", key, "rows", ds.NumRows())
	}

	return &DatasetCache{
		entries: expirable.NewLRU[string, *Dataset](size, onEvict, ttl),
		ttl:     ttl,
		gens:    make(map[string]uint64),
	}
}

// Get returns the dataset for id, calling load at most once per identity
// when it is not cached. The caller's ctx bounds only its own wait.
func (c *DatasetCache) Get(ctx context.Context, id Identity, load LoadFunc) (*Dataset, error) {
	key := id.Key()
	if ds, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return ds, nil
	}
	c.misses.Add(1)

	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if ds, ok := c.entries.Get(key); ok {
			return ds, nil
		}
		c.loads.Add(1)
		gen := c.generation(id.Handle)
		ds, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if !c.addIfCurrent(key, id.Handle, gen, ds) {
			slog.Debug("dataset invalidated during load, not cached", "key", key)
		}
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}

// Peek returns the cached dataset for id without loading.
func (c *DatasetCache) Peek(id Identity) (*Dataset, bool) {
	return c.entries.Peek(id.Key())
}

// generation returns the invalidation count of handle.
func (c *DatasetCache) generation(handle string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[handle]
}

// addIfCurrent caches ds unless handle was invalidated since gen was read.
func (c *DatasetCache) addIfCurrent(key, handle string, gen uint64, ds *Dataset) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[handle] != gen {
		return false
	}
	c.entries.Add(key, ds)
	return true
}

// Invalidate drops every cached version of a source handle and returns how
// many entries were removed. Loads of the handle already in flight are not
// cached when they finish.
func (c *DatasetCache) Invalidate(handle string) int {
	c.mu.Lock()
	c.gens[handle]++
	c.mu.Unlock()

	prefix := handle + "@"
	removed := 0
	for _, key := range c.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.group.Forget(key)
			if c.entries.Remove(key) {
				removed++
			}
		}
	}
	return removed
}

// Purge drops every entry.
func (c *DatasetCache) Purge() {
	c.entries.Purge()
}

// Stats returns the current cache counters.
func (c *DatasetCache) Stats() CacheStats {
	return CacheStats{
		Entries: c.entries.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Loads:   c.loads.Load(),
		TTL:     c.ttl,
	}
}
