// ABOUTME: Query cache memoizing get and all results per normalized predicate
// ABOUTME: Invalidated wholesale by every update or remove on the owning table
package table

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
	"golang.org/x/sync/singleflight"
)

// Op names a cached read operation.
type Op string

const (
	OpGet Op = "get"
	OpAll Op = "all"
)

// CacheStats reports cache activity for one operation since the last invalidation.
type CacheStats struct {
	Hits    int
	Misses  int
	Entries int
}

// queryCache is owned by exactly one Table. Two tables opened on the same
// storage do not see each other's invalidations.
type queryCache struct {
	mu      sync.Mutex
	entries map[Op]*lru.Cache
	stats   map[Op]*CacheStats
	gen     uint64
	flight  singleflight.Group
}

func newQueryCache() *queryCache {
	c := &queryCache{
		entries: make(map[Op]*lru.Cache),
		stats:   make(map[Op]*CacheStats),
	}
	for _, op := range []Op{OpGet, OpAll} {
		c.entries[op] = lru.New(0)
		c.stats[op] = &CacheStats{}
	}
	return c
}

// lookup returns the cached result for (op, m) or computes it with load.
// Concurrent misses share one load, which runs on a context detached from
// any single caller's cancellation. A caller whose ctx ends stops waiting
// and gets ctx.Err(). Errors are never cached.
func (c *queryCache) lookup(ctx context.Context, op Op, m Match, load func(context.Context) (any, error)) (any, error) {
	key := cacheKey(op, m)

	c.mu.Lock()
	if v, ok := c.entries[op].Get(key); ok {
		c.stats[op].Hits++
		c.mu.Unlock()
		return v, nil
	}
	c.stats[op].Misses++
	gen := c.gen
	c.mu.Unlock()

	loadCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(fmt.Sprintf("%d/%s", gen, key), func() (any, error) {
		v, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.entries[op].Add(key, v)
		}
		c.mu.Unlock()
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// invalidate drops every entry and resets the counters of both operations.
func (c *queryCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	for op, entries := range c.entries {
		entries.Clear()
		c.stats[op] = &CacheStats{}
	}
}

func (c *queryCache) statsFor(op Op) CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.stats[op]
	if !ok {
		return CacheStats{}
	}
	out := *s
	out.Entries = c.entries[op].Len()
	return out
}

// cacheKey normalizes a predicate: keys sorted, values tagged with their type.
func cacheKey(op Op, m Match) string {
	var b strings.Builder
	b.WriteString(string(op))
	for _, k := range m.Keys() {
		b.WriteByte(0)
		switch v := m[k].(type) {
		case []byte:
			fmt.Fprintf(&b, "%s=[]byte:%x", k, v)
		case string:
			fmt.Fprintf(&b, "%s=string:%q", k, v)
		default:
			fmt.Fprintf(&b, "%s=%T:%v", k, v, v)
		}
	}
	return b.String()
}
