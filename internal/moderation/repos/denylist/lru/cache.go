package lru

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/haukened/commentguard/internal/moderation/domain"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist"
)

// matchCache is an LRU-backed denylist.MatchCache keyed by lowercased text.
// It tracks hits, misses and evictions.
type matchCache struct {
	lru       *lru.Cache[string, domain.DenyMatch]
	capacity  int
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// disabledCache always misses.
type disabledCache struct{}

// New creates a MatchCache with the given capacity. size <= 0 returns a
// disabled cache.
func New(size int) (denylist.MatchCache, error) {
	if size <= 0 {
		return &disabledCache{}, nil
	}

	mc := &matchCache{capacity: size}
	// NewWithEvict also observes Purge-induced evictions.
	cache, err := lru.NewWithEvict(size, func(_ string, _ domain.DenyMatch) {
		mc.evictions.Add(1)
	})
	if err != nil {
		return nil, err
	}
	mc.lru = cache
	return mc, nil
}

func (c *matchCache) Get(text string) (domain.DenyMatch, bool) {
	if val, ok := c.lru.Get(text); ok {
		c.hits.Add(1)
		return val, true
	}
	c.misses.Add(1)
	return domain.DenyMatch{}, false
}

func (c *matchCache) Put(text string, m domain.DenyMatch) {
	c.lru.Add(text, m)
}

func (c *matchCache) Len() int { return c.lru.Len() }

func (c *matchCache) Purge() { c.lru.Purge() }

func (c *matchCache) Stats() denylist.CacheStats {
	return denylist.CacheStats{
		Capacity:  c.capacity,
		Size:      c.lru.Len(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
	}
}

func (d *disabledCache) Get(string) (domain.DenyMatch, bool) { return domain.DenyMatch{}, false }

func (d *disabledCache) Put(string, domain.DenyMatch) {}

func (d *disabledCache) Len() int { return 0 }

func (d *disabledCache) Purge() {}

func (d *disabledCache) Stats() denylist.CacheStats { return denylist.CacheStats{} }

var _ denylist.MatchCache = (*matchCache)(nil)
var _ denylist.MatchCache = (*disabledCache)(nil)
