package suggest

import (
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// ResultCache maps a normalized prefix to a finished result list.
// Implementations are safe for concurrent use and never return expired or
// shared slices.
type ResultCache interface {
	Get(prefix string) ([]string, bool)
	Put(prefix string, results []string)
	Len() int
	Snapshot() map[string][]string
	Purge()
}

// NewResultCache returns the no-op cache for a nil config, otherwise a
// bounded cache with lazy expiration.
func NewResultCache(cfg *CacheConfig) (ResultCache, error) {
	if cfg == nil {
		return noCache{}, nil
	}
	return newLRUCache(*cfg, time.Now)
}

type noCache struct{}

func (noCache) Get(string) ([]string, bool)   { return nil, false }
func (noCache) Put(string, []string)          {}
func (noCache) Len() int                      { return 0 }
func (noCache) Snapshot() map[string][]string { return nil }
func (noCache) Purge()                        {}

// cacheEntry carries the time it ages from: creation or last read,
// depending on the policy.
type cacheEntry struct {
	results []string
	stamp   time.Time
}

// lruCache keeps entries in recency order. Under ExpireAfterCreate reads use
// Peek so the order stays the insertion order; under ExpireAfterAccess reads
// promote the entry and refresh its stamp. Either way stamps grow from the
// oldest end to the newest, so expired entries are always at the tail.
type lruCache struct {
	mu     sync.Mutex
	lru    *simplelru.LRU[string, *cacheEntry]
	ttl    time.Duration
	policy ExpirationPolicy
	now    func() time.Time
}

func newLRUCache(cfg CacheConfig, now func() time.Time) (*lruCache, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	l, err := simplelru.NewLRU[string, *cacheEntry](cfg.MaxSize, nil)
	if err != nil {
		return nil, err
	}
	return &lruCache{
		lru:    l,
		ttl:    cfg.TTL(),
		policy: cfg.Policy,
		now:    now,
	}, nil
}

func (c *lruCache) expired(e *cacheEntry, now time.Time) bool {
	return now.Sub(e.stamp) > c.ttl
}

// Get returns a copy of the entry for prefix. An expired entry is dropped
// and reported as a miss.
func (c *lruCache) Get(prefix string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Peek(prefix)
	if !ok {
		return nil, false
	}
	now := c.now()
	if c.expired(e, now) {
		c.lru.Remove(prefix)
		log.Debugf("Cache entry '%s' expired", prefix)
		return nil, false
	}
	if c.policy == ExpireAfterAccess {
		c.lru.Get(prefix)
		e.stamp = now
	}
	return slices.Clone(e.results), true
}

// Put stores a copy of results. When the cache is full and prefix is new,
// expired entries go first, then the oldest entry by policy order.
func (c *lruCache) Put(prefix string, results []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.removeExpired(now)

	stored := slices.Clone(results)
	if stored == nil {
		stored = []string{}
	}
	if evicted := c.lru.Add(prefix, &cacheEntry{results: stored, stamp: now}); evicted {
		log.Debugf("Cache full, evicted oldest entry for '%s'", prefix)
	}
}

// Len returns the number of live entries.
func (c *lruCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeExpired(c.now())
	return c.lru.Len()
}

// Snapshot copies every live entry; the returned map shares nothing with
// the cache.
func (c *lruCache) Snapshot() map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeExpired(c.now())
	out := make(map[string][]string, c.lru.Len())
	for _, key := range c.lru.Keys() {
		if e, ok := c.lru.Peek(key); ok {
			out[key] = slices.Clone(e.results)
		}
	}
	return out
}

// Purge drops every entry.
func (c *lruCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// removeExpired pops entries from the oldest end while they are expired.
// Callers hold mu.
func (c *lruCache) removeExpired(now time.Time) {
	for {
		key, e, ok := c.lru.GetOldest()
		if !ok || !c.expired(e, now) {
			return
		}
		c.lru.RemoveOldest()
		log.Debugf("Cache entry '%s' expired", key)
	}
}
