package vetting

import (
	"strings"
	"sync"
)

// BlocklistCache remembers DNS blocklist outcomes per registrable domain.
// Entries are never evicted; the cache lives as long as its owner.
// It is safe for concurrent use and may be shared between checkers.
type BlocklistCache struct {
	mu      sync.RWMutex
	entries map[string]bool
	hits    uint64
	misses  uint64
}

// CacheStats are counters since the cache was created.
type CacheStats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// NewBlocklistCache returns an empty cache.
func NewBlocklistCache() *BlocklistCache {
	return &BlocklistCache{entries: make(map[string]bool)}
}

// Get returns the cached listing state for domain. ok is false when the domain
// has not reached a definitive state yet.
func (c *BlocklistCache) Get(domain string) (listed bool, ok bool) {
	key := strings.ToLower(domain)

	c.mu.Lock()
	defer c.mu.Unlock()

	listed, ok = c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return listed, ok
}

// Put records a definitive state. A domain already cached as listed stays listed.
func (c *BlocklistCache) Put(domain string, listed bool) {
	key := strings.ToLower(domain)

	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.entries[key]; ok && prev {
		return
	}
	c.entries[key] = listed
}

// Len returns the number of cached domains.
func (c *BlocklistCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *BlocklistCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}
