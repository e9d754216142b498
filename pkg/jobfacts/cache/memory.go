package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/ingest"
)

// MemoryCache memoizes normalized token sequences of short, frequently
// repeated fields such as locations and contract types.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a new memory cache. A zero ttl keeps entries for
// the lifetime of the cache.
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryCache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get retrieves a copy of a cached token sequence
func (c *MemoryCache) Get(key string) ([]ingest.Token, bool) {
	if val, found := c.cache.Get(key); found {
		tokens := val.([]ingest.Token)
		out := make([]ingest.Token, len(tokens))
		copy(out, tokens)
		return out, true
	}
	return nil, false
}

// Set stores a token sequence under key with the default TTL
func (c *MemoryCache) Set(key string, tokens []ingest.Token) {
	stored := make([]ingest.Token, len(tokens))
	copy(stored, tokens)
	c.cache.SetDefault(key, stored)
}

// Normalize returns the cached sequence for key or computes, stores and
// returns it.
func (c *MemoryCache) Normalize(key string, compute func() []ingest.Token) []ingest.Token {
	if tokens, ok := c.Get(key); ok {
		return tokens
	}
	tokens := compute()
	c.Set(key, tokens)
	return tokens
}

// Len returns the number of cached entries
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}
