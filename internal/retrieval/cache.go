package retrieval

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Query cache defaults. The cache fronts the vector-search collaborator
// for repeated queries within a short window: check-then-serve-or-
// populate, bounded entry count with oldest eviction, no cross-request
// consistency guarantee beyond the TTL.
const (
	DefaultCacheSize = 512
	DefaultCacheTTL  = 5 * time.Minute
)

// resultCache caches completed retrieval results keyed by normalized
// query plus top-k.
type resultCache struct {
	lru *expirable.LRU[string, *Result]
}

// newResultCache creates a TTL-bounded LRU result cache. Size and TTL
// fall back to defaults when non-positive.
func newResultCache(size int, ttl time.Duration) *resultCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &resultCache{lru: expirable.NewLRU[string, *Result](size, nil, ttl)}
}

// key normalizes the query and appends top-k.
func (c *resultCache) key(queryText string, topK int) string {
	return fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(queryText)), topK)
}

func (c *resultCache) get(queryText string, topK int) (*Result, bool) {
	return c.lru.Get(c.key(queryText, topK))
}

func (c *resultCache) set(queryText string, topK int, r *Result) {
	c.lru.Add(c.key(queryText, topK), r)
}
