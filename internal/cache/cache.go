// Package cache wraps the Orchestrator with an LRU result cache. It sits
// outside the core search pipeline: nothing inside query/executor/ranker
// knows a cache exists. Entries are evicted by the configured LRU size, or
// all at once when the owner calls Purge (serve does so on config reload).
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/certogo-tech/searchproxy/internal/api"
)

// DefaultSize is used when a non-positive size is configured.
const DefaultSize = 1000

// Searcher is the subset of the Orchestrator's API a CachedSearcher wraps.
type Searcher interface {
	Search(ctx context.Context, req api.SearchRequest) api.SearchResponse
	BatchSearch(ctx context.Context, req api.BatchSearchRequest) []api.SearchResponse
}

// CachedSearcher wraps a Searcher with an LRU cache of SearchResponses,
// keyed on (index_name, query, options). Only single-query Search results
// are cached; BatchSearch passes straight through since batch result
// reuse across differently-shaped batches isn't worth the bookkeeping.
type CachedSearcher struct {
	inner Searcher
	cache *lru.Cache[string, api.SearchResponse]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New wraps inner with an LRU cache holding up to size entries. A
// non-positive size falls back to DefaultSize.
func New(inner Searcher, size int) *CachedSearcher {
	if size <= 0 {
		size = DefaultSize
	}
	c, _ := lru.New[string, api.SearchResponse](size)
	return &CachedSearcher{inner: inner, cache: c}
}

// Search returns the cached response for (IndexName, Query, Options) if
// present, otherwise delegates to inner and caches the result. Degraded
// responses (fallback_used) are not cached, since they reflect a transient
// failure rather than a stable answer.
func (c *CachedSearcher) Search(ctx context.Context, req api.SearchRequest) api.SearchResponse {
	key := cacheKey(req.IndexName, req.Query, req.Options, req.IncludeTokenizationInfo)

	if resp, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		return resp
	}
	c.misses.Add(1)

	resp := c.inner.Search(ctx, req)
	if !resp.QueryInfo.FallbackUsed {
		c.cache.Add(key, resp)
	}
	return resp
}

// BatchSearch passes through to the inner Searcher uncached.
func (c *CachedSearcher) BatchSearch(ctx context.Context, req api.BatchSearchRequest) []api.SearchResponse {
	return c.inner.BatchSearch(ctx, req)
}

// Purge empties the cache, e.g. after a config reload changes ranking or
// tokenization behavior enough that stale cached responses would mislead.
func (c *CachedSearcher) Purge() {
	c.cache.Purge()
}

// Stats reports cache hit/miss counters alongside the backing LRU's size.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

func (c *CachedSearcher) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.cache.Len(),
	}
}

// cacheKey hashes the request shape into a fixed-length key. SHA-256 over
// the JSON-marshaled options avoids hand-rolling a canonical encoding for
// SearchOptions' map/slice fields.
func cacheKey(indexName, query string, opts api.SearchOptions, includeTokenization bool) string {
	optsJSON, _ := json.Marshal(opts)
	h := sha256.New()
	h.Write([]byte(indexName))
	h.Write([]byte{0})
	h.Write([]byte(query))
	h.Write([]byte{0})
	h.Write(optsJSON)
	h.Write([]byte{0})
	if includeTokenization {
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}
