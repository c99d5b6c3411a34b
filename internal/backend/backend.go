// Package backend implements the Search capability the executor depends on:
// Search(index, query, params) -> (hits, total, meta), fulfilled by an HTTP
// client for a Meilisearch-compatible engine. Built the same way the
// tokenizer HTTP client is: a thin net/http wrapper, typed JSON request and
// response structs, a ServiceError-unwrap path on non-2xx responses.
package backend

import "context"

// SearchParams is the wire-level request sent to the backend for one query
// variant, using Meilisearch's own parameter names.
type SearchParams struct {
	Limit                 int      `json:"limit,omitempty"`
	Offset                int      `json:"offset,omitempty"`
	Filter                string   `json:"filter,omitempty"`
	Sort                  []string `json:"sort,omitempty"`
	MatchingStrategy      string   `json:"matchingStrategy,omitempty"`
	ShowRankingScore      bool     `json:"showRankingScore,omitempty"`
	ShowMatchesPosition   bool     `json:"showMatchesPosition,omitempty"`
	AttributesToRetrieve  []string `json:"attributesToRetrieve,omitempty"`
	AttributesToHighlight []string `json:"attributesToHighlight,omitempty"`
	CropLength            int      `json:"cropLength,omitempty"`
	CropMarker            string   `json:"cropMarker,omitempty"`
}

// RawHit is one document record as returned by the backend, before hit
// conversion. Backend-managed fields are prefixed with "_".
type RawHit map[string]any

// SearchResponse is the backend's raw response to one search call.
type SearchResponse struct {
	Hits               []RawHit `json:"hits"`
	EstimatedTotalHits int      `json:"estimatedTotalHits"`
	ProcessingTimeMs   int      `json:"processingTimeMs"`
}

// Client issues search queries against a Meilisearch-compatible engine.
type Client interface {
	// Search executes one query against index under params. The call must
	// respect ctx's deadline and return promptly on cancellation.
	Search(ctx context.Context, index, query string, params SearchParams) (SearchResponse, error)
}
