// Package api defines the search proxy's external request/response
// envelope: plain exported structs with json tags matching the wire field
// names clients already speak.
package api

// SearchRequest is a single-query search call.
type SearchRequest struct {
	Query                    string        `json:"query"`
	IndexName                string        `json:"index_name"`
	Options                  SearchOptions `json:"options"`
	IncludeTokenizationInfo  bool          `json:"include_tokenization_info"`
}

// BatchSearchRequest runs several queries against the same index and
// options.
type BatchSearchRequest struct {
	Queries                 []string      `json:"queries"`
	IndexName                string        `json:"index_name"`
	Options                  SearchOptions `json:"options"`
	IncludeTokenizationInfo  bool          `json:"include_tokenization_info"`
}

// SearchOptions controls pagination, filtering, highlighting, and
// per-request tokenization/ranking overrides.
type SearchOptions struct {
	Limit                 int            `json:"limit"`
	Offset                int            `json:"offset"`
	Filters               map[string]any `json:"filters"`
	Sort                  []string       `json:"sort"`
	Highlight              bool           `json:"highlight"`
	AttributesToRetrieve  []string       `json:"attributes_to_retrieve"`
	AttributesToHighlight []string       `json:"attributes_to_highlight"`
	CropLength            int            `json:"crop_length"`
	CropMarker            string         `json:"crop_marker"`
	MatchingStrategy      string         `json:"matching_strategy"`
	ForceTokenization      bool           `json:"force_tokenization"`
	TokenizationEngine    string         `json:"tokenization_engine"`
	EnableCompoundSearch  bool           `json:"enable_compound_search"`
	BoostExactMatches     float64        `json:"boost_exact_matches"`
	BoostThaiMatches      float64        `json:"boost_thai_matches"`
	MaxQueryVariants      int            `json:"max_query_variants"`
	SearchTimeoutMS       int            `json:"search_timeout_ms"`
}

// DefaultSearchOptions returns the documented option defaults.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		Limit:                20,
		Offset:               0,
		Highlight:            true,
		CropLength:           200,
		CropMarker:           "...",
		MatchingStrategy:     "last",
		EnableCompoundSearch: true,
		BoostExactMatches:    1.5,
		BoostThaiMatches:     1.2,
		MaxQueryVariants:     5,
		SearchTimeoutMS:      5000,
	}
}

// SearchHit is one ranked, converted document in a response.
type SearchHit struct {
	DocumentID  string         `json:"document_id"`
	Score       float64        `json:"score"`
	Document    map[string]any `json:"document"`
	Highlight   map[string]any `json:"highlight,omitempty"`
	RankingInfo map[string]any `json:"ranking_info"`
}

// QueryInfo summarizes how the query was understood and processed.
type QueryInfo struct {
	OriginalQuery        string `json:"original_query"`
	ProcessedQuery        string `json:"processed_query"`
	ThaiContentDetected    bool   `json:"thai_content_detected"`
	MixedContent           bool   `json:"mixed_content"`
	QueryVariantsUsed      int    `json:"query_variants_used"`
	FallbackUsed           bool   `json:"fallback_used"`
}

// PaginationInfo reflects the effective offset/limit window.
type PaginationInfo struct {
	Offset          int  `json:"offset"`
	Limit           int  `json:"limit"`
	TotalHits       int  `json:"total_hits"`
	HasNextPage     bool `json:"has_next_page"`
	HasPreviousPage bool `json:"has_previous_page"`
}

// TokenizationInfo is attached when the caller asked for diagnostics.
type TokenizationInfo struct {
	EngineUsed   string   `json:"engine_used"`
	Tokens       []string `json:"tokens"`
	Confidence   float64  `json:"confidence"`
	FallbackUsed bool     `json:"fallback_used"`
}

// SearchResponse is the envelope every search call returns, success or
// degraded.
type SearchResponse struct {
	Hits              []SearchHit       `json:"hits"`
	TotalHits         int               `json:"total_hits"`
	ProcessingTimeMS  float64           `json:"processing_time_ms"`
	QueryInfo         QueryInfo         `json:"query_info"`
	Pagination        PaginationInfo    `json:"pagination"`
	TokenizationInfo  *TokenizationInfo `json:"tokenization_info,omitempty"`
	Timestamp         string            `json:"timestamp"`
}
