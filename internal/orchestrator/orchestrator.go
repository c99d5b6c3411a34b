// Package orchestrator ties the Query Processor, Search Executor, and
// Result Ranker together behind Search/BatchSearch, the search proxy's only
// public entry points.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/certogo-tech/searchproxy/internal/api"
	"github.com/certogo-tech/searchproxy/internal/backend"
	"github.com/certogo-tech/searchproxy/internal/config"
	searcherr "github.com/certogo-tech/searchproxy/internal/errors"
	"github.com/certogo-tech/searchproxy/internal/executor"
	"github.com/certogo-tech/searchproxy/internal/query"
	"github.com/certogo-tech/searchproxy/internal/ranker"
	"github.com/certogo-tech/searchproxy/internal/tokenizer"
)

// Orchestrator exposes Search and BatchSearch, validating input, invoking
// the pipeline in order, and never propagating an exception: on failure it
// returns an empty-hits response with fallback_used=true.
type Orchestrator struct {
	backend   backend.Client
	processor *query.Processor
	executor  *executor.Executor
	ranker    *ranker.Ranker

	cfg atomic.Pointer[config.Config]

	logger *slog.Logger

	stats stats
}

// Option configures an Orchestrator at construction.
type Option func(*Orchestrator)

// WithLogger attaches a structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator builds an Orchestrator wired to backendClient and the
// given tokenizer engines, configured from cfg's initial snapshot.
func NewOrchestrator(backendClient backend.Client, engines map[string]tokenizer.Client, cfg *config.Config, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backendClient,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.cfg.Store(cfg)

	o.processor = query.NewProcessor(engines, processorConfig(cfg), query.WithLogger(o.logger))
	o.executor = executor.New(backendClient, executorConfig(cfg))
	o.ranker = ranker.New(rankerConfig(cfg))

	return o
}

// UpdateConfig atomically publishes a new configuration snapshot. In-flight
// Search/BatchSearch calls keep using the snapshot they started with.
func (o *Orchestrator) UpdateConfig(cfg *config.Config) {
	o.cfg.Store(cfg)
}

func processorConfig(cfg *config.Config) query.Config {
	t := cfg.Tokenization
	return query.Config{
		PrimaryEngine:           t.PrimaryEngine,
		FallbackEngines:         t.FallbackEngines,
		TimeoutMS:               t.TimeoutMS,
		ConfidenceThreshold:     t.ConfidenceThreshold,
		EnableCompoundSplitting: t.EnableCompoundSplitting,
		PreserveOriginal:        t.PreserveOriginal,
		MixedLanguageDetection:  t.MixedLanguageDetection,
		MaxVariants:             cfg.Search.MaxQueryVariants,
	}
}

func executorConfig(cfg *config.Config) executor.Config {
	s := cfg.Search
	return executor.Config{
		MaxConcurrent:   s.MaxConcurrentSearches,
		ParallelEnabled: s.ParallelSearches,
		SearchTimeoutMS: s.TimeoutMS,
		MaxRetries:      s.RetryAttempts,
		RetryDelayMS:    s.RetryDelayMS,
	}
}

func rankerConfig(cfg *config.Config) ranker.Config {
	r := cfg.Ranking
	return ranker.Config{
		Algorithm:                    ranker.Algorithm(capitalize(r.Algorithm)),
		CompoundMatchBoost:           r.BoostCompoundMatches,
		ThaiMatchBoost:               r.BoostThaiMatches,
		ExactMatchBoost:              r.BoostExactMatches,
		TokenizationConfidenceFactor: r.TokenizationConfidenceFactor,
		VariantWeightFactor:          r.VariantWeightFactor,
		PositionDecayEnabled:         r.PositionDecayEnabled,
		PositionDecayFactor:          r.DecayFactor,
		SimilarityThreshold:          r.SimilarityThreshold,
		NormalizeScores:              r.EnableScoreNormalization,
		MinScoreThreshold:            r.MinScoreThreshold,
		ABTestingEnabled:             r.ABTestingEnabled,
		TestAlgorithm:                ranker.Algorithm(capitalize(r.ABTestAlgorithm)),
		TrafficPercentage:            r.ABTestTrafficPercentage,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Search validates req, runs it through the pipeline, and always returns a
// well-formed SearchResponse.
func (o *Orchestrator) Search(ctx context.Context, req api.SearchRequest) api.SearchResponse {
	cfg := o.cfg.Load()
	start := time.Now()

	if optionsUnset(req.Options) {
		req.Options = api.DefaultSearchOptions()
	}

	if err := api.ValidateSearchRequest(req, cfg.Performance.MaxQueryLength); err != nil {
		return degradedResponse(req.Query, start, err)
	}

	resp := o.execute(ctx, cfg, req.Query, req.IndexName, req.Options, req.IncludeTokenizationInfo, "")
	o.stats.recordSearch(time.Since(start))
	return resp
}

// BatchSearch runs every query in req through Search, bounding concurrency
// by the same max_concurrent semaphore the executor uses.
func (o *Orchestrator) BatchSearch(ctx context.Context, req api.BatchSearchRequest) []api.SearchResponse {
	cfg := o.cfg.Load()
	start := time.Now()

	if optionsUnset(req.Options) {
		req.Options = api.DefaultSearchOptions()
	}

	if err := api.ValidateBatchSearchRequest(req, cfg.Performance.MaxQueryLength, cfg.Performance.MaxBatchSize); err != nil {
		resp := degradedResponse(strings.Join(req.Queries, "; "), start, err)
		out := make([]api.SearchResponse, len(req.Queries))
		for i := range out {
			out[i] = resp
		}
		return out
	}

	out := make([]api.SearchResponse, len(req.Queries))
	sem := make(chan struct{}, maxInt(cfg.Search.MaxConcurrentSearches, 1))
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, q := range req.Queries {
		i, q := i, q
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return nil
			}
			r := o.execute(gctx, cfg, q, req.IndexName, req.Options, req.IncludeTokenizationInfo, "")
			mu.Lock()
			out[i] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	o.stats.recordBatch(len(req.Queries), time.Since(start))
	return out
}

// Stats returns a read-only snapshot of the orchestrator's search and batch
// counters together with the ranker's metrics.
func (o *Orchestrator) Stats() OrchestratorStats {
	return OrchestratorStats{
		TotalSearches:         o.stats.searches.Load(),
		TotalBatchSearches:    o.stats.batches.Load(),
		TotalQueriesInBatches: o.stats.batchQueries.Load(),
		Ranker:                o.ranker.Metrics().Snapshot(),
	}
}

func (o *Orchestrator) execute(ctx context.Context, cfg *config.Config, queryText, indexName string, opts api.SearchOptions, includeTokenization bool, sessionID string) api.SearchResponse {
	start := time.Now()

	var processOpts []query.ProcessOption
	if opts.ForceTokenization {
		processOpts = append(processOpts, query.WithForceTokenization())
	}
	if opts.TokenizationEngine != "" {
		processOpts = append(processOpts, query.WithEngineOverride(opts.TokenizationEngine))
	}

	processed, err := o.processor.Process(ctx, queryText, processOpts...)
	if err != nil {
		return degradedResponse(queryText, start, err)
	}

	params := toBackendParams(opts)

	results := o.executor.Execute(ctx, processed.Variants, indexName, params)
	allFailed := true
	for _, r := range results {
		if r.Success {
			allFailed = false
			break
		}
	}

	rankCtx := ranker.Context{ThaiRatio: processed.ThaiRatio, TokenizationConfidence: processed.TokenizationConfidence}
	ranked := o.ranker.RankWithConfig(rankerConfig(cfg), results, queryText, rankCtx, sessionID)

	resp := buildResponse(queryText, processed, ranked, opts, start, includeTokenization)
	if allFailed {
		resp.QueryInfo.FallbackUsed = true
	}
	return resp
}

func toBackendParams(opts api.SearchOptions) backend.SearchParams {
	params := backend.SearchParams{
		Limit:                 opts.Limit,
		Offset:                opts.Offset,
		Sort:                  opts.Sort,
		AttributesToRetrieve:  opts.AttributesToRetrieve,
		AttributesToHighlight: opts.AttributesToHighlight,
		CropLength:            opts.CropLength,
		CropMarker:            opts.CropMarker,
		MatchingStrategy:      opts.MatchingStrategy,
	}
	if len(opts.Filters) > 0 {
		if s, err := backend.SerializeFilter(opts.Filters); err == nil {
			params.Filter = s
		}
	}
	return params
}

func buildResponse(originalQuery string, processed query.ProcessedQuery, ranked ranker.RankedResults, opts api.SearchOptions, start time.Time, includeTokenization bool) api.SearchResponse {
	hits := make([]api.SearchHit, 0, len(ranked.Hits))
	for _, rh := range ranked.Hits {
		hits = append(hits, api.SearchHit{
			DocumentID:  rh.Hit.DocumentID,
			Score:       rh.Score,
			Document:    rh.Hit.Document,
			Highlight:   rh.Hit.Highlight,
			RankingInfo: rh.RankingInfo,
		})
	}

	processedText := originalQuery
	if len(processed.Variants) > 0 {
		processedText = processed.Variants[0].Text
	}

	resp := api.SearchResponse{
		Hits:             hits,
		TotalHits:        len(hits),
		ProcessingTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
		QueryInfo: api.QueryInfo{
			OriginalQuery:       originalQuery,
			ProcessedQuery:      processedText,
			ThaiContentDetected: processed.ThaiDetected,
			MixedContent:        processed.MixedContent,
			QueryVariantsUsed:   len(processed.Variants),
			FallbackUsed:        processed.FallbackUsed,
		},
		Pagination: paginationInfo(opts, len(hits)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}

	if includeTokenization {
		resp.TokenizationInfo = tokenizationInfo(processed)
	}
	return resp
}

func tokenizationInfo(processed query.ProcessedQuery) *api.TokenizationInfo {
	if len(processed.TokenizationResults) == 0 {
		return nil
	}
	best := processed.TokenizationResults[0]
	for _, r := range processed.TokenizationResults {
		if r.Confidence > best.Confidence {
			best = r
		}
	}
	return &api.TokenizationInfo{
		EngineUsed:   best.EngineID,
		Tokens:       best.Tokens,
		Confidence:   best.Confidence,
		FallbackUsed: processed.FallbackUsed,
	}
}

func paginationInfo(opts api.SearchOptions, hitCount int) api.PaginationInfo {
	return api.PaginationInfo{
		Offset:          opts.Offset,
		Limit:           opts.Limit,
		TotalHits:       hitCount,
		HasNextPage:     hitCount == opts.Limit,
		HasPreviousPage: opts.Offset > 0,
	}
}

func degradedResponse(originalQuery string, start time.Time, err error) api.SearchResponse {
	fallback := true
	msg := err.Error()
	if spe, ok := err.(*searcherr.SearchProxyError); ok {
		msg = spe.Message
	}

	return api.SearchResponse{
		Hits:             []api.SearchHit{},
		TotalHits:        0,
		ProcessingTimeMS: float64(time.Since(start).Microseconds()) / 1000.0,
		QueryInfo: api.QueryInfo{
			OriginalQuery:  originalQuery,
			ProcessedQuery: msg,
			FallbackUsed:   fallback,
		},
		Pagination: api.PaginationInfo{},
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// optionsUnset reports whether opts is the SearchOptions zero value. Callers
// that never set options get the documented defaults instead of limit=0
// failing validation. SearchOptions holds slice/map fields so it cannot be
// compared with ==.
func optionsUnset(opts api.SearchOptions) bool {
	return opts.Limit == 0 &&
		opts.Offset == 0 &&
		opts.CropLength == 0 &&
		opts.CropMarker == "" &&
		opts.MatchingStrategy == "" &&
		opts.Filters == nil &&
		opts.Sort == nil
}
