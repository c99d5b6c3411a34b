// Package executor fans a processed query's variants out to the search
// backend with bounded concurrency, retrying failed calls and converting
// raw hits, while preserving the caller's variant order.
package executor

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/certogo-tech/searchproxy/internal/backend"
	searcherr "github.com/certogo-tech/searchproxy/internal/errors"
	"github.com/certogo-tech/searchproxy/internal/query"
)

const (
	defaultMaxConcurrent  = 5
	defaultSearchTimeout  = 10 * time.Second
	maxCropLength         = 400
	maxFallbackLimit      = 100
)

// Config configures the Search Executor, filled from the search.* settings.
type Config struct {
	MaxConcurrent   int
	ParallelEnabled bool
	SearchTimeoutMS int
	MaxRetries      int
	RetryDelayMS    int
}

// SearchResult is one variant's outcome.
type SearchResult struct {
	Variant    query.QueryVariant
	Hits       []backend.Hit
	TotalHits  int
	Success    bool
	Error      string
	RawLatency time.Duration
}

// Executor fans variants out to a backend.Client.
type Executor struct {
	client  backend.Client
	cfg     Config
	breaker *searcherr.CircuitBreaker
}

// New builds an Executor with defaults applied for zero-valued Config fields.
func New(client backend.Client, cfg Config) *Executor {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	return &Executor{client: client, cfg: cfg, breaker: searcherr.NewCircuitBreaker("backend")}
}

// Execute runs every variant against index, returning one SearchResult per
// variant in input order regardless of individual success or failure.
func (e *Executor) Execute(ctx context.Context, variants []query.QueryVariant, index string, opts backend.SearchParams) []SearchResult {
	results := make([]SearchResult, len(variants))

	timeout := e.overallTimeout()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if !e.cfg.ParallelEnabled {
		for i, v := range variants {
			results[i] = e.runVariant(ctx, v, index, opts)
		}
		e.fillTimedOut(ctx, variants, results)
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, e.cfg.MaxConcurrent)
	var mu sync.Mutex

	for i, v := range variants {
		i, v := i, v
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return nil
			}

			res := e.runVariant(gctx, v, index, opts)

			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	e.fillTimedOut(ctx, variants, results)
	return results
}

// fillTimedOut converts every zero-valued SearchResult (a variant whose
// goroutine never ran or never finished before the overall deadline) into a
// failed SearchResult, per the overall-deadline expiry rule.
func (e *Executor) fillTimedOut(ctx context.Context, variants []query.QueryVariant, results []SearchResult) {
	if ctx.Err() == nil {
		return
	}
	for i := range results {
		if results[i].Variant.Text == "" {
			results[i] = SearchResult{
				Variant: variants[i],
				Error:   "Search execution timed out",
			}
		}
	}
}

func (e *Executor) runVariant(ctx context.Context, v query.QueryVariant, index string, base backend.SearchParams) SearchResult {
	params := translateOptions(v, base)

	retries := e.cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	delay := time.Duration(e.cfg.RetryDelayMS) * time.Millisecond

	// Fixed-delay retry, not exponential backoff: Multiplier 1.0 keeps the
	// wait between attempts equal to RetryDelayMS throughout.
	retryCfg := searcherr.RetryConfig{
		MaxRetries:   retries,
		InitialDelay: delay,
		MaxDelay:     delay,
		Multiplier:   1.0,
	}

	start := time.Now()
	resp, err := searcherr.RetryWithResult(ctx, retryCfg, func() (backend.SearchResponse, error) {
		return searcherr.CircuitExecuteWithResult(e.breaker,
			func() (backend.SearchResponse, error) { return e.client.Search(ctx, index, v.Text, params) },
			func() (backend.SearchResponse, error) { return backend.SearchResponse{}, searcherr.ErrCircuitOpen })
	})
	latency := time.Since(start)

	if err != nil {
		// Report the backend's own error, not the retry helper's wrapper.
		msg := err.Error()
		if cause := errors.Unwrap(err); cause != nil {
			msg = cause.Error()
		}
		return SearchResult{
			Variant:    v,
			Error:      msg,
			RawLatency: latency,
		}
	}

	hits := make([]backend.Hit, 0, len(resp.Hits))
	for _, raw := range resp.Hits {
		hit, convErr := backend.ConvertHit(raw, v.Weight, string(v.Kind), v.EngineID)
		if convErr != nil {
			continue
		}
		hits = append(hits, hit)
	}

	return SearchResult{
		Variant:    v,
		Hits:       hits,
		TotalHits:  resp.EstimatedTotalHits,
		Success:    true,
		RawLatency: latency,
	}
}

// translateOptions applies the base parameters plus variant-specific
// overrides on top of the caller-supplied base SearchParams.
func translateOptions(v query.QueryVariant, base backend.SearchParams) backend.SearchParams {
	params := base
	params.ShowRankingScore = true
	params.MatchingStrategy = string(v.MatchingStrategy)

	switch v.Kind {
	case query.KindCompoundSplit:
		if params.CropLength > 0 {
			params.CropLength = min(params.CropLength*2, maxCropLength)
		}
	case query.KindMixedLanguage:
		params.AttributesToHighlight = []string{"*"}
	case query.KindFallback:
		if params.Limit > 0 {
			params.Limit = min(params.Limit*2, maxFallbackLimit)
		}
	}
	return params
}

func (e *Executor) overallTimeout() time.Duration {
	if e.cfg.SearchTimeoutMS <= 0 {
		return defaultSearchTimeout
	}
	return time.Duration(e.cfg.SearchTimeoutMS) * time.Millisecond
}

// Err wraps an aggregate failure (e.g. every variant failed) into a
// SearchProxyError for callers that need to surface a top-level error.
func Err(message string, cause error) error {
	return searcherr.SearchExecutionError(message, cause).WithDetail("component", "executor")
}
