package query

import (
	"context"
	"log/slog"
	"strings"
	"time"

	searcherr "github.com/certogo-tech/searchproxy/internal/errors"
	"github.com/certogo-tech/searchproxy/internal/tokenizer"
)

// Config configures the Query Processor, mirroring the tokenization.*
// settings.
type Config struct {
	PrimaryEngine           string
	FallbackEngines         []string
	TimeoutMS               int
	ConfidenceThreshold     float64
	EnableCompoundSplitting bool
	PreserveOriginal        bool
	MixedLanguageDetection  bool
	MaxVariants             int
}

// Processor implements Process(query) -> ProcessedQuery.
type Processor struct {
	engines  map[string]tokenizer.Client
	breakers map[string]*searcherr.CircuitBreaker
	fallback tokenizer.Client
	cfg      Config
	logger   *slog.Logger
}

// Option configures a Processor at construction, mirroring the teacher's
// functional-options constructors.
type Option func(*Processor)

// WithLogger attaches a structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor builds a Processor. engines maps engine id to its Client;
// the primary and fallback engine ids named in cfg must have entries. Each
// engine gets its own circuit breaker so one down sidecar doesn't keep
// getting retried on every call while the rest stay healthy.
func NewProcessor(engines map[string]tokenizer.Client, cfg Config, opts ...Option) *Processor {
	breakers := make(map[string]*searcherr.CircuitBreaker, len(engines))
	for id := range engines {
		breakers[id] = searcherr.NewCircuitBreaker(id)
	}
	p := &Processor{
		engines:  engines,
		breakers: breakers,
		fallback: tokenizer.NewCharacterFallback(),
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// processOptions carries per-call overrides set via ProcessOption.
type processOptions struct {
	force          bool
	engineOverride string
}

// ProcessOption configures a single Process call.
type ProcessOption func(*processOptions)

// WithForceTokenization makes Process run tokenization even when the query
// isn't detected as Thai, per the force_tokenization request field.
func WithForceTokenization() ProcessOption {
	return func(o *processOptions) { o.force = true }
}

// WithEngineOverride pins the engine used as primary for this call, per the
// tokenization_engine request field. Ignored if id has no registered Client.
func WithEngineOverride(id string) ProcessOption {
	return func(o *processOptions) { o.engineOverride = id }
}

// Process runs the full query-analysis/tokenization/variant-generation
// pipeline. It only returns an error for empty/whitespace input; every
// other failure is absorbed into a degraded ProcessedQuery.
func (p *Processor) Process(ctx context.Context, text string, opts ...ProcessOption) (ProcessedQuery, error) {
	start := time.Now()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ProcessedQuery{}, searcherr.ValidationError("query text cannot be empty or whitespace-only", nil)
	}

	var po processOptions
	for _, opt := range opts {
		opt(&po)
	}

	a := analyze(text)

	pq := ProcessedQuery{
		OriginalText:    text,
		ThaiDetected:    a.thaiDetected,
		EnglishDetected: a.englishDetected,
		MixedContent:    a.mixedContent && p.cfg.MixedLanguageDetection,
		PrimaryLanguage: a.primaryLanguage,
		ThaiRatio:       a.thaiRatio,
		EnglishRatio:    a.englishRatio,
	}

	if a.thaiDetected || po.force {
		results := p.tokenize(ctx, text, po.engineOverride)
		pq.TokenizationResults = results
		pq.TokenizationConfidence = averageConfidence(results)
		pq.FallbackUsed = anyFallbackUsed(results)
	}

	pq.Variants = buildVariants(text, pq, p.cfg)
	pq.ProcessingTime = time.Since(start)

	p.logger.Debug("query_processed",
		slog.String("primary_language", string(pq.PrimaryLanguage)),
		slog.Bool("thai_detected", pq.ThaiDetected),
		slog.Bool("mixed_content", pq.MixedContent),
		slog.Int("variants", len(pq.Variants)),
		slog.Bool("fallback_used", pq.FallbackUsed),
		slog.Duration("duration", pq.ProcessingTime))

	return pq, nil
}

// tokenize tries the primary engine under a
// deadline, computing confidence; fall back to configured fallback engines
// when confidence is low or compound splitting is enabled; last resort is
// the in-process character fallback.
func (p *Processor) tokenize(ctx context.Context, text string, engineOverride string) []TokenizationResult {
	timeout := p.engineTimeout()
	var results []TokenizationResult

	primaryID := p.cfg.PrimaryEngine
	if _, ok := p.engines[engineOverride]; ok && engineOverride != "" {
		primaryID = engineOverride
	}

	primary, ok := p.engines[primaryID]
	var primaryResult TokenizationResult
	var primaryOK bool

	if ok {
		res := p.invoke(ctx, primary, primaryID, text, timeout)
		res.Source = SourcePrimary
		results = append(results, res)
		if res.Success && res.Confidence >= p.cfg.ConfidenceThreshold {
			primaryResult = res
			primaryOK = true
		}
	}

	needFallback := !primaryOK || p.cfg.EnableCompoundSplitting
	if needFallback {
		for _, id := range p.cfg.FallbackEngines {
			client, ok := p.engines[id]
			if !ok {
				continue
			}
			res := p.invoke(ctx, client, id, text, timeout)
			if !primaryOK && res.Success {
				res.Source = SourceFallbackAccepted
				primaryOK = true
				primaryResult = res
			} else if p.cfg.EnableCompoundSplitting && res.Success {
				res.Source = SourceFallbackExtra
			} else {
				res.Source = SourceFallbackAccepted
			}
			results = append(results, res)
			if primaryOK && !p.cfg.EnableCompoundSplitting {
				break
			}
		}
	}

	if !primaryOK && !anySuccessful(results) {
		fb, _ := p.fallback.Tokenize(ctx, text)
		results = append(results, TokenizationResult{
			EngineID:      fb.EngineID,
			Tokens:        fb.Tokens,
			WallTime:      fb.WallTime,
			Confidence:    tokenizer.FallbackConfidence,
			Success:       fb.Success,
			FailureReason: fb.FailureReason,
			Source:        SourceCharacterFallback,
		})
	}

	_ = primaryResult
	return results
}

// callEngine runs client.Tokenize through engineID's circuit breaker, so a
// sidecar that's already failing repeatedly fails fast instead of eating
// the full per-call timeout on every query.
func (p *Processor) callEngine(ctx context.Context, client tokenizer.Client, engineID string, text string) (tokenizer.Result, error) {
	breaker, ok := p.breakers[engineID]
	if !ok {
		return client.Tokenize(ctx, text)
	}
	return searcherr.CircuitExecuteWithResult(breaker,
		func() (tokenizer.Result, error) { return client.Tokenize(ctx, text) },
		func() (tokenizer.Result, error) {
			return tokenizer.Result{EngineID: engineID, Success: false, FailureReason: "circuit open"}, searcherr.ErrCircuitOpen
		})
}

func (p *Processor) invoke(ctx context.Context, client tokenizer.Client, engineID string, text string, timeout time.Duration) TokenizationResult {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := p.callEngine(callCtx, client, engineID, text)
	out := TokenizationResult{
		EngineID:      res.EngineID,
		Tokens:        res.Tokens,
		WallTime:      res.WallTime,
		Success:       res.Success && err == nil,
		FailureReason: res.FailureReason,
	}
	if err != nil && out.FailureReason == "" {
		out.FailureReason = err.Error()
	}
	if out.Success {
		out.Confidence = tokenizer.Confidence(res, text)
	}
	return out
}

func (p *Processor) engineTimeout() time.Duration {
	ms := p.cfg.TimeoutMS
	if ms < 100 {
		ms = 100
	}
	if ms > 30000 {
		ms = 30000
	}
	return time.Duration(ms) * time.Millisecond
}

func averageConfidence(results []TokenizationResult) float64 {
	var sum float64
	var n int
	for _, r := range results {
		if r.Success {
			sum += r.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func anyFallbackUsed(results []TokenizationResult) bool {
	for _, r := range results {
		if r.Source == SourceFallbackAccepted || r.Source == SourceCharacterFallback {
			return true
		}
	}
	return false
}

func anySuccessful(results []TokenizationResult) bool {
	for _, r := range results {
		if r.Success {
			return true
		}
	}
	return false
}
