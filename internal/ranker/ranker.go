package ranker

import (
	"sort"
	"time"

	"github.com/certogo-tech/searchproxy/internal/executor"
)

// Ranker implements Rank(results, original_query, context?, session_id?) ->
// RankedResults. It never fails: degenerate input yields an empty
// RankedResults.
type Ranker struct {
	cfg     Config
	metrics *Metrics
}

// New builds a Ranker. Zero-valued Config fields are not defaulted here;
// callers should start from DefaultConfig().
func New(cfg Config) *Ranker {
	return &Ranker{cfg: cfg, metrics: NewMetrics()}
}

// Metrics exposes the ranker's process-wide counters.
func (r *Ranker) Metrics() *Metrics { return r.metrics }

// Rank scores, merges, and orders every hit across results into a single
// RankedResults. sessionID may be empty (disables A/B testing for the call).
func (r *Ranker) Rank(results []executor.SearchResult, originalQuery string, ctx Context, sessionID string) RankedResults {
	return r.rankWith(r.cfg, results, originalQuery, ctx, sessionID)
}

// RankWithConfig ranks using cfg instead of the Ranker's own configuration,
// while still accumulating into the Ranker's persistent metrics. Callers
// that re-read a hot-reloadable configuration snapshot on every request (the
// Orchestrator) use this instead of Rank.
func (r *Ranker) RankWithConfig(cfg Config, results []executor.SearchResult, originalQuery string, ctx Context, sessionID string) RankedResults {
	return r.rankWith(cfg, results, originalQuery, ctx, sessionID)
}

func (r *Ranker) rankWith(cfg Config, results []executor.SearchResult, originalQuery string, ctx Context, sessionID string) RankedResults {
	start := time.Now()

	flat := flatten(results, originalQuery, ctx, cfg)
	if len(flat) == 0 {
		r.metrics.record(cfg.Algorithm, 0, time.Since(start))
		return RankedResults{}
	}

	algo := selectAlgorithm(cfg, sessionID, originalQuery)

	var merged []scoredHit
	var duplicates int

	switch algo {
	case AlgorithmWeighted, AlgorithmExperimental:
		merged, duplicates = mergeByIDAndSimilarity(flat, cfg)
		applyVariantWeight(merged, cfg.VariantWeightFactor)
		if algo == AlgorithmExperimental && ctx.ThaiRatio > 0.7 {
			for i := range merged {
				merged[i].computed = clamp01(merged[i].computed * 1.2)
			}
		}
	case AlgorithmOptimised:
		merged, duplicates = optimisedDedup(flat)
		applyVariantWeight(merged, 1.0)
	case AlgorithmSimple:
		merged, duplicates = simpleDedup(flat)
	default:
		merged, duplicates = mergeByIDAndSimilarity(flat, cfg)
		applyVariantWeight(merged, cfg.VariantWeightFactor)
	}

	out, divisor := normalizeAndFilter(merged, cfg)

	result := RankedResults{
		Hits:                 out,
		AlgorithmUsed:        algo,
		DuplicatesRemoved:    duplicates,
		NormalizationDivisor: divisor,
	}

	r.metrics.record(algo, duplicates, time.Since(start))
	return result
}

// flatten expands every successful SearchResult's hits into scoredHits with
// their per-hit final score computed.
func flatten(results []executor.SearchResult, originalQuery string, ctx Context, cfg Config) []scoredHit {
	var flat []scoredHit
	for _, res := range results {
		if !res.Success {
			continue
		}
		for pos, hit := range res.Hits {
			sh := scoredHit{
				hit:      hit,
				kind:     string(res.Variant.Kind),
				engineID: res.Variant.EngineID,
				weight:   res.Variant.Weight,
				position: pos,
			}
			final, factors := score(sh, originalQuery, ctx, cfg)
			sh.computed = final
			sh.factors = factors
			flat = append(flat, sh)
		}
	}
	return flat
}

// applyVariantWeight multiplies each hit's computed score by its variant
// weight and the given weight factor, clamping back to [0, 1].
func applyVariantWeight(hits []scoredHit, factor float64) {
	for i := range hits {
		hits[i].computed = clamp01(hits[i].computed * hits[i].weight * factor)
	}
}

// optimisedDedup keeps, per document_id, the best (score, variant,
// position) triple via the tie-break chain, without a similarity pass.
func optimisedDedup(hits []scoredHit) ([]scoredHit, int) {
	byID := make(map[string]scoredHit, len(hits))
	order := make([]string, 0, len(hits))
	removed := 0

	for _, h := range hits {
		existing, ok := byID[h.hit.DocumentID]
		if !ok {
			byID[h.hit.DocumentID] = h
			order = append(order, h.hit.DocumentID)
			continue
		}
		removed++
		if preferred(h, existing) {
			byID[h.hit.DocumentID] = collapseInto(h, existing)
		} else {
			byID[h.hit.DocumentID] = collapseInto(existing, h)
		}
	}

	out := make([]scoredHit, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out, removed
}

// simpleDedup keeps the maximum score per document_id with no boost logic
// beyond what scoring already applied.
func simpleDedup(hits []scoredHit) ([]scoredHit, int) {
	byID := make(map[string]scoredHit, len(hits))
	order := make([]string, 0, len(hits))
	removed := 0

	for _, h := range hits {
		existing, ok := byID[h.hit.DocumentID]
		if !ok {
			byID[h.hit.DocumentID] = h
			order = append(order, h.hit.DocumentID)
			continue
		}
		removed++
		if h.computed > existing.computed {
			byID[h.hit.DocumentID] = collapseInto(h, existing)
		} else {
			byID[h.hit.DocumentID] = collapseInto(existing, h)
		}
	}

	out := make([]scoredHit, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out, removed
}

// normalizeAndFilter divides every score by the max score when enabled,
// drops hits below MinScoreThreshold, and stably sorts the remainder
// descending by score; hits are put in tie-break order first, so equal
// scores keep that order.
func normalizeAndFilter(hits []scoredHit, cfg Config) ([]RankedHit, float64) {
	sort.SliceStable(hits, func(i, j int) bool { return preferred(hits[i], hits[j]) })

	divisor := 1.0
	if cfg.NormalizeScores && len(hits) > 0 {
		max := hits[0].computed
		for _, h := range hits[1:] {
			if h.computed > max {
				max = h.computed
			}
		}
		if max > 0 {
			divisor = max
		}
	}

	out := make([]RankedHit, 0, len(hits))
	for _, h := range hits {
		s := h.computed / divisor
		if s < cfg.MinScoreThreshold {
			continue
		}
		factors := h.factors
		if factors == nil {
			factors = map[string]any{}
		}
		factors["normalization_divisor"] = divisor
		if len(h.collapsed) > 0 {
			collapsedInfo := make([]map[string]any, 0, len(h.collapsed))
			for _, c := range h.collapsed {
				collapsedInfo = append(collapsedInfo, map[string]any{
					"document_id": c.DocumentID,
					"kind":        c.Kind,
					"score":       c.Score,
				})
			}
			factors["collapsed"] = collapsedInfo
		}
		out = append(out, RankedHit{Hit: h.hit, Score: s, RankingInfo: factors})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	return out, divisor
}
