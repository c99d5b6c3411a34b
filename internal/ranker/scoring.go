package ranker

import (
	"math"
	"strings"
)

var kindBoost = map[string]float64{
	"Original":      1.1,
	"Tokenized":     1.2,
	"Fallback":      0.8,
	"MixedLanguage": 1.0,
}

var engineBoost = map[string]float64{
	"newmm":   1.1,
	"attacut": 1.0,
	"deepcut": 1.0,
}

const defaultEngineBoost = 0.9

// score computes a hit's final boosted score and the ranking-info factor
// breakdown attached alongside it.
func score(h scoredHit, originalQuery string, ctx Context, cfg Config) (float64, map[string]any) {
	base := h.hit.Score

	variantBoost := kindFactor(h.kind, cfg) * engineFactor(h.engineID)

	thaiBoost := 1.0
	if ctx.ThaiRatio > 0.5 {
		thaiBoost = cfg.ThaiMatchBoost
	}

	exactBoost := 1.0
	if containsQuery(h, originalQuery) {
		exactBoost = cfg.ExactMatchBoost
	}
	if h.kind == "CompoundSplit" {
		exactBoost *= cfg.CompoundMatchBoost
	}

	tokenBoost := 1.0
	if ctx.TokenizationConfidence > 0.8 {
		tokenBoost = 1 + (ctx.TokenizationConfidence-0.8)*cfg.TokenizationConfidenceFactor
	}

	positionPenalty := 1.0
	if cfg.PositionDecayEnabled && h.position > 0 {
		positionPenalty = math.Exp(-cfg.PositionDecayFactor * float64(h.position))
	}

	final := base * variantBoost * thaiBoost * exactBoost * tokenBoost * positionPenalty
	final = clamp01(final)

	factors := map[string]any{
		"base_score":         base,
		"variant_boost":      variantBoost,
		"thai_boost":         thaiBoost,
		"exact_match_boost":  exactBoost,
		"tokenization_boost": tokenBoost,
		"position_penalty":   positionPenalty,
		"final":              final,
	}
	return final, factors
}

func kindFactor(kind string, cfg Config) float64 {
	if kind == "CompoundSplit" {
		return cfg.CompoundMatchBoost
	}
	if f, ok := kindBoost[kind]; ok {
		return f
	}
	return 1.0
}

func engineFactor(engineID string) float64 {
	if f, ok := engineBoost[engineID]; ok {
		return f
	}
	return defaultEngineBoost
}

func containsQuery(h scoredHit, originalQuery string) bool {
	q := strings.ToLower(strings.TrimSpace(originalQuery))
	if q == "" {
		return false
	}
	title, _ := h.hit.Document["title"].(string)
	content, _ := h.hit.Document["content"].(string)
	return strings.Contains(strings.ToLower(title), q) || strings.Contains(strings.ToLower(content), q)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
