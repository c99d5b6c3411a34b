package query

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// strongThaiRatio is the threshold above which Thai presence is
	// considered "strong" for the language-confidence weight multiplier.
	strongThaiRatio = 0.5

	minVariantWeight     = 0.2
	defaultMaxVariants   = 5
	emergencyOriginalWeight = 0.5

	shortQueryRunes = 5
	longQueryRunes  = 50

	// phraseWeightMultiplier discounts the quoted ≥3-token phrase variant
	// relative to its unquoted sibling: an exact-phrase match is a good
	// signal when it hits, but MatchAll is strict enough that it should
	// rank behind the tokenized variant rather than tie with it.
	phraseWeightMultiplier = 0.7
)

var kindBaseWeight = map[VariantKind]float64{
	KindOriginal:      0.8,
	KindTokenized:      1.0,
	KindCompoundSplit: 0.9,
	KindMixedLanguage: 0.85,
	KindFallback:      0.6,
}

// buildVariants emits candidate variants, weights
// them, drops anything under the minimum weight, and caps the result at
// cfg.MaxVariants by descending weight.
func buildVariants(text string, pq ProcessedQuery, cfg Config) []QueryVariant {
	seen := make(map[string]bool)
	var variants []QueryVariant

	add := func(v QueryVariant) {
		key := strings.ToLower(strings.TrimSpace(v.Text))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		variants = append(variants, v)
	}

	if cfg.PreserveOriginal {
		add(QueryVariant{
			Text:             text,
			Kind:             KindOriginal,
			EngineID:         "none",
			MatchingStrategy: MatchAll,
		})
	}

	for _, r := range pq.TokenizationResults {
		if !r.Success || len(r.Tokens) == 0 {
			continue
		}

		kind := variantKind(r, pq.MixedContent)
		joined := strings.Join(r.Tokens, " ")
		strategy := MatchLast
		if kind == KindFallback {
			strategy = MatchFrequency
		}
		add(QueryVariant{
			Text:             joined,
			Kind:             kind,
			EngineID:         r.EngineID,
			MatchingStrategy: strategy,
			Metadata:         map[string]string{"confidence": confidenceLabel(r.Confidence)},
		})

		if cfg.EnableCompoundSplitting && len(r.Tokens) >= 2 {
			add(QueryVariant{
				Text:             joined,
				Kind:             KindCompoundSplit,
				EngineID:         r.EngineID,
				MatchingStrategy: MatchLast,
				Metadata:         map[string]string{"compound": "true"},
			})
		}

		if len(r.Tokens) >= 3 {
			add(QueryVariant{
				Text:             fmt.Sprintf("\"%s\"", joined),
				Kind:             kind,
				EngineID:         r.EngineID,
				MatchingStrategy: MatchAll,
				Metadata:         map[string]string{"phrase": "true"},
			})
		}
	}

	if !anySuccessful(pq.TokenizationResults) && pq.ThaiDetected {
		add(QueryVariant{
			Text:             text,
			Kind:             KindFallback,
			EngineID:         "character-fallback",
			MatchingStrategy: MatchFrequency,
		})
		if pq.MixedContent {
			add(QueryVariant{
				Text:             strings.Join(strings.Fields(text), " "),
				Kind:             KindFallback,
				EngineID:         "whitespace-split",
				MatchingStrategy: MatchFrequency,
			})
		}
	}

	for i := range variants {
		variants[i].Weight = weighVariant(variants[i], pq, text)
	}

	variants = dropLowWeight(variants)
	variants = capVariants(variants, maxVariants(cfg))

	if len(variants) == 0 {
		return []QueryVariant{{
			Text:             text,
			Kind:             KindOriginal,
			EngineID:         "none",
			MatchingStrategy: MatchAll,
			Weight:           emergencyOriginalWeight,
		}}
	}
	return variants
}

// variantKind maps a TokenizationResult to the variant kind it seeds, per
// the "engine tag is 'fallback'" / "engine tag carries 'compound'"
// rule, resolved here against the ResultSource recorded during tokenization.
func variantKind(r TokenizationResult, mixedContent bool) VariantKind {
	switch {
	case mixedContent:
		return KindMixedLanguage
	case r.Source == SourceFallbackAccepted || r.Source == SourceCharacterFallback:
		return KindFallback
	case r.Source == SourceFallbackExtra:
		return KindCompoundSplit
	default:
		return KindTokenized
	}
}

func confidenceLabel(c float64) string {
	return fmt.Sprintf("%.2f", c)
}

func weighVariant(v QueryVariant, pq ProcessedQuery, text string) float64 {
	w := kindBaseWeight[v.Kind]

	w = applyContentMultiplier(w, v.Kind, pq)
	w = applyLengthMultiplier(w, v.Kind, len([]rune(text)))
	w = applyLanguageConfidenceMultiplier(w, v.Kind, pq)
	w = applyQualityMultiplier(w, v.Kind, pq)

	// Discount after clamping, so a sibling clamped to 1.0 still outranks
	// its phrase variant.
	return clamp01(applyPhraseMultiplier(clamp01(w), v))
}

func applyContentMultiplier(w float64, kind VariantKind, pq ProcessedQuery) float64 {
	thaiHeavy := pq.ThaiRatio > pq.EnglishRatio
	englishHeavy := pq.EnglishRatio > pq.ThaiRatio

	switch {
	case thaiHeavy:
		switch kind {
		case KindTokenized, KindCompoundSplit:
			w *= 1.2
		case KindOriginal:
			w *= 0.9
		}
	case englishHeavy:
		switch kind {
		case KindTokenized, KindCompoundSplit:
			w *= 0.9
		case KindOriginal:
			w *= 1.2
		}
	}

	if pq.MixedContent && kind == KindMixedLanguage {
		w *= 1.15
	}
	return w
}

func applyLengthMultiplier(w float64, kind VariantKind, runeLen int) float64 {
	switch {
	case runeLen < shortQueryRunes:
		switch kind {
		case KindOriginal:
			w *= 1.1
		case KindFallback:
			w *= 0.8
		}
	case runeLen >= longQueryRunes:
		if kind == KindTokenized {
			w *= 1.1
		}
	}
	return w
}

func applyLanguageConfidenceMultiplier(w float64, kind VariantKind, pq ProcessedQuery) float64 {
	if pq.ThaiRatio >= strongThaiRatio && kind == KindTokenized {
		w *= 1.1
	}
	return w
}

func applyQualityMultiplier(w float64, kind VariantKind, pq ProcessedQuery) float64 {
	if kind != KindTokenized && kind != KindCompoundSplit && kind != KindMixedLanguage {
		return w
	}
	c := pq.TokenizationConfidence
	switch {
	case c >= 0.9:
		w *= 1.1
	case c >= 0.7:
		w *= 1.0
	case c >= 0.5:
		w *= 0.9
	default:
		w *= 0.8
	}
	return w
}

// applyPhraseMultiplier discounts the quoted phrase variant so it doesn't
// tie with the unquoted tokenized variant it's built alongside.
func applyPhraseMultiplier(w float64, v QueryVariant) float64 {
	if v.Metadata["phrase"] == "true" {
		w *= phraseWeightMultiplier
	}
	return w
}

func clamp01(w float64) float64 {
	if w < 0.1 {
		return 0.1
	}
	if w > 1.0 {
		return 1.0
	}
	return w
}

func dropLowWeight(variants []QueryVariant) []QueryVariant {
	out := variants[:0]
	for _, v := range variants {
		if v.Weight >= minVariantWeight {
			out = append(out, v)
		}
	}
	return out
}

func capVariants(variants []QueryVariant, max int) []QueryVariant {
	sort.SliceStable(variants, func(i, j int) bool {
		return variants[i].Weight > variants[j].Weight
	})
	if len(variants) > max {
		variants = variants[:max]
	}
	return variants
}

func maxVariants(cfg Config) int {
	if cfg.MaxVariants <= 0 {
		return defaultMaxVariants
	}
	return cfg.MaxVariants
}
