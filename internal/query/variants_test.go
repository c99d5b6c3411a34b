package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildVariants_EmergencyOriginalWhenListEmpties(t *testing.T) {
	pq := ProcessedQuery{PrimaryLanguage: LanguageUnknown}
	cfg := Config{PreserveOriginal: false, MaxVariants: 5}

	variants := buildVariants("x", pq, cfg)
	require.Len(t, variants, 1)
	assert.Equal(t, KindOriginal, variants[0].Kind)
	assert.Equal(t, emergencyOriginalWeight, variants[0].Weight)
}

func TestBuildVariants_OriginalIncludedWhenPreserved(t *testing.T) {
	pq := ProcessedQuery{PrimaryLanguage: LanguageEnglish}
	cfg := Config{PreserveOriginal: true, MaxVariants: 5}

	variants := buildVariants("hello world", pq, cfg)
	require.NotEmpty(t, variants)
	assert.Equal(t, KindOriginal, variants[0].Kind)
	assert.Equal(t, MatchAll, variants[0].MatchingStrategy)
}

func TestBuildVariants_TokenizedVariantFromSuccessfulResult(t *testing.T) {
	pq := ProcessedQuery{
		PrimaryLanguage:        LanguageThai,
		ThaiDetected:           true,
		ThaiRatio:              0.9,
		TokenizationConfidence: 0.85,
		TokenizationResults: []TokenizationResult{
			{EngineID: "newmm", Tokens: []string{"รถ", "ยนต์"}, Success: true, Confidence: 0.85, Source: SourcePrimary},
		},
	}
	cfg := Config{PreserveOriginal: true, MaxVariants: 5}

	variants := buildVariants("รถยนต์", pq, cfg)
	var found bool
	for _, v := range variants {
		if v.Kind == KindTokenized {
			found = true
			assert.Equal(t, "รถ ยนต์", v.Text)
			assert.Equal(t, MatchLast, v.MatchingStrategy)
		}
	}
	assert.True(t, found)
}

func TestBuildVariants_DedupesByCaseFoldedTrimmedText(t *testing.T) {
	pq := ProcessedQuery{PrimaryLanguage: LanguageEnglish}
	cfg := Config{PreserveOriginal: true, MaxVariants: 5}

	variants := buildVariants("Hello", pq, cfg)
	seen := make(map[string]int)
	for _, v := range variants {
		seen[v.Text]++
	}
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

func TestBuildVariants_CapsAtMaxVariants(t *testing.T) {
	pq := ProcessedQuery{
		PrimaryLanguage: LanguageThai,
		ThaiDetected:    true,
		ThaiRatio:       0.9,
		TokenizationResults: []TokenizationResult{
			{EngineID: "newmm", Tokens: []string{"ก", "ข", "ค", "ง"}, Success: true, Confidence: 0.9, Source: SourcePrimary},
		},
	}
	cfg := Config{PreserveOriginal: true, EnableCompoundSplitting: true, MaxVariants: 2}

	variants := buildVariants("กขคง", pq, cfg)
	assert.LessOrEqual(t, len(variants), 2)
}

func TestBuildVariants_FallbackWhenNoTokenizationSucceeded(t *testing.T) {
	pq := ProcessedQuery{
		PrimaryLanguage: LanguageThai,
		ThaiDetected:    true,
		ThaiRatio:       0.9,
		TokenizationResults: []TokenizationResult{
			{EngineID: "newmm", Success: false, Source: SourcePrimary},
		},
	}
	cfg := Config{PreserveOriginal: false, MaxVariants: 5}

	variants := buildVariants("รถยนต์", pq, cfg)
	var found bool
	for _, v := range variants {
		if v.Kind == KindFallback {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBuildVariants_PhraseVariantWeighsLessThanItsTokenizedSibling(t *testing.T) {
	pq := ProcessedQuery{
		PrimaryLanguage:        LanguageThai,
		ThaiDetected:           true,
		ThaiRatio:              0.9,
		TokenizationConfidence: 0.9,
		TokenizationResults: []TokenizationResult{
			{EngineID: "newmm", Tokens: []string{"รถ", "ยนต์", "ไฟฟ้า"}, Success: true, Confidence: 0.9, Source: SourcePrimary},
		},
	}
	cfg := Config{PreserveOriginal: false, MaxVariants: 10}

	variants := buildVariants("รถยนต์ไฟฟ้า", pq, cfg)
	var tokenized, phrase *QueryVariant
	for i := range variants {
		v := &variants[i]
		if v.Kind == KindTokenized && v.Metadata["phrase"] != "true" {
			tokenized = v
		}
		if v.Metadata["phrase"] == "true" {
			phrase = v
		}
	}
	require.NotNil(t, tokenized)
	require.NotNil(t, phrase)
	assert.Less(t, phrase.Weight, tokenized.Weight)
}

func TestClamp01_ClampsToRange(t *testing.T) {
	assert.Equal(t, 0.1, clamp01(0.0))
	assert.Equal(t, 1.0, clamp01(5.0))
	assert.Equal(t, 0.5, clamp01(0.5))
}
