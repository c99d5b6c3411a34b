// Package query implements the Query Processor: language detection,
// multi-engine tokenization with fallback, and weighted query-variant
// generation.
package query

import "time"

// PrimaryLanguage classifies the dominant language signal in a query.
type PrimaryLanguage string

const (
	LanguageThai    PrimaryLanguage = "thai"
	LanguageEnglish PrimaryLanguage = "english"
	LanguageMixed   PrimaryLanguage = "mixed"
	LanguageUnknown PrimaryLanguage = "unknown"
)

// VariantKind tags a QueryVariant by how it was derived.
type VariantKind string

const (
	KindOriginal      VariantKind = "Original"
	KindTokenized     VariantKind = "Tokenized"
	KindCompoundSplit VariantKind = "CompoundSplit"
	KindFallback      VariantKind = "Fallback"
	KindMixedLanguage VariantKind = "MixedLanguage"
)

// MatchingStrategy is the backend's matchingStrategy parameter value.
type MatchingStrategy string

const (
	MatchAll       MatchingStrategy = "all"
	MatchLast      MatchingStrategy = "last"
	MatchFrequency MatchingStrategy = "frequency"
)

// TokenizationResult is the outcome of one engine's attempt to tokenize the
// original text, enriched with the source that produced it (primary engine,
// an accepted fallback, or an extra fallback collected to seed additional
// variants while compound splitting is enabled).
type TokenizationResult struct {
	EngineID      string
	Tokens        []string
	WallTime      time.Duration
	Confidence    float64
	Success       bool
	FailureReason string
	Source        ResultSource
}

// ResultSource distinguishes why a TokenizationResult exists, driving the
// variant-kind selection.
type ResultSource int

const (
	SourcePrimary ResultSource = iota
	SourceFallbackAccepted
	SourceFallbackExtra
	SourceCharacterFallback
)

// QueryVariant is a single search string the executor will issue.
type QueryVariant struct {
	Text            string
	Kind            VariantKind
	EngineID        string
	Weight          float64
	MatchingStrategy MatchingStrategy
	CropLengthMultiplier int
	LimitMultiplier      int
	HighlightAllFields   bool
	Metadata        map[string]string
}

// ProcessedQuery is the Query Processor's output: the original text, every
// tokenization attempt, the ordered list of variants to execute, and
// derived language/fallback flags.
type ProcessedQuery struct {
	OriginalText         string
	TokenizationResults  []TokenizationResult
	Variants             []QueryVariant
	ProcessingTime        time.Duration
	ThaiDetected          bool
	EnglishDetected       bool
	MixedContent          bool
	FallbackUsed          bool
	PrimaryLanguage       PrimaryLanguage
	ThaiRatio             float64
	EnglishRatio          float64
	TokenizationConfidence float64
}
