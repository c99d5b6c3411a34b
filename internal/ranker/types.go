// Package ranker implements the Result Ranker: per-hit scoring, content-
// similarity deduplication, deterministic tie-breaking, and algorithm
// selection (with optional A/B testing) over the Search Executor's output.
package ranker

import "github.com/certogo-tech/searchproxy/internal/backend"

// Algorithm names a scoring strategy.
type Algorithm string

const (
	AlgorithmWeighted     Algorithm = "Weighted"
	AlgorithmOptimised    Algorithm = "Optimised"
	AlgorithmSimple       Algorithm = "Simple"
	AlgorithmExperimental Algorithm = "Experimental"
)

// Config tunes scoring, merging, and algorithm selection.
type Config struct {
	Algorithm Algorithm

	CompoundMatchBoost          float64
	ThaiMatchBoost              float64
	ExactMatchBoost             float64
	TokenizationConfidenceFactor float64
	VariantWeightFactor         float64

	PositionDecayEnabled bool
	PositionDecayFactor  float64

	SimilarityThreshold float64

	NormalizeScores   bool
	MinScoreThreshold float64

	ABTestingEnabled  bool
	TestAlgorithm     Algorithm
	TrafficPercentage float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Algorithm:                    AlgorithmWeighted,
		CompoundMatchBoost:           1.15,
		ThaiMatchBoost:               1.5,
		ExactMatchBoost:              2.0,
		TokenizationConfidenceFactor: 0.5,
		VariantWeightFactor:          1.0,
		PositionDecayEnabled:         true,
		PositionDecayFactor:          0.1,
		SimilarityThreshold:          0.85,
		NormalizeScores:              true,
		MinScoreThreshold:            0.1,
		TrafficPercentage:            0.0,
	}
}

// Context carries the Query Processor's signal for the current query into
// scoring: the overall Thai-character ratio and tokenization confidence.
type Context struct {
	ThaiRatio              float64
	TokenizationConfidence float64
}

// RankedHit is one hit in the final ranked list.
type RankedHit struct {
	Hit         backend.Hit
	Score       float64
	RankingInfo map[string]any
}

// RankedResults is the Ranker's output. Never an error: degenerate inputs
// yield an empty RankedResults.
type RankedResults struct {
	Hits                 []RankedHit
	AlgorithmUsed         Algorithm
	DuplicatesRemoved     int
	NormalizationDivisor  float64
}

// scoredHit is the internal unit the ranker operates on before merging.
type scoredHit struct {
	hit       backend.Hit
	kind      string
	engineID  string
	weight    float64
	position  int
	computed  float64
	factors   map[string]any
	collapsed []collapsedAlt
}

// collapsedAlt records one alternative hit that was collapsed into a
// surviving hit during dedup/similarity merging, for the RankingInfo
// diagnostic contract.
type collapsedAlt struct {
	DocumentID string
	Kind       string
	Score      float64
}

// collapseInto folds loser into winner: loser's own prior collapse history
// (if it had already absorbed other alternatives) is carried forward, then
// loser itself is recorded. Returns the updated winner.
func collapseInto(winner, loser scoredHit) scoredHit {
	winner.collapsed = append(append([]collapsedAlt{}, winner.collapsed...), loser.collapsed...)
	winner.collapsed = append(winner.collapsed, collapsedAlt{
		DocumentID: loser.hit.DocumentID,
		Kind:       loser.kind,
		Score:      loser.computed,
	})
	return winner
}
