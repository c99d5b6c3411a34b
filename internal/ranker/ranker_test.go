package ranker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certogo-tech/searchproxy/internal/backend"
	"github.com/certogo-tech/searchproxy/internal/executor"
	"github.com/certogo-tech/searchproxy/internal/query"
)

func hit(id string, scoreVal float64, title string) backend.Hit {
	return backend.Hit{
		DocumentID: id,
		Score:      scoreVal,
		Document:   map[string]any{"title": title, "content": title},
	}
}

func TestRank_EmptyInput_ReturnsEmptyResults(t *testing.T) {
	r := New(DefaultConfig())
	out := r.Rank(nil, "query", Context{}, "")
	assert.Empty(t, out.Hits)
}

func TestRank_DropsLowScoringHitsBelowThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NormalizeScores = false
	cfg.MinScoreThreshold = 0.5
	r := New(cfg)

	results := []executor.SearchResult{
		{
			Variant: query.QueryVariant{Kind: query.KindOriginal, Weight: 1.0},
			Success: true,
			Hits:    []backend.Hit{hit("a", 0.9, "a"), hit("b", 0.1, "b")},
		},
	}

	out := r.Rank(results, "q", Context{}, "")
	var ids []string
	for _, h := range out.Hits {
		ids = append(ids, h.Hit.DocumentID)
	}
	assert.Contains(t, ids, "a")
	assert.NotContains(t, ids, "b")
}

func TestRank_DedupsByDocumentID(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NormalizeScores = false
	r := New(cfg)

	results := []executor.SearchResult{
		{Variant: query.QueryVariant{Kind: query.KindOriginal, Weight: 1.0}, Success: true, Hits: []backend.Hit{hit("dup", 0.5, "x")}},
		{Variant: query.QueryVariant{Kind: query.KindTokenized, Weight: 1.0, EngineID: "newmm"}, Success: true, Hits: []backend.Hit{hit("dup", 0.9, "x")}},
	}

	out := r.Rank(results, "q", Context{}, "")
	require.Len(t, out.Hits, 1)
	assert.Equal(t, 1, out.DuplicatesRemoved)

	collapsed, ok := out.Hits[0].RankingInfo["collapsed"].([]map[string]any)
	require.True(t, ok, "RankingInfo should record the collapsed alternative")
	require.Len(t, collapsed, 1)
	assert.Equal(t, "dup", collapsed[0]["document_id"])
	assert.Equal(t, string(query.KindOriginal), collapsed[0]["kind"])
}

func TestRank_NormalizesToMaxScoreOfOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScoreThreshold = 0
	r := New(cfg)

	results := []executor.SearchResult{
		{Variant: query.QueryVariant{Kind: query.KindOriginal, Weight: 1.0}, Success: true, Hits: []backend.Hit{hit("a", 1.0, "a"), hit("b", 0.4, "b")}},
	}
	out := r.Rank(results, "q", Context{}, "")
	assert.Equal(t, 1.0, out.Hits[0].Score)
}

func TestRank_SortIsDescendingByScore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinScoreThreshold = 0
	r := New(cfg)

	results := []executor.SearchResult{
		{Variant: query.QueryVariant{Kind: query.KindOriginal, Weight: 1.0}, Success: true, Hits: []backend.Hit{hit("low", 0.2, "low"), hit("high", 0.9, "high")}},
	}
	out := r.Rank(results, "q", Context{}, "")
	require.Len(t, out.Hits, 2)
	assert.GreaterOrEqual(t, out.Hits[0].Score, out.Hits[1].Score)
}

func TestAbBucket_IsDeterministic(t *testing.T) {
	a := abBucket("session-1", "query text")
	b := abBucket("session-1", "query text")
	assert.Equal(t, a, b)
}

func TestSelectAlgorithm_DisabledReturnsConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Algorithm = AlgorithmSimple
	cfg.ABTestingEnabled = false
	assert.Equal(t, AlgorithmSimple, selectAlgorithm(cfg, "session", "q"))
}

func TestSelectAlgorithm_NoSessionReturnsConfigured(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ABTestingEnabled = true
	assert.Equal(t, cfg.Algorithm, selectAlgorithm(cfg, "", "q"))
}

func TestLcsRatio_IdenticalStringsScoreOne(t *testing.T) {
	assert.Equal(t, 1.0, lcsRatio("hello", "hello"))
}

func TestLcsRatio_CompletelyDifferentScoresLow(t *testing.T) {
	assert.Less(t, lcsRatio("abc", "xyz"), 0.5)
}

func TestPreferred_HigherScoreWins(t *testing.T) {
	a := scoredHit{computed: 0.9}
	b := scoredHit{computed: 0.5}
	assert.True(t, preferred(a, b))
}

func TestPreferred_KindPriorityBreaksScoreTie(t *testing.T) {
	a := scoredHit{computed: 0.5, kind: "Tokenized"}
	b := scoredHit{computed: 0.5, kind: "Fallback"}
	assert.True(t, preferred(a, b))
}
