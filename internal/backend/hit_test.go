package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertHit_PrefersRankingScoreOverScore(t *testing.T) {
	raw := RawHit{
		"id":             "doc-1",
		"_rankingScore":  float64(0.9),
		"_score":         float64(0.1),
		"title":          "เอกสาร",
		"_formatted":     map[string]any{"title": "<em>เอกสาร</em>"},
	}

	hit, err := ConvertHit(raw, 1.0, "Tokenized", "newmm")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", hit.DocumentID)
	assert.Equal(t, 0.9, hit.Score)
	assert.Equal(t, "เอกสาร", hit.Document["title"])
	assert.NotContains(t, hit.Document, "_rankingScore")
	assert.NotContains(t, hit.Document, "_formatted")
	assert.Equal(t, "<em>เอกสาร</em>", hit.Highlight["title"])
	assert.Equal(t, "Tokenized", hit.RankingInfo["kind"])
}

func TestConvertHit_FallsBackToUnderscoreID(t *testing.T) {
	raw := RawHit{"_id": "doc-2"}
	hit, err := ConvertHit(raw, 0.5, "Original", "none")
	require.NoError(t, err)
	assert.Equal(t, "doc-2", hit.DocumentID)
	assert.Equal(t, 0.0, hit.Score)
}

func TestConvertHit_MissingID_Errors(t *testing.T) {
	_, err := ConvertHit(RawHit{"title": "x"}, 1.0, "Original", "none")
	require.Error(t, err)
}
