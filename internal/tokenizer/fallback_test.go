package tokenizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCharacterFallback_SegmentsThaiRuns(t *testing.T) {
	fb := NewCharacterFallback()

	result, err := fb.Tokenize(context.Background(), "ค้นหาเอกสาร")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "character-fallback", result.EngineID)
	assert.NotEmpty(t, result.Tokens)
}

func TestCharacterFallback_DropsShortThaiRuns(t *testing.T) {
	tokens := segmentByCharacterClass("ก hello ข")
	// Single-character Thai runs ("ก", "ข") are dropped; "hello" survives.
	assert.Equal(t, []string{"hello"}, tokens)
}

func TestCharacterFallback_KeepsLongerThaiRuns(t *testing.T) {
	tokens := segmentByCharacterClass("ค้นหา database เอกสาร")
	assert.Contains(t, tokens, "ค้นหา")
	assert.Contains(t, tokens, "database")
	assert.Contains(t, tokens, "เอกสาร")
}

func TestCharacterFallback_EmptyInput(t *testing.T) {
	tokens := segmentByCharacterClass("   ")
	assert.Empty(t, tokens)
}

func TestIsThaiRune(t *testing.T) {
	assert.True(t, IsThaiRune('ก'))
	assert.True(t, IsThaiRune('๙'))
	assert.False(t, IsThaiRune('a'))
	assert.False(t, IsThaiRune(' '))
}
