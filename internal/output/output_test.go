package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_WithIcon_PrependsIt(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Status("🔍", "searching")
	assert.Equal(t, "🔍 searching\n", buf.String())
}

func TestStatus_WithoutIcon_Indents(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Status("", "plain")
	assert.Equal(t, "   plain\n", buf.String())
}

func TestSuccessf_FormatsAndUsesCheckmark(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Successf("found %d hits", 3)
	assert.True(t, strings.Contains(buf.String(), "found 3 hits"))
	assert.True(t, strings.HasPrefix(buf.String(), "✅"))
}

func TestCode_IndentsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Code("line one\nline two")
	out := buf.String()
	assert.True(t, strings.Contains(out, "  line one\n"))
	assert.True(t, strings.Contains(out, "  line two\n"))
}
