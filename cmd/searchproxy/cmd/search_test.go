package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certogo-tech/searchproxy/internal/config"
)

func startFakeMeilisearch(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": []map[string]any{
				{"id": "doc-1", "title": "เอกสารทดสอบ", "_rankingScore": 0.9},
			},
			"estimatedTotalHits": 1,
			"processingTimeMs":   2,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunSearch_TextFormat_PrintsHits(t *testing.T) {
	srv := startFakeMeilisearch(t)
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Backend.Endpoint = srv.URL
	cfg.Tokenization.EngineEndpoints = nil
	require.NoError(t, cfg.WriteYAML(dir+"/.searchproxy.yaml"))

	oldDir := cfgDir
	cfgDir = dir
	defer func() { cfgDir = oldDir }()

	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"เอกสาร", "--index", "documents"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "doc-1")
}

func TestRunSearch_JSONFormat_ProducesValidJSON(t *testing.T) {
	srv := startFakeMeilisearch(t)
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Backend.Endpoint = srv.URL
	cfg.Tokenization.EngineEndpoints = nil
	require.NoError(t, cfg.WriteYAML(dir+"/.searchproxy.yaml"))

	oldDir := cfgDir
	cfgDir = dir
	defer func() { cfgDir = oldDir }()

	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"เอกสาร", "--index", "documents", "--format", "json"})

	require.NoError(t, cmd.Execute())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["total_hits"])
}

func TestRunSearch_BackendUnreachable_NeverReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Backend.Endpoint = "http://127.0.0.1:1"
	cfg.Tokenization.EngineEndpoints = nil
	require.NoError(t, cfg.WriteYAML(dir+"/.searchproxy.yaml"))

	oldDir := cfgDir
	cfgDir = dir
	defer func() { cfgDir = oldDir }()

	cmd := newSearchCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"เอกสาร", "--timeout", "2s"})

	require.NoError(t, cmd.Execute())
}
