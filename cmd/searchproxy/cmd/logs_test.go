package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunLogs_TailsExplicitFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")
	content := `{"time":"2026-07-31T00:00:00Z","level":"INFO","msg":"started"}
{"time":"2026-07-31T00:00:01Z","level":"ERROR","msg":"backend unreachable"}
`
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o644))

	err := runLogs(context.Background(), logsOptions{
		lines:   10,
		logFile: logPath,
	})
	require.NoError(t, err)
}

func TestRunLogs_MissingFile_ReturnsError(t *testing.T) {
	err := runLogs(context.Background(), logsOptions{
		lines:   10,
		logFile: filepath.Join(t.TempDir(), "missing.log"),
	})
	require.Error(t, err)
}

func TestRunLogs_InvalidFilterPattern_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")
	require.NoError(t, os.WriteFile(logPath, []byte(`{"level":"INFO","msg":"x"}`), 0o644))

	err := runLogs(context.Background(), logsOptions{
		lines:   10,
		logFile: logPath,
		filter:  "(unclosed",
	})
	require.Error(t, err)
}

func TestNewLogsCmd_RegistersExpectedFlags(t *testing.T) {
	cmd := newLogsCmd()
	for _, name := range []string{"follow", "lines", "level", "filter", "no-color", "file", "source"} {
		require.NotNil(t, cmd.Flags().Lookup(name), "expected flag %q", name)
	}
}
