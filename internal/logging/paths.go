package logging

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultLogDir returns the default log directory (~/.searchproxy/logs/).
// Falls back to temp directory if home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".searchproxy", "logs")
	}
	return filepath.Join(home, ".searchproxy", "logs")
}

// DefaultLogPath returns the default server log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "server.log")
}

// TokenizerLogPath returns the external tokenization service log path, used
// when a tokenizer engine (newmm, attacut, deepcut) runs as a sidecar
// process rather than an in-process library.
func TokenizerLogPath() string {
	return filepath.Join(DefaultLogDir(), "tokenizer-server.log")
}

// LogSource represents the source of logs to view.
type LogSource string

const (
	// LogSourceServer is the search proxy server's own logs (default).
	LogSourceServer LogSource = "server"
	// LogSourceTokenizer is the external tokenization service logs.
	LogSourceTokenizer LogSource = "tokenizer"
	// LogSourceAll combines all log sources.
	LogSourceAll LogSource = "all"
)

// FindLogFile attempts to find the log file for viewing.
// Priority:
// 1. Explicit path (if provided)
// 2. ~/.searchproxy/logs/server.log (global)
//
// Returns an error if no log file is found.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("log file not found: %s", explicit)
	}

	// Try global path
	globalPath := DefaultLogPath()
	if _, err := os.Stat(globalPath); err == nil {
		return globalPath, nil
	}

	return "", fmt.Errorf("no log file found. Server may not have run with --debug yet.\nExpected at: %s", globalPath)
}

// FindLogFileBySource finds log files based on the source type.
// Returns a list of log file paths that exist.
func FindLogFileBySource(source LogSource, explicit string) ([]string, error) {
	// Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return []string{explicit}, nil
		}
		return nil, fmt.Errorf("log file not found: %s", explicit)
	}

	var paths []string
	var checked []string

	switch source {
	case LogSourceServer:
		serverPath := DefaultLogPath()
		checked = append(checked, serverPath)
		if _, err := os.Stat(serverPath); err == nil {
			paths = append(paths, serverPath)
		}

	case LogSourceTokenizer:
		tokenizerPath := TokenizerLogPath()
		checked = append(checked, tokenizerPath)
		if _, err := os.Stat(tokenizerPath); err == nil {
			paths = append(paths, tokenizerPath)
		}

	case LogSourceAll:
		serverPath := DefaultLogPath()
		tokenizerPath := TokenizerLogPath()
		checked = append(checked, serverPath, tokenizerPath)

		if _, err := os.Stat(serverPath); err == nil {
			paths = append(paths, serverPath)
		}
		if _, err := os.Stat(tokenizerPath); err == nil {
			paths = append(paths, tokenizerPath)
		}

	default:
		return nil, fmt.Errorf("unknown log source: %s (use: server, tokenizer, all)", source)
	}

	if len(paths) == 0 {
		hint := getLogHint(source)
		return nil, fmt.Errorf("no log files found for source '%s'.\nChecked: %v\n\n%s", source, checked, hint)
	}

	return paths, nil
}

// ParseLogSource parses a string into a LogSource.
func ParseLogSource(s string) LogSource {
	switch s {
	case "tokenizer":
		return LogSourceTokenizer
	case "all":
		return LogSourceAll
	default:
		return LogSourceServer
	}
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	dir := DefaultLogDir()
	return os.MkdirAll(dir, 0o755)
}

// getLogHint returns a helpful message on how to generate logs for the given source.
func getLogHint(source LogSource) string {
	switch source {
	case LogSourceServer:
		return "To generate server logs:\n  searchproxy --debug serve"
	case LogSourceTokenizer:
		return "Tokenizer service logs are produced by the configured tokenizer engine process, not by searchproxy itself."
	case LogSourceAll:
		return "To generate logs:\n  Server:    searchproxy --debug serve\n  Tokenizer: see your tokenizer engine's own logging"
	default:
		return ""
	}
}
