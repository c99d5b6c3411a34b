// Package cmd provides the CLI commands for searchproxy.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/certogo-tech/searchproxy/internal/logging"
	"github.com/certogo-tech/searchproxy/pkg/version"
)

var (
	cfgDir    string
	debugMode bool

	loggingCleanup func()
)

// NewRootCmd creates the root command for the searchproxy CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "searchproxy",
		Short: "Intelligent search intermediary for Thai-language document search",
		Long: `searchproxy mediates between search clients and a Meilisearch-compatible
backend: it detects Thai content, tokenizes queries with multiple engines
and a confidence-scored fallback cascade, fans weighted query variants out
to the backend, and re-ranks the merged results before returning them.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("searchproxy version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgDir, "config-dir", ".", "Directory containing .searchproxy.yaml")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to stderr")

	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		logCfg := logging.DefaultConfig()
		if debugMode {
			logCfg = logging.DebugConfig()
		}
		logger, cleanup, err := logging.Setup(logCfg)
		if err != nil {
			return err
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		return nil
	}
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		if loggingCleanup != nil {
			loggingCleanup()
			loggingCleanup = nil
		}
		return nil
	}

	cmd.AddCommand(newSearchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newLogsCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
