package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/certogo-tech/searchproxy/configs"
	"github.com/certogo-tech/searchproxy/internal/config"
	"github.com/certogo-tech/searchproxy/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective search proxy configuration",
		Long: `Inspect the effective configuration loaded from --config-dir/.searchproxy.yaml,
merged over the built-in defaults and environment overrides (SEARCHPROXY_*).`,
		Example: `  # Show the merged configuration as YAML
  searchproxy config show

  # Write the current defaults to a new .searchproxy.yaml
  searchproxy config init

  # Print the path config is loaded from
  searchproxy config path`,
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigBackupCmd())
	cmd.AddCommand(newConfigRestoreCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgDir)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}

			out := output.New(cmd.OutOrStdout())
			out.Statusf("", "tokenization.primary_engine: %s", cfg.Tokenization.PrimaryEngine)
			out.Statusf("", "tokenization.fallback_engines: %v", cfg.Tokenization.FallbackEngines)
			out.Statusf("", "search.max_concurrent_searches: %d", cfg.Search.MaxConcurrentSearches)
			out.Statusf("", "ranking.algorithm: %s", cfg.Ranking.Algorithm)
			out.Statusf("", "backend.endpoint: %s", cfg.Backend.Endpoint)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the effective config as JSON")

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, user bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration template to .searchproxy.yaml (or the user config with --user)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := filepath.Join(cfgDir, ".searchproxy.yaml")
			template := configs.ProjectConfigTemplate
			if user {
				path = config.GetUserConfigPath()
				template = configs.UserConfigTemplate
			}

			if fileExists(path) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			output.New(cmd.OutOrStdout()).Successf("Wrote configuration template to %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.Flags().BoolVar(&user, "user", false, "Write the user-level config instead of the project config")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the project configuration file path",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(cfgDir, ".searchproxy.yaml"))
			return err
		},
	}
}

func newConfigBackupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up the user configuration at ~/.config/searchproxy/config.yaml",
		Long: `Writes a timestamped copy of the user config next to the original
(config.yaml.bak.<timestamp>), keeping at most the most recent backups.
No-op if no user config exists yet.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := output.New(cmd.OutOrStdout())
			path, err := config.BackupUserConfig()
			if err != nil {
				return fmt.Errorf("failed to back up user config: %w", err)
			}
			if path == "" {
				out.Status("", "no user config to back up")
				return nil
			}
			out.Successf("Backed up user config to %s", path)
			return nil
		},
	}
}

func newConfigRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore the user configuration from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.RestoreUserConfig(args[0]); err != nil {
				return fmt.Errorf("failed to restore user config: %w", err)
			}
			output.New(cmd.OutOrStdout()).Successf("Restored user config from %s", args[0])
			return nil
		},
	}
}
