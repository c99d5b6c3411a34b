package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/certogo-tech/searchproxy/internal/cache"
	"github.com/certogo-tech/searchproxy/internal/config"
	"github.com/certogo-tech/searchproxy/internal/daemon"
	"github.com/certogo-tech/searchproxy/internal/output"
)

const reloadPollInterval = 500 * time.Millisecond

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the search proxy's config-reload lifecycle in the foreground",
		Long: `Loads .searchproxy.yaml, watches it for changes, and keeps the orchestrator's
configuration snapshot current until interrupted. This command owns process
lifecycle (PID file, signal handling, hot-reload) only; it does not open a
network listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	out := output.New(cmd.OutOrStdout())

	cfg, err := config.Load(cfgDir)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	orch := buildOrchestrator(cfg)

	watcher, err := config.NewWatcher(cfgDir, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to start config watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	pidPath := cfg.Server.PIDFile
	if pidPath == "" {
		pidPath = filepath.Join(os.TempDir(), "searchproxy.pid")
	}
	pidFile := daemon.NewPIDFile(pidPath)
	if err := pidFile.Write(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer func() { _ = pidFile.Remove() }()

	var cached *cache.CachedSearcher
	if cfg.Performance.CacheEnabled {
		cached = cache.New(orch, cfg.Performance.CacheSize)
		out.Statusf("", "result cache enabled (size=%d)", cfg.Performance.CacheSize)
	}

	out.Successf("searchproxy serving (pid %d, config %s)", os.Getpid(), filepath.Join(cfgDir, ".searchproxy.yaml"))

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reloadTicker := watchReload(runCtx, watcher, orch, cached)
	defer reloadTicker()

	<-runCtx.Done()
	if cached != nil {
		stats := cached.Stats()
		out.Statusf("", "cache stats at shutdown: hits=%d misses=%d entries=%d", stats.Hits, stats.Misses, stats.Entries)
	}
	out.Status("", "shutting down")
	return nil
}

// watchReload polls the config.Watcher's snapshot and republishes it to the
// orchestrator whenever it changes, purging the result cache (if any) since
// a changed ranking or tokenization config invalidates prior answers.
// Returns a cancel function.
func watchReload(ctx context.Context, watcher *config.Watcher, orch interface{ UpdateConfig(*config.Config) }, cached *cache.CachedSearcher) func() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		last := watcher.Snapshot()
		orch.UpdateConfig(last)

		ticker := time.NewTicker(reloadPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				snap := watcher.Snapshot()
				if snap != last {
					slog.Info("config reloaded")
					orch.UpdateConfig(snap)
					if cached != nil {
						cached.Purge()
					}
					last = snap
				}
			}
		}
	}()
	return func() { <-done }
}
