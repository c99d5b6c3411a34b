package config

import (
	"log/slog"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher holds a live, atomically-swapped Config snapshot and republishes it
// whenever the on-disk project config file changes. In-flight callers that
// already loaded a snapshot via Load keep using it; only callers that call
// Snapshot after a reload observe the new values — the snapshot itself is
// never mutated in place.
type Watcher struct {
	dir     string
	current atomic.Pointer[Config]
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	done    chan struct{}
}

// NewWatcher loads the initial configuration from dir and starts watching
// its project config file (if one exists) for changes.
func NewWatcher(dir string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := Load(dir)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watching the directory rather than the file survives editors that
	// replace the file instead of writing in place.
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		dir:     dir,
		watcher: fw,
		logger:  logger,
		done:    make(chan struct{}),
	}
	w.current.Store(cfg)

	go w.run()
	return w, nil
}

// Snapshot returns the most recently published Config. Safe for concurrent use.
func (w *Watcher) Snapshot() *Config {
	return w.current.Load()
}

// Close stops the underlying filesystem watch.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.dir)
	if err != nil {
		w.logger.Warn("config reload failed, keeping previous snapshot", slog.String("error", err.Error()))
		return
	}
	w.current.Store(cfg)
	w.logger.Info("config reloaded")
}
