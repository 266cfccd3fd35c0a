package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDuration = 500 * time.Millisecond

// Watcher watches the config file and triggers reloads on change.
type Watcher struct {
	path     string
	logger   *slog.Logger
	onChange func(*Config) error
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for the given config file path. onChange is
// called with the freshly loaded and validated config after every change.
func NewWatcher(path string, logger *slog.Logger, onChange func(*Config) error) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory containing the config file (handles editor atomic writes)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	return &Watcher{
		path:     path,
		logger:   logger,
		onChange: onChange,
		watcher:  watcher,
	}, nil
}

// Start begins watching for config changes until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info("Config watcher started", slog.String("file", w.path))

	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Config watcher stopped")
			w.watcher.Close()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			w.logger.Info("Config file changed", slog.String("event", event.Op.String()))

			// Debounce: reset timer if already running
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDuration, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Config watcher error", slog.Any("err", err))
		}
	}
}

func (w *Watcher) reload() {
	w.logger.Info("Reloading config", slog.String("file", w.path))

	cfg, err := Load()
	if err != nil {
		w.logger.Error("Config reload failed", slog.Any("err", err))
		return
	}

	if err := w.onChange(cfg); err != nil {
		w.logger.Error("Config apply failed", slog.Any("err", err))
		return
	}

	w.logger.Info("Config reloaded successfully")
}
