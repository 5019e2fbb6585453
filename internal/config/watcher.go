package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultReloadDelay coalesces the bursts of events editors produce on save.
const DefaultReloadDelay = 2 * time.Second

// Watcher reloads the configuration file when it changes. Only files that
// load and validate reach the callback.
type Watcher struct {
	path     string
	delay    time.Duration
	onChange func(*GlobalConfig)
	logger   zerolog.Logger

	lastModified time.Time
	lastSize     int64
}

// NewWatcher creates a watcher for path. A non-positive delay uses
// DefaultReloadDelay.
func NewWatcher(path string, delay time.Duration, onChange func(*GlobalConfig), logger zerolog.Logger) *Watcher {
	if delay <= 0 {
		delay = DefaultReloadDelay
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		delay:    delay,
		onChange: onChange,
		logger:   logger.With().Str("component", "ConfigWatcher").Logger(),
	}
	if stat, err := os.Stat(w.path); err == nil {
		w.lastModified, w.lastSize = stat.ModTime(), stat.Size()
	}
	return w
}

// Run watches the file's directory until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace the file, so watch its directory
	configDir := filepath.Dir(w.path)
	if err := watcher.Add(configDir); err != nil {
		return fmt.Errorf("failed to watch config directory '%s': %w", configDir, err)
	}
	w.logger.Info().Str("path", w.path).Msg("Watching configuration for changes")

	reloadTimer := time.NewTimer(0)
	if !reloadTimer.Stop() {
		<-reloadTimer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) == w.path && event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.logger.Debug().Str("op", event.Op.String()).Msg("Config file change detected")
				reloadTimer.Reset(w.delay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("File watcher error")

		case <-reloadTimer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	stat, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Msg("Config file unreadable, keeping current configuration")
		return
	}
	if stat.ModTime().Equal(w.lastModified) && stat.Size() == w.lastSize {
		return
	}
	w.lastModified, w.lastSize = stat.ModTime(), stat.Size()

	cfg, err := LoadGlobalConfig(w.path, w.logger)
	if err == nil {
		err = ValidateConfig(cfg)
	}
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to reload configuration")
		return
	}

	w.logger.Info().Msg("Configuration reloaded")
	w.onChange(cfg)
}
