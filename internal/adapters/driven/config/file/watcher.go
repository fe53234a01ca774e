package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/citewise/internal/logger"
)

// DefaultReloadDelay is how long the watcher waits after the last write to
// config.toml before reloading it. Editors often write a file in several
// steps.
const DefaultReloadDelay = 250 * time.Millisecond

// Watcher reloads the config store and clears the prompt cache when their
// files change on disk. Long-running commands (mcp, tui) run one so
// edits apply without a restart.
type Watcher struct {
	config   *ConfigStore
	prompts  *PromptStore
	delay    time.Duration
	onReload func()
}

// NewWatcher creates a watcher for config and, if non-nil, prompts.
func NewWatcher(config *ConfigStore, prompts *PromptStore) *Watcher {
	return &Watcher{
		config:  config,
		prompts: prompts,
		delay:   DefaultReloadDelay,
	}
}

// OnReload registers fn to run after each successful config reload.
func (w *Watcher) OnReload(fn func()) *Watcher {
	w.onReload = fn
	return w
}

// WithDelay overrides the reload debounce delay.
func (w *Watcher) WithDelay(d time.Duration) *Watcher {
	w.delay = d
	return w
}

// Run watches until ctx is cancelled.
//
// Directories are watched rather than files: editors commonly save by
// writing a temporary file and renaming it over the original, which drops a
// watch placed on the file itself.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	configPath := filepath.Clean(w.config.Path())
	if err := fw.Add(filepath.Dir(configPath)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(configPath), err)
	}

	promptDir := ""
	if w.prompts != nil {
		promptDir = filepath.Clean(w.prompts.Dir())
		if err := os.MkdirAll(promptDir, 0700); err != nil {
			return fmt.Errorf("create prompt directory: %w", err)
		}
		if err := fw.Add(promptDir); err != nil {
			return fmt.Errorf("watch %s: %w", promptDir, err)
		}
	}
	logger.Debug("Watching %s for configuration changes", filepath.Dir(configPath))

	timer := time.NewTimer(w.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			name := filepath.Clean(event.Name)
			switch {
			case name == configPath:
				timer.Reset(w.delay)
			case promptDir != "" && filepath.Dir(name) == promptDir:
				w.prompts.Reload()
				logger.Debug("Prompt %s changed, cache cleared", filepath.Base(name))
			}

		case <-timer.C:
			w.reloadConfig()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher: %v", err)
		}
	}
}

// reloadConfig re-reads config.toml. A file that fails to parse leaves the
// previous configuration in place.
func (w *Watcher) reloadConfig() {
	if err := w.config.Reload(); err != nil {
		logger.Warn("Reload %s: %v (keeping previous configuration)", w.config.Path(), err)
		return
	}
	logger.Info("Reloaded configuration from %s", w.config.Path())
	if w.onReload != nil {
		w.onReload()
	}
}
