package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	domaincfg "loom-backend/domain/config"
)

// Watcher reloads domain tuning overrides when the YAML config file changes,
// so layout geometry can be adjusted without a restart. Invalid or
// unparsable files keep the current configuration.
type Watcher struct {
	cfg      *Config
	path     string
	watcher  *fsnotify.Watcher
	current  *domaincfg.DomainConfig
	onChange []func(*domaincfg.DomainConfig)
	logger   *zap.Logger
	stopCh   chan struct{}
	mu       sync.RWMutex
}

// NewWatcher creates a watcher over the config file named by cfg.ConfigFile
func NewWatcher(cfg *Config, logger *zap.Logger) (*Watcher, error) {
	if cfg.ConfigFile == "" {
		return nil, fmt.Errorf("no config file to watch")
	}

	initial, err := cfg.DomainConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fsWatcher.Add(cfg.ConfigFile); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	// Watch the directory too so atomic saves (write temp, rename) are seen.
	if err := fsWatcher.Add(filepath.Dir(cfg.ConfigFile)); err != nil {
		logger.Warn("failed to watch config directory", zap.Error(err))
	}

	return &Watcher{
		cfg:     cfg,
		path:    cfg.ConfigFile,
		watcher: fsWatcher,
		current: initial,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}, nil
}

// Start begins watching for configuration changes
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("config watcher started", zap.String("path", w.path))
}

// Stop stops watching for configuration changes
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.logger.Info("config watcher stopped")
}

// Current returns the most recently loaded domain configuration
func (w *Watcher) Current() *domaincfg.DomainConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback invoked after each successful reload
func (w *Watcher) OnChange(handler func(*domaincfg.DomainConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

func (w *Watcher) watchLoop() {
	var debounce *time.Timer
	const debounceDuration = 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDuration, w.reload)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	reloaded, err := w.cfg.DomainConfig()
	if err != nil {
		w.logger.Error("config reload failed, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = reloaded
	handlers := append([]func(*domaincfg.DomainConfig){}, w.onChange...)
	w.mu.Unlock()

	w.logger.Info("config reloaded",
		zap.String("path", w.path),
		zap.Float64("node_width", reloaded.NodeWidth),
		zap.Float64("fork_offset", reloaded.ForkHorizontalOffset))

	for _, handler := range handlers {
		go handler(reloaded)
	}
}
