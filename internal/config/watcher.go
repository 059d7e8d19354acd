package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a configuration file when it changes.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	logger   *slog.Logger
	mu       sync.Mutex
	onReload []func(*Spec)
	done     chan struct{}
	started  bool
}

// NewWatcher creates a watcher for the configuration file at path.
// The parent directory is watched so editor-style replace-by-rename
// still triggers a reload.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		watcher: fw,
		path:    path,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// OnReload registers a callback invoked with each successfully loaded
// and verified configuration.
func (w *Watcher) OnReload(fn func(*Spec)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = append(w.onReload, fn)
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	go w.loop()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", "error", err)
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	spec, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload rejected", "path", w.path, "error", err)
		return
	}
	w.logger.Info("config reloaded", "path", w.path)

	w.mu.Lock()
	callbacks := make([]func(*Spec), len(w.onReload))
	copy(callbacks, w.onReload)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(spec)
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
