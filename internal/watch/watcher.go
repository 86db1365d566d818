// Package watch re-indexes JavaScript files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"jsoutline/internal/crawler"
	"jsoutline/internal/index"
)

const defaultDebounce = 200 * time.Millisecond

// Updater applies a batch of changed paths. *index.Indexer satisfies it.
type Updater interface {
	Update(ctx context.Context, root string, paths []string) (index.Stats, error)
}

// Config configures the file watcher
type Config struct {
	// Root is the directory to watch
	Root string

	// Debounce is how long to wait for more changes before updating
	Debounce time.Duration

	// Match filters the files worth reporting, given paths relative to Root.
	// Nil accepts every file.
	Match func(rel string) bool

	Logger *slog.Logger
}

// Watcher feeds debounced file changes to an Updater.
type Watcher struct {
	config  Config
	updater Updater
	fsw     *fsnotify.Watcher
	logger  *slog.Logger

	mu      sync.Mutex
	pending map[string]fsnotify.Op
}

// NewWatcher creates a watcher over config.Root.
func NewWatcher(config Config, updater Updater) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		config:  config,
		updater: updater,
		fsw:     fsw,
		logger:  logger,
		pending: make(map[string]fsnotify.Op),
	}, nil
}

// Run watches until ctx is done. Watches are registered before Run blocks on
// events, so changes made after Run starts are seen.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.addRecursive(w.config.Root); err != nil {
		return err
	}
	w.logger.Info("file watcher started", "root", w.config.Root, "debounce", w.config.Debounce)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				timer.Reset(w.config.Debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)

		case <-fire:
			fire = nil
			w.flush(ctx)
		}
	}
}

// Ready reports whether Run has registered the watch on the root.
func (w *Watcher) Ready() bool {
	for _, p := range w.fsw.WatchList() {
		if p == w.config.Root {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && crawler.IgnoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// handle records event and reports whether it is pending an update.
func (w *Watcher) handle(event fsnotify.Event) bool {
	path := event.Name

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !crawler.IgnoredDir(filepath.Base(path)) {
				if err := w.addRecursive(path); err != nil {
					w.logger.Warn("failed to watch new directory", "path", path, "error", err)
				}
			}
			return false
		}
	}
	if event.Op == fsnotify.Chmod {
		return false
	}

	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return false
	}
	if w.config.Match != nil && !w.config.Match(filepath.ToSlash(rel)) {
		return false
	}

	w.mu.Lock()
	w.pending[path] |= event.Op
	w.mu.Unlock()

	w.logger.Debug("file change detected", "path", rel, "op", event.Op.String())
	return true
}

func (w *Watcher) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]fsnotify.Op)
	w.mu.Unlock()

	sort.Strings(paths)
	if _, err := w.updater.Update(ctx, w.config.Root, paths); err != nil {
		w.logger.Error("index update failed", "files", len(paths), "error", err)
	}
}
