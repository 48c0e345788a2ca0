// Package livewatch is CLI-layer sugar, not part of the core: it
// recursively watches a directory tree with fsnotify and debounces
// write/remove/create bursts into a single callback reporting the set
// of changed paths, so a driver can feed them to
// depgraph.DependencyGraph.AffectedEntryFiles. Real-time watching is an
// explicit non-goal of the core itself, so only the cmd package imports
// this one; core/depgraph and the packages it uses never do.
package livewatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/watchloom/depgraph/core/logger"
)

// Watcher recursively watches RootDir, excluding ExcludePaths, and
// invokes OnChange with the debounced set of changed absolute paths.
type Watcher struct {
	RootDir      string
	ExcludePaths []string
	Debounce     time.Duration
	OnChange     func(changed []string)

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
}

// New constructs a Watcher. debounce defaults to 500ms when zero.
func New(rootDir string, excludePaths []string, debounce time.Duration, onChange func(changed []string)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("livewatch: new watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{
		RootDir:      rootDir,
		ExcludePaths: excludePaths,
		Debounce:     debounce,
		OnChange:     onChange,
		watcher:      w,
		pending:      make(map[string]struct{}),
	}, nil
}

// Run adds recursive watches under RootDir and blocks processing events
// until the watcher is closed.
func (w *Watcher) Run() error {
	if err := w.addRecursively(w.RootDir); err != nil {
		return fmt.Errorf("livewatch: add watchers: %w", err)
	}

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("livewatch: events channel closed")
			}

			if w.shouldExclude(event.Name) {
				continue
			}
			logger.Debug("livewatch: event %s %s", event.Op, event.Name)

			if event.Has(fsnotify.Create) {
				if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
					if !w.shouldExclude(event.Name) {
						w.watcher.Add(event.Name)
					}
				}
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) {
				w.debounce(event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("livewatch: errors channel closed")
			}
			logger.Error("livewatch: watcher error: %v", err)
		}
	}
}

// Close stops the underlying fsnotify watcher and cancels any pending
// debounce timer.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

func (w *Watcher) debounce(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(changed) == 0 {
		return
	}
	logger.Debug("livewatch: flushing %d changed paths", len(changed))
	w.OnChange(changed)
}

func (w *Watcher) shouldExclude(path string) bool {
	rel, err := filepath.Rel(w.RootDir, path)
	if err != nil {
		return false
	}
	rel = filepath.Clean(rel)

	for _, excluded := range w.ExcludePaths {
		excluded = filepath.Clean(excluded)
		if rel == excluded || strings.HasPrefix(rel, excluded+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if w.shouldExclude(path) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}
