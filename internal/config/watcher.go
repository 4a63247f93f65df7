package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"agentrouter/internal/routing"
)

// Watcher hot-reloads the routing configuration when its file changes and
// swaps the new snapshot into the holder. In-flight decisions keep the
// snapshot they started with.
type Watcher struct {
	path    string
	holder  *routing.ConfigHolder
	watcher *fsnotify.Watcher

	// OnReload, if set, is called after each successful swap.
	OnReload func(cfg *Config)
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(path string, holder *routing.ConfigHolder) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}

	// Watch the directory, not the file: editors replace files on save and
	// the inode-level watch would go stale.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{path: path, holder: holder, watcher: fw}, nil
}

// Run processes file events until the context is cancelled. Reload failures
// are logged and the previous snapshot stays active.
func (w *Watcher) Run(ctx context.Context) {
	// Editors fire bursts of events per save; debounce them.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.watcher.Close()
			return

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
			pending = time.After(200 * time.Millisecond)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[config] watch error: %v", err)

		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

// reload parses the file and swaps the routing snapshot atomically.
func (w *Watcher) reload() {
	cfg, err := LoadFromPath(w.path)
	if err != nil {
		log.Printf("[config] reload %s failed, keeping previous snapshot: %v", w.path, err)
		return
	}

	snapshot := cfg.Routing
	w.holder.Swap(&snapshot)
	log.Printf("[config] reloaded routing configuration from %s", w.path)

	if w.OnReload != nil {
		w.OnReload(cfg)
	}
}
