//go:build !darwin && !windows

package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
)

// PollInterval is how often the polling watcher checks known paths
var PollInterval = 2 * time.Second

// Watcher polls the paths found below the root and reports the ones that
// disappeared. Only the topmost missing path of a deleted subtree is
// reported.
type Watcher struct {
	paths   []string // sorted
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// New creates an idle watcher; AddRecursive and Start arm it
func New() (*Watcher, error) {
	return &Watcher{
		eventCh: make(chan Event, 100),
		done:    make(chan struct{}),
	}, nil
}

// Events returns the channel deletions are delivered on. It is closed by
// Stop.
func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// AddRecursive records every path below root
func (w *Watcher) AddRecursive(root string) error {
	var mu sync.Mutex
	var paths []string
	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		mu.Lock()
		paths = append(paths, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(paths)

	w.mu.Lock()
	w.paths = append(w.paths, paths...)
	sort.Strings(w.paths)
	w.mu.Unlock()
	return nil
}

// Start begins polling
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll drops missing paths and reports the topmost of each missing subtree
func (w *Watcher) poll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	kept := w.paths[:0]
	gone := make(map[string]bool)
	for _, p := range w.paths {
		if underAny(p, gone) {
			continue
		}
		if _, err := os.Lstat(p); os.IsNotExist(err) {
			gone[p] = true
			send(w.eventCh, Event{Type: EventDeleted, Path: p})
			continue
		}
		kept = append(kept, p)
	}
	w.paths = kept
}

// underAny reports whether an ancestor of p is in set. Parents sort before
// their children, so they are always seen first.
func underAny(p string, set map[string]bool) bool {
	if len(set) == 0 {
		return false
	}
	for dir := filepath.Dir(p); dir != p; p, dir = dir, filepath.Dir(dir) {
		if set[dir] {
			return true
		}
	}
	return false
}

// Stop ends polling and closes the event channel
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	close(w.eventCh)
	return nil
}
