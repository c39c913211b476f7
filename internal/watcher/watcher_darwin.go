//go:build darwin

package watcher

import (
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsevents"
)

const latency = 500 * time.Millisecond

// Watcher watches for filesystem changes using macOS FSEvents
type Watcher struct {
	stream  *fsevents.EventStream
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

// AddRecursive watches root and everything below it
func (w *Watcher) AddRecursive(root string) error {
	dev, err := fsevents.DeviceForPath(root)
	if err != nil {
		return err
	}

	w.stream = &fsevents.EventStream{
		Paths:   []string{root},
		Latency: latency,
		Device:  dev,
		Flags:   fsevents.FileEvents | fsevents.WatchRoot,
	}
	return nil
}

// Start begins delivering events
func (w *Watcher) Start() {
	if w.stream == nil {
		return
	}
	w.stream.Start()
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case batch, ok := <-w.stream.Events:
			if !ok {
				return
			}
			for _, e := range batch {
				if isRemoval(e.Flags) {
					send(w.eventCh, Event{Type: EventDeleted, Path: absolute(e.Path)})
				}
			}
		}
	}
}

// isRemoval reports deletions and renames; moving to the Trash is a rename
func isRemoval(flags fsevents.EventFlags) bool {
	return flags&(fsevents.ItemRemoved|fsevents.ItemRenamed) != 0
}

// absolute restores the leading slash FSEvents drops for device relative
// streams
func absolute(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

// Stop ends the stream and closes the event channel
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	if w.stream != nil {
		w.stream.Stop()
	}
	w.wg.Wait()
	close(w.eventCh)
	return nil
}
