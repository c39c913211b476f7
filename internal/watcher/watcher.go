// Package watcher reports deletions below a watched directory: FSEvents on
// macOS, ReadDirectoryChangesW on Windows and periodic polling elsewhere.
package watcher

import "fmt"

// EventType represents the type of filesystem event
type EventType int

const (
	EventDeleted EventType = iota
	EventCreated
	EventModified
)

// String returns the event type's name
func (t EventType) String() string {
	switch t {
	case EventDeleted:
		return "deleted"
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	default:
		return "unknown"
	}
}

// Event represents a filesystem change event
type Event struct {
	Type EventType
	Path string
}

// Watch creates a watcher for everything below root and starts it
func Watch(root string) (*Watcher, error) {
	w, err := New()
	if err != nil {
		return nil, err
	}
	if err := w.AddRecursive(root); err != nil {
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	w.Start()
	return w, nil
}

// send delivers e unless the buffer is full
func send(ch chan<- Event, e Event) {
	select {
	case ch <- e:
	default:
	}
}
