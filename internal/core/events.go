package core

import (
	"time"

	"github.com/lumipallolabs/treemapview/internal/model"
)

// Event represents a state change reported to listeners
type Event interface {
	isEvent()
}

// SelectionChangedEvent is emitted when the selected node changes. Node is
// model.NoNode when the selection was cleared.
type SelectionChangedEvent struct {
	Node model.NodeID
}

func (SelectionChangedEvent) isEvent() {}

// TreemapChangedEvent is emitted after every rebuild of the tile tree.
// Suppressed is set when the view was too small to lay anything out.
type TreemapChangedEvent struct {
	Root       model.NodeID
	Suppressed bool
	Tiles      int
	Elapsed    time.Duration
}

func (TreemapChangedEvent) isEvent() {}

// ScanStartedEvent is emitted when a rescan begins
type ScanStartedEvent struct {
	Path string
}

func (ScanStartedEvent) isEvent() {}

// ScanProgressEvent is emitted during scanning
type ScanProgressEvent struct {
	FilesScanned int64
	BytesFound   int64
}

func (ScanProgressEvent) isEvent() {}

// ScanCompletedEvent is emitted when a rescan finishes
type ScanCompletedEvent struct {
	Path    string
	Err     error
	Elapsed time.Duration
}

func (ScanCompletedEvent) isEvent() {}

// DeletionDetectedEvent is emitted when a node was removed from the tree
type DeletionDetectedEvent struct {
	Path       string
	Size       int64
	TotalFreed int64
}

func (DeletionDetectedEvent) isEvent() {}
