package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/lumipallolabs/treemapview/internal/config"
	"github.com/lumipallolabs/treemapview/internal/logging"
	"github.com/lumipallolabs/treemapview/internal/model"
	"github.com/lumipallolabs/treemapview/internal/scanner"
	"github.com/lumipallolabs/treemapview/internal/watcher"
)

// Controller owns a tree and its view and serializes every operation on
// them. Listeners run with the controller locked and must not call back
// into it.
type Controller struct {
	mu sync.RWMutex

	tree  *model.Tree
	view  *View
	scan  ScanState
	freed int64
}

// NewController creates a controller showing tree in a width x height view
func NewController(tree *model.Tree, cfg config.Config, width, height int) *Controller {
	return &Controller{
		tree: tree,
		view: NewView(tree, cfg, width, height),
	}
}

// Subscribe registers fn for view and controller events
func (c *Controller) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Subscribe(fn)
}

// Read runs fn with the view locked for reading. fn must not keep the view
// or the tree past its return.
func (c *Controller) Read(fn func(v *View)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.view)
}

// Update runs fn with the view locked for writing
func (c *Controller) Update(fn func(v *View)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.view)
}

// ScanState returns the current scan state
func (c *Controller) ScanState() ScanState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scan
}

// Freed returns the bytes removed from the tree so far
func (c *Controller) Freed() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freed
}

// DeleteNode removes id from the tree, keeping the view's zoom where
// possible. It returns the size removed and false when id cannot be
// removed.
func (c *Controller) DeleteNode(id model.NodeID) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleteLocked(id)
}

func (c *Controller) deleteLocked(id model.NodeID) (int64, bool) {
	n := c.tree.Node(id)
	if n == nil || id == c.tree.Root() {
		return 0, false
	}
	size := n.Size
	path := c.tree.URL(id)

	c.view.DeleteNotify(id)
	c.tree.Remove(id)
	c.view.ChildDeleted()

	c.freed += size
	logging.Debug.Debugf("deleted %s (%d bytes, %d freed)", path, size, c.freed)
	c.view.emit(DeletionDetectedEvent{Path: path, Size: size, TotalFreed: c.freed})
	return size, true
}

// ErrNoNode is returned by DeleteURL for a URL that is not in the tree
var ErrNoNode = errors.New("no such node")

// ErrRootRemoval is returned by DeleteURL for the tree root
var ErrRootRemoval = errors.New("the tree root cannot be removed")

// DeleteURL removes the node at url. The lookup and the removal happen
// under one lock, so a concurrent rescan cannot swap the tree in between.
func (c *Controller) DeleteURL(url string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.tree.Locate(url)
	switch {
	case id == model.NoNode:
		return 0, fmt.Errorf("%w: %s", ErrNoNode, url)
	case id == c.tree.Root():
		return 0, ErrRootRemoval
	}
	size, ok := c.deleteLocked(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoNode, url)
	}
	return size, nil
}

// DeletePath removes the node for a filesystem path
func (c *Controller) DeletePath(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.locatePath(path)
	if id == model.NoNode {
		logging.Debug.Debugf("delete event for path not in tree: %s", path)
		return false
	}
	_, ok := c.deleteLocked(id)
	return ok
}

// locatePath maps an OS path below the tree root to its node
func (c *Controller) locatePath(path string) model.NodeID {
	return LocatePath(c.tree, path)
}

// LocatePath maps an absolute OS path below the root of tree to its node,
// or model.NoNode
func LocatePath(tree *model.Tree, path string) model.NodeID {
	rootPath := tree.Node(tree.Root()).Name
	rel, err := filepath.Rel(rootPath, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return model.NoNode
	}
	if rel == "." {
		return tree.Root()
	}
	return tree.Locate(tree.URL(tree.Root()) + "/" + filepath.ToSlash(rel))
}

// Watch applies deletion events until ctx is done or events is closed
func (c *Controller) Watch(ctx context.Context, events <-chan watcher.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Type == watcher.EventDeleted {
				c.DeletePath(ev.Path)
			}
		}
	}
}

// Rescan scans the tree root again with s and swaps in the new tree
func (c *Controller) Rescan(ctx context.Context, s scanner.Scanner) error {
	c.mu.Lock()
	path := c.tree.Node(c.tree.Root()).Name
	c.scan = ScanState{Phase: PhaseScanning, StartTime: time.Now()}
	c.view.emit(ScanStartedEvent{Path: path})
	c.mu.Unlock()

	var progressWg sync.WaitGroup
	progressWg.Add(1)
	go func() {
		defer progressWg.Done()
		for p := range s.Progress() {
			c.mu.Lock()
			c.scan.FilesScanned = p.FilesScanned
			c.scan.BytesFound = p.BytesFound
			c.view.emit(ScanProgressEvent{FilesScanned: p.FilesScanned, BytesFound: p.BytesFound})
			c.mu.Unlock()
		}
	}()

	tree, err := s.Scan(ctx, path)
	progressWg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.scan.Phase = PhaseIdle
		c.view.emit(ScanCompletedEvent{Path: path, Err: err, Elapsed: time.Since(c.scan.StartTime)})
		return fmt.Errorf("rescan: %w", err)
	}

	c.tree = tree
	c.view.SetTree(tree)
	elapsed := time.Since(c.scan.StartTime)
	c.scan.Phase = PhaseComplete
	c.view.emit(ScanCompletedEvent{Path: path, Elapsed: elapsed})
	logging.Debug.Debugf("rescanned %s in %s", path, elapsed)
	return nil
}
