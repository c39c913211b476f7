package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lumipallolabs/treemapview/internal/config"
	"github.com/lumipallolabs/treemapview/internal/model"
	"github.com/lumipallolabs/treemapview/internal/scanner"
	"github.com/lumipallolabs/treemapview/internal/watcher"
)

func newTestController(t *testing.T) (*Controller, *recorder) {
	t.Helper()
	c := NewController(sampleTree(), config.Default(), 200, 100)
	rec := &recorder{}
	c.Subscribe(rec.handle)
	return c, rec
}

func TestControllerDeleteNode(t *testing.T) {
	c, rec := newTestController(t)

	var a model.NodeID
	c.Update(func(v *View) {
		a = v.Tree().Locate("/r/a")
		v.SelectNode(v.Tree().Locate("/r/a/a1.bin"))
		v.ZoomIn()
	})

	size, ok := c.DeleteNode(a)
	if !ok || size != 400 {
		t.Fatalf("DeleteNode = %d, %v", size, ok)
	}

	c.Read(func(v *View) {
		if v.Root() != v.Tree().Root() {
			t.Error("expected fallback to tree root")
		}
		if got := v.Tree().Node(v.Tree().Root()).Size; got != 250 {
			t.Errorf("root size = %d, want 250", got)
		}
	})

	if len(rec.deletions) != 1 || rec.deletions[0].Path != "/r/a" || rec.deletions[0].TotalFreed != 400 {
		t.Errorf("deletion events = %+v", rec.deletions)
	}
	if c.Freed() != 400 {
		t.Errorf("freed = %d", c.Freed())
	}

	if _, ok := c.DeleteNode(a); ok {
		t.Error("deleting twice should fail")
	}
	if _, ok := c.DeleteNode(0); ok {
		t.Error("the root cannot be deleted")
	}
}

func TestControllerDeletePath(t *testing.T) {
	c, _ := newTestController(t)

	if !c.DeletePath("/r/b/b1.bin") {
		t.Fatal("expected b1.bin to be deleted")
	}
	if c.DeletePath("/r/b/b1.bin") {
		t.Error("path already deleted")
	}
	if c.DeletePath("/elsewhere/file") {
		t.Error("path outside the tree deleted")
	}

	c.Read(func(v *View) {
		if v.Tree().Locate("/r/b/b1.bin") != model.NoNode {
			t.Error("node still in tree")
		}
	})
}

func TestControllerDeleteURL(t *testing.T) {
	c, rec := newTestController(t)

	size, err := c.DeleteURL("/r/a")
	if err != nil || size != 400 {
		t.Fatalf("DeleteURL = %d, %v", size, err)
	}
	if len(rec.deletions) != 1 || rec.deletions[0].Path != "/r/a" {
		t.Errorf("deletion events = %+v", rec.deletions)
	}

	if _, err := c.DeleteURL("/r/a"); !errors.Is(err, ErrNoNode) {
		t.Errorf("second delete = %v, want ErrNoNode", err)
	}
	if _, err := c.DeleteURL("/r"); !errors.Is(err, ErrRootRemoval) {
		t.Errorf("root delete = %v, want ErrRootRemoval", err)
	}
	if c.Freed() != 400 {
		t.Errorf("freed = %d", c.Freed())
	}
}

func TestControllerDeleteURLAfterRescan(t *testing.T) {
	c, _ := newTestController(t)

	// The replacement tree puts different nodes behind the same ids
	fresh := model.NewTree("/r")
	fresh.Add(fresh.Root(), "big.iso", model.KindFile, 5000)
	b := fresh.Add(fresh.Root(), "b", model.KindDir, 0)
	fresh.Add(b, "b1.bin", model.KindFile, 200)
	fresh.ComputeSizes()

	var staleID model.NodeID
	c.Read(func(v *View) {
		staleID = v.Tree().Locate("/r/b/b1.bin")
	})
	if err := c.Rescan(context.Background(), newFakeScanner(fresh, nil)); err != nil {
		t.Fatalf("Rescan: %v", err)
	}
	if fresh.Locate("/r/b/b1.bin") == staleID {
		t.Fatal("fixture should move b1.bin to another id")
	}

	size, err := c.DeleteURL("/r/b/b1.bin")
	if err != nil || size != 200 {
		t.Fatalf("DeleteURL = %d, %v", size, err)
	}
	if fresh.Locate("/r/big.iso") == model.NoNode {
		t.Error("unrelated node removed")
	}
	if c.Freed() != 200 {
		t.Errorf("freed = %d, want 200", c.Freed())
	}
}

func TestControllerWatch(t *testing.T) {
	c, rec := newTestController(t)

	events := make(chan watcher.Event, 3)
	events <- watcher.Event{Type: watcher.EventModified, Path: "/r/c.txt"}
	events <- watcher.Event{Type: watcher.EventDeleted, Path: "/r/c.txt"}
	events <- watcher.Event{Type: watcher.EventDeleted, Path: "/r/missing"}
	close(events)

	if err := c.Watch(context.Background(), events); err != nil {
		t.Fatalf("Watch returned %v", err)
	}
	if len(rec.deletions) != 1 || rec.deletions[0].Path != "/r/c.txt" {
		t.Errorf("deletions = %+v", rec.deletions)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Watch(ctx, make(chan watcher.Event)); !errors.Is(err, context.Canceled) {
		t.Errorf("Watch after cancel = %v", err)
	}
}

// fakeScanner returns a fixed tree
type fakeScanner struct {
	tree *model.Tree
	err  error
	ch   chan scanner.Progress
}

func newFakeScanner(tree *model.Tree, err error) *fakeScanner {
	return &fakeScanner{tree: tree, err: err, ch: make(chan scanner.Progress, 1)}
}

func (f *fakeScanner) Scan(ctx context.Context, root string) (*model.Tree, error) {
	f.ch <- scanner.Progress{FilesScanned: 4, BytesFound: 650}
	close(f.ch)
	return f.tree, f.err
}

func (f *fakeScanner) Progress() <-chan scanner.Progress { return f.ch }

func TestControllerRescan(t *testing.T) {
	c, _ := newTestController(t)
	c.Update(func(v *View) {
		v.SelectNode(v.Tree().Locate("/r/b/b1.bin"))
		v.ZoomIn()
	})

	fresh := sampleTree()
	if err := c.Rescan(context.Background(), newFakeScanner(fresh, nil)); err != nil {
		t.Fatalf("Rescan: %v", err)
	}

	state := c.ScanState()
	if state.Phase != PhaseComplete || state.FilesScanned != 4 {
		t.Errorf("scan state = %+v", state)
	}
	c.Read(func(v *View) {
		if v.Tree() != fresh {
			t.Error("tree not replaced")
		}
		if v.Root() != fresh.Locate("/r/b") {
			t.Error("zoomed root not restored")
		}
	})

	// DeletePath resolves against the new tree
	if !c.DeletePath("/r/c.txt") {
		t.Error("delete in rescanned tree failed")
	}
}

func TestControllerRescanError(t *testing.T) {
	c, _ := newTestController(t)
	boom := errors.New("boom")

	err := c.Rescan(context.Background(), newFakeScanner(nil, boom))
	if !errors.Is(err, boom) {
		t.Fatalf("Rescan error = %v", err)
	}
	if c.ScanState().Phase != PhaseIdle {
		t.Error("phase not reset")
	}
	c.Read(func(v *View) {
		if v.Tree().Locate("/r/a") == model.NoNode {
			t.Error("old tree lost after failed rescan")
		}
	})
}

func TestScanStateElapsed(t *testing.T) {
	if (ScanState{}).Elapsed() != 0 {
		t.Error("zero state should have no elapsed time")
	}
	s := ScanState{Phase: PhaseScanning, StartTime: time.Now().Add(-2 * time.Second)}
	if s.Elapsed() < 2*time.Second || !s.IsScanning() {
		t.Errorf("state = %+v, elapsed %s", s, s.Elapsed())
	}
	if PhaseScanning.String() != "Scanning files" || PhaseIdle.String() != "" {
		t.Error("unexpected phase names")
	}
}
