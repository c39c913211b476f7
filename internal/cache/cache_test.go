package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lumipallolabs/treemapview/internal/model"
)

func testTree(root string) *model.Tree {
	tree := model.NewTree(root)
	dir := tree.Add(tree.Root(), "dir", model.KindDir, 0)
	tree.Add(dir, "file.txt", model.KindFile, 100)
	tree.Add(tree.Root(), "top.bin", model.KindFile, 20)
	tree.ComputeSizes()
	return tree
}

func TestSaveAndLoad(t *testing.T) {
	tmp := t.TempDir()
	c := New(tmp)

	path, err := c.Save(testTree("/data"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
	files, _ := filepath.Glob(filepath.Join(tmp, "*.gob.gz"))
	if len(files) != 1 {
		t.Fatalf("expected 1 cache file, got %d", len(files))
	}

	loaded, err := c.LoadLatest("/data")
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	root := loaded.Node(loaded.Root())
	if root.Name != "/data" || root.Size != 120 {
		t.Errorf("root = %+v", root)
	}
	if loaded.Locate("/data/dir/file.txt") == model.NoNode {
		t.Error("file.txt missing after load")
	}
}

func TestLoadLatestPicksNewest(t *testing.T) {
	c := New(t.TempDir())
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

	c.now = func() time.Time { return base }
	if _, err := c.Save(testTree("/data")); err != nil {
		t.Fatal(err)
	}

	newer := testTree("/data")
	newer.Add(newer.Root(), "extra", model.KindFile, 5)
	newer.ComputeSizes()
	c.now = func() time.Time { return base.Add(time.Hour) }
	if _, err := c.Save(newer); err != nil {
		t.Fatal(err)
	}

	loaded, err := c.LoadLatest("/data")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Locate("/data/extra") == model.NoNode {
		t.Error("loaded the older cache")
	}

	ts, err := c.Timestamp("/data")
	if err != nil {
		t.Fatal(err)
	}
	if !ts.Equal(base.Add(time.Hour)) {
		t.Errorf("timestamp = %v", ts)
	}
}

func TestRootsDoNotCollide(t *testing.T) {
	c := New(t.TempDir())
	if _, err := c.Save(testTree("/a")); err != nil {
		t.Fatal(err)
	}
	if _, err := c.LoadLatest("/b"); !errors.Is(err, ErrNoCache) {
		t.Errorf("expected ErrNoCache for another root, got %v", err)
	}
	if _, err := c.LoadLatest("/a/"); err != nil {
		t.Errorf("trailing slash should map to the same root: %v", err)
	}
}

func TestLoadLatestNoCache(t *testing.T) {
	c := New(t.TempDir())

	if _, err := c.LoadLatest("/nowhere"); !errors.Is(err, ErrNoCache) {
		t.Errorf("expected ErrNoCache, got %v", err)
	}
	if _, err := c.Timestamp("/nowhere"); !errors.Is(err, ErrNoCache) {
		t.Errorf("expected ErrNoCache, got %v", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	tmp := t.TempDir()
	c := New(tmp)
	name := key("/data") + "_2024-01-01_000000" + suffix
	if err := os.WriteFile(filepath.Join(tmp, name), []byte("not gzip"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := c.LoadLatest("/data"); err == nil {
		t.Error("expected an error for a corrupt cache file")
	}
}
