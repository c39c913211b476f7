package stats

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFile(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "none", "stats.json"))
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.FreedLifetime() != 0 {
		t.Error("fresh stats should be empty")
	}
}

func TestCountersPersist(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	scanned := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	m := NewManager(path)
	m.RecordScan("/data", 1000, scanned)
	m.AddFreed("/data", 300)
	m.AddFreed("/other", 20)
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	loaded := NewManager(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}
	if loaded.FreedLifetime() != 320 {
		t.Errorf("lifetime = %d, want 320", loaded.FreedLifetime())
	}
	rs, ok := loaded.Root("/data")
	if !ok || rs.Freed != 300 || rs.Size != 1000 || !rs.LastScan.Equal(scanned) {
		t.Errorf("root stats = %+v, %v", rs, ok)
	}
	if _, ok := loaded.Root("/nowhere"); ok {
		t.Error("unknown root reported")
	}
}

func TestCloseWithoutChangesWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	m := NewManager(path)
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("stats file written without changes: %v", err)
	}
}

func TestDebouncedSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	m := NewManager(path)
	m.saveDuration = 10 * time.Millisecond

	m.AddFreed("/data", 5)

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced save never happened")
		}
		time.Sleep(5 * time.Millisecond)
	}
	m.Close()
}
