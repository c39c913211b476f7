// Package stats keeps counters that outlive one run: how much was freed
// below every scanned root and when each root was last scanned.
package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// RootStats holds the history of one scanned directory
type RootStats struct {
	LastScan time.Time `json:"last_scan"`
	Size     int64     `json:"size"`
	Freed    int64     `json:"freed"`
}

// Stats holds persistent statistics
type Stats struct {
	FreedLifetime int64                `json:"freed_lifetime"`
	Roots         map[string]RootStats `json:"roots,omitempty"`
}

// Manager handles loading and saving stats
type Manager struct {
	path         string
	stats        Stats
	mu           sync.RWMutex
	dirty        bool
	saveTimer    *time.Timer
	saveDuration time.Duration
}

// NewManager creates a stats manager backed by the file at path
func NewManager(path string) *Manager {
	return &Manager{
		path:         path,
		saveDuration: 2 * time.Second, // Debounce saves
	}
}

// DefaultPath returns the default stats file path
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".treemapview-stats.json"
	}
	return filepath.Join(dir, "treemapview", "stats.json")
}

// Load loads stats from disk
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No stats file yet, start fresh
			m.stats = Stats{}
			return nil
		}
		return err
	}

	return json.Unmarshal(data, &m.stats)
}

// Save saves stats to disk immediately
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.saveLocked()
}

// saveLocked saves stats without acquiring the lock (caller must hold lock)
func (m *Manager) saveLocked() error {
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(m.stats, "", "  ")
	if err != nil {
		return err
	}

	m.dirty = false
	return os.WriteFile(m.path, data, 0644)
}

// FreedLifetime returns the bytes freed below every root so far
func (m *Manager) FreedLifetime() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats.FreedLifetime
}

// Root returns the history of root
func (m *Manager) Root(root string) (RootStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rs, ok := m.stats.Roots[root]
	return rs, ok
}

// RecordScan notes a completed scan of root and schedules a save
func (m *Manager) RecordScan(root string, size int64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rs := m.rootLocked(root)
	rs.LastScan = at
	rs.Size = size
	m.stats.Roots[root] = rs
	m.scheduleSaveLocked()
}

// AddFreed adds bytes removed below root to the counters and schedules a
// save
func (m *Manager) AddFreed(root string, bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rs := m.rootLocked(root)
	rs.Freed += bytes
	m.stats.Roots[root] = rs
	m.stats.FreedLifetime += bytes
	m.scheduleSaveLocked()
}

func (m *Manager) rootLocked(root string) RootStats {
	if m.stats.Roots == nil {
		m.stats.Roots = make(map[string]RootStats)
	}
	return m.stats.Roots[root]
}

func (m *Manager) scheduleSaveLocked() {
	m.dirty = true

	// Cancel any pending save timer
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(m.saveDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if m.dirty {
			_ = m.saveLocked() // Ignore errors for background save
		}
	})
}

// Close ensures any pending saves are written
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}

	if m.dirty {
		return m.saveLocked()
	}
	return nil
}
