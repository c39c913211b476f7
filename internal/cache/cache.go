// Package cache stores scan results on disk so a tree can be shown again
// without walking the filesystem.
package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"

	"github.com/lumipallolabs/treemapview/internal/logging"
	"github.com/lumipallolabs/treemapview/internal/model"
)

const (
	timeLayout = "2006-01-02_150405"
	suffix     = ".gob.gz"
)

// ErrNoCache is returned when nothing has been saved for a root
var ErrNoCache = errors.New("no cache")

// Cache handles saving and loading scan results
type Cache struct {
	dir string
	now func() time.Time
}

// New creates a new cache in the given directory
func New(dir string) *Cache {
	return &Cache{dir: dir, now: time.Now}
}

// DefaultDir returns the default cache directory
func DefaultDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".treemapview"
	}
	return filepath.Join(dir, "treemapview")
}

// key names the files of one scan root
func key(root string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(filepath.Clean(root)))
}

// Save writes tree under its root path and returns the file written
func (c *Cache) Save(tree *model.Tree) (string, error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	root := tree.Node(tree.Root()).Name
	filename := fmt.Sprintf("%s_%s%s", key(root), c.now().Format(timeLayout), suffix)
	path := filepath.Join(c.dir, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(tree.Snapshot()); err != nil {
		gzWriter.Close()
		return "", fmt.Errorf("encode: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}

	logging.Debug.Debugf("cached %s as %s", root, filename)
	return path, nil
}

// latest returns the newest cache file for root
func (c *Cache) latest(root string) (string, error) {
	pattern := filepath.Join(c.dir, key(root)+"_*"+suffix)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%s: %w", root, ErrNoCache)
	}

	// Filenames sort by timestamp
	sort.Strings(files)
	return files[len(files)-1], nil
}

// LoadLatest loads the most recent tree saved for root
func (c *Cache) LoadLatest(root string) (*model.Tree, error) {
	latest, err := c.latest(root)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(latest)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gzReader.Close()

	var snap model.Snapshot
	if err := gob.NewDecoder(gzReader).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	tree, err := model.FromSnapshot(snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", latest, err)
	}
	return tree, nil
}

// Timestamp returns when the latest cache for root was written
func (c *Cache) Timestamp(root string) (time.Time, error) {
	latest, err := c.latest(root)
	if err != nil {
		return time.Time{}, err
	}

	base := strings.TrimSuffix(filepath.Base(latest), suffix)
	_, stamp, ok := strings.Cut(base, "_")
	if !ok {
		return time.Time{}, fmt.Errorf("invalid filename %s", base)
	}
	return time.ParseInLocation(timeLayout, stamp, time.Local)
}
