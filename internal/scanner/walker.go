package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"

	"github.com/lumipallolabs/treemapview/internal/logging"
	"github.com/lumipallolabs/treemapview/internal/model"
)

const progressInterval = 100 * time.Millisecond

// Walker implements parallel filesystem scanning
type Walker struct {
	opts       Options
	progressCh chan Progress
	progress   Progress
}

// NewWalker creates a new parallel filesystem walker
func NewWalker(opts Options) *Walker {
	if opts.Workers < 1 {
		opts.Workers = 8
	}
	return &Walker{
		opts:       opts,
		progressCh: make(chan Progress, 100),
	}
}

// Progress returns the progress channel
func (w *Walker) Progress() <-chan Progress {
	return w.progressCh
}

// entry is a walked path waiting to be linked into the tree
type entry struct {
	path string
	name string
	size int64
	mode fs.FileMode
	mime string
	dir  bool
}

// Scan walks root with fastwalk and builds the tree
func (w *Walker) Scan(ctx context.Context, root string) (*model.Tree, error) {
	defer close(w.progressCh)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	info, err := statDir(absRoot)
	if err != nil {
		return nil, err
	}

	device := statRootDevice(absRoot)

	entryCh := make(chan entry, 50000)
	var entries []entry
	var collectWg sync.WaitGroup
	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for e := range entryCh {
			entries = append(entries, e)
		}
	}()

	stopProgress := w.reportProgress()

	var seen sync.Map
	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: w.opts.Workers,
	}

	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			logging.Scanner.Debugf("skip %s: %v", path, err)
			return nil
		}
		if path == absRoot {
			return nil
		}

		if d.IsDir() {
			if shouldSkipDir(d, device, &seen) {
				return fs.SkipDir
			}
			atomic.AddInt64(&w.progress.DirsScanned, 1)
			entryCh <- entry{path: path, name: d.Name(), mode: d.Type(), dir: true}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		size := fileSize(info, &seen, w.opts.ApparentSize)
		if size < 0 {
			// Hard link already counted
			return nil
		}

		e := entry{path: path, name: d.Name(), size: size, mode: info.Mode()}
		if w.opts.SniffMIME && info.Mode().IsRegular() {
			if mt, err := mimetype.DetectFile(path); err == nil {
				e.mime = mt.String()
			}
		}

		atomic.AddInt64(&w.progress.FilesScanned, 1)
		atomic.AddInt64(&w.progress.BytesFound, size)
		entryCh <- e
		return nil
	})

	close(entryCh)
	collectWg.Wait()
	stopProgress()

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		return nil, fmt.Errorf("walk %s: %w", absRoot, walkErr)
	}

	tree := buildTree(absRoot, info.Mode(), entries)
	tree.ComputeSizes()
	if w.opts.DotEntries {
		tree.AddDotEntries()
	}

	logging.Scanner.Debugf("scanned %s: %d files, %d dirs, %d bytes", absRoot,
		w.progress.FilesScanned, w.progress.DirsScanned, w.progress.BytesFound)
	return tree, nil
}

// reportProgress sends a progress snapshot periodically until the returned
// stop function is called
func (w *Walker) reportProgress() (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				w.send()
				return
			case <-ticker.C:
				w.send()
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
	}
}

func (w *Walker) send() {
	p := Progress{
		FilesScanned: atomic.LoadInt64(&w.progress.FilesScanned),
		DirsScanned:  atomic.LoadInt64(&w.progress.DirsScanned),
		BytesFound:   atomic.LoadInt64(&w.progress.BytesFound),
	}
	select {
	case w.progressCh <- p:
	default:
		// Nobody listening, drop
	}
}

func statDir(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", path)
	}
	return info, nil
}

// buildTree links the flat entries into a tree rooted at rootPath.
// Entries are sorted by path so a parent always precedes its children and
// sibling order does not depend on walk scheduling.
func buildTree(rootPath string, rootMode fs.FileMode, entries []entry) *model.Tree {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].path < entries[j].path
	})

	tree := model.NewTree(rootPath)
	tree.Node(tree.Root()).Mode = rootMode

	ids := make(map[string]model.NodeID, len(entries)+1)
	ids[rootPath] = tree.Root()

	for _, e := range entries {
		parent, ok := ids[filepath.Dir(e.path)]
		if !ok {
			continue
		}

		kind := model.KindFile
		if e.dir {
			kind = model.KindDir
		}
		id := tree.AddNode(parent, model.Node{
			Name: e.name,
			Size: e.size,
			Kind: kind,
			Mode: e.mode,
			MIME: e.mime,
		})
		if e.dir {
			ids[e.path] = id
		}
	}
	return tree
}

// Ensure Walker implements Scanner
var _ Scanner = (*Walker)(nil)
