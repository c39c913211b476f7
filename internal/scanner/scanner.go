// Package scanner builds a model.Tree from a directory on disk.
package scanner

import (
	"context"

	"github.com/lumipallolabs/treemapview/internal/model"
)

// Progress reports scanning progress
type Progress struct {
	FilesScanned int64
	DirsScanned  int64
	BytesFound   int64
}

// Options tunes a scan
type Options struct {
	// Workers is the number of parallel directory readers
	Workers int
	// SniffMIME reads the head of every regular file to detect its content
	// type, used to classify files without a known extension
	SniffMIME bool
	// DotEntries groups the files of mixed directories into a "<Files>"
	// pseudo directory
	DotEntries bool
	// ApparentSize counts file lengths instead of allocated blocks
	ApparentSize bool
}

// Scanner defines the interface for filesystem scanning
type Scanner interface {
	// Scan scans the given root path. The returned tree has its sizes
	// computed and is rooted at the absolute path of root.
	Scan(ctx context.Context, root string) (*model.Tree, error)

	// Progress returns a channel that receives progress updates. It is
	// closed when Scan returns.
	Progress() <-chan Progress
}
