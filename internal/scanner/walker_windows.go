//go:build windows

package scanner

import (
	"io/fs"
	"sync"
)

// rootDevice is empty on Windows: drives are scanned separately
type rootDevice struct{}

func statRootDevice(path string) rootDevice {
	return rootDevice{}
}

func shouldSkipDir(d fs.DirEntry, root rootDevice, seen *sync.Map) bool {
	return false
}

// fileSize returns the logical file length; allocation size is not exposed
// through fs.FileInfo here
func fileSize(info fs.FileInfo, seen *sync.Map, apparent bool) int64 {
	return info.Size()
}
