//go:build !windows

package scanner

import (
	"io/fs"
	"sync"
	"syscall"
)

// rootDevice identifies the filesystem the scan started on
type rootDevice struct {
	dev uint64
}

func statRootDevice(path string) rootDevice {
	var stat syscall.Stat_t
	if err := syscall.Stat(path, &stat); err != nil {
		return rootDevice{}
	}
	return rootDevice{dev: uint64(stat.Dev)}
}

// shouldSkipDir reports directories on other filesystems and already
// visited inodes (firmlinks on macOS)
func shouldSkipDir(d fs.DirEntry, root rootDevice, seen *sync.Map) bool {
	info, err := d.Info()
	if err != nil {
		return false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}

	if uint64(stat.Dev) != root.dev {
		return true
	}

	if _, exists := seen.LoadOrStore(stat.Ino, true); exists {
		return true
	}
	return false
}

// fileSize returns the size to account for a file, or -1 for a hard link
// already counted
func fileSize(info fs.FileInfo, seen *sync.Map, apparent bool) int64 {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.Size()
	}

	if stat.Nlink > 1 {
		if _, exists := seen.LoadOrStore(stat.Ino, true); exists {
			return -1
		}
	}

	if apparent {
		return info.Size()
	}
	// Blocks is in 512-byte units
	return stat.Blocks * 512
}
