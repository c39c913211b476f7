//go:build windows

package watcher

import (
	"encoding/binary"
	"path/filepath"
	"sync"
	"unicode/utf16"

	"golang.org/x/sys/windows"
)

const (
	notifyFilter = windows.FILE_NOTIFY_CHANGE_FILE_NAME | windows.FILE_NOTIFY_CHANGE_DIR_NAME
	bufferSize   = 64 * 1024

	fileActionRemoved        = 2
	fileActionRenamedOldName = 4

	// FILE_NOTIFY_INFORMATION header: NextEntryOffset, Action, FileNameLength
	notifyHeaderSize = 12
)

// Watcher watches for filesystem changes using ReadDirectoryChangesW
type Watcher struct {
	handle  windows.Handle
	root    string
	eventCh chan Event
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

// New creates an idle watcher; AddRecursive and Start arm it
func New() (*Watcher, error) {
	return &Watcher{
		eventCh: make(chan Event, 100),
		done:    make(chan struct{}),
	}, nil
}

// Events returns the channel deletions are delivered on. It is closed by
// Stop.
func (w *Watcher) Events() <-chan Event {
	return w.eventCh
}

// AddRecursive opens root for change notifications on its whole subtree
func (w *Watcher) AddRecursive(root string) error {
	w.root = root

	pathPtr, err := windows.UTF16PtrFromString(root)
	if err != nil {
		return err
	}

	handle, err := windows.CreateFile(
		pathPtr,
		windows.FILE_LIST_DIRECTORY,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OVERLAPPED,
		0,
	)
	if err != nil {
		return err
	}

	w.handle = handle
	return nil
}

// Start begins delivering events
func (w *Watcher) Start() {
	if w.handle == 0 {
		return
	}
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	buf := make([]byte, bufferSize)

	for {
		select {
		case <-w.done:
			return
		default:
		}

		var n uint32
		err := windows.ReadDirectoryChanges(w.handle, &buf[0], uint32(len(buf)), true, notifyFilter, &n, nil, 0)
		if err != nil {
			// The handle was closed by Stop
			return
		}
		for _, name := range removedNames(buf[:n]) {
			send(w.eventCh, Event{Type: EventDeleted, Path: filepath.Join(w.root, name)})
		}
	}
}

// removedNames decodes the FILE_NOTIFY_INFORMATION records in buf and
// returns the relative names of removed or renamed-away entries
func removedNames(buf []byte) []string {
	var names []string
	for len(buf) >= notifyHeaderSize {
		next := binary.LittleEndian.Uint32(buf[0:])
		action := binary.LittleEndian.Uint32(buf[4:])
		nameLen := int(binary.LittleEndian.Uint32(buf[8:]))

		if len(buf) >= notifyHeaderSize+nameLen &&
			(action == fileActionRemoved || action == fileActionRenamedOldName) {
			raw := buf[notifyHeaderSize : notifyHeaderSize+nameLen]
			units := make([]uint16, nameLen/2)
			for i := range units {
				units[i] = binary.LittleEndian.Uint16(raw[2*i:])
			}
			names = append(names, string(utf16.Decode(units)))
		}

		if next == 0 || int(next) > len(buf) {
			break
		}
		buf = buf[next:]
	}
	return names
}

// Stop closes the directory handle and the event channel
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	if w.handle != 0 {
		windows.CloseHandle(w.handle)
	}
	w.wg.Wait()
	close(w.eventCh)
	return nil
}
