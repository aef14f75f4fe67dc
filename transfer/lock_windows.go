//go:build windows
// +build windows

package transfer

import (
	"os"

	"golang.org/x/sys/windows"
)

// TryExclusiveLock takes a non-blocking lock on the first byte range of the
// file, which is enough to keep two downloads from sharing a target.
func TryExclusiveLock(file *os.File) bool {
	if file == nil {
		return false
	}
	h := windows.Handle(file.Fd())
	ol := new(windows.Overlapped)
	const flags = windows.LOCKFILE_EXCLUSIVE_LOCK | windows.LOCKFILE_FAIL_IMMEDIATELY
	return windows.LockFileEx(h, flags, 0, 1, 0, ol) == nil
}

// UnlockFile releases a lock taken by TryExclusiveLock.
func UnlockFile(file *os.File) {
	if file == nil {
		return
	}
	h := windows.Handle(file.Fd())
	ol := new(windows.Overlapped)
	_ = windows.UnlockFileEx(h, 0, 1, 0, ol)
}
