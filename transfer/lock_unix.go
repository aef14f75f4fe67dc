//go:build !windows
// +build !windows

package transfer

import (
	"os"
	"syscall"
)

// TryExclusiveLock takes a non-blocking advisory lock on the whole file.
func TryExclusiveLock(file *os.File) bool {
	if file == nil {
		return false
	}
	return syscall.Flock(int(file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB) == nil
}

// UnlockFile releases a lock taken by TryExclusiveLock.
func UnlockFile(file *os.File) {
	if file == nil {
		return
	}
	_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
}
