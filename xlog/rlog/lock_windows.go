//go:build windows

package rlog

import (
	"os"

	"golang.org/x/sys/windows"
)

// platformLock takes a mandatory byte-range lock at offset 0, length 1, of
// the sentinel file.
func platformLock(f *os.File, blocking bool) error {
	h := windows.Handle(f.Fd())
	flags := uint32(windows.LOCKFILE_EXCLUSIVE_LOCK)
	if !blocking {
		flags |= windows.LOCKFILE_FAIL_IMMEDIATELY
	}
	return windows.LockFileEx(h, flags, 0, 1, 0, new(windows.Overlapped))
}

func platformUnlock(f *os.File) error {
	h := windows.Handle(f.Fd())
	return windows.UnlockFileEx(h, 0, 1, 0, new(windows.Overlapped))
}
