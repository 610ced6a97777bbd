package rlog

import "os"

// sentinelMode is the lock sentinel's fixed permission: group read/write to
// permit multi-user setups. It is applied explicitly after open so that an
// active process umask can never narrow it (SPEC_FULL.md §4.1).
const sentinelMode = 0o664

// locker owns the sentinel file handle and tracks whether this process
// currently holds the OS-level lock on it.
type locker struct {
	path   string
	file   *os.File
	locked bool
}

func newLocker(path string) *locker {
	return &locker{path: path}
}

func (l *locker) ensureOpen() error {
	if l.file != nil {
		return nil
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, sentinelMode)
	if err != nil {
		return &IoError{Op: "open lock sentinel", Path: l.path, Err: err}
	}
	if err := f.Chmod(sentinelMode); err != nil {
		f.Close()
		return &IoError{Op: "chmod lock sentinel", Path: l.path, Err: err}
	}
	l.file = f
	return nil
}

// acquire takes the exclusive lock, blocking indefinitely unless blocking
// is false, in which case a held lock returns *LockAcquisitionFailed
// immediately (used by Inspect's lock probe, never by the public Write
// path).
func (l *locker) acquire(blocking bool) error {
	if err := l.ensureOpen(); err != nil {
		return err
	}
	if err := platformLock(l.file, blocking); err != nil {
		if !blocking {
			return &LockAcquisitionFailed{Err: err}
		}
		return &IoError{Op: "lock", Path: l.path, Err: err}
	}
	l.locked = true
	return nil
}

// release never propagates an error to the caller; a failure here means
// the handle was closed underneath, which is logged via onErr (may be
// nil) and otherwise swallowed per SPEC_FULL.md §4.1.
func (l *locker) release(onErr func(error)) {
	if l.file == nil || !l.locked {
		return
	}
	if err := platformUnlock(l.file); err != nil && onErr != nil {
		onErr(&IoError{Op: "unlock", Path: l.path, Err: err})
	}
	l.locked = false
}

// close releases (if held) and closes the sentinel handle.
func (l *locker) close(onErr func(error)) {
	l.release(onErr)
	if l.file != nil {
		if err := l.file.Close(); err != nil && onErr != nil {
			onErr(&IoError{Op: "close lock sentinel", Path: l.path, Err: err})
		}
		l.file = nil
	}
}
