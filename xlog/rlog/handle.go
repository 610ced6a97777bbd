package rlog

import (
	"os"
	"time"
)

// handleManager owns the active log file descriptor: opening, caching,
// validating, and closing it, and detecting staleness via the identity
// check in identity.go.
type handleManager struct {
	cfg       Config
	file      *os.File
	openedYet bool // true once the very first open has completed
	createdAt time.Time
}

func newHandleManager(cfg Config) *handleManager {
	return &handleManager{cfg: cfg}
}

// ensureOpen opens the file if it is not already open. The first ever open
// honors cfg.Mode (truncate vs. append); every later open always appends.
func (h *handleManager) ensureOpen() error {
	if h.file != nil {
		return nil
	}
	return h.open()
}

func (h *handleManager) open() error {
	existed := true
	if _, err := os.Stat(h.cfg.Path); err != nil {
		if os.IsNotExist(err) {
			existed = false
		} else {
			return &IoError{Op: "stat", Path: h.cfg.Path, Err: err}
		}
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !h.openedYet && h.cfg.Mode == ModeTruncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}

	mode := os.FileMode(0o644)
	if h.cfg.Chmod != nil {
		mode = *h.cfg.Chmod
	}

	var f *os.File
	err := withUmask(h.cfg.Umask, func() error {
		var openErr error
		f, openErr = os.OpenFile(h.cfg.Path, flags, mode)
		return openErr
	})
	if err != nil {
		return &IoError{Op: "open", Path: h.cfg.Path, Err: err}
	}

	if !existed {
		if h.cfg.Chmod != nil {
			if err := f.Chmod(*h.cfg.Chmod); err != nil {
				f.Close()
				return &IoError{Op: "chmod", Path: h.cfg.Path, Err: err}
			}
		}
		if h.cfg.Owner != nil {
			if err := applyOwner(h.cfg.Path, h.cfg.Owner); err != nil {
				f.Close()
				return &IoError{Op: "chown", Path: h.cfg.Path, Err: err}
			}
		}
	}

	h.file = f
	h.openedYet = true
	h.createdAt = time.Now()
	return nil
}

// validate re-stats Path and, if the currently held handle no longer
// refers to the same on-disk entry (another writer rotated the file while
// this handle was held open), closes the stale handle and opens fresh.
func (h *handleManager) validate() error {
	if h.file == nil {
		return h.ensureOpen()
	}
	fi, err := h.file.Stat()
	if err != nil {
		// The held descriptor itself is unusable; drop it and reopen.
		h.file.Close()
		h.file = nil
		return h.open()
	}
	if !sameFile(fi, h.cfg.Path) {
		h.file.Close()
		h.file = nil
		return h.open()
	}
	return nil
}

// stat returns the size and mtime of the active file as currently known to
// this process: the open handle's stat if held, otherwise a fresh stat of
// Path. Using stat rather than an in-memory accumulator keeps size checks
// correct across external file replacement.
func (h *handleManager) stat() (size int64, modTime time.Time, err error) {
	if h.file != nil {
		fi, statErr := h.file.Stat()
		if statErr != nil {
			return 0, time.Time{}, &IoError{Op: "stat", Path: h.cfg.Path, Err: statErr}
		}
		return fi.Size(), fi.ModTime(), nil
	}
	fi, statErr := os.Stat(h.cfg.Path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return 0, time.Time{}, nil
		}
		return 0, time.Time{}, &IoError{Op: "stat", Path: h.cfg.Path, Err: statErr}
	}
	return fi.Size(), fi.ModTime(), nil
}

func (h *handleManager) write(p []byte) error {
	if err := h.ensureOpen(); err != nil {
		return err
	}
	if _, err := h.file.Write(p); err != nil {
		return &IoError{Op: "write", Path: h.cfg.Path, Err: err}
	}
	return nil
}

// flush calls Sync on the handle, which asks the OS to commit the written
// bytes to stable storage (fsync).
func (h *handleManager) flush() error {
	if h.file == nil {
		return nil
	}
	if err := h.file.Sync(); err != nil {
		return &IoError{Op: "sync", Path: h.cfg.Path, Err: err}
	}
	return nil
}

func (h *handleManager) close() error {
	if h.file == nil {
		return nil
	}
	err := h.file.Close()
	h.file = nil
	if err != nil {
		return &IoError{Op: "close", Path: h.cfg.Path, Err: err}
	}
	return nil
}
