package rlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLockerAcquireReleaseCycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".__app.lock")
	l := newLocker(path)
	defer l.close(nil)

	if err := l.acquire(true); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	l.release(nil)

	if err := l.acquire(true); err != nil {
		t.Fatalf("re-acquire after release: %v", err)
	}
	l.release(nil)

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat sentinel: %v", err)
	}
	if fi.Mode().Perm() != sentinelMode {
		t.Fatalf("sentinel mode = %v, want %v", fi.Mode().Perm(), os.FileMode(sentinelMode))
	}
}

func TestLockerEnsureOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".__app.lock")
	l := newLocker(path)
	defer l.close(nil)

	if err := l.ensureOpen(); err != nil {
		t.Fatalf("first ensureOpen: %v", err)
	}
	first := l.file
	if err := l.ensureOpen(); err != nil {
		t.Fatalf("second ensureOpen: %v", err)
	}
	if l.file != first {
		t.Fatalf("ensureOpen reopened an already-open sentinel handle")
	}
}

func TestLockerCloseReleasesBeforeClosing(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".__app.lock")
	l := newLocker(path)

	if err := l.acquire(true); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	l.close(nil)

	if l.file != nil {
		t.Fatalf("expected file handle to be nil after close")
	}
	if l.locked {
		t.Fatalf("expected locked to be false after close")
	}
}
