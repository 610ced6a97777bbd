package rlog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHandleManagerOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h := newHandleManager(Config{Path: path, Mode: ModeAppend})

	if err := h.ensureOpen(); err != nil {
		t.Fatalf("ensureOpen: %v", err)
	}
	defer h.close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
}

func TestHandleManagerAppendsAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h := newHandleManager(Config{Path: path, Mode: ModeAppend})

	if err := h.write([]byte("first\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := h.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := h.write([]byte("second\n")); err != nil {
		t.Fatalf("write after reopen: %v", err)
	}
	if err := h.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "first\nsecond\n" {
		t.Fatalf("got %q, want %q", got, "first\nsecond\n")
	}
}

func TestHandleManagerTruncatesOnlyFirstOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte("stale contents"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	h := newHandleManager(Config{Path: path, Mode: ModeTruncate})
	if err := h.write([]byte("fresh\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := h.close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := h.write([]byte("more\n")); err != nil {
		t.Fatalf("write after reopen: %v", err)
	}
	if err := h.close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "fresh\nmore\n" {
		t.Fatalf("got %q, want %q (truncate should only apply to the first open)", got, "fresh\nmore\n")
	}
}

func TestHandleManagerValidateReopensAfterExternalRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h := newHandleManager(Config{Path: path, Mode: ModeAppend})

	if err := h.ensureOpen(); err != nil {
		t.Fatalf("ensureOpen: %v", err)
	}
	original := h.file

	// Simulate another process rotating: rename the active path away and
	// create a fresh file at the same path.
	if err := os.Rename(path, path+".1"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("recreate: %v", err)
	}

	if err := h.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if h.file == original {
		t.Fatalf("expected validate to reopen the handle after external rotation")
	}
	h.close()
}

func TestHandleManagerStatOnMissingPathIsZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h := newHandleManager(Config{Path: path})

	size, modTime, err := h.stat()
	if err != nil {
		t.Fatalf("stat of missing path should not error, got %v", err)
	}
	if size != 0 || !modTime.IsZero() {
		t.Fatalf("expected zero size/modTime, got size=%d modTime=%v", size, modTime)
	}
}
