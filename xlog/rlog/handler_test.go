package rlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandlerWriteAppendsTerminatedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	if _, err := h.Write([]byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := h.Write([]byte("world")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "hello\nworld\n" {
		t.Fatalf("got %q, want %q", got, "hello\nworld\n")
	}
}

func TestHandlerRotatesWhenMaxBytesExceeded(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	h, err := New(Config{Path: path, MaxBytes: 10, BackupCount: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	if _, err := h.Write([]byte("0123456789")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := h.Write([]byte("more")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "app.log.1")); err != nil {
		t.Fatalf("expected a rotated backup, err=%v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read active: %v", err)
	}
	if strings.TrimSpace(string(got)) != "more" {
		t.Fatalf("active contents = %q, want %q", got, "more\n")
	}
}

func TestHandlerCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := h.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
}

func TestHandlerWriteAfterCloseFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := h.Write([]byte("too late")); err != ErrClosed {
		t.Fatalf("Write after close = %v, want ErrClosed", err)
	}
}

func TestHandlerDelayDefersFirstOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := New(Config{Path: path, Delay: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected active file to not exist before first Write, err=%v", err)
	}
	if _, err := h.Write([]byte("first")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected active file to exist after first Write, err=%v", err)
	}
}

func TestHandlerBufferedWriteFlushesOnOverflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := New(Config{Path: path, BufferSize: 8})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	if _, err := h.Write([]byte("abc")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Nothing should have hit disk yet: "abc\n" (4 bytes) fits the 8-byte
	// buffer alongside room for more.
	got, _ := os.ReadFile(path)
	if len(got) != 0 {
		t.Fatalf("expected buffered write to stay in memory, found %q on disk", got)
	}

	if _, err := h.Write([]byte("defgh")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := h.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	got, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "abc\ndefgh\n" {
		t.Fatalf("got %q, want %q", got, "abc\ndefgh\n")
	}
}

func TestHandlerForkDetectionResyncsPid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	// Simulate the process having forked: the recorded pid no longer
	// matches os.Getpid().
	h.pid = h.pid + 1

	if _, err := h.Write([]byte("post-fork")); err != nil {
		t.Fatalf("Write after simulated fork: %v", err)
	}
	if h.pid != os.Getpid() {
		t.Fatalf("expected checkFork to resync pid, got %d want %d", h.pid, os.Getpid())
	}
}

func TestHandlerForkDetectionReopensLockAndHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := New(Config{Path: path, KeepFileOpen: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	// With KeepFileOpen, the first write leaves both the lock sentinel
	// and the active file open across calls.
	if _, err := h.Write([]byte("pre-fork")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if h.lock.file == nil {
		t.Fatalf("expected lock sentinel to still be open before simulated fork")
	}
	if h.handle.file == nil {
		t.Fatalf("expected active file to still be open before simulated fork")
	}

	h.pid = h.pid + 1
	h.checkFork()

	if h.lock.file != nil {
		t.Fatalf("expected checkFork to close the lock handle on pid mismatch")
	}
	if h.handle.file != nil {
		t.Fatalf("expected checkFork to close the active file handle on pid mismatch")
	}

	if _, err := h.Write([]byte("post-fork")); err != nil {
		t.Fatalf("Write after simulated fork: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "pre-fork\npost-fork\n" {
		t.Fatalf("got %q, want %q", got, "pre-fork\npost-fork\n")
	}
}

func TestTwoHandlersSharingPathSerializeRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	h1, err := New(Config{Path: path, MaxBytes: 20, BackupCount: 3, KeepFileOpen: true})
	if err != nil {
		t.Fatalf("New h1: %v", err)
	}
	defer h1.Close()
	h2, err := New(Config{Path: path, MaxBytes: 20, BackupCount: 3, KeepFileOpen: true})
	if err != nil {
		t.Fatalf("New h2: %v", err)
	}
	defer h2.Close()

	for i := 0; i < 10; i++ {
		if _, err := h1.Write([]byte("from-h1-some-bytes")); err != nil {
			t.Fatalf("h1 write %d: %v", i, err)
		}
		if _, err := h2.Write([]byte("from-h2-some-bytes")); err != nil {
			t.Fatalf("h2 write %d: %v", i, err)
		}
	}

	// Both handlers must, at minimum, still be able to append without
	// corrupting each other's view of the active file (the identity
	// check forces a reopen whenever the other handler rotated it out
	// from under this one).
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected active file to still exist: %v", err)
	}
}

// TestHandlerReentrantWriteFromInternalErrorHook exercises reentrant
// Write against the real Handler, not just the bare mutex: it forces a
// rotation whose gzip step fails (the destination path is a dangling
// symlink into a missing directory), which fires OnInternalError from
// inside the Write->emit->maybeRotate->rotate call chain while h.mu is
// held. The hook itself calls h.Write, which must succeed rather than
// deadlock.
func TestHandlerReentrantWriteFromInternalErrorHook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	// app.log.1 is where promote() lands the rotated file; compressInPlace
	// then tries to create app.log.1.gz, which fails because that name is
	// a symlink into a directory that does not exist. shiftBackups stats
	// through the symlink, finds nothing, and leaves it in place.
	if err := os.Symlink(filepath.Join(dir, "missing", "app.log.1.gz"), filepath.Join(dir, "app.log.1.gz")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	// "0123456789\n" is exactly MaxBytes, so the first write does not rotate.
	h, err := New(Config{Path: path, MaxBytes: 11, BackupCount: 2, UseGzip: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	var hookCalls int
	h.OnInternalError(func(err error) {
		hookCalls++
		if _, werr := h.Write([]byte("nested")); werr != nil {
			t.Errorf("reentrant Write from hook: %v", werr)
		}
	})

	if _, err := h.Write([]byte("0123456789")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	// Exceeds MaxBytes, triggering the rotation whose gzip step fails.
	if _, err := h.Write([]byte("more")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	if hookCalls != 1 {
		t.Fatalf("expected OnInternalError to fire exactly once, got %d", hookCalls)
	}
	if _, err := os.Stat(filepath.Join(dir, "app.log.1")); err != nil {
		t.Fatalf("expected the rotated (uncompressed) backup to exist: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read active: %v", err)
	}
	if string(got) != "nested\nmore\n" {
		t.Fatalf("active contents = %q, want %q", got, "nested\nmore\n")
	}
}

func TestHandlerKeepFileOpenFalseClosesBetweenWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := New(Config{Path: path, KeepFileOpen: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer h.Close()

	if _, err := h.Write([]byte("one")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if h.handle.file != nil {
		t.Fatalf("expected handle to be closed between writes when KeepFileOpen is false")
	}
	if _, err := h.Write([]byte("two")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "one\ntwo\n" {
		t.Fatalf("got %q, want %q", got, "one\ntwo\n")
	}
}
