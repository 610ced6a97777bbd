package rlog

import (
	"os"
	"time"
)

type noCopy struct{} // see https://github.com/golang/go/issues/8005#issuecomment-190753527

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Handler is the Emitter described by the package: a single [io.Writer] /
// [io.Closer] that rotates, compresses, and coordinates with other
// processes writing the same Path. A single Handler should be used per
// Path per process; multiple processes may safely share the same Path.
type Handler struct {
	noCopy noCopy
	mu     reentrantMutex

	cfg    Config
	err    error
	closed bool

	handle *handleManager
	lock   *locker
	policy Policy
	engine *rotationEngine

	buf             []byte
	bufFlushAt      time.Time
	closeAgeTrigger chan struct{}

	pid int

	onInternalError func(error)
}

// New validates cfg and returns a ready-to-write Handler. If cfg.Delay is
// set, the active file is not opened until the first [Handler.Write].
func New(cfg Config) (*Handler, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		cfg:    cfg,
		handle: newHandleManager(cfg),
		lock:   newLocker(cfg.sentinelPath()),
		engine: newRotationEngine(cfg),
		pid:    os.Getpid(),
	}
	h.policy = buildPolicy(cfg)

	if cfg.BufferSize > 0 {
		h.buf = make([]byte, 0, cfg.BufferSize)
		h.bufFlushAt = time.Now()
	}

	if !cfg.Delay {
		if err := h.handle.ensureOpen(); err != nil {
			return nil, err
		}
	}

	if cfg.BufferAge > 0 {
		h.closeAgeTrigger = make(chan struct{})
		go h.runAgeTrigger(cfg.BufferAge)
	}

	return h, nil
}

// OnInternalError registers a callback invoked for errors that Write
// cannot itself surface without corrupting its return contract: a
// failed lock release, a failed backup compression. It is never called
// concurrently with itself.
func (h *Handler) OnInternalError(fn func(error)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onInternalError = fn
}

func (h *Handler) reportInternal(err error) {
	if h.onInternalError != nil {
		h.onInternalError(err)
	}
}

// Write acquires the reentrant in-process lock, then the cross-process
// file lock, validates the held file handle's identity, consults the
// rotation policy, rotates if due, writes and flushes the record,
// optionally closes the log and lock handles, then releases both locks, in
// that order, even on error.
func (h *Handler) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, ErrClosed
	}

	h.checkFork()

	record, err := encodeRecord(h.cfg, p)
	if err != nil {
		if h.cfg.UnicodeErrorPolicy == PolicyStrict {
			return 0, err
		}
		h.err = err
		return 0, err
	}
	if len(h.cfg.Terminator) > 0 {
		record = append(record, h.cfg.Terminator...)
	}

	if h.buf != nil {
		if err := h.bufferedWrite(record); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	if err := h.emit(record); err != nil {
		h.err = err
		return 0, err
	}
	return len(p), nil
}

// emit performs the locked rotate-then-write sequence for a single
// already-encoded record. Caller holds h.mu.
func (h *Handler) emit(record []byte) error {
	if err := h.lock.acquire(true); err != nil {
		return err
	}
	defer h.lock.release(h.reportInternal)

	if err := h.handle.ensureOpen(); err != nil {
		return err
	}
	if err := h.handle.validate(); err != nil {
		return err
	}

	if err := h.maybeRotate(len(record)); err != nil {
		return err
	}

	if err := h.handle.write(record); err != nil {
		return err
	}
	if err := h.handle.flush(); err != nil {
		return err
	}

	if !h.cfg.KeepFileOpen {
		if err := h.handle.close(); err != nil {
			return err
		}
		h.lock.close(h.reportInternal)
	}
	return nil
}

// maybeRotate re-checks the policy under the held lock and performs the
// rotation if still due. Another process may have already rotated
// between the caller's optimistic check, if any, and the lock
// acquisition.
func (h *Handler) maybeRotate(recordLen int) error {
	size, modTime, err := h.handle.stat()
	if err != nil {
		return err
	}
	st := Stat{Size: size, ModTime: modTime, RecordLen: recordLen, Now: time.Now()}
	if h.cfg.UTC {
		st.Now = st.Now.UTC()
	}
	if !h.policy.ShouldRollover(st) {
		return nil
	}
	if err := h.engine.rotate(h.handle, h.reportInternal); err != nil {
		return err
	}
	h.policy.Advance(st.Now)
	return nil
}

// bufferedWrite appends record to the in-memory buffer, flushing first
// if it would overflow, routed through the locked emit path rather than
// a bare file write.
func (h *Handler) bufferedWrite(record []byte) error {
	if len(h.buf)+len(record) > cap(h.buf) {
		if err := h.flushBuffer(); err != nil {
			h.err = err
			return err
		}
	}
	if len(record) >= cap(h.buf) {
		if err := h.emit(record); err != nil {
			h.err = err
			return err
		}
		return nil
	}
	h.buf = append(h.buf, record...)
	return nil
}

func (h *Handler) flushBuffer() error {
	if len(h.buf) == 0 {
		return nil
	}
	if err := h.emit(h.buf); err != nil {
		return err
	}
	h.buf = h.buf[:0]
	h.bufFlushAt = time.Now()
	return nil
}

// Flush forces any buffered bytes to disk. A no-op when BufferSize is
// unset, since every Write is already unbuffered in that mode.
func (h *Handler) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || h.buf == nil {
		return h.err
	}
	return h.flushBuffer()
}

// Error returns the last error recorded by Write or Flush.
func (h *Handler) Error() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Close flushes any buffered data, stops the age-flush goroutine, and
// releases the held file handle. It does not remove the cross-process
// lock sentinel file.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true

	if h.closeAgeTrigger != nil {
		close(h.closeAgeTrigger)
		h.closeAgeTrigger = nil
	}

	var flushErr error
	if h.buf != nil {
		flushErr = h.flushBuffer()
	}
	closeErr := h.handle.close()
	h.lock.close(h.reportInternal)

	switch {
	case flushErr != nil:
		return flushErr
	case closeErr != nil:
		return closeErr
	default:
		return nil
	}
}

// checkFork resets process-local state after a fork: a child inherits the
// parent's open fd and in-memory buffer, but must not share the parent's
// notion of "already flushed this buffer" bookkeeping tied to timers. It
// also closes the lock and log handles so the next acquire/ensureOpen
// opens a fresh file description in the child. flock locks are tied to
// the open file description, which fork shares between parent and child,
// so reusing the parent's still-open descriptor would let the child's
// acquire succeed on the lock the parent already holds instead of
// genuinely excluding the parent.
func (h *Handler) checkFork() {
	pid := os.Getpid()
	if pid == h.pid {
		return
	}
	h.pid = pid
	h.bufFlushAt = time.Now()
	h.lock.close(h.reportInternal)
	if err := h.handle.close(); err != nil {
		h.reportInternal(err)
	}
}

func (h *Handler) runAgeTrigger(d time.Duration) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := h.Flush(); err != nil {
				return
			}
		case <-h.closeAgeTrigger:
			return
		}
	}
}
