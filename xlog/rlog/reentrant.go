package rlog

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// reentrantMutex is a mutex that may be re-acquired by the goroutine that
// currently holds it without deadlocking. It exists solely to guard
// Handler.Write against the reentrant-emit scenario in SPEC_FULL.md §4.6:
// a caller-supplied hook invoked while the lock is held may itself trigger
// a nested Write on the same goroutine. A second goroutine attempting to
// acquire the mutex still blocks normally.
//
// This is not a general-purpose recursive lock; goroutine ids are not a
// supported public Go concept and reading one via runtime.Stack is a
// narrow, well-known trick used only for this one invariant.
type reentrantMutex struct {
	mu    sync.Mutex
	guard sync.Mutex
	owner int64
	depth int
}

func (m *reentrantMutex) Lock() {
	id := currentGoroutineID()

	m.guard.Lock()
	if m.depth > 0 && m.owner == id {
		m.depth++
		m.guard.Unlock()
		return
	}
	m.guard.Unlock()

	m.mu.Lock()

	m.guard.Lock()
	m.owner = id
	m.depth = 1
	m.guard.Unlock()
}

func (m *reentrantMutex) Unlock() {
	m.guard.Lock()
	m.depth--
	done := m.depth == 0
	m.guard.Unlock()

	if done {
		m.mu.Unlock()
	}
}

// currentGoroutineID extracts the numeric id from the calling goroutine's
// stack header ("goroutine 123 [running]:").
func currentGoroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if idx := bytes.IndexByte(b, ' '); idx >= 0 {
		b = b[:idx]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return -1
	}
	return id
}
