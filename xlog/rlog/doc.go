// Package rlog offers a multi-process-safe rotating log file writer.
//
// [Handler] implements [io.Writer] / [io.Closer] over a single active file
// that rotates by size, by time, or both, with optional gzip compression
// of retired backups. A cross-process advisory lock coordinates rotation
// between multiple processes appending to the same Path; an in-process
// reentrant mutex lets a single goroutine re-enter Write from inside a
// callback (e.g. a panic logger invoked from within its own write path)
// without deadlocking.
//
// [Handler] usage:
//
//	h, err := rlog.New(rlog.Config{
//	  Path:        "/var/log/app/app.log", // required, must be absolute
//	  MaxBytes:    512 << 20,               // 512 MB before rotation (optional)
//	  BackupCount: 10,                      // keep 10 rotated backups (optional)
//	  UseGzip:     true,                     // compress retired backups
//	})
//	if err != nil {
//	  log.Fatalf("rlog: %v", err)
//	}
//	defer h.Close()
//
//	log.SetOutput(h)
//	log.Println("hello, rotating world")
//
// Internals & caveats:
//   - Rotation deletes whatever sits at path.N (N being BackupCount),
//     shifts path.1..path.N-1 to path.2..path.N, promotes the active file
//     to path.1, compresses it if UseGzip is set, and reopens a fresh
//     active file.
//   - A lock sentinel file next to Path (".__<base>.lock", base being
//     Path's full basename) is held via flock on POSIX and LockFileEx
//     on Windows for the duration of each rotate-then-write sequence.
//   - Handler periodically re-validates that its open handle still
//     refers to Path via [os.SameFile], reopening if another process has
//     rotated the file out from under it.
package rlog
