package rlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// BackupInfo describes one rotated backup file found alongside an active
// log path.
type BackupInfo struct {
	Index     int
	Path      string
	Gzip      bool
	SizeBytes int64
}

// ListBackups scans dir for files named base.N and base.N.gz, returning
// them ordered by index ascending. It does not require a live Handler,
// so it works as a diagnostic against a log directory owned by another
// process.
func ListBackups(path string) ([]BackupInfo, error) {
	dir, base := filepath.Dir(path), filepath.Base(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &IoError{Op: "readdir", Path: dir, Err: err}
	}

	var out []BackupInfo
	prefix := base + "."
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		rest := strings.TrimPrefix(e.Name(), prefix)
		gz := strings.HasSuffix(rest, ".gz")
		rest = strings.TrimSuffix(rest, ".gz")
		idx, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, &IoError{Op: "stat", Path: e.Name(), Err: err}
		}
		out = append(out, BackupInfo{
			Index:     idx,
			Path:      filepath.Join(dir, e.Name()),
			Gzip:      gz,
			SizeBytes: info.Size(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// Status summarizes the on-disk state of a log path without opening it
// through a Handler.
type Status struct {
	Path         string
	Exists       bool
	SizeBytes    int64
	SentinelPath string
	Locked       bool
}

// Inspect reports whether path exists, its size, and whether the
// associated lock sentinel is currently held by some process. Inspect
// never blocks: it uses a non-blocking lock probe and immediately
// releases the lock if it acquires it. The probe creates the sentinel
// file if it does not exist yet.
func Inspect(path string) (Status, error) {
	st := Status{Path: path}

	fi, err := os.Stat(path)
	switch {
	case err == nil:
		st.Exists = true
		st.SizeBytes = fi.Size()
	case os.IsNotExist(err):
	default:
		return st, &IoError{Op: "stat", Path: path, Err: err}
	}

	cfg, cfgErr := Config{Path: path}.normalized()
	if cfgErr != nil {
		return st, cfgErr
	}
	st.SentinelPath = cfg.sentinelPath()

	l := newLocker(st.SentinelPath)
	defer l.close(nil)

	if err := l.acquire(false); err != nil {
		if _, ok := err.(*LockAcquisitionFailed); ok {
			st.Locked = true
			return st, nil
		}
		return st, err
	}
	l.release(nil)
	return st, nil
}

func (s Status) String() string {
	return fmt.Sprintf("%s: exists=%v size=%dB locked=%v sentinel=%s",
		s.Path, s.Exists, s.SizeBytes, s.Locked, s.SentinelPath)
}
