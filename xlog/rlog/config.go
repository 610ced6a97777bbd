package rlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/text/encoding"
)

// WriteMode controls how the first open of the active file behaves.
// Every reopen after the first (including every rotation) always appends.
type WriteMode int

const (
	ModeAppend WriteMode = iota
	ModeTruncate
)

// EncodingPolicy controls how characters unrepresentable in Config.Encoding
// are handled.
type EncodingPolicy int

const (
	// PolicyIgnore silently drops unmappable characters. Default.
	PolicyIgnore EncodingPolicy = iota
	// PolicyStrict aborts the write of the offending record.
	PolicyStrict
	// PolicyReplace substitutes the encoding's replacement character.
	PolicyReplace
)

// RotateUnit is the unit a Time-Rotator's Interval is measured in.
type RotateUnit int

const (
	UnitNone RotateUnit = iota
	UnitSeconds
	UnitMinutes
	UnitHours
	UnitDays
	UnitMidnight
	UnitWeekday0 // Sunday
	UnitWeekday1
	UnitWeekday2
	UnitWeekday3
	UnitWeekday4
	UnitWeekday5
	UnitWeekday6
)

// Owner is the (uid, gid) pair applied to newly created files on POSIX.
type Owner struct {
	UID int
	GID int
}

const (
	DefaultMaxFileSize = 256 * 1024 * 1024 // 256 MB
	DefaultMaxBufSize  = 4096              // 4 KB
	DefaultMaxBufAge   = 15 * time.Second
)

// Config holds the immutable configuration for a Handler. All fields are
// read once at New and never mutated afterward.
type Config struct {
	// Path is the absolute path to the active log file. Required.
	Path string

	// Mode governs the first open only; every later reopen appends.
	Mode WriteMode

	// MaxBytes is the size-rotation threshold. 0 disables size rotation.
	MaxBytes int64

	// BackupCount is how many historical files to retain. 0 means rotated
	// content is discarded rather than kept as path.1.
	BackupCount int

	// Encoding is the text encoding applied to records before they are
	// written. Nil means UTF-8 passthrough (the zero-cost default).
	Encoding encoding.Encoding

	// UnicodeErrorPolicy controls handling of unmappable characters.
	// Defaults to PolicyIgnore.
	UnicodeErrorPolicy EncodingPolicy

	// UseGzip compresses rotated files (except the just-promoted file's
	// uncompressed instant, which is compressed in place).
	UseGzip bool

	// Owner, if non-nil, is chowned onto newly created files (POSIX only).
	Owner *Owner

	// Chmod, if non-nil, is applied to newly created files (POSIX only).
	Chmod *os.FileMode

	// Umask, if non-nil, temporarily overrides the process umask while
	// creating files (POSIX only; a documented no-op on Windows).
	Umask *int

	// Delay defers the first open until the first Write.
	Delay bool

	// Terminator is appended after every record. Defaults to "\n" on POSIX
	// and "\r\n" on Windows (see defaultTerminator).
	Terminator []byte

	// Namer optionally rewrites a computed backup filename. Must be pure
	// and deterministic.
	Namer func(defaultName string) string

	// LockFileDirectory optionally places the lock sentinel outside the
	// log file's directory.
	LockFileDirectory string

	// KeepFileOpen keeps the log and lock handles open between emits. If
	// false, both are closed at the end of every Write.
	KeepFileOpen bool

	// When, Interval, UTC, AtTime configure the Time-Rotator. When ==
	// UnitNone disables time-based rotation.
	When     RotateUnit
	Interval int
	UTC      bool
	AtTime   time.Time

	// BufferSize/BufferAge enable the optional buffered-write extension
	// (SPEC_FULL.md §9). 0/0 disables buffering: every Write runs the full
	// protocol for that single record, matching the base spec exactly.
	BufferSize int
	BufferAge  time.Duration
}

// normalized returns a copy of cfg with defaults applied and validates it,
// returning a *ConfigurationError on any construction-time problem.
func (cfg Config) normalized() (Config, error) {
	out := cfg

	if out.Path == "" {
		return out, &ConfigurationError{Field: "Path", Reason: "must not be empty"}
	}
	if !filepath.IsAbs(out.Path) {
		return out, &ConfigurationError{Field: "Path", Reason: "must be absolute"}
	}
	if out.MaxBytes < 0 {
		return out, &ConfigurationError{Field: "MaxBytes", Reason: "must not be negative"}
	}
	if out.BackupCount < 0 {
		return out, &ConfigurationError{Field: "BackupCount", Reason: "must not be negative"}
	}
	if out.Interval < 0 {
		return out, &ConfigurationError{Field: "Interval", Reason: "must not be negative"}
	}
	if out.When != UnitNone && out.When != UnitMidnight && !isWeekdayUnit(out.When) && out.Interval == 0 {
		return out, &ConfigurationError{Field: "Interval", Reason: "must be > 0 for this When unit"}
	}
	if out.BufferSize < 0 {
		return out, &ConfigurationError{Field: "BufferSize", Reason: "must not be negative"}
	}

	if len(out.Terminator) == 0 {
		out.Terminator = defaultTerminator()
	}
	if dir := filepath.Dir(out.Path); dir != "." {
		if fi, err := os.Stat(dir); err != nil {
			return out, &ConfigurationError{Field: "Path", Reason: fmt.Sprintf("directory %q: %v", dir, err)}
		} else if !fi.IsDir() {
			return out, &ConfigurationError{Field: "Path", Reason: fmt.Sprintf("%q is not a directory", dir)}
		}
	}
	if out.LockFileDirectory != "" {
		if fi, err := os.Stat(out.LockFileDirectory); err != nil {
			return out, &ConfigurationError{Field: "LockFileDirectory", Reason: err.Error()}
		} else if !fi.IsDir() {
			return out, &ConfigurationError{Field: "LockFileDirectory", Reason: "not a directory"}
		}
	}

	return out, nil
}

func isWeekdayUnit(u RotateUnit) bool {
	return u >= UnitWeekday0 && u <= UnitWeekday6
}

// sentinelPath computes the lock sentinel's path: the full basename of
// Path (suffix kept) prefixed with the dotfile-hiding ".__" and followed
// by ".lock". "/dir/app.log" becomes "/dir/.__app.log.lock".
func (cfg Config) sentinelPath() string {
	base := filepath.Base(cfg.Path)
	name := ".__" + base + ".lock"
	dir := cfg.LockFileDirectory
	if dir == "" {
		dir = filepath.Dir(cfg.Path)
	}
	return filepath.Join(dir, name)
}

// backupBase returns the directory and basename backups are computed from.
func (cfg Config) backupBase() (dir, base string) {
	return filepath.Dir(cfg.Path), filepath.Base(cfg.Path)
}
