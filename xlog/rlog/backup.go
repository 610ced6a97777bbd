package rlog

import (
	"fmt"
	"os"
	"path/filepath"
)

// backupName returns the default name for backup index n (1-based), with
// ".gz" appended when gz is true, run through namer if one is configured.
func backupName(dir, base string, n int, gz bool, namer Namer) string {
	name := fmt.Sprintf("%s.%d", base, n)
	if gz {
		name += ".gz"
	}
	if namer != nil {
		name = namer(name)
	}
	return filepath.Join(dir, name)
}

// shiftBackups enumerates existing path.i (and path.i.gz) for i from
// backupCount-1 down to 1 and renames each to index i+1, having first
// deleted whatever already sits at index backupCount.
func shiftBackups(dir, base string, backupCount int, namer Namer) error {
	if backupCount <= 0 {
		return nil
	}
	for _, gz := range [2]bool{false, true} {
		if err := removeIfExists(backupName(dir, base, backupCount, gz, namer)); err != nil {
			return err
		}
	}
	for i := backupCount - 1; i >= 1; i-- {
		for _, gz := range [2]bool{false, true} {
			src := backupName(dir, base, i, gz, namer)
			dst := backupName(dir, base, i+1, gz, namer)
			if err := renameIfExists(src, dst); err != nil {
				return err
			}
		}
	}
	return nil
}

// promote renames the active file to backup index 1, or deletes it
// outright when backupCount == 0. A missing active file, because a
// racing writer already rotated it away, is treated as a no-op.
func promote(activePath, dir, base string, backupCount int, namer Namer) (promotedPath string, err error) {
	if backupCount <= 0 {
		if err := removeIfExists(activePath); err != nil {
			return "", err
		}
		return "", nil
	}
	dst := backupName(dir, base, 1, false, namer)
	if err := removeIfExists(dst); err != nil {
		return "", err
	}
	if _, statErr := os.Stat(activePath); os.IsNotExist(statErr) {
		return "", nil
	}
	if err := os.Rename(activePath, dst); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return dst, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func renameIfExists(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := removeIfExists(dst); err != nil {
		return err
	}
	return os.Rename(src, dst)
}
