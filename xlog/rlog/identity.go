package rlog

import "os"

// sameFile reports whether path still refers to the same on-disk entry
// that fi was stat'd from. os.SameFile compares dev+inode on POSIX and
// the file-index triple on Windows, so no per-platform code is needed
// beyond this.
func sameFile(fi os.FileInfo, path string) bool {
	other, err := os.Stat(path)
	if err != nil {
		return false
	}
	return os.SameFile(fi, other)
}
