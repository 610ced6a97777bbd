//go:build !windows

package rlog

import "os"

func applyOwner(path string, owner *Owner) error {
	if owner == nil {
		return nil
	}
	return os.Chown(path, owner.UID, owner.GID)
}
