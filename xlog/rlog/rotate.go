package rlog

// rotationEngine performs the close/shift/promote/compress/reopen sequence
// of a rollover. The re-check under lock belongs to the caller
// (Handler.maybeRotate) since it needs the active Policy, not just the
// filesystem.
type rotationEngine struct {
	cfg Config
}

func newRotationEngine(cfg Config) *rotationEngine {
	return &rotationEngine{cfg: cfg}
}

// rotate closes h's handle, shifts/promotes/compresses the backup set,
// and reopens a fresh active file. Any I/O error before reopen aborts the
// rotation and is reported as a *RotationError; h is left closed so the
// next emit's validate() reopens it.
func (e *rotationEngine) rotate(h *handleManager, onInternalError func(error)) error {
	if err := h.close(); err != nil {
		return &RotationError{Op: "close active handle", Err: err}
	}

	dir, base := e.cfg.backupBase()

	if err := shiftBackups(dir, base, e.cfg.BackupCount, e.cfg.Namer); err != nil {
		return &RotationError{Op: "shift backups", Err: err}
	}

	promoted, err := promote(e.cfg.Path, dir, base, e.cfg.BackupCount, e.cfg.Namer)
	if err != nil {
		return &RotationError{Op: "promote active file", Err: err}
	}

	if promoted != "" && e.cfg.UseGzip {
		if _, gzErr := compressInPlace(promoted, e.cfg.Owner, e.cfg.Chmod); gzErr != nil {
			// Compression failures are swallowed; the uncompressed
			// promoted file remains as evidence.
			if onInternalError != nil {
				onInternalError(&RotationError{Op: "compress backup", Err: gzErr})
			}
		}
	}

	if err := h.open(); err != nil {
		return &RotationError{Op: "reopen active file", Err: err}
	}
	return nil
}
