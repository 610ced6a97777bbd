package rlog

import "time"

// Stat is the information a Policy needs to decide whether a rollover is
// due, without reaching back into the Handler.
type Stat struct {
	Size      int64
	ModTime   time.Time
	RecordLen int
	Now       time.Time
}

// Policy decides when a rollover is due.
type Policy interface {
	// ShouldRollover reports whether a rollover is due for the given
	// snapshot. It may also be called a second time, under the lock, to
	// re-check a decision made before the lock was acquired;
	// implementations that track cross-process state (TimePolicy) use
	// this second call to resynchronize.
	ShouldRollover(st Stat) bool
	// Advance is called after a successful rotation so the policy can
	// move its internal state (e.g. next boundary) forward.
	Advance(now time.Time)
}

// noPolicy never triggers a rollover. Used when neither MaxBytes nor When
// is configured.
type noPolicy struct{}

func (noPolicy) ShouldRollover(Stat) bool { return false }
func (noPolicy) Advance(time.Time)        {}

// buildPolicy assembles the configured Policy from cfg. A time-based
// When can be combined with a MaxBytes size cap on the same Handler.
func buildPolicy(cfg Config) Policy {
	var size Policy
	if cfg.MaxBytes > 0 {
		size = &SizePolicy{MaxBytes: cfg.MaxBytes}
	}
	if cfg.When == UnitNone {
		if size != nil {
			return size
		}
		return noPolicy{}
	}
	return newTimePolicy(cfg, size)
}
