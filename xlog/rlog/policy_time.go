package rlog

import (
	"os"
	"strings"
	"time"
)

// TimePolicy maintains an absolute nextRolloverAt boundary and,
// optionally, an embedded SizePolicy for the combined-with-size case.
//
// Cross-process coordination is done with a sidecar state file rather
// than trusting the active file's mtime, which changes on every ordinary
// write, not just on rotation, and so cannot by itself signal that
// another writer already rotated.
type TimePolicy struct {
	cfg         Config
	size        Policy
	sidecarPath string

	lastRolloverAt time.Time
	nextRolloverAt time.Time
}

func newTimePolicy(cfg Config, size Policy) *TimePolicy {
	p := &TimePolicy{
		cfg:         cfg,
		size:        size,
		sidecarPath: cfg.Path + ".rotated-at",
	}
	last := p.readSidecar()
	if last.IsZero() {
		last = p.now()
	}
	p.lastRolloverAt = last
	p.nextRolloverAt = p.computeNext(last)
	return p
}

func (p *TimePolicy) now() time.Time {
	if p.cfg.UTC {
		return time.Now().UTC()
	}
	return time.Now()
}

func (p *TimePolicy) loc() *time.Location {
	if p.cfg.UTC {
		return time.UTC
	}
	return time.Local
}

func (p *TimePolicy) readSidecar() time.Time {
	data, err := os.ReadFile(p.sidecarPath)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (p *TimePolicy) writeSidecar(t time.Time) {
	// Best-effort: if this write fails, other writers' re-check cannot
	// see this rotation and falls back to their own in-memory
	// nextRolloverAt, so another writer may rotate the freshly reopened
	// file a second time for the same boundary.
	_ = os.WriteFile(p.sidecarPath, []byte(t.Format(time.RFC3339Nano)), 0o644)
}

func (p *TimePolicy) ShouldRollover(st Stat) bool {
	now := st.Now
	if now.IsZero() {
		now = p.now()
	}

	if other := p.readSidecar(); other.After(p.lastRolloverAt) {
		p.lastRolloverAt = other
		p.nextRolloverAt = p.computeNext(other)
	}

	if !now.Before(p.nextRolloverAt) {
		return true
	}
	if p.size != nil {
		return p.size.ShouldRollover(st)
	}
	return false
}

func (p *TimePolicy) Advance(now time.Time) {
	p.lastRolloverAt = now
	p.nextRolloverAt = p.computeNext(now)
	p.writeSidecar(now)
	if p.size != nil {
		p.size.Advance(now)
	}
}

func (p *TimePolicy) computeNext(from time.Time) time.Time {
	loc := p.loc()
	from = from.In(loc)
	h, m, s := p.atTimeParts()

	switch p.cfg.When {
	case UnitSeconds:
		return from.Add(time.Duration(p.cfg.Interval) * time.Second)
	case UnitMinutes:
		return from.Add(time.Duration(p.cfg.Interval) * time.Minute)
	case UnitHours:
		return from.Add(time.Duration(p.cfg.Interval) * time.Hour)
	case UnitDays:
		return from.Add(time.Duration(p.cfg.Interval) * 24 * time.Hour)
	case UnitMidnight:
		return nextBoundary(from, -1, h, m, s, loc)
	default:
		if isWeekdayUnit(p.cfg.When) {
			return nextBoundary(from, int(p.cfg.When-UnitWeekday0), h, m, s, loc)
		}
	}
	return from.Add(24 * time.Hour)
}

func (p *TimePolicy) atTimeParts() (h, m, s int) {
	if p.cfg.AtTime.IsZero() {
		return 0, 0, 0
	}
	return p.cfg.AtTime.Hour(), p.cfg.AtTime.Minute(), p.cfg.AtTime.Second()
}

// nextBoundary returns the next instant strictly after from at wall-clock
// h:m:s. If weekday is >= 0 (0 = Sunday), the result additionally lands on
// that weekday.
func nextBoundary(from time.Time, weekday, h, m, s int, loc *time.Location) time.Time {
	candidate := time.Date(from.Year(), from.Month(), from.Day(), h, m, s, 0, loc)
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	if weekday >= 0 {
		for int(candidate.Weekday()) != weekday {
			candidate = candidate.AddDate(0, 0, 1)
		}
	}
	return candidate
}
