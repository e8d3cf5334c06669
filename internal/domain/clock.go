package domain

import "time"

// Clock supplies the current time. Services take a Clock instead of calling
// time.Now so date defaults and lead-time checks are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T. Test helper.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
