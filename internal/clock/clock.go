package clock

import "time"

type Clock interface {
	Now() time.Time
}

// RealClock reads wall time in a fixed location so "today" follows the club's
// timezone rather than the host's.
type RealClock struct {
	loc *time.Location
}

func NewRealClock(loc *time.Location) *RealClock {
	if loc == nil {
		loc = time.UTC
	}
	return &RealClock{loc: loc}
}

func (c *RealClock) Now() time.Time {
	return time.Now().In(c.loc)
}

type FakeClock struct {
	now time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
