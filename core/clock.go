package core

import "time"

// Clock reports seconds elapsed since it was created. It is monotonic and
// is never paused or reset.
type Clock struct {
	start time.Time
	now   func() time.Time
}

func NewClock() *Clock {
	return NewClockWithSource(time.Now)
}

// NewClockWithSource lets tests drive time by hand.
func NewClockWithSource(now func() time.Time) *Clock {
	return &Clock{start: now(), now: now}
}

func (c *Clock) Elapsed() float64 {
	return c.now().Sub(c.start).Seconds()
}
