//go:build !tinygo

package core

import "time"

// hostClock reads the OS monotonic clock.
type hostClock struct {
	start time.Time
}

// NewHostClock returns a Clock backed by the OS monotonic clock.
func NewHostClock() Clock {
	return &hostClock{start: time.Now()}
}

func (c *hostClock) Now() Ticks {
	return Ticks(time.Since(c.start).Microseconds())
}
