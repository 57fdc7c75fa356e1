//go:build tinygo

package core

import "time"

// tinygoClock reads the platform tick counter. TinyGo's time.Now is backed
// by the hardware timer on all supported targets, so the same code serves
// rp2040 and rp2350.
type tinygoClock struct {
	start time.Time
}

// NewHostClock returns a Clock backed by the hardware timer.
func NewHostClock() Clock {
	return &tinygoClock{start: time.Now()}
}

func (c *tinygoClock) Now() Ticks {
	return Ticks(time.Since(c.start).Microseconds())
}
