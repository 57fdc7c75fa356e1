package core

// TickRate is the resolution of the motion clock in ticks per second.
// One tick is one microsecond, which comfortably resolves step intervals
// down to the ~100kHz step rates this class of hardware can reach.
const TickRate = 1000000

// Ticks is a monotonic timestamp in motion-clock ticks.
type Ticks uint64

// Clock supplies the monotonic time base used for step pacing.
// The host build reads the OS monotonic clock, the TinyGo build reads the
// hardware timer, and tests drive a SimClock by hand.
type Clock interface {
	Now() Ticks
}

// TicksFromUS converts microseconds to ticks.
func TicksFromUS(us uint64) Ticks {
	return Ticks(us * TickRate / 1000000)
}

// SecondsToTicks converts a duration in seconds to ticks.
func SecondsToTicks(s float64) Ticks {
	return Ticks(s * TickRate)
}
