// Limit sensor handling.
// The sensors on this machine are active-low: a triggered switch pulls
// the line to ground. Reads are never cached; Triggered is a pure
// function of the electrical state at the time of the call.
package core

// Endstop represents one axis limit sensor.
type Endstop struct {
	in *DigitalIn

	// invert flips the trigger level for active-high wiring.
	invert bool

	// sampleCount > 1 requires that many consecutive matching reads
	// before a trigger is reported, filtering switch bounce during
	// homing. The default of 1 keeps Triggered a raw read.
	sampleCount uint8
}

// NewEndstop claims the sensor pin (input, pull-up).
func NewEndstop(driver GPIODriver, pin GPIOPin, invert bool, sampleCount uint8) (*Endstop, error) {
	in, err := NewDigitalIn(driver, pin)
	if err != nil {
		return nil, err
	}
	if sampleCount == 0 {
		sampleCount = 1
	}
	return &Endstop{in: in, invert: invert, sampleCount: sampleCount}, nil
}

// Triggered reads the sensor once. Active-low unless inverted.
func (e *Endstop) Triggered() bool {
	level := e.in.Read()
	triggered := !level
	if e.invert {
		triggered = level
	}
	return triggered
}

// TriggeredDebounced reads the sensor sampleCount times and reports a
// trigger only if every sample agrees. Used by the homing supervisor.
func (e *Endstop) TriggeredDebounced() bool {
	for i := uint8(0); i < e.sampleCount; i++ {
		if !e.Triggered() {
			return false
		}
	}
	return true
}

// Pin returns the sensor's hardware pin.
func (e *Endstop) Pin() GPIOPin {
	return e.in.Pin()
}
