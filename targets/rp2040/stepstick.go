//go:build rp2040 || rp2350

package main

import (
	"fmt"

	"gantry/core"
)

// stepstickBackend models the plug-in StepStick driver modules on the
// CNC shield (A4988/DRV8825). Run current on these modules is set by a
// trimpot, so ApplyCurrent only records the requested limit. Modules
// with an nFAULT output can report faults through an active-low pin.
type stepstickBackend struct {
	name      string
	fault     *core.DigitalIn // nil when the module has no nFAULT output
	currentMA uint16
}

func newStepstickBackend(gpio core.GPIODriver, name string, faultPin core.GPIOPin, hasFault bool) (*stepstickBackend, error) {
	b := &stepstickBackend{name: name}
	if hasFault {
		in, err := core.NewDigitalIn(gpio, faultPin)
		if err != nil {
			return nil, err
		}
		b.fault = in
	}
	return b, nil
}

// ApplyCurrent records the run current. The module trimpot is the real
// limit; the value is kept for status reporting.
func (b *stepstickBackend) ApplyCurrent(mA uint16) error {
	b.currentMA = mA
	return nil
}

// Fault polls the nFAULT line when wired.
func (b *stepstickBackend) Fault() error {
	if b.fault != nil && !b.fault.Read() {
		return fmt.Errorf("%s: %w", b.name, core.ErrAxisFault)
	}
	return nil
}

func (b *stepstickBackend) Name() string {
	return b.name
}
