// Simulated hardware for host mode and tests.
// Plays the role real pins play on the target: outputs are recorded,
// inputs can be tied to fixed levels or to callbacks so a test can trip
// a limit sensor when the simulated carriage reaches it.
package core

import "fmt"

// SimDriver is an in-memory GPIODriver.
type SimDriver struct {
	outputs map[GPIOPin]bool
	levels  map[GPIOPin]bool
	hooks   map[GPIOPin]func() bool
}

// NewSimDriver returns an empty simulated GPIO driver.
func NewSimDriver() *SimDriver {
	return &SimDriver{
		outputs: make(map[GPIOPin]bool),
		levels:  make(map[GPIOPin]bool),
		hooks:   make(map[GPIOPin]func() bool),
	}
}

func (d *SimDriver) ConfigureOutput(pin GPIOPin) error {
	if _, ok := d.levels[pin]; ok {
		return fmt.Errorf("sim: pin %d already configured as input", pin)
	}
	d.outputs[pin] = false
	return nil
}

func (d *SimDriver) ConfigureInputPullUp(pin GPIOPin) error {
	if _, ok := d.outputs[pin]; ok {
		return fmt.Errorf("sim: pin %d already configured as output", pin)
	}
	// Pull-up: an unconnected input reads high.
	d.levels[pin] = true
	return nil
}

func (d *SimDriver) SetPin(pin GPIOPin, value bool) error {
	if _, ok := d.outputs[pin]; !ok {
		return fmt.Errorf("sim: pin %d not configured as output", pin)
	}
	d.outputs[pin] = value
	return nil
}

func (d *SimDriver) ReadPin(pin GPIOPin) bool {
	if hook, ok := d.hooks[pin]; ok {
		return hook()
	}
	if level, ok := d.levels[pin]; ok {
		return level
	}
	return d.outputs[pin]
}

// SetInput forces the electrical level of an input pin.
func (d *SimDriver) SetInput(pin GPIOPin, level bool) {
	d.levels[pin] = level
}

// SetInputHook ties an input pin to a callback evaluated on every read.
func (d *SimDriver) SetInputHook(pin GPIOPin, hook func() bool) {
	d.hooks[pin] = hook
}

// Output returns the last electrical level written to an output pin.
func (d *SimDriver) Output(pin GPIOPin) bool {
	return d.outputs[pin]
}

// SimClock is a manually driven Clock. When AutoStep is non-zero every
// Now call advances the clock by that many ticks, which keeps blocking
// loops (homing, diagnostics) progressing in tests without real time.
type SimClock struct {
	Current  Ticks
	AutoStep Ticks
}

func (c *SimClock) Now() Ticks {
	c.Current += c.AutoStep
	return c.Current
}

// Advance moves the clock forward by d ticks.
func (c *SimClock) Advance(d Ticks) {
	c.Current += d
}

// SimDriverBackend is an in-memory DriverBackend.
type SimDriverBackend struct {
	CurrentMA uint16
	FaultErr  error
}

func (b *SimDriverBackend) ApplyCurrent(mA uint16) error {
	b.CurrentMA = mA
	return nil
}

func (b *SimDriverBackend) Fault() error {
	return b.FaultErr
}

func (b *SimDriverBackend) Name() string {
	return "sim"
}
