// Digital pin wrappers with wiring-polarity handling.
// Inversion is resolved here once so the step engine and endstop code
// deal only in logical levels.
package core

// DigitalOut represents a configured GPIO output pin
type DigitalOut struct {
	driver GPIODriver
	pin    GPIOPin
	invert bool
	state  bool // last logical state written
}

// NewDigitalOut configures pin as an output and drives it to the logical
// "off" level (electrical level depends on invert).
func NewDigitalOut(driver GPIODriver, pin GPIOPin, invert bool) (*DigitalOut, error) {
	if err := driver.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	d := &DigitalOut{driver: driver, pin: pin, invert: invert}
	if err := d.Set(false); err != nil {
		return nil, err
	}
	return d, nil
}

// Set drives the pin to the given logical state.
func (d *DigitalOut) Set(on bool) error {
	d.state = on
	return d.driver.SetPin(d.pin, on != d.invert)
}

// Toggle flips the logical state.
func (d *DigitalOut) Toggle() error {
	return d.Set(!d.state)
}

// Get returns the last logical state written.
func (d *DigitalOut) Get() bool {
	return d.state
}

// Pin returns the underlying hardware pin.
func (d *DigitalOut) Pin() GPIOPin {
	return d.pin
}

// DigitalIn represents a configured GPIO input pin
type DigitalIn struct {
	driver GPIODriver
	pin    GPIOPin
}

// NewDigitalIn configures pin as an input with the pull-up enabled,
// the wiring expected by normally-open switches to ground.
func NewDigitalIn(driver GPIODriver, pin GPIOPin) (*DigitalIn, error) {
	if err := driver.ConfigureInputPullUp(pin); err != nil {
		return nil, err
	}
	return &DigitalIn{driver: driver, pin: pin}, nil
}

// Read returns the current electrical level (true = high).
func (d *DigitalIn) Read() bool {
	return d.driver.ReadPin(d.pin)
}

// Pin returns the underlying hardware pin.
func (d *DigitalIn) Pin() GPIOPin {
	return d.pin
}
