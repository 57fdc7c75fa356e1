//go:build rp2040 || rp2350

package main

import (
	"fmt"

	"machine"

	"gantry/core"
)

// RPGPIODriver implements the core GPIO interface on the RP2040 pads.
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a digital output
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		// Already configured, this is OK
		return nil
	}

	machinePin, err := d.machinePin(pin)
	if err != nil {
		return err
	}
	machinePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.configuredPins[pin] = machinePin
	return nil
}

// ConfigureInputPullUp configures a pin as a digital input with pull-up resistor
func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	if _, exists := d.configuredPins[pin]; exists {
		return nil
	}

	machinePin, err := d.machinePin(pin)
	if err != nil {
		return err
	}
	machinePin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	d.configuredPins[pin] = machinePin
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return fmt.Errorf("gpio%d not configured", pin)
	}
	if value {
		machinePin.High()
	} else {
		machinePin.Low()
	}
	return nil
}

// ReadPin reads the current pin state
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return false
	}
	return machinePin.Get()
}

// machinePin maps a logical pin number to the hardware pad.
// RP2040 has GPIO0-GPIO29.
func (d *RPGPIODriver) machinePin(pin core.GPIOPin) (machine.Pin, error) {
	if pin > 29 {
		return machine.NoPin, fmt.Errorf("gpio%d out of range", pin)
	}
	return machine.Pin(pin), nil
}
