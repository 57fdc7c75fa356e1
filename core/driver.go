// Motor driver configuration.
// The driver chip's run current and enable line are applied once at
// startup; nothing in the runtime command set mutates them afterwards.
package core

import (
	"errors"
	"fmt"
)

// ErrAxisFault is reported when a driver backend raises its fault line.
// The fault is surfaced to the operator but never auto-recovered.
var ErrAxisFault = errors.New("driver: axis fault")

// DriverBackend abstracts the driver chip's configuration interface.
// Real hardware implementations talk UART or SPI to the chip; the
// simulated backend records what was applied.
type DriverBackend interface {
	// ApplyCurrent programs the run current limit in milliamps.
	ApplyCurrent(mA uint16) error

	// Fault polls the driver's fault indication. It returns nil when
	// healthy, or an error wrapping ErrAxisFault.
	Fault() error

	// Name identifies the backend implementation.
	Name() string
}

// MotorDriver couples a driver backend with the enable line of one axis.
type MotorDriver struct {
	backend DriverBackend
	enable  *DigitalOut

	currentMA uint16
	enabled   bool
}

// NewMotorDriver claims the enable pin and wires the backend.
func NewMotorDriver(gpio GPIODriver, backend DriverBackend, enablePin GPIOPin, invertEnable bool) (*MotorDriver, error) {
	en, err := NewDigitalOut(gpio, enablePin, invertEnable)
	if err != nil {
		return nil, err
	}
	return &MotorDriver{backend: backend, enable: en}, nil
}

// Configure programs the run current and enables the motor. Called once
// at startup; re-configuration only through an explicit second call.
func (m *MotorDriver) Configure(currentMA uint16) error {
	if err := m.backend.ApplyCurrent(currentMA); err != nil {
		return fmt.Errorf("driver %s: apply current %dmA: %w", m.backend.Name(), currentMA, err)
	}
	m.currentMA = currentMA
	return m.Enable()
}

// Enable drives the enable line active.
func (m *MotorDriver) Enable() error {
	m.enabled = true
	return m.enable.Set(true)
}

// Disable drives the enable line inactive.
func (m *MotorDriver) Disable() error {
	m.enabled = false
	return m.enable.Set(false)
}

// Enabled reports the enable line state.
func (m *MotorDriver) Enabled() bool {
	return m.enabled
}

// Current returns the configured run current in milliamps.
func (m *MotorDriver) Current() uint16 {
	return m.currentMA
}

// Fault polls the backend fault indication.
func (m *MotorDriver) Fault() error {
	return m.backend.Fault()
}
