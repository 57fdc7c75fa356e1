package machine

import (
	"fmt"
	"math"

	"gantry/core"
)

// Axis is one independently controlled degree of motion: a step engine,
// its motor driver, and its limit sensor. Axes are built once at startup
// and live for the process lifetime. Position is authoritative only
// after a successful homing pass.
type Axis struct {
	Label   string
	Stepper *core.Stepper
	Driver  *core.MotorDriver
	Endstop *core.Endstop

	HomingSpeed float64
	Homed       bool
}

// NewAxis claims the axis's pins and builds its components. The motor
// driver is configured separately at machine startup.
func NewAxis(label string, gpio core.GPIODriver, backend core.DriverBackend, cfg AxisConfig, es EndstopConfig) (*Axis, error) {
	stepper, err := core.NewStepper(gpio, cfg.StepPin, cfg.DirPin, core.InversionFlags{
		Step: cfg.InvertStep,
		Dir:  cfg.InvertDir,
	})
	if err != nil {
		return nil, fmt.Errorf("axis %s: %w", label, err)
	}
	stepper.Configure(cfg.MaxSpeed, cfg.MaxAccel)

	driver, err := core.NewMotorDriver(gpio, backend, cfg.EnablePin, cfg.InvertEnable)
	if err != nil {
		return nil, fmt.Errorf("axis %s: %w", label, err)
	}

	endstop, err := core.NewEndstop(gpio, es.Pin, es.Invert, es.SampleCount)
	if err != nil {
		return nil, fmt.Errorf("axis %s: %w", label, err)
	}

	return &Axis{
		Label:       label,
		Stepper:     stepper,
		Driver:      driver,
		Endstop:     endstop,
		HomingSpeed: cfg.HomingSpeed,
	}, nil
}

// MMToSteps converts millimeters to step units at the machine scale.
func MMToSteps(mm, stepsPerMM float64) int64 {
	return int64(math.Round(mm * stepsPerMM))
}

// StepsToMM converts step units back to millimeters.
func StepsToMM(steps int64, stepsPerMM float64) float64 {
	return float64(steps) / stepsPerMM
}
