package machine

import "gantry/core"

// AxisConfig describes the wiring and kinematic limits of one axis.
type AxisConfig struct {
	StepPin   core.GPIOPin `json:"step_pin"`
	DirPin    core.GPIOPin `json:"dir_pin"`
	EnablePin core.GPIOPin `json:"enable_pin"`

	InvertStep   bool `json:"invert_step"`
	InvertDir    bool `json:"invert_dir"`
	InvertEnable bool `json:"invert_enable"`

	MaxSpeed     float64 `json:"max_speed"`      // steps/s
	MaxAccel     float64 `json:"max_accel"`      // steps/s^2
	HomingSpeed  float64 `json:"homing_speed"`   // steps/s
	RunCurrentMA uint16  `json:"run_current_ma"` // driver run current
}

// EndstopConfig describes one limit sensor.
type EndstopConfig struct {
	Pin core.GPIOPin `json:"pin"`

	// Invert flips to active-high wiring; the machine's sensors are
	// active-low by default.
	Invert bool `json:"invert"`

	// SampleCount > 1 enables consecutive-sample debouncing during
	// homing. LIMIT queries always read raw.
	SampleCount uint8 `json:"sample_count"`
}

// Config is the complete machine configuration.
type Config struct {
	// StepsPerMM is the system-wide millimeter-to-step scale. It is a
	// constant of the machine geometry, not configurable per command.
	StepsPerMM float64 `json:"steps_per_mm"`

	// DefaultFeedrate is the flat speed applied when a motion command
	// omits the F parameter.
	DefaultFeedrate float64 `json:"default_feedrate"`

	// MaxHomingTravelMM bounds the distance a homing pass may seek
	// before giving up. Zero disables the budget and reproduces the
	// original unbounded (hazardous) behavior.
	MaxHomingTravelMM float64 `json:"max_homing_travel_mm"`

	// StrictParse surfaces malformed motion lines as parse errors
	// instead of silently reading malformed numerics as 0.0.
	StrictParse bool `json:"strict_parse"`

	// KeepAbsentAxes leaves an axis target unchanged when its parameter
	// is omitted from a motion command. Off by default: the compatible
	// behavior moves unspecified axes to 0.
	KeepAbsentAxes bool `json:"keep_absent_axes"`

	Axes     map[string]AxisConfig    `json:"axes"`
	Endstops map[string]EndstopConfig `json:"endstops"`
}
