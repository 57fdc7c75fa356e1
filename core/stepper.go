// Tick-driven step generation.
// Stepping is emulated as many small discrete advances rather than one
// blocking move: each Tick emits at most one physical step, so the loop
// that calls it stays responsive to new input between steps.
package core

import "math"

// InversionFlags captures the wiring polarity of one axis.
type InversionFlags struct {
	Step   bool
	Dir    bool
	Enable bool
}

// Stepper is the step-generation engine for a single axis. Position and
// target are in step units. The engine has two pacing modes: a flat speed
// set by SetSpeed (used for motion issued from a command), and a ramped
// profile bounded by the configured acceleration when no flat speed is set.
type Stepper struct {
	step *DigitalOut
	dir  *DigitalOut

	position int64
	target   int64

	maxSpeed float64 // ceiling, steps/s
	maxAccel float64 // ramp bound, steps/s^2 (0 = no ramp)
	speed    float64 // commanded flat speed, steps/s
	flat     bool    // flat speed mode vs ramped profile

	rate     float64 // current step rate while ramping
	nextStep Ticks   // earliest time the next step may fire
	reverse  bool    // last direction written
}

// NewStepper claims the step and direction pins of one axis.
func NewStepper(driver GPIODriver, stepPin, dirPin GPIOPin, inv InversionFlags) (*Stepper, error) {
	step, err := NewDigitalOut(driver, stepPin, inv.Step)
	if err != nil {
		return nil, err
	}
	dir, err := NewDigitalOut(driver, dirPin, inv.Dir)
	if err != nil {
		return nil, err
	}
	return &Stepper{step: step, dir: dir}, nil
}

// Configure sets the kinematic limits. Called once at startup.
func (s *Stepper) Configure(maxSpeed, maxAccel float64) {
	s.maxSpeed = maxSpeed
	s.maxAccel = maxAccel
}

// SetSpeed sets the flat (non-accelerated) speed used by direct
// speed-mode motion. A speed of zero stalls the axis with the move left
// pending, which is what the command set's permissive numeric parsing
// produces for a malformed feedrate.
func (s *Stepper) SetSpeed(stepsPerSec float64) {
	if stepsPerSec > s.maxSpeed {
		stepsPerSec = s.maxSpeed
	}
	if stepsPerSec < 0 {
		stepsPerSec = 0
	}
	s.speed = stepsPerSec
	s.flat = true
}

// UseRamp returns the engine to the ramped profile bounded by the
// configured acceleration. Used for diagnostic jogging.
func (s *Stepper) UseRamp() {
	s.flat = false
	s.rate = 0
}

// SetTargetPosition records a new absolute target. It does not block;
// the move is realized incrementally by repeated Tick calls.
func (s *Stepper) SetTargetPosition(steps int64) {
	s.target = steps
}

// MoveRelative adds delta to the current target. Convenience for bounded
// diagnostic jogging.
func (s *Stepper) MoveRelative(delta int64) {
	s.target += delta
}

// SetCurrentPosition forcibly redefines the zero reference without
// generating motion. Used by the homing supervisor after a sensor trigger.
func (s *Stepper) SetCurrentPosition(steps int64) {
	s.position = steps
	s.target = steps
	s.rate = 0
}

// Speed returns the commanded flat speed in steps per second.
func (s *Stepper) Speed() float64 {
	return s.speed
}

// Position returns the current position in step units.
func (s *Stepper) Position() int64 {
	return s.position
}

// TargetPosition returns the current target in step units.
func (s *Stepper) TargetPosition() int64 {
	return s.target
}

// IsMoving reports whether steps remain toward the target.
func (s *Stepper) IsMoving() bool {
	return s.position != s.target
}

// Stalled reports a pending move that cannot progress: the engine is in
// flat mode at zero speed, or has no speed ceiling to ramp toward.
func (s *Stepper) Stalled() bool {
	if !s.IsMoving() {
		return false
	}
	if s.flat {
		return s.speed <= 0
	}
	return s.maxSpeed <= 0
}

// Tick advances step generation by at most one physical step toward the
// current target. Returns true when a step was emitted.
func (s *Stepper) Tick(now Ticks) bool {
	if s.position == s.target {
		s.rate = 0
		return false
	}
	if now < s.nextStep {
		return false
	}

	rate := s.nextRate()
	if rate <= 0 {
		// Stalled: zero speed or unconfigured limits. The move stays
		// pending; a later SetSpeed resumes it.
		return false
	}

	reverse := s.target < s.position
	if reverse != s.reverse {
		// Direction reversal restarts the ramp.
		s.dir.Set(reverse)
		s.reverse = reverse
		s.rate = 0
	}

	s.step.Set(true)
	s.step.Set(false)
	if reverse {
		s.position--
	} else {
		s.position++
	}

	interval := Ticks(TickRate / rate)
	if interval < 1 {
		interval = 1
	}
	s.nextStep = now + interval
	return true
}

// nextRate computes the step rate to pace the following step.
func (s *Stepper) nextRate() float64 {
	if s.flat {
		return s.speed
	}
	if s.maxAccel <= 0 {
		return s.maxSpeed
	}
	if s.rate <= 0 {
		// First step from rest: rate after accelerating over one step.
		s.rate = math.Sqrt(2 * s.maxAccel)
	} else {
		// dv = a * dt with dt = one step at the current rate.
		s.rate += s.maxAccel / s.rate
	}
	if s.rate > s.maxSpeed {
		s.rate = s.maxSpeed
	}
	return s.rate
}
