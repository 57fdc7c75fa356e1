// Homing drives an axis against its limit sensor to establish the zero
// reference. The seek loop is deliberately blocking: issuing partial,
// unbounded motion without position truth is unsafe, so homing runs as
// an atomic operation and incoming command lines are dropped meanwhile.
package machine

import (
	"errors"
	"fmt"

	"gantry/core"
)

// ErrHomingTimeout is reported when the limit sensor never triggers
// within the configured travel budget. The axis is left unhomed and the
// control loop continues.
var ErrHomingTimeout = errors.New("homing: limit sensor never triggered within travel budget")

// HomingState is the per-axis homing state machine.
type HomingState uint8

const (
	HomingIdle HomingState = iota
	HomingSeeking
	HomingZeroed
	HomingFaulted
)

func (s HomingState) String() string {
	switch s {
	case HomingIdle:
		return "idle"
	case HomingSeeking:
		return "seeking"
	case HomingZeroed:
		return "zeroed"
	case HomingFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// homingChunkSteps is the relative move issued per seek iteration. Small
// chunks keep the sensor poll rate high relative to travel.
const homingChunkSteps = 100

// HomingSupervisor runs the bounded homing sequence for one axis.
type HomingSupervisor struct {
	axis  *Axis
	clock core.Clock

	// maxTravelSteps bounds the total seek distance; 0 reproduces the
	// original unbounded loop.
	maxTravelSteps int64

	state HomingState
}

// NewHomingSupervisor builds a supervisor for one axis.
func NewHomingSupervisor(axis *Axis, clock core.Clock, maxTravelSteps int64) *HomingSupervisor {
	return &HomingSupervisor{
		axis:           axis,
		clock:          clock,
		maxTravelSteps: maxTravelSteps,
		state:          HomingIdle,
	}
}

// State returns the current homing state.
func (h *HomingSupervisor) State() HomingState {
	return h.state
}

// Home seeks toward the limit sensor with repeated small negative
// relative moves, servicing step generation between sensor polls. On
// trigger the axis position is redefined as zero. Blocking by design.
func (h *HomingSupervisor) Home() error {
	h.state = HomingSeeking
	h.axis.Homed = false
	h.axis.Stepper.SetSpeed(h.axis.HomingSpeed)

	traveled := int64(0)
	for {
		if h.axis.Endstop.TriggeredDebounced() {
			h.axis.Stepper.SetCurrentPosition(0)
			h.axis.Homed = true
			h.state = HomingZeroed
			return nil
		}
		if h.maxTravelSteps > 0 && traveled >= h.maxTravelSteps {
			h.state = HomingFaulted
			return fmt.Errorf("axis %s: %w", h.axis.Label, ErrHomingTimeout)
		}

		h.axis.Stepper.MoveRelative(-homingChunkSteps)
		for h.axis.Stepper.IsMoving() {
			if h.axis.Endstop.TriggeredDebounced() {
				break
			}
			if h.axis.Stepper.Tick(h.clock.Now()) {
				traveled++
			}
		}
	}
}
