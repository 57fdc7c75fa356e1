// Motion dispatcher and main loop.
//
// One logical control context owns all motion state. Step generation for
// every axis is serviced once per loop iteration regardless of whether
// input arrived, so in-progress motion continues smoothly between
// command lines. There is no command queue: a new motion command
// overwrites in-flight targets immediately.
package machine

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"gantry/core"
	"gantry/machine/gcode"
)

// Diagnostic command words. Matching is exact; anything that is not an
// exact match and not a motion line is silently dropped.
const (
	cmdCalibrate = "CALIBRATE"
	cmdTestX     = "TEST_X"
	cmdTestY     = "TEST_Y"
	cmdLimit     = "LIMIT"
	cmdStatus    = "STATUS"
)

// diagJogSteps is the out-and-back distance of a TEST_<axis> jog.
const diagJogSteps = 100

// lineBacklog bounds how many complete lines may wait for the dispatch
// loop. Lines arriving beyond it (for example during a blocking homing
// pass) are dropped, not queued.
const lineBacklog = 1

// Machine wires both axes to the command channel. It is the explicit
// hardware context: constructed once at startup from a GPIO driver and
// a configuration, then driven by Run.
type Machine struct {
	cfg   *Config
	clock core.Clock
	out   io.Writer

	x, y *Axis

	// calibration order is fixed: Y before X.
	homeOrder []*HomingSupervisor

	lines chan string
}

// BackendFactory supplies the motor-driver backend for a named axis.
type BackendFactory func(axis string) core.DriverBackend

// New builds the machine from its hardware context. Axes are created
// once and live for the process lifetime.
func New(cfg *Config, gpio core.GPIODriver, clock core.Clock, backends BackendFactory, out io.Writer) (*Machine, error) {
	m := &Machine{
		cfg:   cfg,
		clock: clock,
		out:   out,
		lines: make(chan string, lineBacklog),
	}

	budget := MMToSteps(cfg.MaxHomingTravelMM, cfg.StepsPerMM)
	for _, label := range []string{"X", "Y"} {
		axisCfg, ok := cfg.Axes[label]
		if !ok {
			return nil, fmt.Errorf("machine: no axis config for %s", label)
		}
		esCfg, ok := cfg.Endstops[label]
		if !ok {
			return nil, fmt.Errorf("machine: no endstop config for %s", label)
		}
		axis, err := NewAxis(label, gpio, backends(label), axisCfg, esCfg)
		if err != nil {
			return nil, err
		}
		switch label {
		case "X":
			m.x = axis
		case "Y":
			m.y = axis
		}
	}

	m.homeOrder = []*HomingSupervisor{
		NewHomingSupervisor(m.y, clock, budget),
		NewHomingSupervisor(m.x, clock, budget),
	}
	return m, nil
}

// Axis returns the named axis for inspection, or nil.
func (m *Machine) Axis(label string) *Axis {
	switch label {
	case "X":
		return m.x
	case "Y":
		return m.y
	}
	return nil
}

// Startup applies the motor driver configuration (fixed run current,
// enable lines) and emits the readiness banner.
func (m *Machine) Startup() error {
	for _, axis := range []*Axis{m.x, m.y} {
		cfg := m.cfg.Axes[axis.Label]
		if err := axis.Driver.Configure(cfg.RunCurrentMA); err != nil {
			return fmt.Errorf("machine: configure %s driver: %w", axis.Label, err)
		}
		if err := axis.Driver.Fault(); err != nil {
			m.printf("AXIS FAULT %s: %v", axis.Label, err)
		}
	}
	m.printf("READY")
	return nil
}

// StartReader feeds complete lines from r into the dispatch loop. Lines
// that arrive while the loop is busy beyond the one-line backlog are
// lost, matching the single-context model of the original controller.
func (m *Machine) StartReader(r io.Reader) {
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case m.lines <- scanner.Text():
			default:
				core.DebugPrintln("machine: dropped line: " + scanner.Text())
			}
		}
		close(m.lines)
	}()
}

// Run is the main control loop. Each iteration takes at most one pending
// line and then unconditionally services step generation for every axis.
// It returns when the input channel closes, after in-flight motion has
// settled.
func (m *Machine) Run() error {
	for {
		if m.moving() {
			select {
			case line, ok := <-m.lines:
				if !ok {
					for m.serviceable() {
						m.tickAll()
					}
					return nil
				}
				m.ProcessLine(line)
			default:
			}
			m.tickAll()
		} else {
			// Idle: nothing needs servicing, block on input.
			line, ok := <-m.lines
			if !ok {
				return nil
			}
			m.ProcessLine(line)
		}
	}
}

// ProcessLine classifies one trimmed command line and executes it.
func (m *Machine) ProcessLine(line string) {
	line = strings.TrimSpace(line)
	switch line {
	case cmdCalibrate:
		m.calibrate()
	case cmdTestX:
		m.test(m.x)
	case cmdTestY:
		m.test(m.y)
	case cmdLimit:
		m.reportLimits()
	case cmdStatus:
		m.reportStatus()
	default:
		m.motion(line)
	}
}

// motion parses and applies a motion command. Unrecognized lines are
// dropped with no feedback.
func (m *Machine) motion(line string) {
	cmd, err := gcode.ParseMotion(line, gcode.Options{
		Strict:          m.cfg.StrictParse,
		DefaultFeedrate: m.cfg.DefaultFeedrate,
	})
	if err != nil {
		m.printf("PARSE ERROR: %v", err)
		return
	}
	if cmd == nil {
		return
	}

	// The feedrate applies identically to all axes in the command.
	m.x.Stepper.SetSpeed(cmd.Feedrate)
	m.y.Stepper.SetSpeed(cmd.Feedrate)

	if cmd.HasX || !m.cfg.KeepAbsentAxes {
		m.x.Stepper.SetTargetPosition(MMToSteps(cmd.X, m.cfg.StepsPerMM))
	}
	if cmd.HasY || !m.cfg.KeepAbsentAxes {
		m.y.Stepper.SetTargetPosition(MMToSteps(cmd.Y, m.cfg.StepsPerMM))
	}
}

// calibrate homes both axes in the machine's fixed order, Y before X.
// Blocking: command lines arriving during the pass are lost.
func (m *Machine) calibrate() {
	for _, sup := range m.homeOrder {
		label := sup.axis.Label
		m.printf("HOMING %s", label)
		if err := sup.Home(); err != nil {
			m.printf("HOMING FAILED %s: %v", label, err)
			continue
		}
		m.printf("HOMED %s", label)
	}
	m.printf("CALIBRATED")
}

// test jogs the axis a fixed distance out and back, synchronously, using
// the ramped profile. Net displacement is zero.
func (m *Machine) test(axis *Axis) {
	m.printf("TESTING %s", axis.Label)
	axis.Stepper.UseRamp()
	axis.Stepper.MoveRelative(diagJogSteps)
	m.service(axis)
	axis.Stepper.MoveRelative(-diagJogSteps)
	m.service(axis)
	m.printf("TESTED %s", axis.Label)
}

// service blocks until the axis reaches its target, ticking it.
func (m *Machine) service(axis *Axis) {
	for axis.Stepper.IsMoving() {
		axis.Stepper.Tick(m.clock.Now())
	}
}

// reportLimits reads both limit sensors live; no caching.
func (m *Machine) reportLimits() {
	for _, axis := range []*Axis{m.x, m.y} {
		state := "NOT TRIGGERED"
		if axis.Endstop.Triggered() {
			state = "TRIGGERED"
		}
		m.printf("%s: %s", axis.Label, state)
	}
}

// reportStatus answers the completion question the fire-and-forget
// grammar leaves open: position, homed and moving flags per axis.
func (m *Machine) reportStatus() {
	for _, axis := range []*Axis{m.x, m.y} {
		pos := axis.Stepper.Position()
		m.printf("%s POS=%d MM=%.2f HOMED=%d MOVING=%d",
			axis.Label, pos, StepsToMM(pos, m.cfg.StepsPerMM),
			boolFlag(axis.Homed), boolFlag(axis.Stepper.IsMoving()))
		if err := axis.Driver.Fault(); err != nil {
			m.printf("AXIS FAULT %s: %v", axis.Label, err)
		}
	}
}

// tickAll services step generation for every axis.
func (m *Machine) tickAll() {
	now := m.clock.Now()
	m.x.Stepper.Tick(now)
	m.y.Stepper.Tick(now)
}

// moving reports whether any axis has steps pending.
func (m *Machine) moving() bool {
	return m.x.Stepper.IsMoving() || m.y.Stepper.IsMoving()
}

// serviceable reports whether any axis has steps pending that can
// actually progress. A move stalled at zero feedrate stays pending but
// must not spin the shutdown drain forever.
func (m *Machine) serviceable() bool {
	for _, axis := range []*Axis{m.x, m.y} {
		if axis.Stepper.IsMoving() && !axis.Stepper.Stalled() {
			return true
		}
	}
	return false
}

func (m *Machine) printf(format string, args ...any) {
	fmt.Fprintf(m.out, format+"\n", args...)
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

