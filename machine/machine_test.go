package machine

import (
	"bytes"
	"strings"
	"testing"

	"gantry/core"
)

// Test pin map (CNC-shield style): X step/dir 2/5, Y step/dir 3/6,
// shared enable 8, endstops 9/10.
const (
	xStepPin core.GPIOPin = 2
	xDirPin  core.GPIOPin = 5
	yStepPin core.GPIOPin = 3
	yDirPin  core.GPIOPin = 6
	enPin    core.GPIOPin = 8
	xEsPin   core.GPIOPin = 9
	yEsPin   core.GPIOPin = 10
)

func testConfig() *Config {
	return &Config{
		StepsPerMM:        100,
		DefaultFeedrate:   100,
		MaxHomingTravelMM: 350,
		Axes: map[string]AxisConfig{
			"X": {
				StepPin: xStepPin, DirPin: xDirPin, EnablePin: enPin,
				InvertEnable: true,
				MaxSpeed:     1000, MaxAccel: 500, HomingSpeed: 400,
				RunCurrentMA: 800,
			},
			"Y": {
				StepPin: yStepPin, DirPin: yDirPin, EnablePin: enPin,
				InvertEnable: true,
				MaxSpeed:     1000, MaxAccel: 500, HomingSpeed: 400,
				RunCurrentMA: 800,
			},
		},
		Endstops: map[string]EndstopConfig{
			"X": {Pin: xEsPin},
			"Y": {Pin: yEsPin},
		},
	}
}

// simAxis tracks the physical carriage position of one axis by counting
// step pulses, so limit sensors behave like real switches mounted at a
// fixed point of travel.
type simAxis struct {
	dirPin   core.GPIOPin
	pos      int64
	lastStep bool
}

// gantrySim is a SimDriver that models the carriage physics.
type gantrySim struct {
	*core.SimDriver
	axes map[core.GPIOPin]*simAxis // keyed by step pin
}

func newGantrySim() *gantrySim {
	return &gantrySim{
		SimDriver: core.NewSimDriver(),
		axes: map[core.GPIOPin]*simAxis{
			xStepPin: {dirPin: xDirPin},
			yStepPin: {dirPin: yDirPin},
		},
	}
}

func (g *gantrySim) SetPin(pin core.GPIOPin, value bool) error {
	if axis, ok := g.axes[pin]; ok {
		if value && !axis.lastStep {
			// Rising edge on the step pin moves the carriage.
			if g.Output(axis.dirPin) {
				axis.pos--
			} else {
				axis.pos++
			}
		}
		axis.lastStep = value
	}
	return g.SimDriver.SetPin(pin, value)
}

// mountEndstop places a limit switch that closes (pulls low) whenever
// the carriage is at or below trip.
func (g *gantrySim) mountEndstop(esPin, stepPin core.GPIOPin, trip int64) {
	axis := g.axes[stepPin]
	g.SetInputHook(esPin, func() bool {
		return axis.pos > trip
	})
}

func newTestMachine(t *testing.T, cfg *Config) (*Machine, *gantrySim, *bytes.Buffer) {
	t.Helper()
	sim := newGantrySim()
	var out bytes.Buffer
	backends := func(string) core.DriverBackend { return &core.SimDriverBackend{} }
	m, err := New(cfg, sim, &core.SimClock{AutoStep: 50000}, backends, &out)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m, sim, &out
}

// settle ticks the loop until no motion remains.
func settle(t *testing.T, m *Machine) {
	t.Helper()
	for i := 0; i < 1000000; i++ {
		if !m.moving() {
			return
		}
		m.tickAll()
	}
	t.Fatal("motion did not settle")
}

func TestMotionCommandSetsTargetsAndSpeed(t *testing.T) {
	m, _, _ := newTestMachine(t, testConfig())

	m.ProcessLine("G1 X10 Y5 F200")

	if got := m.x.Stepper.TargetPosition(); got != 1000 {
		t.Errorf("Expected X target 1000, got %d", got)
	}
	if got := m.y.Stepper.TargetPosition(); got != 500 {
		t.Errorf("Expected Y target 500, got %d", got)
	}
	if m.x.Stepper.Speed() != 200 || m.y.Stepper.Speed() != 200 {
		t.Errorf("Expected flat speed 200 on both axes, got X=%v Y=%v",
			m.x.Stepper.Speed(), m.y.Stepper.Speed())
	}
}

func TestMotionOmittedAxisMovesToZero(t *testing.T) {
	m, _, _ := newTestMachine(t, testConfig())

	m.ProcessLine("G1 Y7 F500")
	if got := m.y.Stepper.TargetPosition(); got != 700 {
		t.Fatalf("Expected Y target 700, got %d", got)
	}

	// Y omitted: the compatible behavior moves it to 0, not "unchanged".
	m.ProcessLine("G1 X10 F500")
	if got := m.y.Stepper.TargetPosition(); got != 0 {
		t.Errorf("Expected Y target 0 after omission, got %d", got)
	}
	if got := m.x.Stepper.TargetPosition(); got != 1000 {
		t.Errorf("Expected X target 1000, got %d", got)
	}
}

func TestMotionKeepAbsentAxes(t *testing.T) {
	cfg := testConfig()
	cfg.KeepAbsentAxes = true
	m, _, _ := newTestMachine(t, cfg)

	m.ProcessLine("G1 Y7 F500")
	m.ProcessLine("G1 X10 F500")

	if got := m.y.Stepper.TargetPosition(); got != 700 {
		t.Errorf("Expected Y target unchanged at 700, got %d", got)
	}
}

func TestMotionMalformedNumericReadsAsZero(t *testing.T) {
	m, _, out := newTestMachine(t, testConfig())

	m.ProcessLine("G1 Xjunk Y5 F200")

	if got := m.x.Stepper.TargetPosition(); got != 0 {
		t.Errorf("Expected X target 0 for malformed numeric, got %d", got)
	}
	if got := m.y.Stepper.TargetPosition(); got != 500 {
		t.Errorf("Expected Y target 500, got %d", got)
	}
	if out.Len() != 0 {
		t.Errorf("Permissive parse should produce no output, got %q", out.String())
	}
}

func TestMotionStrictParseSurfacesError(t *testing.T) {
	cfg := testConfig()
	cfg.StrictParse = true
	m, _, out := newTestMachine(t, cfg)

	m.ProcessLine("G1 Xjunk")

	if !strings.Contains(out.String(), "PARSE ERROR") {
		t.Errorf("Expected a parse error diagnostic, got %q", out.String())
	}
	if m.x.Stepper.TargetPosition() != 0 || m.x.Stepper.IsMoving() {
		t.Error("Discarded command still moved an axis")
	}
}

func TestUnrecognizedLinesDroppedSilently(t *testing.T) {
	m, _, out := newTestMachine(t, testConfig())

	for _, line := range []string{"HELLO", "calibrate", "TEST_Z", "M104 S200", ""} {
		m.ProcessLine(line)
	}

	if out.Len() != 0 {
		t.Errorf("Expected no response, got %q", out.String())
	}
	if m.moving() {
		t.Error("Unrecognized input caused motion")
	}
}

func TestCalibrateHomesYThenX(t *testing.T) {
	m, sim, out := newTestMachine(t, testConfig())
	sim.mountEndstop(yEsPin, yStepPin, -500)
	sim.mountEndstop(xEsPin, xStepPin, -300)

	m.ProcessLine("CALIBRATE")

	for _, axis := range []*Axis{m.y, m.x} {
		if !axis.Homed {
			t.Errorf("Axis %s not homed", axis.Label)
		}
		if axis.Stepper.Position() != 0 {
			t.Errorf("Axis %s position %d after homing, expected 0",
				axis.Label, axis.Stepper.Position())
		}
	}

	// Fixed global order: Y before X.
	output := out.String()
	yIdx := strings.Index(output, "HOMED Y")
	xIdx := strings.Index(output, "HOMED X")
	if yIdx < 0 || xIdx < 0 || yIdx > xIdx {
		t.Errorf("Expected Y homed before X, got:\n%s", output)
	}
	if !strings.Contains(output, "CALIBRATED") {
		t.Errorf("Missing completion line, got:\n%s", output)
	}
}

func TestCalibrateIdempotentWhenAlreadyTriggered(t *testing.T) {
	m, sim, _ := newTestMachine(t, testConfig())
	sim.mountEndstop(yEsPin, yStepPin, -500)
	sim.mountEndstop(xEsPin, xStepPin, -300)

	m.ProcessLine("CALIBRATE")
	// Carriages now rest on their switches; a second pass must zero
	// immediately without further travel.
	yPos := sim.axes[yStepPin].pos
	m.ProcessLine("CALIBRATE")

	if sim.axes[yStepPin].pos != yPos {
		t.Error("Second homing pass moved an already-triggered axis")
	}
	if m.y.Stepper.Position() != 0 || m.x.Stepper.Position() != 0 {
		t.Error("Second homing pass did not re-zero")
	}
}

func TestCalibrateConvergesAfterMove(t *testing.T) {
	m, sim, _ := newTestMachine(t, testConfig())
	sim.mountEndstop(yEsPin, yStepPin, -500)
	sim.mountEndstop(xEsPin, xStepPin, -300)

	m.ProcessLine("CALIBRATE")
	m.ProcessLine("G1 X2 Y2 F1000")
	settle(t, m)

	m.ProcessLine("CALIBRATE")
	if m.x.Stepper.Position() != 0 || m.y.Stepper.Position() != 0 {
		t.Error("Re-homing after a move did not converge to zero")
	}
	if !m.x.Homed || !m.y.Homed {
		t.Error("Axes not homed after second pass")
	}
}

func TestCalibrateTimesOutWithoutSensor(t *testing.T) {
	cfg := testConfig()
	cfg.MaxHomingTravelMM = 5 // keep the failing seek short
	m, _, out := newTestMachine(t, cfg)
	// No endstops mounted: the pull-ups keep both lines high forever.

	m.ProcessLine("CALIBRATE")

	output := out.String()
	if !strings.Contains(output, "HOMING FAILED Y") ||
		!strings.Contains(output, "HOMING FAILED X") {
		t.Errorf("Expected homing failures for both axes, got:\n%s", output)
	}
	if m.x.Homed || m.y.Homed {
		t.Error("Axis marked homed despite timeout")
	}
	// The loop survives: the machine still accepts commands.
	m.ProcessLine("G1 X1 F1000")
	if m.x.Stepper.TargetPosition() != 100 {
		t.Error("Machine unresponsive after homing timeout")
	}
}

func TestDiagnosticJogReturnsToOrigin(t *testing.T) {
	m, _, out := newTestMachine(t, testConfig())

	m.ProcessLine("G1 X10 F1000")
	settle(t, m)
	start := m.x.Stepper.Position()

	m.ProcessLine("TEST_X")

	if got := m.x.Stepper.Position(); got != start {
		t.Errorf("TEST_X net displacement %d, expected 0", got-start)
	}
	if !strings.Contains(out.String(), "TESTING X") ||
		!strings.Contains(out.String(), "TESTED X") {
		t.Errorf("Missing test progress lines, got %q", out.String())
	}

	out.Reset()
	m.ProcessLine("TEST_Y")
	if got := m.y.Stepper.Position(); got != 0 {
		t.Errorf("TEST_Y net displacement %d, expected 0", got)
	}
}

func TestLimitReportIsLiveRead(t *testing.T) {
	m, sim, out := newTestMachine(t, testConfig())

	sim.SetInput(xEsPin, false) // X switch closed
	sim.SetInput(yEsPin, true)  // Y switch open

	m.ProcessLine("LIMIT")
	if got := out.String(); got != "X: TRIGGERED\nY: NOT TRIGGERED\n" {
		t.Errorf("Unexpected limit report %q", got)
	}

	// No caching: the report follows the electrical state.
	out.Reset()
	sim.SetInput(xEsPin, true)
	sim.SetInput(yEsPin, false)
	m.ProcessLine("LIMIT")
	if got := out.String(); got != "X: NOT TRIGGERED\nY: TRIGGERED\n" {
		t.Errorf("Unexpected limit report %q", got)
	}
}

func TestStatusReport(t *testing.T) {
	m, sim, out := newTestMachine(t, testConfig())
	sim.mountEndstop(yEsPin, yStepPin, -500)
	sim.mountEndstop(xEsPin, xStepPin, -300)

	m.ProcessLine("CALIBRATE")
	m.ProcessLine("G1 X10 F1000")
	settle(t, m)

	out.Reset()
	m.ProcessLine("STATUS")
	output := out.String()
	if !strings.Contains(output, "X POS=1000 MM=10.00 HOMED=1 MOVING=0") {
		t.Errorf("Unexpected X status, got:\n%s", output)
	}
	if !strings.Contains(output, "Y POS=0 MM=0.00 HOMED=1 MOVING=0") {
		t.Errorf("Unexpected Y status, got:\n%s", output)
	}
}

func TestStartupConfiguresDriversAndBanner(t *testing.T) {
	sim := newGantrySim()
	var out bytes.Buffer
	backendsByAxis := map[string]*core.SimDriverBackend{
		"X": {}, "Y": {},
	}
	m, err := New(testConfig(), sim, &core.SimClock{AutoStep: 50000},
		func(axis string) core.DriverBackend { return backendsByAxis[axis] }, &out)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := m.Startup(); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	if out.String() != "READY\n" {
		t.Errorf("Expected readiness banner, got %q", out.String())
	}
	for axis, backend := range backendsByAxis {
		if backend.CurrentMA != 800 {
			t.Errorf("Axis %s run current %dmA, expected 800", axis, backend.CurrentMA)
		}
	}
	// Shared active-low enable line driven low.
	if sim.Output(enPin) {
		t.Error("Enable line not active after startup")
	}
}

func TestRunProcessesStreamUntilEOF(t *testing.T) {
	m, _, _ := newTestMachine(t, testConfig())

	m.StartReader(strings.NewReader("G1 X1 Y1 F1000\n"))
	if err := m.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if m.x.Stepper.Position() != 100 || m.y.Stepper.Position() != 100 {
		t.Errorf("Motion not completed by the loop: X=%d Y=%d",
			m.x.Stepper.Position(), m.y.Stepper.Position())
	}
}

func TestRunServicesDiagnosticsWhileIdle(t *testing.T) {
	m, _, out := newTestMachine(t, testConfig())

	m.StartReader(strings.NewReader("LIMIT\n"))
	if err := m.Run(); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !strings.Contains(out.String(), "NOT TRIGGERED") {
		t.Errorf("LIMIT not serviced by the loop, got %q", out.String())
	}
}
