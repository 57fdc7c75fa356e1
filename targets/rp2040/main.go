//go:build rp2040 || rp2350

package main

import (
	"time"

	"machine"

	"gantry/core"
	ctrl "gantry/machine"
	"gantry/machine/config"
)

func main() {
	// Disable the watchdog on boot to clear any state a previous reset
	// left behind.
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	// Give USB CDC time to enumerate before the banner goes out.
	time.Sleep(500 * time.Millisecond)

	if coilTestRequested() {
		runCoilTest()
	}

	gpio := NewRPGPIODriver()
	clock := core.NewHostClock()
	cfg := config.Default()

	backends := func(axis string) core.DriverBackend {
		b, err := newStepstickBackend(gpio, axis, 0, false)
		if err != nil {
			flashForever()
		}
		return b
	}

	console := &serialIO{port: machine.Serial}
	m, err := ctrl.New(cfg, gpio, clock, backends, console)
	if err != nil {
		flashForever()
	}
	if err := m.Startup(); err != nil {
		flashForever()
	}

	m.StartReader(console)
	if err := m.Run(); err != nil {
		flashForever()
	}
}

// serialIO adapts the USB CDC port to io.ReadWriter for the command
// loop. Reads block until at least one byte arrives.
type serialIO struct {
	port machine.Serialer
}

func (s *serialIO) Read(p []byte) (int, error) {
	for s.port.Buffered() == 0 {
		time.Sleep(time.Millisecond)
	}
	n := 0
	for n < len(p) && s.port.Buffered() > 0 {
		b, err := s.port.ReadByte()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}

func (s *serialIO) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

// flashForever blinks the LED rapidly to signal an unrecoverable init
// failure, then never returns.
func flashForever() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
