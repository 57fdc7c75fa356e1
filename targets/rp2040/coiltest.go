//go:build rp2040 || rp2350

package main

import (
	"time"

	"machine"

	"tinygo.org/x/drivers/easystepper"
)

// Grounding GP22 at boot selects a hardware bring-up exercise for
// four-wire coil motors wired directly to the shield headers, bypassing
// the step/dir modules. Useful when validating a new board before the
// driver modules are seated.
const coilTestJumper = machine.GP22

func coilTestRequested() bool {
	coilTestJumper.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return !coilTestJumper.Get()
}

// runCoilTest sweeps one revolution back and forth forever. Never
// returns.
func runCoilTest() {
	motor, err := easystepper.New(easystepper.DeviceConfig{
		Pin1: machine.GP10, Pin2: machine.GP11,
		Pin3: machine.GP12, Pin4: machine.GP13,
		StepCount: 200,
		RPM:       60,
		Mode:      easystepper.ModeFour,
	})
	if err != nil {
		flashForever()
	}
	motor.Configure()

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	for {
		led.High()
		motor.Move(200)
		led.Low()
		time.Sleep(500 * time.Millisecond)
		motor.Move(-200)
		time.Sleep(500 * time.Millisecond)
	}
}
