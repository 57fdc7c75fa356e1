// Command gantryd drives the gantry controller from a host machine.
//
// With --sim it runs the full control loop in-process against simulated
// hardware, reading commands from stdin. With --device it bridges stdin
// and stdout to a controller attached over serial.
package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"gantry/core"
	"gantry/host/serial"
	"gantry/machine"
	"gantry/machine/config"
)

var (
	device  = flag.String("device", "", "serial device of the controller (e.g. /dev/ttyACM0)")
	baud    = flag.Int("baud", 115200, "baud rate (ignored for USB CDC)")
	cfgPath = flag.String("config", "", "machine configuration file (JSON)")
	sim     = flag.Bool("sim", false, "run the control loop in-process against simulated hardware")
	verbose = flag.Bool("verbose", false, "enable debug output on stderr")
)

func main() {
	flag.Parse()

	if *verbose {
		core.SetDebugWriter(func(s string) {
			fmt.Fprintln(os.Stderr, s)
		})
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "gantryd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if *sim {
		return runSim()
	}
	if *device == "" {
		return fmt.Errorf("either --device or --sim is required")
	}
	return runBridge()
}

// runSim hosts the controller locally: simulated pins, real time base,
// commands from stdin, reports to stdout.
func runSim() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gpio := core.NewSimDriver()
	clock := core.NewHostClock()
	backends := func(axis string) core.DriverBackend {
		return &core.SimDriverBackend{}
	}

	m, err := machine.New(cfg, gpio, clock, backends, os.Stdout)
	if err != nil {
		return err
	}
	if err := m.Startup(); err != nil {
		return err
	}
	m.StartReader(os.Stdin)
	return m.Run()
}

// runBridge forwards stdin to an attached controller and echoes its
// reports to stdout.
func runBridge() error {
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	cfg.ReadTimeout = 0 // blocking reads; io.Copy handles EOF

	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	go func() {
		// Controller output ends when the port closes.
		io.Copy(os.Stdout, port)
	}()

	if _, err := io.Copy(port, os.Stdin); err != nil {
		return fmt.Errorf("write to %s: %w", *device, err)
	}
	return port.Flush()
}

func loadConfig() (*machine.Config, error) {
	if *cfgPath != "" {
		return config.LoadFile(*cfgPath)
	}
	return config.Default(), nil
}
