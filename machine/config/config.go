// Package config loads the machine configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gantry/machine"
)

// Load parses a JSON configuration and fills in defaults.
func Load(data []byte) (*machine.Config, error) {
	var cfg machine.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// LoadFile reads and parses a JSON configuration file.
func LoadFile(path string) (*machine.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Load(data)
}

// applyDefaults fills in missing configuration values.
func applyDefaults(cfg *machine.Config) {
	if cfg.StepsPerMM == 0 {
		cfg.StepsPerMM = 100.0
	}
	if cfg.DefaultFeedrate == 0 {
		cfg.DefaultFeedrate = 100.0
	}
	if cfg.MaxHomingTravelMM == 0 {
		cfg.MaxHomingTravelMM = 350.0
	}

	for name, axis := range cfg.Axes {
		if axis.MaxSpeed == 0 {
			axis.MaxSpeed = 1000.0
		}
		if axis.MaxAccel == 0 {
			axis.MaxAccel = 500.0
		}
		if axis.HomingSpeed == 0 {
			axis.HomingSpeed = 400.0
		}
		if axis.RunCurrentMA == 0 {
			axis.RunCurrentMA = 800
		}
		cfg.Axes[name] = axis
	}

	for name, es := range cfg.Endstops {
		if es.SampleCount == 0 {
			es.SampleCount = 1
		}
		cfg.Endstops[name] = es
	}
}

// Default returns the compiled-in configuration matching the shipped
// hardware: a CNC-shield pin map, 100 steps/mm, active-low endstops,
// shared active-low enable line.
func Default() *machine.Config {
	cfg := &machine.Config{
		StepsPerMM:        100.0,
		DefaultFeedrate:   100.0,
		MaxHomingTravelMM: 350.0,
		Axes: map[string]machine.AxisConfig{
			"X": {
				StepPin:      2,
				DirPin:       5,
				EnablePin:    8,
				InvertEnable: true,
				MaxSpeed:     1000.0,
				MaxAccel:     500.0,
				HomingSpeed:  400.0,
				RunCurrentMA: 800,
			},
			"Y": {
				StepPin:      3,
				DirPin:       6,
				EnablePin:    8,
				InvertEnable: true,
				MaxSpeed:     1000.0,
				MaxAccel:     500.0,
				HomingSpeed:  400.0,
				RunCurrentMA: 800,
			},
		},
		Endstops: map[string]machine.EndstopConfig{
			"X": {Pin: 9},
			"Y": {Pin: 10},
		},
	}
	applyDefaults(cfg)
	return cfg
}
