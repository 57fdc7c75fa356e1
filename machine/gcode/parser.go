// Package gcode parses the motion subset of the command grammar.
//
// The grammar is deliberately permissive by default, matching the front
// end this machine shipped with: malformed numeric tokens read as 0.0
// and unknown parameters are ignored. Strict mode turns both into parse
// errors for operators who prefer a diagnostic over silent zeros.
package gcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrParse is reported in strict mode for malformed or unsupported
// motion lines. The command is discarded; processing continues.
var ErrParse = errors.New("gcode: malformed command line")

// MotionTag is the literal a line must start with to be recognized as a
// motion command. Matching is case-sensitive.
const MotionTag = "G1"

// Options control parsing behavior.
type Options struct {
	// Strict surfaces malformed numerics and unsupported parameters as
	// ErrParse instead of reading them as 0.0 / ignoring them.
	Strict bool

	// DefaultFeedrate is used when the F parameter is absent.
	DefaultFeedrate float64
}

// MotionCommand is a parsed motion line. Positions are in millimeters;
// the feedrate is applied as a flat speed in step units per time unit.
// HasX/HasY record whether the axis parameter was present, for callers
// that opt out of the move-absent-axes-to-zero compatibility behavior.
type MotionCommand struct {
	X, Y     float64
	HasX     bool
	HasY     bool
	Feedrate float64
}

// ParseMotion parses a single trimmed line. It returns (nil, nil) when
// the line is not a motion command at all: such lines are dropped with
// no feedback, per the machine's original external contract.
func ParseMotion(line string, opts Options) (*MotionCommand, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != MotionTag {
		return nil, nil
	}

	cmd := &MotionCommand{Feedrate: opts.DefaultFeedrate}
	for _, tok := range fields[1:] {
		letter := tok[0]
		value, err := strconv.ParseFloat(tok[1:], 64)
		if err != nil {
			if opts.Strict {
				return nil, fmt.Errorf("%w: bad %c value %q", ErrParse, letter, tok)
			}
			// Numeric-conversion failure is silently swallowed.
			value = 0
		}

		switch letter {
		case 'X':
			cmd.X = value
			cmd.HasX = true
		case 'Y':
			cmd.Y = value
			cmd.HasY = true
		case 'F':
			cmd.Feedrate = value
		default:
			if opts.Strict {
				return nil, fmt.Errorf("%w: unsupported parameter %q", ErrParse, tok)
			}
			// Unknown parameters are dropped.
		}
	}

	return cmd, nil
}
