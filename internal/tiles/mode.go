// Package tiles implements the timing and input core of the tile-tapping game:
// two recycling row buffers forming an endless lane, the expected-tap queue,
// hit resolution and the session lifecycle for each mode.
//
// The package has no terminal or audio dependencies. Presentation, sound,
// persistence and localization are reached through small interfaces.
package tiles

import (
	"fmt"
	"strconv"
	"strings"
)

// Mode selects the session rules.
type Mode int

const (
	// ModeFixedTime counts down a configured duration; a miss ends the run.
	ModeFixedTime Mode = iota + 1
	// ModeEndless has no countdown; a miss ends the run.
	ModeEndless
	// ModePractice never ends and computes no rate.
	ModePractice
)

// Modes lists every mode in menu order.
var Modes = []Mode{ModeFixedTime, ModeEndless, ModePractice}

// String returns the stable identifier used in storage and on the command line.
func (m Mode) String() string {
	switch m {
	case ModeFixedTime:
		return "normal"
	case ModeEndless:
		return "endless"
	case ModePractice:
		return "practice"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the defined modes.
func (m Mode) Valid() bool {
	return m >= ModeFixedTime && m <= ModePractice
}

// Code returns the numeric code persisted in preferences.
func (m Mode) Code() string {
	return strconv.Itoa(int(m))
}

// LabelKey returns the localization key of the mode name.
func (m Mode) LabelKey() string {
	return m.String()
}

// Timed reports whether the mode runs the one-second tick.
func (m Mode) Timed() bool {
	return m == ModeFixedTime || m == ModeEndless
}

// BestScoreKey returns the preference key holding the best score,
// or "" for modes without records.
func (m Mode) BestScoreKey() string {
	switch m {
	case ModeFixedTime:
		return "best-score"
	case ModeEndless:
		return "endless-best-score"
	}
	return ""
}

// BestRateKey returns the preference key holding the best tap rate.
func (m Mode) BestRateKey() string {
	switch m {
	case ModeFixedTime:
		return "normal-best-tap-rate"
	case ModeEndless:
		return "endless-best-tap-rate"
	}
	return ""
}

// ParseMode accepts a mode name ("normal", "endless", "practice", with
// "fixed" as an alias) or its numeric code.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "fixed", "fixed-time", "1":
		return ModeFixedTime, nil
	case "endless", "2":
		return ModeEndless, nil
	case "practice", "3":
		return ModePractice, nil
	}
	return 0, fmt.Errorf("tiles: unknown mode %q", s)
}

// State is the session lifecycle phase.
type State int

const (
	// StateIdle waits for the first hit.
	StateIdle State = iota
	// StateRunning has started timing.
	StateRunning
	// StateOver is terminal until restart.
	StateOver
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateOver:
		return "over"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
