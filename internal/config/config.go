// Package config provides YAML-based configuration loading for the tiles game.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Limits accepted for user-adjustable settings.
const (
	MinColumns     = 1
	MaxColumns     = 8
	MinDurationSec = 1
	MaxDurationSec = 60
)

var (
	// ErrInvalidColumns is returned when a column count is outside [MinColumns, MaxColumns].
	ErrInvalidColumns = errors.New("config: column count out of range")
	// ErrInvalidDuration is returned when a duration is outside [MinDurationSec, MaxDurationSec].
	ErrInvalidDuration = errors.New("config: duration out of range")
)

// TilesConfig contains all configuration for the tiles game.
type TilesConfig struct {
	Board  BoardConfig  `yaml:"board"`
	Timing TimingConfig `yaml:"timing"`
	Input  InputConfig  `yaml:"input"`
	Audio  AudioConfig  `yaml:"audio"`
}

// BoardConfig defines the lane layout.
type BoardConfig struct {
	Columns         int `yaml:"columns"`
	BufferRows      int `yaml:"buffer_rows"`       // Cells per layer = (columns+4) * buffer_rows
	DesktopMaxWidth int `yaml:"desktop_max_width"` // Lane width cap on desktop-class viewports
	TouchRows       int `yaml:"touch_rows"`        // Height of the strike zone in tiles
}

// TimingConfig defines session and input timings.
type TimingConfig struct {
	DurationSecs     int `yaml:"duration_secs"`      // Fixed-time run length
	TapDebounceMS    int `yaml:"tap_debounce_ms"`    // Minimum gap between resolved taps
	MissDelayMS      int `yaml:"miss_delay_ms"`      // Miss indicator time before game over
	ResizeDebounceMS int `yaml:"resize_debounce_ms"` // Trailing debounce for viewport resizes
	RetryDelayMS     int `yaml:"retry_delay_ms"`     // Delay before retrying a failed restart
	FrameRate        int `yaml:"frame_rate"`         // UI frames per second
}

// InputConfig defines hit tolerance and key bindings.
type InputConfig struct {
	Tolerance float64 `yaml:"tolerance"` // Horizontal slack as a fraction of tile size
	Keys      string  `yaml:"keys"`      // One key per column, left to right
}

// AudioConfig defines effect playback.
type AudioConfig struct {
	Enabled    bool       `yaml:"enabled"`
	Volume     float64    `yaml:"volume"` // 0.0 - 1.0
	SampleRate int        `yaml:"sample_rate"`
	Files      SoundFiles `yaml:"files"`
}

// SoundFiles optionally replaces the synthesized effects with WAV files.
type SoundFiles struct {
	Tap string `yaml:"tap"`
	Err string `yaml:"err"`
	End string `yaml:"end"`
}

// Duration returns the fixed-time run length.
func (t TimingConfig) Duration() time.Duration {
	return time.Duration(t.DurationSecs) * time.Second
}

// Millis converts a millisecond setting to a time.Duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// ValidateColumns reports whether n is an accepted column count.
func ValidateColumns(n int) error {
	if n < MinColumns || n > MaxColumns {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidColumns, n, MinColumns, MaxColumns)
	}
	return nil
}

// ValidateDuration reports whether secs is an accepted fixed-time duration.
func ValidateDuration(secs int) error {
	if secs < MinDurationSec || secs > MaxDurationSec {
		return fmt.Errorf("%w: %ds (want %d-%d)", ErrInvalidDuration, secs, MinDurationSec, MaxDurationSec)
	}
	return nil
}

// Normalize replaces missing or out-of-range values with defaults.
// Loaded YAML files may set only a subset of fields.
func (c *TilesConfig) Normalize() {
	d := DefaultTilesConfig()

	if ValidateColumns(c.Board.Columns) != nil {
		c.Board.Columns = d.Board.Columns
	}
	if c.Board.BufferRows <= 0 {
		c.Board.BufferRows = d.Board.BufferRows
	}
	if c.Board.DesktopMaxWidth <= 0 {
		c.Board.DesktopMaxWidth = d.Board.DesktopMaxWidth
	}
	if c.Board.TouchRows <= 0 {
		c.Board.TouchRows = d.Board.TouchRows
	}

	if ValidateDuration(c.Timing.DurationSecs) != nil {
		c.Timing.DurationSecs = d.Timing.DurationSecs
	}
	if c.Timing.TapDebounceMS < 0 {
		c.Timing.TapDebounceMS = d.Timing.TapDebounceMS
	}
	if c.Timing.MissDelayMS <= 0 {
		c.Timing.MissDelayMS = d.Timing.MissDelayMS
	}
	if c.Timing.ResizeDebounceMS <= 0 {
		c.Timing.ResizeDebounceMS = d.Timing.ResizeDebounceMS
	}
	if c.Timing.RetryDelayMS <= 0 {
		c.Timing.RetryDelayMS = d.Timing.RetryDelayMS
	}
	if c.Timing.FrameRate <= 0 {
		c.Timing.FrameRate = d.Timing.FrameRate
	}

	if c.Input.Tolerance < 0 || c.Input.Tolerance >= 0.5 {
		c.Input.Tolerance = d.Input.Tolerance
	}
	if c.Input.Keys == "" {
		c.Input.Keys = d.Input.Keys
	}

	if c.Audio.Volume <= 0 || c.Audio.Volume > 1 {
		c.Audio.Volume = d.Audio.Volume
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = d.Audio.SampleRate
	}
}
