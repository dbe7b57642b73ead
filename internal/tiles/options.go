package tiles

import (
	"time"

	"github.com/vovakirdan/tui-tiles/internal/config"
)

// Options are the tunables of a session.
type Options struct {
	Columns         int
	BufferRows      int
	DesktopMaxWidth int
	TouchRows       int

	Duration       time.Duration // Fixed-time run length
	TapDebounce    time.Duration
	MissDelay      time.Duration
	ResizeDebounce time.Duration
	RetryDelay     time.Duration

	Tolerance float64 // Fraction of a tile
}

// DefaultOptions returns options built from the default configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultTilesConfig())
}

// OptionsFromConfig converts the loaded configuration.
func OptionsFromConfig(cfg config.TilesConfig) Options {
	return Options{
		Columns:         cfg.Board.Columns,
		BufferRows:      cfg.Board.BufferRows,
		DesktopMaxWidth: cfg.Board.DesktopMaxWidth,
		TouchRows:       cfg.Board.TouchRows,
		Duration:        cfg.Timing.Duration(),
		TapDebounce:     config.Millis(cfg.Timing.TapDebounceMS),
		MissDelay:       config.Millis(cfg.Timing.MissDelayMS),
		ResizeDebounce:  config.Millis(cfg.Timing.ResizeDebounceMS),
		RetryDelay:      config.Millis(cfg.Timing.RetryDelayMS),
		Tolerance:       cfg.Input.Tolerance,
	}
}

func (o *Options) fillDefaults() {
	d := DefaultOptions()
	if o.Columns <= 0 {
		o.Columns = d.Columns
	}
	if o.BufferRows <= 0 {
		o.BufferRows = d.BufferRows
	}
	if o.TouchRows <= 0 {
		o.TouchRows = d.TouchRows
	}
	if o.Duration <= 0 {
		o.Duration = d.Duration
	}
	if o.TapDebounce < 0 {
		o.TapDebounce = d.TapDebounce
	}
	if o.MissDelay <= 0 {
		o.MissDelay = d.MissDelay
	}
	if o.ResizeDebounce <= 0 {
		o.ResizeDebounce = d.ResizeDebounce
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = d.RetryDelay
	}
	if o.Tolerance < 0 {
		o.Tolerance = d.Tolerance
	}
}
