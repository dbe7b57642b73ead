package config

import (
	_ "embed"
)

//go:embed defaults/tiles.yaml
var defaultTilesYAML []byte

// DefaultTilesConfig returns the default tiles configuration.
func DefaultTilesConfig() TilesConfig {
	return TilesConfig{
		Board: BoardConfig{
			Columns:         4,
			BufferRows:      10,
			DesktopMaxWidth: 632,
			TouchRows:       3,
		},
		Timing: TimingConfig{
			DurationSecs:     20,
			TapDebounceMS:    8,
			MissDelayMS:      500,
			ResizeDebounceMS: 200,
			RetryDelayMS:     1000,
			FrameRate:        60,
		},
		Input: InputConfig{
			Tolerance: 0.1,
			Keys:      "dfjk",
		},
		Audio: AudioConfig{
			Enabled:    true,
			Volume:     0.6,
			SampleRate: 44100,
		},
	}
}
