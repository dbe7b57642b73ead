package core

// RuntimeConfig contains configuration passed to the game at initialization.
// The platform layer fills it from the terminal (or SSH PTY) size.
type RuntimeConfig struct {
	ScreenW   int   // Screen width in characters
	ScreenH   int   // Screen height in characters
	FrameRate int   // Frames per second driving the scheduler
	Seed      int64 // RNG seed for the tile sequence
	Desktop   bool  // Desktop-class input (caps the lane width)
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:   80,
		ScreenH:   24,
		FrameRate: 60,
		Seed:      0, // 0 means use current time in platform layer
		Desktop:   true,
	}
}
