package core

// RuntimeConfig contains configuration passed to the platform at startup.
// The simulation itself is sized in world units (see config.Config); these
// values describe the terminal it is presented on and the tick cadence.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (default 60)
	Seed     int64 // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// TickMillis returns the fixed simulation step in milliseconds.
func (c RuntimeConfig) TickMillis() int64 {
	if c.TickRate <= 0 {
		return 1000 / 60
	}
	ms := int64(1000 / c.TickRate)
	if ms < 1 {
		return 1
	}
	return ms
}
