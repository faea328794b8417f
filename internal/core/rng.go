package core

import "math"

// RNG is a deterministic pseudo-random number generator.
// Uses a 64-bit LCG so a session can be replayed from its seed, and its
// state can be captured in snapshots.
type RNG struct {
	state uint64
}

// NewRNG creates a new RNG with the given seed. A zero seed is remapped to 1.
func NewRNG(seed int64) *RNG {
	s := uint64(seed) //#nosec G115 -- intentional conversion for RNG seeding
	if s == 0 {
		s = 1
	}
	return &RNG{state: s}
}

// Next generates the next random uint64.
func (r *RNG) Next() uint64 {
	r.state = r.state*6364136223846793005 + 1442695040888963407
	return r.state
}

// Intn returns a random int in [0, n).
func (r *RNG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int((r.Next() >> 11) % uint64(n)) //#nosec G115 -- n is always positive
}

// Float64 returns a random float64 in [0, 1).
func (r *RNG) Float64() float64 {
	// Top 53 bits give a uniformly spaced mantissa.
	return float64(r.Next()>>11) / (1 << 53)
}

// Uniform returns a random float64 in [lo, hi).
func (r *RNG) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*r.Float64()
}

// Angle returns a random angle in [0, 2π).
func (r *RNG) Angle() float64 {
	return r.Uniform(0, 2*math.Pi)
}

// State returns the internal generator state.
func (r *RNG) State() uint64 {
	return r.state
}

// Restore sets the internal generator state, e.g. from a snapshot.
func (r *RNG) Restore(state uint64) {
	r.state = state
}
