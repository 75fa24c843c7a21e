// Package engine provides the deterministic random stream and the
// simulation build version.
//
// Exactly one Rand instance exists per simulation run. It is advanced
// only by the step function, in a fixed call order (wave-spawn rolls,
// then targeting tie-breaks, then crit/status rolls), so two engines
// fed the same seed and command log draw the identical sequence.
package engine

import "github.com/emberhold/fortress-replay-go/internal/fixed"

// seedFallback replaces a zero seed; xorshift32 has an all-zero fixed
// point and would emit zeros forever.
const seedFallback uint32 = 0x9E3779B9

// Rand is a xorshift32 generator. Not cryptographically secure; the
// anti-forgery guarantee comes from replay, not from stream secrecy.
type Rand struct {
	state uint32
}

// NewRand returns a generator seeded from the run seed.
func NewRand(seed uint32) *Rand {
	if seed == 0 {
		seed = seedFallback
	}
	return &Rand{state: seed}
}

// Uint32 advances the stream and returns the next raw value.
func (r *Rand) Uint32() uint32 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Intn returns a value in [0, n). n <= 0 yields 0 without advancing
// the stream, so malformed callers cannot desynchronize two engines
// that agree on n.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Uint32() % uint32(n))
}

// Range returns a value in [lo, hi] inclusive.
func (r *Rand) Range(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// Fixed returns a uniform fixed-point value in [0, One).
func (r *Rand) Fixed() fixed.Value {
	return fixed.Value(r.Uint32() & 0xFFFF)
}

// Chance consumes one draw and reports whether it fell below p, where
// p is a fixed-point probability in [0, One].
func (r *Rand) Chance(p fixed.Value) bool {
	return r.Fixed() < p
}

// State exposes the current stream position for canonical hashing.
func (r *Rand) State() uint32 {
	return r.state
}
