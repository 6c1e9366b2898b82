// Package randutil derives reproducible random streams for games, dealers and
// simulation workers.
package randutil

import rand "math/rand/v2"

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Stream labels keep the engine's shell draws and the dealer's tier draws on
// separate sequences even when they share a game seed.
const (
	StreamEngine uint64 = iota + 1
	StreamDealer
	StreamAgent
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Derive returns an independent stream for (seed, stream). Two calls with the
// same arguments produce identical sequences; different stream labels do not
// overlap in practice.
func Derive(seed int64, stream uint64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u^mix(stream)), mix(u+goldenRatio64*(stream+1))))
}

// GameSeed spreads per-game seeds so that neighbouring game indices do not
// produce correlated streams.
func GameSeed(base int64, game int) int64 {
	return int64(mix(uint64(base) + uint64(game)*goldenRatio64))
}

// Chance reports true with probability p.
func Chance(rng *rand.Rand, p float64) bool {
	switch {
	case p <= 0:
		return false
	case p >= 1:
		return true
	}
	return rng.Float64() < p
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
