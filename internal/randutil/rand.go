// Package randutil builds seeded PRNGs for shuffling and bot choice.
package randutil

import rand "math/rand/v2"

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from a single int64.
// Every shuffle and every seeded bot goes through here so that a match
// replayed with the same seed deals the same cards and makes the same
// choices.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// mix is a splitmix64 finaliser; it spreads low-entropy seeds (small
// integers, sequential room counters) across the full 64-bit space before
// they reach the PCG state.
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
