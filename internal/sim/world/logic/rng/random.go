// Package rng is the deterministic random stream used by world generation.
// Streams are always passed explicitly; there is no package-level state.
package rng

import "math"

const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
	outputMix     uint32 = 2147483647
)

type Random struct {
	state uint32
}

func New(seed uint32) *Random {
	return &Random{state: seed}
}

func (r *Random) NextU32() uint32 {
	r.state = r.state*lcgMultiplier + lcgIncrement
	x := r.state
	return ((x >> 16) ^ x) * outputMix
}

// NextU32In returns a value in [lo, hi). An empty range yields lo.
func (r *Random) NextU32In(lo, hi uint32) uint32 {
	v := r.NextU32()
	if hi <= lo {
		return lo
	}
	return v%(hi-lo) + lo
}

// NextIntIn is NextU32In for non-negative int bounds.
func (r *Random) NextIntIn(lo, hi int) int {
	if lo < 0 {
		lo = 0
	}
	if hi < lo {
		hi = lo
	}
	return int(r.NextU32In(uint32(lo), uint32(hi)))
}

// NextF64 returns a value in [0, 1].
func (r *Random) NextF64() float64 {
	return float64(r.NextU32()) / float64(math.MaxUint32)
}

func (r *Random) NextF64In(lo, hi float64) float64 {
	return r.NextF64()*(hi-lo) + lo
}

// NextBinomial approximates a Binomial(n, p) draw by summing geometric
// waiting times. Probabilities at the extremes short-circuit.
func (r *Random) NextBinomial(n int, p float64) int {
	if p >= 0.99 {
		return n
	}
	if p <= 0.01 || n <= 0 {
		return 0
	}

	remaining := n
	count := 0
	denom := math.Log(1 - p)
	for {
		u := r.NextF64()
		if u <= 0 {
			return count
		}
		wait := int(math.Ceil(math.Log(u) / denom))
		if wait < 1 {
			wait = 1
		}
		if wait > remaining {
			return count
		}
		count++
		remaining -= wait
	}
}

// NextBinomialBetween draws from [min, max-1] skewed so the mean sits near
// average. Requires min <= average <= max.
func (r *Random) NextBinomialBetween(min int, average float64, max int) int {
	if min >= max {
		return min
	}
	n := max - min - 1
	if n <= 0 {
		return min
	}
	p := (average - float64(min)) / float64(n)
	return r.NextBinomial(n, p) + min
}

// WeightedIndex picks an index with probability proportional to its weight.
// Returns -1 for an empty slice.
func (r *Random) WeightedIndex(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	selected := r.NextF64In(0, total)
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if cumulative > selected {
			return i
		}
	}
	return len(weights) - 1
}

// Pick returns a uniformly chosen element of s. s must not be empty.
func Pick[T any](r *Random, s []T) T {
	return s[r.NextU32In(0, uint32(len(s)))]
}
