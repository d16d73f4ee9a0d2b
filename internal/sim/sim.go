// Package sim implements the columnar batch-simulation core: ten independent
// struct-of-arrays containers (population, faith, combat, economy,
// environment, movement, divine, psyche, tech, end-game), each with a fixed
// set of deterministic batch and scalar transforms.
//
// Containers are allocated once with a fixed count and mutated in place; the
// transforms never resize columns, never allocate, and never panic. Scalar
// operations silently skip out-of-range indices. Every quantity with an
// unbounded growth term is clamped after update, so no transform produces
// Inf or NaN for legal inputs.
package sim

import "math"

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sqrt32(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

func exp32(x float32) float32 {
	return float32(math.Exp(float64(x)))
}

func log32(x float32) float32 {
	return float32(math.Log(float64(x)))
}

func floor32(x float32) float32 {
	return float32(math.Floor(float64(x)))
}

func atan232(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}

// invSqrt32 is the Quake-style fast inverse square root with one
// Newton-Raphson refinement. Kept for parity with the flocking math, where
// the approximation error is irrelevant and the branch-free form is cheap.
func invSqrt32(x float32) float32 {
	i := math.Float32bits(x)
	i = 0x5f3759df - (i >> 1)
	y := math.Float32frombits(i)
	return y * (1.5 - 0.5*x*y*y)
}

// lcgNext advances a linear-congruential generator state.
func lcgNext(s uint32) uint32 {
	return s*1664525 + 1013904223
}

// lcgFloat advances the state and returns a float32 in [0, 1).
func lcgFloat(s *uint32) float32 {
	*s = lcgNext(*s)
	return float32(*s>>8) / float32(1<<24)
}

// drawSeed derives a default per-index draw state. Knuth's multiplicative
// constant spreads consecutive indices across the state space.
func drawSeed(i int, salt uint32) uint32 {
	s := uint32(i+1) * 2654435761
	s ^= salt
	if s == 0 {
		s = 1
	}
	return s
}

// minCount clamps cross-container iteration to the smaller count.
func minCount(a, b int) int {
	if a < b {
		return a
	}
	return b
}
