// Package sampler decides which operations get timed.
package sampler

import "math"

// Sampler selects a deterministic, evenly spaced fraction of
// operations for timing. Selection depends only on the operation
// index, so repeated runs sample identical sets and workers need no
// shared random source.
type Sampler struct {
	interval int
}

// New builds a sampler for the given rate. rate >= 1 samples every
// operation, rate <= 0 samples none, and anything between samples
// every round(1/rate)-th operation.
func New(rate float64) Sampler {
	switch {
	case rate >= 1:
		return Sampler{interval: 1}
	case rate <= 0:
		return Sampler{interval: 0}
	default:
		return Sampler{interval: int(math.Round(1 / rate))}
	}
}

// Sample reports whether the operation at index should be timed.
func (s Sampler) Sample(index int) bool {
	return s.interval > 0 && index%s.interval == 0
}
