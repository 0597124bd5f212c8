package maxent

import "math/rand/v2"

// Uniform01 returns a generator of uniform draws in [0, 1) from src.
// A nil source uses the process-wide generator.
func Uniform01(src rand.Source) func() float64 {
	if src == nil {
		return rand.Float64
	}
	return rand.New(src).Float64
}
