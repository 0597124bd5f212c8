// Package stats holds the analytic statistics shared by the null models:
// Poisson-binomial benchmarks, z-scores and the normalized overlap score.
package stats

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// NullFloat is a float that may be undefined.
// An undefined value is never coerced to zero; it encodes as JSON null.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Defined wraps a value as a valid NullFloat
func Defined(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// Undefined is the invalid NullFloat
var Undefined = NullFloat{}

// MarshalJSON encodes undefined values as null
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON decodes null as undefined
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Defined(v)
	return nil
}

// String formats with two decimals, or "undefined"
func (n NullFloat) String() string {
	if !n.Valid {
		return "undefined"
	}
	return fmt.Sprintf("%.2f", n.Float64)
}

// Benchmark is the expected overlap under a null model and its standard deviation
type Benchmark struct {
	Mean  float64 `json:"mean"`
	Sigma float64 `json:"sigma"`
}

// FromProbabilities treats each probability as an independent Bernoulli edge
// and returns the mean and standard deviation of their sum.
func FromProbabilities(ps []float64) Benchmark {
	variance := 0.0
	for _, p := range ps {
		variance += p * (1 - p)
	}
	return Benchmark{
		Mean:  floats.Sum(ps),
		Sigma: math.Sqrt(variance),
	}
}

// Survival returns P(Z > z) for a standard normal Z
func Survival(z float64) float64 {
	return distuv.UnitNormal.Survival(z)
}

// ZScore returns (observed - mean) / sigma. It is undefined when sigma is at
// or below floor, so a zero floor only rejects sigma == 0.
func ZScore(observed float64, b Benchmark, floor float64) NullFloat {
	if !(b.Sigma > floor) {
		return Undefined
	}
	return Defined((observed - b.Mean) / b.Sigma)
}

// Distance is |ZScore|, with undefined mapped to +Inf so it ranks last
func Distance(observed float64, b Benchmark, floor float64) float64 {
	z := ZScore(observed, b, floor)
	if !z.Valid {
		return math.Inf(1)
	}
	return math.Abs(z.Float64)
}

// Score places the observed overlap between the negative and positive
// benchmarks and propagates both sigmas:
//
//	score       = (m - b) / (c - b)
//	score_sigma = sqrt((m-c)^2 * σb^2 + (b-c)^2 * σc^2) / (c - b)^2
//
// Both values are undefined when c == b.
func Score(observed float64, negative, positive Benchmark) (score, sigma NullFloat) {
	span := positive.Mean - negative.Mean
	if span == 0 {
		return Undefined, Undefined
	}

	score = Defined((observed - negative.Mean) / span)

	a := (observed - positive.Mean) * negative.Sigma
	b := (negative.Mean - positive.Mean) * positive.Sigma
	sigma = Defined(math.Sqrt(a*a+b*b) / (span * span))

	return score, sigma
}

// MaxRelativeChange returns max_i |next[i] - prev[i]| / prev[i].
// A component that moves away from zero counts as an infinite change;
// one that stays at zero counts as none.
func MaxRelativeChange(prev, next []float64) float64 {
	maxChange := 0.0
	for i := range prev {
		delta := math.Abs(next[i] - prev[i])
		if delta == 0 {
			continue
		}

		change := math.Inf(1)
		if prev[i] != 0 {
			change = delta / math.Abs(prev[i])
		}
		maxChange = math.Max(maxChange, change)
	}
	return maxChange
}
