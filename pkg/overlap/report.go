package overlap

import (
	"context"

	"github.com/ritzau/normlap/pkg/logging"
	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/stats"
)

// Report is the result of a comparison. Labels and Values expose the nine
// headline fields in their fixed order.
type Report struct {
	Observed   int             `json:"observed"`
	NegMean    float64         `json:"neg_mean"`
	NegSigma   float64         `json:"neg_sigma"`
	PNeg       stats.NullFloat `json:"p_neg"`
	PosMean    float64         `json:"pos_mean"`
	PosSigma   float64         `json:"pos_sigma"`
	PPos       stats.NullFloat `json:"p_pos"`
	Score      stats.NullFloat `json:"score"`
	ScoreSigma stats.NullFloat `json:"score_sigma"`

	Negative     BenchmarkResult `json:"negative"`
	Positive     BenchmarkResult `json:"positive"`
	DefaultsUsed []string        `json:"defaults_used,omitempty"`
}

var labels = []string{
	"Observed overlap",
	"Neg_mean",
	"Neg_sigma",
	"Neg_p",
	"Pos_mean",
	"Pos_sigma",
	"Pos_p",
	"Normlap",
	"Normlap_sigma",
}

// Labels names the fields returned by Values
func (r Report) Labels() []string {
	return append([]string(nil), labels...)
}

// Values returns the nine headline fields in order
func (r Report) Values() []stats.NullFloat {
	return []stats.NullFloat{
		stats.Defined(float64(r.Observed)),
		stats.Defined(r.NegMean),
		stats.Defined(r.NegSigma),
		r.PNeg,
		stats.Defined(r.PosMean),
		stats.Defined(r.PosSigma),
		r.PPos,
		r.Score,
		r.ScoreSigma,
	}
}

// Score combines both computed benchmarks into a report. It fails with
// ErrNegativeNotComputed or ErrPositiveNotComputed if either is missing.
func (c *Comparison[N]) Score() (Report, error) {
	c.mu.Lock()
	negative, positive := c.negative, c.positive
	c.mu.Unlock()

	if negative == nil {
		return Report{}, ErrNegativeNotComputed
	}
	if positive == nil {
		return Report{}, ErrPositiveNotComputed
	}

	return c.report(*negative, *positive), nil
}

func (c *Comparison[N]) report(negative, positive BenchmarkResult) Report {
	observed := float64(c.observed)
	floor := c.opts.sigmaFloor

	r := Report{
		Observed: c.observed,
		NegMean:  negative.Mean,
		NegSigma: negative.Sigma,
		PosMean:  positive.Mean,
		PosSigma: positive.Sigma,
		Negative: negative,
		Positive: positive,
	}

	if z := stats.ZScore(observed, negative.Benchmark, floor); z.Valid {
		r.PNeg = stats.Defined(stats.Survival(z.Float64))
	}
	if z := stats.ZScore(observed, positive.Benchmark, floor); z.Valid {
		r.PPos = stats.Defined(1 - stats.Survival(z.Float64))
	}
	r.Score, r.ScoreSigma = stats.Score(observed, negative.Benchmark, positive.Benchmark)

	return r
}

// ScoreWithDefaults computes any missing benchmark with the default
// parameters, logs that it did so, and then scores
func (c *Comparison[N]) ScoreWithDefaults(ctx context.Context) (Report, error) {
	c.mu.Lock()
	needNegative, needPositive := c.negative == nil, c.positive == nil
	c.mu.Unlock()

	var defaults []string
	if needNegative {
		logging.WarnContext(ctx, "negative benchmark not computed, using defaults",
			"params", DefaultNegativeParams.String())
		if _, err := c.NegativeBenchmark(ctx, DefaultNegativeParams); err != nil {
			return Report{}, err
		}
		defaults = append(defaults, "negative")
	}
	if needPositive {
		logging.WarnContext(ctx, "positive benchmark not computed, using defaults",
			"params", DefaultPositiveParams.String())
		if _, err := c.PositiveBenchmark(ctx, DefaultPositiveParams); err != nil {
			return Report{}, err
		}
		defaults = append(defaults, "positive")
	}

	r, err := c.Score()
	if err != nil {
		return Report{}, err
	}
	r.DefaultsUsed = defaults
	return r, nil
}

// Run computes both benchmarks with the given parameters and scores
func (c *Comparison[N]) Run(ctx context.Context, negative, positive maxent.TuneParams) (Report, error) {
	ctx = logging.EnsureRunID(ctx)

	if _, err := c.NegativeBenchmark(ctx, negative); err != nil {
		return Report{}, err
	}
	if _, err := c.PositiveBenchmark(ctx, positive); err != nil {
		return Report{}, err
	}
	return c.Score()
}
