package maxent

import (
	"context"
	"fmt"
	"math"

	"github.com/ritzau/normlap/pkg/logging"
	"github.com/ritzau/normlap/pkg/stats"
)

// TuneParams controls how long a fit is extended while its overlap
// statistic keeps moving
type TuneParams struct {
	ItersStart    int     `koanf:"iters_start" json:"iters_start"`
	ChangeLimit   float64 `koanf:"change_limit" json:"change_limit"`
	IterSpacing   int     `koanf:"iter_spacing" json:"iter_spacing"`
	MaxIterations int     `koanf:"max_iterations" json:"max_iterations"`
}

// Budget is the hard upper bound on the total number of iterations
func (p TuneParams) Budget() int {
	return max(p.MaxIterations, 0) + max(p.IterSpacing, 0)
}

func (p TuneParams) String() string {
	return fmt.Sprintf("start=%d change_limit=%g spacing=%d max=%d",
		p.ItersStart, p.ChangeLimit, p.IterSpacing, p.MaxIterations)
}

// Continuation runs iters more iterations from start (nil means the uniform
// vector) and evaluates the statistic on the resulting alphas
type Continuation func(ctx context.Context, start Alphas, iters int) (Alphas, stats.Benchmark, error)

// TuneResult is the last evaluated statistic of a tuned fit
type TuneResult struct {
	Benchmark  stats.Benchmark `json:"benchmark"`
	Alphas     Alphas          `json:"-"`
	Iterations int             `json:"iterations"`
	Converged  bool            `json:"converged"`
}

// Tune fits ItersStart iterations, then keeps extending the same fit by
// IterSpacing iterations until the mean moves less than ChangeLimit between
// two evaluations. The total never exceeds MaxIterations + IterSpacing.
// Running out of budget is reported through Converged, not as an error.
func Tune(ctx context.Context, name string, step Continuation, params TuneParams) (TuneResult, error) {
	budget := params.Budget()
	total := min(max(params.ItersStart, 0), budget)

	alphas, bench, err := step(ctx, nil, total)
	if err != nil {
		return TuneResult{}, fmt.Errorf("%s: initial fit: %w", name, err)
	}

	res := TuneResult{Benchmark: bench, Alphas: alphas, Iterations: total}

	for params.IterSpacing > 0 && total < params.MaxIterations {
		alphas, bench, err = step(ctx, res.Alphas, params.IterSpacing)
		if err != nil {
			return TuneResult{}, fmt.Errorf("%s: extending fit past %d iterations: %w", name, total, err)
		}
		total += params.IterSpacing

		change := math.Abs(bench.Mean - res.Benchmark.Mean)
		res = TuneResult{Benchmark: bench, Alphas: alphas, Iterations: total}

		logging.DebugContext(ctx, "statistic extended",
			"model", name,
			"iterations", total,
			"mean", bench.Mean,
			"change", change)

		if change < params.ChangeLimit {
			res.Converged = true
			break
		}
	}

	if !res.Converged {
		logging.WarnContext(ctx, "statistic did not settle within budget",
			"model", name,
			"iterations", res.Iterations,
			"params", params.String())
	}

	return res, nil
}
