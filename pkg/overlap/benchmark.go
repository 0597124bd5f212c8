package overlap

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ritzau/normlap/pkg/logging"
	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/network"
	"github.com/ritzau/normlap/pkg/randnet"
	"github.com/ritzau/normlap/pkg/stats"
	"github.com/ritzau/normlap/pkg/subnet"
)

// Candidate is the benchmark obtained in one direction
type Candidate struct {
	Direction Direction         `json:"direction"`
	Result    maxent.TuneResult `json:"result"`
	// Distance is |observed - mean| / sigma, +Inf when sigma is undefined
	Distance float64 `json:"-"`
}

// BenchmarkResult is the selected benchmark together with both candidates
type BenchmarkResult struct {
	stats.Benchmark
	Selected   Direction         `json:"selected"`
	Candidates [2]Candidate      `json:"candidates"`
	Params     maxent.TuneParams `json:"params"`
}

// Converged reports whether the selected direction settled within budget
func (r BenchmarkResult) Converged() bool {
	return r.Candidates[r.Selected].Result.Converged
}

type tuneFunc func(ctx context.Context, reference, comparison []network.Edge) (maxent.TuneResult, error)

// NegativeBenchmark fits the degree model on each network, measures it
// against the other, and keeps the direction closest to the observed overlap
func (c *Comparison[N]) NegativeBenchmark(ctx context.Context, params maxent.TuneParams) (BenchmarkResult, error) {
	tune := func(ctx context.Context, reference, comparison []network.Edge) (maxent.TuneResult, error) {
		return randnet.TuneStatistic(ctx, reference, comparison, params)
	}

	res, err := c.benchmark(ctx, "negative", tune, params)
	if err != nil {
		return BenchmarkResult{}, err
	}

	c.mu.Lock()
	c.negative = &res
	c.mu.Unlock()
	return res, nil
}

// PositiveBenchmark fits the subnetwork model of each network inside the
// pool, measures it against the other, and keeps the closest direction
func (c *Comparison[N]) PositiveBenchmark(ctx context.Context, params maxent.TuneParams) (BenchmarkResult, error) {
	tune := func(ctx context.Context, reference, comparison []network.Edge) (maxent.TuneResult, error) {
		return subnet.TuneStatistic(ctx, c.pool, reference, comparison, params)
	}

	res, err := c.benchmark(ctx, "positive", tune, params)
	if err != nil {
		return BenchmarkResult{}, err
	}

	c.mu.Lock()
	c.positive = &res
	c.mu.Unlock()
	return res, nil
}

func (c *Comparison[N]) benchmark(ctx context.Context, name string, tune tuneFunc, params maxent.TuneParams) (BenchmarkResult, error) {
	logging.InfoContext(ctx, "computing benchmark", "benchmark", name, "params", params.String())

	var candidates [2]Candidate
	g, gctx := errgroup.WithContext(ctx)

	for _, d := range []Direction{AToB, BToA} {
		g.Go(func() error {
			reference, comparison := c.a, c.b
			if d == BToA {
				reference, comparison = c.b, c.a
			}

			res, err := tune(gctx, reference, comparison)
			if err != nil {
				return fmt.Errorf("%s benchmark %s: %w", name, d, err)
			}

			candidates[d] = Candidate{
				Direction: d,
				Result:    res,
				Distance:  stats.Distance(float64(c.observed), res.Benchmark, c.opts.sigmaFloor),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BenchmarkResult{}, err
	}

	// Ties and two undefined candidates fall through to B->A
	selected := BToA
	if candidates[AToB].Distance < candidates[BToA].Distance {
		selected = AToB
	}

	res := BenchmarkResult{
		Benchmark:  candidates[selected].Result.Benchmark,
		Selected:   selected,
		Candidates: candidates,
		Params:     params,
	}

	logging.InfoContext(ctx, "benchmark selected",
		"benchmark", name,
		"direction", selected.String(),
		"mean", res.Mean,
		"sigma", res.Sigma,
		"iterations", candidates[selected].Result.Iterations)

	return res, nil
}
