package randnet

import (
	"context"

	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/network"
	"github.com/ritzau/normlap/pkg/stats"
)

// OverlapStatistic returns the expected overlap between a network drawn from
// alphas and the comparison network, with its standard deviation. Only
// comparison edges can overlap, so only they are evaluated; edges with an
// unfitted end are skipped.
func OverlapStatistic(alphas maxent.Alphas, reference, comparison network.EdgeSet) stats.Benchmark {
	ps := make([]float64, 0, len(comparison))
	for _, e := range comparison.Sorted() {
		if p, ok := maxent.EdgeProbability(e, reference, alphas); ok {
			ps = append(ps, p)
		}
	}
	return stats.FromProbabilities(ps)
}

// TuneStatistic fits the degree sequence of reference and extends the fit
// until its expected overlap with comparison settles
func TuneStatistic(ctx context.Context, reference, comparison []network.Edge, params maxent.TuneParams) (maxent.TuneResult, error) {
	problem := Prepare(network.FromEdges(reference))
	refSet := network.NewEdgeSet(reference)
	compSet := network.NewEdgeSet(comparison)

	step := func(ctx context.Context, start maxent.Alphas, iters int) (maxent.Alphas, stats.Benchmark, error) {
		res, err := maxent.Solve(ctx, problem, maxent.Fixed(iters), maxent.Options{Start: start})
		if err != nil {
			return nil, stats.Benchmark{}, err
		}
		return res.Alphas, OverlapStatistic(res.Alphas, refSet, compSet), nil
	}

	return maxent.Tune(ctx, "degree", step, params)
}
