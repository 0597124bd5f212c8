package subnet

import (
	"context"
	"math/rand/v2"

	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/network"
	"github.com/ritzau/normlap/pkg/stats"
)

// Probabilities maps pool edges to their connection probability. An edge
// with an unfitted end is absent, never zero.
type Probabilities map[network.Edge]float64

// Probability evaluates every pool edge under the fitted alphas
func Probability(pool []network.Edge, reference network.EdgeSet, alphas maxent.Alphas) Probabilities {
	probs := make(Probabilities, len(pool))
	for _, e := range pool {
		e = network.NewEdge(e.U, e.V)
		if p, ok := maxent.EdgeProbability(e, reference, alphas); ok {
			probs[e] = p
		}
	}
	return probs
}

// Edges returns the mapped edges in canonical order
func (p Probabilities) Edges() []network.Edge {
	set := make(network.EdgeSet, len(p))
	for e := range p {
		set[e] = struct{}{}
	}
	return set.Sorted()
}

// Sample draws one subnetwork. Edges are visited in canonical order and kept
// when their probability exceeds a uniform draw in [0,1).
func Sample(p Probabilities, src rand.Source) []network.Edge {
	draw := maxent.Uniform01(src)

	var edges []network.Edge
	for _, e := range p.Edges() {
		if p[e] > draw() {
			edges = append(edges, e)
		}
	}
	return edges
}

// OverlapStatistic returns the expected overlap between a sampled subnetwork
// and the comparison network, with its standard deviation
func OverlapStatistic(p Probabilities, comparison network.EdgeSet) stats.Benchmark {
	ps := make([]float64, 0, len(comparison))
	for _, e := range comparison.Sorted() {
		if prob, ok := p[e]; ok {
			ps = append(ps, prob)
		}
	}
	return stats.FromProbabilities(ps)
}

// TuneStatistic fits the degree sequence of reference inside pool and
// extends the fit until the expected overlap with comparison settles.
// The pool is used as given; callers choose its default.
func TuneStatistic(ctx context.Context, pool, reference, comparison []network.Edge, params maxent.TuneParams) (maxent.TuneResult, error) {
	problem := Prepare(network.FromEdges(pool), network.FromEdges(reference))
	refSet := network.NewEdgeSet(reference)
	compSet := network.NewEdgeSet(comparison)

	step := func(ctx context.Context, start maxent.Alphas, iters int) (maxent.Alphas, stats.Benchmark, error) {
		res, err := maxent.Solve(ctx, problem, maxent.Fixed(iters), maxent.Options{Start: start})
		if err != nil {
			return nil, stats.Benchmark{}, err
		}
		return res.Alphas, OverlapStatistic(Probability(pool, refSet, res.Alphas), compSet), nil
	}

	return maxent.Tune(ctx, "subnetwork", step, params)
}
