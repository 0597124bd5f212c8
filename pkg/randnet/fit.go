// Package randnet implements the unconstrained maximum-entropy random graph
// that reproduces a degree sequence on average. It provides the negative
// benchmark: the overlap two unrelated networks share by chance.
package randnet

import (
	"context"

	"github.com/ritzau/normlap/pkg/logging"
	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/network"
)

// Prepare builds the fit problem for a reference network. Self-loops are
// removed and nodes left without neighbors are not fitted.
//
// Each iteration updates, from the previous vector only,
//
//	α_i ← α_i · (Σ_j 1/(α_iα_j + 1) − 1/(α_i² + 1)) / k_i
//
// where j runs over all fitted nodes and the second term removes j = i.
func Prepare(reference network.NeighborMap) maxent.Problem {
	simple := reference.WithoutSelfLoops()
	nodes := simple.Nodes()

	if excluded := len(reference) - len(simple); excluded > 0 {
		logging.Debug("excluded nodes without neighbors", "model", "degree", "count", excluded)
	}

	degrees := make([]float64, len(nodes))
	for i, n := range nodes {
		degrees[i] = float64(simple.Degree(n))
	}

	update := func(prev, next []float64) {
		for i, ai := range prev {
			sum := 0.0
			for _, aj := range prev {
				sum += 1 / (ai*aj + 1)
			}
			sum -= 1 / (ai*ai + 1)
			next[i] = ai * sum / degrees[i]
		}
	}

	return maxent.Problem{Nodes: nodes, Update: update}
}

// Fit estimates the alphas of the reference network under the given policy
func Fit(ctx context.Context, reference network.NeighborMap, policy maxent.Policy, opts maxent.Options) (maxent.Result, error) {
	return maxent.Solve(ctx, Prepare(reference), policy, opts)
}
