// Package subnet implements the maximum-entropy model of a degree-preserving
// subnetwork drawn from a pool topology. It provides the positive benchmark:
// the overlap two networks share when both are samples of the same pool.
package subnet

import (
	"context"
	"slices"

	"github.com/ritzau/normlap/pkg/logging"
	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/network"
)

// Prepare builds the fit problem for a reference network inside a pool.
// The fitted domain is the reference network without self-loops. Each
// iteration updates
//
//	α_i ← Σ_{j ∈ pool(i) ∩ domain} 1/(α_j + 1/α_i) / k_i
//
// with α_i taken from the start of the iteration.
func Prepare(pool, reference network.NeighborMap) maxent.Problem {
	poolSimple := pool.WithoutSelfLoops()
	refSimple := reference.WithoutSelfLoops()
	nodes := refSimple.Nodes()

	if excluded := len(reference) - len(refSimple); excluded > 0 {
		logging.Debug("excluded nodes without neighbors", "model", "subnetwork", "count", excluded)
	}

	// Pool neighbors restricted to the domain, as positions in nodes
	adjacency := make([][]int, len(nodes))
	degrees := make([]float64, len(nodes))
	for i, n := range nodes {
		degrees[i] = float64(refSimple.Degree(n))
		for _, m := range poolSimple.Neighbors(n) {
			if j, ok := slices.BinarySearch(nodes, m); ok {
				adjacency[i] = append(adjacency[i], j)
			}
		}
	}

	update := func(prev, next []float64) {
		for i, ai := range prev {
			inv := 1 / ai
			sum := 0.0
			for _, j := range adjacency[i] {
				sum += 1 / (prev[j] + inv)
			}
			next[i] = sum / degrees[i]
		}
	}

	return maxent.Problem{Nodes: nodes, Update: update}
}

// Fit estimates the alphas of the reference network constrained to the pool.
// Use Options.Probes to follow individual nodes.
func Fit(ctx context.Context, pool, reference network.NeighborMap, policy maxent.Policy, opts maxent.Options) (maxent.Result, error) {
	return maxent.Solve(ctx, Prepare(pool, reference), policy, opts)
}
