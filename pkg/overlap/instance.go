package overlap

import (
	"context"
	"math/rand/v2"

	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/network"
	"github.com/ritzau/normlap/pkg/randnet"
	"github.com/ritzau/normlap/pkg/subnet"
)

// NegativeInstance samples one random graph with the expected degree
// sequence of the network named by d. Self-loops of that network are kept.
func (c *Comparison[N]) NegativeInstance(ctx context.Context, d Direction, policy maxent.Policy, src rand.Source) ([][2]N, error) {
	_, neighbors, err := c.reference(d)
	if err != nil {
		return nil, err
	}

	res, err := randnet.Fit(ctx, neighbors, policy, maxent.Options{})
	if err != nil {
		return nil, err
	}

	selfLoops := neighbors.SelfLoopNodes()
	m := randnet.ConnectionMatrix(res.Alphas, selfLoops)
	return c.index.Pairs(randnet.Sample(m, selfLoops, src)), nil
}

// PositiveInstance samples one subnetwork of the pool with the expected
// degree sequence of the network named by d
func (c *Comparison[N]) PositiveInstance(ctx context.Context, d Direction, policy maxent.Policy, src rand.Source) ([][2]N, error) {
	edges, neighbors, err := c.reference(d)
	if err != nil {
		return nil, err
	}

	res, err := subnet.Fit(ctx, network.FromEdges(c.pool), neighbors, policy, maxent.Options{})
	if err != nil {
		return nil, err
	}

	p := subnet.Probability(c.pool, network.NewEdgeSet(edges), res.Alphas)
	return c.index.Pairs(subnet.Sample(p, src)), nil
}
