package subnet

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/network"
)

func edges(pairs ...[2]int64) []network.Edge {
	out := make([]network.Edge, len(pairs))
	for i, p := range pairs {
		out[i] = network.NewEdge(p[0], p[1])
	}
	return out
}

func complete(n int64) []network.Edge {
	var out []network.Edge
	for i := int64(0); i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, network.NewEdge(i, j))
		}
	}
	return out
}

func cycle(n int64) []network.Edge {
	var out []network.Edge
	for i := int64(0); i < n; i++ {
		out = append(out, network.NewEdge(i, (i+1)%n))
	}
	return out
}

func TestFitContinuationMatchesDirect(t *testing.T) {
	poolEdges := edges([2]int64{1, 2}, [2]int64{1, 3}, [2]int64{1, 4}, [2]int64{2, 3}, [2]int64{3, 4}, [2]int64{4, 5}, [2]int64{2, 5})
	pool := network.FromEdges(poolEdges)
	ref := network.FromEdges(edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{4, 5}))
	ctx := context.Background()

	for _, n := range []int{0, 3, 20} {
		half, err := Fit(ctx, pool, ref, maxent.Fixed(n), maxent.Options{})
		if err != nil {
			t.Fatal(err)
		}
		cont, err := Fit(ctx, pool, ref, maxent.Fixed(n), maxent.Options{Start: half.Alphas})
		if err != nil {
			t.Fatal(err)
		}
		direct, err := Fit(ctx, pool, ref, maxent.Fixed(2*n), maxent.Options{})
		if err != nil {
			t.Fatal(err)
		}

		for node, want := range direct.Alphas {
			if got := cont.Alphas[node]; got != want {
				t.Errorf("n=%d alpha[%d]: %v, want %v", n, node, got, want)
			}
		}
	}
}

func TestFitRegularInCompletePool(t *testing.T) {
	// Degree 2 in a complete pool of 6 settles where 5/(α+1/α) = 2
	pool := network.FromEdges(complete(6))
	ref := network.FromEdges(cycle(6))

	res, err := Fit(context.Background(), pool, ref, maxent.Adaptive(1000, 1e-12), maxent.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Converged {
		t.Fatalf("fit did not converge after %d iterations", res.Iterations)
	}

	want := math.Sqrt(1.5)
	for node, a := range res.Alphas {
		if !scalar.EqualWithinAbsOrRel(a, want, 1e-9, 1e-9) {
			t.Errorf("alpha[%d] = %g, want %g", node, a, want)
		}
	}
}

func TestFitProbeAndExclusion(t *testing.T) {
	pool := network.FromEdges(complete(5))
	ref := network.FromEdges(edges([2]int64{0, 1}, [2]int64{1, 2}, [2]int64{4, 4}))

	res, err := Fit(context.Background(), pool, ref, maxent.Fixed(4), maxent.Options{Probes: []int64{1, 4}})
	if err != nil {
		t.Fatal(err)
	}

	if res.Alphas.Has(4) {
		t.Errorf("self-loop-only node 4 was fitted")
	}
	if got := len(res.Probes[1]); got != 4 {
		t.Errorf("probe trajectory has %d points, want 4", got)
	}
	if _, ok := res.Probes[4]; ok {
		t.Errorf("excluded node 4 should have no trajectory")
	}
	if got := res.Probes[1][3]; got != res.Alphas[1] {
		t.Errorf("last probe value %g differs from alpha %g", got, res.Alphas[1])
	}
}

func TestProbability(t *testing.T) {
	pool := edges([2]int64{2, 1}, [2]int64{1, 1}, [2]int64{3, 3}, [2]int64{1, 9})
	reference := network.NewEdgeSet(edges([2]int64{1, 1}))
	alphas := maxent.Alphas{1: 1, 2: 3}

	p := Probability(pool, reference, alphas)

	want := Probabilities{
		network.NewEdge(1, 2): 0.25,
		network.NewEdge(1, 1): 1,
		network.NewEdge(3, 3): 0,
	}
	if len(p) != len(want) {
		t.Fatalf("Probability() = %v, want %v", p, want)
	}
	for e, w := range want {
		if got, ok := p[e]; !ok || got != w {
			t.Errorf("p[%v] = %g, %v; want %g", e, got, ok, w)
		}
	}
}

func TestSampleRespectsCertainProbabilities(t *testing.T) {
	p := Probabilities{
		network.NewEdge(1, 1): 1,
		network.NewEdge(2, 2): 0,
		network.NewEdge(1, 2): 0,
		network.NewEdge(2, 3): 1,
	}
	src := rand.NewPCG(3, 4)

	want := edges([2]int64{1, 1}, [2]int64{2, 3})
	for range 100 {
		if got := Sample(p, src); !slices.Equal(got, want) {
			t.Fatalf("Sample() = %v, want %v", got, want)
		}
	}
}

func TestSampleSeeded(t *testing.T) {
	p := Probabilities{}
	for _, e := range complete(6) {
		p[e] = 0.5
	}

	a := Sample(p, rand.NewPCG(9, 9))
	b := Sample(p, rand.NewPCG(9, 9))
	if !slices.Equal(a, b) {
		t.Errorf("same seed gave different samples: %v vs %v", a, b)
	}
}

func TestOverlapStatistic(t *testing.T) {
	p := Probabilities{
		network.NewEdge(1, 2): 0.5,
		network.NewEdge(2, 3): 1,
		network.NewEdge(3, 4): 0.2,
	}
	comparison := network.NewEdgeSet(edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{7, 8}))

	b := OverlapStatistic(p, comparison)

	if !scalar.EqualWithinAbs(b.Mean, 1.5, 1e-12) || !scalar.EqualWithinAbs(b.Sigma, 0.5, 1e-12) {
		t.Errorf("OverlapStatistic() = %+v, want mean 1.5 sigma 0.5", b)
	}
}

func TestTuneStatisticBudget(t *testing.T) {
	a := edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{3, 5})
	b := edges([2]int64{2, 3}, [2]int64{4, 5}, [2]int64{1, 2}, [2]int64{2, 4})
	pool := network.Union(a, b)
	params := maxent.TuneParams{ItersStart: 10, ChangeLimit: 1e-12, IterSpacing: 10, MaxIterations: 50}

	res, err := TuneStatistic(context.Background(), pool, a, b, params)
	if err != nil {
		t.Fatal(err)
	}
	if res.Iterations > params.Budget() {
		t.Errorf("Iterations = %d, budget %d", res.Iterations, params.Budget())
	}
	if res.Benchmark.Mean < 0 || res.Benchmark.Mean > 3 {
		t.Errorf("Mean = %g, want within [0, 3]", res.Benchmark.Mean)
	}
}
