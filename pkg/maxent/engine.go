// Package maxent runs the fixed-point iteration that fits per-node
// propensities (alphas) of a maximum-entropy edge model.
//
// Both null models plug their own update rule into Solve; stopping policy,
// warm starts, history recording, probe trajectories and cancellation are
// handled here once.
package maxent

import (
	"context"
	"fmt"
	"slices"

	"github.com/ritzau/normlap/pkg/logging"
	"github.com/ritzau/normlap/pkg/network"
	"github.com/ritzau/normlap/pkg/stats"
)

// Alphas maps a fitted node to its propensity
type Alphas map[int64]float64

// Uniform returns alphas set to 1 for every node
func Uniform(nodes []int64) Alphas {
	a := make(Alphas, len(nodes))
	for _, n := range nodes {
		a[n] = 1
	}
	return a
}

// Clone returns an independent copy
func (a Alphas) Clone() Alphas {
	c := make(Alphas, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}

// Nodes returns the fitted nodes in ascending order
func (a Alphas) Nodes() []int64 {
	nodes := make([]int64, 0, len(a))
	for n := range a {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

// Has reports whether the node is in the fitted domain
func (a Alphas) Has(n int64) bool {
	_, ok := a[n]
	return ok
}

// EdgeProbability returns the connection probability of e, and false when
// the edge is outside the model. A self-loop is 1 if the reference network
// has it and 0 otherwise; any other edge needs both ends fitted.
func EdgeProbability(e network.Edge, reference network.EdgeSet, a Alphas) (float64, bool) {
	if e.IsSelfLoop() {
		if reference.Has(e) {
			return 1, true
		}
		return 0, true
	}

	au, okU := a[e.U]
	av, okV := a[e.V]
	if !okU || !okV {
		return 0, false
	}
	return 1 / (1 + au*av), true
}

// Policy decides how many iterations a fit runs
type Policy struct {
	maxIters  int
	criterion float64
	adaptive  bool
}

// Fixed runs exactly n iterations. Negative n is treated as zero.
func Fixed(n int) Policy {
	return Policy{maxIters: max(n, 0)}
}

// Adaptive stops once the largest relative alpha change of an iteration
// drops below criterion, or after maxIters iterations without converging.
func Adaptive(maxIters int, criterion float64) Policy {
	return Policy{maxIters: max(maxIters, 0), criterion: criterion, adaptive: true}
}

// MaxIterations is the iteration budget of the policy
func (p Policy) MaxIterations() int {
	return p.maxIters
}

func (p Policy) String() string {
	if p.adaptive {
		return fmt.Sprintf("adaptive(max=%d, criterion=%g)", p.maxIters, p.criterion)
	}
	return fmt.Sprintf("fixed(%d)", p.maxIters)
}

// UpdateFunc computes one synchronous iteration. prev and next are indexed
// like Problem.Nodes; next must be written from prev alone.
type UpdateFunc func(prev, next []float64)

// Problem is a fit ready to iterate: the fitted nodes in ascending order and
// the model's update rule over them.
type Problem struct {
	Nodes  []int64
	Update UpdateFunc
}

// Options tunes a single Solve call
type Options struct {
	// Start is the warm-start vector. Nodes missing from it start at 1.
	Start Alphas
	// History records the full vector after every iteration
	History bool
	// Probes lists nodes whose trajectory is recorded
	Probes []int64
}

// Result is the outcome of a fit
type Result struct {
	Alphas     Alphas
	History    []Alphas
	Probes     map[int64][]float64
	Iterations int
	Converged  bool
	// MaxChange is the largest relative change of the last iteration
	MaxChange float64
}

// Solve iterates the problem under the given policy. The context is checked
// before every iteration; a cancelled fit returns no partial result.
func Solve(ctx context.Context, p Problem, policy Policy, opts Options) (Result, error) {
	n := len(p.Nodes)
	prev := make([]float64, n)
	for i, node := range p.Nodes {
		prev[i] = 1
		if v, ok := opts.Start[node]; ok {
			prev[i] = v
		}
	}
	next := make([]float64, n)

	res := Result{
		Converged: !policy.adaptive,
	}
	if len(opts.Probes) > 0 {
		res.Probes = make(map[int64][]float64, len(opts.Probes))
	}
	probeIdx := make(map[int64]int, len(opts.Probes))
	for _, probe := range opts.Probes {
		if i, ok := slices.BinarySearch(p.Nodes, probe); ok {
			probeIdx[probe] = i
		} else {
			logging.DebugContext(ctx, "probe node not in fitted domain", "node", probe)
		}
	}

	for it := 0; it < policy.maxIters; it++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("fit cancelled after %d iterations: %w", it, err)
		}

		p.Update(prev, next)
		res.MaxChange = stats.MaxRelativeChange(prev, next)
		prev, next = next, prev
		res.Iterations = it + 1

		if opts.History {
			res.History = append(res.History, toAlphas(p.Nodes, prev))
		}
		for probe, i := range probeIdx {
			res.Probes[probe] = append(res.Probes[probe], prev[i])
		}

		if logging.Enabled(logging.LevelTrace) {
			logging.TraceContext(ctx, "iteration", "iter", res.Iterations, "maxChange", res.MaxChange)
		}

		if policy.adaptive && res.MaxChange < policy.criterion {
			res.Converged = true
			break
		}
	}

	res.Alphas = toAlphas(p.Nodes, prev)

	if policy.adaptive && !res.Converged {
		logging.WarnContext(ctx, "fit did not converge",
			"policy", policy.String(),
			"maxChange", res.MaxChange)
	} else {
		logging.DebugContext(ctx, "fit finished",
			"policy", policy.String(),
			"nodes", n,
			"iterations", res.Iterations)
	}

	return res, nil
}

func toAlphas(nodes []int64, values []float64) Alphas {
	a := make(Alphas, len(nodes))
	for i, n := range nodes {
		a[n] = values[i]
	}
	return a
}
