package randnet

import (
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/ritzau/normlap/pkg/maxent"
	"github.com/ritzau/normlap/pkg/network"
)

// Matrix holds the connection probabilities of every pair of fitted nodes.
// Row i of P belongs to Nodes[i]; P is nil when nothing was fitted.
type Matrix struct {
	Nodes []int64
	P     *mat.SymDense
	index map[int64]int
}

// ConnectionMatrix evaluates 1/(1+α_iα_j) for every pair of fitted nodes.
// The diagonal is 1 for nodes in selfLoopNodes and 0 otherwise.
func ConnectionMatrix(alphas maxent.Alphas, selfLoopNodes []int64) Matrix {
	nodes := alphas.Nodes()
	m := Matrix{
		Nodes: nodes,
		index: make(map[int64]int, len(nodes)),
	}
	if len(nodes) == 0 {
		return m
	}

	values := make([]float64, len(nodes))
	for i, n := range nodes {
		m.index[n] = i
		values[i] = alphas[n]
	}

	m.P = mat.NewSymDense(len(nodes), nil)
	for i := range values {
		for j := i + 1; j < len(values); j++ {
			m.P.SetSym(i, j, 1/(1+values[i]*values[j]))
		}
	}
	for _, n := range selfLoopNodes {
		if i, ok := m.index[n]; ok {
			m.P.SetSym(i, i, 1)
		}
	}

	return m
}

// At returns the probability of the edge between u and v, and false when
// either node is not in the matrix
func (m Matrix) At(u, v int64) (float64, bool) {
	i, okU := m.index[u]
	j, okV := m.index[v]
	if !okU || !okV {
		return 0, false
	}
	return m.P.At(i, j), true
}

// Sample draws one network from the matrix. Each pair i<j is included when
// its probability exceeds a uniform draw in [0,1), so p = 0 never appears.
// The self-loops of selfLoopNodes are always included.
func Sample(m Matrix, selfLoopNodes []int64, src rand.Source) []network.Edge {
	draw := maxent.Uniform01(src)

	var edges []network.Edge
	for i, u := range m.Nodes {
		for j := i + 1; j < len(m.Nodes); j++ {
			if m.P.At(i, j) > draw() {
				edges = append(edges, network.NewEdge(u, m.Nodes[j]))
			}
		}
	}
	for _, n := range selfLoopNodes {
		edges = append(edges, network.NewEdge(n, n))
	}

	network.SortEdges(edges)
	return slices.Compact(edges)
}
