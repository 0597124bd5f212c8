package network

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Graph is the topology of an edge list. Non-self edges live in a gonum
// undirected graph; self-loops are tracked separately since simple graphs
// cannot hold them.
type Graph struct {
	graph     *simple.UndirectedGraph
	selfLoops map[int64]struct{}
}

// Summary holds basic counts for a network
type Summary struct {
	Nodes      int     `json:"nodes"`
	Edges      int     `json:"edges"`
	SelfLoops  int     `json:"self_loops"`
	MaxDegree  int     `json:"max_degree"`
	MeanDegree float64 `json:"mean_degree"`

	// Connected components; a node with only a self-loop is its own
	Components       int `json:"components"`
	LargestComponent int `json:"largest_component"`
}

// NewGraph builds a graph from an edge list. Duplicate edges collapse.
func NewGraph(edges []Edge) *Graph {
	g := &Graph{
		graph:     simple.NewUndirectedGraph(),
		selfLoops: make(map[int64]struct{}),
	}

	for _, e := range edges {
		g.addNode(e.U)
		g.addNode(e.V)

		if e.IsSelfLoop() {
			g.selfLoops[e.U] = struct{}{}
			continue
		}

		// Add edge if it doesn't already exist
		if !g.graph.HasEdgeBetween(e.U, e.V) {
			g.graph.SetEdge(g.graph.NewEdge(g.graph.Node(e.U), g.graph.Node(e.V)))
		}
	}

	return g
}

func (g *Graph) addNode(id int64) {
	if g.graph.Node(id) == nil {
		g.graph.AddNode(simple.Node(id))
	}
}

// Undirected returns the underlying gonum graph without self-loops
func (g *Graph) Undirected() *simple.UndirectedGraph {
	return g.graph
}

// Degree returns the number of distinct non-self neighbors of a node
func (g *Graph) Degree(id int64) int {
	if g.graph.Node(id) == nil {
		return 0
	}
	return len(graph.NodesOf(g.graph.From(id)))
}

// HasSelfLoop reports whether the node carries a self-loop
func (g *Graph) HasSelfLoop(id int64) bool {
	_, ok := g.selfLoops[id]
	return ok
}

// Summary computes node, edge and degree counts
func (g *Graph) Summary() Summary {
	nodes := graph.NodesOf(g.graph.Nodes())

	s := Summary{
		Nodes:     len(nodes),
		SelfLoops: len(g.selfLoops),
	}

	totalDegree := 0
	for _, n := range nodes {
		d := g.Degree(n.ID())
		totalDegree += d
		if d > s.MaxDegree {
			s.MaxDegree = d
		}
	}

	s.Edges = totalDegree/2 + s.SelfLoops
	if s.Nodes > 0 {
		s.MeanDegree = float64(totalDegree) / float64(s.Nodes)
	}

	components := topo.ConnectedComponents(g.graph)
	s.Components = len(components)
	for _, c := range components {
		s.LargestComponent = max(s.LargestComponent, len(c))
	}
	return s
}

// Summarize is a shorthand for NewGraph(edges).Summary()
func Summarize(edges []Edge) Summary {
	return NewGraph(edges).Summary()
}
