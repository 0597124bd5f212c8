package network

// Index is a bijection between arbitrary node identifiers and the dense
// integer range [0, Len()). IDs are assigned in first-appearance order.
type Index[N comparable] struct {
	ids   map[N]int64
	nodes []N
}

// NewIndex creates an empty index
func NewIndex[N comparable]() *Index[N] {
	return &Index[N]{
		ids: make(map[N]int64),
	}
}

// Add returns the ID of a node, assigning the next free ID if it is new
func (x *Index[N]) Add(node N) int64 {
	if id, exists := x.ids[node]; exists {
		return id
	}

	id := int64(len(x.nodes))
	x.ids[node] = id
	x.nodes = append(x.nodes, node)
	return id
}

// ID looks up the ID of a node
func (x *Index[N]) ID(node N) (int64, bool) {
	id, ok := x.ids[node]
	return id, ok
}

// Node returns the node with the given ID. It panics if the ID was never assigned.
func (x *Index[N]) Node(id int64) N {
	return x.nodes[id]
}

// Len returns the number of indexed nodes
func (x *Index[N]) Len() int {
	return len(x.nodes)
}

// Edges indexes every node in pairs and returns the pairs as canonical edges
func (x *Index[N]) Edges(pairs [][2]N) []Edge {
	edges := make([]Edge, 0, len(pairs))
	for _, p := range pairs {
		edges = append(edges, NewEdge(x.Add(p[0]), x.Add(p[1])))
	}
	return edges
}

// Pairs maps edges back to node pairs. Each pair keeps the edge's canonical order.
func (x *Index[N]) Pairs(edges []Edge) [][2]N {
	pairs := make([][2]N, 0, len(edges))
	for _, e := range edges {
		pairs = append(pairs, [2]N{x.Node(e.U), x.Node(e.V)})
	}
	return pairs
}
