package network

import (
	"maps"
	"slices"
)

// NeighborMap maps each node to the set of its neighbors.
// It is symmetric: v is a neighbor of u exactly when u is a neighbor of v.
// A self-loop appears as the node being its own neighbor.
type NeighborMap map[int64]map[int64]struct{}

// FromEdges builds the neighbor map of an edge list
func FromEdges(edges []Edge) NeighborMap {
	m := make(NeighborMap)
	for _, e := range edges {
		m.link(e.U, e.V)
		m.link(e.V, e.U)
	}
	return m
}

func (m NeighborMap) link(u, v int64) {
	neighbors, ok := m[u]
	if !ok {
		neighbors = make(map[int64]struct{})
		m[u] = neighbors
	}
	neighbors[v] = struct{}{}
}

// Edges converts the neighbor map back to a canonical, sorted edge list
func (m NeighborMap) Edges() []Edge {
	set := make(EdgeSet)
	for u, neighbors := range m {
		for v := range neighbors {
			set[NewEdge(u, v)] = struct{}{}
		}
	}
	return set.Sorted()
}

// Nodes returns the node keys in ascending order
func (m NeighborMap) Nodes() []int64 {
	return slices.Sorted(maps.Keys(m))
}

// Neighbors returns the neighbors of a node in ascending order
func (m NeighborMap) Neighbors(u int64) []int64 {
	return slices.Sorted(maps.Keys(m[u]))
}

// HasEdge reports whether u and v are adjacent
func (m NeighborMap) HasEdge(u, v int64) bool {
	_, ok := m[u][v]
	return ok
}

// Degree returns the number of neighbors of a node, counting a self-loop once
func (m NeighborMap) Degree(u int64) int {
	return len(m[u])
}

// SelfLoopNodes returns the nodes that are their own neighbor, in ascending order
func (m NeighborMap) SelfLoopNodes() []int64 {
	var nodes []int64
	for u, neighbors := range m {
		if _, ok := neighbors[u]; ok {
			nodes = append(nodes, u)
		}
	}
	slices.Sort(nodes)
	return nodes
}

// WithoutSelfLoops returns a copy with self-loops removed.
// Nodes left without any neighbor are dropped from the copy.
func (m NeighborMap) WithoutSelfLoops() NeighborMap {
	out := make(NeighborMap, len(m))
	for u, neighbors := range m {
		rest := make(map[int64]struct{}, len(neighbors))
		for v := range neighbors {
			if v != u {
				rest[v] = struct{}{}
			}
		}
		if len(rest) > 0 {
			out[u] = rest
		}
	}
	return out
}
