package network

import (
	"cmp"
	"slices"
)

// Edge is an unordered node pair, stored canonically with U <= V.
// A self-loop has U == V.
type Edge struct {
	U int64 `json:"u"`
	V int64 `json:"v"`
}

// NewEdge returns the canonical edge between u and v
func NewEdge(u, v int64) Edge {
	if v < u {
		u, v = v, u
	}
	return Edge{U: u, V: v}
}

// IsSelfLoop reports whether both endpoints are the same node
func (e Edge) IsSelfLoop() bool {
	return e.U == e.V
}

// Compare orders edges by U, then V
func (e Edge) Compare(other Edge) int {
	if c := cmp.Compare(e.U, other.U); c != 0 {
		return c
	}
	return cmp.Compare(e.V, other.V)
}

// SortEdges sorts edges in place in canonical order
func SortEdges(edges []Edge) {
	slices.SortFunc(edges, Edge.Compare)
}

// EdgeSet is a set of canonical edges
type EdgeSet map[Edge]struct{}

// NewEdgeSet builds a set from an edge list. Duplicates and pair order are ignored.
func NewEdgeSet(edges []Edge) EdgeSet {
	set := make(EdgeSet, len(edges))
	for _, e := range edges {
		set[NewEdge(e.U, e.V)] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the edge, regardless of pair order
func (s EdgeSet) Has(e Edge) bool {
	_, ok := s[NewEdge(e.U, e.V)]
	return ok
}

// Sorted returns the edges in canonical order
func (s EdgeSet) Sorted() []Edge {
	edges := make([]Edge, 0, len(s))
	for e := range s {
		edges = append(edges, e)
	}
	SortEdges(edges)
	return edges
}

// Union returns the distinct edges of all lists in canonical order
func Union(lists ...[]Edge) []Edge {
	set := make(EdgeSet)
	for _, edges := range lists {
		for _, e := range edges {
			set[NewEdge(e.U, e.V)] = struct{}{}
		}
	}
	return set.Sorted()
}

// CountOverlap returns the number of distinct edges present in both lists
func CountOverlap(a, b []Edge) int {
	setA := NewEdgeSet(a)
	setB := NewEdgeSet(b)

	// Iterate the smaller set
	if len(setB) < len(setA) {
		setA, setB = setB, setA
	}

	count := 0
	for e := range setA {
		if _, ok := setB[e]; ok {
			count++
		}
	}
	return count
}
