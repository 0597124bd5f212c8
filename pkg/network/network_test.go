package network

import (
	"slices"
	"testing"
)

func edges(pairs ...[2]int64) []Edge {
	out := make([]Edge, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, NewEdge(p[0], p[1]))
	}
	return out
}

func TestNewEdgeCanonical(t *testing.T) {
	e := NewEdge(5, 2)
	if e.U != 2 || e.V != 5 {
		t.Errorf("NewEdge(5, 2) = %v, want {2 5}", e)
	}
	if NewEdge(3, 3).IsSelfLoop() != true {
		t.Error("NewEdge(3, 3) should be a self-loop")
	}
	if NewEdge(2, 3).IsSelfLoop() {
		t.Error("NewEdge(2, 3) should not be a self-loop")
	}
}

func TestCountOverlap(t *testing.T) {
	tests := []struct {
		name string
		a    []Edge
		b    []Edge
		want int
	}{
		{
			name: "worked example",
			a:    edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{3, 5}),
			b:    edges([2]int64{2, 3}, [2]int64{4, 5}, [2]int64{1, 2}, [2]int64{2, 4}),
			want: 2,
		},
		{
			name: "pair order ignored",
			a:    []Edge{{U: 2, V: 1}},
			b:    []Edge{{U: 1, V: 2}},
			want: 1,
		},
		{
			name: "duplicates count once",
			a:    edges([2]int64{1, 2}, [2]int64{2, 1}, [2]int64{1, 2}),
			b:    edges([2]int64{1, 2}),
			want: 1,
		},
		{
			name: "self-loops overlap",
			a:    edges([2]int64{4, 4}, [2]int64{1, 2}),
			b:    edges([2]int64{4, 4}),
			want: 1,
		},
		{
			name: "empty",
			a:    nil,
			b:    edges([2]int64{1, 2}),
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("CountOverlap(a, b) = %d, want %d", got, tt.want)
			}
			if got := CountOverlap(tt.b, tt.a); got != tt.want {
				t.Errorf("CountOverlap(b, a) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNeighborMapRoundTrip(t *testing.T) {
	in := []Edge{{U: 3, V: 1}, {U: 1, V: 2}, {U: 2, V: 1}, {U: 4, V: 4}, {U: 2, V: 3}}

	got := FromEdges(in).Edges()
	want := NewEdgeSet(in).Sorted()

	if !slices.Equal(got, want) {
		t.Errorf("round trip = %v, want %v", got, want)
	}
}

func TestNeighborMapSymmetric(t *testing.T) {
	m := FromEdges(edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{3, 3}))

	for u, neighbors := range m {
		for v := range neighbors {
			if !m.HasEdge(v, u) {
				t.Errorf("neighbor map not symmetric: %d in N(%d) but %d not in N(%d)", v, u, u, v)
			}
		}
	}
}

func TestWithoutSelfLoops(t *testing.T) {
	m := FromEdges(edges([2]int64{1, 1}, [2]int64{2, 2}, [2]int64{2, 3}))

	stripped := m.WithoutSelfLoops()

	if _, ok := stripped[1]; ok {
		t.Error("node 1 only had a self-loop and should be dropped")
	}
	if stripped.HasEdge(2, 2) {
		t.Error("self-loop 2-2 should be removed")
	}
	if !stripped.HasEdge(2, 3) {
		t.Error("edge 2-3 should be kept")
	}

	// The original must be untouched
	if !m.HasEdge(1, 1) || !m.HasEdge(2, 2) {
		t.Error("WithoutSelfLoops mutated its receiver")
	}

	if got := m.SelfLoopNodes(); !slices.Equal(got, []int64{1, 2}) {
		t.Errorf("SelfLoopNodes() = %v, want [1 2]", got)
	}
}

func TestUnion(t *testing.T) {
	got := Union(
		edges([2]int64{1, 2}, [2]int64{2, 3}),
		edges([2]int64{3, 2}, [2]int64{4, 5}),
	)
	want := edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{4, 5})
	if !slices.Equal(got, want) {
		t.Errorf("Union() = %v, want %v", got, want)
	}
}

func TestIndexBijection(t *testing.T) {
	idx := NewIndex[string]()

	es := idx.Edges([][2]string{{"b", "a"}, {"a", "c"}, {"c", "c"}})

	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}

	for i := 0; i < idx.Len(); i++ {
		id, ok := idx.ID(idx.Node(int64(i)))
		if !ok || id != int64(i) {
			t.Errorf("ID(Node(%d)) = %d, %v", i, id, ok)
		}
	}

	// First-appearance order: b=0, a=1, c=2
	if id, _ := idx.ID("b"); id != 0 {
		t.Errorf("ID(b) = %d, want 0", id)
	}

	pairs := idx.Pairs(es)
	want := [][2]string{{"b", "a"}, {"a", "c"}, {"c", "c"}}
	if !slices.Equal(pairs, want) {
		t.Errorf("Pairs() = %v, want %v", pairs, want)
	}
}

func TestSummary(t *testing.T) {
	s := Summarize(edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{2, 1}, [2]int64{3, 3}, [2]int64{2, 4}))

	if s.Nodes != 4 {
		t.Errorf("Nodes = %d, want 4", s.Nodes)
	}
	if s.Edges != 4 {
		t.Errorf("Edges = %d, want 4", s.Edges)
	}
	if s.SelfLoops != 1 {
		t.Errorf("SelfLoops = %d, want 1", s.SelfLoops)
	}
	if s.MaxDegree != 3 {
		t.Errorf("MaxDegree = %d, want 3", s.MaxDegree)
	}
	if s.MeanDegree != 1.5 {
		t.Errorf("MeanDegree = %g, want 1.5", s.MeanDegree)
	}
}

func TestSummaryComponents(t *testing.T) {
	tests := []struct {
		name           string
		edges          []Edge
		wantComponents int
		wantLargest    int
	}{
		{"connected", edges([2]int64{1, 2}, [2]int64{2, 3}, [2]int64{3, 3}), 1, 3},
		{"split", edges([2]int64{1, 2}, [2]int64{3, 4}, [2]int64{5, 5}, [2]int64{6, 7}, [2]int64{7, 8}), 4, 3},
		{"empty", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Summarize(tt.edges)
			if s.Components != tt.wantComponents || s.LargestComponent != tt.wantLargest {
				t.Errorf("components = %d (largest %d), want %d (largest %d)",
					s.Components, s.LargestComponent, tt.wantComponents, tt.wantLargest)
			}
		})
	}
}
