package graph

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/weight"
)

// Vertex identifies a pattern or target qubit. The two spaces share the same
// representation and are kept apart by convention.
type Vertex uint32

// Edge is an unordered vertex pair with A <= B.
type Edge struct {
	A, B Vertex
}

// NewEdge returns the canonical edge between u and v.
func NewEdge(u, v Vertex) Edge {
	if u > v {
		u, v = v, u
	}
	return Edge{A: u, B: v}
}

// Other returns the endpoint of e that is not v.
func (e Edge) Other(v Vertex) Vertex {
	if e.A == v {
		return e.B
	}
	return e.A
}

func (e Edge) String() string { return fmt.Sprintf("%d-%d", e.A, e.B) }

// CompareEdges orders edges lexicographically by (A, B).
func CompareEdges(x, y Edge) int {
	if c := cmp.Compare(x.A, y.A); c != 0 {
		return c
	}
	return cmp.Compare(x.B, y.B)
}

// Weighted maps edges to weights. Keys are canonical.
type Weighted map[Edge]weight.Weight

// Set stores w on the edge between u and v.
func (g Weighted) Set(u, v Vertex, w weight.Weight) {
	g[NewEdge(u, v)] = w
}

// Get returns the weight of the edge between u and v.
func (g Weighted) Get(u, v Vertex) (weight.Weight, bool) {
	w, ok := g[NewEdge(u, v)]
	return w, ok
}

// Has reports whether u and v are joined by an edge.
func (g Weighted) Has(u, v Vertex) bool {
	_, ok := g[NewEdge(u, v)]
	return ok
}

// Clone returns a shallow copy of g.
func (g Weighted) Clone() Weighted {
	return maps.Clone(g)
}

// Edges returns all edges in sorted order.
func (g Weighted) Edges() []Edge {
	es := slices.Collect(maps.Keys(g))
	slices.SortFunc(es, CompareEdges)
	return es
}

// Vertices returns every vertex touched by an edge, sorted ascending.
func (g Weighted) Vertices() []Vertex {
	seen := make(map[Vertex]struct{}, len(g))
	for e := range g {
		seen[e.A] = struct{}{}
		seen[e.B] = struct{}{}
	}
	vs := slices.Collect(maps.Keys(seen))
	slices.Sort(vs)
	return vs
}

// Neighbour is one adjacency entry.
type Neighbour struct {
	Vertex Vertex
	Weight weight.Weight
}

// Neighbours returns the adjacency list of g, each list sorted by vertex.
func (g Weighted) Neighbours() map[Vertex][]Neighbour {
	adj := make(map[Vertex][]Neighbour)
	for e, w := range g {
		adj[e.A] = append(adj[e.A], Neighbour{e.B, w})
		adj[e.B] = append(adj[e.B], Neighbour{e.A, w})
	}
	for v := range adj {
		slices.SortFunc(adj[v], func(x, y Neighbour) int {
			return cmp.Compare(x.Vertex, y.Vertex)
		})
	}
	return adj
}

// MaxWeight returns the largest edge weight, or 0 for an empty graph.
func (g Weighted) MaxWeight() weight.Weight {
	var m weight.Weight
	for _, w := range g {
		m = max(m, w)
	}
	return m
}

// MinNonzeroWeight returns the smallest nonzero edge weight, or 0 if no
// edge has a nonzero weight.
func (g Weighted) MinNonzeroWeight() weight.Weight {
	var m weight.Weight
	for _, w := range g {
		if w != 0 && (m == 0 || w < m) {
			m = w
		}
	}
	return m
}

// TotalWeight sums all edge weights with checked addition.
func (g Weighted) TotalWeight() (weight.Weight, error) {
	var t weight.Weight
	for _, e := range g.Edges() {
		if err := weight.Add(&t, g[e]); err != nil {
			return 0, err
		}
	}
	return t, nil
}

// Validate rejects empty graphs and self-loops.
func (g Weighted) Validate() error {
	if len(g) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "graph has no edges")
	}
	for e := range g {
		if e.A == e.B {
			return errors.New(errors.ErrCodeInvalidInput, "self-loop on vertex %d", e.A)
		}
		if e.A > e.B {
			return errors.New(errors.ErrCodeInvalidInput, "edge %d-%d is not canonical", e.A, e.B)
		}
	}
	return nil
}
