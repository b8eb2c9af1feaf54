// Package device builds weighted connectivity graphs for common device
// topologies.
//
// Weights are assigned per edge index by a [WeightFunc], so builders are
// deterministic. The grid and tree layouts also expose their vertex and edge
// numbering, which the path oracles in pkg/costmodel rely on.
package device

import (
	"slices"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
)

// Topology names accepted by [Build].
const (
	KindLine     = "line"
	KindRing     = "ring"
	KindGrid     = "grid"
	KindTree     = "tree"
	KindComplete = "complete"
)

// Kinds lists every supported topology.
var Kinds = []string{KindLine, KindRing, KindGrid, KindTree, KindComplete}

// WeightFunc returns the weight of the i-th edge a builder creates.
type WeightFunc func(i int) weight.Weight

// Uniform gives every edge weight w.
func Uniform(w weight.Weight) WeightFunc {
	return func(int) weight.Weight { return w }
}

// Repeat cycles through ws. An empty list behaves like Uniform(1).
func Repeat(ws ...weight.Weight) WeightFunc {
	if len(ws) == 0 {
		return Uniform(1)
	}
	return func(i int) weight.Weight { return ws[i%len(ws)] }
}

// Increasing gives edge i the weight i+1.
func Increasing() WeightFunc {
	return func(i int) weight.Weight { return weight.Weight(i + 1) }
}

// Line is a path 0-1-...-(n-1).
func Line(n int, wf WeightFunc) graph.Weighted {
	g := graph.Weighted{}
	for i := 0; i+1 < n; i++ {
		g.Set(graph.Vertex(i), graph.Vertex(i+1), wf(i))
	}
	return g
}

// Ring is a line with the closing edge (n-1)-0. Rings need n >= 3.
func Ring(n int, wf WeightFunc) graph.Weighted {
	g := Line(n, wf)
	if n >= 3 {
		g.Set(graph.Vertex(n-1), 0, wf(n-1))
	}
	return g
}

// Complete joins every vertex pair. Edges are numbered in (A, B) order.
func Complete(n int, wf WeightFunc) graph.Weighted {
	g := graph.Weighted{}
	i := 0
	for a := 0; a < n; a++ {
		for b := a + 1; b < n; b++ {
			g.Set(graph.Vertex(a), graph.Vertex(b), wf(i))
			i++
		}
	}
	return g
}

// Build constructs a device of the given kind. For grids size is the
// geometric width, so a grid has (size+1)^2 qubits; for trees it is the
// number of qubits; otherwise it is the number of qubits.
func Build(kind string, size int, wf WeightFunc) (graph.Weighted, error) {
	minSize := 2
	switch kind {
	case KindRing:
		minSize = 3
	case KindGrid:
		minSize = 1
	}
	if size < minSize {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s device needs size >= %d, got %d", kind, minSize, size)
	}
	switch kind {
	case KindLine:
		return Line(size, wf), nil
	case KindRing:
		return Ring(size, wf), nil
	case KindComplete:
		return Complete(size, wf), nil
	case KindGrid:
		sg := NewSquareGrid(size, wf)
		return sg.Graph(), nil
	case KindTree:
		bt := NewBinaryTree(size, wf)
		return bt.Graph(), nil
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown device kind %q", kind)
}

// IsKind reports whether kind names a supported topology.
func IsKind(kind string) bool {
	return slices.Contains(Kinds, kind)
}
