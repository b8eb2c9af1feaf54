package device

import (
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
)

// BinaryTree is a heap-numbered binary tree rooted at vertex 1. Vertex i > 1
// has parent i/2, and Weights[i] is the weight of the edge i-(i/2).
// Weights[0] and Weights[1] are unused.
type BinaryTree struct {
	Weights []weight.Weight
}

// NewBinaryTree builds a tree with vertices 1..n.
func NewBinaryTree(n int, wf WeightFunc) BinaryTree {
	ws := make([]weight.Weight, n+1)
	for i := 2; i <= n; i++ {
		ws[i] = wf(i - 2)
	}
	return BinaryTree{Weights: ws}
}

// Contains reports whether v is a tree vertex.
func (t BinaryTree) Contains(v graph.Vertex) bool {
	return v >= 1 && int(v) < len(t.Weights)
}

// Parent returns the parent of v. The root is its own parent.
func (t BinaryTree) Parent(v graph.Vertex) graph.Vertex {
	if v <= 1 {
		return v
	}
	return v / 2
}

// Depth returns the number of edges between v and the root.
func (t BinaryTree) Depth(v graph.Vertex) int {
	d := 0
	for v > 1 {
		v /= 2
		d++
	}
	return d
}

// Graph returns the tree as a weighted graph.
func (t BinaryTree) Graph() graph.Weighted {
	g := graph.Weighted{}
	for i := 2; i < len(t.Weights); i++ {
		g.Set(graph.Vertex(i), graph.Vertex(i/2), t.Weights[i])
	}
	return g
}
