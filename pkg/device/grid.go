package device

import (
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
)

// SquareGrid is a (Width+1)×(Width+1) lattice of qubits.
//
// Vertex (x, y) has id x + y(Width+1). Weights holds the Width(Width+1)
// horizontal edges first, indexed x + y·Width, followed by the vertical
// edges, indexed y + x·Width after that offset.
type SquareGrid struct {
	Width   int
	Weights []weight.Weight
}

// NewSquareGrid builds a grid of the given geometric width, numbering edge
// weights in storage order.
func NewSquareGrid(width int, wf WeightFunc) SquareGrid {
	ws := make([]weight.Weight, 2*width*(width+1))
	for i := range ws {
		ws[i] = wf(i)
	}
	return SquareGrid{Width: width, Weights: ws}
}

// NumVertices returns (Width+1)^2.
func (s SquareGrid) NumVertices() int { return (s.Width + 1) * (s.Width + 1) }

// Vertex returns the id of (x, y).
func (s SquareGrid) Vertex(x, y int) graph.Vertex {
	return graph.Vertex(x + y*(s.Width+1))
}

// XY inverts Vertex.
func (s SquareGrid) XY(v graph.Vertex) (x, y int) {
	y = int(v) / (s.Width + 1)
	x = int(v) - y*(s.Width+1)
	return x, y
}

// Horizontal returns the weight of the edge (x, y)-(x+1, y).
func (s SquareGrid) Horizontal(x, y int) weight.Weight {
	return s.Weights[x+y*s.Width]
}

// Vertical returns the weight of the edge (x, y)-(x, y+1).
func (s SquareGrid) Vertical(x, y int) weight.Weight {
	return s.Weights[s.Width*(s.Width+1)+y+x*s.Width]
}

// Graph returns the lattice as a weighted graph.
func (s SquareGrid) Graph() graph.Weighted {
	g := graph.Weighted{}
	for x := 0; x <= s.Width; x++ {
		for y := 0; y <= s.Width; y++ {
			v := s.Vertex(x, y)
			if x < s.Width {
				g.Set(v, s.Vertex(x+1, y), s.Horizontal(x, y))
			}
			if y < s.Width {
				g.Set(v, s.Vertex(x, y+1), s.Vertical(x, y))
			}
		}
	}
	return g
}
