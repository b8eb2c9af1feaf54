package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
)

func TestLineAndRing(t *testing.T) {
	l := Line(4, Increasing())
	assert.Len(t, l, 3)
	w, _ := l.Get(2, 3)
	assert.Equal(t, weight.Weight(3), w)

	r := Ring(5, Increasing())
	assert.Len(t, r, 5)
	w, ok := r.Get(0, 4)
	require.True(t, ok)
	assert.Equal(t, weight.Weight(5), w)
}

func TestComplete(t *testing.T) {
	g := Complete(5, Uniform(2))
	assert.Len(t, g, 10)
	assert.Equal(t, weight.Weight(2), g.MaxWeight())
}

func TestSquareGridNumbering(t *testing.T) {
	sg := NewSquareGrid(2, Increasing())
	assert.Equal(t, 9, sg.NumVertices())
	assert.Len(t, sg.Weights, 12)

	assert.Equal(t, graph.Vertex(0), sg.Vertex(0, 0))
	assert.Equal(t, graph.Vertex(2), sg.Vertex(2, 0))
	assert.Equal(t, graph.Vertex(8), sg.Vertex(2, 2))
	x, y := sg.XY(7)
	assert.Equal(t, []int{1, 2}, []int{x, y})

	g := sg.Graph()
	assert.Len(t, g, 12)
	// Horizontal (1,2)-(2,2) is index 1+2*2 = 5.
	w, _ := g.Get(sg.Vertex(1, 2), sg.Vertex(2, 2))
	assert.Equal(t, weight.Weight(6), w)
	// Vertical (2,0)-(2,1) is index 6+0+2*2 = 10.
	w, _ = g.Get(sg.Vertex(2, 0), sg.Vertex(2, 1))
	assert.Equal(t, weight.Weight(11), w)

	total, err := g.TotalWeight()
	require.NoError(t, err)
	assert.Equal(t, weight.Weight(78), total)
}

func TestBinaryTree(t *testing.T) {
	bt := BinaryTree{Weights: []weight.Weight{0, 0, 1, 2, 5, 7, 17, 30}}
	g := bt.Graph()
	assert.Len(t, g, 6)
	w, _ := g.Get(5, 2)
	assert.Equal(t, weight.Weight(7), w)
	assert.Equal(t, graph.Vertex(3), bt.Parent(7))
	assert.Equal(t, 2, bt.Depth(6))
	assert.True(t, bt.Contains(7))
	assert.False(t, bt.Contains(0))
	assert.False(t, bt.Contains(8))
}

func TestBuild(t *testing.T) {
	tests := []struct {
		kind      string
		size      int
		wantEdges int
		wantCode  errors.Code
	}{
		{KindLine, 5, 4, ""},
		{KindRing, 5, 5, ""},
		{KindGrid, 3, 24, ""},
		{KindTree, 7, 6, ""},
		{KindComplete, 4, 6, ""},
		{KindRing, 2, 0, errors.ErrCodeInvalidInput},
		{"torus", 4, 0, errors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			g, err := Build(tt.kind, tt.size, Uniform(1))
			if tt.wantCode != "" {
				assert.True(t, errors.Is(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, g, tt.wantEdges)
		})
	}
}
