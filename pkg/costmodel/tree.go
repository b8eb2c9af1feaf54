package costmodel

import (
	"slices"

	"github.com/matzehuels/qplace/pkg/device"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
)

// BinaryTree returns an oracle over t. Tree paths are unique: both ends
// walk toward the root until they meet at the lowest common ancestor.
func BinaryTree(t device.BinaryTree) *PathCache {
	return NewPathCache(func(lo, hi graph.Vertex) (Path, error) {
		if !t.Contains(lo) || !t.Contains(hi) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "vertex pair %d-%d is not in the tree", lo, hi)
		}
		var up, down Path
		a, b := lo, hi
		for a != b {
			if t.Depth(a) >= t.Depth(b) {
				up = append(up, Step{Vertex: a, Weight: t.Weights[a]})
				a = t.Parent(a)
			} else {
				down = append(down, Step{Vertex: b, Weight: t.Weights[b]})
				b = t.Parent(b)
			}
		}

		path := make(Path, 1, len(up)+len(down)+1)
		path[0] = Step{Vertex: lo}
		for _, s := range up {
			path = append(path, Step{Vertex: t.Parent(s.Vertex), Weight: s.Weight})
		}
		slices.Reverse(down)
		return append(path, down...), nil
	})
}
