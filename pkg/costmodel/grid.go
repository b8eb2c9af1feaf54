package costmodel

import (
	"math/rand/v2"

	"github.com/matzehuels/qplace/pkg/device"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
)

// DefaultGridSeed seeds the step patterns of [SquareGrid].
const DefaultGridSeed = 1

// SquareGrid returns a heuristic oracle over g. Every candidate path is a
// shortest lattice path; bit i of a step pattern chooses whether step i goes
// vertically (set) or horizontally, unless one coordinate already matches
// the destination. The lightest candidate found wins, so paths are not
// guaranteed to be optimal.
func SquareGrid(g device.SquareGrid, seed uint64) *PathCache {
	patterns := stepPatterns(max(10, 10*g.Width), seed)
	n := graph.Vertex(g.NumVertices())

	return NewPathCache(func(lo, hi graph.Vertex) (Path, error) {
		if hi >= n {
			return nil, errors.New(errors.ErrCodeInvalidInput, "vertex %d is not on the %dx%d grid", hi, g.Width+1, g.Width+1)
		}
		var best Path
		bestWeight := weight.Max
		for _, pattern := range patterns {
			p, w, ok := gridWalk(g, lo, hi, pattern, bestWeight)
			if ok {
				best, bestWeight = p, w
			}
		}
		if best == nil {
			return nil, errors.New(errors.ErrCodeOverflow, "every grid path %d-%d is too heavy", lo, hi)
		}
		return best, nil
	})
}

// stepPatterns returns n patterns: all-horizontal first, all-vertical
// second, the rest random.
func stepPatterns(n int, seed uint64) []uint64 {
	out := make([]uint64, 0, n)
	out = append(out, 0, ^uint64(0))
	rng := rand.New(rand.NewPCG(seed, seed))
	for len(out) < n {
		out = append(out, rng.Uint64())
	}
	return out
}

// gridWalk follows pattern from `from` toward `to`, stopping as soon as the
// running weight reaches bound.
func gridWalk(g device.SquareGrid, from, to graph.Vertex, pattern uint64, bound weight.Weight) (Path, weight.Weight, bool) {
	x, y := g.XY(from)
	ex, ey := g.XY(to)
	length := 1 + abs(x-ex) + abs(y-ey)

	path := make(Path, 1, length)
	path[0] = Step{Vertex: from}
	var total weight.Weight
	for len(path) < length {
		horizontal := pattern&1 == 0
		pattern >>= 1
		if x == ex {
			horizontal = false
		}
		if y == ey {
			horizontal = true
		}

		var w weight.Weight
		switch {
		case horizontal && x < ex:
			w = g.Horizontal(x, y)
			x++
		case horizontal:
			x--
			w = g.Horizontal(x, y)
		case y < ey:
			w = g.Vertical(x, y)
			y++
		default:
			y--
			w = g.Vertical(x, y)
		}
		path = append(path, Step{Vertex: g.Vertex(x, y), Weight: w})

		sum, err := weight.Sum(total, w)
		if err != nil || sum >= bound {
			return nil, 0, false
		}
		total = sum
	}
	return path, total, true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
