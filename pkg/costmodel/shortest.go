package costmodel

import (
	"math"
	"strconv"
	"sync"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dijkstra"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
)

// Shortest returns an oracle that routes along minimum-weight paths of an
// arbitrary device graph. The total weight of g must fit in an int64.
func Shortest(g graph.Weighted) (*PathCache, error) {
	total, err := g.TotalWeight()
	if err != nil {
		return nil, err
	}
	if total > math.MaxInt64 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "device weights too large for shortest paths (total %d)", total)
	}

	lg := core.NewGraph(core.WithWeighted())
	for _, e := range g.Edges() {
		w, _ := g.Get(e.A, e.B)
		if _, err := lg.AddEdge(vertexID(e.A), vertexID(e.B), int64(w)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "building device graph")
		}
	}

	var (
		mu    sync.Mutex
		trees = make(map[graph.Vertex]map[string]string)
	)
	predecessors := func(src graph.Vertex) (map[string]string, error) {
		mu.Lock()
		defer mu.Unlock()
		if prev, ok := trees[src]; ok {
			return prev, nil
		}
		_, prev, err := dijkstra.Dijkstra(lg, dijkstra.Source(vertexID(src)), dijkstra.WithReturnPath())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "vertex %d", src)
		}
		trees[src] = prev
		return prev, nil
	}

	return NewPathCache(func(lo, hi graph.Vertex) (Path, error) {
		prev, err := predecessors(lo)
		if err != nil {
			return nil, err
		}
		rev := []graph.Vertex{hi}
		for cur := vertexID(hi); cur != vertexID(lo); {
			p, ok := prev[cur]
			if !ok || p == "" {
				return nil, errors.New(errors.ErrCodeInvalidInput, "vertex %d is unreachable from %d", hi, lo)
			}
			v, err := strconv.ParseUint(p, 10, 32)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "predecessor %q", p)
			}
			rev = append(rev, graph.Vertex(v))
			cur = p
		}

		path := make(Path, len(rev))
		for i := range rev {
			v := rev[len(rev)-1-i]
			path[i] = Step{Vertex: v}
			if i > 0 {
				path[i].Weight, _ = g.Get(path[i-1].Vertex, v)
			}
		}
		return path, nil
	}), nil
}

func vertexID(v graph.Vertex) string {
	return strconv.FormatUint(uint64(v), 10)
}
