package costmodel

import (
	"slices"
	"sync"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
)

// Step is one vertex of a path. Weight is the weight of the edge from the
// previous vertex, and zero for the first step.
type Step struct {
	Vertex graph.Vertex  `json:"vertex"`
	Weight weight.Weight `json:"weight"`
}

// Path is a walk through the device, first vertex first.
type Path []Step

// Vertices returns the vertices of p in order.
func (p Path) Vertices() []graph.Vertex {
	vs := make([]graph.Vertex, len(p))
	for i, s := range p {
		vs[i] = s.Vertex
	}
	return vs
}

// Total returns the sum of the edge weights along p.
func (p Path) Total() (weight.Weight, error) {
	var total weight.Weight
	for _, s := range p {
		if err := weight.Add(&total, s.Weight); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Reverse returns p walked backwards, with the weights shifted so that each
// step again carries the weight of the edge leading into it.
func Reverse(p Path) Path {
	out := make(Path, len(p))
	for i, s := range p {
		out[len(p)-1-i] = Step{Vertex: s.Vertex}
	}
	for i := 1; i < len(out); i++ {
		out[i].Weight = p[len(p)-i].Weight
	}
	return out
}

// PathOracle returns a path between two distinct device vertices.
// The returned path starts at u, ends at v and must not be modified.
type PathOracle interface {
	PathBetween(u, v graph.Vertex) (Path, error)
}

// FindFunc computes a path from lo to hi, where lo < hi.
type FindFunc func(lo, hi graph.Vertex) (Path, error)

// PathCache is a PathOracle that computes each unordered pair once and
// answers the other direction with the reversed path.
type PathCache struct {
	find FindFunc

	mu    sync.Mutex
	paths map[[2]graph.Vertex]Path
}

// NewPathCache wraps find in a cache.
func NewPathCache(find FindFunc) *PathCache {
	return &PathCache{find: find, paths: make(map[[2]graph.Vertex]Path)}
}

// PathBetween implements PathOracle.
func (c *PathCache) PathBetween(u, v graph.Vertex) (Path, error) {
	if u == v {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no path from vertex %d to itself", u)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.paths[[2]graph.Vertex{u, v}]; ok {
		return p, nil
	}
	lo, hi := min(u, v), max(u, v)
	p, err := c.find(lo, hi)
	if err != nil {
		return nil, err
	}
	if err := checkPath(p, lo, hi); err != nil {
		return nil, err
	}
	c.paths[[2]graph.Vertex{lo, hi}] = p
	c.paths[[2]graph.Vertex{hi, lo}] = Reverse(p)
	return c.paths[[2]graph.Vertex{u, v}], nil
}

// Len returns the number of cached directed paths.
func (c *PathCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}

func checkPath(p Path, from, to graph.Vertex) error {
	switch {
	case len(p) < 2:
		return errors.New(errors.ErrCodeInternal, "path %d-%d has %d vertices", from, to, len(p))
	case p[0].Vertex != from || p[len(p)-1].Vertex != to:
		return errors.New(errors.ErrCodeInternal, "path %v does not join %d and %d", p.Vertices(), from, to)
	case p[0].Weight != 0:
		return errors.New(errors.ErrCodeInternal, "path %d-%d starts with nonzero weight", from, to)
	case len(slices.Compact(slices.Sorted(slices.Values(p.Vertices())))) != len(p):
		return errors.New(errors.ErrCodeInternal, "path %v revisits a vertex", p.Vertices())
	}
	return nil
}
