package wsm

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
)

// clockCheckInterval is how many iterations run between deadline checks.
const clockCheckInterval = 64

// Search is a resumable depth-first branch-and-bound solver.
//
// Pattern vertices are assigned in a fixed order that keeps each new vertex
// adjacent to already assigned ones where possible. Candidates for a vertex
// are the free target vertices adjacent to the images of all its assigned
// neighbours, tried cheapest first. A branch is cut once its partial cost
// reaches the best complete cost. Each candidate tried is one iteration.
type Search struct {
	ready bool

	order   []graph.Vertex
	earlier [][]link
	degree  []int

	targets   []graph.Vertex
	targetAdj map[graph.Vertex][]graph.Neighbour
	targetW   graph.Weighted

	frames   []frame
	assigned []graph.Vertex
	used     map[graph.Vertex]bool

	exhausted bool
	best      RawSolution
	bestDepth int
	stats     Statistics
}

// link is an edge from a pattern vertex back to one assigned earlier.
type link struct {
	depth int
	w     weight.Weight
}

type candidate struct {
	t    graph.Vertex
	cost weight.Weight
}

type frame struct {
	cands  []candidate
	next   int
	active bool
}

// NewSearch returns an uninitialised solver.
func NewSearch() *Search {
	return &Search{}
}

// Initialise implements [Solver].
func (s *Search) Initialise(ctx context.Context, pattern, target graph.Weighted) (InitStats, error) {
	start := time.Now()
	*s = Search{}

	if len(pattern) == 0 {
		return InitStats{}, errors.New(errors.ErrCodeInvalidInput, "pattern graph has no edges")
	}
	if len(target) == 0 {
		return InitStats{}, errors.New(errors.ErrCodeInvalidInput, "target graph has no edges")
	}
	// Bound every partial scalar product up front so the search can use
	// plain arithmetic.
	total, err := pattern.TotalWeight()
	if err != nil {
		return InitStats{}, err
	}
	if _, err := weight.Product(total, target.MaxWeight()); err != nil {
		return InitStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return InitStats{}, err
	}

	s.targetW = target
	s.targetAdj = target.Neighbours()
	s.targets = target.Vertices()
	s.buildOrder(pattern)

	s.assigned = make([]graph.Vertex, len(s.order))
	s.used = make(map[graph.Vertex]bool, len(s.targets))
	s.best.ScalarProduct = weight.Max
	s.frames = []frame{{cands: s.candidates(0, 0)}}
	s.ready = true

	s.stats.InitTime = time.Since(start)
	return InitStats{InitTime: s.stats.InitTime}, nil
}

// buildOrder starts from the highest degree vertex and then repeatedly takes
// the vertex with most already ordered neighbours. Ties prefer higher degree,
// then lower id.
func (s *Search) buildOrder(pattern graph.Weighted) {
	adj := pattern.Neighbours()
	vs := pattern.Vertices()
	position := make(map[graph.Vertex]int, len(vs))
	placedNbrs := make(map[graph.Vertex]int, len(vs))

	for len(s.order) < len(vs) {
		var pick graph.Vertex
		found := false
		for _, v := range vs {
			if _, done := position[v]; done {
				continue
			}
			if !found || better(placedNbrs[v], len(adj[v]), placedNbrs[pick], len(adj[pick])) {
				pick, found = v, true
			}
		}
		depth := len(s.order)
		position[pick] = depth
		s.order = append(s.order, pick)
		s.degree = append(s.degree, len(adj[pick]))

		var links []link
		for _, n := range adj[pick] {
			if d, ok := position[n.Vertex]; ok && d < depth {
				links = append(links, link{depth: d, w: n.Weight})
			} else {
				placedNbrs[n.Vertex]++
			}
		}
		s.earlier = append(s.earlier, links)
	}
}

func better(placedA, degA, placedB, degB int) bool {
	if placedA != placedB {
		return placedA > placedB
	}
	return degA > degB
}

// candidates lists the feasible targets for the vertex at depth, given the
// current partial assignment with cost base.
func (s *Search) candidates(depth int, base weight.Weight) []candidate {
	links := s.earlier[depth]
	pool := s.targets
	if len(links) > 0 {
		anchor := s.assigned[links[0].depth]
		pool = pool[:0:0]
		for _, n := range s.targetAdj[anchor] {
			pool = append(pool, n.Vertex)
		}
	}

	var out []candidate
	for _, t := range pool {
		if s.used[t] || len(s.targetAdj[t]) < s.degree[depth] {
			continue
		}
		cost, ok := base, true
		for _, l := range links {
			tw, has := s.targetW.Get(s.assigned[l.depth], t)
			if !has {
				ok = false
				break
			}
			cost += l.w * tw
		}
		if ok {
			out = append(out, candidate{t: t, cost: cost})
		}
	}
	slices.SortFunc(out, func(a, b candidate) int {
		if c := cmp.Compare(a.cost, b.cost); c != 0 {
			return c
		}
		return cmp.Compare(a.t, b.t)
	})
	return out
}

// Solve implements [Solver].
func (s *Search) Solve(ctx context.Context, p Parameters) error {
	if !s.ready {
		return errors.New(errors.ErrCodeInternal, "solve called before initialise")
	}
	if s.exhausted || p.Timeout <= 0 {
		return nil
	}
	start := time.Now()
	deadline := start.Add(p.Timeout)
	defer func() { s.stats.SearchTime += time.Since(start) }()

	for steps := 0; !s.exhausted; steps++ {
		if p.MaxIterations > 0 && s.stats.Iterations >= p.MaxIterations {
			return nil
		}
		if steps > 0 && steps%clockCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			if time.Now().After(deadline) {
				return nil
			}
		}
		s.step()
	}
	return nil
}

// step advances the search by one candidate, unwinding exhausted frames first.
func (s *Search) step() {
	for len(s.frames) > 0 {
		depth := len(s.frames) - 1
		f := &s.frames[depth]
		if f.active {
			s.used[s.assigned[depth]] = false
			f.active = false
		}
		if f.next < len(f.cands) && s.best.Complete && f.cands[f.next].cost >= s.best.ScalarProduct {
			f.next = len(f.cands)
		}
		if f.next == len(f.cands) {
			s.frames = s.frames[:depth]
			continue
		}

		c := f.cands[f.next]
		f.next++
		f.active = true
		s.assigned[depth] = c.t
		s.used[c.t] = true
		s.stats.Iterations++
		s.record(depth+1, c.cost)

		if depth+1 < len(s.order) {
			s.frames = append(s.frames, frame{cands: s.candidates(depth+1, c.cost)})
		}
		return
	}
	s.exhausted = true
}

// record keeps the first n assignments if they beat the best so far:
// deeper wins, then cheaper.
func (s *Search) record(n int, cost weight.Weight) {
	if n < s.bestDepth || (n == s.bestDepth && cost >= s.best.ScalarProduct) {
		return
	}
	s.bestDepth = n
	s.best.ScalarProduct = cost
	s.best.Complete = n == len(s.order)
	s.best.Assignments = s.best.Assignments[:0:0]
	for d := range n {
		s.best.Assignments = append(s.best.Assignments, Assignment{P: s.order[d], T: s.assigned[d]})
	}
}

// BestSolution implements [Solver]. The returned slice is a copy.
func (s *Search) BestSolution() RawSolution {
	out := s.best
	out.Assignments = slices.Clone(s.best.Assignments)
	if out.Assignments == nil {
		out.ScalarProduct = 0
	}
	return out
}

// Statistics implements [Solver].
func (s *Search) Statistics() Statistics { return s.stats }

// Exhausted reports whether the whole search space has been covered, in
// which case the best complete solution, if any, is optimal.
func (s *Search) Exhausted() bool { return s.exhausted }
