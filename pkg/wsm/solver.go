// Package wsm defines the weighted subgraph monomorphism solver contract used
// by placement, and provides a reference solver.
//
// A solution maps every pattern vertex to a distinct target vertex such that
// every pattern edge lands on a target edge. Its cost is the scalar product
// of pattern edge weights with the weights of the target edges they land on.
//
// Solvers are anytime: [Solver.Solve] may be called repeatedly to extend a
// search, and [Solver.BestSolution] always reflects the best result seen so
// far, which may be partial.
package wsm

import (
	"context"
	"time"

	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
)

// Solver is the in-process contract between placement and a monomorphism
// search.
type Solver interface {
	// Initialise prepares a search of pattern into target.
	Initialise(ctx context.Context, pattern, target graph.Weighted) (InitStats, error)

	// Solve continues the search within the given budget. Once no
	// improvement is possible, or when the budget is zero, it returns
	// without changing the best solution.
	Solve(ctx context.Context, p Parameters) error

	// BestSolution returns the best solution seen across all Solve calls.
	BestSolution() RawSolution

	// Statistics returns cumulative timing and iteration counts.
	Statistics() Statistics
}

// Parameters bounds a single Solve call.
type Parameters struct {
	Timeout time.Duration
	// MaxIterations caps the cumulative iteration count when nonzero.
	MaxIterations uint64
}

// InitStats reports the cost of Initialise.
type InitStats struct {
	InitTime time.Duration
}

// Assignment maps pattern vertex P to target vertex T.
type Assignment struct {
	P graph.Vertex `json:"p"`
	T graph.Vertex `json:"t"`
}

// RawSolution is solver output. Assignments need not be injective or cover
// every pattern vertex; callers validate them.
type RawSolution struct {
	Assignments   []Assignment  `json:"assignments"`
	Complete      bool          `json:"complete"`
	ScalarProduct weight.Weight `json:"scalar_product"`
}

// Statistics is cumulative over all Solve calls.
type Statistics struct {
	InitTime   time.Duration `json:"init_time"`
	SearchTime time.Duration `json:"search_time"`
	Iterations uint64        `json:"iterations"`
}

// Factory creates a fresh solver for one pass.
type Factory func() Solver

// NewSearchSolver is the default [Factory].
func NewSearchSolver() Solver { return NewSearch() }
