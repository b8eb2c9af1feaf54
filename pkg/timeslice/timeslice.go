// Package timeslice builds the pattern graph of a circuit.
//
// Gates are first scheduled into time slices as soon as possible: each gate
// lands in the slice right after the latest slice that already uses one of
// its qubits. Every two-qubit interaction then adds the weight of its slice to
// the corresponding pattern edge, so interactions early in the circuit count
// for more than late ones.
package timeslice

import (
	"slices"

	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
)

// Method selects how gates are assigned times.
type Method string

const (
	// MethodTimeSlices schedules gates into parallel slices.
	MethodTimeSlices Method = "slices"
	// MethodOriginalOrder gives each gate its own time, in input order.
	MethodOriginalOrder Method = "original"
)

// Default interpolation endpoints.
const (
	DefaultTimeZeroWeight  weight.Weight = 100
	DefaultFinalTimeWeight weight.Weight = 20
)

// Parameters controls pattern graph construction.
type Parameters struct {
	Method Method `json:"method,omitempty" toml:"method"`

	// TimeZeroWeight and FinalTimeWeight are interpolated linearly across
	// slices when PerSlice is empty.
	TimeZeroWeight  weight.Weight `json:"time_zero_weight,omitempty" toml:"time_zero_weight"`
	FinalTimeWeight weight.Weight `json:"final_time_weight,omitempty" toml:"final_time_weight"`

	// PerSlice overrides interpolation. It needs one entry per slice.
	PerSlice []weight.Weight `json:"per_slice,omitempty" toml:"per_slice"`
}

// DefaultParameters returns the time-slicing method with weights 100 → 20.
func DefaultParameters() Parameters {
	return Parameters{
		Method:          MethodTimeSlices,
		TimeZeroWeight:  DefaultTimeZeroWeight,
		FinalTimeWeight: DefaultFinalTimeWeight,
	}
}

// Validate checks the method and the interpolation endpoints.
func (p Parameters) Validate() error {
	switch p.Method {
	case MethodTimeSlices, MethodOriginalOrder, "":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown time method %q", p.Method)
	}
	if len(p.PerSlice) > 0 {
		return nil
	}
	return validateEndpoints(p.TimeZeroWeight, p.FinalTimeWeight)
}

func validateEndpoints(w0, wf weight.Weight) error {
	if wf == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "final time weight must be positive")
	}
	if w0 < wf {
		return errors.New(errors.ErrCodeInvalidInput,
			"time zero weight %d must be >= final time weight %d", w0, wf)
	}
	return nil
}

// Slices holds the pairwise interactions of each time slice.
type Slices [][]graph.Edge

// Slice schedules gates into time slices. Gates on fewer than two qubits are
// skipped; larger gates contribute the chain of consecutive pairs over their
// sorted qubits, all in the same slice.
func Slice(gates circuit.Gates) Slices {
	var out Slices
	latest := make(map[graph.Vertex]int)
	for _, g := range gates {
		if len(g) < 2 {
			continue
		}
		t := 0
		for _, q := range g {
			if prev, ok := latest[q]; ok {
				t = max(t, prev+1)
			}
		}
		for _, q := range g {
			latest[q] = t
		}
		for len(out) <= t {
			out = append(out, nil)
		}
		out[t] = append(out[t], g.Pairs()...)
	}
	return out
}

// OriginalOrder gives every multi-qubit gate its own slice, in input order.
func OriginalOrder(gates circuit.Gates) Slices {
	var out Slices
	for _, g := range gates {
		if len(g) >= 2 {
			out = append(out, g.Pairs())
		}
	}
	return out
}

// Interpolate returns size weights falling linearly from w0 to wf, rounded
// down. It rejects size < 1, w0 < wf and wf == 0, and fails if 2·size·(w0+wf)
// would overflow.
func Interpolate(w0, wf weight.Weight, size int) ([]weight.Weight, error) {
	if size < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "need at least one time slice, got %d", size)
	}
	if err := validateEndpoints(w0, wf); err != nil {
		return nil, err
	}
	ends, err := weight.Sum(w0, wf)
	if err != nil {
		return nil, err
	}
	twice, err := weight.Product(2, ends)
	if err != nil {
		return nil, err
	}
	if _, err := weight.Product(twice, weight.Weight(size)); err != nil {
		return nil, err
	}

	ws := make([]weight.Weight, size)
	ws[0] = w0
	if size == 1 {
		return ws, nil
	}
	last := weight.Weight(size - 1)
	for i := 1; i < size; i++ {
		// Both products are bounded by size·(w0+wf), checked above.
		ii := weight.Weight(i)
		ws[i] = (w0*(last-ii) + wf*ii) / last
	}
	return ws, nil
}

// PatternGraph adds weights[i] to every edge seen in slice i.
func (s Slices) PatternGraph(weights []weight.Weight) (graph.Weighted, error) {
	if len(weights) < len(s) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"%d slices but only %d slice weights", len(s), len(weights))
	}
	g := graph.Weighted{}
	for i, edges := range s {
		for _, e := range edges {
			w := g[e]
			if err := weight.Add(&w, weights[i]); err != nil {
				return nil, err
			}
			g[e] = w
		}
	}
	return g, nil
}

// Edges returns the distinct edges across all slices, sorted.
func (s Slices) Edges() []graph.Edge {
	var out []graph.Edge
	for _, edges := range s {
		out = append(out, edges...)
	}
	slices.SortFunc(out, graph.CompareEdges)
	return slices.Compact(out)
}

// Build schedules gates and weights the resulting interactions.
// A gate list without multi-qubit gates yields an empty pattern graph.
func Build(gates circuit.Gates, p Parameters) (Slices, graph.Weighted, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	var s Slices
	if p.Method == MethodOriginalOrder {
		s = OriginalOrder(gates)
	} else {
		s = Slice(gates)
	}
	if len(s) == 0 {
		return s, graph.Weighted{}, nil
	}
	weights := p.PerSlice
	if len(weights) == 0 {
		var err error
		if weights, err = Interpolate(p.TimeZeroWeight, p.FinalTimeWeight, len(s)); err != nil {
			return nil, nil, err
		}
	}
	g, err := s.PatternGraph(weights)
	if err != nil {
		return nil, nil, err
	}
	return s, g, nil
}
