package placement

import (
	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
	"github.com/matzehuels/qplace/pkg/wsm"
)

// Input bundles the graphs and gates of one placement request.
type Input struct {
	// Pattern is the weighted interaction graph of the circuit.
	Pattern graph.Weighted
	// Original is the device graph as characterised.
	Original graph.Weighted
	// Augmented is Original plus synthetic edges.
	Augmented graph.Weighted
	// Gates is used only for statistics.
	Gates circuit.Gates
}

func (in Input) validate() error {
	if len(in.Pattern) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "pattern graph has no edges")
	}
	if len(in.Original) == 0 || len(in.Augmented) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "device graph has no edges")
	}
	if p, t := len(in.Pattern.Vertices()), len(in.Augmented.Vertices()); p > t {
		return errors.New(errors.ErrCodeInvalidInput,
			"circuit uses %d qubits but the device has only %d", p, t)
	}
	return nil
}

// Validate turns raw solver output into an injective placement and scores
// every gate against it.
//
// Assignments are scanned in order and kept only if neither their pattern
// nor their target vertex is already taken. Two-qubit gates are then
// classified as in place (an original device edge), nearby (an augmented
// edge, whose weight is added to the swap total), poor (assigned but with no
// augmented edge) or unassigned. A two-qubit gate absent from the pattern
// graph is an internal error.
func Validate(in Input, raw wsm.RawSolution) (Placement, Stats, error) {
	placement := make(Placement, len(raw.Assignments))
	taken := make(map[graph.Vertex]bool, len(raw.Assignments))
	for _, a := range raw.Assignments {
		if _, ok := placement[a.P]; ok || taken[a.T] {
			continue
		}
		placement[a.P] = a.T
		taken[a.T] = true
	}

	stats := Stats{Assigned: len(placement)}
	for _, g := range in.Gates {
		switch len(g) {
		case 0:
		case 1:
			stats.SingleQubit++
		case 2:
			if !in.Pattern.Has(g[0], g[1]) {
				return nil, Stats{}, errors.New(errors.ErrCodeInternal,
					"gate %d-%d missing from pattern graph", g[0], g[1])
			}
			t0, ok0 := placement[g[0]]
			t1, ok1 := placement[g[1]]
			if !ok0 || !ok1 {
				stats.Unassigned++
				continue
			}
			if in.Original.Has(t0, t1) {
				stats.InPlace++
				continue
			}
			if w, ok := in.Augmented.Get(t0, t1); ok {
				stats.Nearby++
				if err := weight.Add(&stats.SwapWeight, w); err != nil {
					return nil, Stats{}, err
				}
				continue
			}
			stats.Poor++
		default:
			stats.MultiQubit++
			for _, q := range g {
				if _, ok := placement[q]; !ok {
					stats.MultiQubitUnassigned++
					break
				}
			}
		}
	}
	return placement, stats, nil
}
