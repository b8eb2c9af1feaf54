// Package augment adds synthetic edges to a device graph.
//
// A synthetic edge between two qubits that are not directly connected
// estimates the cost of a two-qubit gate between them: the qubits are
// swapped together along a path, and the gate runs on the worst edge of that
// path. With K primitive gates per swap, a path with edge weight sum S and
// largest edge weight M costs K·S − (K−1)·M.
package augment

import (
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/weight"
)

// Parameters controls how far and how expensive synthetic edges may be.
type Parameters struct {
	// SwapGateCount is the number of primitive two-qubit gates per swap.
	SwapGateCount uint64 `json:"swap_gate_count,omitempty" toml:"swap_gate_count"`
	// MaxPathLength bounds the number of edges explored from each source.
	MaxPathLength uint64 `json:"max_path_length,omitempty" toml:"max_path_length"`

	MaxWeightRatioToLargest         uint64 `json:"max_weight_ratio_to_largest,omitempty" toml:"max_weight_ratio_to_largest"`
	MaxWeightRatioToSmallestNonzero uint64 `json:"max_weight_ratio_to_smallest_nonzero,omitempty" toml:"max_weight_ratio_to_smallest_nonzero"`

	// AbsoluteMaxWeight, if set, must exceed the largest original weight.
	AbsoluteMaxWeight *weight.Weight `json:"absolute_max_weight,omitempty" toml:"absolute_max_weight"`

	// RemoveHighWeights drops synthetic edges above the cap instead of
	// clamping them to it.
	RemoveHighWeights bool `json:"remove_high_weights,omitempty" toml:"remove_high_weights"`

	// ReplaceLowFidelity lets a cheaper multi-edge path lower the weight of
	// an original edge.
	ReplaceLowFidelity bool `json:"replace_low_fidelity,omitempty" toml:"replace_low_fidelity"`
}

// DefaultParameters returns K=3, L=5 and ratio caps 10 and 100.
func DefaultParameters() Parameters {
	return Parameters{
		SwapGateCount:                   3,
		MaxPathLength:                   5,
		MaxWeightRatioToLargest:         10,
		MaxWeightRatioToSmallestNonzero: 100,
	}
}

// Validate checks parameter ranges.
func (p Parameters) Validate() error {
	if err := errors.ValidateAtLeast("swap gate count", p.SwapGateCount, 1); err != nil {
		return err
	}
	if err := errors.ValidateAtLeast("max path length", p.MaxPathLength, 1); err != nil {
		return err
	}
	if err := errors.ValidateRatio("max weight ratio to largest", p.MaxWeightRatioToLargest); err != nil {
		return err
	}
	return errors.ValidateRatio("max weight ratio to smallest nonzero", p.MaxWeightRatioToSmallestNonzero)
}

// Cap returns the largest weight a synthetic edge may carry for the given
// original graph: the smallest of the absolute cap, the largest original
// weight times MaxWeightRatioToLargest, and the smallest nonzero original
// weight times MaxWeightRatioToSmallestNonzero. Ratio products that overflow
// impose no limit.
func (p Parameters) Cap(original graph.Weighted) (weight.Weight, error) {
	largest := original.MaxWeight()
	if largest == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "device graph has no nonzero weights")
	}
	limit := weight.Max
	if p.AbsoluteMaxWeight != nil {
		if *p.AbsoluteMaxWeight <= largest {
			return 0, errors.New(errors.ErrCodeInvalidInput,
				"absolute max weight %d must exceed largest device weight %d", *p.AbsoluteMaxWeight, largest)
		}
		limit = *p.AbsoluteMaxWeight
	}
	if w, err := weight.Product(largest, weight.Weight(p.MaxWeightRatioToLargest)); err == nil {
		limit = min(limit, w)
	}
	if w, err := weight.Product(original.MinNonzeroWeight(), weight.Weight(p.MaxWeightRatioToSmallestNonzero)); err == nil {
		limit = min(limit, w)
	}
	return limit, nil
}

type pathState struct {
	length uint64
	sum    weight.Weight
	max    weight.Weight
	end    graph.Vertex
}

// Augment returns original plus synthetic edges for every vertex pair joined
// by a path of at most MaxPathLength edges, subject to the weight cap.
// Original edges keep their weights unless ReplaceLowFidelity finds a cheaper
// path. The input graph is not modified.
func Augment(original graph.Weighted, p Parameters) (graph.Weighted, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := original.Validate(); err != nil {
		return nil, err
	}
	limit, err := p.Cap(original)
	if err != nil {
		return nil, err
	}

	k := weight.Weight(p.SwapGateCount)
	adj := original.Neighbours()
	out := original.Clone()

	var stack []pathState
	for _, source := range original.Vertices() {
		reached := make(map[graph.Vertex]bool)
		stack = append(stack[:0], pathState{end: source})

		for len(stack) > 0 {
			path := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			extend := path.length < p.MaxPathLength
			if path.length > 0 {
				add := true
				neighbour := original.Has(source, path.end)
				switch {
				case path.end == source:
					extend, add = false, false
				case neighbour:
					if path.length > 1 {
						extend = false
						add = p.ReplaceLowFidelity
					}
				case reached[path.end]:
					extend = false
				}
				reached[path.end] = true

				if add {
					cost, err := pathCost(k, path.sum, path.max)
					if err != nil {
						return nil, err
					}
					e := graph.NewEdge(source, path.end)
					if old, ok := out[e]; !ok || cost < old {
						out[e] = cost
					}
				}
			}
			if !extend {
				continue
			}
			for _, n := range adj[path.end] {
				if n.Vertex == source {
					continue
				}
				sum, err := weight.Sum(path.sum, n.Weight)
				if err != nil {
					return nil, err
				}
				stack = append(stack, pathState{
					length: path.length + 1,
					sum:    sum,
					max:    max(path.max, n.Weight),
					end:    n.Vertex,
				})
			}
		}
	}

	for e, w := range out {
		if _, ok := original[e]; ok || w <= limit {
			continue
		}
		if p.RemoveHighWeights {
			delete(out, e)
		} else {
			out[e] = limit
		}
	}

	if err := checkHeadroom(out, k); err != nil {
		return nil, err
	}
	return out, nil
}

// pathCost returns k·sum − (k−1)·max. Since max <= sum the subtraction
// cannot underflow.
func pathCost(k, sum, mx weight.Weight) (weight.Weight, error) {
	total, err := weight.Product(k, sum)
	if err != nil {
		return 0, err
	}
	return total - (k-1)*mx, nil
}

// checkHeadroom fails if total·k·10 overflows. Solvers multiply weights
// internally and need this margin.
func checkHeadroom(g graph.Weighted, k weight.Weight) error {
	total, err := g.TotalWeight()
	if err != nil {
		return err
	}
	if total, err = weight.Product(total, k); err != nil {
		return err
	}
	_, err = weight.Product(total, 10)
	return err
}
