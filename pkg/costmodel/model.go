package costmodel

import (
	"maps"

	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/placement"
	"github.com/matzehuels/qplace/pkg/weight"
)

// DefaultSwapCost is the number of primitive two-qubit gates in one SWAP.
const DefaultSwapCost weight.Weight = 3

// InvalidToken is the first token id reserved for placeholders. Device
// vertices on a routing path that hold no qubit receive distinct placeholder
// tokens from here upward.
const InvalidToken graph.Vertex = 1 << 31

// WeightsData summarises the edge weights of a path.
type WeightsData struct {
	// Highest is the largest edge weight.
	Highest weight.Weight
	// Index is the step whose incoming edge has weight Highest. Ties go to
	// the earliest step.
	Index int
	// SwapSum is the sum of all other edge weights.
	SwapSum weight.Weight
}

// NewWeightsData computes the WeightsData of p, which must have at least
// two steps.
func NewWeightsData(p Path) (WeightsData, error) {
	if len(p) < 2 {
		return WeightsData{}, errors.New(errors.ErrCodeInternal, "path of %d vertices has no edges", len(p))
	}
	d := WeightsData{Index: 1}
	for i := 1; i < len(p); i++ {
		if p[i].Weight > p[d.Index].Weight {
			d.Index = i
		}
	}
	d.Highest = p[d.Index].Weight
	total, err := p.Total()
	if err != nil {
		return WeightsData{}, err
	}
	d.SwapSum = total - d.Highest
	return d, nil
}

// Cost returns Highest + SwapSum·swapCost.
func (d WeightsData) Cost(swapCost weight.Weight) (weight.Weight, error) {
	swaps, err := weight.Product(d.SwapSum, swapCost)
	if err != nil {
		return 0, err
	}
	return weight.Sum(d.Highest, swaps)
}

// Model tracks where each token sits as gates are routed.
//
// A Model is not safe for concurrent use.
type Model struct {
	oracle   PathOracle
	swapCost weight.Weight

	placement placement.Placement
	tokens    map[graph.Vertex]graph.Vertex
	nextDummy graph.Vertex
}

// New returns a model routing along oracle. A zero swapCost selects
// DefaultSwapCost.
func New(oracle PathOracle, swapCost weight.Weight) *Model {
	if swapCost == 0 {
		swapCost = DefaultSwapCost
	}
	return &Model{oracle: oracle, swapCost: swapCost}
}

// Initialise replaces the state with start, which must be injective.
func (m *Model) Initialise(start placement.Placement) error {
	if len(start) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "empty placement")
	}
	m.placement = make(placement.Placement, len(start))
	m.tokens = make(map[graph.Vertex]graph.Vertex, len(start))
	m.nextDummy = InvalidToken
	for p, t := range start {
		if p >= InvalidToken {
			return errors.New(errors.ErrCodeInvalidInput, "qubit %d is out of range", p)
		}
		if q, ok := m.tokens[t]; ok {
			return errors.New(errors.ErrCodeInvalidInput, "qubits %d and %d share vertex %d", min(p, q), max(p, q), t)
		}
		m.placement[p] = t
		m.tokens[t] = p
	}
	return m.RequireValid()
}

// ApplyGate routes the two-qubit gate (p1, p2) and returns its cost. On
// error the state is unchanged.
func (m *Model) ApplyGate(p1, p2 graph.Vertex) (weight.Weight, error) {
	if p1 == p2 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "gate acts twice on qubit %d", p1)
	}
	v1, ok1 := m.placement[p1]
	v2, ok2 := m.placement[p2]
	if !ok1 || !ok2 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "gate %d-%d uses an unplaced qubit", p1, p2)
	}
	path, err := m.oracle.PathBetween(v1, v2)
	if err != nil {
		return 0, err
	}
	if err := checkPath(path, v1, v2); err != nil {
		return 0, err
	}
	data, err := NewWeightsData(path)
	if err != nil {
		return 0, err
	}
	cost, err := data.Cost(m.swapCost)
	if err != nil {
		return 0, err
	}
	m.enactSwaps(path, data.Index)
	return cost, m.RequireValid()
}

// ApplyAll routes every two-qubit gate in order and returns the total
// cost. Single-qubit gates are free; larger gates are rejected.
func (m *Model) ApplyAll(gates circuit.Gates) (weight.Weight, error) {
	var total weight.Weight
	for i, g := range gates {
		switch len(g) {
		case 0, 1:
			continue
		case 2:
		default:
			return 0, errors.New(errors.ErrCodeUnsupported, "gate %d acts on %d qubits", i, len(g))
		}
		cost, err := m.ApplyGate(g[0], g[1])
		if err != nil {
			return 0, err
		}
		if err := weight.Add(&total, cost); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// enactSwaps rotates the tokens before step idx toward path[0] and moves
// the first token to path[idx-1], then does the mirror image on the tail so
// that the last token lands on path[idx].
func (m *Model) enactSwaps(path Path, idx int) {
	for _, s := range path {
		if _, ok := m.tokens[s.Vertex]; !ok {
			m.tokens[s.Vertex] = m.nextDummy
			m.nextDummy++
		}
	}

	if idx-1 > 0 {
		first := m.tokens[path[0].Vertex]
		for i := 0; i+1 < idx; i++ {
			m.moveToken(m.tokens[path[i+1].Vertex], path[i].Vertex)
		}
		m.moveToken(first, path[idx-1].Vertex)
	}

	last := len(path) - 1
	if last != idx {
		tail := m.tokens[path[last].Vertex]
		for i := last; i > idx; i-- {
			m.moveToken(m.tokens[path[i-1].Vertex], path[i].Vertex)
		}
		m.moveToken(tail, path[idx].Vertex)
	}
}

func (m *Model) moveToken(token, v graph.Vertex) {
	m.tokens[v] = token
	if token < InvalidToken {
		m.placement[token] = v
	}
}

// RequireValid checks that the placement and token maps are inverse to each
// other on real tokens.
func (m *Model) RequireValid() error {
	for p, v := range m.placement {
		if p >= InvalidToken {
			return errors.New(errors.ErrCodeInternal, "placeholder token %d is placed", p)
		}
		if t, ok := m.tokens[v]; !ok || t != p {
			return errors.New(errors.ErrCodeInternal, "qubit %d placed at %d but vertex holds %d", p, v, t)
		}
	}
	for v, t := range m.tokens {
		if t >= InvalidToken {
			continue
		}
		if pv, ok := m.placement[t]; !ok || pv != v {
			return errors.New(errors.ErrCodeInternal, "vertex %d holds qubit %d placed at %d", v, t, pv)
		}
	}
	return nil
}

// Placement returns a copy of the current qubit-to-vertex map.
func (m *Model) Placement() placement.Placement {
	return maps.Clone(m.placement)
}

// Tokens returns a copy of the current vertex-to-token map, placeholders
// included.
func (m *Model) Tokens() map[graph.Vertex]graph.Vertex {
	return maps.Clone(m.tokens)
}
