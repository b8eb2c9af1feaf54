// Package circuit holds the gate stream that placement consumes.
//
// A circuit is reduced to the ordered sequence of qubit sets its gates act
// on. Nothing else about the circuit is needed to build the pattern graph or
// to score a placement.
package circuit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
)

// Gate is the sorted, duplicate-free set of pattern vertices a gate acts on.
type Gate []graph.Vertex

// NewGate builds a gate from qubits in any order.
func NewGate(qubits ...graph.Vertex) Gate {
	g := slices.Clone(qubits)
	slices.Sort(g)
	return slices.Compact(g)
}

// Pairs returns the chain of consecutive pairs over the gate's qubits.
// Gates on fewer than two qubits have no pairs.
func (g Gate) Pairs() []graph.Edge {
	if len(g) < 2 {
		return nil
	}
	out := make([]graph.Edge, 0, len(g)-1)
	for i := 1; i < len(g); i++ {
		out = append(out, graph.NewEdge(g[i-1], g[i]))
	}
	return out
}

// Gates is a gate list in execution order.
type Gates []Gate

// Qubits returns every qubit used by a gate, sorted.
func (gs Gates) Qubits() []graph.Vertex {
	var out []graph.Vertex
	for _, g := range gs {
		out = append(out, g...)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// TwoQubit returns the two-qubit gates as edges, in order.
func (gs Gates) TwoQubit() []graph.Edge {
	var out []graph.Edge
	for _, g := range gs {
		if len(g) == 2 {
			out = append(out, graph.NewEdge(g[0], g[1]))
		}
	}
	return out
}

// =============================================================================
// Serialization
// =============================================================================

// File is the serialized form of a gate list.
type File struct {
	Gates [][]graph.Vertex `json:"gates" toml:"gates" bson:"gates"`
}

// Export converts gates to their wire form.
func Export(gs Gates) File {
	f := File{Gates: make([][]graph.Vertex, len(gs))}
	for i, g := range gs {
		f.Gates[i] = slices.Clone(g)
	}
	return f
}

// Import normalises every gate in f.
func Import(f File) Gates {
	gs := make(Gates, len(f.Gates))
	for i, q := range f.Gates {
		gs[i] = NewGate(q...)
	}
	return gs
}

// Read decodes a JSON gate list from r.
func Read(r io.Reader) (Gates, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode gates")
	}
	return Import(f), nil
}

// Write writes gates as JSON to w.
func Write(gs Gates, w io.Writer) error {
	if err := json.NewEncoder(w).Encode(Export(gs)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal converts gates to JSON bytes.
func Marshal(gs Gates) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(gs, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReadTOML decodes a TOML gate list from r.
func ReadTOML(r io.Reader) (Gates, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode gates")
	}
	return Import(f), nil
}

// ReadFile reads a gate file, choosing TOML or JSON by extension.
func ReadFile(path string) (Gates, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if graph.IsTOML(path) {
		return ReadTOML(f)
	}
	return Read(f)
}
