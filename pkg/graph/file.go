package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/weight"
)

// =============================================================================
// Wire Types
// =============================================================================

// File is the canonical serialization format for weighted graphs.
// Used for device files, API requests, and cached results.
type File struct {
	Edges []EdgeRecord `json:"edges" toml:"edges" bson:"edges"`
}

// EdgeRecord is one serialized edge. Direction is ignored on import.
type EdgeRecord struct {
	From   Vertex        `json:"from" toml:"from" bson:"from"`
	To     Vertex        `json:"to" toml:"to" bson:"to"`
	Weight weight.Weight `json:"weight" toml:"weight" bson:"weight"`
}

// Export converts g to its wire form. Edges are sorted for deterministic output.
func Export(g Weighted) File {
	es := g.Edges()
	out := File{Edges: make([]EdgeRecord, len(es))}
	for i, e := range es {
		out.Edges[i] = EdgeRecord{From: e.A, To: e.B, Weight: g[e]}
	}
	return out
}

// Import converts the wire form to a graph. Self-loops and conflicting
// duplicate edges are rejected.
func Import(f File) (Weighted, error) {
	g := make(Weighted, len(f.Edges))
	for _, r := range f.Edges {
		if r.From == r.To {
			return nil, errors.New(errors.ErrCodeInvalidInput, "self-loop on vertex %d", r.From)
		}
		e := NewEdge(r.From, r.To)
		if old, ok := g[e]; ok && old != r.Weight {
			return nil, errors.New(errors.ErrCodeInvalidInput,
				"edge %s listed twice with weights %d and %d", e, old, r.Weight)
		}
		g[e] = r.Weight
	}
	return g, nil
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal converts a graph to JSON bytes.
func Marshal(g Weighted) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes JSON bytes into a graph.
func Unmarshal(data []byte) (Weighted, error) {
	return Read(bytes.NewReader(data))
}

// Write writes a graph as indented JSON to w.
func Write(g Weighted, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Export(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a JSON graph from r.
func Read(r io.Reader) (Weighted, error) {
	var f File
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	return Import(f)
}

// WriteTOML writes a graph as TOML to w.
func WriteTOML(g Weighted, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(Export(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadTOML decodes a TOML graph from r.
func ReadTOML(r io.Reader) (Weighted, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode graph")
	}
	return Import(f)
}

// IsTOML reports whether path has a TOML extension.
func IsTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// ReadFile reads a graph file, choosing TOML or JSON by extension.
func ReadFile(path string) (Weighted, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if IsTOML(path) {
		return ReadTOML(f)
	}
	return Read(f)
}

// WriteFile writes a graph file, choosing TOML or JSON by extension.
// The file is created with 0644 permissions.
func WriteFile(g Weighted, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if IsTOML(path) {
		return WriteTOML(g, f)
	}
	return Write(g, f)
}
