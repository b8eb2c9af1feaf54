package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/weight"
)

func TestNewEdgeCanonical(t *testing.T) {
	assert.Equal(t, Edge{A: 1, B: 4}, NewEdge(4, 1))
	assert.Equal(t, NewEdge(2, 3), NewEdge(3, 2))
	assert.Equal(t, Vertex(4), NewEdge(4, 1).Other(1))
}

func sample() Weighted {
	g := Weighted{}
	g.Set(0, 1, 4)
	g.Set(2, 1, 7)
	g.Set(3, 0, 0)
	return g
}

func TestWeightedQueries(t *testing.T) {
	g := sample()

	assert.Equal(t, []Vertex{0, 1, 2, 3}, g.Vertices())
	assert.Equal(t, []Edge{{0, 1}, {0, 3}, {1, 2}}, g.Edges())
	assert.Equal(t, weight.Weight(7), g.MaxWeight())
	assert.Equal(t, weight.Weight(4), g.MinNonzeroWeight())
	assert.True(t, g.Has(1, 2))
	assert.False(t, g.Has(0, 2))

	w, ok := g.Get(1, 0)
	require.True(t, ok)
	assert.Equal(t, weight.Weight(4), w)

	adj := g.Neighbours()
	assert.Equal(t, []Neighbour{{0, 4}, {2, 7}}, adj[1])
	assert.Equal(t, []Neighbour{{1, 4}, {3, 0}}, adj[0])

	tot, err := g.TotalWeight()
	require.NoError(t, err)
	assert.Equal(t, weight.Weight(11), tot)
}

func TestTotalWeightOverflow(t *testing.T) {
	g := Weighted{}
	g.Set(0, 1, weight.Max)
	g.Set(1, 2, 1)
	_, err := g.TotalWeight()
	assert.True(t, errors.Is(err, errors.ErrCodeOverflow))
}

func TestValidate(t *testing.T) {
	assert.True(t, errors.Is(Weighted{}.Validate(), errors.ErrCodeInvalidInput))
	assert.Error(t, Weighted{{A: 2, B: 2}: 1}.Validate())
	assert.NoError(t, sample().Validate())
}

func TestCloneIsIndependent(t *testing.T) {
	g := sample()
	c := g.Clone()
	c.Set(5, 6, 1)
	assert.False(t, g.Has(5, 6))
}

func TestJSONRoundTrip(t *testing.T) {
	data, err := Marshal(sample())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"from": 0`)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestImportRejects(t *testing.T) {
	tests := []struct {
		name string
		file File
	}{
		{"self-loop", File{Edges: []EdgeRecord{{From: 1, To: 1, Weight: 2}}}},
		{"conflicting duplicate", File{Edges: []EdgeRecord{{From: 0, To: 1, Weight: 2}, {From: 1, To: 0, Weight: 3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(tt.file)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
		})
	}

	g, err := Import(File{Edges: []EdgeRecord{{From: 0, To: 1, Weight: 2}, {From: 1, To: 0, Weight: 2}}})
	require.NoError(t, err)
	assert.Len(t, g, 1)
}

func TestReadMalformed(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte("{not json")))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"device.json", "device.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(sample(), path))
			got, err := ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, sample(), got)
		})
	}

	raw, err := os.ReadFile(filepath.Join(dir, "device.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[[edges]]")
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}
