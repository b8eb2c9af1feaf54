package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/pipeline"
)

func testCLI() (*CLI, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(&buf, log.InfoLevel), &buf
}

func run(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := NewRootCommand(c)
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c, _ := testCLI()
	root := c.RootCommand()

	want := []string{"place", "slices", "augment", "cost", "render", "device", "serve", "cache", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVerboseSetsDebugLevel(t *testing.T) {
	c, _ := testCLI()
	if err := run(t, c, "-v", "cache", "path"); err != nil {
		t.Fatal(err)
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", c.Logger.GetLevel())
	}
}

func writeCircuit(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "circuit.json")
	data := `{"gates": [[0, 1], [1, 2], [2, 3], [3], [0, 3]]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDeviceCommandWritesGraph(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "ring.toml")

	c, _ := testCLI()
	if err := run(t, c, "device", "--kind", "ring", "--size", "6", "--weights", "2,3", "-o", out); err != nil {
		t.Fatal(err)
	}
	g, err := graph.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(g) != 6 {
		t.Errorf("ring has %d edges, want 6", len(g))
	}
	if w, _ := g.Get(0, 1); w != 2 {
		t.Errorf("edge 0-1 weight = %d, want 2", w)
	}
}

func TestDeviceCommandRejectsUnknownKind(t *testing.T) {
	c, _ := testCLI()
	if err := run(t, c, "device", "--kind", "torus", "--size", "4"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestPlaceCommandWritesResult(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	circuit := writeCircuit(t, dir)
	out := filepath.Join(dir, "result.json")

	c, _ := testCLI()
	err := run(t, c, "place", circuit, "--kind", "grid", "--size", "2", "--timeout", "300", "-o", out)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		t.Fatal(err)
	}
	if res.Placement == nil || res.Placement.Stats.Assigned != 4 {
		t.Fatalf("placement = %+v", res.Placement)
	}

	p, err := readPlacement(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 4 {
		t.Errorf("readPlacement returned %d qubits, want 4", len(p))
	}

	if err := run(t, c, "cost", circuit, "--kind", "grid", "--size", "2", "--placement", out); err != nil {
		t.Errorf("cost with placement file: %v", err)
	}
}

func TestPlaceCommandErrors(t *testing.T) {
	dir := t.TempDir()
	circuit := writeCircuit(t, dir)

	tests := []struct {
		name string
		args []string
	}{
		{"no device", []string{"place", circuit, "--no-cache"}},
		{"both device sources", []string{"place", circuit, "--device", "d.json", "--kind", "ring", "--no-cache"}},
		{"missing circuit", []string{"place", filepath.Join(dir, "missing.json"), "--kind", "ring", "--size", "5"}},
		{"device too small", []string{"place", circuit, "--kind", "line", "--size", "3", "--no-cache"}},
		{"bad forced pass", []string{"place", circuit, "--kind", "ring", "--size", "5", "--forced-pass", "second", "--no-cache"}},
		{"bad weights", []string{"place", circuit, "--kind", "ring", "--size", "5", "--weights", "1,x", "--no-cache"}},
		{"unknown cache", []string{"place", circuit, "--kind", "ring", "--size", "5", "--cache", "memcached"}},
		{"redis without addr", []string{"place", circuit, "--kind", "ring", "--size", "5", "--cache", "redis", "--redis-addr", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testCLI()
			if err := run(t, c, tt.args...); err == nil {
				t.Errorf("%v: expected an error", tt.args)
			}
		})
	}
}

func TestCostCommandOracles(t *testing.T) {
	dir := t.TempDir()
	circuit := writeCircuit(t, dir)

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"tree", []string{"--kind", "tree", "--size", "7", "--identity"}, false},
		{"grid", []string{"--kind", "grid", "--size", "2", "--identity", "--seed", "7"}, false},
		{"shortest", []string{"--kind", "ring", "--size", "5", "--identity", "--oracle", "shortest"}, false},
		{"tree oracle on a ring", []string{"--kind", "ring", "--size", "5", "--identity", "--oracle", "tree"}, true},
		{"unknown oracle", []string{"--kind", "ring", "--size", "5", "--identity", "--oracle", "astar"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testCLI()
			args := append([]string{"cost", circuit, "--json"}, tt.args...)
			err := run(t, c, args...)
			if (err != nil) != tt.wantErr {
				t.Errorf("cost %v: err = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestOptionFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "qplace.toml")
	if err := os.WriteFile(config, []byte("timeout_ms = 250\n[augment]\nswap_gate_count = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := &cobra.Command{Use: "test"}
	var of optionFlags
	of.register(cmd)
	if err := cmd.ParseFlags([]string{"--config", config, "--max-path", "2"}); err != nil {
		t.Fatal(err)
	}
	opts, err := of.options(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if opts.TimeoutMS != 250 || opts.Augment.SwapGateCount != 4 {
		t.Errorf("config values lost: %+v", opts)
	}
	if opts.Augment.MaxPathLength != 2 {
		t.Errorf("MaxPathLength = %d, want flag value 2", opts.Augment.MaxPathLength)
	}
	if opts.Logger == nil {
		t.Error("options should carry a logger")
	}
}
