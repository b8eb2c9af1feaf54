package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/device"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/placement"
	"github.com/matzehuels/qplace/pkg/render/nodelink"
	"github.com/matzehuels/qplace/pkg/timeslice"
)

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func squareCircuit() circuit.Gates {
	return circuit.Gates{
		circuit.NewGate(0, 1),
		circuit.NewGate(1, 2),
		circuit.NewGate(2),
		circuit.NewGate(2, 3),
		circuit.NewGate(3, 0),
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if err := opts.Validate(); err != nil {
		t.Fatalf("DefaultOptions().Validate() = %v", err)
	}
	if opts.Logger == nil {
		t.Error("Validate should install a logger")
	}
	if opts.Timeout() != time.Second {
		t.Errorf("Timeout() = %v, want 1s", opts.Timeout())
	}
	if p := opts.PlacementParams(); p.Forced != nil {
		t.Errorf("PlacementParams().Forced = %+v, want nil", p.Forced)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"ratio too small", func(o *Options) { o.Augment.MaxWeightRatioToLargest = 2 }},
		{"zero swap count", func(o *Options) { o.Augment.SwapGateCount = 0 }},
		{"negative timeout", func(o *Options) { o.TimeoutMS = -1 }},
		{"unknown pass", func(o *Options) { o.ForcedPass = "SECOND" }},
		{"unknown method", func(o *Options) { o.Slicing.Method = "random" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)
			err := opts.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Validate() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestPlacementParamsForced(t *testing.T) {
	opts := DefaultOptions()
	opts.ForcedPass = "COMPLETE_TARGET_GRAPH"
	opts.ForcedIterations = 9
	opts.TimeoutMS = 30
	if err := opts.Validate(); err != nil {
		t.Fatal(err)
	}

	p := opts.PlacementParams()
	if p.Forced == nil || p.Forced.Pass != placement.PassCompleteTarget || p.Forced.Iterations != 9 {
		t.Errorf("Forced = %+v", p.Forced)
	}
	if p.Timeout != 30*time.Millisecond {
		t.Errorf("Timeout = %v", p.Timeout)
	}
}

func TestDecodeConfig(t *testing.T) {
	src := `
timeout_ms = 250
max_iterations = 5000

[slicing]
method = "original"
time_zero_weight = 50

[augment]
swap_gate_count = 4
replace_low_fidelity = true
`
	opts, err := DecodeConfig(strings.NewReader(src))
	if err != nil {
		t.Fatalf("DecodeConfig() error: %v", err)
	}
	if opts.TimeoutMS != 250 || opts.MaxIterations != 5000 {
		t.Errorf("top-level options = %d, %d", opts.TimeoutMS, opts.MaxIterations)
	}
	if opts.Slicing.Method != timeslice.MethodOriginalOrder || opts.Slicing.TimeZeroWeight != 50 {
		t.Errorf("slicing = %+v", opts.Slicing)
	}
	if opts.Slicing.FinalTimeWeight != timeslice.DefaultParameters().FinalTimeWeight {
		t.Errorf("unset key should keep default, got %d", opts.Slicing.FinalTimeWeight)
	}
	if opts.Augment.SwapGateCount != 4 || !opts.Augment.ReplaceLowFidelity {
		t.Errorf("augment = %+v", opts.Augment)
	}
	if opts.Augment.MaxPathLength != 5 {
		t.Errorf("MaxPathLength = %d, want default 5", opts.Augment.MaxPathLength)
	}
}

func TestDecodeConfigRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeConfig(strings.NewReader("timout_ms = 5\n"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) || !strings.Contains(err.Error(), "timout_ms") {
		t.Errorf("DecodeConfig() = %v", err)
	}
	_, err = DecodeConfig(strings.NewReader("timeout_ms = ["))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("DecodeConfig(malformed) = %v", err)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	_, err := LoadConfig(t.TempDir() + "/missing.toml")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("LoadConfig() = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	runner := NewRunner(mc, nil, nil)
	dev := device.Ring(5, device.Repeat(2, 3, 5, 7, 11))

	opts := DefaultOptions()
	opts.TimeoutMS = 500
	res, err := runner.Execute(ctx, squareCircuit(), dev, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.RunID == "" {
		t.Error("missing run id")
	}
	if res.Stats.Gates != 5 || res.Stats.Slices != 4 || res.Stats.PatternEdges != 4 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.Stats.DeviceEdges != 5 || res.Stats.AugmentedEdges != 10 {
		t.Errorf("edge stats = %+v", res.Stats)
	}
	if res.Placement == nil || res.Placement.Stats.Assigned != 4 {
		t.Fatalf("placement = %+v", res.Placement)
	}
	if res.CacheInfo != (CacheInfo{}) {
		t.Errorf("first run should miss the cache: %+v", res.CacheInfo)
	}
	if mc.sets != 3 {
		t.Errorf("cache sets = %d, want 3", mc.sets)
	}

	again, err := runner.Execute(ctx, squareCircuit(), dev, opts)
	if err != nil {
		t.Fatal(err)
	}
	if again.CacheInfo != (CacheInfo{PatternHit: true, AugmentHit: true, PlacementHit: true}) {
		t.Errorf("second run cache info = %+v", again.CacheInfo)
	}
	if again.RunID == res.RunID {
		t.Error("run ids should differ")
	}
	if again.Placement.Stats != res.Placement.Stats {
		t.Errorf("cached stats %+v differ from %+v", again.Placement.Stats, res.Placement.Stats)
	}
	if len(again.Pattern) != 4 || len(again.Augmented) != 10 {
		t.Errorf("cached graphs: pattern %d, augmented %d", len(again.Pattern), len(again.Augmented))
	}

	opts.Refresh = true
	fresh, err := runner.Execute(ctx, squareCircuit(), dev, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo != (CacheInfo{}) {
		t.Errorf("refresh should bypass the cache: %+v", fresh.CacheInfo)
	}
}

func TestExecuteOptionChangesKey(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(newMemCache(), nil, nil)
	dev := device.Ring(5, device.Uniform(3))

	opts := DefaultOptions()
	opts.TimeoutMS = 200
	if _, err := runner.Execute(ctx, squareCircuit(), dev, opts); err != nil {
		t.Fatal(err)
	}
	opts.Slicing.FinalTimeWeight = 10
	res, err := runner.Execute(ctx, squareCircuit(), dev, opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.PatternHit || !res.CacheInfo.AugmentHit {
		t.Errorf("cache info = %+v, want pattern miss and augment hit", res.CacheInfo)
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	runner := NewRunner(nil, nil, nil)

	opts := DefaultOptions()
	opts.Augment.SwapGateCount = 0
	if _, err := runner.Execute(ctx, squareCircuit(), device.Ring(5, device.Uniform(1)), opts); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("bad options: %v", err)
	}

	opts = DefaultOptions()
	_, err := runner.Execute(ctx, squareCircuit(), device.Line(3, device.Uniform(1)), opts)
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("too few device qubits: %v", err)
	}
	if err != nil && !strings.HasPrefix(err.Error(), "place: ") {
		t.Errorf("error should name the stage: %v", err)
	}
}

func TestRender(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := DefaultOptions()
	opts.TimeoutMS = 200
	res, err := runner.Execute(context.Background(), squareCircuit(), device.Ring(5, device.Uniform(2)), opts)
	if err != nil {
		t.Fatal(err)
	}

	dot, err := Render(res, "DOT", nodelink.Options{ShowAugmented: true})
	if err != nil {
		t.Fatalf("Render(dot) error: %v", err)
	}
	if !strings.Contains(string(dot), "graph G") || !strings.Contains(string(dot), "style=dashed") {
		t.Errorf("unexpected DOT:\n%s", dot)
	}

	if _, err := Render(res, "gif", nodelink.Options{}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Render(gif) = %v, want INVALID_INPUT", err)
	}
}
