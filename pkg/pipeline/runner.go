package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/qplace/pkg/augment"
	"github.com/matzehuels/qplace/pkg/cache"
	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/observability"
	"github.com/matzehuels/qplace/pkg/placement"
	"github.com/matzehuels/qplace/pkg/timeslice"
)

var tracer = otel.Tracer("qplace/pipeline")

// Runner executes pipeline stages with caching.
//
// The Runner is stateless except for the cache and logger, so several
// goroutines may share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer means cache.DefaultKeyer and a
// nil cache disables caching.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs slice → augment → place.
func (r *Runner) Execute(ctx context.Context, gates circuit.Gates, device graph.Weighted, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := device.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:  uuid.NewString(),
		Gates:  gates,
		Device: device,
	}
	ctx, span := tracer.Start(ctx, "pipeline.execute", trace.WithAttributes(
		attribute.String("run_id", result.RunID),
		attribute.Int("gates", len(gates)),
		attribute.Int("device_edges", len(device)),
	))
	defer span.End()
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Slice
	start := time.Now()
	sliced, hit, err := r.SliceWithCacheInfo(ctx, gates, opts)
	if err != nil {
		return nil, fail(span, fmt.Errorf("slice: %w", err))
	}
	result.Slices = sliced.Slices
	result.Pattern = sliced.Pattern
	result.Stats.Gates = len(gates)
	result.Stats.Slices = len(sliced.Slices)
	result.Stats.PatternEdges = len(sliced.Pattern)
	result.Stats.SliceTime = time.Since(start)
	result.CacheInfo.PatternHit = hit
	logger.Info("built pattern graph",
		"slices", len(sliced.Slices),
		"edges", len(sliced.Pattern),
		"cached", hit,
		"duration", result.Stats.SliceTime)

	// Stage 2: Augment
	start = time.Now()
	augmented, hit, err := r.AugmentWithCacheInfo(ctx, device, opts)
	if err != nil {
		return nil, fail(span, fmt.Errorf("augment: %w", err))
	}
	result.Augmented = augmented
	result.Stats.DeviceEdges = len(device)
	result.Stats.AugmentedEdges = len(augmented)
	result.Stats.AugmentTime = time.Since(start)
	result.CacheInfo.AugmentHit = hit
	logger.Info("augmented device graph",
		"edges", len(device),
		"augmented", len(augmented),
		"cached", hit,
		"duration", result.Stats.AugmentTime)

	// Stage 3: Place
	start = time.Now()
	in := placement.Input{Pattern: sliced.Pattern, Original: device, Augmented: augmented, Gates: gates}
	res, hit, err := r.PlaceWithCacheInfo(ctx, in, opts)
	if err != nil {
		return nil, fail(span, fmt.Errorf("place: %w", err))
	}
	result.Placement = res
	result.Stats.PlaceTime = time.Since(start)
	result.CacheInfo.PlacementHit = hit
	logger.Info("placed qubits",
		"assigned", res.Stats.Assigned,
		"passes", res.Passes,
		"pass", res.Pass,
		"complete", res.Complete,
		"cached", hit,
		"duration", result.Stats.PlaceTime)

	span.SetAttributes(attribute.Int("assigned", res.Stats.Assigned))
	return result, nil
}

// Sliced is the output of the slicing stage.
type Sliced struct {
	Slices  timeslice.Slices `json:"slices"`
	Pattern graph.Weighted   `json:"-"`
	File    graph.File       `json:"pattern"`
}

// SliceWithCacheInfo builds the pattern graph with caching and reports
// whether it came from the cache.
func (r *Runner) SliceWithCacheInfo(ctx context.Context, gates circuit.Gates, opts Options) (Sliced, bool, error) {
	r.applyLogger(&opts)
	ctx, span := tracer.Start(ctx, "pipeline.slice")
	defer span.End()

	circuitData, err := circuit.Marshal(gates)
	if err != nil {
		return Sliced{}, false, fail(span, err)
	}
	key := r.Keyer.PatternKey(cache.Hash(circuitData), opts.PatternKeyOpts())

	if out, ok := lookup(r, ctx, key, cache.KeyTypePattern, opts, func(data []byte) (Sliced, error) {
		var s Sliced
		if err := json.Unmarshal(data, &s); err != nil {
			return s, err
		}
		pattern, err := graph.Import(s.File)
		s.Pattern = pattern
		return s, err
	}); ok {
		return out, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnSliceStart(ctx, len(gates))
	start := time.Now()
	slices, pattern, err := timeslice.Build(gates, opts.Slicing)
	hooks.OnSliceComplete(ctx, len(slices), time.Since(start), err)
	if err != nil {
		return Sliced{}, false, fail(span, err)
	}

	out := Sliced{Slices: slices, Pattern: pattern, File: graph.Export(pattern)}
	r.store(ctx, key, cache.KeyTypePattern, out, cache.PatternTTL)
	return out, false, nil
}

// AugmentWithCacheInfo augments the device graph with caching.
func (r *Runner) AugmentWithCacheInfo(ctx context.Context, device graph.Weighted, opts Options) (graph.Weighted, bool, error) {
	r.applyLogger(&opts)
	ctx, span := tracer.Start(ctx, "pipeline.augment")
	defer span.End()

	deviceData, err := graph.Marshal(device)
	if err != nil {
		return nil, false, fail(span, err)
	}
	key := r.Keyer.AugmentKey(cache.Hash(deviceData), opts.AugmentKeyOpts())

	if g, ok := lookup(r, ctx, key, cache.KeyTypeAugment, opts, graph.Unmarshal); ok {
		return g, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnAugmentStart(ctx, len(device))
	start := time.Now()
	augmented, err := augment.Augment(device, opts.Augment)
	hooks.OnAugmentComplete(ctx, len(augmented), time.Since(start), err)
	if err != nil {
		return nil, false, fail(span, err)
	}

	r.store(ctx, key, cache.KeyTypeAugment, graph.Export(augmented), cache.AugmentTTL)
	return augmented, false, nil
}

// PlaceWithCacheInfo runs the placement search with caching.
func (r *Runner) PlaceWithCacheInfo(ctx context.Context, in placement.Input, opts Options) (*placement.Result, bool, error) {
	r.applyLogger(&opts)
	ctx, span := tracer.Start(ctx, "pipeline.place")
	defer span.End()

	patternData, err := graph.Marshal(in.Pattern)
	if err != nil {
		return nil, false, fail(span, err)
	}
	augmentedData, err := graph.Marshal(in.Augmented)
	if err != nil {
		return nil, false, fail(span, err)
	}
	gatesData, err := circuit.Marshal(in.Gates)
	if err != nil {
		return nil, false, fail(span, err)
	}
	originalData, err := graph.Marshal(in.Original)
	if err != nil {
		return nil, false, fail(span, err)
	}
	key := r.Keyer.PlacementKey(
		cache.Hash(append(patternData, gatesData...)),
		cache.Hash(append(augmentedData, originalData...)),
		opts.PlacementKeyOpts())

	if res, ok := lookup(r, ctx, key, cache.KeyTypePlacement, opts, func(data []byte) (*placement.Result, error) {
		var res placement.Result
		err := json.Unmarshal(data, &res)
		return &res, err
	}); ok {
		return res, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnPlaceStart(ctx, len(in.Pattern.Vertices()), len(in.Augmented.Vertices()))
	start := time.Now()
	res, err := placement.Place(ctx, in, opts.PlacementParams())
	assigned := 0
	if res != nil {
		assigned = res.Stats.Assigned
	}
	hooks.OnPlaceComplete(ctx, assigned, time.Since(start), err)
	if err != nil {
		return nil, false, fail(span, err)
	}
	span.SetAttributes(
		attribute.Int("passes", res.Passes),
		attribute.String("pass", res.Pass.String()),
	)

	r.store(ctx, key, cache.KeyTypePlacement, res, cache.PlacementTTL)
	return res, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// lookup returns the decoded cache entry for key unless a refresh was
// requested. Unreadable entries count as misses.
func lookup[T any](r *Runner, ctx context.Context, key, keyType string, opts Options, decode func([]byte) (T, error)) (T, bool) {
	var zero T
	if opts.Refresh {
		return zero, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return zero, false
	}
	v, err := decode(data)
	if err != nil {
		opts.Logger.Debug("discarding unreadable cache entry", "type", keyType, "err", err)
		observability.Cache().OnCacheMiss(ctx, keyType)
		return zero, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return v, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		r.Logger.Warn("cache encode failed", "type", keyType, "err", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, errors.UserMessage(err))
	return err
}
