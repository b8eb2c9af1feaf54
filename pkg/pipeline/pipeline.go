// Package pipeline runs the complete placement pipeline for qplace.
//
// The CLI and the HTTP server both go through a [Runner], so caching,
// tracing, metrics and defaults behave the same on every entry point.
//
// # Stages
//
//  1. Slice: time-slice the gate list and build the weighted pattern graph
//  2. Augment: add synthetic edges to the device graph
//  3. Place: search for an embedding and validate it
//
// Each stage is cached independently, keyed by a hash of its inputs and of
// the options that affect it.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.DefaultOptions()
//	opts.TimeoutMS = 2000
//	result, err := runner.Execute(ctx, gates, device, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Placement)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qplace/pkg/augment"
	"github.com/matzehuels/qplace/pkg/cache"
	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/placement"
	"github.com/matzehuels/qplace/pkg/timeslice"
	"github.com/matzehuels/qplace/pkg/wsm"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTimeoutMS is the total solver budget in milliseconds.
	DefaultTimeoutMS = 1000

	// MaxTimeoutMS bounds requests to the HTTP API.
	MaxTimeoutMS = 5 * 60 * 1000
)

// =============================================================================
// Options
// =============================================================================

// Options configures every pipeline stage. It is JSON-tagged for API
// requests and TOML-tagged for config files.
type Options struct {
	Slicing timeslice.Parameters `json:"slicing" toml:"slicing"`
	Augment augment.Parameters   `json:"augment" toml:"augment"`

	// TimeoutMS is the total solver budget.
	TimeoutMS int64 `json:"timeout_ms,omitempty" toml:"timeout_ms"`
	// MaxIterations caps each solver pass when nonzero.
	MaxIterations uint64 `json:"max_iterations,omitempty" toml:"max_iterations"`
	// ForcedPass runs a single named pass instead of the retry strategy.
	ForcedPass string `json:"forced_pass,omitempty" toml:"forced_pass"`
	// ForcedIterations caps the forced pass when nonzero.
	ForcedIterations uint64 `json:"forced_iterations,omitempty" toml:"forced_iterations"`

	// Refresh skips cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty" toml:"-"`

	// Runtime options (not serialized)
	Logger    *log.Logger `json:"-" toml:"-"`
	NewSolver wsm.Factory `json:"-" toml:"-"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Slicing:   timeslice.DefaultParameters(),
		Augment:   augment.DefaultParameters(),
		TimeoutMS: DefaultTimeoutMS,
	}
}

// Validate checks every stage's parameters and fills in the logger.
func (o *Options) Validate() error {
	if err := o.Slicing.Validate(); err != nil {
		return err
	}
	if err := o.Augment.Validate(); err != nil {
		return err
	}
	if o.TimeoutMS < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "timeout_ms must not be negative, got %d", o.TimeoutMS)
	}
	if o.TimeoutMS == 0 {
		o.TimeoutMS = DefaultTimeoutMS
	}
	if o.ForcedPass != "" {
		if _, err := placement.ParsePass(o.ForcedPass); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// Timeout returns the solver budget as a duration.
func (o *Options) Timeout() time.Duration {
	return time.Duration(o.TimeoutMS) * time.Millisecond
}

// PlacementParams converts the options to placement parameters.
func (o *Options) PlacementParams() placement.Parameters {
	p := placement.Parameters{
		Timeout:       o.Timeout(),
		MaxIterations: o.MaxIterations,
		NewSolver:     o.NewSolver,
		Logger:        o.Logger,
	}
	if o.ForcedPass != "" {
		pass, _ := placement.ParsePass(o.ForcedPass)
		p.Forced = &placement.ForcedPass{Pass: pass, Iterations: o.ForcedIterations}
	}
	return p
}

// PatternKeyOpts returns cache key options for the slicing stage.
func (o *Options) PatternKeyOpts() cache.PatternKeyOpts {
	opts := cache.PatternKeyOpts{
		Method:          string(o.Slicing.Method),
		TimeZeroWeight:  uint64(o.Slicing.TimeZeroWeight),
		FinalTimeWeight: uint64(o.Slicing.FinalTimeWeight),
	}
	for _, w := range o.Slicing.PerSlice {
		opts.PerSlice = append(opts.PerSlice, uint64(w))
	}
	return opts
}

// AugmentKeyOpts returns cache key options for the augmentation stage.
func (o *Options) AugmentKeyOpts() cache.AugmentKeyOpts {
	a := o.Augment
	opts := cache.AugmentKeyOpts{
		SwapGateCount:                   a.SwapGateCount,
		MaxPathLength:                   a.MaxPathLength,
		MaxWeightRatioToLargest:         a.MaxWeightRatioToLargest,
		MaxWeightRatioToSmallestNonzero: a.MaxWeightRatioToSmallestNonzero,
		RemoveHighWeights:               a.RemoveHighWeights,
		ReplaceLowFidelity:              a.ReplaceLowFidelity,
	}
	if a.AbsoluteMaxWeight != nil {
		w := uint64(*a.AbsoluteMaxWeight)
		opts.AbsoluteMaxWeight = &w
	}
	return opts
}

// PlacementKeyOpts returns cache key options for the placement stage.
func (o *Options) PlacementKeyOpts() cache.PlacementKeyOpts {
	return cache.PlacementKeyOpts{
		Timeout:          o.Timeout(),
		MaxIterations:    o.MaxIterations,
		ForcedPass:       o.ForcedPass,
		ForcedIterations: o.ForcedIterations,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string `json:"run_id"`

	Gates     circuit.Gates    `json:"-"`
	Slices    timeslice.Slices `json:"-"`
	Pattern   graph.Weighted   `json:"-"`
	Device    graph.Weighted   `json:"-"`
	Augmented graph.Weighted   `json:"-"`

	Placement *placement.Result `json:"placement"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Gates          int           `json:"gates"`
	Slices         int           `json:"slices"`
	PatternEdges   int           `json:"pattern_edges"`
	DeviceEdges    int           `json:"device_edges"`
	AugmentedEdges int           `json:"augmented_edges"`
	SliceTime      time.Duration `json:"slice_time"`
	AugmentTime    time.Duration `json:"augment_time"`
	PlaceTime      time.Duration `json:"place_time"`
}

// CacheInfo tracks which stages hit the cache.
type CacheInfo struct {
	PatternHit   bool `json:"pattern_hit"`
	AugmentHit   bool `json:"augment_hit"`
	PlacementHit bool `json:"placement_hit"`
}
