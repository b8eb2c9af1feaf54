package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/device"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/pipeline"
	"github.com/matzehuels/qplace/pkg/timeslice"
	"github.com/matzehuels/qplace/pkg/weight"
)

// =============================================================================
// Device Flags
// =============================================================================

// deviceFlags describes a device either as a graph file or as a generated
// topology.
type deviceFlags struct {
	file    string
	kind    string
	size    int
	weights string
}

func (f *deviceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "device", "d", "", "device graph file (.json or .toml)")
	cmd.Flags().StringVar(&f.kind, "kind", "", "generate a device: "+strings.Join(device.Kinds, ", "))
	cmd.Flags().IntVar(&f.size, "size", 0, "qubits of the generated device (grid: width)")
	cmd.Flags().StringVar(&f.weights, "weights", "", "edge weights, cycled (comma-separated), or \"increasing\"")
}

// load reads or generates the device graph.
func (f *deviceFlags) load() (graph.Weighted, error) {
	switch {
	case f.file != "" && f.kind != "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "use either --device or --kind, not both")
	case f.file != "":
		if err := errors.ValidatePath(f.file); err != nil {
			return nil, err
		}
		return graph.ReadFile(f.file)
	case f.kind != "":
		wf, err := parseWeights(f.weights)
		if err != nil {
			return nil, err
		}
		return device.Build(f.kind, f.size, wf)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "a device is required (--device or --kind)")
}

// parseWeights turns "3,5,7" into a cycling WeightFunc. Empty means unit
// weights.
func parseWeights(s string) (device.WeightFunc, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return device.Uniform(1), nil
	case "increasing":
		return device.Increasing(), nil
	}
	var ws []weight.Weight
	for _, part := range strings.Split(s, ",") {
		w, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "weight %q", part)
		}
		ws = append(ws, weight.Weight(w))
	}
	return device.Repeat(ws...), nil
}

// =============================================================================
// Circuit Input
// =============================================================================

func loadCircuit(path string) (circuit.Gates, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return circuit.ReadFile(path)
}

// =============================================================================
// Pipeline Options
// =============================================================================

// optionFlags overrides pipeline options loaded from --config.
type optionFlags struct {
	config string

	method    string
	timeZero  uint64
	finalTime uint64

	swapGates   uint64
	maxPath     uint64
	removeHigh  bool
	replaceLow  bool
	absoluteMax uint64

	timeoutMS        int64
	maxIterations    uint64
	forcedPass       string
	forcedIterations uint64
	refresh          bool
}

func (f *optionFlags) register(cmd *cobra.Command) {
	d := pipeline.DefaultOptions()
	fs := cmd.Flags()
	fs.StringVarP(&f.config, "config", "c", "", "TOML options file")

	fs.StringVar(&f.method, "time-method", string(d.Slicing.Method), "gate timing: slices, original")
	fs.Uint64Var(&f.timeZero, "time-zero-weight", uint64(d.Slicing.TimeZeroWeight), "weight of the first time slice")
	fs.Uint64Var(&f.finalTime, "final-time-weight", uint64(d.Slicing.FinalTimeWeight), "weight of the last time slice")

	fs.Uint64Var(&f.swapGates, "swap-gates", d.Augment.SwapGateCount, "primitive gates per swap")
	fs.Uint64Var(&f.maxPath, "max-path", d.Augment.MaxPathLength, "longest path explored for synthetic edges")
	fs.BoolVar(&f.removeHigh, "remove-high-weights", false, "drop synthetic edges above the cap instead of clamping")
	fs.BoolVar(&f.replaceLow, "replace-low-fidelity", false, "let cheaper paths replace original edge weights")
	fs.Uint64Var(&f.absoluteMax, "max-weight", 0, "absolute cap on synthetic edge weights (0: none)")

	fs.Int64VarP(&f.timeoutMS, "timeout", "t", d.TimeoutMS, "total solver budget in milliseconds")
	fs.Uint64Var(&f.maxIterations, "max-iterations", 0, "cap on solver iterations per pass (0: none)")
	fs.StringVar(&f.forcedPass, "forced-pass", "", "run exactly one pass: initial, complete")
	fs.Uint64Var(&f.forcedIterations, "forced-iterations", 0, "iteration cap for --forced-pass")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results")
}

// options builds pipeline options from the config file, then applies the
// flags the user set explicitly.
func (f *optionFlags) options(cmd *cobra.Command) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if f.config != "" {
		var err error
		if opts, err = pipeline.LoadConfig(f.config); err != nil {
			return opts, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("time-method") {
		opts.Slicing.Method = timeslice.Method(f.method)
	}
	if changed("time-zero-weight") {
		opts.Slicing.TimeZeroWeight = weight.Weight(f.timeZero)
	}
	if changed("final-time-weight") {
		opts.Slicing.FinalTimeWeight = weight.Weight(f.finalTime)
	}
	if changed("swap-gates") {
		opts.Augment.SwapGateCount = f.swapGates
	}
	if changed("max-path") {
		opts.Augment.MaxPathLength = f.maxPath
	}
	if changed("remove-high-weights") {
		opts.Augment.RemoveHighWeights = f.removeHigh
	}
	if changed("replace-low-fidelity") {
		opts.Augment.ReplaceLowFidelity = f.replaceLow
	}
	if changed("max-weight") && f.absoluteMax > 0 {
		w := weight.Weight(f.absoluteMax)
		opts.Augment.AbsoluteMaxWeight = &w
	}
	if changed("timeout") {
		opts.TimeoutMS = f.timeoutMS
	}
	if changed("max-iterations") {
		opts.MaxIterations = f.maxIterations
	}
	if changed("forced-pass") {
		opts.ForcedPass = f.forcedPass
	}
	if changed("forced-iterations") {
		opts.ForcedIterations = f.forcedIterations
	}
	opts.Refresh = f.refresh
	opts.Logger = loggerFromContext(cmd.Context())

	if err := opts.Validate(); err != nil {
		return opts, fmt.Errorf("options: %w", err)
	}
	return opts, nil
}
