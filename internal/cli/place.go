package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/pipeline"
)

// placeOpts holds the flags of the place command.
type placeOpts struct {
	device  deviceFlags
	options optionFlags
	cache   cacheFlags
	output  string
	json    bool
	times   bool
}

// placeCommand creates the place command, which runs the full
// slice → augment → place pipeline.
func (c *CLI) placeCommand() *cobra.Command {
	var opts placeOpts

	cmd := &cobra.Command{
		Use:   "place [circuit]",
		Short: "Place a circuit's qubits on a device",
		Long: `Place maps the logical qubits of a circuit file onto the physical qubits
of a device. The circuit file lists gates as qubit sets:

  {"gates": [[0, 1], [1, 2], [2]]}

The device is either a weighted edge list (--device) or a generated
topology (--kind, --size, --weights).`,
		Example: `  qplace place circuit.json --kind grid --size 3 --timeout 2000
  qplace place circuit.toml --device device.json -o result.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlace(cmd, args[0], &opts)
		},
	}

	opts.device.register(cmd)
	opts.options.register(cmd)
	opts.cache.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the result as JSON to this file")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON instead of a summary")
	cmd.Flags().BoolVar(&opts.times, "times", false, "include solver timings in the summary line")

	return cmd
}

func (c *CLI) runPlace(cmd *cobra.Command, input string, opts *placeOpts) error {
	ctx := cmd.Context()
	res, err := c.execute(ctx, cmd, input, &opts.device, &opts.options, opts.cache)
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := writeJSON(opts.output, res); err != nil {
			return err
		}
	}
	if opts.json {
		return writeJSON("", res)
	}

	printPlacement(res, opts.times)
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}

// execute loads the inputs and runs the pipeline behind a spinner.
func (c *CLI) execute(ctx context.Context, cmd *cobra.Command, input string, df *deviceFlags, of *optionFlags, cf cacheFlags) (*pipeline.Result, error) {
	logger := loggerFromContext(ctx)

	gates, err := loadCircuit(input)
	if err != nil {
		return nil, err
	}
	dev, err := df.load()
	if err != nil {
		return nil, err
	}
	logger.Debugf("Loaded %d gates and a device with %d edges", len(gates), len(dev))

	popts, err := of.options(cmd)
	if err != nil {
		return nil, err
	}

	runner, err := c.newRunner(ctx, cf)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	return runWithSpinner(ctx, fmt.Sprintf("Placing %d qubits (budget %s)...", len(gates.Qubits()), popts.Timeout()),
		func(ctx context.Context) (*pipeline.Result, error) {
			return runner.Execute(ctx, gates, dev, popts)
		})
}

// runWithSpinner runs fn behind a spinner. The spinner is suppressed at
// debug level so that it does not interleave with log lines.
func runWithSpinner[T any](ctx context.Context, message string, fn func(context.Context) (T, error)) (T, error) {
	if loggerFromContext(ctx).GetLevel() <= LogDebug {
		return fn(ctx)
	}
	spinner := newSpinnerWithContext(ctx, message)
	spinner.Start()
	v, err := fn(ctx)
	spinner.Stop()
	return v, err
}

// printPlacement prints a human-readable summary of a pipeline result.
func printPlacement(res *pipeline.Result, withTimes bool) {
	p := res.Placement
	if p.Complete {
		printSuccess("Placed %d qubits", p.Stats.Assigned)
	} else {
		printWarning("Partial placement: %d qubits assigned", p.Stats.Assigned)
	}
	printStats(len(res.Pattern.Vertices()), res.Stats.PatternEdges, res.CacheInfo.PatternHit)

	printNewline()
	printKeyValue("Run", res.RunID)
	printKeyValue("Pass", fmt.Sprintf("%s (%d passes, %d iterations)", p.Pass, p.Passes, p.Iterations))
	printKeyValue("Time", (p.InitTime + p.SearchTime).Round(time.Millisecond).String())
	printStatsTable(p.Stats)

	printNewline()
	printAssignments(p.Placement)
	printNewline()
	printDetail("%s", p.Details(withTimes))
}

// gatesAndDevice adapts the circuit and device loaders for commands that do
// not run the full pipeline.
func gatesAndDevice(input string, df *deviceFlags) (circuit.Gates, graph.Weighted, error) {
	gates, err := loadCircuit(input)
	if err != nil {
		return nil, nil, err
	}
	dev, err := df.load()
	if err != nil {
		return nil, nil, err
	}
	return gates, dev, nil
}
