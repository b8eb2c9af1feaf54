package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qplace/pkg/circuit"
	"github.com/matzehuels/qplace/pkg/costmodel"
	"github.com/matzehuels/qplace/pkg/device"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/pipeline"
	"github.com/matzehuels/qplace/pkg/placement"
	"github.com/matzehuels/qplace/pkg/weight"
)

// Path oracles accepted by --oracle.
const (
	oracleAuto     = "auto"
	oracleShortest = "shortest"
	oracleTree     = "tree"
	oracleGrid     = "grid"
)

// costOpts holds the flags of the cost command.
type costOpts struct {
	device    deviceFlags
	options   optionFlags
	cache     cacheFlags
	oracle    string
	swapCost  uint64
	seed      uint64
	placement string
	identity  bool
	json      bool
}

// costReport is the JSON output of the cost command.
type costReport struct {
	Oracle    string              `json:"oracle"`
	Cost      weight.Weight       `json:"cost"`
	Gates     int                 `json:"two_qubit_gates"`
	Skipped   int                 `json:"skipped_multi_qubit_gates"`
	Start     placement.Placement `json:"start"`
	Final     placement.Placement `json:"final"`
	PathCache int                 `json:"cached_paths"`
}

// costCommand creates the cost command, which routes a circuit through the
// token-swap cost model from a starting placement.
func (c *CLI) costCommand() *cobra.Command {
	opts := costOpts{oracle: oracleAuto, swapCost: uint64(costmodel.DefaultSwapCost), seed: costmodel.DefaultGridSeed}

	cmd := &cobra.Command{
		Use:   "cost [circuit]",
		Short: "Estimate the swap cost of routing a circuit from a placement",
		Long: `Cost moves the qubits of every two-qubit gate together by swaps, applies the
gate on the most expensive edge of the path between them and leaves them
there. The starting placement comes from --placement (a result written by
"qplace place -o"), from --identity, or from running the placement
pipeline.

Oracles: "tree" and "grid" require a generated device of that kind;
"shortest" works on any device; "auto" picks by --kind.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCost(cmd, args[0], &opts)
		},
	}

	opts.device.register(cmd)
	opts.options.register(cmd)
	opts.cache.register(cmd)
	cmd.Flags().StringVar(&opts.oracle, "oracle", opts.oracle, "path oracle: auto, shortest, tree, grid")
	cmd.Flags().Uint64Var(&opts.swapCost, "swap-cost", opts.swapCost, "primitive gates per swap")
	cmd.Flags().Uint64Var(&opts.seed, "seed", opts.seed, "seed of the grid oracle's step patterns")
	cmd.Flags().StringVarP(&opts.placement, "placement", "p", "", "result file to take the starting placement from")
	cmd.Flags().BoolVar(&opts.identity, "identity", false, "start from qubit i on the i-th device qubit")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")

	return cmd
}

func (c *CLI) runCost(cmd *cobra.Command, input string, opts *costOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	gates, dev, err := gatesAndDevice(input, &opts.device)
	if err != nil {
		return err
	}
	oracleName, oracle, err := buildOracle(opts)
	if err != nil {
		return err
	}

	var start placement.Placement
	switch {
	case opts.placement != "":
		if start, err = readPlacement(opts.placement); err != nil {
			return err
		}
	case opts.identity:
		if start, err = identityPlacement(gates, dev); err != nil {
			return err
		}
	default:
		res, err := c.execute(ctx, cmd, input, &opts.device, &opts.options, opts.cache)
		if err != nil {
			return err
		}
		start = res.Placement.Placement
	}
	logger.Debugf("Routing %d gates with the %s oracle", len(gates), oracleName)

	model := costmodel.New(oracle, weight.Weight(opts.swapCost))
	if err := model.Initialise(start); err != nil {
		return err
	}

	report := costReport{Oracle: oracleName, Start: start}
	for i, g := range gates {
		switch len(g) {
		case 0, 1:
			continue
		case 2:
		default:
			report.Skipped++
			continue
		}
		cost, err := model.ApplyGate(g[0], g[1])
		if err != nil {
			return fmt.Errorf("gate %d: %w", i, err)
		}
		if err := weight.Add(&report.Cost, cost); err != nil {
			return err
		}
		report.Gates++
	}
	report.Final = model.Placement()
	if pc, ok := oracle.(*costmodel.PathCache); ok {
		report.PathCache = pc.Len()
	}

	if opts.json {
		return writeJSON("", report)
	}
	printSuccess("Routing cost %s", StyleNumber.Render(fmt.Sprint(uint64(report.Cost))))
	printKeyValue("Oracle", report.Oracle)
	printKeyValue("2q gates", fmt.Sprint(report.Gates))
	if report.Skipped > 0 {
		printWarning("Skipped %d gates on more than two qubits", report.Skipped)
	}
	printNewline()
	printAssignments(report.Final)
	return nil
}

// buildOracle returns the path oracle selected by opts.
func buildOracle(opts *costOpts) (string, costmodel.PathOracle, error) {
	name := opts.oracle
	if name == oracleAuto || name == "" {
		switch opts.device.kind {
		case device.KindTree:
			name = oracleTree
		case device.KindGrid:
			name = oracleGrid
		default:
			name = oracleShortest
		}
	}

	switch name {
	case oracleShortest:
		dev, err := opts.device.load()
		if err != nil {
			return "", nil, err
		}
		oracle, err := costmodel.Shortest(dev)
		return name, oracle, err
	case oracleTree, oracleGrid:
		kind := device.KindTree
		if name == oracleGrid {
			kind = device.KindGrid
		}
		if opts.device.kind != kind {
			return "", nil, errors.New(errors.ErrCodeInvalidInput, "the %s oracle needs --kind %s", name, kind)
		}
		if _, err := opts.device.load(); err != nil {
			return "", nil, err
		}
		wf, err := parseWeights(opts.device.weights)
		if err != nil {
			return "", nil, err
		}
		if name == oracleTree {
			return name, costmodel.BinaryTree(device.NewBinaryTree(opts.device.size, wf)), nil
		}
		return name, costmodel.SquareGrid(device.NewSquareGrid(opts.device.size, wf), opts.seed), nil
	}
	return "", nil, errors.New(errors.ErrCodeInvalidInput, "unknown oracle %q (must be auto, shortest, tree or grid)", opts.oracle)
}

// readPlacement reads the placement of a result file written by "place -o".
func readPlacement(path string) (placement.Placement, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, err
	}
	var res pipeline.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s", path)
	}
	if res.Placement == nil || len(res.Placement.Placement) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s holds no placement", path)
	}
	return res.Placement.Placement, nil
}

// identityPlacement puts the i-th circuit qubit on the i-th device qubit,
// both in ascending order.
func identityPlacement(gates circuit.Gates, dev graph.Weighted) (placement.Placement, error) {
	qubits := gates.Qubits()
	vertices := dev.Vertices()
	if len(qubits) > len(vertices) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"circuit uses %d qubits but the device has only %d", len(qubits), len(vertices))
	}
	p := make(placement.Placement, len(qubits))
	for i, q := range qubits {
		p[q] = vertices[i]
	}
	return p, nil
}
