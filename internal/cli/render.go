package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/pipeline"
	"github.com/matzehuels/qplace/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	device  deviceFlags
	options optionFlags
	cache   cacheFlags

	output      string   // output file path (or base path for multiple outputs)
	formats     []string // output formats: "dot", "svg", "pdf", "png"
	showWeights bool     // label edges with their weights
	augmented   bool     // draw synthetic edges of the augmented graph
	layout      string   // graphviz layout engine
}

// renderCommand creates the render command, which places a circuit and
// draws the device with the placement overlaid.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{showWeights: true, layout: nodelink.DefaultLayout}

	cmd := &cobra.Command{
		Use:   "render [circuit]",
		Short: "Render a placement on its device graph",
		Long: `Render runs the placement pipeline (using the cache where possible) and
draws the device graph: occupied qubits are filled and labelled with their
logical qubit, and edges used by two-qubit gates are drawn bold.`,
		Example: `  qplace render circuit.json --kind grid --size 3 -f svg,png
  qplace render circuit.json --device device.toml --augmented -o out.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			for i, f := range opts.formats {
				format, err := errors.ValidateFormat(f, pipeline.ValidFormats...)
				if err != nil {
					return err
				}
				opts.formats[i] = format
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	opts.device.register(cmd)
	opts.options.register(cmd)
	opts.cache.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, pdf, png (comma-separated)")
	cmd.Flags().BoolVar(&opts.showWeights, "edge-weights", opts.showWeights, "label edges with their weights")
	cmd.Flags().BoolVar(&opts.augmented, "augmented", false, "draw synthetic edges of the augmented device")
	cmd.Flags().StringVar(&opts.layout, "layout", opts.layout, "graphviz layout engine (neato, dot, circo, fdp)")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	res, err := c.execute(ctx, cmd, input, &opts.device, &opts.options, opts.cache)
	if err != nil {
		return err
	}

	nl := nodelink.Options{
		ShowWeights:   opts.showWeights,
		ShowAugmented: opts.augmented,
		Layout:        opts.layout,
	}
	base := basePath(opts.output, input)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := renderAndWrite(ctx, res, format, path, nl); err != nil {
			return err
		}
	}
	printSuccess("Rendered placement of %d qubits", res.Placement.Stats.Assigned)
	return nil
}

// renderAndWrite renders res in one format and writes it to path.
func renderAndWrite(ctx context.Context, res *pipeline.Result, format, path string, opts nodelink.Options) error {
	logger := loggerFromContext(ctx)

	data, err := pipeline.Render(res, format, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", format, err)
	}
	logger.Debugf("Generated %s: %d bytes", format, len(data))

	if err := writeOutput(path, data); err != nil {
		return err
	}
	printFile(path)
	return nil
}
