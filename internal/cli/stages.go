package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qplace/pkg/graph"
	"github.com/matzehuels/qplace/pkg/timeslice"
)

// slicesCommand creates the slices command, which prints the time slices of
// a circuit and optionally writes its pattern graph.
func (c *CLI) slicesCommand() *cobra.Command {
	var (
		options optionFlags
		cf      cacheFlags
		output  string
	)

	cmd := &cobra.Command{
		Use:   "slices [circuit]",
		Short: "Schedule a circuit into time slices and build its pattern graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			gates, err := loadCircuit(args[0])
			if err != nil {
				return err
			}
			opts, err := options.options(cmd)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cf)
			if err != nil {
				return err
			}
			defer runner.Close()

			sliced, hit, err := runner.SliceWithCacheInfo(ctx, gates, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Built pattern graph from %d gates", len(gates)))

			printSlices(sliced.Slices)
			printStats(len(sliced.Pattern.Vertices()), len(sliced.Pattern), hit)
			if output != "" {
				if err := graph.WriteFile(sliced.Pattern, output); err != nil {
					return err
				}
				printFile(output)
			}
			return nil
		},
	}

	options.register(cmd)
	cf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the pattern graph to this file (.json or .toml)")
	return cmd
}

// augmentCommand creates the augment command, which adds synthetic edges to
// a device graph.
func (c *CLI) augmentCommand() *cobra.Command {
	var (
		df      deviceFlags
		options optionFlags
		cf      cacheFlags
		output  string
	)

	cmd := &cobra.Command{
		Use:   "augment",
		Short: "Add synthetic swap-cost edges to a device graph",
		Example: `  qplace augment --kind ring --size 5 --weights increasing
  qplace augment --device device.json --max-path 3 -o augmented.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))

			dev, err := df.load()
			if err != nil {
				return err
			}
			opts, err := options.options(cmd)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, cf)
			if err != nil {
				return err
			}
			defer runner.Close()

			augmented, hit, err := runner.AugmentWithCacheInfo(ctx, dev, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Augmented device: %d → %d edges", len(dev), len(augmented)))

			if output == "" {
				return graph.Write(augmented, cmd.OutOrStdout())
			}
			if err := graph.WriteFile(augmented, output); err != nil {
				return err
			}
			printSuccess("Augmented %d edges to %d", len(dev), len(augmented))
			printStats(len(augmented.Vertices()), len(augmented), hit)
			printFile(output)
			return nil
		},
	}

	df.register(cmd)
	options.register(cmd)
	cf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the augmented graph to this file (.json or .toml)")
	return cmd
}

// printSlices prints one line per time slice.
func printSlices(s timeslice.Slices) {
	fmt.Println(StyleTitle.Render(fmt.Sprintf("%d time slices", len(s))))
	for i, edges := range s {
		parts := make([]string, len(edges))
		for j, e := range edges {
			parts[j] = e.String()
		}
		fmt.Printf("  %s %s\n", StyleNumber.Render(fmt.Sprintf("%3d", i)), StyleValue.Render(strings.Join(parts, " ")))
	}
}
