package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qplace/pkg/device"
	"github.com/matzehuels/qplace/pkg/errors"
	"github.com/matzehuels/qplace/pkg/graph"
)

// deviceCommand creates the device command, which writes a generated device
// graph.
func (c *CLI) deviceCommand() *cobra.Command {
	var (
		df     deviceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Generate a device graph",
		Long: `Device writes the weighted edge list of a generated topology.

Kinds: ` + strings.Join(device.Kinds, ", ") + `. For grids --size is the width
in edges, so a grid of size 3 has 16 qubits; trees are heap-numbered from
qubit 1.`,
		Example: `  qplace device --kind ring --size 8 --weights 3,5 -o ring.toml
  qplace device --kind grid --size 4 --weights increasing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if df.file != "" {
				return errors.New(errors.ErrCodeInvalidInput, "device generates graphs; use --kind instead of --device")
			}
			if !device.IsKind(df.kind) {
				return errors.New(errors.ErrCodeInvalidInput, "unknown device kind %q (must be one of %s)",
					df.kind, strings.Join(device.Kinds, ", "))
			}
			g, err := df.load()
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debugf("Generated %s device: %d qubits, %d edges",
				df.kind, len(g.Vertices()), len(g))

			if output == "" {
				return graph.Write(g, cmd.OutOrStdout())
			}
			if err := graph.WriteFile(g, output); err != nil {
				return err
			}
			printSuccess("Generated %s device with %d qubits", df.kind, len(g.Vertices()))
			printFile(output)
			return nil
		},
	}

	df.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.json or .toml); stdout if empty")
	return cmd
}
