package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the qplace CLI and returns an error if any command fails.
//
// Logging goes to stderr at info level, or debug level with --verbose (-v).
// The logger is attached to the command context and reached through
// loggerFromContext.
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	return NewRootCommand(New(os.Stderr, LogInfo)).ExecuteContext(ctx)
}

// NewRootCommand returns c's root command with the --verbose flag wired to
// c's log level.
func NewRootCommand(c *CLI) *cobra.Command {
	var verbose bool

	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	preRun := root.PersistentPreRun
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		if preRun != nil {
			preRun(cmd, args)
		}
	}
	return root
}
