package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qplace/internal/server"
	"github.com/matzehuels/qplace/pkg/observability"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		maxBody int64
		cf      cacheFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the placement API over HTTP",
		Long: `Serve runs the placement pipeline behind an HTTP API:

  POST /v1/placements   {"gates": [[0,1],...], "device": {"edges": [...]}, "options": {...}}
  GET  /healthz
  GET  /version
  GET  /metrics

Results are cached in the selected backend, so several instances can share
a redis or mongo cache.`,
		Example: `  qplace serve --addr :8080
  qplace serve --cache redis --redis-addr localhost:6379`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, cf)
			if err != nil {
				return err
			}
			defer runner.Close()

			observability.NewPrometheusHooks(prometheus.DefaultRegisterer).Install()

			s := server.New(runner, c.Logger, server.Config{Addr: addr, MaxBodyBytes: maxBody})
			return s.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "largest accepted request body in bytes")
	cf.register(cmd)
	return cmd
}
