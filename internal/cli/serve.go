package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/PrismLauncher/mcmeta/internal/metrics"
	"github.com/PrismLauncher/mcmeta/pkg/forge"
	"github.com/PrismLauncher/mcmeta/pkg/mojang"
	"github.com/PrismLauncher/mcmeta/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		skipSync bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Sync once, then serve the mirrored metadata over HTTP",
		Long: `Sync every source once, then serve the mirrored documents.

Routes:
  /raw/mojang, /raw/mojang/{version}
  /raw/forge/maven, /raw/forge/promotions, /raw/forge/index
  /raw/forge/{version}, /raw/forge/{version}/meta, /raw/forge/{version}/installer
  /health, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.BindAddress
			}

			metrics.Register(prometheus.DefaultRegisterer)

			b, err := c.openBackends(ctx, cfg, noCache)
			if err != nil {
				return err
			}
			defer b.Close()

			if !skipSync {
				if err := c.syncSources(ctx, cfg, b, cmd.OutOrStdout(), mojang.Source, forge.Source); err != nil {
					return err
				}
			}

			srv := server.New(b.store, server.Options{
				Logger:   loggerFromContext(ctx),
				Gatherer: prometheus.DefaultGatherer,
			})
			printInfo(cmd.OutOrStdout(), "Serving on %s", StyleValue.Render("http://"+addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default bind_address)")
	cmd.Flags().BoolVar(&skipSync, "skip-sync", false, "serve the stored metadata without syncing first")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the HTTP response cache")

	return cmd
}
