package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/PrismLauncher/mcmeta/internal/config"
	"github.com/PrismLauncher/mcmeta/pkg/forge"
	forgeapi "github.com/PrismLauncher/mcmeta/pkg/integrations/forge"
	mojangapi "github.com/PrismLauncher/mcmeta/pkg/integrations/mojang"
	"github.com/PrismLauncher/mcmeta/pkg/mojang"
	"github.com/PrismLauncher/mcmeta/pkg/syncer"
)

// sources maps a source name to its runner.
var sources = map[string]func(*CLI, context.Context, *config.Config, *backends, *semaphore.Weighted) *summary{
	mojang.Source: (*CLI).syncMojang,
	forge.Source:  (*CLI).syncForge,
}

// syncCommand creates the sync command and its per-source subcommands.
func (c *CLI) syncCommand() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror every upstream source once",
		Long: `Mirror Mojang and Forge metadata into the configured storage.

Both sources run concurrently and share max_parallel_fetch_connections
upstream connections between them. Versions that fail with a transient error are
retried on the next run; data errors are reported and left alone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd, noCache, mojang.Source, forge.Source)
		},
	}
	cmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the HTTP response cache")

	cmd.AddCommand(&cobra.Command{
		Use:   mojang.Source,
		Short: "Mirror the Mojang version manifest and version documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd, noCache, mojang.Source)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   forge.Source,
		Short: "Derive the Forge index and extract installer manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSync(cmd, noCache, forge.Source)
		},
	})

	return cmd
}

// runSync opens the backends and runs the named sources.
func (c *CLI) runSync(cmd *cobra.Command, noCache bool, names ...string) error {
	ctx := cmd.Context()
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	b, err := c.openBackends(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer b.Close()
	return c.syncSources(ctx, cfg, b, cmd.OutOrStdout(), names...)
}

// syncSources runs the named sources concurrently and prints one summary
// per source. A failing source never cancels the others. All upstream
// requests of the cycle share one bound of max_parallel_fetch_connections.
func (c *CLI) syncSources(ctx context.Context, cfg *config.Config, b *backends, out io.Writer, names ...string) error {
	prog := newProgress(loggerFromContext(ctx))
	slots := semaphore.NewWeighted(int64(cfg.Metadata.MaxParallelFetchConnections))
	summaries := make([]*summary, len(names))
	var g errgroup.Group
	for i, name := range names {
		run := sources[name]
		g.Go(func() error {
			summaries[i] = run(c, ctx, cfg, b, slots)
			return nil
		})
	}
	_ = g.Wait()
	prog.done("Sync finished", "sources", len(names))

	var errs []error
	for _, s := range summaries {
		printSummary(out, s)
		if s.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Source, s.Err))
		}
	}
	return errors.Join(errs...)
}

func (c *CLI) syncMojang(ctx context.Context, cfg *config.Config, b *backends, slots *semaphore.Weighted) *summary {
	client := mojangapi.NewClient(b.cache, cfg.Cache.TTL, cfg.Upstream.Mojang.ManifestURL)
	client.SetRateLimit(cfg.Metadata.RequestsPerSecond)
	client.SetSlots(slots)
	client.SetKeyer(cacheKeyer(cfg.Cache.KeyPrefix))

	s := mojang.New(client, b.store, mojang.Options{
		Concurrency:  cfg.Metadata.MaxParallelFetchConnections,
		GeneratedDir: cfg.Storage.GeneratedDirectory,
		Logger:       loggerFromContext(ctx),
	})
	start := time.Now()
	report, err := s.Run(ctx)
	sum := &summary{Source: mojang.Source, Err: err, Duration: time.Since(start)}
	if report != nil {
		sum.Results = []*syncer.Result{report.Result}
		sum.Notes = append(sum.Notes, fmt.Sprintf("%d listed", report.Listed))
	}
	return sum
}

func (c *CLI) syncForge(ctx context.Context, cfg *config.Config, b *backends, slots *semaphore.Weighted) *summary {
	client := forgeapi.NewClient(b.cache, cfg.Cache.TTL, cfg.Upstream.Forge.URLs())
	client.SetRateLimit(cfg.Metadata.RequestsPerSecond)
	client.SetSlots(slots)
	client.SetKeyer(cacheKeyer(cfg.Cache.KeyPrefix))

	p := forge.NewPipeline(client, b.store, b.static, forge.Options{
		Concurrency: cfg.Metadata.MaxParallelFetchConnections,
		Logger:      loggerFromContext(ctx),
	})
	start := time.Now()
	report, err := p.Run(ctx)
	sum := &summary{Source: forge.Source, Err: err, Duration: time.Since(start)}
	if report == nil {
		return sum
	}
	sum.Results = []*syncer.Result{report.Entries, report.Extraction}
	if report.Index != nil {
		sum.Notes = append(sum.Notes, fmt.Sprintf("%d indexed", len(report.Index.Versions)))
	}
	if report.Digest != "" && !report.Regenerated {
		sum.Notes = append(sum.Notes, "index unchanged")
	}
	return sum
}
