package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/albapepper/fantasy-history/internal/config"
	"github.com/albapepper/fantasy-history/internal/db"
	"github.com/albapepper/fantasy-history/internal/metrics"
	"github.com/albapepper/fantasy-history/internal/site"
	"github.com/albapepper/fantasy-history/internal/transform"
	"github.com/albapepper/fantasy-history/internal/warehouse"
	"github.com/albapepper/fantasy-history/internal/yahoo"
)

// --------------------------------------------------------------------------
// pull
// --------------------------------------------------------------------------

func pullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Pull raw season snapshots from the Yahoo Fantasy API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				client, err := newClient(cfg)
				if err != nil {
					return err
				}
				start := time.Now()
				puller := yahoo.NewPuller(client, cfg.Puller(), logger)
				result, err := puller.Run(ctx)
				if result != nil {
					logger.Info("Pull finished",
						"duration", time.Since(start).Round(time.Second),
						"summary", result.Summary())
					for _, e := range result.Errors {
						logger.Error("pull error", "error", e)
					}
				}
				return err
			})
		},
	}
}

// --------------------------------------------------------------------------
// transform / metrics / build / run
// --------------------------------------------------------------------------

func transformCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transform",
		Short: "Normalize raw snapshots into the standings and matchup tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				return runTransform(cfg)
			})
		},
	}
}

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Compute champions, all-time standings and records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				_, err := metrics.Run(cfg.Paths(), logger)
				return err
			})
		},
	}
}

func buildCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the static report pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				return runBuild(cfg, check)
			})
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Verify every relative link in the generated pages")
	return cmd
}

func runCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run transform, metrics and build in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				start := time.Now()
				if err := runTransform(cfg); err != nil {
					return err
				}
				if _, err := metrics.Run(cfg.Paths(), logger); err != nil {
					return err
				}
				if err := runBuild(cfg, check); err != nil {
					return err
				}
				logger.Info("Pipeline finished", "duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Verify every relative link in the generated pages")
	return cmd
}

func runTransform(cfg *config.Config) error {
	paths := cfg.Paths()
	result, err := transform.New(paths.RawDir, logger).Run(paths)
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		logger.Warn("Transform skipped rows", "count", len(result.Errors))
	}
	return nil
}

func runBuild(cfg *config.Config, check bool) error {
	paths := cfg.Paths()
	if _, err := site.New(paths, logger).Build(); err != nil {
		return err
	}
	if !check {
		return nil
	}
	broken, err := site.CheckLinks(paths.ReportsDir)
	if err != nil {
		return err
	}
	for _, b := range broken {
		logger.Error("Broken link", "page", b.Page, "href", b.Href)
	}
	if len(broken) > 0 {
		return fmt.Errorf("%d broken links", len(broken))
	}
	logger.Info("Link check passed", "dir", paths.ReportsDir)
	return nil
}

// --------------------------------------------------------------------------
// load
// --------------------------------------------------------------------------

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Export processed tables and metrics into Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(func(ctx context.Context, cfg *config.Config) error {
				in, err := metrics.Load(cfg.Paths())
				if err != nil {
					return err
				}

				logger.Info("Connecting to database...")
				pool, err := db.New(ctx, cfg)
				if err != nil {
					return fmt.Errorf("connect to database: %w", err)
				}
				defer pool.Close()
				if err := pool.HealthCheck(ctx); err != nil {
					return fmt.Errorf("database health check: %w", err)
				}

				if err := warehouse.Migrate(ctx, pool.Pool); err != nil {
					return err
				}
				if _, err := warehouse.Load(ctx, pool.Pool, in, metrics.Compute(in), logger); err != nil {
					return err
				}
				seasons, err := pool.LoadedSeasons(ctx)
				if err != nil {
					return err
				}
				logger.Info("Warehouse ready", "seasons", seasons)
				return nil
			})
		},
	}
}
