package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"orrery-hq/natal/pkg/batch"
	"orrery-hq/natal/pkg/chart"
	"orrery-hq/natal/pkg/cli"
	"orrery-hq/natal/pkg/config"
	"orrery-hq/natal/pkg/journal"
	"orrery-hq/natal/pkg/preset"
	"orrery-hq/natal/pkg/telemetry/metrics"
	"orrery-hq/natal/pkg/telemetry/tracing"
)

var watchFlags struct {
	presets  string
	charts   []string
	schedule string
	listen   string
	onReload bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep presets loaded and re-evaluate them on a schedule",
	Long: `Load presets and reload them whenever their files change. A reload that
fails keeps the previous presets.

The presets are evaluated against the configured charts on the cron
schedule in batch.schedule and, with --on-reload, after every successful
reload. Prometheus metrics are served on telemetry.metrics.listen_address
and the journal is pruned on journal.prune_schedule.

Examples:
  natal watch --presets presets/ --charts charts/a.yaml --schedule '@hourly'
  natal watch -c natal.yaml --listen :9464`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	f := watchCmd.Flags()
	f.StringVarP(&watchFlags.presets, "presets", "p", "", "preset file or directory (default from presets.path)")
	f.StringSliceVar(&watchFlags.charts, "charts", nil, "chart files (default from batch.charts)")
	f.StringVar(&watchFlags.schedule, "schedule", "", "cron schedule for evaluation (default from batch.schedule)")
	f.StringVar(&watchFlags.listen, "listen", "", "metrics listen address (default from telemetry.metrics.listen_address)")
	f.BoolVar(&watchFlags.onReload, "on-reload", true, "evaluate after every successful reload")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := *config.GetConfig()
	logger := slog.Default().With("component", "watch")

	presetsCfg := cfg.Presets
	if watchFlags.presets != "" {
		presetsCfg.Path = watchFlags.presets
	}
	chartPaths := cfg.Batch.Charts
	if len(watchFlags.charts) > 0 {
		chartPaths = watchFlags.charts
	}
	schedule := cfg.Batch.Schedule
	if watchFlags.schedule != "" {
		schedule = watchFlags.schedule
	}
	if watchFlags.listen != "" {
		cfg.Telemetry.Metrics.ListenAddress = watchFlags.listen
	}

	opts, err := compileOptions(&cfg, slog.Default())
	if err != nil {
		return err
	}
	table, err := loadTable(&cfg)
	if err != nil {
		return err
	}
	charts, err := loadCharts(chartPaths, table)
	if err != nil {
		return err
	}

	collector := newCollector(&cfg)
	tracer, err := newTracer(&cfg)
	if err != nil {
		return err
	}
	defer shutdownTracer(tracer)

	manager, err := preset.NewManager(presetsCfg, preset.NewLoader(nil, opts...), collector, slog.Default())
	if err != nil {
		return cli.Exit(cli.ExitFailure, cli.NewConfigError("presets.path", err.Error()))
	}
	if err := manager.Load(); err != nil {
		return formulaExit(err)
	}

	runOpts := []batch.Option{
		batch.WithLogger(slog.Default()),
		batch.WithTracer(tracer),
		batch.WithMetrics(collector),
	}
	if cfg.Validator.Enabled {
		runOpts = append(runOpts, batch.WithValidator(newValidator(table, chartBodies(charts))))
	}

	ctx := cmd.Context()
	if cfg.Journal.Enabled {
		store, err := openJournal(&cfg, slog.Default())
		if err != nil {
			return err
		}
		defer store.Close()
		runOpts = append(runOpts, batch.WithJournal(store))

		pruner := journal.NewPruner(store, journal.RetentionConfigFrom(cfg.Journal), collector, slog.Default())
		scheduler := journal.NewScheduler(pruner)
		if err := scheduler.Start(ctx); err != nil {
			return cli.Exit(cli.ExitFailure, cli.NewConfigError("journal.prune_schedule", err.Error()))
		}
		defer scheduler.Stop()
	}

	ev := &evaluation{
		runner:   batch.NewRunner(cfg.Batch, runOpts...),
		tracer:   tracer,
		registry: manager.Registry(),
		charts:   charts,
		logger:   logger,
		out:      cmd.OutOrStdout(),
	}

	g, ctx := errgroup.WithContext(ctx)

	if schedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(schedule, func() { ev.run(ctx, "schedule") }); err != nil {
			return cli.Exit(cli.ExitFailure, cli.NewConfigError("batch.schedule", fmt.Sprintf("invalid cron schedule %q: %v", schedule, err)))
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		logger.Info("evaluation scheduled", "schedule", schedule, "next", c.Entries()[0].Next)
	}

	if collector != nil {
		srv := metricsServer(cfg.Telemetry.Metrics, collector)
		g.Go(func() error {
			logger.Info("serving metrics", "address", srv.Addr, "path", cfg.Telemetry.Metrics.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	events := make(chan preset.Event, 1)
	manager.Subscribe(events)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case e := <-events:
				if e.Err != nil || !watchFlags.onReload {
					continue
				}
				ev.run(ctx, "reload")
			}
		}
	})

	g.Go(func() error {
		return manager.Watch(ctx)
	})

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Watching %s (%d presets, %d charts)\n",
		presetsCfg.Path, manager.Registry().Len(), len(charts))

	if err := g.Wait(); err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Stopped")
	return nil
}

// evaluation runs the loaded presets, one run at a time.
type evaluation struct {
	runner   *batch.Runner
	tracer   *tracing.Tracer
	registry *preset.Registry
	charts   []*chart.Data
	logger   *slog.Logger
	out      io.Writer

	mu sync.Mutex
}

func (e *evaluation) run(ctx context.Context, trigger string) {
	if !e.mu.TryLock() {
		e.logger.Warn("evaluation still running, skipping", "trigger", trigger)
		return
	}
	defer e.mu.Unlock()

	report, err := runScheduled(ctx, e.runner, e.registry, e.charts)
	// export this run's spans now
	if ferr := e.tracer.ForceFlush(context.WithoutCancel(ctx)); ferr != nil {
		e.logger.Warn("failed to flush traces", "error", ferr)
	}
	if err != nil && report == nil {
		e.logger.Error("evaluation failed", "trigger", trigger, "error", err)
		return
	}
	printSummary(e.out, report)
	if err != nil {
		e.logger.Warn("evaluation interrupted", "trigger", trigger, "error", err)
	}
}

func metricsServer(cfg config.MetricsConfig, collector *metrics.Collector) *http.Server {
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, collector.Handler())
	return &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
