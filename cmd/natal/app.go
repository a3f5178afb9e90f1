package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"orrery-hq/natal/pkg/astro"
	"orrery-hq/natal/pkg/chart"
	"orrery-hq/natal/pkg/cli"
	"orrery-hq/natal/pkg/config"
	"orrery-hq/natal/pkg/formula"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
	"orrery-hq/natal/pkg/formula/evaluator"
	"orrery-hq/natal/pkg/journal"
	"orrery-hq/natal/pkg/telemetry/metrics"
	"orrery-hq/natal/pkg/telemetry/tracing"
	"orrery-hq/natal/pkg/validator"
)

// compileOptions returns the formula options implied by the configuration.
// All formulas compiled with them share one evaluator.
func compileOptions(cfg *config.Config, logger *slog.Logger) ([]formula.Option, error) {
	evalCfg := evaluator.DefaultConfig().
		WithMaxDepth(cfg.Formula.MaxDepth).
		WithAggregatePolicy(evaluator.AggregatePolicy(cfg.Formula.AggregatePolicy))

	e, err := evaluator.New(logger, evalCfg)
	if err != nil {
		return nil, cli.Exit(cli.ExitFailure, cli.NewConfigError("formula", err.Error()))
	}
	return []formula.Option{
		formula.WithMaxDepth(cfg.Formula.MaxDepth),
		formula.WithMaxLength(cfg.Formula.MaxLength),
		formula.WithEvaluator(e),
	}, nil
}

// compile compiles text with the configured limits. Formula errors exit 2.
func compile(cfg *config.Config, text string) (*formula.Formula, error) {
	opts, err := compileOptions(cfg, slog.Default())
	if err != nil {
		return nil, err
	}
	f, err := formula.Compile(text, opts...)
	if err != nil {
		return nil, formulaExit(err)
	}
	return f, nil
}

// formulaExit attaches the exit code for err: 2 for formula errors, 3 otherwise.
func formulaExit(err error) error {
	if formulaErrors.KindOf(err) != "" {
		return cli.Exit(cli.ExitFormulaError, err)
	}
	return cli.Exit(cli.ExitFailure, err)
}

// loadTable returns the dignity table named by the validator configuration.
func loadTable(cfg *config.Config) (*astro.Table, error) {
	mode := astro.Mode(cfg.Validator.Mode)
	var (
		table *astro.Table
		err   error
	)
	if cfg.Validator.DignitiesFile != "" {
		table, err = astro.LoadTableFile(cfg.Validator.DignitiesFile, mode)
	} else {
		table, err = astro.DefaultTable(mode)
	}
	if err != nil {
		return nil, cli.Exit(cli.ExitFailure, cli.NewConfigError("validator", err.Error()))
	}
	return table, nil
}

// newValidator builds a domain validator over the configured dignity table.
func newValidator(table *astro.Table, extraBodies []string) *validator.Validator {
	return validator.New(table).WithBodies(extraBodies...)
}

// loadCharts reads chart files, accepting comma separated lists.
func loadCharts(paths []string, table *astro.Table) ([]*chart.Data, error) {
	var charts []*chart.Data
	for _, arg := range paths {
		for _, path := range strings.Split(arg, ",") {
			path = strings.TrimSpace(path)
			if path == "" {
				continue
			}
			c, err := chart.Load(path, chart.ConvertOptions{Dignities: table})
			if err != nil {
				return nil, cli.Exit(cli.ExitFailure, fmt.Errorf("failed to load chart %s: %w", path, err))
			}
			charts = append(charts, c)
		}
	}
	if len(charts) == 0 {
		return nil, cli.Exit(cli.ExitFailure, fmt.Errorf("no charts given"))
	}
	return charts, nil
}

// chartBodies lists every planet and point name in charts, so custom
// points are not reported as unknown bodies.
func chartBodies(charts []*chart.Data) []string {
	var names []string
	for _, c := range charts {
		names = append(names, c.Planets.Names()...)
		names = append(names, c.Points.Names()...)
	}
	return names
}

// newCollector creates a metrics collector on a fresh registry with the Go
// runtime and process collectors attached.
func newCollector(cfg *config.Config) *metrics.Collector {
	if !cfg.Telemetry.Metrics.Enabled {
		return nil
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return metrics.NewCollector(&cfg.Telemetry.Metrics, registry)
}

// newTracer creates the configured tracer; disabled tracing yields a no-op.
func newTracer(cfg *config.Config) (*tracing.Tracer, error) {
	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, cli.Exit(cli.ExitFailure, cli.NewConfigError("telemetry.tracing", err.Error()))
	}
	return tracer, nil
}

// openJournal opens the configured SQLite journal.
func openJournal(cfg *config.Config, logger *slog.Logger) (*journal.SQLiteStorage, error) {
	store, err := journal.NewSQLiteStorage(journal.SQLiteConfigFrom(cfg.Journal), logger)
	if err != nil {
		return nil, cli.Exit(cli.ExitFailure, err)
	}
	return store, nil
}
