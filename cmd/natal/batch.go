package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"orrery-hq/natal/pkg/batch"
	"orrery-hq/natal/pkg/chart"
	"orrery-hq/natal/pkg/cli"
	"orrery-hq/natal/pkg/config"
	"orrery-hq/natal/pkg/formula"
	"orrery-hq/natal/pkg/preset"
	"orrery-hq/natal/pkg/telemetry/tracing"
)

var batchFlags struct {
	presets  string
	charts   []string
	formulas []string
	tags     []string
	format   string
	journal  bool
	workers  int
	validate bool
	progress bool
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate preset formulas against many charts",
	Long: `Evaluate every preset formula, plus any --formula given on the command
line, against every chart. Pairs are evaluated concurrently; results are
listed by formula, then by chart.

Exits 0 when every pair evaluated, 2 when any pair failed.

Examples:
  natal batch --presets presets/ --charts charts/a.yaml,charts/b.yaml
  natal batch --formula 'Sun.House == 10' --charts c.yaml --format json
  natal batch --presets presets/ --tag career --charts c.yaml --journal`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	f := batchCmd.Flags()
	f.StringVarP(&batchFlags.presets, "presets", "p", "", "preset file or directory (default from presets.path)")
	f.StringSliceVar(&batchFlags.charts, "charts", nil, "chart files (default from batch.charts)")
	f.StringArrayVar(&batchFlags.formulas, "formula", nil, "ad hoc formula (repeatable)")
	f.StringSliceVar(&batchFlags.tags, "tag", nil, "only run presets with one of these tags")
	f.StringVarP(&batchFlags.format, "format", "f", "table", "output format (table, json, csv, markdown)")
	f.BoolVar(&batchFlags.journal, "journal", false, "record results in the journal (default from journal.enabled)")
	f.IntVarP(&batchFlags.workers, "workers", "w", 0, "concurrent evaluations (default from batch.workers)")
	f.BoolVar(&batchFlags.validate, "validate", false, "run domain validation first (default from validator.enabled)")
	f.BoolVar(&batchFlags.progress, "progress", false, "show a progress bar on stderr")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	logger := slog.Default()

	format, err := cli.ParseFormat(batchFlags.format)
	if err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}

	// ad hoc formulas alone skip the configured preset path
	presetPath := batchFlags.presets
	if presetPath == "" && len(batchFlags.formulas) == 0 {
		presetPath = cfg.Presets.Path
	}
	chartPaths := cfg.Batch.Charts
	if len(batchFlags.charts) > 0 {
		chartPaths = batchFlags.charts
	}
	batchCfg := cfg.Batch
	if batchFlags.workers > 0 {
		batchCfg.Workers = batchFlags.workers
	}

	opts, err := compileOptions(cfg, logger)
	if err != nil {
		return err
	}
	jobs, err := collectJobs(presetPath, batchFlags.formulas, batchFlags.tags, opts)
	if err != nil {
		return err
	}

	table, err := loadTable(cfg)
	if err != nil {
		return err
	}
	charts, err := loadCharts(chartPaths, table)
	if err != nil {
		return err
	}

	tracer, err := newTracer(cfg)
	if err != nil {
		return err
	}
	defer shutdownTracer(tracer)

	runOpts := []batch.Option{
		batch.WithLogger(logger),
		batch.WithTracer(tracer),
		batch.WithMetrics(newCollector(cfg)),
	}

	if flagOr(cmd, "validate", batchFlags.validate, cfg.Validator.Enabled) {
		runOpts = append(runOpts, batch.WithValidator(newValidator(table, chartBodies(charts))))
	}
	if flagOr(cmd, "journal", batchFlags.journal, cfg.Journal.Enabled) {
		store, err := openJournal(cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		runOpts = append(runOpts, batch.WithJournal(store))
	}

	var bar *cli.SimpleProgress
	if batchFlags.progress {
		bar = cli.NewProgressReporter(cmd.ErrOrStderr(), "pairs")
		bar.Start(int64(len(jobs) * len(charts)))
		runOpts = append(runOpts, batch.WithProgress(func(done, total int) {
			bar.Update(int64(done))
		}))
	}

	report, runErr := batch.NewRunner(batchCfg, runOpts...).Run(cmd.Context(), jobs, charts)
	if bar != nil {
		if runErr != nil {
			bar.Error(runErr)
		} else {
			bar.Finish()
		}
	}

	if report != nil {
		if err := cli.Render(cmd.OutOrStdout(), format, reportView{report}); err != nil {
			return cli.Exit(cli.ExitFailure, err)
		}
		if format == cli.FormatTable {
			printSummary(cmd.ErrOrStderr(), report)
		}
	}
	return batchExit(report, runErr)
}

// collectJobs loads presets from path, filtered by tags, and compiles the
// ad hoc formulas after them.
func collectJobs(path string, formulas, tags []string, opts []formula.Option) ([]batch.Job, error) {
	var jobs []batch.Job
	if path != "" {
		presets, err := preset.NewLoader(nil, opts...).Load(path)
		if err != nil {
			return nil, formulaExit(err)
		}
		if len(tags) > 0 {
			presets = filterTags(presets, tags)
		}
		jobs = batch.JobsFromPresets(presets)
	}

	for i, text := range formulas {
		f, err := formula.Compile(text, opts...)
		if err != nil {
			return nil, formulaExit(err)
		}
		name := "adhoc"
		if len(formulas) > 1 {
			name = fmt.Sprintf("adhoc-%d", i+1)
		}
		jobs = append(jobs, batch.Job{Name: name, Formula: f})
	}

	if len(jobs) == 0 {
		return nil, cli.Exit(cli.ExitFailure, errors.New("no formulas to evaluate: give --presets or --formula"))
	}
	return jobs, nil
}

func filterTags(presets []*preset.Preset, tags []string) []*preset.Preset {
	var out []*preset.Preset
	for _, p := range presets {
		for _, tag := range tags {
			if p.HasTag(tag) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// runScheduled evaluates the registry's presets once, as the watch command
// does on its schedule.
func runScheduled(ctx context.Context, runner *batch.Runner, registry *preset.Registry, charts []*chart.Data) (*batch.Report, error) {
	jobs := batch.JobsFromPresets(registry.All())
	if len(jobs) == 0 {
		return nil, errors.New("no presets loaded")
	}
	return runner.Run(ctx, jobs, charts)
}

func printSummary(w io.Writer, report *batch.Report) {
	match, noMatch, failed := report.Counts()
	fmt.Fprintf(w, "%d pairs: %d true, %d false, %d failed in %s\n",
		len(report.Results), match, noMatch, failed, report.Duration.Round(time.Millisecond))
}

// batchExit maps a finished run to its exit status.
func batchExit(report *batch.Report, runErr error) error {
	if runErr != nil {
		return cli.Exit(cli.ExitFailure, runErr)
	}
	if _, _, failed := report.Counts(); failed > 0 {
		return cli.Exit(cli.ExitFormulaError, nil)
	}
	return nil
}

// flagOr returns the flag value when it was set, otherwise def.
func flagOr(cmd *cobra.Command, name string, value, def bool) bool {
	if cmd.Flags().Changed(name) {
		return value
	}
	return def
}

func shutdownTracer(tracer *tracing.Tracer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tracer.Shutdown(ctx); err != nil {
		slog.Warn("failed to flush traces", "error", err)
	}
}

