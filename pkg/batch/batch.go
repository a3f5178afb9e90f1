package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"orrery-hq/natal/pkg/chart"
	"orrery-hq/natal/pkg/config"
	"orrery-hq/natal/pkg/formula"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
	"orrery-hq/natal/pkg/formula/evaluator"
	"orrery-hq/natal/pkg/journal"
	"orrery-hq/natal/pkg/preset"
	"orrery-hq/natal/pkg/telemetry/logging"
	"orrery-hq/natal/pkg/telemetry/metrics"
	"orrery-hq/natal/pkg/telemetry/tracing"
	"orrery-hq/natal/pkg/validator"
)

// Error kinds reported in Result.Kind besides the formula error types.
const (
	KindPanic     = "panic"
	KindCancelled = "cancelled"
	KindType      = "type"
)

// Job is one named formula to evaluate.
type Job struct {
	Name    string
	Formula *formula.Formula
}

// JobsFromPresets turns compiled presets into jobs, keeping their order.
func JobsFromPresets(presets []*preset.Preset) []Job {
	jobs := make([]Job, 0, len(presets))
	for _, p := range presets {
		jobs = append(jobs, Job{Name: p.Name, Formula: p.Compiled})
	}
	return jobs
}

// Result is the outcome of one job against one chart.
type Result struct {
	Formula  string        `json:"formula"`
	Chart    string        `json:"chart"`
	Match    bool          `json:"match"`
	Outcome  string        `json:"outcome"`
	Kind     string        `json:"kind,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	// Err is the underlying error, nil on success.
	Err error `json:"-"`
}

// Report is the result of a Run.
type Report struct {
	RunID    string        `json:"run_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration_ns"`
	Results  []Result      `json:"results"`
}

// Counts returns how many results matched, did not match, and failed.
func (r *Report) Counts() (match, noMatch, failed int) {
	for _, res := range r.Results {
		switch res.Outcome {
		case journal.OutcomeMatch:
			match++
		case journal.OutcomeNoMatch:
			noMatch++
		default:
			failed++
		}
	}
	return match, noMatch, failed
}

// Runner evaluates jobs against charts.
type Runner struct {
	workers   int
	logger    *slog.Logger
	metrics   *metrics.Collector
	tracer    *tracing.Tracer
	journal   journal.Storage
	validator *validator.Validator
	progress  func(done, total int)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithMetrics records evaluations on collector.
func WithMetrics(collector *metrics.Collector) Option {
	return func(r *Runner) { r.metrics = collector }
}

// WithTracer creates a span per run and per pair.
func WithTracer(tracer *tracing.Tracer) Option {
	return func(r *Runner) { r.tracer = tracer }
}

// WithJournal stores every result in storage.
func WithJournal(storage journal.Storage) Option {
	return func(r *Runner) { r.journal = storage }
}

// WithValidator checks each formula before evaluation. Jobs with domain
// errors fail for every chart without being evaluated.
func WithValidator(v *validator.Validator) Option {
	return func(r *Runner) { r.validator = v }
}

// WithProgress calls fn after each pair completes. fn may be called from
// several goroutines at once.
func WithProgress(fn func(done, total int)) Option {
	return func(r *Runner) { r.progress = fn }
}

// NewRunner creates a runner.
func NewRunner(cfg config.BatchConfig, opts ...Option) *Runner {
	r := &Runner{workers: cfg.Workers}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = config.DefaultBatchWorkers
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.tracer == nil {
		r.tracer = tracing.Noop()
	}
	r.logger = r.logger.With("component", "batch")
	return r
}

// Run evaluates every job against every chart. Results are ordered by job,
// then by chart, regardless of completion order. A failing pair never
// affects the others; once ctx is cancelled, pairs not yet started are
// reported as cancelled and Run returns ctx.Err() with the partial report.
func (r *Runner) Run(ctx context.Context, jobs []Job, charts []*chart.Data) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
		Results: make([]Result, len(jobs)*len(charts)),
	}

	ctx = logging.WithRunID(ctx, report.RunID)
	ctx, span := r.tracer.Start(ctx, "batch.run", trace.WithAttributes(
		attribute.String("natal.run_id", report.RunID),
		attribute.Int("natal.formulas", len(jobs)),
		attribute.Int("natal.charts", len(charts)),
	))
	defer span.End()

	r.logger.InfoContext(ctx, "batch started",
		"formulas", len(jobs),
		"charts", len(charts),
		"workers", r.workers,
	)

	domainErrs := r.validate(jobs)

	g := new(errgroup.Group)
	g.SetLimit(r.workers)

	total := len(report.Results)
	var done atomic.Int64
	tick := func() {
		if r.progress != nil {
			r.progress(int(done.Add(1)), total)
		}
	}

	for i, job := range jobs {
		for j, c := range charts {
			slot := &report.Results[i*len(charts)+j]
			if ctx.Err() != nil {
				*slot = cancelled(job.Name, c.Name, ctx.Err())
				tick()
				continue
			}
			g.Go(func() error {
				defer tick()
				if ctx.Err() != nil {
					*slot = cancelled(job.Name, c.Name, ctx.Err())
					return nil
				}
				if err := domainErrs[i]; err != nil {
					*slot = failed(job.Name, c.Name, err, string(formulaErrors.ErrorTypeDomain), 0)
					return nil
				}
				*slot = r.evaluateChart(ctx, job, c.Name, c)
				return nil
			})
		}
	}
	_ = g.Wait()

	report.Duration = time.Since(report.Started)
	for _, res := range report.Results {
		r.metrics.RecordEvaluation(res.Formula, res.Outcome, res.Duration)
		if res.Kind != "" {
			r.metrics.RecordFormulaError(res.Kind)
		}
	}
	r.metrics.RecordBatch(len(report.Results), report.Duration)

	if err := r.record(ctx, report); err != nil {
		tracing.SetError(span, err)
		return report, err
	}

	match, noMatch, failedCount := report.Counts()
	r.logger.InfoContext(ctx, "batch completed",
		"pairs", len(report.Results),
		"match", match,
		"no_match", noMatch,
		"failed", failedCount,
		"duration_ms", report.Duration.Milliseconds(),
	)

	if err := ctx.Err(); err != nil {
		tracing.SetError(span, err)
		return report, err
	}
	tracing.SetStatus(span, nil)
	return report, nil
}

// evaluateChart runs one pair, converting panics into a failed result.
func (r *Runner) evaluateChart(ctx context.Context, job Job, chartName string, c evaluator.Chart) (res Result) {
	ctx = logging.WithChart(logging.WithFormula(ctx, job.Name), chartName)
	ctx, span := r.tracer.Start(ctx, "batch.evaluate", trace.WithAttributes(
		attribute.String("natal.formula", job.Name),
		attribute.String("natal.chart", chartName),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("panic during evaluation: %v", p)
			r.logger.ErrorContext(ctx, "evaluation panicked", "panic", p, "stack", string(debug.Stack()))
			tracing.SetError(span, err)
			res = failed(job.Name, chartName, err, KindPanic, time.Since(start))
		}
	}()

	if job.Formula == nil {
		err := errors.New("formula not compiled")
		tracing.SetError(span, err)
		return failed(job.Name, chartName, err, KindType, 0)
	}

	ok, err := job.Formula.Check(ctx, c)
	elapsed := time.Since(start)
	if err != nil {
		kind := string(formulaErrors.KindOf(err))
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			kind = KindCancelled
		case kind == "":
			kind = KindType
		}
		r.logger.DebugContext(ctx, "evaluation failed", "error", err, "kind", kind)
		tracing.SetError(span, err)
		return failed(job.Name, chartName, err, kind, elapsed)
	}

	span.SetAttributes(attribute.Bool("natal.match", ok))
	outcome := journal.OutcomeNoMatch
	if ok {
		outcome = journal.OutcomeMatch
	}
	return Result{Formula: job.Name, Chart: chartName, Match: ok, Outcome: outcome, Duration: elapsed}
}

// validate returns the domain error of each job, if any.
func (r *Runner) validate(jobs []Job) []error {
	errs := make([]error, len(jobs))
	if r.validator == nil {
		return errs
	}
	for i, job := range jobs {
		if job.Formula == nil {
			continue
		}
		if err := r.validator.Validate(job.Formula.Root); err != nil {
			errs[i] = err
			r.logger.Warn("formula failed domain validation", "formula", job.Name, "error", err)
		}
	}
	return errs
}

// record writes the report to the journal. Cancelled pairs are not recorded.
func (r *Runner) record(ctx context.Context, report *Report) error {
	if r.journal == nil {
		return nil
	}

	records := make([]*journal.Record, 0, len(report.Results))
	for _, res := range report.Results {
		if res.Kind == KindCancelled {
			continue
		}
		rec := journal.NewRecord(report.RunID, res.Formula, res.Chart, res.Outcome)
		rec.Error = res.Error
		rec.Duration = res.Duration
		records = append(records, rec)
	}

	// the journal write is not abandoned when the run is cancelled
	if err := r.journal.Store(context.WithoutCancel(ctx), records...); err != nil {
		return fmt.Errorf("failed to record batch results: %w", err)
	}
	r.metrics.RecordJournalWrite(len(records))
	return nil
}

func failed(formula, chartName string, err error, kind string, d time.Duration) Result {
	return Result{
		Formula:  formula,
		Chart:    chartName,
		Outcome:  journal.OutcomeError,
		Kind:     kind,
		Error:    err.Error(),
		Err:      err,
		Duration: d,
	}
}

func cancelled(formula, chartName string, err error) Result {
	return failed(formula, chartName, err, KindCancelled, 0)
}
