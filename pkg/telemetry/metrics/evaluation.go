package metrics

import (
	"time"

	"orrery-hq/natal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks formula evaluation.
//
// Metrics:
//   - natal_evaluations_total: evaluations by formula and outcome
//   - natal_evaluation_duration_seconds: evaluation duration by outcome
//   - natal_formula_errors_total: failed formulas by error kind
//   - natal_batch_runs_total: completed batch runs
//   - natal_batch_pairs: formula and chart pairs per batch run
//   - natal_batch_duration_seconds: batch run duration
type EvaluationMetrics struct {
	evaluationsTotal   *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
	batchRuns          prometheus.Counter
	batchPairs         prometheus.Histogram
	batchDuration      prometheus.Histogram
}

// NewEvaluationMetrics creates and registers evaluation metrics.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluations_total",
				Help:      "Total number of formula evaluations",
			},
			[]string{"formula", "outcome"},
		),
		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of formula evaluation in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"outcome"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "formula_errors_total",
				Help:      "Total number of formula errors by kind",
			},
			[]string{"kind"},
		),
		batchRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "batch_runs_total",
			Help:      "Total number of completed batch runs",
		}),
		batchPairs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "batch_pairs",
			Help:      "Number of formula and chart pairs per batch run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of batch runs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.errorsTotal,
		em.batchRuns,
		em.batchPairs,
		em.batchDuration,
	)
	return em
}

// RecordEvaluation records one evaluation.
func (em *EvaluationMetrics) RecordEvaluation(formula, outcome string, duration time.Duration) {
	em.evaluationsTotal.WithLabelValues(formula, outcome).Inc()
	em.evaluationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordError records a formula error of the given kind.
func (em *EvaluationMetrics) RecordError(kind string) {
	em.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordBatch records a completed batch run.
func (em *EvaluationMetrics) RecordBatch(pairs int, duration time.Duration) {
	em.batchRuns.Inc()
	em.batchPairs.Observe(float64(pairs))
	em.batchDuration.Observe(duration.Seconds())
}
