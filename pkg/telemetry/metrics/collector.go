package metrics

import (
	"fmt"
	"sync"
	"time"

	"orrery-hq/natal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the Prometheus metrics for formula evaluation, preset
// reloads and the journal. All Record methods are no-ops when metrics are
// disabled, and a nil *Collector is valid and records nothing.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	evaluation *EvaluationMetrics
	presets    *PresetMetrics
	journal    *JournalMetrics

	cardinalityLimiter *CardinalityLimiter
}

// Outcome labels for evaluations.
const (
	OutcomeMatch   = "match"
	OutcomeNoMatch = "no_match"
	OutcomeError   = "error"
)

// maxFormulaLabels bounds the distinct formula label values.
const maxFormulaLabels = 500

// NewCollector creates a collector registered with registry. A nil registry
// gets a fresh one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.DurationBuckets) == 0 {
		cfg.DurationBuckets = append([]float64(nil), config.DefaultDurationBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		evaluation:         NewEvaluationMetrics(cfg, registry),
		presets:            NewPresetMetrics(cfg, registry),
		journal:            NewJournalMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(maxFormulaLabels),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordEvaluation records one formula evaluation against one chart.
//
// Parameters:
//   - formula: preset name, or "adhoc" for formulas given on the command line
//   - outcome: OutcomeMatch, OutcomeNoMatch or OutcomeError
//   - duration: evaluation time
func (c *Collector) RecordEvaluation(formula, outcome string, duration time.Duration) {
	if !c.enabled() {
		return
	}

	if !c.cardinalityLimiter.Allow(fmt.Sprintf("formula:%s", formula)) {
		formula = "other"
	}
	c.evaluation.RecordEvaluation(formula, outcome, duration)
}

// RecordFormulaError records a failed formula by error kind
// ("lex", "parse", "eval", "domain", "panic").
func (c *Collector) RecordFormulaError(kind string) {
	if !c.enabled() {
		return
	}
	c.evaluation.RecordError(kind)
}

// RecordBatch records a completed batch run.
func (c *Collector) RecordBatch(pairs int, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.evaluation.RecordBatch(pairs, duration)
}

// RecordPresetReload records a preset reload attempt and, on success, the
// number of presets now loaded.
func (c *Collector) RecordPresetReload(success bool, loaded int) {
	if !c.enabled() {
		return
	}
	c.presets.RecordReload(success, loaded)
}

// RecordJournalWrite records journal records written.
func (c *Collector) RecordJournalWrite(n int) {
	if !c.enabled() {
		return
	}
	c.journal.RecordWrite(n)
}

// RecordJournalPruned records journal records removed by retention.
func (c *Collector) RecordJournalPruned(n int64) {
	if !c.enabled() {
		return
	}
	c.journal.RecordPruned(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label combinations per metric.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether a label set is already known or still fits under
// the limit.
func (cl *CardinalityLimiter) Allow(labelSet string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[labelSet]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[labelSet]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[labelSet] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
