package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"orrery-hq/natal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		DurationBuckets: []float64{0.001, 0.01, 0.1},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()
	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}

	defaulted := NewCollector(&config.MetricsConfig{Enabled: true}, nil)
	if defaulted.config.Namespace != "natal" {
		t.Errorf("Namespace = %q, want natal", defaulted.config.Namespace)
	}
	if defaulted.Registry() == nil {
		t.Error("expected a fresh registry")
	}
}

func TestCollector_RecordEvaluation(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordEvaluation("angular-mars", OutcomeMatch, time.Millisecond)
	collector.RecordEvaluation("angular-mars", OutcomeMatch, time.Millisecond)
	collector.RecordEvaluation("angular-mars", OutcomeNoMatch, time.Millisecond)
	collector.RecordEvaluation("adhoc", OutcomeError, time.Millisecond)

	evals := collector.evaluation.evaluationsTotal
	if got := testutil.ToFloat64(evals.WithLabelValues("angular-mars", OutcomeMatch)); got != 2 {
		t.Errorf("match count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(evals.WithLabelValues("adhoc", OutcomeError)); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(collector.evaluation.evaluationDuration); got != 3 {
		t.Errorf("duration series = %d, want 3", got)
	}
}

func TestCollector_Errors_Batch_Presets_Journal(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordFormulaError("parse")
	collector.RecordFormulaError("parse")
	collector.RecordFormulaError("eval")
	collector.RecordBatch(12, 20*time.Millisecond)
	collector.RecordPresetReload(true, 5)
	collector.RecordPresetReload(false, 0)
	collector.RecordJournalWrite(12)
	collector.RecordJournalPruned(7)

	if got := testutil.ToFloat64(collector.evaluation.errorsTotal.WithLabelValues("parse")); got != 2 {
		t.Errorf("parse errors = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.evaluation.batchRuns); got != 1 {
		t.Errorf("batch runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.presets.loaded); got != 5 {
		t.Errorf("presets loaded = %v, want 5", got)
	}
	if got := testutil.ToFloat64(collector.presets.reloadsTotal.WithLabelValues("failure")); got != 1 {
		t.Errorf("failed reloads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.journal.written); got != 12 {
		t.Errorf("written = %v, want 12", got)
	}
	if got := testutil.ToFloat64(collector.journal.pruned); got != 7 {
		t.Errorf("pruned = %v, want 7", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.RecordEvaluation("x", OutcomeMatch, time.Millisecond)
	collector.RecordFormulaError("lex")
	if got := testutil.CollectAndCount(collector.evaluation.evaluationsTotal); got != 0 {
		t.Errorf("disabled collector recorded %d series", got)
	}

	var nilCollector *Collector
	nilCollector.RecordEvaluation("x", OutcomeMatch, time.Millisecond)
	nilCollector.RecordJournalPruned(1)
}

func TestCollector_CardinalityLimit(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.cardinalityLimiter = NewCardinalityLimiter(2)

	collector.RecordEvaluation("a", OutcomeMatch, 0)
	collector.RecordEvaluation("b", OutcomeMatch, 0)
	collector.RecordEvaluation("c", OutcomeMatch, 0)

	if got := testutil.ToFloat64(collector.evaluation.evaluationsTotal.WithLabelValues("other", OutcomeMatch)); got != 1 {
		t.Errorf("other = %v, want 1", got)
	}
	if collector.cardinalityLimiter.Count() != 2 {
		t.Errorf("Count() = %d, want 2", collector.cardinalityLimiter.Count())
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())
	collector.RecordEvaluation("angular-mars", OutcomeMatch, time.Millisecond)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `test_evaluations_total{formula="angular-mars",outcome="match"} 1`) {
		t.Errorf("metrics output missing evaluation counter:\n%s", body)
	}
}
