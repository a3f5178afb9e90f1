package metrics

import (
	"orrery-hq/natal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// JournalMetrics tracks the evaluation journal.
//
// Metrics:
//   - natal_journal_records_written_total
//   - natal_journal_records_pruned_total
type JournalMetrics struct {
	written prometheus.Counter
	pruned  prometheus.Counter
}

// NewJournalMetrics creates and registers journal metrics.
func NewJournalMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *JournalMetrics {
	jm := &JournalMetrics{
		written: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "journal_records_written_total",
			Help:      "Total number of journal records written",
		}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "journal_records_pruned_total",
			Help:      "Total number of journal records removed by retention",
		}),
	}
	registry.MustRegister(jm.written, jm.pruned)
	return jm
}

// RecordWrite adds n written records.
func (jm *JournalMetrics) RecordWrite(n int) {
	jm.written.Add(float64(n))
}

// RecordPruned adds n pruned records.
func (jm *JournalMetrics) RecordPruned(n int64) {
	jm.pruned.Add(float64(n))
}
