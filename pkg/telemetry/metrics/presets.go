package metrics

import (
	"orrery-hq/natal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// PresetMetrics tracks preset loading.
//
// Metrics:
//   - natal_preset_reloads_total: reload attempts by status
//   - natal_presets_loaded: presets currently loaded
type PresetMetrics struct {
	reloadsTotal *prometheus.CounterVec
	loaded       prometheus.Gauge
}

// NewPresetMetrics creates and registers preset metrics.
func NewPresetMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *PresetMetrics {
	pm := &PresetMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "preset_reloads_total",
				Help:      "Total number of preset reload attempts",
			},
			[]string{"status"},
		),
		loaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "presets_loaded",
			Help:      "Number of presets currently loaded",
		}),
	}
	registry.MustRegister(pm.reloadsTotal, pm.loaded)
	return pm
}

// RecordReload records a reload attempt.
func (pm *PresetMetrics) RecordReload(success bool, loaded int) {
	if !success {
		pm.reloadsTotal.WithLabelValues("failure").Inc()
		return
	}
	pm.reloadsTotal.WithLabelValues("success").Inc()
	pm.loaded.Set(float64(loaded))
}
