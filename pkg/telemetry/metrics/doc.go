// Package metrics exposes Prometheus metrics for natal.
//
// A Collector owns its own registry so tests and commands never share
// global state. natal watch serves it over HTTP:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// Evaluations are labelled by formula (preset name) and outcome. Formula
// label values beyond a fixed limit are folded into "other".
package metrics
