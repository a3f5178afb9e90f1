// Package batch evaluates many formulas against many charts.
//
// A Runner spreads (formula, chart) pairs over a bounded worker pool. Each
// pair is isolated: evaluation errors and panics become a failed Result
// for that pair only. Results come back in formula-major, chart-minor
// order whatever the worker count. Every run gets a UUID that appears in
// logs, spans and journal records.
//
//	runner := batch.NewRunner(cfg.Batch,
//		batch.WithLogger(logger),
//		batch.WithMetrics(collector),
//		batch.WithJournal(store),
//	)
//	report, err := runner.Run(ctx, batch.JobsFromPresets(registry.All()), charts)
package batch
