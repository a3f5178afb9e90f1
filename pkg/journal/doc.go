// Package journal records batch evaluation results.
//
// Each Record is one formula evaluated against one chart: its outcome, any
// error text, how long evaluation took and the run it belonged to. Records
// are kept in an embedded SQLite database (modernc.org/sqlite, no cgo) or in
// memory for tests.
//
// A Pruner enforces retention by age and by record count, and a Scheduler
// runs it on a cron schedule:
//
//	store, err := journal.NewSQLiteStorage(journal.SQLiteConfigFrom(cfg.Journal), logger)
//	if err != nil {
//		return err
//	}
//	defer store.Close()
//
//	pruner := journal.NewPruner(store, journal.RetentionConfigFrom(cfg.Journal), collector, logger)
//	if err := journal.NewScheduler(pruner).Start(ctx); err != nil {
//		return err
//	}
package journal
