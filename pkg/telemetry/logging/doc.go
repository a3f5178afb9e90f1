// Package logging builds the structured loggers used across natal.
//
// Loggers are plain *slog.Logger values with a JSON or text handler chosen by
// configuration. Records logged with a context pick up the run, formula and
// chart identifiers stored by WithRunID, WithFormula and WithChart:
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "batch started", "pairs", n)
package logging
