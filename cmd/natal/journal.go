package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"orrery-hq/natal/pkg/cli"
	"orrery-hq/natal/pkg/config"
	"orrery-hq/natal/pkg/journal"
)

var journalPath string

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Inspect and prune recorded batch results",
}

var queryFlags struct {
	run     string
	formula string
	chart   string
	outcome string
	since   string
	until   string
	limit   int
	format  string
	count   bool
}

var journalQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List recorded results, newest first",
	Long: `List journal records matching the filters, newest first.

--since and --until take an RFC 3339 time, a date (2006-01-02) or a
duration relative to now (24h, 90m).

Examples:
  natal journal query --formula career-peak --since 168h
  natal journal query --outcome error --format json
  natal journal query --run 3f1c... --count`,
	Args: cobra.NoArgs,
	RunE: runJournalQuery,
}

var pruneFlags struct {
	retentionDays int
	maxRecords    int64
}

var journalPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete records beyond the retention policy",
	Long: `Delete records older than the retention period, then the oldest records
beyond the record cap. Flags override journal.retention_days and
journal.max_records.

Examples:
  natal journal prune
  natal journal prune --retention-days 7 --max-records 10000`,
	Args: cobra.NoArgs,
	RunE: runJournalPrune,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalQueryCmd, journalPruneCmd)
	journalCmd.PersistentFlags().StringVar(&journalPath, "path", "", "journal database (default from journal.path)")

	f := journalQueryCmd.Flags()
	f.StringVar(&queryFlags.run, "run", "", "filter by run ID")
	f.StringVar(&queryFlags.formula, "formula", "", "filter by formula name")
	f.StringVar(&queryFlags.chart, "chart", "", "filter by chart name")
	f.StringVar(&queryFlags.outcome, "outcome", "", "filter by outcome (match, no_match, error)")
	f.StringVar(&queryFlags.since, "since", "", "only records at or after this time")
	f.StringVar(&queryFlags.until, "until", "", "only records at or before this time")
	f.IntVarP(&queryFlags.limit, "limit", "n", journal.DefaultQueryLimit, "maximum records, negative for all")
	f.StringVarP(&queryFlags.format, "format", "f", "table", "output format (table, json, csv, markdown)")
	f.BoolVar(&queryFlags.count, "count", false, "print only the number of matching records")

	journalPruneCmd.Flags().IntVar(&pruneFlags.retentionDays, "retention-days", 0, "override journal.retention_days")
	journalPruneCmd.Flags().Int64Var(&pruneFlags.maxRecords, "max-records", 0, "override journal.max_records")
}

func journalConfig() config.JournalConfig {
	jcfg := config.GetConfig().Journal
	if journalPath != "" {
		jcfg.Path = journalPath
	}
	return jcfg
}

func runJournalQuery(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(queryFlags.format)
	if err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}
	switch queryFlags.outcome {
	case "", journal.OutcomeMatch, journal.OutcomeNoMatch, journal.OutcomeError:
	default:
		return cli.Exit(cli.ExitFailure, fmt.Errorf("unknown outcome %q (want match, no_match or error)", queryFlags.outcome))
	}

	now := time.Now()
	q := &journal.Query{
		RunID:   queryFlags.run,
		Formula: queryFlags.formula,
		Chart:   queryFlags.chart,
		Outcome: queryFlags.outcome,
		Limit:   queryFlags.limit,
	}
	if q.Since, err = parseTimeFlag(queryFlags.since, now); err != nil {
		return cli.Exit(cli.ExitFailure, fmt.Errorf("invalid --since: %w", err))
	}
	if q.Until, err = parseTimeFlag(queryFlags.until, now); err != nil {
		return cli.Exit(cli.ExitFailure, fmt.Errorf("invalid --until: %w", err))
	}

	store, err := journal.NewSQLiteStorage(journal.SQLiteConfigFrom(journalConfig()), slog.Default())
	if err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}
	defer store.Close()

	if queryFlags.count {
		n, err := store.Count(cmd.Context(), q)
		if err != nil {
			return cli.Exit(cli.ExitFailure, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	}

	records, err := store.Query(cmd.Context(), q)
	if err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}
	if err := cli.Render(cmd.OutOrStdout(), format, recordView(records)); err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}
	return nil
}

func runJournalPrune(cmd *cobra.Command, args []string) error {
	jcfg := journalConfig()
	retention := journal.RetentionConfigFrom(jcfg)
	if cmd.Flags().Changed("retention-days") {
		retention.RetentionDays = pruneFlags.retentionDays
	}
	if cmd.Flags().Changed("max-records") {
		retention.MaxRecords = pruneFlags.maxRecords
	}

	store, err := journal.NewSQLiteStorage(journal.SQLiteConfigFrom(jcfg), slog.Default())
	if err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}
	defer store.Close()

	deleted, err := journal.NewPruner(store, retention, nil, slog.Default()).Prune(cmd.Context())
	if err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d records\n", deleted)
	return nil
}

// parseTimeFlag accepts RFC 3339, a bare date, or a duration before now.
func parseTimeFlag(s string, now time.Time) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		t := now.Add(-d)
		return &t, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%q is not a time, date or duration", s)
}
