/*
Package cli provides command-line helpers for the natal command.

Exit Codes:

Commands report their outcome through ExitError. natal check exits 0 when
the formula is true, 1 when it is false, 2 on a formula error, and 3 on
any other failure:

	if !ok {
		return cli.Exit(cli.ExitFalse, nil)
	}

Output Formatting:

Anything implementing Tabular renders as a table, CSV, Markdown or JSON:

	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	return cli.Render(os.Stdout, format, rows)

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr, "pairs")
	progress.Start(total)
	progress.Update(done)
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
