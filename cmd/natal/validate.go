package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"orrery-hq/natal/pkg/cli"
	"orrery-hq/natal/pkg/config"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
)

var validateFlags struct {
	format        string
	bodies        []string
	failOnWarning bool
}

var validateCmd = &cobra.Command{
	Use:   "validate <formula>",
	Short: "Check a formula for astrologically impossible conditions",
	Long: `Run domain validation on a formula without a chart: unknown bodies and
signs, out of range houses and degrees, and dignity claims that contradict
the rulership table.

Exits 2 when an error is found, or a warning with --fail-on-warning.

Examples:
  natal validate 'Sun.Dignity == Domicile AND Sun.Sign == Aquarius'
  natal validate --format json 'Moon.House == 13'`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "table", "output format (table, json, csv, markdown)")
	validateCmd.Flags().StringSliceVar(&validateFlags.bodies, "body", nil, "extra body names to accept (repeatable)")
	validateCmd.Flags().BoolVar(&validateFlags.failOnWarning, "fail-on-warning", false, "treat warnings as errors (default from validator.fail_on_warning)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	format, err := cli.ParseFormat(validateFlags.format)
	if err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}

	f, err := compile(cfg, args[0])
	if err != nil {
		return err
	}
	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	list := newValidator(table, validateFlags.bodies).Diagnose(f.Root)
	if list.Count() == 0 && format == cli.FormatTable {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ No problems found")
		return nil
	}
	view := diagnosticView{Formula: args[0], Diagnostics: list.Errors}
	if err := cli.Render(cmd.OutOrStdout(), format, view); err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}

	failOnWarning := cfg.Validator.FailOnWarning
	if cmd.Flags().Changed("fail-on-warning") {
		failOnWarning = validateFlags.failOnWarning
	}
	if list.HasErrors() || (failOnWarning && list.HasSeverity(formulaErrors.SeverityWarning)) {
		return cli.Exit(cli.ExitFormulaError, nil)
	}
	return nil
}
