package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"orrery-hq/natal/pkg/chart"
	"orrery-hq/natal/pkg/cli"
	"orrery-hq/natal/pkg/config"
	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
	"orrery-hq/natal/pkg/validator"
)

var checkFlags struct {
	chart    string
	validate bool
	verbose  bool
}

var checkCmd = &cobra.Command{
	Use:   "check <formula>",
	Short: "Evaluate a formula against a chart",
	Long: `Evaluate a formula against one chart and print the result.

Exits 0 when the formula holds, 1 when it does not and 2 when the formula
is invalid or cannot be evaluated against the chart.

Examples:
  natal check 'Sun.Sign == Capricorn' --chart charts/einstein.yaml
  natal check 'Mars.Dignity == Exaltation' --chart c.yaml --validate --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkFlags.chart, "chart", "", "chart file (YAML or JSON)")
	checkCmd.Flags().BoolVar(&checkFlags.validate, "validate", false, "run domain validation first (default from validator.enabled)")
	checkCmd.Flags().BoolVarP(&checkFlags.verbose, "verbose", "v", false, "print chart context for mentioned bodies")
	_ = checkCmd.MarkFlagRequired("chart")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()
	text := args[0]

	f, err := compile(cfg, text)
	if err != nil {
		return err
	}

	table, err := loadTable(cfg)
	if err != nil {
		return err
	}
	charts, err := loadCharts([]string{checkFlags.chart}, table)
	if err != nil {
		return err
	}
	c := charts[0]

	if flagOr(cmd, "validate", checkFlags.validate, cfg.Validator.Enabled) {
		v := newValidator(table, chartBodies(charts))
		if err := reportDiagnostics(cmd.ErrOrStderr(), v, f.Root, text, cfg.Validator.FailOnWarning); err != nil {
			return err
		}
	}

	ok, err := f.Check(cmd.Context(), c)
	if err != nil {
		return formulaExit(err)
	}
	slog.Debug("formula checked", "chart", c.Name, "result", ok)

	fmt.Fprint(cmd.OutOrStdout(), chart.FormatResult(text, ok, c, checkFlags.verbose))
	if !ok {
		return cli.Exit(cli.ExitFalse, nil)
	}
	return nil
}

// reportDiagnostics prints validator findings to w. It returns an exit
// error when any finding is an error, or a warning under failOnWarning.
func reportDiagnostics(w io.Writer, v *validator.Validator, root ast.Node, source string, failOnWarning bool) error {
	list := v.Diagnose(root)
	for _, d := range list.Errors {
		if d.Context == "" {
			d.Context = formulaErrors.ExtractContext(source, d.Position, 0)
		}
		fmt.Fprintln(w, d.Error())
	}
	if list.HasErrors() || (failOnWarning && list.HasSeverity(formulaErrors.SeverityWarning)) {
		return cli.Exit(cli.ExitFormulaError, nil)
	}
	return nil
}
