package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"orrery-hq/natal/pkg/cli"
	"orrery-hq/natal/pkg/config"
	"orrery-hq/natal/pkg/formula/ast"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse <formula>",
	Short: "Show the syntax tree of a formula",
	Long: `Parse a formula and print its canonical form, or the full syntax tree as
JSON with source positions.

Examples:
  natal parse 'NOT Mars.Retrograde AND Sun.House > 6'
  natal parse --format json 'Venus.Sign IN [Taurus, Libra]'`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "text", "output format (text, json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	f, err := compile(config.GetConfig(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch parseFormat {
	case "", "text":
		fmt.Fprintln(out, f.Root.String())
		return nil
	case "json":
		data, err := ast.MarshalTree(f.Root)
		if err != nil {
			return cli.Exit(cli.ExitFailure, err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	default:
		return cli.Exit(cli.ExitFailure, fmt.Errorf("unknown format %q (want text or json)", parseFormat))
	}
}
