package main

import (
	"github.com/spf13/cobra"

	"orrery-hq/natal/pkg/cli"
	"orrery-hq/natal/pkg/formula"
)

var tokensFormat string

var tokensCmd = &cobra.Command{
	Use:   "tokens <formula>",
	Short: "Show the tokens of a formula",
	Long: `Tokenize a formula and print one row per token with its kind, value and
position.

Examples:
  natal tokens 'Sun.Sign == Leo'
  natal tokens --format json 'Moon.House IN [4, 8]'`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().StringVarP(&tokensFormat, "format", "f", "table", "output format (table, json, csv, markdown)")
}

func runTokens(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(tokensFormat)
	if err != nil {
		return cli.Exit(cli.ExitFailure, err)
	}
	tokens, err := formula.Tokenize(args[0])
	if err != nil {
		return formulaExit(err)
	}
	return cli.Render(cmd.OutOrStdout(), format, tokenView(tokens))
}
