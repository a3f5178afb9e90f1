package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"orrery-hq/natal/pkg/cli"
	"orrery-hq/natal/pkg/config"
	"orrery-hq/natal/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string
)

// logOutput receives log records; tests replace it.
var logOutput io.Writer = os.Stderr

var rootCmd = &cobra.Command{
	Use:   "natal",
	Short: "Natal - formula language for astrological chart data",
	Long: `Natal evaluates boolean formulas against natal chart data.

A formula compares planet, house and aspect attributes:

  Sun.Sign == Capricorn AND NOT Mars.Retrograde
  Moon.House IN [4, 8, 12]
  "Leo" IN planets.Sign

Formulas can be checked one at a time, validated for astrological
consistency, or evaluated in bulk from preset files with results recorded
in a journal.

Exit codes: 0 true/success, 1 false, 2 formula error, 3 other failure.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	return cli.ExitCode(err)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults apply when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override log format (text, json)")
}

// setup loads configuration and installs the logger before every command.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.Exit(cli.ExitFailure, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err)))
	}
	config.SetConfig(cfg)

	logger, err := logging.NewLogger(cfg.Telemetry.Logging, logging.Options{
		Writer: logOutput,
		Level:  logLevel,
		Format: logFormat,
	})
	if err != nil {
		return cli.Exit(cli.ExitFailure, cli.NewConfigError("telemetry.logging", err.Error()))
	}
	slog.SetDefault(logger)
	return nil
}
