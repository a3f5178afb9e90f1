package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"orrery-hq/natal/pkg/cli"
)

const testChart = `name: sample
planets:
  Sun: {Sign: Capricorn, House: 10, Dignity: Neutral, Retrograde: false, Degree: 24.5}
  Moon: {Sign: Cancer, House: 4, Dignity: Domicile, Retrograde: false}
  Mars: {Sign: Aries, House: 1, Dignity: Domicile, Retrograde: true}
houses:
  1: {Sign: Aries}
  10: {Sign: Capricorn}
aspects:
  - {Planet1: Sun, Planet2: Moon, Type: Opposition, Orb: 1.2}
`

const otherChart = `name: other
planets:
  Sun: {Sign: Leo, House: 5, Retrograde: false}
  Moon: {Sign: Pisces, House: 12, Retrograde: false}
  Mars: {Sign: Virgo, House: 6, Retrograde: false}
`

const testPresets = `presets:
  - name: sun-cap
    formula: Sun.Sign == Capricorn
    tags: [sun]
  - name: mars-rx
    formula: Mars.Retrograde
    tags: [mars]
`

// execute runs the root command with args and returns stdout, stderr and
// the exit code Execute would return.
func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	resetFlags(rootCmd)
	logOutput = io.Discard

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), cli.ExitCode(err)
}

// resetFlags restores every flag to its default between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeConfig writes a config that keeps the journal and metrics inside dir.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	return writeFile(t, filepath.Join(dir, "natal.yaml"), `
journal:
  enabled: true
  path: `+filepath.Join(dir, "journal.db")+`
telemetry:
  logging:
    level: error
  metrics:
    enabled: false
`)
}
