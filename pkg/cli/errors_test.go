package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain error", base, ExitFailure},
		{"false", Exit(ExitFalse, nil), ExitFalse},
		{"formula error", Exit(ExitFormulaError, base), ExitFormulaError},
		{"wrapped", fmt.Errorf("check: %w", Exit(ExitFormulaError, base)), ExitFormulaError},
		{"command error", NewCommandError("check", Exit(ExitFalse, nil)), ExitFalse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitError(t *testing.T) {
	base := errors.New("entity 'Mars' not found")
	err := Exit(ExitFormulaError, base)

	if err.Error() != base.Error() {
		t.Errorf("Error() = %q, want %q", err.Error(), base.Error())
	}
	if !errors.Is(err, base) {
		t.Error("ExitError does not unwrap to its cause")
	}
	if got := Exit(ExitFalse, nil).Error(); got != "exit status 1" {
		t.Errorf("Error() without cause = %q", got)
	}
}

func TestConfigError(t *testing.T) {
	if got := NewConfigError("journal.path", "must not be empty").Error(); got != "config error in journal.path: must not be empty" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewConfigError("", "failed to load").Error(); got != "config error: failed to load" {
		t.Errorf("Error() = %q", got)
	}
}

func TestCommandError(t *testing.T) {
	base := errors.New("no charts")
	err := NewCommandError("batch", base)
	if err.Error() != "command batch failed: no charts" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, base) {
		t.Error("CommandError does not unwrap")
	}
}
