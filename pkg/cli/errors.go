package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	// ExitOK means success, or a formula that evaluated to true.
	ExitOK = 0
	// ExitFalse means a formula evaluated to false, or a batch had no matches.
	ExitFalse = 1
	// ExitFormulaError means a formula failed to lex, parse, validate or evaluate.
	ExitFormulaError = 2
	// ExitFailure means a usage, configuration or I/O failure.
	ExitFailure = 3
)

// ExitError carries the process exit code for an error. A nil Err exits
// silently with Code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exit returns an ExitError with the given code.
func Exit(code int, err error) *ExitError {
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps err to a process exit code. Errors without an ExitError in
// their chain are failures.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}
