package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "journal.path").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateFormula(&cfg.Formula)...)
	errs = append(errs, validateValidator(&cfg.Validator)...)
	errs = append(errs, validatePresets(&cfg.Presets)...)
	errs = append(errs, validateBatch(&cfg.Batch)...)
	errs = append(errs, validateJournal(&cfg.Journal)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateFormula(cfg *FormulaConfig) []FieldError {
	var errs []FieldError
	if cfg.MaxLength < 0 {
		errs = append(errs, FieldError{"formula.max_length", "must not be negative"})
	}
	if cfg.MaxDepth < 1 {
		errs = append(errs, FieldError{"formula.max_depth", "must be at least 1"})
	}
	if !oneOf(cfg.AggregatePolicy, "skip", "strict") {
		errs = append(errs, FieldError{"formula.aggregate_policy",
			fmt.Sprintf("must be one of [skip strict], got %q", cfg.AggregatePolicy)})
	}
	return errs
}

func validateValidator(cfg *ValidatorConfig) []FieldError {
	if !oneOf(cfg.Mode, "modern", "traditional") {
		return []FieldError{{"validator.mode",
			fmt.Sprintf("must be one of [modern traditional], got %q", cfg.Mode)}}
	}
	return nil
}

func validatePresets(cfg *PresetsConfig) []FieldError {
	if cfg.Debounce < 0 {
		return []FieldError{{"presets.debounce", "must not be negative"}}
	}
	return nil
}

func validateBatch(cfg *BatchConfig) []FieldError {
	var errs []FieldError
	if cfg.Workers < 1 {
		errs = append(errs, FieldError{"batch.workers", "must be at least 1"})
	}
	if cfg.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Schedule); err != nil {
			errs = append(errs, FieldError{"batch.schedule", fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}
	return errs
}

func validateJournal(cfg *JournalConfig) []FieldError {
	var errs []FieldError
	if cfg.Enabled && cfg.Path == "" {
		errs = append(errs, FieldError{"journal.path", "field is required when the journal is enabled"})
	}
	if cfg.RetentionDays < 0 {
		errs = append(errs, FieldError{"journal.retention_days", "must not be negative"})
	}
	if cfg.MaxRecords < 0 {
		errs = append(errs, FieldError{"journal.max_records", "must not be negative"})
	}
	if cfg.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.PruneSchedule); err != nil {
			errs = append(errs, FieldError{"journal.prune_schedule", fmt.Sprintf("invalid cron expression: %v", err)})
		}
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{"journal.busy_timeout", "must not be negative"})
	}
	if cfg.MaxOpenConns < 1 {
		errs = append(errs, FieldError{"journal.max_open_conns", "must be at least 1"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	if !oneOf(cfg.Logging.Level, "debug", "info", "warn", "error") {
		errs = append(errs, FieldError{"telemetry.logging.level",
			fmt.Sprintf("must be one of [debug info warn error], got %q", cfg.Logging.Level)})
	}
	if !oneOf(cfg.Logging.Format, "json", "text") {
		errs = append(errs, FieldError{"telemetry.logging.format",
			fmt.Sprintf("must be one of [json text], got %q", cfg.Logging.Format)})
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{"telemetry.metrics.path", "must start with /"})
		}
		if _, _, err := net.SplitHostPort(cfg.Metrics.ListenAddress); err != nil {
			errs = append(errs, FieldError{"telemetry.metrics.listen_address", fmt.Sprintf("invalid address: %v", err)})
		}
		for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
			if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
				errs = append(errs, FieldError{"telemetry.metrics.duration_buckets", "must be strictly increasing"})
				break
			}
		}
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{"telemetry.tracing.endpoint", "field is required when tracing is enabled"})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{"telemetry.tracing.sample_ratio", "must be between 0.0 and 1.0"})
	}

	return errs
}

func oneOf(v string, options ...string) bool {
	for _, o := range options {
		if v == o {
			return true
		}
	}
	return false
}
