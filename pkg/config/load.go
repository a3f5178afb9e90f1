package config

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment override, as in NATAL_JOURNAL_PATH.
const EnvPrefix = "NATAL_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Values start from NewDefault, so keys missing from the file keep their
// defaults. The result is validated. Environment variables are not applied;
// use LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := NewDefault()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention NATAL_SECTION_FIELD (e.g., NATAL_JOURNAL_PATH) and always take
// precedence over the file.
//
// An empty path skips the file and starts from the defaults.
//
// The loading sequence is:
// 1. Apply default values
// 2. Load YAML from file
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		cfg = NewDefault()
	} else {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// envOverrides maps each environment variable suffix to a setter. A setter
// returns an error if the value cannot be parsed.
func envOverrides(cfg *Config) map[string]func(string) error {
	return map[string]func(string) error{
		"FORMULA_MAX_LENGTH":       intSetter(&cfg.Formula.MaxLength),
		"FORMULA_MAX_DEPTH":        intSetter(&cfg.Formula.MaxDepth),
		"FORMULA_AGGREGATE_POLICY": stringSetter(&cfg.Formula.AggregatePolicy),

		"VALIDATOR_ENABLED":         boolSetter(&cfg.Validator.Enabled),
		"VALIDATOR_MODE":            stringSetter(&cfg.Validator.Mode),
		"VALIDATOR_DIGNITIES_FILE":  stringSetter(&cfg.Validator.DignitiesFile),
		"VALIDATOR_FAIL_ON_WARNING": boolSetter(&cfg.Validator.FailOnWarning),

		"PRESETS_PATH":     stringSetter(&cfg.Presets.Path),
		"PRESETS_WATCH":    boolSetter(&cfg.Presets.Watch),
		"PRESETS_DEBOUNCE": durationSetter(&cfg.Presets.Debounce),

		"BATCH_WORKERS":  intSetter(&cfg.Batch.Workers),
		"BATCH_SCHEDULE": stringSetter(&cfg.Batch.Schedule),
		"BATCH_CHARTS":   listSetter(&cfg.Batch.Charts),

		"JOURNAL_ENABLED":        boolSetter(&cfg.Journal.Enabled),
		"JOURNAL_PATH":           stringSetter(&cfg.Journal.Path),
		"JOURNAL_RETENTION_DAYS": intSetter(&cfg.Journal.RetentionDays),
		"JOURNAL_MAX_RECORDS":    int64Setter(&cfg.Journal.MaxRecords),
		"JOURNAL_PRUNE_SCHEDULE": stringSetter(&cfg.Journal.PruneSchedule),
		"JOURNAL_BUSY_TIMEOUT":   durationSetter(&cfg.Journal.BusyTimeout),

		"TELEMETRY_LOGGING_LEVEL":          stringSetter(&cfg.Telemetry.Logging.Level),
		"TELEMETRY_LOGGING_FORMAT":         stringSetter(&cfg.Telemetry.Logging.Format),
		"TELEMETRY_LOGGING_ADD_SOURCE":     boolSetter(&cfg.Telemetry.Logging.AddSource),
		"TELEMETRY_METRICS_ENABLED":        boolSetter(&cfg.Telemetry.Metrics.Enabled),
		"TELEMETRY_METRICS_NAMESPACE":      stringSetter(&cfg.Telemetry.Metrics.Namespace),
		"TELEMETRY_METRICS_LISTEN_ADDRESS": stringSetter(&cfg.Telemetry.Metrics.ListenAddress),
		"TELEMETRY_METRICS_PATH":           stringSetter(&cfg.Telemetry.Metrics.Path),
		"TELEMETRY_TRACING_ENABLED":        boolSetter(&cfg.Telemetry.Tracing.Enabled),
		"TELEMETRY_TRACING_ENDPOINT":       stringSetter(&cfg.Telemetry.Tracing.Endpoint),
		"TELEMETRY_TRACING_SERVICE_NAME":   stringSetter(&cfg.Telemetry.Tracing.ServiceName),
		"TELEMETRY_TRACING_SAMPLE_RATIO":   floatSetter(&cfg.Telemetry.Tracing.SampleRatio),
		"TELEMETRY_TRACING_INSECURE":       boolSetter(&cfg.Telemetry.Tracing.Insecure),
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Unlike unset variables, a set variable with an unparsable value is an error.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	for suffix, set := range envOverrides(cfg) {
		val, ok := lookup(EnvPrefix + suffix)
		if !ok || val == "" {
			continue
		}
		if err := set(val); err != nil {
			return fmt.Errorf("invalid value for %s%s: %w", EnvPrefix, suffix, err)
		}
	}
	return nil
}

func stringSetter(dst *string) func(string) error {
	return func(v string) error { *dst = v; return nil }
}

func listSetter(dst *[]string) func(string) error {
	return func(v string) error {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*dst = out
		return nil
	}
}

func intSetter(dst *int) func(string) error {
	return func(v string) error {
		i, err := strconv.Atoi(v)
		if err == nil {
			*dst = i
		}
		return err
	}
}

func int64Setter(dst *int64) func(string) error {
	return func(v string) error {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			*dst = i
		}
		return err
	}
}

func floatSetter(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			*dst = f
		}
		return err
	}
}

func boolSetter(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err == nil {
			*dst = b
		}
		return err
	}
}

func durationSetter(dst *time.Duration) func(string) error {
	return func(v string) error {
		d, err := time.ParseDuration(v)
		if err == nil {
			*dst = d
		}
		return err
	}
}
