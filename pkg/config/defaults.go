package config

import "time"

// Default values for configuration fields.
const (
	// Formula defaults
	DefaultFormulaMaxLength       = 4096
	DefaultFormulaMaxDepth        = 256
	DefaultFormulaAggregatePolicy = "skip"

	// Validator defaults
	DefaultValidatorEnabled = true
	DefaultValidatorMode    = "modern"

	// Preset defaults
	DefaultPresetsPath     = "./presets"
	DefaultPresetsDebounce = 100 * time.Millisecond

	// Batch defaults
	DefaultBatchWorkers = 4

	// Journal defaults
	DefaultJournalPath          = "data/journal.db"
	DefaultJournalRetentionDays = 30
	DefaultJournalPruneSchedule = "0 3 * * *"
	DefaultJournalBusyTimeout   = 5 * time.Second
	DefaultJournalWALMode       = true
	DefaultJournalMaxOpenConns  = 4

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "text"
	DefaultMetricsEnabled       = true
	DefaultMetricsNamespace     = "natal"
	DefaultMetricsListenAddress = "127.0.0.1:9464"
	DefaultPrometheusPath       = "/metrics"
	DefaultTracingEndpoint      = "localhost:4317"
	DefaultTracingServiceName   = "natal"
	DefaultTracingSamplingRate  = 1.0
)

// DefaultDurationBuckets are histogram buckets for evaluation duration in seconds.
var DefaultDurationBuckets = []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}

// NewDefault returns a configuration holding every default, including the
// boolean ones a YAML file cannot distinguish from an absent key.
func NewDefault() *Config {
	cfg := &Config{
		Validator: ValidatorConfig{Enabled: DefaultValidatorEnabled},
		Journal:   JournalConfig{WALMode: DefaultJournalWALMode},
		Telemetry: TelemetryConfig{Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled}},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Formula defaults
	if cfg.Formula.MaxLength == 0 {
		cfg.Formula.MaxLength = DefaultFormulaMaxLength
	}
	if cfg.Formula.MaxDepth == 0 {
		cfg.Formula.MaxDepth = DefaultFormulaMaxDepth
	}
	if cfg.Formula.AggregatePolicy == "" {
		cfg.Formula.AggregatePolicy = DefaultFormulaAggregatePolicy
	}

	// Validator defaults
	if cfg.Validator.Mode == "" {
		cfg.Validator.Mode = DefaultValidatorMode
	}

	// Preset defaults
	if cfg.Presets.Path == "" {
		cfg.Presets.Path = DefaultPresetsPath
	}
	if cfg.Presets.Debounce == 0 {
		cfg.Presets.Debounce = DefaultPresetsDebounce
	}

	// Batch defaults
	if cfg.Batch.Workers == 0 {
		cfg.Batch.Workers = DefaultBatchWorkers
	}

	// Journal defaults
	if cfg.Journal.Path == "" {
		cfg.Journal.Path = DefaultJournalPath
	}
	if cfg.Journal.RetentionDays == 0 {
		cfg.Journal.RetentionDays = DefaultJournalRetentionDays
	}
	if cfg.Journal.PruneSchedule == "" {
		cfg.Journal.PruneSchedule = DefaultJournalPruneSchedule
	}
	if cfg.Journal.BusyTimeout == 0 {
		cfg.Journal.BusyTimeout = DefaultJournalBusyTimeout
	}
	if cfg.Journal.MaxOpenConns == 0 {
		cfg.Journal.MaxOpenConns = DefaultJournalMaxOpenConns
	}

	applyTelemetryDefaults(&cfg.Telemetry)
}

func applyTelemetryDefaults(t *TelemetryConfig) {
	if t.Logging.Level == "" {
		t.Logging.Level = DefaultLoggingLevel
	}
	if t.Logging.Format == "" {
		t.Logging.Format = DefaultLoggingFormat
	}
	if t.Metrics.Namespace == "" {
		t.Metrics.Namespace = DefaultMetricsNamespace
	}
	if t.Metrics.ListenAddress == "" {
		t.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if t.Metrics.Path == "" {
		t.Metrics.Path = DefaultPrometheusPath
	}
	if len(t.Metrics.DurationBuckets) == 0 {
		t.Metrics.DurationBuckets = append([]float64(nil), DefaultDurationBuckets...)
	}
	if t.Tracing.Endpoint == "" {
		t.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if t.Tracing.ServiceName == "" {
		t.Tracing.ServiceName = DefaultTracingServiceName
	}
	if t.Tracing.SampleRatio == 0 {
		t.Tracing.SampleRatio = DefaultTracingSamplingRate
	}
}
