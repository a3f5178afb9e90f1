package config

import "time"

// Config is the root configuration structure for natal.
type Config struct {
	// Formula contains limits applied when compiling and evaluating formulas.
	Formula FormulaConfig `yaml:"formula"`

	// Validator contains settings for the astrological validator.
	Validator ValidatorConfig `yaml:"validator"`

	// Presets contains the location of named formula presets and watch settings.
	Presets PresetsConfig `yaml:"presets"`

	// Batch contains settings for evaluating many formulas against many charts.
	Batch BatchConfig `yaml:"batch"`

	// Journal contains settings for the evaluation journal.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains logging, metrics and tracing configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// FormulaConfig contains formula compilation and evaluation limits.
type FormulaConfig struct {
	// MaxLength is the maximum formula length in bytes. Zero disables the check.
	// Default: 4096
	MaxLength int `yaml:"max_length"`

	// MaxDepth is the maximum nesting depth.
	// Default: 256
	MaxDepth int `yaml:"max_depth"`

	// AggregatePolicy controls aggregator entries missing the property.
	// Options: "skip", "strict"
	// Default: "skip"
	AggregatePolicy string `yaml:"aggregate_policy"`
}

// ValidatorConfig contains astrological validation settings.
type ValidatorConfig struct {
	// Enabled runs the validator before evaluation in check and batch.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Mode selects the rulership table.
	// Options: "modern", "traditional"
	// Default: "modern"
	Mode string `yaml:"mode"`

	// DignitiesFile replaces the built-in dignity table.
	DignitiesFile string `yaml:"dignities_file"`

	// FailOnWarning treats warnings as errors.
	// Default: false
	FailOnWarning bool `yaml:"fail_on_warning"`
}

// PresetsConfig contains preset loading settings.
type PresetsConfig struct {
	// Path is a preset file or a directory of preset files.
	// Default: "./presets"
	Path string `yaml:"path"`

	// Watch reloads presets when files change.
	// Default: false
	Watch bool `yaml:"watch"`

	// Debounce is the quiet period before a reload.
	// Default: 100ms
	Debounce time.Duration `yaml:"debounce"`
}

// BatchConfig contains batch evaluation settings.
type BatchConfig struct {
	// Workers is the number of concurrent evaluations.
	// Default: 4
	Workers int `yaml:"workers"`

	// Schedule is a cron expression for periodic re-evaluation in watch mode.
	// Empty disables scheduled runs.
	Schedule string `yaml:"schedule"`

	// Charts lists chart files evaluated in watch mode.
	Charts []string `yaml:"charts"`
}

// JournalConfig contains evaluation journal settings.
type JournalConfig struct {
	// Enabled records batch results.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// RetentionDays is how long records are kept. Zero keeps them forever.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// MaxRecords caps the number of records kept. Zero means no cap.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// PruneSchedule is a cron expression for pruning.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// MaxOpenConns is the connection pool size.
	// Default: 4
	MaxOpenConns int `yaml:"max_open_conns"`
}

// TelemetryConfig contains configuration for observability.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "text"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the metric name prefix.
	// Default: "natal"
	Namespace string `yaml:"namespace"`

	// ListenAddress serves the metrics endpoint in watch mode.
	// Default: "127.0.0.1:9464"
	ListenAddress string `yaml:"listen_address"`

	// Path is the HTTP path for the Prometheus endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// DurationBuckets defines histogram buckets for evaluation duration (seconds).
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName is the service name in traces.
	// Default: "natal"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of traces to sample (0.0 to 1.0).
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS to the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`
}
