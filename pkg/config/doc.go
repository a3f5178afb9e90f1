// Package config provides configuration management for natal.
//
// Configuration is read from a YAML file, layered over built-in defaults and
// overridden by environment variables.
//
// # Configuration Precedence
//
// Values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention NATAL_SECTION_FIELD:
//
//   - NATAL_FORMULA_MAX_DEPTH overrides formula.max_depth
//   - NATAL_JOURNAL_PATH overrides journal.path
//   - NATAL_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Shared Configuration
//
// The root command loads configuration once and publishes it with SetConfig;
// subcommands read it with GetConfig and copy the struct before adjusting it
// from flags.
//
//	cfg, err := config.LoadConfigWithEnvOverrides("natal.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	config.SetConfig(cfg)
//
// # Example Configuration
//
//	formula:
//	  max_depth: 64
//	  aggregate_policy: skip
//
//	validator:
//	  mode: traditional
//
//	presets:
//	  path: ./presets
//	  watch: true
//
//	journal:
//	  enabled: true
//	  path: data/journal.db
//	  retention_days: 14
//
//	telemetry:
//	  logging:
//	    level: debug
//	    format: json
package config
