package config

import "sync/atomic"

// current is the configuration shared by the commands of one process.
var current atomic.Pointer[Config]

// GetConfig returns the shared configuration, or nil before SetConfig.
func GetConfig() *Config {
	return current.Load()
}

// SetConfig installs cfg as the shared configuration. Callers that need to
// adjust values for a single run copy the struct first.
func SetConfig(cfg *Config) {
	current.Store(cfg)
}
