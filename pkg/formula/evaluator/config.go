package evaluator

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when evaluator configuration is invalid.
var ErrInvalidConfig = errors.New("invalid evaluator configuration")

// AggregatePolicy decides what happens when an aggregator meets a chart
// entry that lacks the requested property.
type AggregatePolicy string

const (
	// AggregateSkipMissing leaves such entries out of the projected sequence.
	// This is the default.
	AggregateSkipMissing AggregatePolicy = "skip"

	// AggregateRequireAll fails the evaluation with an EvalError naming the
	// first entry without the property.
	AggregateRequireAll AggregatePolicy = "strict"
)

// DefaultMaxDepth bounds evaluator recursion for trees not built by the parser.
const DefaultMaxDepth = 256

// Config contains evaluator settings.
type Config struct {
	// AggregatePolicy controls aggregator projections over incomplete entries.
	// Default: AggregateSkipMissing.
	AggregatePolicy AggregatePolicy

	// MaxDepth is the maximum tree depth the evaluator will descend.
	// Default: 256.
	MaxDepth int
}

// DefaultConfig returns the default evaluator configuration.
func DefaultConfig() *Config {
	return &Config{
		AggregatePolicy: AggregateSkipMissing,
		MaxDepth:        DefaultMaxDepth,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.AggregatePolicy {
	case AggregateSkipMissing, AggregateRequireAll:
	default:
		return fmt.Errorf("%w: unknown aggregate policy %q", ErrInvalidConfig, c.AggregatePolicy)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("%w: max depth must be positive", ErrInvalidConfig)
	}
	return nil
}

// WithAggregatePolicy sets the aggregate policy.
func (c *Config) WithAggregatePolicy(p AggregatePolicy) *Config {
	c.AggregatePolicy = p
	return c
}

// WithMaxDepth sets the maximum evaluation depth.
func (c *Config) WithMaxDepth(depth int) *Config {
	c.MaxDepth = depth
	return c
}
