package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for batch run IDs.
	RunIDKey contextKey = "run_id"

	// FormulaKey is the context key for formula or preset names.
	FormulaKey contextKey = "formula"

	// ChartKey is the context key for chart names.
	ChartKey contextKey = "chart"
)

var contextKeys = []contextKey{RunIDKey, FormulaKey, ChartKey}

// WithRunID adds a batch run ID to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
func GetRunID(ctx context.Context) string {
	return getString(ctx, RunIDKey)
}

// WithFormula adds a formula or preset name to the context.
func WithFormula(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, FormulaKey, name)
}

// GetFormula retrieves the formula name from the context.
func GetFormula(ctx context.Context) string {
	return getString(ctx, FormulaKey)
}

// WithChart adds a chart name to the context.
func WithChart(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ChartKey, name)
}

// GetChart retrieves the chart name from the context.
func GetChart(ctx context.Context) string {
	return getString(ctx, ChartKey)
}

func getString(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// contextAttrs extracts the known fields present in ctx.
func contextAttrs(ctx context.Context) []slog.Attr {
	var attrs []slog.Attr
	for _, key := range contextKeys {
		if v := getString(ctx, key); v != "" {
			attrs = append(attrs, slog.String(string(key), v))
		}
	}
	return attrs
}
