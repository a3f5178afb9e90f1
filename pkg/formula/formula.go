package formula

import (
	"context"
	"fmt"
	"log/slog"

	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
	"orrery-hq/natal/pkg/formula/evaluator"
	"orrery-hq/natal/pkg/formula/lexer"
	"orrery-hq/natal/pkg/formula/parser"
)

// Formula is a compiled formula. It is immutable and may be evaluated
// repeatedly and from several goroutines.
type Formula struct {
	// Source is the formula text as written.
	Source string

	// Root is the syntax tree.
	Root ast.Node

	eval *evaluator.Evaluator
}

type options struct {
	maxDepth  int
	maxLength int
	logger    *slog.Logger
	evalCfg   *evaluator.Config
	evaluator *evaluator.Evaluator
}

// Option configures Compile.
type Option func(*options)

// WithMaxDepth bounds the nesting depth accepted by the parser and evaluator.
func WithMaxDepth(depth int) Option {
	return func(o *options) { o.maxDepth = depth }
}

// WithMaxLength bounds the formula length in bytes. Zero disables the check.
func WithMaxLength(length int) Option {
	return func(o *options) { o.maxLength = length }
}

// WithLogger sets the logger used during evaluation.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithEvaluatorConfig sets the evaluator configuration.
func WithEvaluatorConfig(cfg *evaluator.Config) Option {
	return func(o *options) { o.evalCfg = cfg }
}

// WithEvaluator shares an existing evaluator. It overrides WithLogger and
// WithEvaluatorConfig.
func WithEvaluator(e *evaluator.Evaluator) Option {
	return func(o *options) { o.evaluator = e }
}

// Compile parses text and prepares it for evaluation. Formula errors carry
// source context with a caret under the offending position.
func Compile(text string, opts ...Option) (*Formula, error) {
	o := &options{
		maxDepth:  parser.DefaultMaxDepth,
		maxLength: parser.DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(o)
	}

	p := parser.NewParser().WithMaxDepth(o.maxDepth).WithMaxLength(o.maxLength)
	root, err := p.ParseString(text)
	if err != nil {
		return nil, formulaErrors.WithSource(err, text)
	}

	e := o.evaluator
	if e == nil {
		cfg := o.evalCfg
		if cfg == nil {
			cfg = evaluator.DefaultConfig().WithMaxDepth(o.maxDepth)
		}
		e, err = evaluator.New(o.logger, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create evaluator: %w", err)
		}
	}

	return &Formula{Source: text, Root: root, eval: e}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(text string, opts ...Option) *Formula {
	f, err := Compile(text, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// Evaluate returns the value of the formula for chart.
func (f *Formula) Evaluate(ctx context.Context, chart evaluator.Chart) (evaluator.Value, error) {
	v, err := f.eval.Evaluate(ctx, f.Root, chart)
	if err != nil {
		return evaluator.Value{}, formulaErrors.WithSource(err, f.Source)
	}
	return v, nil
}

// Check evaluates the formula and requires a boolean result.
func (f *Formula) Check(ctx context.Context, chart evaluator.Chart) (bool, error) {
	ok, err := f.eval.Check(ctx, f.Root, chart)
	if err != nil {
		return false, formulaErrors.WithSource(err, f.Source)
	}
	return ok, nil
}

// String returns the canonical form of the syntax tree.
func (f *Formula) String() string {
	return f.Root.String()
}

// Tokenize converts formula text into tokens ending with END.
func Tokenize(text string) ([]lexer.Token, error) {
	tokens, err := lexer.Tokenize(text)
	if err != nil {
		return nil, formulaErrors.WithSource(err, text)
	}
	return tokens, nil
}

// Parse tokenizes and parses text with default limits.
func Parse(text string) (ast.Node, error) {
	root, err := parser.NewParser().ParseString(text)
	if err != nil {
		return nil, formulaErrors.WithSource(err, text)
	}
	return root, nil
}

// Evaluate parses text and evaluates it against chart.
func Evaluate(text string, chart evaluator.Chart) (evaluator.Value, error) {
	f, err := Compile(text)
	if err != nil {
		return evaluator.Value{}, err
	}
	return f.Evaluate(context.Background(), chart)
}

// Check parses text and reports whether it holds for chart.
func Check(text string, chart evaluator.Chart) (bool, error) {
	f, err := Compile(text)
	if err != nil {
		return false, err
	}
	return f.Check(context.Background(), chart)
}
