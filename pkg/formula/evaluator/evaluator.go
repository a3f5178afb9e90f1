package evaluator

import (
	"context"
	"log/slog"
	"sort"

	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
)

// Chart is the read-only chart data a formula is evaluated against.
// Implementations must not be mutated while an evaluation is running.
type Chart interface {
	// Entity returns the attributes of a named entity. The planets form the
	// namespace; implementations may also expose angles and other points.
	Entity(name string) (map[string]any, bool)

	// Members returns the entries of a category ("planets", "houses",
	// "aspects") in category order.
	Members(category string) ([]map[string]any, bool)

	// EntityNames lists valid entity names, used for suggestions.
	EntityNames() []string
}

// Evaluator walks syntax trees against chart data. It holds no per-call
// state and is safe for concurrent use.
type Evaluator struct {
	logger *slog.Logger
	config *Config
}

// New creates an evaluator. A nil logger uses slog.Default and a nil config
// uses DefaultConfig.
func New(logger *slog.Logger, config *Config) (*Evaluator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	cp := *config
	return &Evaluator{logger: logger, config: &cp}, nil
}

var defaultEvaluator = &Evaluator{logger: slog.Default(), config: DefaultConfig()}

// Evaluate evaluates node against chart with the default configuration.
func Evaluate(node ast.Node, chart Chart) (Value, error) {
	return defaultEvaluator.Evaluate(context.Background(), node, chart)
}

// Evaluate returns the typed value of node. Failures are *errors.EvalError
// values identifying the offending node, or the context error if ctx is done.
func (e *Evaluator) Evaluate(ctx context.Context, node ast.Node, chart Chart) (Value, error) {
	if node == nil {
		return Value{}, formulaErrors.NewEvalError(nil, "nothing to evaluate")
	}
	if chart == nil {
		return Value{}, formulaErrors.NewEvalError(node, "no chart data supplied")
	}
	return e.eval(ctx, node, chart, 1)
}

// Check evaluates node and requires a boolean result.
func (e *Evaluator) Check(ctx context.Context, node ast.Node, chart Chart) (bool, error) {
	v, err := e.Evaluate(ctx, node, chart)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, formulaErrors.NewEvalError(node,
			"formula evaluated to %s %s, expected a boolean", v.Kind(), v)
	}
	return b, nil
}

func (e *Evaluator) eval(ctx context.Context, node ast.Node, chart Chart, depth int) (Value, error) {
	if depth > e.config.MaxDepth {
		return Value{}, formulaErrors.NewEvalError(node,
			"formula nesting exceeds maximum depth %d", e.config.MaxDepth)
	}

	switch n := node.(type) {
	case *ast.NumberLiteral:
		return Number(n.Value), nil
	case *ast.StringLiteral:
		return Text(n.Value), nil
	case *ast.BooleanLiteral:
		return Bool(n.Value), nil
	case *ast.Identifier:
		return Text(n.Name), nil
	case *ast.ListLiteral:
		return e.evalList(ctx, n, chart, depth)
	case *ast.PropertyAccess:
		return e.evalProperty(n, chart)
	case *ast.AggregatorAccess:
		return e.evalAggregator(n, chart)
	case *ast.Comparison:
		return e.evalComparison(ctx, n, chart, depth)
	case *ast.UnaryOp:
		return e.evalUnary(ctx, n, chart, depth)
	case *ast.BinaryOp:
		return e.evalBinary(ctx, n, chart, depth)
	case nil:
		return Value{}, formulaErrors.NewEvalError(nil, "missing operand")
	default:
		return Value{}, formulaErrors.NewEvalError(node, "unsupported node type %T", node)
	}
}

func (e *Evaluator) evalList(ctx context.Context, n *ast.ListLiteral, chart Chart, depth int) (Value, error) {
	items := make([]Value, 0, len(n.Items))
	for _, item := range n.Items {
		v, err := e.eval(ctx, item, chart, depth+1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	return Value{kind: KindSequence, items: items}, nil
}

func (e *Evaluator) evalProperty(n *ast.PropertyAccess, chart Chart) (Value, error) {
	attrs, ok := chart.Entity(n.Object)
	if !ok {
		return Value{}, formulaErrors.NewMissingKeyError(n, "entity", n.Object, chart.EntityNames())
	}

	raw, ok := attrs[n.Property]
	if !ok {
		err := formulaErrors.NewEvalError(n, "property '%s' not found on '%s'", n.Property, n.Object)
		err.Key = n.Property
		err.Suggestion = formulaErrors.Suggest(n.Property, sortedKeys(attrs))
		return Value{}, err
	}

	v, err := FromAttribute(raw)
	if err != nil {
		return Value{}, formulaErrors.NewEvalError(n, "property '%s' of '%s': %v", n.Property, n.Object, err)
	}
	return v, nil
}

func (e *Evaluator) evalAggregator(n *ast.AggregatorAccess, chart Chart) (Value, error) {
	members, ok := chart.Members(string(n.Aggregator))
	if !ok {
		return Value{}, formulaErrors.NewEvalError(n, "chart has no %s data", n.Aggregator)
	}

	items := make([]Value, 0, len(members))
	for i, attrs := range members {
		raw, ok := attrs[n.Property]
		if !ok {
			if e.config.AggregatePolicy == AggregateRequireAll {
				err := formulaErrors.NewEvalError(n,
					"property '%s' missing on %s entry %d", n.Property, n.Aggregator, i+1)
				err.Key = n.Property
				return Value{}, err
			}
			continue
		}
		v, err := FromAttribute(raw)
		if err != nil {
			return Value{}, formulaErrors.NewEvalError(n, "%s entry %d property '%s': %v", n.Aggregator, i+1, n.Property, err)
		}
		items = append(items, v)
	}
	return Value{kind: KindSequence, items: items}, nil
}

func (e *Evaluator) evalComparison(ctx context.Context, n *ast.Comparison, chart Chart, depth int) (Value, error) {
	left, err := e.eval(ctx, n.Left, chart, depth+1)
	if err != nil {
		return Value{}, err
	}
	right, err := e.eval(ctx, n.Right, chart, depth+1)
	if err != nil {
		return Value{}, err
	}

	result, err := compare(n, left, right)
	if err != nil {
		return Value{}, err
	}

	if e.logger.Enabled(ctx, slog.LevelDebug) {
		e.logger.DebugContext(ctx, "comparison evaluated",
			"operator", n.Operator,
			"left", left.String(),
			"right", right.String(),
			"result", result,
			"position", n.Pos().String(),
		)
	}
	return Bool(result), nil
}

func (e *Evaluator) evalUnary(ctx context.Context, n *ast.UnaryOp, chart Chart, depth int) (Value, error) {
	operand, err := e.eval(ctx, n.Operand, chart, depth+1)
	if err != nil {
		return Value{}, err
	}
	b, ok := operand.AsBool()
	if !ok {
		return Value{}, formulaErrors.NewEvalError(n, "%s requires a boolean operand, got %s", n.Operator, operand.Kind())
	}
	return Bool(!b), nil
}

func (e *Evaluator) evalBinary(ctx context.Context, n *ast.BinaryOp, chart Chart, depth int) (Value, error) {
	select {
	case <-ctx.Done():
		return Value{}, ctx.Err()
	default:
	}

	left, err := e.operand(ctx, n, n.Left, chart, depth)
	if err != nil {
		return Value{}, err
	}

	// Short-circuit
	if n.Operator == ast.OperatorAnd && !left {
		return Bool(false), nil
	}
	if n.Operator == ast.OperatorOr && left {
		return Bool(true), nil
	}

	right, err := e.operand(ctx, n, n.Right, chart, depth)
	if err != nil {
		return Value{}, err
	}
	return Bool(right), nil
}

// operand evaluates one side of a logical operator and requires a boolean.
func (e *Evaluator) operand(ctx context.Context, parent *ast.BinaryOp, node ast.Node, chart Chart, depth int) (bool, error) {
	v, err := e.eval(ctx, node, chart, depth+1)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, formulaErrors.NewEvalError(node, "%s requires boolean operands, got %s %s", parent.Operator, v.Kind(), v)
	}
	return b, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
