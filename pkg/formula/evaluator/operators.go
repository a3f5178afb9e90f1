package evaluator

import (
	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
)

// compare applies a comparator to two evaluated operands.
func compare(n *ast.Comparison, left, right Value) (bool, error) {
	switch n.Operator {
	case ast.ComparatorEqual:
		return left.Equal(right), nil
	case ast.ComparatorNotEqual:
		return !left.Equal(right), nil
	case ast.ComparatorLessThan, ast.ComparatorGreaterThan, ast.ComparatorLessEqual, ast.ComparatorGreaterEqual:
		return compareOrdered(n, left, right)
	case ast.ComparatorIn:
		return evaluateIn(n, left, right)
	default:
		return false, formulaErrors.NewEvalError(n, "unknown comparator %q", n.Operator)
	}
}

func compareOrdered(n *ast.Comparison, left, right Value) (bool, error) {
	l, lok := left.AsNumber()
	r, rok := right.AsNumber()
	if !lok || !rok {
		err := formulaErrors.NewEvalError(n, "comparison requires numeric operands, got %s %s %s",
			left.Kind(), n.Operator, right.Kind())
		err.Suggestion = formulaErrors.SuggestOperator(nonNumericKind(left, right).String())
		return false, err
	}

	switch n.Operator {
	case ast.ComparatorLessThan:
		return l < r, nil
	case ast.ComparatorGreaterThan:
		return l > r, nil
	case ast.ComparatorLessEqual:
		return l <= r, nil
	default:
		return l >= r, nil
	}
}

func nonNumericKind(left, right Value) Kind {
	if left.Kind() != KindNumber {
		return left.Kind()
	}
	return right.Kind()
}

// evaluateIn reports whether left equals any element of the right sequence.
func evaluateIn(n *ast.Comparison, left, right Value) (bool, error) {
	if right.Kind() != KindSequence {
		err := formulaErrors.NewEvalError(n, "IN requires a sequence on the right, got %s", right.Kind())
		err.Suggestion = "Use a list such as [1, 4, 7, 10] or an aggregator such as planets.Sign"
		return false, err
	}
	return right.Contains(left), nil
}
