package ast

import (
	"strconv"
	"strings"
)

func (n *BinaryOp) String() string {
	return string(n.Operator) + "(" + str(n.Left) + ", " + str(n.Right) + ")"
}

func (n *UnaryOp) String() string {
	return string(n.Operator) + "(" + str(n.Operand) + ")"
}

func (n *Comparison) String() string {
	return string(n.Operator) + "(" + str(n.Left) + ", " + str(n.Right) + ")"
}

func (n *PropertyAccess) String() string {
	return n.Object + "." + n.Property
}

func (n *AggregatorAccess) String() string {
	return string(n.Aggregator) + "." + n.Property
}

func (n *Identifier) String() string { return n.Name }

func (n *NumberLiteral) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (n *StringLiteral) String() string { return strconv.Quote(n.Value) }

func (n *BooleanLiteral) String() string {
	if n.Value {
		return "True"
	}
	return "False"
}

func (n *ListLiteral) String() string {
	parts := make([]string, len(n.Items))
	for i, item := range n.Items {
		parts[i] = str(item)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func str(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}

// Equal reports whether two trees have the same structure and values.
// Positions are ignored.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *BinaryOp:
		y, ok := b.(*BinaryOp)
		return ok && x.Operator == y.Operator && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *UnaryOp:
		y, ok := b.(*UnaryOp)
		return ok && x.Operator == y.Operator && Equal(x.Operand, y.Operand)
	case *Comparison:
		y, ok := b.(*Comparison)
		return ok && x.Operator == y.Operator && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *PropertyAccess:
		y, ok := b.(*PropertyAccess)
		return ok && x.Object == y.Object && x.Property == y.Property
	case *AggregatorAccess:
		y, ok := b.(*AggregatorAccess)
		return ok && x.Aggregator == y.Aggregator && x.Property == y.Property
	case *Identifier:
		y, ok := b.(*Identifier)
		return ok && x.Name == y.Name
	case *NumberLiteral:
		y, ok := b.(*NumberLiteral)
		return ok && x.Value == y.Value
	case *StringLiteral:
		y, ok := b.(*StringLiteral)
		return ok && x.Value == y.Value
	case *BooleanLiteral:
		y, ok := b.(*BooleanLiteral)
		return ok && x.Value == y.Value
	case *ListLiteral:
		y, ok := b.(*ListLiteral)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}
