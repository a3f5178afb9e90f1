package validator

import "orrery-hq/natal/pkg/formula/ast"

// term is a comparison rewritten with the chart reference on the left.
type term struct {
	node     *ast.Comparison
	op       ast.Comparator
	body     string // empty for aggregators
	property string
	values   []ast.Node
}

// termOf normalizes comparisons of the forms
//
//	Body.Prop op literal
//	literal op Body.Prop     (== and != only)
//	Body.Prop IN [literals]
//	literal IN agg.Prop
func termOf(c *ast.Comparison) (term, bool) {
	t := term{node: c, op: c.Operator}

	if c.Operator == ast.ComparatorIn {
		if agg, ok := c.Right.(*ast.AggregatorAccess); ok {
			t.property = agg.Property
			t.values = []ast.Node{c.Left}
			return t, isLiteral(c.Left)
		}
		pa, ok := c.Left.(*ast.PropertyAccess)
		list, isList := c.Right.(*ast.ListLiteral)
		if !ok || !isList {
			return t, false
		}
		t.body, t.property = pa.Object, pa.Property
		for _, item := range list.Items {
			if isLiteral(item) {
				t.values = append(t.values, item)
			}
		}
		return t, true
	}

	left, right := c.Left, c.Right
	if _, ok := left.(*ast.PropertyAccess); !ok {
		if c.Operator.IsOrdering() {
			return t, false
		}
		left, right = right, left
	}
	pa, ok := left.(*ast.PropertyAccess)
	if !ok || !isLiteral(right) {
		return t, false
	}
	t.body, t.property = pa.Object, pa.Property
	t.values = []ast.Node{right}
	return t, true
}

func isLiteral(n ast.Node) bool {
	switch n.(type) {
	case *ast.Identifier, *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral:
		return true
	}
	return false
}

// name returns the text of an identifier or string literal.
func name(n ast.Node) (string, bool) {
	switch v := n.(type) {
	case *ast.Identifier:
		return v.Name, true
	case *ast.StringLiteral:
		return v.Value, true
	}
	return "", false
}

func number(n ast.Node) (float64, bool) {
	if v, ok := n.(*ast.NumberLiteral); ok {
		return v.Value, true
	}
	return 0, false
}

// comparisons calls fn for every comparison in the tree.
func comparisons(root ast.Node, fn func(*ast.Comparison)) {
	_ = ast.Walk(root, ast.VisitorFunc(func(n ast.Node) (bool, error) {
		if c, ok := n.(*ast.Comparison); ok {
			fn(c)
		}
		return true, nil
	}))
}
