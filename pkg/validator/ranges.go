package validator

import (
	"math"

	"orrery-hq/natal/pkg/astro"
	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
)

// RangeValidator checks retrograde references and numeric ranges of
// houses, degrees and longitudes.
type RangeValidator struct{}

// NewRangeValidator creates a range validator.
func NewRangeValidator() *RangeValidator {
	return &RangeValidator{}
}

// Check appends range diagnostics for root to list.
func (v *RangeValidator) Check(root ast.Node, list *formulaErrors.ErrorList) {
	_ = ast.Walk(root, ast.VisitorFunc(func(n ast.Node) (bool, error) {
		switch node := n.(type) {
		case *ast.PropertyAccess:
			if node.Property == "Retrograde" && !astro.CanRetrograde(node.Object) {
				domain(list, formulaErrors.SeverityError, node.Pos(),
					"Mercury.Retrograde",
					"%s is never retrograde", node.Object)
			}
		case *ast.Comparison:
			v.checkComparison(node, list)
		}
		return true, nil
	}))
}

func (v *RangeValidator) checkComparison(c *ast.Comparison, list *formulaErrors.ErrorList) {
	t, ok := termOf(c)
	if !ok {
		return
	}
	for _, val := range t.values {
		f, isNum := number(val)
		if !isNum {
			continue
		}
		switch t.property {
		case "House":
			if f < 1 || f > 12 || f != math.Trunc(f) {
				domain(list, formulaErrors.SeverityError, val.Pos(),
					"Mars.House IN [1, 4, 7, 10]",
					"house must be a whole number from 1 to 12, got %s", formatNumber(f))
			}
		case "Degree":
			if outOfRange(f, 30, t.op) {
				domain(list, formulaErrors.SeverityError, val.Pos(),
					"use Longitude for the absolute zodiac degree",
					"degree within a sign must be 0-29, got %s", formatNumber(f))
			}
		case "Longitude":
			if outOfRange(f, 360, t.op) {
				domain(list, formulaErrors.SeverityError, val.Pos(), "",
					"longitude must be 0-359, got %s", formatNumber(f))
			}
		}
	}
}

// outOfRange reports whether f lies outside [0, limit). Ordering comparisons
// may also name the limit itself.
func outOfRange(f, limit float64, op ast.Comparator) bool {
	if f < 0 {
		return true
	}
	if op.IsOrdering() {
		return f > limit
	}
	return f >= limit
}

func formatNumber(f float64) string {
	return (&ast.NumberLiteral{Value: f}).String()
}
