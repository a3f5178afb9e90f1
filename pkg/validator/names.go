package validator

import (
	"orrery-hq/natal/pkg/astro"
	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
)

// NameValidator checks body, sign and dignity names.
type NameValidator struct {
	extra []string
}

// NewNameValidator creates a name validator.
func NewNameValidator() *NameValidator {
	return &NameValidator{}
}

// Check appends name diagnostics for root to list.
func (v *NameValidator) Check(root ast.Node, list *formulaErrors.ErrorList) {
	seen := map[string]bool{}
	_ = ast.Walk(root, ast.VisitorFunc(func(n ast.Node) (bool, error) {
		switch node := n.(type) {
		case *ast.PropertyAccess:
			if !v.known(node.Object) && !seen[node.Object] {
				seen[node.Object] = true
				domain(list, formulaErrors.SeverityWarning, node.Pos(),
					formulaErrors.Suggest(node.Object, v.bodies()),
					"unknown body '%s'", node.Object)
			}
		case *ast.Comparison:
			v.checkComparison(node, list)
		}
		return true, nil
	}))
}

func (v *NameValidator) checkComparison(c *ast.Comparison, list *formulaErrors.ErrorList) {
	t, ok := termOf(c)
	if !ok {
		return
	}
	for _, val := range t.values {
		text, isName := name(val)
		if !isName {
			continue
		}
		switch t.property {
		case "Sign":
			if !astro.IsSign(text) {
				domain(list, formulaErrors.SeverityError, val.Pos(),
					formulaErrors.Suggest(text, astro.Signs[:]),
					"unknown sign '%s'", text)
			}
		case "Dignity":
			if _, ok := astro.ParseDignity(text); !ok {
				domain(list, formulaErrors.SeverityError, val.Pos(),
					formulaErrors.Suggest(text, dignityNames()),
					"unknown dignity '%s'", text)
			}
		case "Ruler":
			if astro.IsPlanet(text) && t.body != "" {
				domain(list, formulaErrors.SeverityError, c.Pos(),
					t.body+".Dignity == Rulership",
					"%s.Ruler == %s compares a planet with a planet; planets rule signs", t.body, text)
			}
		}
	}
}

func (v *NameValidator) known(body string) bool {
	for _, b := range v.bodies() {
		if b == body {
			return true
		}
	}
	return false
}

func (v *NameValidator) bodies() []string {
	return append(astro.KnownBodies(), v.extra...)
}

func dignityNames() []string {
	out := make([]string, 0, len(astro.Dignities)+1)
	for _, d := range astro.Dignities {
		out = append(out, string(d))
	}
	return append(out, "Peregrine")
}
