package validator

import (
	"fmt"
	"strings"

	"orrery-hq/natal/pkg/astro"
	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
)

// DignityValidator checks the sign and dignity assertions made together in
// one AND chain: a planet cannot sit in two signs or hold two dignities at
// once, and a stated dignity must match the stated sign.
type DignityValidator struct {
	table *astro.Table
}

// NewDignityValidator creates a dignity validator for table.
func NewDignityValidator(table *astro.Table) *DignityValidator {
	return &DignityValidator{table: table}
}

type fact struct {
	value string
	pos   ast.Position
}

// group holds the positive equality assertions of one conjunction.
type group struct {
	signs     map[string][]fact
	dignities map[string][]fact
	order     []string
}

func newGroup() *group {
	return &group{signs: map[string][]fact{}, dignities: map[string][]fact{}}
}

func (g *group) add(kind map[string][]fact, body string, f fact) {
	if _, ok := g.signs[body]; !ok {
		if _, ok := g.dignities[body]; !ok {
			g.order = append(g.order, body)
		}
	}
	kind[body] = append(kind[body], f)
}

// Check appends dignity diagnostics for root to list.
func (v *DignityValidator) Check(root ast.Node, list *formulaErrors.ErrorList) {
	if v.table == nil {
		return
	}
	v.visit(root, list)
}

func (v *DignityValidator) visit(n ast.Node, list *formulaErrors.ErrorList) {
	switch node := n.(type) {
	case *ast.BinaryOp:
		if node.Operator == ast.OperatorAnd {
			var conj []ast.Node
			flattenAnd(node, &conj)
			v.checkGroup(conj, list)
			for _, c := range conj {
				if _, ok := c.(*ast.Comparison); !ok {
					v.visit(c, list)
				}
			}
			return
		}
		v.visit(node.Left, list)
		v.visit(node.Right, list)
	case *ast.UnaryOp:
		v.visit(node.Operand, list)
	case *ast.Comparison:
		v.checkGroup([]ast.Node{node}, list)
	}
}

func flattenAnd(n ast.Node, out *[]ast.Node) {
	if b, ok := n.(*ast.BinaryOp); ok && b.Operator == ast.OperatorAnd {
		flattenAnd(b.Left, out)
		flattenAnd(b.Right, out)
		return
	}
	*out = append(*out, n)
}

func (v *DignityValidator) checkGroup(conj []ast.Node, list *formulaErrors.ErrorList) {
	g := newGroup()
	for _, n := range conj {
		c, ok := n.(*ast.Comparison)
		if !ok || c.Operator != ast.ComparatorEqual {
			continue
		}
		t, ok := termOf(c)
		if !ok || t.body == "" || len(t.values) != 1 {
			continue
		}
		text, ok := name(t.values[0])
		if !ok {
			continue
		}
		switch t.property {
		case "Sign":
			if astro.IsSign(text) {
				g.add(g.signs, t.body, fact{text, c.Pos()})
			}
		case "Dignity":
			if d, ok := astro.ParseDignity(text); ok {
				g.add(g.dignities, t.body, fact{string(d), c.Pos()})
			}
		}
	}

	for _, body := range g.order {
		signs := distinct(g.signs[body])
		dignities := distinct(g.dignities[body])

		if len(signs) > 1 {
			domain(list, formulaErrors.SeverityError, signs[1].pos, "",
				"%s cannot be in both %s and %s", body, signs[0].value, signs[1].value)
		}
		if len(dignities) > 1 {
			domain(list, formulaErrors.SeverityError, dignities[1].pos,
				fmt.Sprintf("%[1]s.Dignity == %[2]s OR %[1]s.Dignity == %[3]s", body, dignities[0].value, dignities[1].value),
				"%s cannot hold both %s and %s", body, dignities[0].value, dignities[1].value)
		}
		if len(signs) == 0 || !astro.IsPlanet(body) {
			continue
		}
		sign := signs[0]
		if len(dignities) == 0 {
			v.weak(body, sign, list)
			continue
		}
		v.match(body, sign, dignities[0], list)
	}
}

// match checks that planet actually holds the stated dignity in sign.
func (v *DignityValidator) match(planet string, sign, dignity fact, list *formulaErrors.ErrorList) {
	t := v.table
	switch astro.Dignity(dignity.value) {
	case astro.DignityRulership:
		if contains(t.RuledSigns(planet), sign.value) {
			return
		}
		rulers := t.Rulers(sign.value)
		domain(list, formulaErrors.SeverityError, dignity.pos,
			fmt.Sprintf("%s.Dignity == Rulership", planet),
			"%s is ruled by %s, not %s", sign.value, strings.Join(rulers, " or "), planet)
	case astro.DignityExaltation:
		exalted, ok := t.ExaltationSign(planet)
		if !ok {
			domain(list, formulaErrors.SeverityWarning, dignity.pos, "",
				"%s has no exaltation in the %s table", planet, t.Mode())
			return
		}
		if exalted != sign.value {
			domain(list, formulaErrors.SeverityError, dignity.pos,
				fmt.Sprintf("%s.Sign == %s AND %s.Dignity == Exaltation", planet, exalted, planet),
				"%s is exalted in %s, not %s", planet, exalted, sign.value)
		}
	case astro.DignityDetriment:
		signs := t.DetrimentSigns(planet)
		if len(signs) > 0 && !contains(signs, sign.value) {
			domain(list, formulaErrors.SeverityError, dignity.pos,
				fmt.Sprintf("%s.Dignity == Detriment", planet),
				"%s is in detriment in %s, not %s", planet, strings.Join(signs, " or "), sign.value)
		}
	case astro.DignityFall:
		fall, ok := t.FallSign(planet)
		if ok && fall != sign.value {
			domain(list, formulaErrors.SeverityError, dignity.pos,
				fmt.Sprintf("%s.Sign == %s AND %s.Dignity == Fall", planet, fall, planet),
				"%s falls in %s, not %s", planet, fall, sign.value)
		}
	case astro.DignityNeutral:
		if actual := t.Dignity(planet, sign.value); actual != astro.DignityNeutral {
			domain(list, formulaErrors.SeverityError, dignity.pos,
				fmt.Sprintf("%s.Dignity == %s", planet, actual),
				"%s in %s has %s, not Neutral", planet, sign.value, actual)
		}
	}
}

// weak warns about a planet placed in its detriment or fall.
func (v *DignityValidator) weak(planet string, sign fact, list *formulaErrors.ErrorList) {
	if contains(v.table.DetrimentSigns(planet), sign.value) {
		domain(list, formulaErrors.SeverityWarning, sign.pos, "",
			"%s is in detriment in %s", planet, sign.value)
		return
	}
	if fall, ok := v.table.FallSign(planet); ok && fall == sign.value {
		domain(list, formulaErrors.SeverityWarning, sign.pos, "",
			"%s is in fall in %s", planet, sign.value)
	}
}

func distinct(facts []fact) []fact {
	var out []fact
	seen := map[string]bool{}
	for _, f := range facts {
		if !seen[f.value] {
			seen[f.value] = true
			out = append(out, f)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
