package chart

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

const ruleWidth = 60

// contextFields are the planet attributes shown in verbose result blocks.
var contextFields = []string{"Sign", "House", "Dignity", "Retrograde"}

// FormatResult renders the result block printed by natal check. With
// verbose set, every planet or point named in the formula is listed with its
// sign, house, dignity and retrograde flag.
func FormatResult(formula string, result bool, d *Data, verbose bool) string {
	heavy := strings.Repeat("=", ruleWidth)
	light := strings.Repeat("-", ruleWidth)

	var sb strings.Builder
	sb.WriteString(heavy + "\n")
	sb.WriteString("DSL Formula Check\n")
	sb.WriteString(heavy + "\n")
	fmt.Fprintf(&sb, "\nFormula: %s\n", formula)

	symbol := "❌"
	if result {
		symbol = "✅"
	}
	fmt.Fprintf(&sb, "\nResult: %s %s\n", symbol, boolText(result))

	if verbose && d != nil {
		sb.WriteString("\n" + light + "\n")
		sb.WriteString("Chart Context:\n")
		sb.WriteString(light + "\n")

		for _, name := range mentioned(formula, d) {
			attrs, ok := d.Planets.Get(name)
			if !ok {
				attrs, _ = d.Points.Get(name)
			}
			fmt.Fprintf(&sb, "\n%s:\n", name)
			for _, field := range contextFields {
				fmt.Fprintf(&sb, "  %s: %s\n", field, contextValue(attrs, field))
			}
		}
	}

	sb.WriteString("\n" + heavy + "\n")
	return sb.String()
}

// mentioned returns the chart bodies named in formula, in chart order.
func mentioned(formula string, d *Data) []string {
	words := strings.FieldsFunc(formula, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})

	var names []string
	for _, name := range append(d.Planets.Names(), d.Points.Names()...) {
		if slices.Contains(words, name) && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func contextValue(attrs Attributes, field string) string {
	v, ok := attrs[field]
	if !ok {
		if field == "Retrograde" {
			return "False"
		}
		return "N/A"
	}
	if b, ok := v.(bool); ok {
		return boolText(b)
	}
	return fmt.Sprint(v)
}

func boolText(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
