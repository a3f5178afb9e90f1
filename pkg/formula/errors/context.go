package errors

import (
	"fmt"
	"strings"

	"orrery-hq/natal/pkg/formula/ast"
)

// ExtractContext returns the lines of source around pos, marking the
// offending line with "->" and the column with a caret.
func ExtractContext(source string, pos ast.Position, contextLines int) string {
	if !pos.IsValid() || source == "" {
		return ""
	}

	lines := strings.Split(source, "\n")
	errorLine := pos.Line - 1
	if errorLine >= len(lines) {
		return ""
	}

	startLine := max(errorLine-contextLines, 0)
	endLine := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, width, i+1, lines[i]))

		if i == errorLine {
			padding := caretPadding(lines[i], pos.Column)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", width), padding))
		}
	}

	return sb.String()
}

// caretPadding reproduces tabs from the line so the caret lines up under
// the column when printed.
func caretPadding(line string, column int) string {
	var sb strings.Builder
	i := 0
	for _, r := range line {
		if i >= column {
			break
		}
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteRune(' ')
		}
		i++
	}
	for ; i < column; i++ {
		sb.WriteRune(' ')
	}
	return sb.String()
}

// WithSource attaches formula source context to a formula error and returns
// the same error. Errors without a diagnostic are returned unchanged.
func WithSource(err error, source string) error {
	if d, ok := AsDiagnostic(err); ok && d.Context == "" {
		d.Context = ExtractContext(source, d.Position, 1)
	}
	return err
}
