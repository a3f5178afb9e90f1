package ast

import "fmt"

// Position is the source position of a token or node inside a formula.
// Lines are 1-based; columns are 0-based rune offsets within the line.
type Position struct {
	Line   int
	Column int
}

// String returns "line:column".
func (p Position) String() string {
	if !p.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid returns true if the position carries line information.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column >= 0
}
