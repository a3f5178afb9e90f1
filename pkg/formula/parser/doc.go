// Package parser builds formula syntax trees by recursive descent.
//
// # Grammar
//
// From lowest to highest precedence:
//
//	expression  := or_expr
//	or_expr     := and_expr ( OR and_expr )*
//	and_expr    := not_expr ( AND not_expr )*
//	not_expr    := NOT not_expr | comparison
//	comparison  := primary ( comparator primary )?
//	comparator  := '==' | '!=' | '<' | '>' | '<=' | '>=' | IN
//	primary     := NUMBER | STRING | BOOLEAN | list_lit
//	             | aggregator_access | property_access | IDENTIFIER
//	             | '(' expression ')'
//	property_access   := IDENTIFIER '.' IDENTIFIER
//	aggregator_access := (planets|aspects|houses) '.' IDENTIFIER
//	list_lit    := '[' ( primary (',' primary)* )? ']'
//
// A comparison takes at most one comparator, so "a == b == c" is rejected.
//
// # Limits
//
// Parser bounds both the formula length (checked before lexing) and the
// recursion depth (checked on entry to every recursive production):
//
//	p := parser.NewParser().WithMaxDepth(128).WithMaxLength(1024)
//	root, err := p.ParseString("NOT (Sun.Sign == Aries)")
//
// All failures are *errors.ParseError values (or *errors.LexError from
// ParseString) carrying the position of the offending token.
package parser
