package parser

import (
	"errors"
	"strings"
	"testing"

	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
	"orrery-hq/natal/pkg/formula/lexer"
)

func mustParse(t *testing.T, input string) ast.Node {
	t.Helper()
	root, err := NewParser().ParseString(input)
	if err != nil {
		t.Fatalf("ParseString(%q) error = %v", input, err)
	}
	return root
}

func TestParse_Canonical(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"NOT A AND B OR C", "OR(AND(NOT(A), B), C)"},
		{"NOT (A AND B) OR C", "OR(NOT(AND(A, B)), C)"},
		{"A OR B AND C", "OR(A, AND(B, C))"},
		{"A AND B AND C", "AND(AND(A, B), C)"},
		{"A OR B OR C", "OR(OR(A, B), C)"},
		{"NOT NOT A", "NOT(NOT(A))"},
		{"!A && B || C", "OR(AND(NOT(A), B), C)"},
		{"Mars.House IN [1,4,7,10]", "IN(Mars.House, [1, 4, 7, 10])"},
		{"Sun.Sign == Aries", "==(Sun.Sign, Aries)"},
		{"Sun.Degree >= 12.5", ">=(Sun.Degree, 12.5)"},
		{`Moon.Sign != "Cancer"`, `!=(Moon.Sign, "Cancer")`},
		{"Mars.Retrograde == True", "==(Mars.Retrograde, True)"},
		{"Neutral IN planets.Dignity", "IN(Neutral, planets.Dignity)"},
		{"Square IN aspects.Type", "IN(Square, aspects.Type)"},
		{"houses.Sign", "houses.Sign"},
		{"[]", "[]"},
		{"[Aries, 'Leo', 3, False]", `[Aries, "Leo", 3, False]`},
		{"((A))", "A"},
		{"NOT Sun.Sign == Aries", "NOT(==(Sun.Sign, Aries))"},
		{"(A == B) == C", "==(==(A, B), C)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			root := mustParse(t, tt.input)
			if got := root.String(); got != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Structure(t *testing.T) {
	root := mustParse(t, "Mars.House IN [1,4,7,10]")

	want := &ast.Comparison{
		Operator: ast.ComparatorIn,
		Left:     &ast.PropertyAccess{Object: "Mars", Property: "House"},
		Right: &ast.ListLiteral{Items: []ast.Node{
			&ast.NumberLiteral{Value: 1},
			&ast.NumberLiteral{Value: 4},
			&ast.NumberLiteral{Value: 7},
			&ast.NumberLiteral{Value: 10},
		}},
	}
	if !ast.Equal(root, want) {
		t.Errorf("Parse() = %s, want %s", root, want)
	}

	cmp := root.(*ast.Comparison)
	if cmp.Pos() != (ast.Position{Line: 1, Column: 0}) {
		t.Errorf("Comparison position = %s, want 1:0", cmp.Pos())
	}
	if list := cmp.Right.(*ast.ListLiteral); list.Pos().Column != 14 {
		t.Errorf("ListLiteral column = %d, want 14", list.Pos().Column)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		column   int
		contains string
	}{
		{"empty", "", 0, "empty formula"},
		{"comment only", "# nothing", 9, "empty formula"},
		{"empty parens", "()", 1, "empty parentheses"},
		{"missing rparen", "(A AND B", 8, "missing closing ')'"},
		{"missing rbracket", "X IN [1, 2", 10, "missing closing ']'"},
		{"missing rbracket after open", "X IN [", 6, "missing closing ']'"},
		{"dot without property", "Sun.", 4, "must be followed by a property name"},
		{"dot with number", "Sun.1", 4, "must be followed by a property name"},
		{"aggregator without dot", "planets == Aries", 8, "expected '.' after 'planets'"},
		{"chained comparison", "A == B == C", 7, "chained comparisons"},
		{"dangling operator", "A AND", 5, "expected expression"},
		{"leading operator", "AND A", 0, "expected expression"},
		{"trailing input", "A B", 2, "expected AND, OR or end of formula"},
		{"unmatched rparen", "A)", 1, "unmatched ')'"},
		{"list separator", "X IN [1 2]", 8, "expected ',' or ']'"},
		{"trailing comma", "X IN [1,]", 8, "expected expression"},
		{"comparison without right", "A ==", 4, "expected expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser().ParseString(tt.input)
			if err == nil {
				t.Fatalf("ParseString(%q) expected error", tt.input)
			}
			var perr *formulaErrors.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseString(%q) error type = %T, want *ParseError", tt.input, err)
			}
			if !strings.Contains(perr.Error(), tt.contains) {
				t.Errorf("error = %q, want to contain %q", perr.Message, tt.contains)
			}
			if perr.Position.Column != tt.column {
				t.Errorf("error column = %d, want %d", perr.Position.Column, tt.column)
			}
		})
	}
}

func TestParse_LexErrorPassesThrough(t *testing.T) {
	_, err := NewParser().ParseString(`Sun.Sign == "Aries`)
	var lexErr *formulaErrors.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("error type = %T, want *LexError", err)
	}
}

func TestParse_TokensWithoutEnd(t *testing.T) {
	tokens := []lexer.Token{
		{Kind: lexer.IDENTIFIER, Value: "A", Line: 1, Column: 0},
		{Kind: lexer.AND, Value: "AND", Line: 1, Column: 2},
		{Kind: lexer.IDENTIFIER, Value: "B", Line: 1, Column: 6},
	}
	root, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if root.String() != "AND(A, B)" {
		t.Errorf("Parse() = %s, want AND(A, B)", root)
	}

	if _, err := Parse(nil); err == nil {
		t.Error("Parse(nil) expected empty formula error")
	}
}

func TestParse_MaxDepth(t *testing.T) {
	deep := strings.Repeat("(", 100) + "A" + strings.Repeat(")", 100)

	if _, err := NewParser().WithMaxDepth(40).ParseString(deep); err == nil {
		t.Fatal("expected depth error")
	} else if !strings.Contains(err.Error(), "maximum depth 40") {
		t.Errorf("error = %v, want depth message", err)
	}

	if _, err := NewParser().WithMaxDepth(1000).ParseString(deep); err != nil {
		t.Errorf("ParseString() with generous depth error = %v", err)
	}

	nots := strings.Repeat("NOT ", 500) + "A"
	if _, err := NewParser().ParseString(nots); err == nil {
		t.Error("expected depth error for 500 NOTs with default limit")
	}
}

func TestParse_MaxLength(t *testing.T) {
	long := strings.Repeat("A OR ", 100) + "A"

	_, err := NewParser().WithMaxLength(64).ParseString(long)
	var perr *formulaErrors.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if !strings.Contains(perr.Message, "exceeds maximum 64 bytes") {
		t.Errorf("error = %q", perr.Message)
	}

	if _, err := NewParser().WithMaxLength(0).ParseString(long); err != nil {
		t.Errorf("ParseString() without length limit error = %v", err)
	}
}

func TestParse_Deterministic(t *testing.T) {
	input := "(Sun.Sign == Aries OR Moon.House IN [1, 4]) AND NOT planets.Retrograde == True"
	a := mustParse(t, input)
	b := mustParse(t, input)
	if !ast.Equal(a, b) || a.String() != b.String() {
		t.Errorf("parses differ: %s vs %s", a, b)
	}
}

func TestParse_Multiline(t *testing.T) {
	root := mustParse(t, "Sun.Sign == Aries # the Sun\nAND\n  Moon.House > 6")
	bin, ok := root.(*ast.BinaryOp)
	if !ok {
		t.Fatalf("root type = %T, want *ast.BinaryOp", root)
	}
	if got := bin.Right.Pos(); got.Line != 3 || got.Column != 2 {
		t.Errorf("right operand position = %s, want 3:2", got)
	}
}

func BenchmarkParseString(b *testing.B) {
	p := NewParser()
	input := `(Sun.Sign == Aries AND Moon.House IN [1, 4, 7, 10]) OR NOT Mars.Retrograde`
	for i := 0; i < b.N; i++ {
		if _, err := p.ParseString(input); err != nil {
			b.Fatal(err)
		}
	}
}
