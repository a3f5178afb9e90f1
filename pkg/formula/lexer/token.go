package lexer

import "fmt"

// Kind identifies the lexical class of a token.
type Kind uint8

const (
	INVALID Kind = iota
	END

	// Literals
	IDENTIFIER
	NUMBER
	STRING
	BOOLEAN

	// Logical operators
	AND
	OR
	NOT

	// Comparators
	EQ
	NEQ
	LT
	GT
	LTE
	GTE
	IN

	// Aggregator keywords
	PLANETS
	ASPECTS
	HOUSES

	// Delimiters
	DOT
	COMMA
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
)

var kindNames = [...]string{
	INVALID:    "INVALID",
	END:        "END",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	BOOLEAN:    "BOOLEAN",
	AND:        "AND",
	OR:         "OR",
	NOT:        "NOT",
	EQ:         "EQ",
	NEQ:        "NEQ",
	LT:         "LT",
	GT:         "GT",
	LTE:        "LTE",
	GTE:        "GTE",
	IN:         "IN",
	PLANETS:    "PLANETS",
	ASPECTS:    "ASPECTS",
	HOUSES:     "HOUSES",
	DOT:        "DOT",
	COMMA:      "COMMA",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACKET:   "LBRACKET",
	RBRACKET:   "RBRACKET",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsComparator returns true for ==, !=, <, >, <=, >= and IN.
func (k Kind) IsComparator() bool {
	return k >= EQ && k <= IN
}

// IsAggregator returns true for the planets, aspects and houses keywords.
func (k Kind) IsAggregator() bool {
	return k >= PLANETS && k <= HOUSES
}

// Token is a single lexical unit of a formula.
type Token struct {
	Kind   Kind
	Value  string // Source text; unescaped content for strings
	Line   int    // 1-based
	Column int    // 0-based, in runes
}

// String renders the token as KIND(value), or just KIND for tokens whose
// value is implied by the kind.
func (t Token) String() string {
	switch t.Kind {
	case IDENTIFIER, NUMBER, BOOLEAN:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Value)
	case STRING:
		return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
	default:
		return t.Kind.String()
	}
}

// Describe returns a human-readable description used in parse errors.
func (t Token) Describe() string {
	switch t.Kind {
	case END:
		return "end of formula"
	case IDENTIFIER:
		return fmt.Sprintf("identifier '%s'", t.Value)
	case NUMBER:
		return fmt.Sprintf("number %s", t.Value)
	case STRING:
		return fmt.Sprintf("string %q", t.Value)
	default:
		return fmt.Sprintf("'%s'", t.Value)
	}
}

// keywords maps reserved words to their kinds. Matching is case-sensitive.
var keywords = map[string]Kind{
	"AND":     AND,
	"OR":      OR,
	"NOT":     NOT,
	"IN":      IN,
	"planets": PLANETS,
	"aspects": ASPECTS,
	"houses":  HOUSES,
	"True":    BOOLEAN,
	"False":   BOOLEAN,
}

// LookupKeyword returns the kind of a reserved word, or IDENTIFIER.
func LookupKeyword(s string) Kind {
	if k, ok := keywords[s]; ok {
		return k
	}
	return IDENTIFIER
}

// symbols1 maps single-character symbols to token kinds.
var symbols1 = [...]Kind{
	'.': DOT,
	',': COMMA,
	'(': LPAREN,
	')': RPAREN,
	'[': LBRACKET,
	']': RBRACKET,
	'<': LT,
	'>': GT,
	'!': NOT,
}

type runeKind struct {
	r rune
	k Kind
}

// symbols2 maps two-character symbols, keyed by their first character.
var symbols2 = [...][]runeKind{
	'&': {{'&', AND}},
	'|': {{'|', OR}},
	'=': {{'=', EQ}},
	'!': {{'=', NEQ}},
	'<': {{'=', LTE}},
	'>': {{'=', GTE}},
}

func lookupSymbol1(r rune) Kind {
	if r < 0 || int(r) >= len(symbols1) {
		return INVALID
	}
	return symbols1[r]
}

func lookupSymbol2(r rune) []runeKind {
	if r < 0 || int(r) >= len(symbols2) {
		return nil
	}
	return symbols2[r]
}
