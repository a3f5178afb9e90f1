package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
)

const eof = -1

// Lexer converts formula text into tokens, one call to Next at a time.
type Lexer struct {
	input     string
	length    int
	start     int // Byte offset where the current token starts
	current   int // Byte offset of the next rune
	width     int // Width of the last rune read
	line      int // Line of current, 1-based
	lineStart int // Byte offset where the current line starts

	startLine int
	startCol  int
}

// New creates a lexer over input.
func New(input string) *Lexer {
	return &Lexer{
		input:  input,
		length: len(input),
		line:   1,
	}
}

// Tokenize converts the whole input into tokens terminated by an END token.
// On the first invalid character or unterminated string it returns a
// *errors.LexError and no tokens.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	tokens := make([]Token, 0, len(input)/3+1)
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == END {
			return tokens, nil
		}
	}
}

// Next returns the next token. After END has been returned, every further
// call returns END again.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()
	l.mark()

	ch := l.nextRune()
	if ch == eof {
		return l.newToken(END, ""), nil
	}

	// Two-character symbols first: && || == != <= >=
	for _, rk := range lookupSymbol2(ch) {
		if l.acceptRune(rk.r) {
			return l.newToken(rk.k, l.input[l.start:l.current]), nil
		}
	}

	if k := lookupSymbol1(ch); k != INVALID {
		return l.newToken(k, l.input[l.start:l.current]), nil
	}

	switch {
	case ch == '"' || ch == '\'':
		return l.scanString(ch)
	case isDigit(ch):
		l.backup()
		return l.scanNumber(), nil
	case unicode.IsLetter(ch):
		l.backup()
		return l.scanName(), nil
	}

	return Token{}, formulaErrors.NewLexError(l.startPos(), ch,
		"unexpected character '%c'", ch)
}

// scanString reads a quoted string whose opening quote has been consumed.
func (l *Lexer) scanString(quote rune) (Token, error) {
	var sb strings.Builder
	for {
		ch := l.nextRune()
		switch ch {
		case eof:
			return Token{}, formulaErrors.NewLexError(l.startPos(), 0, "unterminated string")
		case quote:
			return l.newToken(STRING, sb.String()), nil
		case '\n':
			sb.WriteRune(ch)
			l.newline()
		case '\\':
			esc := l.nextRune()
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '\'', '"':
				sb.WriteRune(esc)
			case eof:
				return Token{}, formulaErrors.NewLexError(l.startPos(), 0, "unterminated string")
			default:
				return Token{}, formulaErrors.NewLexError(l.currentPos(), esc,
					"invalid escape sequence '\\%c'", esc)
			}
		default:
			sb.WriteRune(ch)
		}
	}
}

// scanNumber reads digits with at most one decimal point. A point is only
// part of the number when a digit follows it, so "1.Sign" lexes as NUMBER DOT.
func (l *Lexer) scanNumber() Token {
	l.acceptAll(isDigit)
	if l.current+1 < l.length && l.input[l.current] == '.' && isDigit(rune(l.input[l.current+1])) {
		l.nextRune()
		l.acceptAll(isDigit)
	}
	return l.newToken(NUMBER, l.input[l.start:l.current])
}

// scanName reads an identifier or keyword.
func (l *Lexer) scanName() Token {
	l.acceptAll(isNameRune)
	word := l.input[l.start:l.current]
	return l.newToken(LookupKeyword(word), word)
}

// skipWhitespace skips blanks, newlines and # comments.
func (l *Lexer) skipWhitespace() {
	for {
		ch := l.nextRune()
		switch {
		case ch == '\n':
			l.newline()
		case ch == '#':
			for ch != '\n' && ch != eof {
				ch = l.nextRune()
			}
			if ch == eof {
				return
			}
			l.newline()
		case ch != eof && unicode.IsSpace(ch):
		default:
			if ch != eof {
				l.backup()
			}
			return
		}
	}
}

func (l *Lexer) newline() {
	l.line++
	l.lineStart = l.current
}

func (l *Lexer) mark() {
	l.start = l.current
	l.startLine = l.line
	l.startCol = utf8.RuneCountInString(l.input[l.lineStart:l.start])
}

func (l *Lexer) startPos() ast.Position {
	return ast.Position{Line: l.startLine, Column: l.startCol}
}

func (l *Lexer) currentPos() ast.Position {
	offset := l.current - l.width
	return ast.Position{Line: l.line, Column: utf8.RuneCountInString(l.input[l.lineStart:offset])}
}

func (l *Lexer) newToken(k Kind, value string) Token {
	return Token{
		Kind:   k,
		Value:  value,
		Line:   l.startLine,
		Column: l.startCol,
	}
}

func (l *Lexer) nextRune() rune {
	if l.current >= l.length {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.current:])
	l.width = w
	l.current += w
	return r
}

func (l *Lexer) backup() {
	l.current -= l.width
}

func (l *Lexer) acceptRune(r rune) bool {
	if l.nextRune() == r {
		return true
	}
	l.backup()
	return false
}

func (l *Lexer) acceptAll(isValid func(rune) bool) {
	for {
		r := l.nextRune()
		if r == eof {
			return
		}
		if !isValid(r) {
			l.backup()
			return
		}
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
