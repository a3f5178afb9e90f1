package parser

import (
	"fmt"

	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
	"orrery-hq/natal/pkg/formula/lexer"
)

const (
	// DefaultMaxDepth bounds the number of nested grammar productions.
	// Every parenthesised level costs four.
	DefaultMaxDepth = 256

	// DefaultMaxLength bounds formula text in bytes.
	DefaultMaxLength = 4096
)

// Parser turns formula tokens into a syntax tree. A Parser holds only
// configuration, so one instance can be shared between goroutines.
type Parser struct {
	maxDepth  int // Maximum recursion depth (default: 256)
	maxLength int // Maximum formula length in bytes (default: 4096)
}

// NewParser creates a new parser with default limits.
func NewParser() *Parser {
	return &Parser{
		maxDepth:  DefaultMaxDepth,
		maxLength: DefaultMaxLength,
	}
}

// WithMaxDepth sets the maximum recursion depth. Values below 1 disable
// nesting entirely and are raised to 1.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = max(depth, 1)
	return p
}

// WithMaxLength sets the maximum formula length in bytes. Zero disables the check.
func (p *Parser) WithMaxLength(length int) *Parser {
	p.maxLength = length
	return p
}

// MaxDepth returns the configured recursion limit.
func (p *Parser) MaxDepth() int { return p.maxDepth }

// MaxLength returns the configured length limit.
func (p *Parser) MaxLength() int { return p.maxLength }

// Parse parses tokens with the default limits.
func Parse(tokens []lexer.Token) (ast.Node, error) {
	return NewParser().ParseTokens(tokens)
}

// ParseString checks the length limit, tokenizes text and parses the result.
func (p *Parser) ParseString(text string) (ast.Node, error) {
	if err := p.CheckLength(text); err != nil {
		return nil, err
	}
	tokens, err := lexer.Tokenize(text)
	if err != nil {
		return nil, err
	}
	return p.ParseTokens(tokens)
}

// CheckLength returns a ParseError if text exceeds the length limit.
func (p *Parser) CheckLength(text string) error {
	if p.maxLength > 0 && len(text) > p.maxLength {
		perr := formulaErrors.NewParseError(ast.Position{Line: 1, Column: 0},
			fmt.Sprintf("formula of at most %d bytes", p.maxLength),
			fmt.Sprintf("%d bytes", len(text)))
		perr.Message = fmt.Sprintf("formula length %d exceeds maximum %d bytes", len(text), p.maxLength)
		return perr
	}
	return nil
}

// ParseTokens builds a syntax tree from tokens. The sequence is normally
// terminated by an END token; running out of tokens is treated the same way.
func (p *Parser) ParseTokens(tokens []lexer.Token) (ast.Node, error) {
	s := &state{
		tokens:   tokens,
		maxDepth: p.maxDepth,
	}

	if s.peek().Kind == lexer.END {
		perr := formulaErrors.NewParseError(s.position(), "expression", "end of formula")
		perr.Message = "empty formula"
		return nil, perr
	}

	root, err := s.parseExpression()
	if err != nil {
		return nil, err
	}

	if tok := s.peek(); tok.Kind != lexer.END {
		if tok.Kind == lexer.RPAREN {
			return nil, s.errorf("end of formula", "unmatched ')'")
		}
		return nil, s.unexpected("AND, OR or end of formula")
	}

	return root, nil
}

// state is the per-call cursor over the token slice.
type state struct {
	tokens   []lexer.Token
	pos      int
	depth    int
	maxDepth int
}

func (s *state) peek() lexer.Token {
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos]
	}
	end := lexer.Token{Kind: lexer.END, Line: 1}
	if n := len(s.tokens); n > 0 {
		last := s.tokens[n-1]
		end.Line = last.Line
		end.Column = last.Column + len([]rune(last.Value))
	}
	return end
}

func (s *state) advance() lexer.Token {
	tok := s.peek()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return tok
}

func (s *state) position() ast.Position {
	return tokenPos(s.peek())
}

func tokenPos(tok lexer.Token) ast.Position {
	return ast.Position{Line: tok.Line, Column: tok.Column}
}

// enter is called at every recursive production.
func (s *state) enter() error {
	s.depth++
	if s.depth > s.maxDepth {
		perr := formulaErrors.NewParseError(s.position(),
			fmt.Sprintf("nesting depth of at most %d", s.maxDepth), s.peek().Describe())
		perr.Message = fmt.Sprintf("formula nesting exceeds maximum depth %d", s.maxDepth)
		return perr
	}
	return nil
}

func (s *state) leave() {
	s.depth--
}

func (s *state) unexpected(expected string) *formulaErrors.ParseError {
	return formulaErrors.NewParseError(s.position(), expected, s.peek().Describe())
}

func (s *state) errorf(expected, format string, args ...any) *formulaErrors.ParseError {
	perr := s.unexpected(expected)
	perr.Message = fmt.Sprintf(format, args...)
	return perr
}
