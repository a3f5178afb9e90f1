package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"orrery-hq/natal/pkg/formula/ast"
)

// ErrorType categorizes the stage that produced a diagnostic.
type ErrorType string

const (
	ErrorTypeLex    ErrorType = "lex"    // Invalid character or unterminated string
	ErrorTypeParse  ErrorType = "parse"  // Unexpected or missing token
	ErrorTypeEval   ErrorType = "eval"   // Missing chart key or type mismatch
	ErrorTypeDomain ErrorType = "domain" // Astrologically impossible formula
)

// Severity ranks diagnostics reported by the domain validator.
// Lex, parse and eval errors always have SeverityError.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is the common part of every formula error: what went wrong,
// where, and optionally the surrounding source and a suggested fix.
type Diagnostic struct {
	Type       ErrorType
	Severity   Severity
	Message    string
	Position   ast.Position
	Context    string // Formula source around Position with a caret
	Suggestion string
}

// Error returns the diagnostic with location, context and suggestion.
func (d *Diagnostic) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[%s] %s\n", d.Type, d.Message))
	if d.Position.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", d.Position.String()))
	}
	if d.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(d.Context)
		sb.WriteString("  |\n")
	}
	if d.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", d.Suggestion))
	}

	return sb.String()
}

// Summary returns a single-line form of the diagnostic.
func (d *Diagnostic) Summary() string {
	if d.Position.IsValid() {
		return fmt.Sprintf("%s error at %s: %s", d.Type, d.Position, d.Message)
	}
	return fmt.Sprintf("%s error: %s", d.Type, d.Message)
}

func (d *Diagnostic) diagnostic() *Diagnostic { return d }

// LexError reports an invalid character or an unterminated string.
type LexError struct {
	Diagnostic
	Char rune // Offending character, 0 for unterminated strings
}

// ParseError reports a token sequence that does not match the grammar.
type ParseError struct {
	Diagnostic
	Expected string
	Found    string
}

// EvalError reports a failure while evaluating a syntactically valid tree.
type EvalError struct {
	Diagnostic
	Node ast.Node // Node being evaluated when the failure occurred
	Key  string   // Missing entity or property name, if any
}

// NewLexError creates a LexError at pos.
func NewLexError(pos ast.Position, char rune, format string, args ...any) *LexError {
	return &LexError{
		Diagnostic: Diagnostic{
			Type:     ErrorTypeLex,
			Severity: SeverityError,
			Message:  fmt.Sprintf(format, args...),
			Position: pos,
		},
		Char: char,
	}
}

// NewParseError creates a ParseError describing what was expected and what was found.
func NewParseError(pos ast.Position, expected, found string) *ParseError {
	msg := fmt.Sprintf("expected %s, found %s", expected, found)
	return &ParseError{
		Diagnostic: Diagnostic{
			Type:     ErrorTypeParse,
			Severity: SeverityError,
			Message:  msg,
			Position: pos,
		},
		Expected: expected,
		Found:    found,
	}
}

// NewEvalError creates an EvalError attached to node.
func NewEvalError(node ast.Node, format string, args ...any) *EvalError {
	var pos ast.Position
	if node != nil {
		pos = node.Pos()
	}
	return &EvalError{
		Diagnostic: Diagnostic{
			Type:     ErrorTypeEval,
			Severity: SeverityError,
			Message:  fmt.Sprintf(format, args...),
			Position: pos,
		},
		Node: node,
	}
}

// NewMissingKeyError creates an EvalError for a chart key that does not exist.
// candidates are used to suggest a close match.
func NewMissingKeyError(node ast.Node, what, key string, candidates []string) *EvalError {
	err := NewEvalError(node, "%s '%s' not found in chart data", what, key)
	err.Key = key
	err.Suggestion = Suggest(key, candidates)
	return err
}

// AsDiagnostic extracts the Diagnostic of any formula error in err's chain.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d interface{ diagnostic() *Diagnostic }
	if stderrors.As(err, &d) {
		return d.diagnostic(), true
	}
	return nil, false
}

// KindOf returns the ErrorType of a formula error, or "" for other errors.
func KindOf(err error) ErrorType {
	if d, ok := AsDiagnostic(err); ok {
		return d.Type
	}
	return ""
}

// ErrorList collects diagnostics for callers that report more than one
// problem per formula, such as the domain validator.
type ErrorList struct {
	Errors []*Diagnostic
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{
		Errors: make([]*Diagnostic, 0),
	}
}

// Add appends a diagnostic to the list.
func (el *ErrorList) Add(d *Diagnostic) {
	if d.Severity == "" {
		d.Severity = SeverityError
	}
	el.Errors = append(el.Errors, d)
}

// AddError creates and adds a diagnostic with the given severity.
func (el *ErrorList) AddError(errType ErrorType, severity Severity, message string, pos ast.Position) {
	el.Add(&Diagnostic{
		Type:     errType,
		Severity: severity,
		Message:  message,
		Position: pos,
	})
}

// AddErrorWithSuggestion creates and adds a diagnostic with a suggestion.
func (el *ErrorList) AddErrorWithSuggestion(errType ErrorType, severity Severity, message string, pos ast.Position, suggestion string) {
	el.Add(&Diagnostic{
		Type:       errType,
		Severity:   severity,
		Message:    message,
		Position:   pos,
		Suggestion: suggestion,
	})
}

// HasErrors returns true if the list contains at least one error-severity diagnostic.
func (el *ErrorList) HasErrors() bool {
	return el.HasSeverity(SeverityError)
}

// HasSeverity returns true if the list contains a diagnostic with the given severity.
func (el *ErrorList) HasSeverity(severity Severity) bool {
	for _, d := range el.Errors {
		if d.Severity == severity {
			return true
		}
	}
	return false
}

// Count returns the number of diagnostics in the list, of any severity.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// Error returns all diagnostics formatted as a single string.
func (el *ErrorList) Error() string {
	if el.Count() == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d problem(s):\n\n", el.Count()))

	for i, d := range el.Errors {
		sb.WriteString(fmt.Sprintf("%d. (%s) ", i+1, d.Severity))
		sb.WriteString(d.Error())
		sb.WriteString("\n")
	}

	return sb.String()
}

// ToError returns nil unless the list holds an error-severity diagnostic.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}

// BySeverity returns all diagnostics of the given severity.
func (el *ErrorList) BySeverity(severity Severity) []*Diagnostic {
	var result []*Diagnostic
	for _, d := range el.Errors {
		if d.Severity == severity {
			result = append(result, d)
		}
	}
	return result
}
