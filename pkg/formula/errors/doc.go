// Package errors provides the typed errors of the formula pipeline.
//
// Each stage fails fast with exactly one error value:
//
//   - *LexError: invalid character or unterminated string (lexer)
//   - *ParseError: unexpected or missing token, empty formula (parser)
//   - *EvalError: missing chart key, type mismatch (evaluator)
//
// All three embed Diagnostic, which carries the message, the position inside
// the formula, optional source context and an optional suggestion. Callers
// select on the failure kind with errors.As rather than matching strings:
//
//	var perr *errors.ParseError
//	if stderrors.As(err, &perr) {
//	    fmt.Println(perr.Expected, perr.Found)
//	}
//
// Attach a caret pointing into the formula before printing:
//
//	err = errors.WithSource(err, formula)
//	fmt.Print(err.Error())
//
// ErrorList accumulates several diagnostics with severities. The formula core
// never uses it; the domain validator does.
package errors
