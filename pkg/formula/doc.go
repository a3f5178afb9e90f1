// Package formula ties together the lexer, parser and evaluator of the chart
// formula language.
//
// A formula is a boolean expression over chart data:
//
//	Sun.Sign == Capricorn AND NOT Mars.Retrograde
//	Mars.House IN [1, 4, 7, 10] OR Leo IN planets.Sign
//
// Compile once and evaluate many times:
//
//	f, err := formula.Compile("Moon.Dignity == Rulership")
//	if err != nil {
//	    return err
//	}
//	matched, err := f.Check(ctx, chartData)
//
// Errors returned by this package are *errors.LexError, *errors.ParseError
// or *errors.EvalError from the errors subpackage, each carrying a position
// and the surrounding formula text.
package formula
