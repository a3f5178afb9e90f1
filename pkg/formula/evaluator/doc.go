// Package evaluator evaluates formula syntax trees against chart data.
//
// Evaluation is a pure function of the tree and the chart: neither is
// modified, and an Evaluator can be shared between goroutines. Values are
// typed (number, text, boolean, sequence) and equality never coerces
// between kinds, so Sun.House == "9" is false when House is the number 9.
//
// AND and OR short-circuit left to right. Aggregators (planets, houses,
// aspects) collect one property from every entry in a category; entries
// lacking the property are skipped unless the strict policy is configured.
//
// Basic usage:
//
//	e, err := evaluator.New(logger, evaluator.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	matched, err := e.Check(ctx, root, chartData)
package evaluator
