// Package validator reports astrologically impossible or doubtful formulas
// before they are evaluated.
//
// Three passes run over the syntax tree:
//
//   - Names: unknown bodies (warning, with a suggestion), unknown sign and
//     dignity names, and Body.Ruler compared with a planet.
//   - Ranges: Retrograde on bodies that never retrograde, house numbers
//     outside 1-12, Degree outside 0-29 and Longitude outside 0-359.
//   - Dignities: within one AND chain, a planet placed in two signs or
//     given two dignities, a dignity that does not match the stated sign,
//     and warnings for planets placed in detriment or fall.
//
// Diagnostics use the domain error type from the formula errors package.
// Validate returns an error only for error-severity problems; Diagnose
// returns warnings too.
package validator
