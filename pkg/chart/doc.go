// Package chart holds the chart data that formulas are evaluated against.
//
// A Data value has four insertion-ordered parts: planets and points (the
// entity namespace used by property access such as Sun.Sign or Asc.Sign),
// houses keyed by number, and a list of aspects. Data implements the
// evaluator's Chart interface.
//
// Charts are built in code, decoded from YAML or JSON documents, or derived
// from raw ephemeris positions with FromPositions.
package chart
