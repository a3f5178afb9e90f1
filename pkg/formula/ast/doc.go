// Package ast defines the syntax tree of natal formulas.
//
// The tree is a closed set of node types behind the sealed Node interface.
// Nodes are produced by the parser and consumed by the evaluator and the
// domain validator; neither mutates them, so a tree can be shared freely
// between goroutines once built.
//
// # Node Types
//
// Logical nodes:
//   - BinaryOp: AND / OR of two sub-expressions
//   - UnaryOp: NOT of one sub-expression
//   - Comparison: ==, !=, <, >, <=, >= or IN between two operands
//
// Chart references:
//   - PropertyAccess: Sun.Sign
//   - AggregatorAccess: planets.Sign, houses.Sign, aspects.Type
//
// Literals:
//   - Identifier (symbolic text such as Aries or Ruler)
//   - NumberLiteral, StringLiteral, BooleanLiteral
//   - ListLiteral
//
// # Rendering
//
// String returns a canonical prefix form used in tests and by `natal parse`:
//
//	NOT A AND B OR C         =>  OR(AND(NOT(A), B), C)
//	Mars.House IN [1,4,7,10] =>  IN(Mars.House, [1, 4, 7, 10])
//
// Equal compares two trees structurally, ignoring positions.
package ast
