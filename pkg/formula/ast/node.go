package ast

// Node is a formula syntax tree node. The set of implementations is closed:
// only the types in this package satisfy it.
type Node interface {
	// Pos returns the position of the token that started the node.
	Pos() Position
	// String returns the canonical rendering of the node.
	String() string

	formulaNode()
}

// LogicalOperator is the operator of a BinaryOp.
type LogicalOperator string

const (
	OperatorAnd LogicalOperator = "AND"
	OperatorOr  LogicalOperator = "OR"
)

// UnaryOperator is the operator of a UnaryOp.
type UnaryOperator string

const (
	OperatorNot UnaryOperator = "NOT"
)

// Comparator is the operator of a Comparison.
type Comparator string

const (
	ComparatorEqual        Comparator = "=="
	ComparatorNotEqual     Comparator = "!="
	ComparatorLessThan     Comparator = "<"
	ComparatorGreaterThan  Comparator = ">"
	ComparatorLessEqual    Comparator = "<="
	ComparatorGreaterEqual Comparator = ">="
	ComparatorIn           Comparator = "IN"
)

// IsOrdering returns true for the comparators that require numeric operands.
func (c Comparator) IsOrdering() bool {
	switch c {
	case ComparatorLessThan, ComparatorGreaterThan, ComparatorLessEqual, ComparatorGreaterEqual:
		return true
	}
	return false
}

// Aggregator names a chart category that can be projected with dotted access.
type Aggregator string

const (
	AggregatorPlanets Aggregator = "planets"
	AggregatorHouses  Aggregator = "houses"
	AggregatorAspects Aggregator = "aspects"
)

// BinaryOp joins two boolean sub-expressions with AND or OR.
type BinaryOp struct {
	Operator LogicalOperator
	Left     Node
	Right    Node
	Position Position
}

// UnaryOp negates its operand.
type UnaryOp struct {
	Operator UnaryOperator
	Operand  Node
	Position Position
}

// Comparison applies a single comparator to two operands.
type Comparison struct {
	Operator Comparator
	Left     Node
	Right    Node
	Position Position
}

// PropertyAccess reads one attribute of a named chart entity, e.g. Sun.Sign.
type PropertyAccess struct {
	Object   string
	Property string
	Position Position
}

// AggregatorAccess projects one attribute across a whole category, e.g. planets.Sign.
type AggregatorAccess struct {
	Aggregator Aggregator
	Property   string
	Position   Position
}

// Identifier is a bare symbolic literal such as a sign or dignity name.
type Identifier struct {
	Name     string
	Position Position
}

type NumberLiteral struct {
	Value    float64
	Position Position
}

type StringLiteral struct {
	Value    string
	Position Position
}

type BooleanLiteral struct {
	Value    bool
	Position Position
}

// ListLiteral is an ordered, bracketed list of items.
type ListLiteral struct {
	Items    []Node
	Position Position
}

func (n *BinaryOp) Pos() Position         { return n.Position }
func (n *UnaryOp) Pos() Position          { return n.Position }
func (n *Comparison) Pos() Position       { return n.Position }
func (n *PropertyAccess) Pos() Position   { return n.Position }
func (n *AggregatorAccess) Pos() Position { return n.Position }
func (n *Identifier) Pos() Position       { return n.Position }
func (n *NumberLiteral) Pos() Position    { return n.Position }
func (n *StringLiteral) Pos() Position    { return n.Position }
func (n *BooleanLiteral) Pos() Position   { return n.Position }
func (n *ListLiteral) Pos() Position      { return n.Position }

func (*BinaryOp) formulaNode()         {}
func (*UnaryOp) formulaNode()          {}
func (*Comparison) formulaNode()       {}
func (*PropertyAccess) formulaNode()   {}
func (*AggregatorAccess) formulaNode() {}
func (*Identifier) formulaNode()       {}
func (*NumberLiteral) formulaNode()    {}
func (*StringLiteral) formulaNode()    {}
func (*BooleanLiteral) formulaNode()   {}
func (*ListLiteral) formulaNode()      {}
