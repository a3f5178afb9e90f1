package ast

// Visitor is called for every node during Walk. Returning false stops the
// descent into the node's children; returning an error aborts the walk.
type Visitor interface {
	Visit(node Node) (descend bool, err error)
}

// VisitorFunc adapts a function to the Visitor interface.
type VisitorFunc func(node Node) (bool, error)

// Visit calls f(node).
func (f VisitorFunc) Visit(node Node) (bool, error) {
	return f(node)
}

// Walk traverses the tree depth-first, left to right, and returns the first
// error reported by the visitor.
func Walk(node Node, visitor Visitor) error {
	if node == nil {
		return nil
	}
	descend, err := visitor.Visit(node)
	if err != nil || !descend {
		return err
	}

	switch n := node.(type) {
	case *BinaryOp:
		if err := Walk(n.Left, visitor); err != nil {
			return err
		}
		return Walk(n.Right, visitor)
	case *UnaryOp:
		return Walk(n.Operand, visitor)
	case *Comparison:
		if err := Walk(n.Left, visitor); err != nil {
			return err
		}
		return Walk(n.Right, visitor)
	case *ListLiteral:
		for _, item := range n.Items {
			if err := Walk(item, visitor); err != nil {
				return err
			}
		}
	}
	return nil
}

// Depth returns the height of the tree. A single leaf has depth 1.
func Depth(node Node) int {
	switch n := node.(type) {
	case nil:
		return 0
	case *BinaryOp:
		return 1 + max(Depth(n.Left), Depth(n.Right))
	case *UnaryOp:
		return 1 + Depth(n.Operand)
	case *Comparison:
		return 1 + max(Depth(n.Left), Depth(n.Right))
	case *ListLiteral:
		d := 0
		for _, item := range n.Items {
			d = max(d, Depth(item))
		}
		return 1 + d
	default:
		return 1
	}
}
