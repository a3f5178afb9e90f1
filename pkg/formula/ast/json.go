package ast

import "encoding/json"

// ToMap converts a tree into nested maps keyed by "type" plus the node's
// fields, suitable for JSON encoding. Positions are rendered as "line:col".
func ToMap(node Node) map[string]any {
	if node == nil {
		return nil
	}
	m := map[string]any{"position": node.Pos().String()}

	switch n := node.(type) {
	case *BinaryOp:
		m["type"] = "BinaryOp"
		m["operator"] = string(n.Operator)
		m["left"] = ToMap(n.Left)
		m["right"] = ToMap(n.Right)
	case *UnaryOp:
		m["type"] = "UnaryOp"
		m["operator"] = string(n.Operator)
		m["operand"] = ToMap(n.Operand)
	case *Comparison:
		m["type"] = "Comparison"
		m["operator"] = string(n.Operator)
		m["left"] = ToMap(n.Left)
		m["right"] = ToMap(n.Right)
	case *PropertyAccess:
		m["type"] = "PropertyAccess"
		m["object"] = n.Object
		m["property"] = n.Property
	case *AggregatorAccess:
		m["type"] = "AggregatorAccess"
		m["aggregator"] = string(n.Aggregator)
		m["property"] = n.Property
	case *Identifier:
		m["type"] = "Identifier"
		m["name"] = n.Name
	case *NumberLiteral:
		m["type"] = "NumberLiteral"
		m["value"] = n.Value
	case *StringLiteral:
		m["type"] = "StringLiteral"
		m["value"] = n.Value
	case *BooleanLiteral:
		m["type"] = "BooleanLiteral"
		m["value"] = n.Value
	case *ListLiteral:
		m["type"] = "ListLiteral"
		items := make([]any, len(n.Items))
		for i, item := range n.Items {
			items[i] = ToMap(item)
		}
		m["items"] = items
	}
	return m
}

// MarshalTree encodes a tree as indented JSON.
func MarshalTree(node Node) ([]byte, error) {
	return json.MarshalIndent(ToMap(node), "", "  ")
}
