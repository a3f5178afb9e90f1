package evaluator

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNumber
	KindText
	KindBool
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "boolean"
	case KindSequence:
		return "sequence"
	default:
		return "invalid"
	}
}

// Value is the typed result of evaluating a node. The zero Value is invalid.
type Value struct {
	kind    Kind
	num     float64
	text    string
	boolean bool
	items   []Value
}

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, boolean: b} }

// Sequence returns an ordered sequence holding a copy of items.
func Sequence(items ...Value) Value {
	cp := make([]Value, len(items))
	copy(cp, items)
	return Value{kind: KindSequence, items: cp}
}

func (v Value) Kind() Kind { return v.kind }

// AsNumber returns the number and true if v is a number.
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }

// AsText returns the text and true if v is text.
func (v Value) AsText() (string, bool) { return v.text, v.kind == KindText }

// AsBool returns the boolean and true if v is a boolean.
func (v Value) AsBool() (bool, bool) { return v.boolean, v.kind == KindBool }

// Items returns a copy of the elements and true if v is a sequence.
func (v Value) Items() ([]Value, bool) {
	if v.kind != KindSequence {
		return nil, false
	}
	cp := make([]Value, len(v.items))
	copy(cp, v.items)
	return cp, true
}

// Len returns the number of elements of a sequence, 0 otherwise.
func (v Value) Len() int { return len(v.items) }

// Equal reports value equality. Values of different kinds are never equal;
// sequences are equal when they have equal elements in the same order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumber:
		return v.num == o.num
	case KindText:
		return v.text == o.text
	case KindBool:
		return v.boolean == o.boolean
	case KindSequence:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Contains reports whether a sequence holds an element equal to x.
func (v Value) Contains(x Value) bool {
	for _, item := range v.items {
		if item.Equal(x) {
			return true
		}
	}
	return false
}

func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindText:
		return v.text
	case KindBool:
		if v.boolean {
			return "True"
		}
		return "False"
	case KindSequence:
		parts := make([]string, len(v.items))
		for i, item := range v.items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<invalid>"
	}
}

// Interface converts v to plain Go values: float64, string, bool or []any.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindText:
		return v.text
	case KindBool:
		return v.boolean
	case KindSequence:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON encodes the plain Go form of v.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// FromAttribute converts a chart attribute into a Value.
func FromAttribute(raw any) (Value, error) {
	switch val := raw.(type) {
	case Value:
		return val, nil
	case string:
		return Text(val), nil
	case bool:
		return Bool(val), nil
	case []any:
		items := make([]Value, len(val))
		for i, item := range val {
			v, err := FromAttribute(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return Value{kind: KindSequence, items: items}, nil
	case []string:
		items := make([]Value, len(val))
		for i, item := range val {
			items[i] = Text(item)
		}
		return Value{kind: KindSequence, items: items}, nil
	case []float64:
		items := make([]Value, len(val))
		for i, item := range val {
			items[i] = Number(item)
		}
		return Value{kind: KindSequence, items: items}, nil
	case nil:
		return Value{}, fmt.Errorf("attribute has no value")
	}

	f, err := convertToFloat64(raw)
	if err != nil {
		return Value{}, err
	}
	return Number(f), nil
}

// convertToFloat64 converts a numeric value to float64.
func convertToFloat64(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case json.Number:
		return val.Float64()
	default:
		return 0, fmt.Errorf("unsupported attribute type %T", v)
	}
}
