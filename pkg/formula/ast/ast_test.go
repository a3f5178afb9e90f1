package ast

import (
	"encoding/json"
	"errors"
	"testing"
)

// sunCapNotRx is Sun.Sign == Capricorn AND NOT Mars.Retrograde.
func sunCapNotRx() Node {
	return &BinaryOp{
		Operator: OperatorAnd,
		Left: &Comparison{
			Operator: ComparatorEqual,
			Left:     &PropertyAccess{Object: "Sun", Property: "Sign", Position: Position{1, 0}},
			Right:    &Identifier{Name: "Capricorn", Position: Position{1, 12}},
			Position: Position{1, 9},
		},
		Right: &UnaryOp{
			Operator: OperatorNot,
			Operand:  &PropertyAccess{Object: "Mars", Property: "Retrograde", Position: Position{1, 30}},
			Position: Position{1, 26},
		},
		Position: Position{1, 22},
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		node Node
		want string
	}{
		{sunCapNotRx(), "AND(==(Sun.Sign, Capricorn), NOT(Mars.Retrograde))"},
		{&NumberLiteral{Value: 10}, "10"},
		{&NumberLiteral{Value: 2.5}, "2.5"},
		{&StringLiteral{Value: `say "hi"`}, `"say \"hi\""`},
		{&BooleanLiteral{Value: false}, "False"},
		{&AggregatorAccess{Aggregator: AggregatorPlanets, Property: "Sign"}, "planets.Sign"},
		{&ListLiteral{Items: []Node{&Identifier{Name: "Leo"}, &NumberLiteral{Value: 1}}}, "[Leo, 1]"},
		{&Comparison{Operator: ComparatorIn, Left: &Identifier{Name: "Leo"}}, "IN(Leo, <nil>)"},
	}
	for _, tt := range tests {
		if got := tt.node.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestEqual_IgnoresPositions(t *testing.T) {
	a := sunCapNotRx()
	b := sunCapNotRx()
	b.(*BinaryOp).Position = Position{3, 7}
	if !Equal(a, b) {
		t.Error("Equal() = false for trees differing only in position")
	}
	b.(*BinaryOp).Operator = OperatorOr
	if Equal(a, b) {
		t.Error("Equal() = true for different operators")
	}
}

func TestWalk(t *testing.T) {
	var visited []string
	err := Walk(sunCapNotRx(), VisitorFunc(func(n Node) (bool, error) {
		visited = append(visited, n.String())
		return true, nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if len(visited) != 6 {
		t.Fatalf("visited %d nodes, want 6: %v", len(visited), visited)
	}
	if visited[2] != "Sun.Sign" || visited[5] != "Mars.Retrograde" {
		t.Errorf("visit order = %v", visited)
	}
}

func TestWalk_SkipAndAbort(t *testing.T) {
	count := 0
	_ = Walk(sunCapNotRx(), VisitorFunc(func(n Node) (bool, error) {
		count++
		_, isComparison := n.(*Comparison)
		return !isComparison, nil
	}))
	if count != 4 {
		t.Errorf("visited %d nodes with comparison skipped, want 4", count)
	}

	stop := errors.New("stop")
	err := Walk(sunCapNotRx(), VisitorFunc(func(n Node) (bool, error) {
		if _, ok := n.(*UnaryOp); ok {
			return false, stop
		}
		return true, nil
	}))
	if !errors.Is(err, stop) {
		t.Errorf("Walk() error = %v, want stop", err)
	}
}

func TestDepth(t *testing.T) {
	if got := Depth(nil); got != 0 {
		t.Errorf("Depth(nil) = %d", got)
	}
	if got := Depth(&Identifier{Name: "x"}); got != 1 {
		t.Errorf("Depth(leaf) = %d", got)
	}
	if got := Depth(sunCapNotRx()); got != 3 {
		t.Errorf("Depth() = %d, want 3", got)
	}
}

func TestPosition(t *testing.T) {
	if got := (Position{2, 15}).String(); got != "2:15" {
		t.Errorf("String() = %q", got)
	}
	if (Position{}).IsValid() {
		t.Error("zero position is valid")
	}
	if got := (Position{}).String(); got != "<unknown>" {
		t.Errorf("String() = %q", got)
	}
}

func TestMarshalTree(t *testing.T) {
	data, err := MarshalTree(sunCapNotRx())
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded["type"] != "BinaryOp" || decoded["operator"] != "AND" || decoded["position"] != "1:22" {
		t.Errorf("root = %v", decoded)
	}
	left := decoded["left"].(map[string]any)
	if left["type"] != "Comparison" || left["operator"] != "==" {
		t.Errorf("left = %v", left)
	}
	prop := left["left"].(map[string]any)
	if prop["object"] != "Sun" || prop["property"] != "Sign" {
		t.Errorf("property = %v", prop)
	}

	list := ToMap(&ListLiteral{Items: []Node{&NumberLiteral{Value: 1}}, Position: Position{1, 0}})
	if items := list["items"].([]any); len(items) != 1 {
		t.Errorf("list items = %v", items)
	}
	if ToMap(nil) != nil {
		t.Error("ToMap(nil) != nil")
	}
}
