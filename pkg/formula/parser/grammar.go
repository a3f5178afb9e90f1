package parser

import (
	"strconv"

	"orrery-hq/natal/pkg/formula/ast"
	formulaErrors "orrery-hq/natal/pkg/formula/errors"
	"orrery-hq/natal/pkg/formula/lexer"
)

// expression := or_expr
func (s *state) parseExpression() (ast.Node, error) {
	return s.parseOr()
}

// or_expr := and_expr ( OR and_expr )*
func (s *state) parseOr() (ast.Node, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()

	left, err := s.parseAnd()
	if err != nil {
		return nil, err
	}
	for s.peek().Kind == lexer.OR {
		s.advance()
		right, err := s.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Operator: ast.OperatorOr, Left: left, Right: right, Position: left.Pos()}
	}
	return left, nil
}

// and_expr := not_expr ( AND not_expr )*
func (s *state) parseAnd() (ast.Node, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()

	left, err := s.parseNot()
	if err != nil {
		return nil, err
	}
	for s.peek().Kind == lexer.AND {
		s.advance()
		right, err := s.parseNot()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Operator: ast.OperatorAnd, Left: left, Right: right, Position: left.Pos()}
	}
	return left, nil
}

// not_expr := NOT not_expr | comparison
func (s *state) parseNot() (ast.Node, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()

	if s.peek().Kind == lexer.NOT {
		tok := s.advance()
		operand, err := s.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Operator: ast.OperatorNot, Operand: operand, Position: tokenPos(tok)}, nil
	}
	return s.parseComparison()
}

var comparators = map[lexer.Kind]ast.Comparator{
	lexer.EQ:  ast.ComparatorEqual,
	lexer.NEQ: ast.ComparatorNotEqual,
	lexer.LT:  ast.ComparatorLessThan,
	lexer.GT:  ast.ComparatorGreaterThan,
	lexer.LTE: ast.ComparatorLessEqual,
	lexer.GTE: ast.ComparatorGreaterEqual,
	lexer.IN:  ast.ComparatorIn,
}

// comparison := primary ( comparator primary )?
func (s *state) parseComparison() (ast.Node, error) {
	left, err := s.parsePrimary()
	if err != nil {
		return nil, err
	}

	op, ok := comparators[s.peek().Kind]
	if !ok {
		return left, nil
	}
	s.advance()

	right, err := s.parsePrimary()
	if err != nil {
		return nil, err
	}

	if s.peek().Kind.IsComparator() {
		return nil, s.errorf("AND, OR or end of comparison",
			"chained comparisons are not allowed; combine them with AND")
	}

	return &ast.Comparison{Operator: op, Left: left, Right: right, Position: left.Pos()}, nil
}

var aggregators = map[lexer.Kind]ast.Aggregator{
	lexer.PLANETS: ast.AggregatorPlanets,
	lexer.ASPECTS: ast.AggregatorAspects,
	lexer.HOUSES:  ast.AggregatorHouses,
}

// primary := NUMBER | STRING | BOOLEAN | list_lit | aggregator_access
//
//	| property_access | IDENTIFIER | '(' expression ')'
func (s *state) parsePrimary() (ast.Node, error) {
	if err := s.enter(); err != nil {
		return nil, err
	}
	defer s.leave()

	tok := s.peek()
	pos := tokenPos(tok)

	switch tok.Kind {
	case lexer.NUMBER:
		s.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			perr := formulaErrors.NewParseError(pos, "number", tok.Describe())
			perr.Message = "number literal out of range"
			return nil, perr
		}
		return &ast.NumberLiteral{Value: v, Position: pos}, nil

	case lexer.STRING:
		s.advance()
		return &ast.StringLiteral{Value: tok.Value, Position: pos}, nil

	case lexer.BOOLEAN:
		s.advance()
		return &ast.BooleanLiteral{Value: tok.Value == "True", Position: pos}, nil

	case lexer.LBRACKET:
		return s.parseList()

	case lexer.PLANETS, lexer.ASPECTS, lexer.HOUSES:
		s.advance()
		prop, err := s.parseDottedProperty(tok)
		if err != nil {
			return nil, err
		}
		return &ast.AggregatorAccess{Aggregator: aggregators[tok.Kind], Property: prop, Position: pos}, nil

	case lexer.IDENTIFIER:
		s.advance()
		if s.peek().Kind != lexer.DOT {
			return &ast.Identifier{Name: tok.Value, Position: pos}, nil
		}
		prop, err := s.parseDottedProperty(tok)
		if err != nil {
			return nil, err
		}
		return &ast.PropertyAccess{Object: tok.Value, Property: prop, Position: pos}, nil

	case lexer.LPAREN:
		s.advance()
		if s.peek().Kind == lexer.RPAREN {
			return nil, s.errorf("expression", "empty parentheses")
		}
		expr, err := s.parseExpression()
		if err != nil {
			return nil, err
		}
		switch s.peek().Kind {
		case lexer.RPAREN:
			s.advance()
			return expr, nil
		case lexer.END:
			return nil, s.errorf("')'", "missing closing ')' for '(' at %s", pos)
		default:
			return nil, s.unexpected("')'")
		}

	case lexer.END:
		return nil, s.unexpected("expression")

	default:
		return nil, s.unexpected("expression")
	}
}

// parseDottedProperty consumes '.' IDENTIFIER after an object or aggregator.
func (s *state) parseDottedProperty(object lexer.Token) (string, error) {
	if s.peek().Kind != lexer.DOT {
		return "", s.errorf("'.'", "expected '.' after '%s'", object.Value)
	}
	s.advance()

	prop := s.peek()
	if prop.Kind != lexer.IDENTIFIER {
		return "", s.errorf("property name", "'.' after '%s' must be followed by a property name", object.Value)
	}
	s.advance()
	return prop.Value, nil
}

// list_lit := '[' ( primary (',' primary)* )? ']'
func (s *state) parseList() (ast.Node, error) {
	open := s.advance()
	list := &ast.ListLiteral{Items: []ast.Node{}, Position: tokenPos(open)}

	if s.peek().Kind == lexer.RBRACKET {
		s.advance()
		return list, nil
	}

	for {
		if s.peek().Kind == lexer.END {
			return nil, s.errorf("']'", "missing closing ']' for '[' at %s", list.Position)
		}
		item, err := s.parsePrimary()
		if err != nil {
			return nil, err
		}
		list.Items = append(list.Items, item)

		switch s.peek().Kind {
		case lexer.COMMA:
			s.advance()
		case lexer.RBRACKET:
			s.advance()
			return list, nil
		case lexer.END:
			return nil, s.errorf("']'", "missing closing ']' for '[' at %s", list.Position)
		default:
			return nil, s.unexpected("',' or ']'")
		}
	}
}
