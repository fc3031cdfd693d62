package interp

import (
	"math"
	"strconv"

	"github.com/jacoelho/ndparse/internal/lexer"
	"github.com/jacoelho/ndparse/internal/symbol"
)

var constants = map[string]float64{
	"pi":  math.Pi,
	"e":   math.E,
	"inf": math.Inf(1),
}

// Arithmetic evaluates numeric expressions with + - * / % ^, unary minus and
// grouping. Groups may use any delimiter pair in Groups; the default accepts
// parentheses and braces.
type Arithmetic struct {
	Groups map[symbol.Type]symbol.Type
}

var defaultGroups = map[symbol.Type]symbol.Type{
	lexer.LParen: lexer.RParen,
	lexer.LBrace: lexer.RBrace,
}

func (a Arithmetic) Interpret(symbols []symbol.Symbol) (float64, error) {
	groups := a.Groups
	if groups == nil {
		groups = defaultGroups
	}

	p := arithmeticParser{symbols: symbols, groups: groups}
	if len(symbols) == 0 {
		return 0, elementError("expression is empty")
	}

	value, err := p.parseExpression()
	if err != nil {
		return 0, err
	}

	if !p.atEnd() {
		sym := p.current()
		return 0, elementError("unexpected %s", sym)
	}

	return value, nil
}

type arithmeticParser struct {
	symbols []symbol.Symbol
	pos     int
	groups  map[symbol.Type]symbol.Type
}

func (p *arithmeticParser) atEnd() bool {
	return p.pos >= len(p.symbols)
}

func (p *arithmeticParser) current() symbol.Symbol {
	if p.atEnd() {
		return symbol.Symbol{Type: symbol.EOF}
	}
	return p.symbols[p.pos]
}

func (p *arithmeticParser) advance() symbol.Symbol {
	sym := p.current()
	if !p.atEnd() {
		p.pos++
	}
	return sym
}

func (p *arithmeticParser) isOperator(ops ...string) bool {
	sym := p.current()
	if sym.Type != lexer.Operator {
		return false
	}
	for _, op := range ops {
		if sym.Value == op {
			return true
		}
	}
	return false
}

func (p *arithmeticParser) parseExpression() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}

	for p.isOperator("+", "-") {
		op := p.advance().Value
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}

	return left, nil
}

func (p *arithmeticParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for p.isOperator("*", "/", "%") {
		op := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op.Value {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, elementError("division by zero at offset %d", op.Offset)
			}
			left /= right
		case "%":
			if right == 0 {
				return 0, elementError("modulo by zero at offset %d", op.Offset)
			}
			left = math.Mod(left, right)
		}
	}

	return left, nil
}

func (p *arithmeticParser) parseUnary() (float64, error) {
	if p.isOperator("-", "+") {
		op := p.advance().Value
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == "-" {
			return -value, nil
		}
		return value, nil
	}

	return p.parsePower()
}

// parsePower is right associative: 2^3^2 is 2^(3^2).
func (p *arithmeticParser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	if p.isOperator("^") {
		p.advance()
		exponent, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exponent), nil
	}

	return base, nil
}

func (p *arithmeticParser) parsePrimary() (float64, error) {
	sym := p.advance()

	switch sym.Type {
	case lexer.Number:
		value, err := strconv.ParseFloat(sym.Value, 64)
		if err != nil {
			return 0, elementError("invalid number %q at offset %d", sym.Value, sym.Offset)
		}
		return value, nil
	case lexer.Ident:
		if value, ok := constants[sym.Value]; ok {
			return value, nil
		}
		return 0, elementError("unknown identifier %q at offset %d", sym.Value, sym.Offset)
	case symbol.EOF:
		return 0, elementError("unexpected end of expression")
	}

	if close, ok := p.groups[sym.Type]; ok {
		value, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		if end := p.advance(); end.Type != close {
			return 0, elementError("expected %s to close group at offset %d, found %s", close, sym.Offset, end)
		}
		return value, nil
	}

	return 0, elementError("unexpected %s", sym)
}
