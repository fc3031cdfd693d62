package interp

import (
	"strconv"
	"strings"

	"github.com/jacoelho/ndparse/internal/lexer"
	"github.com/jacoelho/ndparse/internal/symbol"
)

// Number accepts a single numeric literal with an optional sign.
type Number struct{}

func (Number) Interpret(symbols []symbol.Symbol) (float64, error) {
	sign := 1.0
	if len(symbols) == 2 && symbols[0].Type == lexer.Operator {
		switch symbols[0].Value {
		case "-":
			sign = -1
		case "+":
		default:
			return 0, elementError("unexpected %s", symbols[0])
		}
		symbols = symbols[1:]
	}

	if len(symbols) != 1 || symbols[0].Type != lexer.Number {
		return 0, elementError("expected a single number, got %d symbol(s)", len(symbols))
	}

	value, err := strconv.ParseFloat(symbols[0].Value, 64)
	if err != nil {
		return 0, elementError("invalid number %q at offset %d", symbols[0].Value, symbols[0].Offset)
	}
	return sign * value, nil
}

// Text joins the values of the run. A single space separates two adjacent
// words (identifiers, numbers or strings); nothing else is spaced, so the
// result does not depend on how the source was laid out.
type Text struct{}

func (Text) Interpret(symbols []symbol.Symbol) (string, error) {
	if len(symbols) == 0 {
		return "", elementError("element is empty")
	}
	if len(symbols) == 1 && symbols[0].Type == lexer.String {
		return symbols[0].Value, nil
	}

	var b strings.Builder
	for i, sym := range symbols {
		if i > 0 && isWord(symbols[i-1].Type) && isWord(sym.Type) {
			b.WriteByte(' ')
		}
		b.WriteString(sym.Value)
	}

	return b.String(), nil
}

func isWord(t symbol.Type) bool {
	return t == lexer.Ident || t == lexer.Number || t == lexer.String
}
