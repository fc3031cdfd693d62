// Package lexer turns bracketed text into symbols for the nesting engine.
package lexer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jacoelho/ndparse/internal/symbol"
)

const (
	LBracket  symbol.Type = "lbracket"
	RBracket  symbol.Type = "rbracket"
	LParen    symbol.Type = "lparen"
	RParen    symbol.Type = "rparen"
	LBrace    symbol.Type = "lbrace"
	RBrace    symbol.Type = "rbrace"
	LAngle    symbol.Type = "langle"
	RAngle    symbol.Type = "rangle"
	Comma     symbol.Type = "comma"
	Semicolon symbol.Type = "semicolon"
	Space     symbol.Type = "space"
	Newline   symbol.Type = "newline"
	Number    symbol.Type = "number"
	Ident     symbol.Type = "ident"
	Operator  symbol.Type = "operator"
	String    symbol.Type = "string"
)

// Types lists every symbol type Lex can produce.
func Types() []symbol.Type {
	return []symbol.Type{
		LBracket, RBracket, LParen, RParen, LBrace, RBrace, LAngle, RAngle,
		Comma, Semicolon, Space, Newline, Number, Ident, Operator, String,
	}
}

// ErrLex is returned for input that cannot be tokenized.
var ErrLex = errors.New("lex error")

func lexError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrLex, fmt.Sprintf(format, args...))
}

var punctuation = map[byte]symbol.Type{
	'[': LBracket,
	']': RBracket,
	'(': LParen,
	')': RParen,
	'{': LBrace,
	'}': RBrace,
	'<': LAngle,
	'>': RAngle,
	',': Comma,
	';': Semicolon,
}

// Lex tokenizes input. Runs of spaces and tabs become one Space symbol and
// every line break becomes a Newline symbol, so callers can decide which of
// them are blank.
func Lex(input string) ([]symbol.Symbol, error) {
	symbols := make([]symbol.Symbol, 0, len(input)/2)
	pos := 0

	for pos < len(input) {
		ch := input[pos]

		switch {
		case ch == ' ' || ch == '\t':
			start := pos
			for pos < len(input) && (input[pos] == ' ' || input[pos] == '\t') {
				pos++
			}
			symbols = append(symbols, symbol.Symbol{Type: Space, Value: input[start:pos], Offset: start})
			continue
		case ch == '\r' && pos+1 < len(input) && input[pos+1] == '\n':
			symbols = append(symbols, symbol.Symbol{Type: Newline, Value: "\r\n", Offset: pos})
			pos += 2
			continue
		case ch == '\n' || ch == '\r':
			symbols = append(symbols, symbol.Symbol{Type: Newline, Value: input[pos : pos+1], Offset: pos})
			pos++
			continue
		case isDigit(ch) || (ch == '.' && pos+1 < len(input) && isDigit(input[pos+1])):
			sym, next, err := lexNumber(input, pos)
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, sym)
			pos = next
			continue
		case ch == '\'' || ch == '"':
			literal, next, err := lexString(input, pos)
			if err != nil {
				return nil, err
			}
			symbols = append(symbols, symbol.Symbol{Type: String, Value: literal, Offset: pos})
			pos = next
			continue
		case strings.IndexByte("+-*/^%", ch) >= 0:
			symbols = append(symbols, symbol.Symbol{Type: Operator, Value: input[pos : pos+1], Offset: pos})
			pos++
			continue
		}

		if typ, ok := punctuation[ch]; ok {
			symbols = append(symbols, symbol.Symbol{Type: typ, Value: input[pos : pos+1], Offset: pos})
			pos++
			continue
		}

		r, size := utf8.DecodeRuneInString(input[pos:])
		if isIdentifierStart(r) {
			start := pos
			pos += size
			for pos < len(input) {
				r, size = utf8.DecodeRuneInString(input[pos:])
				if !isIdentifierPart(r) {
					break
				}
				pos += size
			}
			symbols = append(symbols, symbol.Symbol{Type: Ident, Value: input[start:pos], Offset: start})
			continue
		}

		return nil, lexError("unexpected character %q at offset %d", r, pos)
	}

	return symbols, nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentifierStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentifierPart(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func lexNumber(input string, start int) (symbol.Symbol, int, error) {
	pos := start
	for pos < len(input) && isDigit(input[pos]) {
		pos++
	}

	if pos < len(input) && input[pos] == '.' {
		pos++
		for pos < len(input) && isDigit(input[pos]) {
			pos++
		}
	}

	if pos < len(input) && (input[pos] == 'e' || input[pos] == 'E') {
		exp := pos + 1
		if exp < len(input) && (input[exp] == '+' || input[exp] == '-') {
			exp++
		}
		if exp < len(input) && isDigit(input[exp]) {
			pos = exp
			for pos < len(input) && isDigit(input[pos]) {
				pos++
			}
		}
	}

	literal := input[start:pos]
	if _, err := strconv.ParseFloat(literal, 64); err != nil {
		return symbol.Symbol{}, 0, lexError("invalid number %q at offset %d", literal, start)
	}

	return symbol.Symbol{Type: Number, Value: literal, Offset: start}, pos, nil
}

func lexString(input string, start int) (string, int, error) {
	quote := input[start]
	var b strings.Builder

	for pos := start + 1; pos < len(input); pos++ {
		ch := input[pos]
		if ch == quote {
			return b.String(), pos + 1, nil
		}

		if ch == '\\' {
			pos++
			if pos >= len(input) {
				return "", 0, lexError("unterminated escape sequence at offset %d", start)
			}
			switch escaped := input[pos]; escaped {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(escaped)
			}
			continue
		}

		if ch == '\n' || ch == '\r' {
			return "", 0, lexError("unterminated string at offset %d", start)
		}

		b.WriteByte(ch)
	}

	return "", 0, lexError("unterminated string at offset %d", start)
}
