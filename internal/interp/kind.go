// Package interp provides element interpreters for the nesting engine:
// arithmetic expressions, plain numbers and raw text.
package interp

import (
	"errors"
	"fmt"
	"slices"

	"github.com/jacoelho/ndparse/internal/engine"
	"github.com/jacoelho/ndparse/internal/symbol"
)

// Kind names an interpreter selectable from a profile.
type Kind string

const (
	KindArithmetic Kind = "arithmetic"
	KindNumber     Kind = "number"
	KindText       Kind = "text"
)

var ErrUnknownKind = errors.New("unknown interpreter")

// Kinds lists the supported interpreter names in sorted order.
func Kinds() []Kind {
	kinds := []Kind{KindArithmetic, KindNumber, KindText}
	slices.Sort(kinds)
	return kinds
}

// Lookup returns the interpreter for kind with its values boxed as any, which
// is what callers rendering heterogeneous results need.
func Lookup(kind Kind) (engine.Interpreter[any], error) {
	switch kind {
	case KindArithmetic:
		return boxed[float64](Arithmetic{}), nil
	case KindNumber:
		return boxed[float64](Number{}), nil
	case KindText:
		return boxed[string](Text{}), nil
	default:
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnknownKind, kind, Kinds())
	}
}

func boxed[T any](in engine.Interpreter[T]) engine.Interpreter[any] {
	return engine.InterpreterFunc[any](func(symbols []symbol.Symbol) (any, error) {
		value, err := in.Interpret(symbols)
		if err != nil {
			return nil, err
		}
		return value, nil
	})
}
