// Package symbol defines the typed tokens the nesting engine consumes and the
// stream contract it reads them through.
package symbol

import "fmt"

// Type classifies a symbol. The engine makes every control decision on Type
// alone; Value is payload for element interpreters.
type Type string

// EOF is returned by streams once every symbol has been consumed.
const EOF Type = ""

// Symbol is a single typed token with its byte offset in the source.
type Symbol struct {
	Type   Type
	Value  string
	Offset int
}

func (s Symbol) String() string {
	if s.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%s %q at offset %d", s.Type, s.Value, s.Offset)
}

// Mark is an opaque stream position produced by Save.
type Mark int

// Stream is the source of symbols for one parse. Save and Restore must commute:
// after Restore(m), Peek and Next behave exactly as they did right after the
// Save call that produced m.
type Stream interface {
	Peek() Symbol
	Next() Symbol
	AtEnd() bool
	Save() Mark
	Restore(Mark)
}
