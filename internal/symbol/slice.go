package symbol

// SliceStream serves symbols from an in-memory slice. Save and Restore are O(1).
type SliceStream struct {
	symbols []Symbol
	pos     int
}

func NewSliceStream(symbols []Symbol) *SliceStream {
	return &SliceStream{symbols: symbols}
}

func (s *SliceStream) Peek() Symbol {
	if s.pos >= len(s.symbols) {
		return Symbol{Type: EOF, Offset: s.endOffset()}
	}
	return s.symbols[s.pos]
}

func (s *SliceStream) Next() Symbol {
	sym := s.Peek()
	if s.pos < len(s.symbols) {
		s.pos++
	}
	return sym
}

func (s *SliceStream) AtEnd() bool {
	return s.pos >= len(s.symbols)
}

func (s *SliceStream) Save() Mark {
	return Mark(s.pos)
}

// Restore clamps marks outside the slice to the nearest valid position.
func (s *SliceStream) Restore(m Mark) {
	pos := int(m)
	switch {
	case pos < 0:
		pos = 0
	case pos > len(s.symbols):
		pos = len(s.symbols)
	}
	s.pos = pos
}

// Remaining returns the unconsumed symbols without advancing.
func (s *SliceStream) Remaining() []Symbol {
	return s.symbols[s.pos:]
}

func (s *SliceStream) endOffset() int {
	if len(s.symbols) == 0 {
		return 0
	}
	last := s.symbols[len(s.symbols)-1]
	return last.Offset + len(last.Value)
}
