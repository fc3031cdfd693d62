package symbol

import "testing"

func testSymbols() []Symbol {
	return []Symbol{
		{Type: "open", Value: "[", Offset: 0},
		{Type: "number", Value: "12", Offset: 1},
		{Type: "close", Value: "]", Offset: 3},
	}
}

func TestSliceStreamPeekNext(t *testing.T) {
	t.Parallel()

	s := NewSliceStream(testSymbols())

	if got := s.Peek(); got.Type != "open" {
		t.Fatalf("Peek().Type = %q, want open", got.Type)
	}
	if got := s.Peek(); got.Type != "open" {
		t.Fatalf("second Peek().Type = %q, want open", got.Type)
	}

	for _, want := range []Type{"open", "number", "close"} {
		if got := s.Next(); got.Type != want {
			t.Fatalf("Next().Type = %q, want %q", got.Type, want)
		}
	}

	if !s.AtEnd() {
		t.Fatal("AtEnd() = false after consuming all symbols")
	}

	eof := s.Next()
	if eof.Type != EOF {
		t.Fatalf("Next() past end = %q, want EOF", eof.Type)
	}
	if eof.Offset != 4 {
		t.Fatalf("EOF offset = %d, want 4", eof.Offset)
	}
}

func TestSliceStreamSaveRestore(t *testing.T) {
	t.Parallel()

	s := NewSliceStream(testSymbols())
	s.Next()
	mark := s.Save()

	s.Next()
	s.Next()
	if !s.AtEnd() {
		t.Fatal("AtEnd() = false, want true")
	}

	s.Restore(mark)
	if got := s.Next(); got.Value != "12" {
		t.Fatalf("Next() after Restore = %q, want 12", got.Value)
	}
	if got := len(s.Remaining()); got != 1 {
		t.Fatalf("len(Remaining()) = %d, want 1", got)
	}
}

func TestSliceStreamRestoreClamps(t *testing.T) {
	t.Parallel()

	s := NewSliceStream(testSymbols())

	s.Restore(Mark(-3))
	if got := s.Save(); got != 0 {
		t.Fatalf("Save() after negative Restore = %d, want 0", got)
	}

	s.Restore(Mark(99))
	if !s.AtEnd() {
		t.Fatal("AtEnd() = false after Restore past end")
	}
}

func TestSymbolString(t *testing.T) {
	t.Parallel()

	if got := (Symbol{}).String(); got != "end of input" {
		t.Fatalf("EOF String() = %q, want end of input", got)
	}
	if got := (Symbol{Type: "number", Value: "7", Offset: 2}).String(); got != `number "7" at offset 2` {
		t.Fatalf("String() = %q", got)
	}
}
