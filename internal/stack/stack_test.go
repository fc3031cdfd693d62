package stack

import (
	"testing"
)

func TestStack_New(t *testing.T) {
	t.Parallel()

	for name, s := range map[string]*Stack[int]{
		"new":           New[int](),
		"with_capacity": NewWithCapacity[int](8),
	} {
		if !s.IsEmpty() {
			t.Errorf("%s: stack should be empty", name)
		}
		if s.Size() != 0 {
			t.Errorf("%s: stack size = %d, want 0", name, s.Size())
		}
	}
}

func TestStack_PushAndPop(t *testing.T) {
	t.Parallel()

	s := New[int]()
	s.Push(1)
	s.Push(2, 3)

	if s.Size() != 3 {
		t.Fatalf("Push() stack size = %d, want 3", s.Size())
	}

	for _, want := range []int{3, 2, 1} {
		val, ok := s.Pop()
		if !ok || val != want {
			t.Fatalf("Pop() = %d, %t, want %d, true", val, ok, want)
		}
	}

	val, ok := s.Pop()
	if ok || val != 0 {
		t.Fatalf("Pop() from empty stack = %d, %t, want 0, false", val, ok)
	}
}

func TestStack_PeekAndPeekRef(t *testing.T) {
	t.Parallel()

	s := New[string]()

	if val, ok := s.Peek(); ok || val != "" {
		t.Fatalf("Peek() on empty stack = %q, %t, want \"\", false", val, ok)
	}
	if ref := s.PeekRef(); ref != nil {
		t.Fatal("PeekRef() on empty stack should return nil")
	}

	s.Push("first", "second")

	ref := s.PeekRef()
	if ref == nil || *ref != "second" {
		t.Fatalf("PeekRef() = %v, want pointer to second", ref)
	}
	*ref = "changed"

	if val, _ := s.Peek(); val != "changed" {
		t.Fatalf("Peek() after PeekRef write = %q, want changed", val)
	}
	if s.Size() != 2 {
		t.Fatalf("Peek() changed stack size to %d, want 2", s.Size())
	}
}

func TestStack_All(t *testing.T) {
	t.Parallel()

	s := New[int]()
	s.Push(1, 2, 3)

	var got []int
	for i, v := range s.All() {
		if v != i+1 {
			t.Fatalf("All() yielded %d at index %d", v, i)
		}
		got = append(got, v)
	}
	if len(got) != 3 {
		t.Fatalf("All() yielded %d items, want 3", len(got))
	}
}

func TestStack_Clone(t *testing.T) {
	t.Parallel()

	s := New[int]()
	s.Push(1, 2, 3)

	cloned := s.Clone()
	cloned.Push(999)
	*cloned.PeekRef() = 5

	if s.Size() != 3 {
		t.Fatalf("original size = %d after modifying clone, want 3", s.Size())
	}
	if val, _ := s.Peek(); val != 3 {
		t.Fatalf("original top = %d after modifying clone, want 3", val)
	}

	if empty := New[int]().Clone(); !empty.IsEmpty() {
		t.Fatal("Clone() of empty stack should be empty")
	}
}

func TestStack_Clear(t *testing.T) {
	t.Parallel()

	s := New[*int]()
	v := 1
	s.Push(&v, &v)
	s.Clear()

	if !s.IsEmpty() {
		t.Fatalf("Clear() left %d items", s.Size())
	}
}
