// Package stack provides the LIFO containers behind the engine's level
// tracking and checkpoint manager.
package stack

import (
	"iter"
	"slices"
)

type Stack[T any] struct {
	items []T
}

func New[T any]() *Stack[T] {
	return &Stack[T]{}
}

// NewWithCapacity reduces allocations when the expected nesting depth is known.
func NewWithCapacity[T any](capacity int) *Stack[T] {
	return &Stack[T]{
		items: make([]T, 0, capacity),
	}
}

// Push adds elements in order with the last element at the top.
func (s *Stack[T]) Push(items ...T) {
	s.items = append(s.items, items...)
}

func (s *Stack[T]) Pop() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}

	index := len(s.items) - 1
	item := s.items[index]
	var zero T
	s.items[index] = zero
	s.items = s.items[:index]
	return item, true
}

func (s *Stack[T]) Peek() (T, bool) {
	if len(s.items) == 0 {
		var zero T
		return zero, false
	}

	return s.items[len(s.items)-1], true
}

// PeekRef allows modifying the top element in place.
func (s *Stack[T]) PeekRef() *T {
	if len(s.items) == 0 {
		return nil
	}

	return &s.items[len(s.items)-1]
}

func (s *Stack[T]) IsEmpty() bool {
	return len(s.items) == 0
}

func (s *Stack[T]) Size() int {
	return len(s.items)
}

// All iterates from bottom to top.
func (s *Stack[T]) All() iter.Seq2[int, T] {
	return slices.All(s.items)
}

// Clone copies the items; later pushes and pops on either stack are independent.
func (s *Stack[T]) Clone() *Stack[T] {
	return &Stack[T]{
		items: slices.Clone(s.items),
	}
}

func (s *Stack[T]) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}
