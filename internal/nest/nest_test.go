package nest

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		shape    []int
		elements []int
		want     any
	}{
		{name: "vector", shape: []int{3}, elements: []int{1, 2, 3}, want: []any{1, 2, 3}},
		{name: "matrix", shape: []int{2, 3}, elements: []int{1, 2, 3, 4, 5, 6}, want: []any{[]any{1, 2, 3}, []any{4, 5, 6}}},
		{
			name:     "cube",
			shape:    []int{2, 1, 2},
			elements: []int{1, 2, 3, 4},
			want:     []any{[]any{[]any{1, 2}}, []any{[]any{3, 4}}},
		},
		{name: "empty", shape: []int{0}, elements: nil, want: []any{}},
		{name: "empty_rows", shape: []int{2, 0}, elements: nil, want: []any{[]any{}, []any{}}},
		{name: "no_rows", shape: []int{0, 3}, elements: nil, want: []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Nest(tt.shape, tt.elements)
			if err != nil {
				t.Fatalf("Nest() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Nest() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNestErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		shape    []int
		elements []int
	}{
		{name: "no_dimensions", shape: nil, elements: []int{1}},
		{name: "negative", shape: []int{-1}, elements: nil},
		{name: "too_few", shape: []int{2, 2}, elements: []int{1, 2, 3}},
		{name: "too_many", shape: []int{2}, elements: []int{1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := Nest(tt.shape, tt.elements); !errors.Is(err, ErrInconsistent) {
				t.Fatalf("Nest() error = %v, want ErrInconsistent", err)
			}
		})
	}
}

func TestStridesAndOffset(t *testing.T) {
	t.Parallel()

	shape := []int{2, 3, 4}
	if diff := cmp.Diff([]int{12, 4, 1}, Strides(shape)); diff != "" {
		t.Fatalf("Strides() mismatch (-want +got):\n%s", diff)
	}
	if got := Size(shape); got != 24 {
		t.Fatalf("Size() = %d, want 24", got)
	}

	offset, err := Offset(shape, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("Offset() error = %v", err)
	}
	if offset != 23 {
		t.Fatalf("Offset() = %d, want 23", offset)
	}

	if _, err := Offset(shape, []int{2, 0, 0}); !errors.Is(err, ErrInconsistent) {
		t.Fatalf("Offset() out of range error = %v, want ErrInconsistent", err)
	}
	if _, err := Offset(shape, []int{0, 0}); !errors.Is(err, ErrInconsistent) {
		t.Fatalf("Offset() short index error = %v, want ErrInconsistent", err)
	}
}

func TestFlattenInvertsNest(t *testing.T) {
	t.Parallel()

	shapes := [][]int{{4}, {2, 2}, {3, 1}, {1, 2, 2}, {2, 0}}
	for _, shape := range shapes {
		elements := make([]any, Size(shape))
		for i := range elements {
			elements[i] = float64(i)
		}

		nested, err := Nest(shape, elements)
		if err != nil {
			t.Fatalf("Nest(%v) error = %v", shape, err)
		}

		gotElements, gotShape, err := Flatten(nested)
		if err != nil {
			t.Fatalf("Flatten(%v) error = %v", nested, err)
		}
		if diff := cmp.Diff(shape, gotShape); diff != "" {
			t.Fatalf("Flatten(%v) shape mismatch (-want +got):\n%s", nested, diff)
		}
		if diff := cmp.Diff(elements, gotElements); diff != "" {
			t.Fatalf("Flatten(%v) elements mismatch (-want +got):\n%s", nested, diff)
		}
	}
}

func TestFlattenRejectsRagged(t *testing.T) {
	t.Parallel()

	values := []any{
		1.0,
		[]any{[]any{1.0, 2.0}, []any{3.0}},
		[]any{[]any{1.0}, 2.0},
		[]any{1.0, []any{2.0}},
	}
	for _, value := range values {
		if _, _, err := Flatten(value); !errors.Is(err, ErrInconsistent) {
			t.Fatalf("Flatten(%v) error = %v, want ErrInconsistent", value, err)
		}
	}
}
