// Package nest rebuilds nested arrays from the flat, row-major element lists
// produced by the engine.
package nest

import (
	"errors"
	"fmt"
)

var ErrInconsistent = errors.New("elements do not match shape")

// Size returns the number of elements an array of the given shape holds.
func Size(shape []int) int {
	size := 1
	for _, n := range shape {
		size *= n
	}
	return size
}

// Strides returns the row-major stride of each dimension.
func Strides(shape []int) []int {
	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return strides
}

// Offset maps a multi-index to its position in the flat element list.
func Offset(shape, index []int) (int, error) {
	if len(index) != len(shape) {
		return 0, fmt.Errorf("%w: index has %d coordinate(s), shape has %d", ErrInconsistent, len(index), len(shape))
	}

	offset := 0
	for i, stride := range Strides(shape) {
		if index[i] < 0 || index[i] >= shape[i] {
			return 0, fmt.Errorf("%w: index %d out of range for dimension %d of size %d", ErrInconsistent, index[i], i, shape[i])
		}
		offset += index[i] * stride
	}
	return offset, nil
}

// Nest arranges elements into nested []any values following shape. An empty
// dimension yields empty slices, never nil, so encoders print []. The shape
// is trusted; elements only has to hold exactly Size(shape) values.
func Nest[T any](shape []int, elements []T) (any, error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("%w: shape has no dimensions", ErrInconsistent)
	}
	for i, n := range shape {
		if n < 0 {
			return nil, fmt.Errorf("%w: negative size %d for dimension %d", ErrInconsistent, n, i)
		}
	}
	if want := Size(shape); len(elements) != want {
		return nil, fmt.Errorf("%w: shape %v holds %d element(s), got %d", ErrInconsistent, shape, want, len(elements))
	}

	return build(shape, elements), nil
}

func build[T any](shape []int, elements []T) []any {
	out := make([]any, shape[0])
	if len(shape) == 1 {
		for i, e := range elements {
			out[i] = e
		}
		return out
	}

	stride := Size(shape[1:])
	for i := range out {
		out[i] = build(shape[1:], elements[i*stride:(i+1)*stride])
	}
	return out
}

// Flatten is the inverse of Nest for rectangular input made of []any values.
func Flatten(value any) ([]any, []int, error) {
	var shape []int
	for v := value; ; {
		list, ok := v.([]any)
		if !ok {
			break
		}
		shape = append(shape, len(list))
		if len(list) == 0 {
			break
		}
		v = list[0]
	}
	if len(shape) == 0 {
		return nil, nil, fmt.Errorf("%w: value %v is not a list", ErrInconsistent, value)
	}

	elements := make([]any, 0, Size(shape))
	if err := flatten(value, shape, 0, &elements); err != nil {
		return nil, nil, err
	}
	return elements, shape, nil
}

func flatten(value any, shape []int, depth int, out *[]any) error {
	if depth == len(shape) {
		if _, ok := value.([]any); ok {
			return fmt.Errorf("%w: list nested deeper than %d dimension(s)", ErrInconsistent, len(shape))
		}
		*out = append(*out, value)
		return nil
	}

	list, ok := value.([]any)
	if !ok {
		return fmt.Errorf("%w: element %v found at dimension %d", ErrInconsistent, value, depth)
	}
	if len(list) != shape[depth] {
		return fmt.Errorf("%w: %d item(s) at dimension %d, want %d", ErrInconsistent, len(list), depth, shape[depth])
	}
	for _, item := range list {
		if err := flatten(item, shape, depth+1, out); err != nil {
			return err
		}
	}
	return nil
}
