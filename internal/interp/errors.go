package interp

import (
	"errors"
	"fmt"
)

// ErrInvalidElement indicates a symbol run that an interpreter cannot turn into a value.
var ErrInvalidElement = errors.New("invalid element")

func elementError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidElement, fmt.Sprintf(format, args...))
}
