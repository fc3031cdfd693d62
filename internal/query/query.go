// Package query selects parts of a nested array with RFC 9535 JSONPath
// expressions, e.g. "$[0]" for the first row or "$[*][1]" for a column.
package query

import (
	"errors"
	"fmt"

	"github.com/theory/jsonpath"
)

var (
	ErrInvalidPath = errors.New("invalid path")
	ErrNotFound    = errors.New("no value matched")
)

// Selector is a compiled path. A nil Selector selects the whole value.
type Selector struct {
	expr string
	path *jsonpath.Path
}

// Compile parses expr. An empty expression yields a nil Selector.
func Compile(expr string) (*Selector, error) {
	if expr == "" {
		return nil, nil
	}

	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPath, expr, err)
	}
	return &Selector{expr: expr, path: path}, nil
}

func (s *Selector) String() string {
	if s == nil {
		return "$"
	}
	return s.expr
}

// Select returns every node the path matches, in document order.
func (s *Selector) Select(value any) ([]any, error) {
	if s == nil {
		return []any{value}, nil
	}

	nodes := s.path.Select(value)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.expr)
	}
	return []any(nodes), nil
}

// Apply returns a single matched node as is and wraps several matches in a
// list, so "$[0]" yields the first row and "$[*][0]" the first column.
func (s *Selector) Apply(value any) (any, error) {
	nodes, err := s.Select(value)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 1 {
		return nodes[0], nil
	}
	return nodes, nil
}
