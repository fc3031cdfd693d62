// Package delim holds the delimiter configuration for the nesting engine:
// structural pairs that define array nesting, atomic pairs whose contents are
// handed whole to an element interpreter, the separator and the blank types.
//
// Configuration happens on a Builder. Build validates it and returns an
// immutable Registry that is safe to share between concurrent parses.
package delim

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/jacoelho/ndparse/internal/symbol"
)

// ErrConfig is the sentinel for every registry configuration failure.
var ErrConfig = errors.New("delimiter configuration error")

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

type set map[symbol.Type]struct{}

// mapping associates each open type with the close types that end it.
type mapping struct {
	closes   map[symbol.Type]set
	closeFor map[symbol.Type]set
}

func newMapping() mapping {
	return mapping{
		closes:   make(map[symbol.Type]set),
		closeFor: make(map[symbol.Type]set),
	}
}

func (m mapping) add(open, close symbol.Type) {
	if m.closes[open] == nil {
		m.closes[open] = make(set)
	}
	m.closes[open][close] = struct{}{}

	if m.closeFor[close] == nil {
		m.closeFor[close] = make(set)
	}
	m.closeFor[close][open] = struct{}{}
}

func (m mapping) isOpen(t symbol.Type) bool {
	_, ok := m.closes[t]
	return ok
}

func (m mapping) isClose(t symbol.Type) bool {
	_, ok := m.closeFor[t]
	return ok
}

func (m mapping) closesGroup(open, close symbol.Type) bool {
	_, ok := m.closes[open][close]
	return ok
}

func (m mapping) closeSet(open symbol.Type) []symbol.Type {
	return slices.Sorted(maps.Keys(m.closes[open]))
}

func (m mapping) clone() mapping {
	out := newMapping()
	for open, closes := range m.closes {
		for close := range closes {
			out.add(open, close)
		}
	}
	return out
}

// Builder collects delimiter configuration. It is not safe for concurrent use.
type Builder struct {
	structural mapping
	atomic     mapping
	separator  symbol.Type
	blanks     set
}

func NewBuilder() *Builder {
	return &Builder{
		structural: newMapping(),
		atomic:     newMapping(),
		blanks:     make(set),
	}
}

// RegisterStructural adds a structural pair. One open type may be closed by
// several close types; call again with the same open to add another.
func (b *Builder) RegisterStructural(open, close symbol.Type) error {
	if err := b.checkDelimiter(open, close); err != nil {
		return err
	}
	if open == close {
		return configError("structural open and close must differ, got %q for both", open)
	}
	if b.structural.isClose(open) {
		return configError("%q is already a structural close and cannot open a group", open)
	}
	if b.structural.isOpen(close) {
		return configError("%q is already a structural open and cannot close a group", close)
	}

	b.structural.add(open, close)
	return nil
}

// RegisterAtomic adds an atomic pair. Open and close may be the same type,
// which makes the pair behave like quotes.
func (b *Builder) RegisterAtomic(open, close symbol.Type) error {
	if err := b.checkDelimiter(open, close); err != nil {
		return err
	}

	b.atomic.add(open, close)
	return nil
}

// SetSeparator configures the element separator. Exactly one separator type
// is allowed; setting the same type twice is a no-op.
func (b *Builder) SetSeparator(t symbol.Type) error {
	if t == symbol.EOF {
		return configError("separator type must not be empty")
	}
	if b.separator != "" && b.separator != t {
		return configError("separator already set to %q, cannot also use %q", b.separator, t)
	}
	if b.isDelimiter(t) {
		return configError("%q is registered as a delimiter and cannot be the separator", t)
	}
	if _, ok := b.blanks[t]; ok {
		return configError("%q is marked blank and cannot be the separator", t)
	}

	b.separator = t
	return nil
}

func (b *Builder) MarkBlank(t symbol.Type) error {
	if t == symbol.EOF {
		return configError("blank type must not be empty")
	}
	if b.isDelimiter(t) {
		return configError("%q is registered as a delimiter and cannot be blank", t)
	}
	if t == b.separator {
		return configError("%q is the separator and cannot be blank", t)
	}

	b.blanks[t] = struct{}{}
	return nil
}

func (b *Builder) UnmarkBlank(t symbol.Type) {
	delete(b.blanks, t)
}

func (b *Builder) ClearBlanks() {
	clear(b.blanks)
}

// Build validates the configuration and freezes it. The Builder may keep being
// used afterwards without affecting the returned Registry.
func (b *Builder) Build() (*Registry, error) {
	if len(b.structural.closes) == 0 {
		return nil, configError("at least one structural delimiter pair is required")
	}
	if b.separator == "" {
		return nil, configError("a separator type is required")
	}

	return &Registry{
		structural: b.structural.clone(),
		atomic:     b.atomic.clone(),
		separator:  b.separator,
		blanks:     maps.Clone(b.blanks),
	}, nil
}

func (b *Builder) checkDelimiter(open, close symbol.Type) error {
	if open == symbol.EOF || close == symbol.EOF {
		return configError("delimiter types must not be empty")
	}
	for _, t := range []symbol.Type{open, close} {
		if _, ok := b.blanks[t]; ok {
			return configError("%q is marked blank and cannot be a delimiter", t)
		}
		if t == b.separator {
			return configError("%q is the separator and cannot be a delimiter", t)
		}
	}
	return nil
}

func (b *Builder) isDelimiter(t symbol.Type) bool {
	return b.structural.isOpen(t) || b.structural.isClose(t) ||
		b.atomic.isOpen(t) || b.atomic.isClose(t)
}

// Registry is the validated, read-only delimiter configuration.
type Registry struct {
	structural mapping
	atomic     mapping
	separator  symbol.Type
	blanks     set
}

func (r *Registry) IsStructuralOpen(t symbol.Type) bool  { return r.structural.isOpen(t) }
func (r *Registry) IsStructuralClose(t symbol.Type) bool { return r.structural.isClose(t) }
func (r *Registry) IsAtomicOpen(t symbol.Type) bool      { return r.atomic.isOpen(t) }
func (r *Registry) IsAtomicClose(t symbol.Type) bool     { return r.atomic.isClose(t) }
func (r *Registry) IsSeparator(t symbol.Type) bool       { return t == r.separator }
func (r *Registry) Separator() symbol.Type               { return r.separator }

func (r *Registry) IsBlank(t symbol.Type) bool {
	_, ok := r.blanks[t]
	return ok
}

// IsAmbiguous reports whether t opens both a structural and an atomic group.
func (r *Registry) IsAmbiguous(t symbol.Type) bool {
	return r.structural.isOpen(t) && r.atomic.isOpen(t)
}

// ClosesStructural reports whether close ends a structural group opened by open.
func (r *Registry) ClosesStructural(open, close symbol.Type) bool {
	return r.structural.closesGroup(open, close)
}

// ClosesAtomic reports whether close ends an atomic group opened by open.
func (r *Registry) ClosesAtomic(open, close symbol.Type) bool {
	return r.atomic.closesGroup(open, close)
}

// CloseSetFor returns the sorted structural close types for open.
func (r *Registry) CloseSetFor(open symbol.Type) []symbol.Type {
	return r.structural.closeSet(open)
}

// AtomicCloseSetFor returns the sorted atomic close types for open.
func (r *Registry) AtomicCloseSetFor(open symbol.Type) []symbol.Type {
	return r.atomic.closeSet(open)
}
