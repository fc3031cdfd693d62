// Package engine turns a flat stream of typed symbols into an N-dimensional
// array whose nesting is expressed with paired structural delimiters.
//
// Two modes are provided. ParseWithShape validates the input against a shape
// declared up front. ParseInferringShape discovers the shape from the nesting
// and, when a delimiter type is registered both as structural and atomic,
// checkpoints each ambiguous open so that a later contradiction can be retried
// with that open read as an atomic group.
//
// Elements are produced depth-first, left to right. Shapes are outermost-first:
// [[1,2,3],[4,5,6]] has shape [2,3].
package engine

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/jacoelho/ndparse/internal/delim"
	"github.com/jacoelho/ndparse/internal/diagnostics"
	"github.com/jacoelho/ndparse/internal/symbol"
)

const (
	DefaultMaxDepth     = 64
	DefaultMaxRollbacks = 4096
)

// ErrParse wraps every failed Result returned through Result.Err.
var ErrParse = errors.New("parse failed")

// Interpreter turns a contiguous run of symbols into a domain value. It must
// not retain the slice after returning.
type Interpreter[T any] interface {
	Interpret(symbols []symbol.Symbol) (T, error)
}

// InterpreterFunc adapts a function to the Interpreter interface.
type InterpreterFunc[T any] func(symbols []symbol.Symbol) (T, error)

func (f InterpreterFunc[T]) Interpret(symbols []symbol.Symbol) (T, error) {
	return f(symbols)
}

// Result is the outcome of one parse. Elements and Shape are only meaningful
// when Success is true.
type Result[T any] struct {
	Elements    []T
	Shape       []int
	Success     bool
	Diagnostics []diagnostics.Issue
}

// Err returns nil on success, otherwise an error wrapping ErrParse and every
// diagnostic.
func (r Result[T]) Err() error {
	if r.Success {
		return nil
	}

	errs := make([]error, 0, len(r.Diagnostics))
	for _, issue := range r.Diagnostics {
		errs = append(errs, issue)
	}
	if len(errs) == 0 {
		return ErrParse
	}

	return fmt.Errorf("%w: %w", ErrParse, errors.Join(errs...))
}

type options struct {
	logger       *zap.Logger
	maxDepth     int
	maxRollbacks int
}

type Option func(*options)

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMaxDepth bounds the nesting depth; deeper input fails with depth_exceeded.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithMaxRollbacks bounds how many checkpoint rollbacks one inferring parse may
// perform before giving up with backtrack_limit.
func WithMaxRollbacks(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRollbacks = n
		}
	}
}

// Parser binds a registry and an interpreter. A Parser may be reused for
// sequential parses but refuses re-entrant use; concurrent parses need one
// Parser each.
type Parser[T any] struct {
	registry    *delim.Registry
	interpreter Interpreter[T]
	opts        options
	busy        atomic.Bool
}

func New[T any](registry *delim.Registry, interpreter Interpreter[T], opts ...Option) *Parser[T] {
	o := options{
		logger:       zap.NewNop(),
		maxDepth:     DefaultMaxDepth,
		maxRollbacks: DefaultMaxRollbacks,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Parser[T]{
		registry:    registry,
		interpreter: interpreter,
		opts:        o,
	}
}

// ParseWithShape reads one nested array from stream and checks it against shape.
func (p *Parser[T]) ParseWithShape(stream symbol.Stream, shape []int) Result[T] {
	if !p.busy.CompareAndSwap(false, true) {
		return failed[T](diagnostics.New(diagnostics.CodeParserBusy, 0, "parser is already running a parse"))
	}
	defer p.busy.Store(false)

	if issue := p.check(stream); issue != nil {
		return failed[T](*issue)
	}
	if len(shape) == 0 {
		return failed[T](diagnostics.New(diagnostics.CodeConfigInvalid, 0, "declared shape must have at least one dimension"))
	}
	for i, size := range shape {
		if size < 0 {
			return failed[T](diagnostics.New(diagnostics.CodeConfigInvalid, 0, "declared shape has negative size %d for dimension %d", size, i))
		}
	}

	m := newKnownMachine(p, stream, slices.Clone(shape))
	m.run()
	return m.result(m.shape)
}

// ParseInferringShape reads one nested array from stream and reports the shape
// implied by its nesting.
func (p *Parser[T]) ParseInferringShape(stream symbol.Stream) Result[T] {
	if !p.busy.CompareAndSwap(false, true) {
		return failed[T](diagnostics.New(diagnostics.CodeParserBusy, 0, "parser is already running a parse"))
	}
	defer p.busy.Store(false)

	if issue := p.check(stream); issue != nil {
		return failed[T](*issue)
	}

	m := newInferMachine(p, stream)
	m.run()
	return m.result(m.inferredShape())
}

func (p *Parser[T]) check(stream symbol.Stream) *diagnostics.Issue {
	var issue diagnostics.Issue
	switch {
	case p.registry == nil:
		issue = diagnostics.New(diagnostics.CodeConfigInvalid, 0, "no delimiter registry configured")
	case p.interpreter == nil:
		issue = diagnostics.New(diagnostics.CodeConfigInvalid, 0, "no element interpreter configured")
	case stream == nil:
		issue = diagnostics.New(diagnostics.CodeConfigInvalid, 0, "no symbol stream given")
	default:
		return nil
	}
	return &issue
}

// ParseWithShape is a one-shot form of Parser.ParseWithShape.
func ParseWithShape[T any](shape []int, stream symbol.Stream, interpreter Interpreter[T], registry *delim.Registry, opts ...Option) Result[T] {
	return New(registry, interpreter, opts...).ParseWithShape(stream, shape)
}

// ParseInferringShape is a one-shot form of Parser.ParseInferringShape.
func ParseInferringShape[T any](stream symbol.Stream, interpreter Interpreter[T], registry *delim.Registry, opts ...Option) Result[T] {
	return New(registry, interpreter, opts...).ParseInferringShape(stream)
}

func failed[T any](issue diagnostics.Issue) Result[T] {
	return Result[T]{Diagnostics: []diagnostics.Issue{issue}}
}
