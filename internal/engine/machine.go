package engine

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/jacoelho/ndparse/internal/delim"
	"github.com/jacoelho/ndparse/internal/diagnostics"
	"github.com/jacoelho/ndparse/internal/stack"
	"github.com/jacoelho/ndparse/internal/symbol"
)

type state int

const (
	stateStart state = iota
	stateSequence
	stateResumeSequence
	stateOperator
	stateElement
	stateAtomic
	stateEnd
)

func (s state) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateSequence:
		return "sequence"
	case stateResumeSequence:
		return "resume-sequence"
	case stateOperator:
		return "operator"
	case stateElement:
		return "element"
	case stateAtomic:
		return "inside-atomic"
	case stateEnd:
		return "end"
	default:
		return "unknown"
	}
}

// level is one open structural group: the type that opened it and how many
// elements or closed subgroups it holds so far.
type level struct {
	open  symbol.Type
	count int
}

// machine is the state shared by both engine variants for one parse call.
type machine[T any] struct {
	registry    *delim.Registry
	interpreter Interpreter[T]
	stream      symbol.Stream
	log         *zap.Logger
	maxDepth    int

	levels   *stack.Stack[level]
	elements []T
	issues   []diagnostics.Issue
	done     bool

	buf    []symbol.Symbol
	atomic *stack.Stack[symbol.Type]
}

func newMachine[T any](p *Parser[T], stream symbol.Stream) machine[T] {
	return machine[T]{
		registry:    p.registry,
		interpreter: p.interpreter,
		stream:      stream,
		log:         p.opts.logger,
		maxDepth:    p.opts.maxDepth,
		levels:      stack.NewWithCapacity[level](8),
		atomic:      stack.New[symbol.Type](),
	}
}

// depth is the index of the innermost open group, 0 for the outermost.
func (m *machine[T]) depth() int {
	return m.levels.Size() - 1
}

func (m *machine[T]) top() level {
	top, _ := m.levels.Peek()
	return top
}

// unclosed reports premature end of input, naming the open groups from
// outermost to innermost.
func (m *machine[T]) unclosed(sym symbol.Symbol) *diagnostics.Issue {
	opens := make([]string, 0, m.levels.Size())
	for _, lvl := range m.levels.All() {
		opens = append(opens, string(lvl.open))
	}
	return issuef(diagnostics.CodePrematureEnd, sym.Offset, "premature end of input: unclosed %s", strings.Join(opens, " "))
}

// trailingSeparator reports unexpected_close when the separator under the
// cursor is followed, past blanks, by a structural close. The stream is left
// unchanged.
func (m *machine[T]) trailingSeparator() *diagnostics.Issue {
	mark := m.stream.Save()
	defer m.stream.Restore(mark)

	m.stream.Next()
	next := m.skipBlanks()
	if !m.registry.IsStructuralClose(next.Type) {
		return nil
	}
	return issuef(diagnostics.CodeUnexpectedClose, next.Offset, "expected element after separator, found %s", next)
}

// skipBlanks consumes blank symbols and returns the next non-blank one
// without consuming it.
func (m *machine[T]) skipBlanks() symbol.Symbol {
	for {
		sym := m.stream.Peek()
		if sym.Type == symbol.EOF || !m.registry.IsBlank(sym.Type) {
			return sym
		}
		m.stream.Next()
	}
}

// open consumes a structural open and enters a new group.
func (m *machine[T]) open(sym symbol.Symbol) *diagnostics.Issue {
	if m.levels.Size() >= m.maxDepth {
		return issuef(diagnostics.CodeDepthExceeded, sym.Offset, "nesting deeper than %d levels", m.maxDepth)
	}

	m.stream.Next()
	m.levels.Push(level{open: sym.Type})
	return nil
}

// closeGroup consumes a structural close after checking it matches the
// innermost open group. The group stays on the level stack.
func (m *machine[T]) closeGroup(sym symbol.Symbol) *diagnostics.Issue {
	top := m.top()
	if !m.registry.ClosesStructural(top.open, sym.Type) {
		return issuef(diagnostics.CodeMismatchedClose, sym.Offset,
			"%s does not close a group opened by %q (expected one of %q)",
			sym, top.open, m.registry.CloseSetFor(top.open))
	}

	m.stream.Next()
	return nil
}

// popGroup removes the innermost group and counts it in its parent. It reports
// whether the outermost group was just closed.
func (m *machine[T]) popGroup() bool {
	m.levels.Pop()
	if m.levels.IsEmpty() {
		m.done = true
		return true
	}

	m.levels.PeekRef().count++
	return false
}

// readElement collects one element run, hands it to the interpreter and
// records the value in the innermost group. The run ends before a separator,
// a structural close or a structural open that is not also an atomic open.
// Atomic groups are absorbed whole, delimiters included. Blanks are dropped.
// The terminating symbol is not consumed.
func (m *machine[T]) readElement() *diagnostics.Issue {
	m.buf = m.buf[:0]
	start := m.stream.Peek().Offset

scan:
	for {
		sym := m.stream.Peek()
		switch {
		case sym.Type == symbol.EOF:
			return m.unclosed(sym)
		case m.registry.IsBlank(sym.Type):
			m.stream.Next()
		case m.registry.IsAtomicOpen(sym.Type):
			if issue := m.readAtomic(); issue != nil {
				return issue
			}
		case m.registry.IsSeparator(sym.Type),
			m.registry.IsStructuralClose(sym.Type),
			m.registry.IsStructuralOpen(sym.Type):
			break scan
		case m.registry.IsAtomicClose(sym.Type):
			return issuef(diagnostics.CodeUnexpectedClose, sym.Offset, "unexpected %s without a matching atomic open", sym)
		default:
			m.buf = append(m.buf, m.stream.Next())
		}
	}

	if len(m.buf) == 0 {
		return issuef(diagnostics.CodeEmptyElement, start, "expected element")
	}

	value, err := m.interpreter.Interpret(m.buf)
	if err != nil {
		return issuef(diagnostics.CodeElementInvalid, start, "invalid element: %v", err)
	}

	m.elements = append(m.elements, value)
	m.levels.PeekRef().count++
	return nil
}

// readAtomic buffers one atomic group, nested atomic groups included, into the
// current run. Everything inside is copied verbatim apart from blanks.
func (m *machine[T]) readAtomic() *diagnostics.Issue {
	first := m.stream.Next()
	m.buf = append(m.buf, first)
	m.atomic.Clear()
	m.atomic.Push(first.Type)

	for !m.atomic.IsEmpty() {
		sym := m.stream.Peek()
		open, _ := m.atomic.Peek()

		switch {
		case sym.Type == symbol.EOF:
			return issuef(diagnostics.CodePrematureEnd, sym.Offset,
				"premature end of input: atomic group opened by %s is not closed", first)
		case m.registry.IsBlank(sym.Type):
			m.stream.Next()
			continue
		case m.registry.ClosesAtomic(open, sym.Type):
			m.atomic.Pop()
		case m.registry.IsAtomicOpen(sym.Type):
			m.atomic.Push(sym.Type)
		case m.registry.IsAtomicClose(sym.Type):
			return issuef(diagnostics.CodeMismatchedClose, sym.Offset,
				"%s does not close atomic group opened by %q", sym, open)
		}

		m.buf = append(m.buf, m.stream.Next())
	}

	return nil
}

func (m *machine[T]) result(shape []int) Result[T] {
	if !m.done || len(m.issues) > 0 {
		return Result[T]{Diagnostics: slices.Clone(m.issues)}
	}

	return Result[T]{
		Elements: m.elements,
		Shape:    slices.Clone(shape),
		Success:  true,
	}
}

func issuef(code diagnostics.Code, offset int, format string, args ...any) *diagnostics.Issue {
	issue := diagnostics.New(code, offset, format, args...)
	return &issue
}
