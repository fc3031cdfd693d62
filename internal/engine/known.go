package engine

import (
	"go.uber.org/zap"

	"github.com/jacoelho/ndparse/internal/diagnostics"
	"github.com/jacoelho/ndparse/internal/symbol"
)

// knownMachine validates a declared shape while collecting elements.
// shape[d] is the size expected for groups at depth d.
type knownMachine[T any] struct {
	machine[T]
	shape []int
}

func newKnownMachine[T any](p *Parser[T], stream symbol.Stream, shape []int) *knownMachine[T] {
	return &knownMachine[T]{
		machine: newMachine(p, stream),
		shape:   shape,
	}
}

func (m *knownMachine[T]) run() {
	st := stateStart
	for st != stateEnd {
		switch st {
		case stateStart:
			st = m.start()
		case stateSequence:
			st = m.sequence(false)
		case stateOperator:
			st = m.sequence(true)
		case stateAtomic:
			st = m.element(m.readElement())
		case stateElement:
			st = m.afterElement()
		default:
			st = m.fail(issuef(diagnostics.CodeUnexpectedSymbol, m.stream.Peek().Offset, "unreachable state %s", st))
		}
	}
}

func (m *knownMachine[T]) fail(issue *diagnostics.Issue) state {
	m.issues = append(m.issues, *issue)
	m.log.Debug("shape-known parse failed",
		zap.String("code", string(issue.Code)),
		zap.Int("offset", issue.Offset),
		zap.String("message", issue.Message))
	return stateEnd
}

func (m *knownMachine[T]) innermost() bool {
	return m.depth() == len(m.shape)-1
}

func (m *knownMachine[T]) start() state {
	sym := m.skipBlanks()
	if !m.registry.IsStructuralOpen(sym.Type) {
		return m.fail(issuef(diagnostics.CodeExpectedOpen, sym.Offset, "expected open delimiter at start, found %s", sym))
	}

	if issue := m.open(sym); issue != nil {
		return m.fail(issue)
	}
	return stateSequence
}

// sequence expects the next item of the innermost group: the first one right
// after an open, or a following one after a separator.
func (m *knownMachine[T]) sequence(afterSeparator bool) state {
	sym := m.skipBlanks()
	innermost := m.innermost()

	switch {
	case sym.Type == symbol.EOF:
		return m.fail(m.unclosed(sym))
	case m.registry.IsStructuralOpen(sym.Type) && !innermost:
		if issue := m.open(sym); issue != nil {
			return m.fail(issue)
		}
		return stateSequence
	case m.registry.IsAtomicOpen(sym.Type) && innermost:
		return stateAtomic
	case m.registry.IsStructuralOpen(sym.Type):
		return m.fail(issuef(diagnostics.CodeDimensionMismatch, sym.Offset,
			"dimension mismatch: %s nests deeper than the declared %d dimension(s)", sym, len(m.shape)))
	case m.registry.IsStructuralClose(sym.Type):
		if afterSeparator {
			return m.fail(issuef(diagnostics.CodeUnexpectedClose, sym.Offset, "expected element after separator, found %s", sym))
		}
		// empty group, the count check happens on close
		return stateElement
	case m.registry.IsSeparator(sym.Type):
		return m.fail(issuef(diagnostics.CodeUnexpectedSeparator, sym.Offset, "unexpected separator %s", sym))
	case m.registry.IsAtomicClose(sym.Type):
		return m.fail(issuef(diagnostics.CodeUnexpectedClose, sym.Offset, "unexpected %s without a matching atomic open", sym))
	case !innermost:
		return m.fail(issuef(diagnostics.CodeDimensionMismatch, sym.Offset,
			"dimension mismatch: element %s at depth %d, declared shape has %d dimension(s)", sym, m.depth()+1, len(m.shape)))
	default:
		return m.element(m.readElement())
	}
}

func (m *knownMachine[T]) element(issue *diagnostics.Issue) state {
	if issue != nil {
		return m.fail(issue)
	}
	return stateElement
}

// afterElement follows an element or a closed subgroup: only a separator or
// the close of the innermost group may come next.
func (m *knownMachine[T]) afterElement() state {
	sym := m.skipBlanks()
	d := m.depth()
	top := m.top()

	switch {
	case sym.Type == symbol.EOF:
		return m.fail(m.unclosed(sym))
	case m.registry.IsStructuralClose(sym.Type):
		if issue := m.closeGroup(sym); issue != nil {
			return m.fail(issue)
		}
		if top.count != m.shape[d] {
			return m.fail(issuef(diagnostics.CodeShapeMismatch, sym.Offset,
				"element count doesn't match declared shape: %d item(s) at dimension %d, want %d", top.count, d, m.shape[d]))
		}
		if m.popGroup() {
			return stateEnd
		}
		return stateElement
	case m.registry.IsSeparator(sym.Type):
		if top.count >= m.shape[d] {
			if issue := m.trailingSeparator(); issue != nil {
				return m.fail(issue)
			}
			return m.fail(issuef(diagnostics.CodeShapeMismatch, sym.Offset,
				"element count doesn't match declared shape: more than %d item(s) at dimension %d", m.shape[d], d))
		}
		m.stream.Next()
		return stateOperator
	default:
		return m.fail(issuef(diagnostics.CodeUnexpectedSymbol, sym.Offset, "expected separator or close, found %s", sym))
	}
}
