package engine

import (
	"slices"

	"go.uber.org/zap"

	"github.com/jacoelho/ndparse/internal/diagnostics"
	"github.com/jacoelho/ndparse/internal/symbol"
)

const undetermined = -1

// inferMachine discovers the shape while reading. dims is the number of
// dimensions, 0 until the first element is read or the first group closes.
// shape[d] stays undetermined until the first group at depth d closes.
type inferMachine[T any] struct {
	machine[T]
	dims  int
	shape []int

	checkpoints  checkpoints
	rollbacks    int
	maxRollbacks int
	retried      []diagnostics.Issue
}

func newInferMachine[T any](p *Parser[T], stream symbol.Stream) *inferMachine[T] {
	return &inferMachine[T]{
		machine:      newMachine(p, stream),
		checkpoints:  newCheckpoints(),
		maxRollbacks: p.opts.maxRollbacks,
	}
}

func (m *inferMachine[T]) run() {
	st := stateStart
	for st != stateEnd {
		switch st {
		case stateStart:
			st = m.start()
		case stateSequence:
			st = m.sequence(false)
		case stateOperator:
			st = m.sequence(true)
		case stateResumeSequence, stateAtomic:
			st = m.element()
		case stateElement:
			st = m.afterElement()
		default:
			st = m.fail(issuef(diagnostics.CodeUnexpectedSymbol, m.stream.Peek().Offset, "unreachable state %s", st))
		}
	}
}

// inferredShape returns one entry per discovered dimension.
func (m *inferMachine[T]) inferredShape() []int {
	shape := slices.Clone(m.shape[:min(m.dims, len(m.shape))])
	for i, size := range shape {
		if size == undetermined {
			shape[i] = 0
		}
	}
	return shape
}

// fail rolls back to the most recent checkpoint when the issue is recoverable
// and one exists; otherwise the parse ends with every issue seen on the way.
func (m *inferMachine[T]) fail(issue *diagnostics.Issue) state {
	if issue.Recoverable() && !m.checkpoints.isEmpty() {
		if m.rollbacks >= m.maxRollbacks {
			m.retried = append(m.retried, *issue)
			limit := issuef(diagnostics.CodeBacktrackLimit, issue.Offset, "gave up after %d rollback(s)", m.rollbacks)
			return m.end(limit)
		}

		cp, _ := m.checkpoints.pop()
		m.rollback(cp, *issue)
		return stateResumeSequence
	}

	return m.end(issue)
}

func (m *inferMachine[T]) end(issue *diagnostics.Issue) state {
	m.issues = append(m.issues, m.retried...)
	m.issues = append(m.issues, *issue)
	m.log.Debug("shape-inferring parse failed",
		zap.String("code", string(issue.Code)),
		zap.Int("offset", issue.Offset),
		zap.String("message", issue.Message),
		zap.Int("rollbacks", m.rollbacks))
	return stateEnd
}

func (m *inferMachine[T]) rollback(cp checkpoint, cause diagnostics.Issue) {
	m.rollbacks++
	m.retried = append(m.retried, cause)

	clear(m.elements[cp.elements:])
	m.elements = m.elements[:cp.elements]
	m.dims = cp.dims
	m.shape = cp.shape
	m.levels = cp.levels
	m.stream.Restore(cp.mark)

	m.log.Debug("rolled back to checkpoint",
		zap.Int("depth", cp.depth),
		zap.Int("elements", cp.elements),
		zap.String("cause", string(cause.Code)),
		zap.Int("cause_offset", cause.Offset),
		zap.Int("pending", m.checkpoints.size()))
}

// descend enters a nested structural group. An open that is also an atomic
// open is checkpointed first so it can be re-read as an atomic group.
func (m *inferMachine[T]) descend(sym symbol.Symbol) *diagnostics.Issue {
	if m.registry.IsAmbiguous(sym.Type) && !m.levels.IsEmpty() {
		m.checkpoints.push(checkpoint{
			mark:     m.stream.Save(),
			depth:    m.depth(),
			elements: len(m.elements),
			dims:     m.dims,
			shape:    slices.Clone(m.shape),
			levels:   m.levels.Clone(),
		})
		m.log.Debug("checkpoint",
			zap.String("open", string(sym.Type)),
			zap.Int("offset", sym.Offset),
			zap.Int("depth", m.depth()),
			zap.Int("pending", m.checkpoints.size()))
	}

	if issue := m.open(sym); issue != nil {
		return issue
	}
	if len(m.shape) < m.levels.Size() {
		m.shape = append(m.shape, undetermined)
	}
	return nil
}

func (m *inferMachine[T]) innermost() bool {
	return m.dims > 0 && m.depth() == m.dims-1
}

func (m *inferMachine[T]) start() state {
	sym := m.skipBlanks()
	if !m.registry.IsStructuralOpen(sym.Type) {
		return m.fail(issuef(diagnostics.CodeExpectedOpen, sym.Offset, "expected open delimiter at start, found %s", sym))
	}

	if issue := m.descend(sym); issue != nil {
		return m.fail(issue)
	}
	return stateSequence
}

func (m *inferMachine[T]) sequence(afterSeparator bool) state {
	sym := m.skipBlanks()

	switch {
	case sym.Type == symbol.EOF:
		return m.fail(m.unclosed(sym))
	case m.registry.IsStructuralOpen(sym.Type) && !m.innermost():
		if issue := m.descend(sym); issue != nil {
			return m.fail(issue)
		}
		return stateSequence
	case m.registry.IsAtomicOpen(sym.Type):
		return stateAtomic
	case m.registry.IsStructuralOpen(sym.Type):
		return m.fail(issuef(diagnostics.CodeDimensionMismatch, sym.Offset,
			"dimension mismatch: %s nests deeper than the %d dimension(s) seen so far", sym, m.dims))
	case m.registry.IsStructuralClose(sym.Type):
		if afterSeparator {
			return m.fail(issuef(diagnostics.CodeUnexpectedClose, sym.Offset, "expected element after separator, found %s", sym))
		}
		return stateElement
	case m.registry.IsSeparator(sym.Type):
		return m.fail(issuef(diagnostics.CodeUnexpectedSeparator, sym.Offset, "unexpected separator %s", sym))
	case m.registry.IsAtomicClose(sym.Type):
		return m.fail(issuef(diagnostics.CodeUnexpectedClose, sym.Offset, "unexpected %s without a matching atomic open", sym))
	default:
		return m.element()
	}
}

// element reads one element at the current depth, fixing the dimension count
// on the first one. After a rollback the stream sits on the checkpointed open,
// which readElement now absorbs as an atomic group.
func (m *inferMachine[T]) element() state {
	sym := m.skipBlanks()
	d := m.depth()

	switch {
	case m.dims == 0:
		m.dims = d + 1
		m.log.Debug("dimensions discovered", zap.Int("dims", m.dims), zap.Int("offset", sym.Offset))
	case d != m.dims-1:
		return m.fail(issuef(diagnostics.CodeDimensionMismatch, sym.Offset,
			"dimension mismatch: element %s at dimension %d, elements were found at dimension %d", sym, d, m.dims-1))
	}

	if issue := m.readElement(); issue != nil {
		return m.fail(issue)
	}
	return stateElement
}

func (m *inferMachine[T]) afterElement() state {
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
		if m.dims == 0 {
			// an empty group before any element: it is the innermost dimension
			m.dims = d + 1
		}

		switch m.shape[d] {
		case undetermined:
			m.shape[d] = top.count
			m.log.Debug("dimension size frozen", zap.Int("dimension", d), zap.Int("size", top.count))
		case top.count:
		default:
			return m.fail(issuef(diagnostics.CodeShapeMismatch, sym.Offset,
				"element count doesn't match inferred shape: %d item(s) at dimension %d, earlier groups had %d", top.count, d, m.shape[d]))
		}

		if m.popGroup() {
			return stateEnd
		}
		return stateElement
	case m.registry.IsSeparator(sym.Type):
		if m.shape[d] != undetermined && top.count >= m.shape[d] {
			if issue := m.trailingSeparator(); issue != nil {
				return m.fail(issue)
			}
			return m.fail(issuef(diagnostics.CodeShapeMismatch, sym.Offset,
				"element count doesn't match inferred shape: more than %d item(s) at dimension %d", m.shape[d], d))
		}
		m.stream.Next()
		return stateOperator
	default:
		return m.fail(issuef(diagnostics.CodeUnexpectedSymbol, sym.Offset, "expected separator or close, found %s", sym))
	}
}
