package engine

import (
	"github.com/jacoelho/ndparse/internal/stack"
	"github.com/jacoelho/ndparse/internal/symbol"
)

// checkpoint records everything needed to re-read an ambiguous open as an
// atomic group: the stream position of the open, the depth of the group that
// contains it and how many elements were parsed before it. The dimension
// count, the shape entries and the open groups are snapshotted too, since the
// contradiction may surface after the tentative group and its parents closed.
type checkpoint struct {
	mark     symbol.Mark
	depth    int
	elements int

	dims   int
	shape  []int
	levels *stack.Stack[level]
}

// checkpoints is a LIFO of pending decisions. Only the top is ever inspected.
type checkpoints struct {
	items *stack.Stack[checkpoint]
}

func newCheckpoints() checkpoints {
	return checkpoints{items: stack.New[checkpoint]()}
}

func (c checkpoints) push(cp checkpoint) {
	c.items.Push(cp)
}

func (c checkpoints) pop() (checkpoint, bool) {
	return c.items.Pop()
}

func (c checkpoints) isEmpty() bool {
	return c.items.IsEmpty()
}

func (c checkpoints) size() int {
	return c.items.Size()
}
