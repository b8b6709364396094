/*
Package spine implements the GLR runtime's forking parse stack.

A Spine is a singly-linked list of frames, each holding an automaton
state, a synthesized value, and the source position that value spans.
Forking a spine is free: a fork is just another reference to the same
tail, since frames are never mutated after being pushed. The frontier
(the set of live spines) is owned by package glrparse, not here; this
package only supplies the per-spine data structure and the structural
key glrparse uses to detect and merge spines that have converged on an
identical (state, value-stack) pair.
*/
package spine

import (
	"fmt"
	"strings"

	"github.com/corvid-works/glrforge"
	"github.com/corvid-works/glrforge/automaton"
)

// Value is the dynamic value synthesized for one stack frame: a
// terminal's token value, or a reduction's synthesized value.
type Value = interface{}

// Frame is one node of a spine: the automaton state reached after
// shifting or reducing to this point, the value produced, and the
// position it spans. prev is nil at the root frame (state 0, no value).
type Frame struct {
	State automaton.StateID
	Value Value
	Pos   glrforge.Position
	prev  *Frame
	depth int
}

// Spine is a persistent, singly-linked parse stack. The zero value is
// not useful; create one with Root.
type Spine struct {
	top *Frame
}

// Root creates a new spine whose only frame is the initial automaton
// state, with no value and the zero position.
func Root(initial automaton.StateID) *Spine {
	return &Spine{top: &Frame{State: initial}}
}

// State returns the automaton state at the top of the spine.
func (s *Spine) State() automaton.StateID {
	return s.top.State
}

// Value returns the value carried by the top frame.
func (s *Spine) Value() Value {
	return s.top.Value
}

// Pos returns the position spanned by the top frame.
func (s *Spine) Pos() glrforge.Position {
	return s.top.Pos
}

// Depth returns the number of frames pushed above the root frame (a
// spine holding only the root frame has depth 0).
func (s *Spine) Depth() int {
	return s.top.depth
}

// Push returns a new spine with one additional frame on top, leaving s
// itself untouched, the persistent-stack idiom that makes forking
// free.
func (s *Spine) Push(state automaton.StateID, value Value, pos glrforge.Position) *Spine {
	return &Spine{top: &Frame{State: state, Value: value, Pos: pos, prev: s.top, depth: s.top.depth + 1}}
}

// Pop removes the top n frames and returns the resulting spine along
// with the popped values and positions, oldest (bottom-most popped)
// first, the order a Reducer expects its right-hand-side values in.
//
// Pop(Depth()+1) also pops the root frame and returns a spine holding a
// fresh, value-less frame in the root's state. Pop panics if n exceeds
// Depth()+1; the table builder
// guarantees a reduce action's arity never exceeds what a conforming
// automaton run has pushed, so this is a programmer-error invariant, not
// a runtime condition callers need to guard against.
func (s *Spine) Pop(n int) (rest *Spine, values []Value, positions []glrforge.Position) {
	if n == 0 {
		return s, nil, nil
	}
	values = make([]Value, n)
	positions = make([]glrforge.Position, n)
	f := s.top
	for i := n - 1; i >= 0; i-- {
		if f.prev == nil && i > 0 {
			panic(fmt.Sprintf("spine: Pop(%d) exceeds spine depth %d", n, s.top.depth))
		}
		values[i] = f.Value
		positions[i] = f.Pos
		if f.prev == nil {
			f = &Frame{State: f.State} // synthesize an empty rest below root
			break
		}
		f = f.prev
	}
	return &Spine{top: f}, values, positions
}

// Fork returns a spine sharing this one's frames. Since frames are
// immutable once pushed, forking needs no copy at all; this method
// exists for call-site clarity at places where glrparse clones a spine
// before applying one of several conflicting actions to it.
func (s *Spine) Fork() *Spine {
	return &Spine{top: s.top}
}

// StructuralKey returns a string uniquely determined by the spine's
// (state, value) sequence from top to root, used by glrparse to detect
// spines that have converged on an identical stack and can be merged.
func (s *Spine) StructuralKey() string {
	var b strings.Builder
	for f := s.top; f != nil; f = f.prev {
		fmt.Fprintf(&b, "%d:%v|", f.State, f.Value)
	}
	return b.String()
}

// String renders the spine's states from bottom to top, for trace
// output.
func (s *Spine) String() string {
	var states []string
	for f := s.top; f != nil; f = f.prev {
		states = append([]string{fmt.Sprintf("%d", f.State)}, states...)
	}
	return "[" + strings.Join(states, " ") + "]"
}
