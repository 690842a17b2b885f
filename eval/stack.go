// Package eval implements a call-by-need abstract machine. The
// machine's suspended work lives on a single control stack of typed
// frames; the evaluation loop in machine.go pushes frames to suspend
// the current step and pops them to resume once a weak-head normal
// form is reached.
package eval

import (
	"weak"

	"github.com/needle-lang/needle/lang"
)

type frameKind int

const (
	frameEq frameKind = iota
	frameArg
	frameThunk
	frameCont
)

// Frame is one entry of the control stack: one unit of suspended
// control-flow work. It is one of four variants:
//
//   - Eq: one pending pairwise equality check. Comparing compound
//     values decomposes the comparison into per-component checks; the
//     remaining checks wait on the stack as Eq frames. When a
//     sub-check comes out false the whole contiguous run of Eq frames
//     at the top is discarded at once.
//   - Arg: one pending argument awaiting application, with the call
//     site's span. The topmost Arg is the next one consumed.
//   - Thunk: a non-owning reference to a shared memoization cell to
//     overwrite once the in-flight computation produces a value. The
//     cell's lifetime belongs to the environment graph; a collected
//     cell resolves to nil, never an error.
//   - Cont: a suspended primitive operation, the diagnostic call-stack
//     depth at suspension time, and the operation's span. The stack
//     stores the continuation opaquely.
type Frame struct {
	kind frameKind

	lhs Closure // Eq
	rhs Closure // Eq

	arg  Closure    // Arg
	span *lang.Span // Arg, Cont

	cell weak.Pointer[Thunk] // Thunk

	cont  OperationCont // Cont
	depth int           // Cont
}

func (f Frame) IsEq() bool { return f.kind == frameEq }

func (f Frame) IsArg() bool { return f.kind == frameArg }

func (f Frame) IsThunk() bool { return f.kind == frameThunk }

func (f Frame) IsCont() bool { return f.kind == frameCont }

// EqPair is one pending equality between two closures.
type EqPair struct {
	Lhs Closure
	Rhs Closure
}

// Stack is the machine's control stack. Frames are appended and
// removed at the tail only; a single evaluator owns a Stack at a time.
type Stack struct {
	frames []Frame
}

func NewStack() *Stack {
	return &Stack{}
}

func (s *Stack) Len() int {
	return len(s.frames)
}

// CountTop returns the length of the maximal run of frames at the top
// of the stack all satisfying pred.
func (s *Stack) CountTop(pred func(Frame) bool) int {
	count := 0
	for i := len(s.frames) - 1; i >= 0; i-- {
		if !pred(s.frames[i]) {
			break
		}
		count++
	}
	return count
}

// CountArgs returns the number of arguments at the top of the stack,
// i.e. how many are immediately available to a function without
// popping them.
func (s *Stack) CountArgs() int {
	return s.CountTop(Frame.IsArg)
}

func (s *Stack) PushArg(arg Closure, pos *lang.Span) {
	s.frames = append(s.frames, Frame{kind: frameArg, arg: arg, span: pos})
}

func (s *Stack) PushThunk(cell weak.Pointer[Thunk]) {
	s.frames = append(s.frames, Frame{kind: frameThunk, cell: cell})
}

func (s *Stack) PushOpCont(cont OperationCont, callDepth int, pos *lang.Span) {
	s.frames = append(s.frames, Frame{kind: frameCont, cont: cont, depth: callDepth, span: pos})
}

// PushEqs pushes one Eq frame per pair, in the order given. Since
// popping removes from the tail, the checks run in reverse of the
// supplied order: the last pair pushed is the first one checked.
// Callers that need a specific check order must order the pairs
// accordingly; observable short-circuiting depends on it.
func (s *Stack) PushEqs(pairs []EqPair) {
	for _, p := range pairs {
		s.frames = append(s.frames, Frame{kind: frameEq, lhs: p.Lhs, rhs: p.Rhs})
	}
}

// popTop removes and returns the top frame if it is of the given kind.
// Otherwise the stack is left unchanged.
func (s *Stack) popTop(kind frameKind) (Frame, bool) {
	n := len(s.frames)
	if n == 0 || s.frames[n-1].kind != kind {
		return Frame{}, false
	}
	f := s.frames[n-1]
	s.frames[n-1] = Frame{} // release payload references
	s.frames = s.frames[:n-1]
	return f, true
}

// PopArg pops a pending argument and its span. Returns false, leaving
// the stack unchanged, if the top frame is not an argument.
func (s *Stack) PopArg() (Closure, *lang.Span, bool) {
	f, ok := s.popTop(frameArg)
	if !ok {
		return Closure{}, nil, false
	}
	return f.arg, f.span, true
}

// PopThunk pops a pending memoization-cell reference. Returns false,
// leaving the stack unchanged, if the top frame is not a thunk.
func (s *Stack) PopThunk() (weak.Pointer[Thunk], bool) {
	f, ok := s.popTop(frameThunk)
	if !ok {
		return weak.Pointer[Thunk]{}, false
	}
	return f.cell, true
}

// PopOpCont pops a suspended operation continuation together with the
// saved call-stack depth and the operation's span. Returns false,
// leaving the stack unchanged, if the top frame is not a continuation.
func (s *Stack) PopOpCont() (OperationCont, int, *lang.Span, bool) {
	f, ok := s.popTop(frameCont)
	if !ok {
		return nil, 0, nil, false
	}
	return f.cont, f.depth, f.span, true
}

// PopEq pops one pending equality. Returns false, leaving the stack
// unchanged, if the top frame is not an equality.
func (s *Stack) PopEq() (EqPair, bool) {
	f, ok := s.popTop(frameEq)
	if !ok {
		return EqPair{}, false
	}
	return EqPair{Lhs: f.lhs, Rhs: f.rhs}, true
}

// IsTopThunk reports whether the top frame is a thunk. False on an
// empty stack.
func (s *Stack) IsTopThunk() bool {
	n := len(s.frames)
	return n > 0 && s.frames[n-1].kind == frameThunk
}

// IsTopCont reports whether the top frame is an operation
// continuation. False on an empty stack.
func (s *Stack) IsTopCont() bool {
	n := len(s.frames)
	return n > 0 && s.frames[n-1].kind == frameCont
}

// ClearEqs discards the whole contiguous run of Eq frames at the top
// of the stack. This drops the continuation of the equality currently
// being evaluated once a sub-check has already decided the result.
func (s *Stack) ClearEqs() {
	for {
		if _, ok := s.PopEq(); !ok {
			return
		}
	}
}
