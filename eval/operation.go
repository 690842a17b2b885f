package eval

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/needle-lang/needle/lang"
)

// OperationCont is the suspended state of a primitive operation. The
// stack stores these opaquely; only continueOperation looks inside.
type OperationCont interface {
	isOperationCont()
}

// UnaryCont resumes a unary operation once its operand is evaluated.
type UnaryCont struct {
	Op   lang.UnaryOp
	Span *lang.Span
}

func (UnaryCont) isOperationCont() {}

// BinaryFirstCont resumes a binary operation once its first operand is
// evaluated; Second is the still-unevaluated second operand.
type BinaryFirstCont struct {
	Op     lang.BinaryOp
	Second Closure
	Span   *lang.Span
}

func (BinaryFirstCont) isOperationCont() {}

// BinarySecondCont resumes a binary operation once both operands are
// evaluated; First holds the first operand's weak-head normal form.
type BinarySecondCont struct {
	Op    lang.BinaryOp
	First Closure
	Span  *lang.Span
}

func (BinarySecondCont) isOperationCont() {}

// continueOperation resumes a popped continuation with the weak-head
// normal form that was just produced, and returns the closure to
// evaluate next.
func (m *Machine) continueOperation(cont OperationCont, clos Closure) (Closure, error) {
	switch c := cont.(type) {
	case UnaryCont:
		return m.unaryOp(c.Op, clos, c.Span)
	case BinaryFirstCont:
		m.stack.PushOpCont(BinarySecondCont{Op: c.Op, First: clos, Span: c.Span}, m.calls.Len(), c.Span)
		return c.Second, nil
	case BinarySecondCont:
		return m.binaryOp(c.Op, c.First, clos, c.Span)
	default:
		panic("continueOperation: unknown operation continuation")
	}
}

func (m *Machine) unaryOp(op lang.UnaryOp, clos Closure, span *lang.Span) (Closure, error) {
	body := clos.Body
	switch op {
	case lang.IsNum:
		_, ok := body.(lang.Num)
		return AtomicClosure(lang.Bool(ok)), nil
	case lang.IsBool:
		_, ok := body.(lang.Bool)
		return AtomicClosure(lang.Bool(ok)), nil
	case lang.IsStr:
		_, ok := body.(lang.Str)
		return AtomicClosure(lang.Bool(ok)), nil
	case lang.IsFun:
		_, ok := body.(*lang.Fun)
		return AtomicClosure(lang.Bool(ok)), nil
	case lang.IsList:
		_, ok := body.(*lang.List)
		return AtomicClosure(lang.Bool(ok)), nil
	case lang.IsRecord:
		_, ok := body.(*lang.Record)
		return AtomicClosure(lang.Bool(ok)), nil
	case lang.Not:
		b, ok := body.(lang.Bool)
		if !ok {
			return Closure{}, m.errorf(span, "not: expected a boolean, got %s", lang.FormatTerm(body))
		}
		return AtomicClosure(lang.Bool(!b)), nil
	case lang.Neg:
		n, ok := body.(lang.Num)
		if !ok {
			return Closure{}, m.errorf(span, "neg: expected a number, got %s", lang.FormatTerm(body))
		}
		return AtomicClosure(lang.Num(-n)), nil
	case lang.Head:
		l, ok := body.(*lang.List)
		if !ok {
			return Closure{}, m.errorf(span, "head: expected a list, got %s", lang.FormatTerm(body))
		}
		if len(l.Elems) == 0 {
			return Closure{}, m.errorf(span, "head: empty list")
		}
		return Closure{Body: l.Elems[0], Env: clos.Env}, nil
	case lang.Tail:
		l, ok := body.(*lang.List)
		if !ok {
			return Closure{}, m.errorf(span, "tail: expected a list, got %s", lang.FormatTerm(body))
		}
		if len(l.Elems) == 0 {
			return Closure{}, m.errorf(span, "tail: empty list")
		}
		return Closure{Body: &lang.List{Elems: l.Elems[1:], Pos: l.Pos}, Env: clos.Env}, nil
	case lang.Length:
		l, ok := body.(*lang.List)
		if !ok {
			return Closure{}, m.errorf(span, "length: expected a list, got %s", lang.FormatTerm(body))
		}
		return AtomicClosure(lang.Num(len(l.Elems))), nil
	case lang.IfThenElse:
		b, ok := body.(lang.Bool)
		if !ok {
			return Closure{}, m.errorf(span, "if: condition must be a boolean, got %s", lang.FormatTerm(body))
		}
		// The conditional pushed both branches as argument frames
		// right under this continuation; their absence means the
		// stack invariant is broken.
		thenClos, _, ok := m.stack.PopArg()
		if !ok {
			panic("if continuation: missing then-branch argument")
		}
		elseClos, _, ok := m.stack.PopArg()
		if !ok {
			panic("if continuation: missing else-branch argument")
		}
		if b {
			return thenClos, nil
		}
		return elseClos, nil
	default:
		panic("unaryOp: unhandled operator " + op.String())
	}
}

func (m *Machine) binaryOp(op lang.BinaryOp, first, second Closure, span *lang.Span) (Closure, error) {
	if op == lang.Eq {
		return m.evalEq(first, second, span)
	}
	if op == lang.Concat {
		return m.concat(first, second, span)
	}
	a := first.Body
	b := second.Body
	if op == lang.Add {
		if as, ok := a.(lang.Str); ok {
			bs, ok := b.(lang.Str)
			if !ok {
				return Closure{}, m.errorf(span, "+: cannot add %s and %s", lang.FormatTerm(a), lang.FormatTerm(b))
			}
			return AtomicClosure(lang.Str(as + bs)), nil
		}
	}
	an, ok := a.(lang.Num)
	if !ok {
		return Closure{}, m.errorf(span, "%s: expected a number, got %s", op, lang.FormatTerm(a))
	}
	bn, ok := b.(lang.Num)
	if !ok {
		return Closure{}, m.errorf(span, "%s: expected a number, got %s", op, lang.FormatTerm(b))
	}
	switch op {
	case lang.Add:
		return AtomicClosure(an + bn), nil
	case lang.Sub:
		return AtomicClosure(an - bn), nil
	case lang.Mul:
		return AtomicClosure(an * bn), nil
	case lang.Div:
		if bn == 0 {
			return Closure{}, m.errorf(span, "division by zero")
		}
		return AtomicClosure(an / bn), nil
	case lang.Lt:
		return AtomicClosure(lang.Bool(an < bn)), nil
	case lang.Lte:
		return AtomicClosure(lang.Bool(an <= bn)), nil
	case lang.Gt:
		return AtomicClosure(lang.Bool(an > bn)), nil
	case lang.Gte:
		return AtomicClosure(lang.Bool(an >= bn)), nil
	default:
		panic("binaryOp: unhandled operator " + op.String())
	}
}

// concat joins two strings or two lists. The list halves may close
// over different environments, so elements that still need one are
// rebound through fresh thunks in a synthesized environment; the NUL
// prefix keeps the generated names out of the surface namespace.
func (m *Machine) concat(first, second Closure, span *lang.Span) (Closure, error) {
	if as, ok := first.Body.(lang.Str); ok {
		bs, ok := second.Body.(lang.Str)
		if !ok {
			return Closure{}, m.errorf(span, "concat: cannot join %s and %s", lang.FormatTerm(first.Body), lang.FormatTerm(second.Body))
		}
		return AtomicClosure(as + bs), nil
	}
	al, ok := first.Body.(*lang.List)
	if !ok {
		return Closure{}, m.errorf(span, "concat: expected a list or string, got %s", lang.FormatTerm(first.Body))
	}
	bl, ok := second.Body.(*lang.List)
	if !ok {
		return Closure{}, m.errorf(span, "concat: cannot join %s and %s", lang.FormatTerm(first.Body), lang.FormatTerm(second.Body))
	}

	env := make(Env, len(al.Elems)+len(bl.Elems))
	elems := make([]lang.Term, 0, len(al.Elems)+len(bl.Elems))
	appendHalf := func(half *lang.List, halfEnv Env) {
		for _, el := range half.Elems {
			switch el.(type) {
			case lang.Bool, lang.Num, lang.Str:
				elems = append(elems, el)
			default:
				name := fmt.Sprintf("\x00elem%d", len(elems))
				env[name] = NewThunk(Closure{Body: el, Env: halfEnv})
				elems = append(elems, &lang.Var{Name: name})
			}
		}
	}
	appendHalf(al, first.Env)
	appendHalf(bl, second.Env)
	return Closure{Body: &lang.List{Elems: elems, Pos: al.Pos}, Env: env}, nil
}

// evalEq decides one pairwise equality between two weak-head normal
// forms. Scalar comparisons resolve immediately; compound comparisons
// decompose into per-component Eq frames. The outcome feeds eqOutcome,
// which either advances to the next pending check or settles the whole
// compound equality.
func (m *Machine) evalEq(l, r Closure, span *lang.Span) (Closure, error) {
	switch lv := l.Body.(type) {
	case lang.Bool:
		if rv, ok := r.Body.(lang.Bool); ok {
			return m.eqOutcome(lv == rv, span)
		}
	case lang.Num:
		if rv, ok := r.Body.(lang.Num); ok {
			return m.eqOutcome(lv == rv, span)
		}
	case lang.Str:
		if rv, ok := r.Body.(lang.Str); ok {
			return m.eqOutcome(lv == rv, span)
		}
	case *lang.List:
		rv, ok := r.Body.(*lang.List)
		if !ok {
			break
		}
		if len(lv.Elems) != len(rv.Elems) {
			return m.eqOutcome(false, span)
		}
		if len(lv.Elems) == 0 {
			return m.eqOutcome(true, span)
		}
		pairs := make([]EqPair, 0, len(lv.Elems))
		for i := range lv.Elems {
			pairs = append(pairs, EqPair{
				Lhs: Closure{Body: lv.Elems[i], Env: l.Env},
				Rhs: Closure{Body: rv.Elems[i], Env: r.Env},
			})
		}
		m.decomposeEq(pairs)
		return m.eqOutcome(true, span)
	case *lang.Record:
		rv, ok := r.Body.(*lang.Record)
		if !ok {
			break
		}
		if len(lv.Fields) != len(rv.Fields) {
			return m.eqOutcome(false, span)
		}
		keys := make([]string, 0, len(lv.Fields))
		for k := range lv.Fields {
			if _, ok := rv.Fields[k]; !ok {
				return m.eqOutcome(false, span)
			}
			keys = append(keys, k)
		}
		if len(keys) == 0 {
			return m.eqOutcome(true, span)
		}
		sort.Strings(keys)
		pairs := make([]EqPair, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, EqPair{
				Lhs: Closure{Body: lv.Fields[k], Env: l.Env},
				Rhs: Closure{Body: rv.Fields[k], Env: r.Env},
			})
		}
		m.decomposeEq(pairs)
		return m.eqOutcome(true, span)
	case *lang.Fun:
		if _, ok := r.Body.(*lang.Fun); ok {
			return Closure{}, m.errorf(span, "==: functions cannot be compared")
		}
	}
	// Different variants are simply unequal.
	return m.eqOutcome(false, span)
}

func (m *Machine) decomposeEq(pairs []EqPair) {
	m.stack.PushEqs(pairs)
	m.stats.EqDecompositions++
	log.Trace().Int("pairs", len(pairs)).Msg("eq: decomposed compound equality")
}

// eqOutcome threads one sub-check's result through the rest of the
// pending equality run. A false result moots every remaining check.
func (m *Machine) eqOutcome(equal bool, span *lang.Span) (Closure, error) {
	if !equal {
		m.stack.ClearEqs()
		return AtomicClosure(lang.Bool(false)), nil
	}
	pair, ok := m.stack.PopEq()
	if !ok {
		return AtomicClosure(lang.Bool(true)), nil
	}
	m.stack.PushOpCont(BinaryFirstCont{Op: lang.Eq, Second: pair.Rhs, Span: span}, m.calls.Len(), span)
	return pair.Lhs, nil
}
