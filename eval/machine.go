package eval

import (
	"weak"

	"github.com/rs/zerolog/log"

	"github.com/needle-lang/needle/lang"
)

// Stats counts what the machine did during one evaluation.
type Stats struct {
	Steps        int
	MaxStack     int
	ThunkUpdates int
	// EqDecompositions counts compound equalities split into
	// per-component checks.
	EqDecompositions int
}

// Machine evaluates terms to weak-head normal form. A Machine owns its
// control stack exclusively; it is not safe for concurrent use and is
// meant to be used for one evaluation at a time.
type Machine struct {
	stack *Stack
	calls CallStack
	stats Stats
}

func New() *Machine {
	return &Machine{stack: NewStack()}
}

func (m *Machine) Stats() Stats {
	return m.stats
}

// Eval reduces t under env to weak-head normal form. The returned term
// is one of Bool, Num, Str, *List, *Record or *Fun; list and record
// components stay unevaluated.
func (m *Machine) Eval(t lang.Term, env Env) (lang.Term, error) {
	clos := Closure{Body: t, Env: env}
	for {
		m.stats.Steps++
		if n := m.stack.Len(); n > m.stats.MaxStack {
			m.stats.MaxStack = n
		}

		switch tt := clos.Body.(type) {
		case *lang.Var:
			thnk, ok := clos.Env.Get(tt.Name)
			if !ok {
				return nil, m.errorf(tt.Pos, "unbound identifier: %s", tt.Name)
			}
			if !thnk.Evaluated() {
				m.calls.PushVar(tt.Name, tt.Pos)
				m.stack.PushThunk(weak.Make(thnk))
				log.Trace().Str("var", tt.Name).Int("stack", m.stack.Len()).Msg("eval: forcing thunk")
			}
			clos = thnk.Closure()
		case *lang.App:
			m.calls.PushApp(tt.Pos)
			m.stack.PushArg(Closure{Body: tt.Arg, Env: clos.Env}, tt.Pos)
			clos = Closure{Body: tt.Fn, Env: clos.Env}
		case *lang.Let:
			thnk := NewThunk(Closure{Body: tt.Bound, Env: clos.Env})
			clos = Closure{Body: tt.Body, Env: clos.Env.With(tt.Name, thnk)}
		case *lang.If:
			// Both branches wait as argument frames under the
			// conditional's continuation; only the selected one is
			// ever evaluated.
			m.stack.PushArg(Closure{Body: tt.Else, Env: clos.Env}, tt.Pos)
			m.stack.PushArg(Closure{Body: tt.Then, Env: clos.Env}, tt.Pos)
			m.stack.PushOpCont(UnaryCont{Op: lang.IfThenElse, Span: tt.Pos}, m.calls.Len(), tt.Pos)
			clos = Closure{Body: tt.Cond, Env: clos.Env}
		case *lang.Op1:
			m.stack.PushOpCont(UnaryCont{Op: tt.Op, Span: tt.Pos}, m.calls.Len(), tt.Pos)
			clos = Closure{Body: tt.Arg, Env: clos.Env}
		case *lang.Op2:
			m.stack.PushOpCont(BinaryFirstCont{Op: tt.Op, Second: Closure{Body: tt.Right, Env: clos.Env}, Span: tt.Pos}, m.calls.Len(), tt.Pos)
			clos = Closure{Body: tt.Left, Env: clos.Env}
		default:
			// Weak-head normal form: settle pending memoizations,
			// then resume suspended work.
			for m.stack.IsTopThunk() {
				cell, _ := m.stack.PopThunk()
				if thnk := cell.Value(); thnk != nil {
					thnk.Update(clos)
					m.stats.ThunkUpdates++
				}
			}

			if m.stack.IsTopCont() {
				cont, depth, span, _ := m.stack.PopOpCont()
				m.calls.TruncateTo(depth)
				log.Trace().Str("span", span.String()).Int("stack", m.stack.Len()).Msg("eval: resuming operation")
				next, err := m.continueOperation(cont, clos)
				if err != nil {
					return nil, err
				}
				clos = next
				continue
			}

			if fun, ok := clos.Body.(*lang.Fun); ok {
				if arg, _, ok := m.stack.PopArg(); ok {
					clos = Closure{Body: fun.Body, Env: clos.Env.With(fun.Param, NewThunk(arg))}
					continue
				}
			}

			if m.stack.CountArgs() > 0 {
				_, span, _ := m.stack.PopArg()
				return nil, m.errorf(span, "cannot apply a non-function value: %s", lang.FormatTerm(clos.Body))
			}

			log.Trace().Int("steps", m.stats.Steps).Int("thunk_updates", m.stats.ThunkUpdates).Msg("eval: done")
			return clos.Body, nil
		}
	}
}
