package eval

import "github.com/needle-lang/needle/lang"

// Closure pairs a term with the environment it closes over.
type Closure struct {
	Body lang.Term
	Env  Env
}

// AtomicClosure wraps a term that needs no environment.
func AtomicClosure(t lang.Term) Closure {
	return Closure{Body: t}
}

// Thunk is a shared, mutable memoization cell: it holds a suspended
// closure until the machine evaluates it, then the weak-head normal
// form forever after. Environments hold thunks by strong pointer; the
// control stack holds them only weakly (see Stack.PushThunk), so a
// thunk dies as soon as no environment can reach it.
type Thunk struct {
	closure   Closure
	evaluated bool
}

func NewThunk(c Closure) *Thunk {
	return &Thunk{closure: c}
}

func (t *Thunk) Closure() Closure {
	return t.closure
}

// Evaluated reports whether the cell already holds a weak-head normal
// form.
func (t *Thunk) Evaluated() bool {
	return t.evaluated
}

// Update overwrites the cell with an evaluated closure. Every later
// use of the thunk sees c without re-evaluating.
func (t *Thunk) Update(c Closure) {
	t.closure = c
	t.evaluated = true
}

// Env maps identifiers to their memoization cells. Extension copies
// the map, so closures capture the environment as it was at closure
// time.
type Env map[string]*Thunk

func (e Env) Get(name string) (*Thunk, bool) {
	t, ok := e[name]
	return t, ok
}

func (e Env) With(name string, t *Thunk) Env {
	out := make(Env, len(e)+1)
	for k, v := range e {
		out[k] = v
	}
	out[name] = t
	return out
}
