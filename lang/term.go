package lang

// Term is the closed set of expression forms the machine evaluates.
// Scalar forms double as their own weak-head normal forms.
type Term interface {
	isTerm()
}

type Bool bool

func (Bool) isTerm() {}

type Num float64

func (Num) isTerm() {}

type Str string

func (Str) isTerm() {}

// List holds its elements unevaluated; they are closed over the
// surrounding environment when the list reaches weak-head normal form.
type List struct {
	Elems []Term
	Pos   *Span
}

func (*List) isTerm() {}

// Record maps field names to unevaluated field terms.
type Record struct {
	Fields map[string]Term
	Pos    *Span
}

func (*Record) isTerm() {}

type Var struct {
	Name string
	Pos  *Span
}

func (*Var) isTerm() {}

// Fun is a one-parameter function. Multi-parameter surface functions
// are curried into nested Funs by the front end.
type Fun struct {
	Param string
	Body  Term
	Pos   *Span
}

func (*Fun) isTerm() {}

// Let binds Name to Bound, lazily, in Body. The binding is not
// recursive: Bound is closed over the environment outside the let.
type Let struct {
	Name  string
	Bound Term
	Body  Term
	Pos   *Span
}

func (*Let) isTerm() {}

type App struct {
	Fn  Term
	Arg Term
	Pos *Span
}

func (*App) isTerm() {}

type If struct {
	Cond Term
	Then Term
	Else Term
	Pos  *Span
}

func (*If) isTerm() {}

type Op1 struct {
	Op  UnaryOp
	Arg Term
	Pos *Span
}

func (*Op1) isTerm() {}

type Op2 struct {
	Op    BinaryOp
	Left  Term
	Right Term
	Pos   *Span
}

func (*Op2) isTerm() {}

// IsWHNF reports whether t is a weak-head normal form, i.e. a term the
// machine cannot reduce further without consuming stack frames.
func IsWHNF(t Term) bool {
	switch t.(type) {
	case Bool, Num, Str, *List, *Record, *Fun:
		return true
	default:
		return false
	}
}
