package lang

import (
	"fmt"
	"os"

	"go.starlark.net/syntax"
)

// Compiled is a translated source file: a sequence of top-level
// bindings followed by an optional trailing expression. Each binding
// may refer to the bindings before it.
type Compiled struct {
	File     string
	Bindings []Binding
	Main     Term
}

type Binding struct {
	Name string
	Term Term
}

// unaryBuiltins maps surface-level call names to primitive unary
// operations: is_num(x), head(xs) and friends compile to Op1 terms.
var unaryBuiltins = map[string]UnaryOp{
	"is_num":    IsNum,
	"is_bool":   IsBool,
	"is_str":    IsStr,
	"is_fun":    IsFun,
	"is_list":   IsList,
	"is_record": IsRecord,
	"head":      Head,
	"tail":      Tail,
	"length":    Length,
}

// binaryBuiltins holds the primitives without operator syntax:
// concat(xs, ys) joins two lists or two strings.
var binaryBuiltins = map[string]BinaryOp{
	"concat": Concat,
}

func CompilePath(path string) (*Compiled, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	opts := syntax.FileOptions{}
	synFile, err := opts.Parse(path, f, 0)
	if err != nil {
		return nil, err
	}
	return translateFile(path, synFile)
}

// CompileFile translates already-read source bytes, reported under
// name in spans and errors.
func CompileFile(name string, src []byte) (*Compiled, error) {
	opts := syntax.FileOptions{}
	synFile, err := opts.Parse(name, src, 0)
	if err != nil {
		return nil, err
	}
	return translateFile(name, synFile)
}

func CompileLiteral(src string) (*Compiled, error) {
	return CompileFile("literal", []byte(src))
}

// ParseExprString translates a single expression, e.g. a check
// expression from a suite manifest.
func ParseExprString(name, src string) (Term, error) {
	opts := syntax.FileOptions{}
	e, err := opts.ParseExpr(name, src, 0)
	if err != nil {
		return nil, err
	}
	return translateExpr(e)
}

func translateFile(name string, f *syntax.File) (*Compiled, error) {
	out := &Compiled{File: name}
	for i, stmt := range f.Stmts {
		switch st := stmt.(type) {
		case *syntax.AssignStmt:
			b, err := translateAssign(st)
			if err != nil {
				return nil, err
			}
			out.Bindings = append(out.Bindings, b)
		case *syntax.DefStmt:
			fun, err := translateDef(st)
			if err != nil {
				return nil, err
			}
			out.Bindings = append(out.Bindings, Binding{Name: st.Name.Name, Term: fun})
		case *syntax.ExprStmt:
			if i != len(f.Stmts)-1 {
				return nil, stmtErrorf(stmt, "only the final statement may be a bare expression")
			}
			main, err := translateExpr(st.X)
			if err != nil {
				return nil, err
			}
			out.Main = main
		default:
			return nil, stmtErrorf(stmt, "unsupported statement %T; expected a binding, definition, or final expression", stmt)
		}
	}
	return out, nil
}

func translateAssign(st *syntax.AssignStmt) (Binding, error) {
	if st.Op != syntax.EQ {
		return Binding{}, stmtErrorf(st, "augmented assignment is not supported")
	}
	ident, ok := st.LHS.(*syntax.Ident)
	if !ok {
		return Binding{}, stmtErrorf(st, "binding target must be a plain name")
	}
	t, err := translateExpr(st.RHS)
	if err != nil {
		return Binding{}, err
	}
	return Binding{Name: ident.Name, Term: t}, nil
}

// translateDef turns a def into a curried function whose body is the
// def's assignments as nested lets around a single return expression.
func translateDef(st *syntax.DefStmt) (Term, error) {
	body, err := translateDefBody(st.Body)
	if err != nil {
		return nil, err
	}
	params := make([]string, 0, len(st.Params))
	for _, p := range st.Params {
		ident, ok := p.(*syntax.Ident)
		if !ok {
			return nil, stmtErrorf(st, "function %s: parameters must be plain names", st.Name.Name)
		}
		params = append(params, ident.Name)
	}
	return curry(params, body, spanOf(st.Name)), nil
}

func translateDefBody(stmts []syntax.Stmt) (Term, error) {
	if len(stmts) == 0 {
		return nil, fmt.Errorf("function body must end in a return")
	}
	last := stmts[len(stmts)-1]
	ret, ok := last.(*syntax.ReturnStmt)
	if !ok {
		return nil, stmtErrorf(last, "function body must end in a return")
	}
	if ret.Result == nil {
		return nil, stmtErrorf(last, "return requires a value")
	}
	body, err := translateExpr(ret.Result)
	if err != nil {
		return nil, err
	}
	for i := len(stmts) - 2; i >= 0; i-- {
		st, ok := stmts[i].(*syntax.AssignStmt)
		if !ok {
			return nil, stmtErrorf(stmts[i], "function bodies may only contain bindings before the return")
		}
		b, err := translateAssign(st)
		if err != nil {
			return nil, err
		}
		body = &Let{Name: b.Name, Bound: b.Term, Body: body, Pos: spanOf(st.LHS)}
	}
	return body, nil
}

func translateExpr(e syntax.Expr) (Term, error) {
	switch ex := e.(type) {
	case *syntax.ParenExpr:
		return translateExpr(ex.X)
	case *syntax.Literal:
		switch v := ex.Value.(type) {
		case int64:
			return Num(v), nil
		case float64:
			return Num(v), nil
		case string:
			return Str(v), nil
		default:
			return nil, exprErrorf(e, "unsupported literal %v", ex.Value)
		}
	case *syntax.Ident:
		switch ex.Name {
		case "True":
			return Bool(true), nil
		case "False":
			return Bool(false), nil
		case "None":
			return nil, exprErrorf(e, "None has no meaning here")
		default:
			return &Var{Name: ex.Name, Pos: spanOf(e)}, nil
		}
	case *syntax.ListExpr:
		elems := make([]Term, 0, len(ex.List))
		for _, el := range ex.List {
			t, err := translateExpr(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		return &List{Elems: elems, Pos: spanOf(e)}, nil
	case *syntax.DictExpr:
		fields := make(map[string]Term, len(ex.List))
		for _, entry := range ex.List {
			de, ok := entry.(*syntax.DictEntry)
			if !ok {
				return nil, exprErrorf(entry, "malformed record literal")
			}
			keyLit, ok := de.Key.(*syntax.Literal)
			if !ok {
				return nil, exprErrorf(de.Key, "record keys must be string literals")
			}
			key, ok := keyLit.Value.(string)
			if !ok {
				return nil, exprErrorf(de.Key, "record keys must be string literals")
			}
			t, err := translateExpr(de.Value)
			if err != nil {
				return nil, err
			}
			fields[key] = t
		}
		return &Record{Fields: fields, Pos: spanOf(e)}, nil
	case *syntax.LambdaExpr:
		body, err := translateExpr(ex.Body)
		if err != nil {
			return nil, err
		}
		params := make([]string, 0, len(ex.Params))
		for _, p := range ex.Params {
			ident, ok := p.(*syntax.Ident)
			if !ok {
				return nil, exprErrorf(p, "lambda parameters must be plain names")
			}
			params = append(params, ident.Name)
		}
		return curry(params, body, spanOf(e)), nil
	case *syntax.CallExpr:
		return translateCall(ex)
	case *syntax.CondExpr:
		cond, err := translateExpr(ex.Cond)
		if err != nil {
			return nil, err
		}
		then, err := translateExpr(ex.True)
		if err != nil {
			return nil, err
		}
		els, err := translateExpr(ex.False)
		if err != nil {
			return nil, err
		}
		return &If{Cond: cond, Then: then, Else: els, Pos: spanOf(e)}, nil
	case *syntax.UnaryExpr:
		arg, err := translateExpr(ex.X)
		if err != nil {
			return nil, err
		}
		switch ex.Op {
		case syntax.MINUS:
			return &Op1{Op: Neg, Arg: arg, Pos: spanOf(e)}, nil
		case syntax.PLUS:
			return arg, nil
		case syntax.NOT:
			return &Op1{Op: Not, Arg: arg, Pos: spanOf(e)}, nil
		default:
			return nil, exprErrorf(e, "unsupported unary operator %s", ex.Op)
		}
	case *syntax.BinaryExpr:
		return translateBinary(ex)
	default:
		return nil, exprErrorf(e, "unsupported expression %T", e)
	}
}

func translateCall(ex *syntax.CallExpr) (Term, error) {
	if ident, ok := ex.Fn.(*syntax.Ident); ok {
		if op, ok := unaryBuiltins[ident.Name]; ok {
			if len(ex.Args) != 1 {
				return nil, exprErrorf(ex, "%s takes exactly one argument", ident.Name)
			}
			arg, err := translateExpr(ex.Args[0])
			if err != nil {
				return nil, err
			}
			return &Op1{Op: op, Arg: arg, Pos: spanOf(ex)}, nil
		}
		if op, ok := binaryBuiltins[ident.Name]; ok {
			if len(ex.Args) != 2 {
				return nil, exprErrorf(ex, "%s takes exactly two arguments", ident.Name)
			}
			left, err := translateExpr(ex.Args[0])
			if err != nil {
				return nil, err
			}
			right, err := translateExpr(ex.Args[1])
			if err != nil {
				return nil, err
			}
			return &Op2{Op: op, Left: left, Right: right, Pos: spanOf(ex)}, nil
		}
	}
	fn, err := translateExpr(ex.Fn)
	if err != nil {
		return nil, err
	}
	for _, a := range ex.Args {
		if bin, ok := a.(*syntax.BinaryExpr); ok && bin.Op == syntax.EQ {
			return nil, exprErrorf(a, "keyword arguments are not supported")
		}
		arg, err := translateExpr(a)
		if err != nil {
			return nil, err
		}
		fn = &App{Fn: fn, Arg: arg, Pos: spanOf(ex)}
	}
	return fn, nil
}

func translateBinary(ex *syntax.BinaryExpr) (Term, error) {
	x, err := translateExpr(ex.X)
	if err != nil {
		return nil, err
	}
	y, err := translateExpr(ex.Y)
	if err != nil {
		return nil, err
	}
	pos := spanOf(ex)
	switch ex.Op {
	case syntax.PLUS:
		return &Op2{Op: Add, Left: x, Right: y, Pos: pos}, nil
	case syntax.MINUS:
		return &Op2{Op: Sub, Left: x, Right: y, Pos: pos}, nil
	case syntax.STAR:
		return &Op2{Op: Mul, Left: x, Right: y, Pos: pos}, nil
	case syntax.SLASH:
		return &Op2{Op: Div, Left: x, Right: y, Pos: pos}, nil
	case syntax.EQL:
		return &Op2{Op: Eq, Left: x, Right: y, Pos: pos}, nil
	case syntax.NEQ:
		return &Op1{Op: Not, Arg: &Op2{Op: Eq, Left: x, Right: y, Pos: pos}, Pos: pos}, nil
	case syntax.LT:
		return &Op2{Op: Lt, Left: x, Right: y, Pos: pos}, nil
	case syntax.LE:
		return &Op2{Op: Lte, Left: x, Right: y, Pos: pos}, nil
	case syntax.GT:
		return &Op2{Op: Gt, Left: x, Right: y, Pos: pos}, nil
	case syntax.GE:
		return &Op2{Op: Gte, Left: x, Right: y, Pos: pos}, nil
	case syntax.AND:
		// Short-circuit: a and b == if a then b else False.
		return &If{Cond: x, Then: y, Else: Bool(false), Pos: pos}, nil
	case syntax.OR:
		return &If{Cond: x, Then: Bool(true), Else: y, Pos: pos}, nil
	default:
		return nil, exprErrorf(ex, "unsupported binary operator %s", ex.Op)
	}
}

func curry(params []string, body Term, pos *Span) Term {
	if len(params) == 0 {
		// A zero-parameter function still delays its body.
		return &Fun{Param: "_", Body: body, Pos: pos}
	}
	out := body
	for i := len(params) - 1; i >= 0; i-- {
		out = &Fun{Param: params[i], Body: out, Pos: pos}
	}
	return out
}

func spanOf(e syntax.Expr) *Span {
	start, _ := e.Span()
	return &Span{File: start.Filename(), Line: start.Line, Col: start.Col}
}

func exprErrorf(e syntax.Expr, format string, args ...any) error {
	start, _ := e.Span()
	return fmt.Errorf("%s: %s", start, fmt.Sprintf(format, args...))
}

func stmtErrorf(s syntax.Stmt, format string, args ...any) error {
	start, _ := s.Span()
	return fmt.Errorf("%s: %s", start, fmt.Sprintf(format, args...))
}
