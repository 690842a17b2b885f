package lang

import (
	"fmt"
	"io"
	"sort"

	"github.com/shamaton/msgpack/v2"
)

// node is the wire form of a term: a flat tagged tree that msgpack can
// round-trip without knowing the Term interface. Record fields are
// encoded as parallel Keys/Kids slices in sorted key order so the same
// term always encodes to the same bytes.
type node struct {
	Kind string
	Bool bool
	Num  float64
	Str  string
	Name string
	Op   int
	Keys []string
	Kids []*node
	Span *Span
}

type compiledWire struct {
	File     string
	Bindings []bindingWire
	Main     *node
}

type bindingWire struct {
	Name string
	Root *node
}

func (c *Compiled) Encode(w io.Writer) error {
	wire := compiledWire{File: c.File}
	for _, b := range c.Bindings {
		wire.Bindings = append(wire.Bindings, bindingWire{Name: b.Name, Root: encodeTerm(b.Term)})
	}
	if c.Main != nil {
		wire.Main = encodeTerm(c.Main)
	}
	return msgpack.MarshalWrite(w, &wire)
}

func (c *Compiled) Decode(r io.Reader) error {
	var wire compiledWire
	if err := msgpack.UnmarshalRead(r, &wire); err != nil {
		return err
	}
	out := Compiled{File: wire.File}
	for _, b := range wire.Bindings {
		t, err := decodeNode(b.Root)
		if err != nil {
			return err
		}
		out.Bindings = append(out.Bindings, Binding{Name: b.Name, Term: t})
	}
	if wire.Main != nil {
		t, err := decodeNode(wire.Main)
		if err != nil {
			return err
		}
		out.Main = t
	}
	*c = out
	return nil
}

func encodeTerm(t Term) *node {
	switch tt := t.(type) {
	case Bool:
		return &node{Kind: "bool", Bool: bool(tt)}
	case Num:
		return &node{Kind: "num", Num: float64(tt)}
	case Str:
		return &node{Kind: "str", Str: string(tt)}
	case *List:
		n := &node{Kind: "list", Span: tt.Pos}
		for _, el := range tt.Elems {
			n.Kids = append(n.Kids, encodeTerm(el))
		}
		return n
	case *Record:
		n := &node{Kind: "record", Span: tt.Pos}
		keys := make([]string, 0, len(tt.Fields))
		for k := range tt.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n.Keys = append(n.Keys, k)
			n.Kids = append(n.Kids, encodeTerm(tt.Fields[k]))
		}
		return n
	case *Var:
		return &node{Kind: "var", Name: tt.Name, Span: tt.Pos}
	case *Fun:
		return &node{Kind: "fun", Name: tt.Param, Kids: []*node{encodeTerm(tt.Body)}, Span: tt.Pos}
	case *Let:
		return &node{Kind: "let", Name: tt.Name, Kids: []*node{encodeTerm(tt.Bound), encodeTerm(tt.Body)}, Span: tt.Pos}
	case *App:
		return &node{Kind: "app", Kids: []*node{encodeTerm(tt.Fn), encodeTerm(tt.Arg)}, Span: tt.Pos}
	case *If:
		return &node{Kind: "if", Kids: []*node{encodeTerm(tt.Cond), encodeTerm(tt.Then), encodeTerm(tt.Else)}, Span: tt.Pos}
	case *Op1:
		return &node{Kind: "op1", Op: int(tt.Op), Kids: []*node{encodeTerm(tt.Arg)}, Span: tt.Pos}
	case *Op2:
		return &node{Kind: "op2", Op: int(tt.Op), Kids: []*node{encodeTerm(tt.Left), encodeTerm(tt.Right)}, Span: tt.Pos}
	default:
		panic(fmt.Sprintf("encodeTerm: unhandled term %T", t))
	}
}

func decodeNode(n *node) (Term, error) {
	if n == nil {
		return nil, fmt.Errorf("decode: missing node")
	}
	kids := func(want int) ([]Term, error) {
		if len(n.Kids) != want {
			return nil, fmt.Errorf("decode: %s node has %d children, want %d", n.Kind, len(n.Kids), want)
		}
		out := make([]Term, want)
		for i, k := range n.Kids {
			t, err := decodeNode(k)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
		return out, nil
	}
	switch n.Kind {
	case "bool":
		return Bool(n.Bool), nil
	case "num":
		return Num(n.Num), nil
	case "str":
		return Str(n.Str), nil
	case "list":
		elems := make([]Term, 0, len(n.Kids))
		for _, k := range n.Kids {
			t, err := decodeNode(k)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
		}
		return &List{Elems: elems, Pos: n.Span}, nil
	case "record":
		if len(n.Keys) != len(n.Kids) {
			return nil, fmt.Errorf("decode: record has %d keys but %d fields", len(n.Keys), len(n.Kids))
		}
		fields := make(map[string]Term, len(n.Kids))
		for i, k := range n.Kids {
			t, err := decodeNode(k)
			if err != nil {
				return nil, err
			}
			fields[n.Keys[i]] = t
		}
		return &Record{Fields: fields, Pos: n.Span}, nil
	case "var":
		return &Var{Name: n.Name, Pos: n.Span}, nil
	case "fun":
		k, err := kids(1)
		if err != nil {
			return nil, err
		}
		return &Fun{Param: n.Name, Body: k[0], Pos: n.Span}, nil
	case "let":
		k, err := kids(2)
		if err != nil {
			return nil, err
		}
		return &Let{Name: n.Name, Bound: k[0], Body: k[1], Pos: n.Span}, nil
	case "app":
		k, err := kids(2)
		if err != nil {
			return nil, err
		}
		return &App{Fn: k[0], Arg: k[1], Pos: n.Span}, nil
	case "if":
		k, err := kids(3)
		if err != nil {
			return nil, err
		}
		return &If{Cond: k[0], Then: k[1], Else: k[2], Pos: n.Span}, nil
	case "op1":
		k, err := kids(1)
		if err != nil {
			return nil, err
		}
		return &Op1{Op: UnaryOp(n.Op), Arg: k[0], Pos: n.Span}, nil
	case "op2":
		k, err := kids(2)
		if err != nil {
			return nil, err
		}
		return &Op2{Op: BinaryOp(n.Op), Left: k[0], Right: k[1], Pos: n.Span}, nil
	default:
		return nil, fmt.Errorf("decode: unknown node kind %q", n.Kind)
	}
}
