package lang

import "fmt"

type UnaryOp int

const (
	IsNum UnaryOp = iota
	IsBool
	IsStr
	IsFun
	IsList
	IsRecord
	Not
	Neg
	Head
	Tail
	Length
	// IfThenElse drives the conditional: the machine pushes the two
	// branches as argument frames, evaluates the condition under this
	// continuation, and the continuation selects a branch.
	IfThenElse
)

func (op UnaryOp) String() string {
	switch op {
	case IsNum:
		return "is_num"
	case IsBool:
		return "is_bool"
	case IsStr:
		return "is_str"
	case IsFun:
		return "is_fun"
	case IsList:
		return "is_list"
	case IsRecord:
		return "is_record"
	case Not:
		return "not"
	case Neg:
		return "neg"
	case Head:
		return "head"
	case Tail:
		return "tail"
	case Length:
		return "length"
	case IfThenElse:
		return "if_then_else"
	default:
		return fmt.Sprintf("UnaryOp(%d)", int(op))
	}
}

type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Eq
	Lt
	Lte
	Gt
	Gte
	Concat
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Eq:
		return "=="
	case Lt:
		return "<"
	case Lte:
		return "<="
	case Gt:
		return ">"
	case Gte:
		return ">="
	case Concat:
		return "++"
	default:
		return fmt.Sprintf("BinaryOp(%d)", int(op))
	}
}
