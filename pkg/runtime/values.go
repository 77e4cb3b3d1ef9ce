package runtime

import (
	"fmt"

	"github.com/AnnerChan/SMPLPROJECT/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindInteger Kind = iota
	KindReal
	KindBool
	KindString
	KindPair
	KindList
	KindEmptyList
	KindVector
	KindVectorGenerator
	KindProcedure
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReal:
		return "real"
	case KindBool:
		return "boolean"
	case KindString:
		return "string"
	case KindPair:
		return "pair"
	case KindList:
		return "list"
	case KindEmptyList:
		return "empty_list"
	case KindVector:
		return "vector"
	case KindVectorGenerator:
		return "vector_generator"
	case KindProcedure:
		return "procedure"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values. Every variant is a
// pointer type so reference identity is observable.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type IntegerValue struct {
	Val int64
}

func (*IntegerValue) Kind() Kind { return KindInteger }

type RealValue struct {
	Val float64
}

func (*RealValue) Kind() Kind { return KindReal }

type BoolValue struct {
	Val bool
}

func (*BoolValue) Kind() Kind { return KindBool }

type StringValue struct {
	Val string
}

func (*StringValue) Kind() Kind { return KindString }

func Integer(v int64) *IntegerValue { return &IntegerValue{Val: v} }
func Real(v float64) *RealValue { return &RealValue{Val: v} }
func Bool(v bool) *BoolValue { return &BoolValue{Val: v} }
func String(v string) *StringValue { return &StringValue{Val: v} }

//-----------------------------------------------------------------------------
// Pairs and lists
//-----------------------------------------------------------------------------

// PairValue holds two arbitrary values that need not form a proper list.
type PairValue struct {
	First  Value
	Second Value
}

func (*PairValue) Kind() Kind { return KindPair }

// ListValue is a cons cell whose Tail is another *ListValue or EmptyList.
type ListValue struct {
	Head Value
	Tail Value
}

func (*ListValue) Kind() Kind { return KindList }

type EmptyListValue struct{}

func (*EmptyListValue) Kind() Kind { return KindEmptyList }

// EmptyList is the single empty-list sentinel.
var EmptyList = &EmptyListValue{}

// IsListLike reports whether v is a List or the EmptyList.
func IsListLike(v Value) bool {
	switch v.(type) {
	case *ListValue, *EmptyListValue:
		return true
	}
	return false
}

// Cons builds a List when tail is list-like and a Pair otherwise.
func Cons(head, tail Value) Value {
	if IsListLike(tail) {
		return &ListValue{Head: head, Tail: tail}
	}
	return &PairValue{First: head, Second: tail}
}

// MakeList builds a proper list from values; no values yields EmptyList.
func MakeList(values ...Value) Value {
	var list Value = EmptyList
	for i := len(values) - 1; i >= 0; i-- {
		list = &ListValue{Head: values[i], Tail: list}
	}
	return list
}

// ListElements flattens a list into a slice. It fails with a TypeError when v
// is not list-like or a tail is not a list.
func ListElements(v Value) ([]Value, error) {
	var out []Value
	for {
		switch cell := v.(type) {
		case *EmptyListValue:
			return out, nil
		case *ListValue:
			out = append(out, cell.Head)
			v = cell.Tail
		default:
			return nil, NewTypeError("list", v, KindList, KindEmptyList)
		}
	}
}

//-----------------------------------------------------------------------------
// Vectors
//-----------------------------------------------------------------------------

// VectorValue is fixed-length and mutable in place by index.
type VectorValue struct {
	Elements []Value
}

func (*VectorValue) Kind() Kind { return KindVector }

// VectorGeneratorValue only appears while a vector literal is being expanded.
type VectorGeneratorValue struct {
	Count     int64
	Procedure *ProcedureValue
}

func (*VectorGeneratorValue) Kind() Kind { return KindVectorGenerator }

//-----------------------------------------------------------------------------
// Procedures
//-----------------------------------------------------------------------------

// ProcedureValue is a closure; Closure is shared with every invocation.
type ProcedureValue struct {
	Declaration *ast.ProcedureExpression
	Closure     *Environment
}

func (*ProcedureValue) Kind() Kind { return KindProcedure }

func (p *ProcedureValue) Parameters() []string {
	if p.Declaration == nil {
		return nil
	}
	return p.Declaration.ParameterNames()
}

func (p *ProcedureValue) Rest() string {
	if p.Declaration == nil {
		return ""
	}
	return p.Declaration.RestName()
}
