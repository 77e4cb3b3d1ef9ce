package runtime

import (
	"fmt"
	"math"
	"strings"

	"github.com/AnnerChan/SMPLPROJECT/pkg/ast"
)

// numericOperands unpacks two numeric operands. When either side is real,
// both are returned as floats and isReal is set.
func numericOperands(op string, left, right Value) (li, ri int64, lf, rf float64, isReal bool, err error) {
	switch l := left.(type) {
	case *IntegerValue:
		li, lf = l.Val, float64(l.Val)
	case *RealValue:
		lf, isReal = l.Val, true
	default:
		return 0, 0, 0, 0, false, NewTypeError(op, left, KindInteger, KindReal)
	}
	switch r := right.(type) {
	case *IntegerValue:
		ri, rf = r.Val, float64(r.Val)
	case *RealValue:
		rf, isReal = r.Val, true
	default:
		return 0, 0, 0, 0, false, NewTypeError(op, right, KindInteger, KindReal)
	}
	return li, ri, lf, rf, isReal, nil
}

func Add(left, right Value) (Value, error) {
	li, ri, lf, rf, isReal, err := numericOperands("+", left, right)
	if err != nil {
		return nil, err
	}
	if isReal {
		return Real(lf + rf), nil
	}
	return Integer(li + ri), nil
}

func Sub(left, right Value) (Value, error) {
	li, ri, lf, rf, isReal, err := numericOperands("-", left, right)
	if err != nil {
		return nil, err
	}
	if isReal {
		return Real(lf - rf), nil
	}
	return Integer(li - ri), nil
}

func Mul(left, right Value) (Value, error) {
	li, ri, lf, rf, isReal, err := numericOperands("*", left, right)
	if err != nil {
		return nil, err
	}
	if isReal {
		return Real(lf * rf), nil
	}
	return Integer(li * ri), nil
}

// Div truncates toward zero for integers.
func Div(left, right Value) (Value, error) {
	li, ri, lf, rf, isReal, err := numericOperands("/", left, right)
	if err != nil {
		return nil, err
	}
	if isReal {
		if rf == 0 {
			return nil, &ArithmeticError{Op: "division"}
		}
		return Real(lf / rf), nil
	}
	if ri == 0 {
		return nil, &ArithmeticError{Op: "division"}
	}
	return Integer(li / ri), nil
}

// Mod takes the sign of the dividend, as Go's % and math.Mod do.
func Mod(left, right Value) (Value, error) {
	li, ri, lf, rf, isReal, err := numericOperands("%", left, right)
	if err != nil {
		return nil, err
	}
	if isReal {
		if rf == 0 {
			return nil, &ArithmeticError{Op: "modulo"}
		}
		return Real(math.Mod(lf, rf)), nil
	}
	if ri == 0 {
		return nil, &ArithmeticError{Op: "modulo"}
	}
	return Integer(li % ri), nil
}

// Pow stays integral for an integer base and non-negative integer exponent.
func Pow(left, right Value) (Value, error) {
	li, ri, lf, rf, isReal, err := numericOperands("^", left, right)
	if err != nil {
		return nil, err
	}
	if isReal || ri < 0 {
		return Real(math.Pow(lf, rf)), nil
	}
	result := int64(1)
	for base, exp := li, ri; exp > 0; exp >>= 1 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
	}
	return Integer(result), nil
}

// ValuesEqual compares primitives by value and pairs, lists and vectors
// structurally. Procedures and generators compare by identity. Values of
// different tags are never equal.
func ValuesEqual(left, right Value) bool {
	return valuesEqual(left, right, nil)
}

// vectorPair keys the vector comparisons in progress. A comparison that
// reaches the same pair again is assumed equal.
type vectorPair struct {
	left, right *VectorValue
}

func valuesEqual(left, right Value, comparing map[vectorPair]bool) bool {
	switch l := left.(type) {
	case *IntegerValue:
		r, ok := right.(*IntegerValue)
		return ok && l.Val == r.Val
	case *RealValue:
		r, ok := right.(*RealValue)
		return ok && l.Val == r.Val
	case *BoolValue:
		r, ok := right.(*BoolValue)
		return ok && l.Val == r.Val
	case *StringValue:
		r, ok := right.(*StringValue)
		return ok && l.Val == r.Val
	case *EmptyListValue:
		_, ok := right.(*EmptyListValue)
		return ok
	case *PairValue:
		r, ok := right.(*PairValue)
		return ok && valuesEqual(l.First, r.First, comparing) && valuesEqual(l.Second, r.Second, comparing)
	case *ListValue:
		r, ok := right.(*ListValue)
		return ok && valuesEqual(l.Head, r.Head, comparing) && valuesEqual(l.Tail, r.Tail, comparing)
	case *VectorValue:
		r, ok := right.(*VectorValue)
		if !ok || len(l.Elements) != len(r.Elements) {
			return false
		}
		if l == r {
			return true
		}
		key := vectorPair{l, r}
		if comparing[key] {
			return true
		}
		if comparing == nil {
			comparing = make(map[vectorPair]bool)
		}
		comparing[key] = true
		defer delete(comparing, key)
		for i := range l.Elements {
			if !valuesEqual(l.Elements[i], r.Elements[i], comparing) {
				return false
			}
		}
		return true
	default:
		return left == right
	}
}

// Identical reports reference identity of two evaluated values.
func Identical(left, right Value) bool {
	return left == right
}

func Equal(left, right Value) (Value, error) {
	return Bool(ValuesEqual(left, right)), nil
}

func NotEqual(left, right Value) (Value, error) {
	return Bool(!ValuesEqual(left, right)), nil
}

// compare orders two numbers or two strings, returning -1, 0 or 1.
func compare(op string, left, right Value) (int, error) {
	if ls, ok := left.(*StringValue); ok {
		rs, ok := right.(*StringValue)
		if !ok {
			return 0, NewTypeError(op, right, KindString)
		}
		return strings.Compare(ls.Val, rs.Val), nil
	}
	li, ri, lf, rf, isReal, err := numericOperands(op, left, right)
	if err != nil {
		return 0, err
	}
	if isReal {
		switch {
		case lf < rf:
			return -1, nil
		case lf > rf:
			return 1, nil
		case lf == rf:
			return 0, nil
		}
		// NaN is unordered; any relational test is false.
		return 2, nil
	}
	switch {
	case li < ri:
		return -1, nil
	case li > ri:
		return 1, nil
	}
	return 0, nil
}

func Less(left, right Value) (Value, error) {
	c, err := compare("<", left, right)
	if err != nil {
		return nil, err
	}
	return Bool(c == -1), nil
}

func LessEqual(left, right Value) (Value, error) {
	c, err := compare("<=", left, right)
	if err != nil {
		return nil, err
	}
	return Bool(c == -1 || c == 0), nil
}

func Greater(left, right Value) (Value, error) {
	c, err := compare(">", left, right)
	if err != nil {
		return nil, err
	}
	return Bool(c == 1), nil
}

func GreaterEqual(left, right Value) (Value, error) {
	c, err := compare(">=", left, right)
	if err != nil {
		return nil, err
	}
	return Bool(c == 1 || c == 0), nil
}

func boolOperands(op string, left, right Value) (bool, bool, error) {
	l, ok := left.(*BoolValue)
	if !ok {
		return false, false, NewTypeError(op, left, KindBool)
	}
	r, ok := right.(*BoolValue)
	if !ok {
		return false, false, NewTypeError(op, right, KindBool)
	}
	return l.Val, r.Val, nil
}

func And(left, right Value) (Value, error) {
	l, r, err := boolOperands("and", left, right)
	if err != nil {
		return nil, err
	}
	return Bool(l && r), nil
}

func Or(left, right Value) (Value, error) {
	l, r, err := boolOperands("or", left, right)
	if err != nil {
		return nil, err
	}
	return Bool(l || r), nil
}

func Not(operand Value) (Value, error) {
	v, ok := operand.(*BoolValue)
	if !ok {
		return nil, NewTypeError("not", operand, KindBool)
	}
	return Bool(!v.Val), nil
}

func integerOperands(op string, left, right Value) (int64, int64, error) {
	l, ok := left.(*IntegerValue)
	if !ok {
		return 0, 0, NewTypeError(op, left, KindInteger)
	}
	r, ok := right.(*IntegerValue)
	if !ok {
		return 0, 0, NewTypeError(op, right, KindInteger)
	}
	return l.Val, r.Val, nil
}

func BitAnd(left, right Value) (Value, error) {
	l, r, err := integerOperands("&", left, right)
	if err != nil {
		return nil, err
	}
	return Integer(l & r), nil
}

func BitOr(left, right Value) (Value, error) {
	l, r, err := integerOperands("|", left, right)
	if err != nil {
		return nil, err
	}
	return Integer(l | r), nil
}

func BitNot(operand Value) (Value, error) {
	v, ok := operand.(*IntegerValue)
	if !ok {
		return nil, NewTypeError("~", operand, KindInteger)
	}
	return Integer(^v.Val), nil
}

var binaryOperators = map[string]func(Value, Value) (Value, error){
	"+":   Add,
	"-":   Sub,
	"*":   Mul,
	"/":   Div,
	"%":   Mod,
	"^":   Pow,
	"=":   Equal,
	"!=":  NotEqual,
	"<":   Less,
	"<=":  LessEqual,
	">":   Greater,
	">=":  GreaterEqual,
	"and": And,
	"or":  Or,
	"&":   BitAnd,
	"|":   BitOr,
}

// ApplyBinary dispatches a binary operator symbol.
func ApplyBinary(op string, left, right Value) (Value, error) {
	fn, ok := binaryOperators[op]
	if !ok {
		return nil, fmt.Errorf("unsupported binary operator %q", op)
	}
	return fn(left, right)
}

// ApplyUnary dispatches a unary operator.
func ApplyUnary(op ast.UnaryOperator, operand Value) (Value, error) {
	switch op {
	case ast.UnaryNot:
		return Not(operand)
	case ast.UnaryBitNot:
		return BitNot(operand)
	default:
		return nil, fmt.Errorf("unsupported unary operator %q", op)
	}
}
