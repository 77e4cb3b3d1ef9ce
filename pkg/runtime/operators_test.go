package runtime

import (
	"errors"
	"math"
	"testing"

	"github.com/AnnerChan/SMPLPROJECT/pkg/ast"
)

func TestArithmetic(t *testing.T) {
	cases := []struct {
		op          string
		left, right Value
		want        string
		kind        Kind
	}{
		{"+", Integer(2), Integer(3), "5", KindInteger},
		{"+", Integer(2), Real(1.5), "3.5", KindReal},
		{"-", Real(1), Integer(3), "-2.0", KindReal},
		{"*", Integer(-4), Integer(3), "-12", KindInteger},
		{"/", Integer(7), Integer(2), "3", KindInteger},
		{"/", Integer(-7), Integer(2), "-3", KindInteger},
		{"/", Integer(7), Real(2), "3.5", KindReal},
		{"%", Integer(-7), Integer(3), "-1", KindInteger},
		{"%", Real(7.5), Integer(2), "1.5", KindReal},
		{"^", Integer(2), Integer(10), "1024", KindInteger},
		{"^", Integer(2), Integer(-1), "0.5", KindReal},
		{"^", Real(4), Real(0.5), "2.0", KindReal},
		{"&", Integer(6), Integer(3), "2", KindInteger},
		{"|", Integer(6), Integer(3), "7", KindInteger},
	}
	for _, tc := range cases {
		got, err := ApplyBinary(tc.op, tc.left, tc.right)
		if err != nil {
			t.Fatalf("%s %s %s: unexpected error: %v", Format(tc.left), tc.op, Format(tc.right), err)
		}
		if got.Kind() != tc.kind || Format(got) != tc.want {
			t.Fatalf("%s %s %s: expected %s %s, got %s %s", Format(tc.left), tc.op, Format(tc.right), tc.kind, tc.want, got.Kind(), Format(got))
		}
	}
}

func TestDivisionByZero(t *testing.T) {
	for _, op := range []string{"/", "%"} {
		for _, zero := range []Value{Integer(0), Real(0)} {
			_, err := ApplyBinary(op, Integer(1), zero)
			var arith *ArithmeticError
			if !errors.As(err, &arith) {
				t.Fatalf("1 %s %s: expected ArithmeticError, got %v", op, Format(zero), err)
			}
		}
	}
}

func TestArithmeticTypeErrors(t *testing.T) {
	_, err := Add(Integer(1), String("x"))
	var typeErr *TypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected TypeError, got %v", err)
	}
	if typeErr.Actual != KindString || len(typeErr.Expected) != 2 {
		t.Fatalf("unexpected type error %#v", typeErr)
	}
	if typeErr.Error() != "+: expected integer or real, got string" {
		t.Fatalf("unexpected message %q", typeErr.Error())
	}

	if _, err := And(Bool(true), Integer(1)); !errors.As(err, &typeErr) {
		t.Fatalf("expected TypeError for and, got %v", err)
	}
	if _, err := BitAnd(Real(1), Integer(1)); !errors.As(err, &typeErr) {
		t.Fatalf("expected TypeError for &, got %v", err)
	}
	if _, err := Less(String("a"), Integer(1)); !errors.As(err, &typeErr) {
		t.Fatalf("expected TypeError for mixed comparison, got %v", err)
	}
}

func TestRelational(t *testing.T) {
	cases := []struct {
		op          string
		left, right Value
		want        bool
	}{
		{"<", Integer(1), Integer(2), true},
		{"<", Integer(2), Real(1.5), false},
		{"<=", Real(2), Integer(2), true},
		{">", String("b"), String("a"), true},
		{">=", String("a"), String("b"), false},
		{"<", Real(math.NaN()), Integer(1), false},
		{">=", Real(math.NaN()), Integer(1), false},
	}
	for _, tc := range cases {
		got, err := ApplyBinary(tc.op, tc.left, tc.right)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.(*BoolValue).Val != tc.want {
			t.Fatalf("%s %s %s: expected %v", Format(tc.left), tc.op, Format(tc.right), tc.want)
		}
	}
}

func TestEquality(t *testing.T) {
	proc := &ProcedureValue{}
	cases := []struct {
		left, right Value
		want        bool
	}{
		{Integer(1), Integer(1), true},
		{Integer(1), Real(1), false},
		{String("a"), String("a"), true},
		{Bool(true), Bool(false), false},
		{MakeList(Integer(1), Integer(2)), MakeList(Integer(1), Integer(2)), true},
		{MakeList(Integer(1)), MakeList(Integer(1), Integer(2)), false},
		{Cons(Integer(1), Integer(2)), Cons(Integer(1), Integer(2)), true},
		{&VectorValue{Elements: []Value{Integer(1)}}, &VectorValue{Elements: []Value{Integer(1)}}, true},
		{EmptyList, MakeList(), true},
		{proc, proc, true},
		{proc, &ProcedureValue{}, false},
	}
	for i, tc := range cases {
		eq, _ := Equal(tc.left, tc.right)
		ne, _ := NotEqual(tc.left, tc.right)
		if eq.(*BoolValue).Val != tc.want || ne.(*BoolValue).Val == tc.want {
			t.Fatalf("case %d: %s = %s expected %v", i, Format(tc.left), Format(tc.right), tc.want)
		}
	}
}

func TestIdentical(t *testing.T) {
	a := MakeList(Integer(1))
	b := MakeList(Integer(1))
	if Identical(a, b) {
		t.Fatalf("fresh lists must not be identical")
	}
	if !Identical(a, a) {
		t.Fatalf("a value must be identical to itself")
	}
	if !Identical(EmptyList, MakeList()) {
		t.Fatalf("empty list is a singleton")
	}
}

func TestUnary(t *testing.T) {
	v, err := ApplyUnary(ast.UnaryNot, Bool(false))
	if err != nil || !v.(*BoolValue).Val {
		t.Fatalf("not #f: got %v, %v", v, err)
	}
	v, err = ApplyUnary(ast.UnaryBitNot, Integer(0))
	if err != nil || v.(*IntegerValue).Val != -1 {
		t.Fatalf("~0: got %v, %v", v, err)
	}
	if _, err := ApplyUnary(ast.UnaryNot, Integer(1)); ErrorKindOf(err) != "TypeError" {
		t.Fatalf("expected TypeError, got %v", err)
	}
	if _, err := ApplyBinary("**", Integer(1), Integer(1)); err == nil {
		t.Fatalf("expected unsupported operator error")
	}
}

func TestEqualitySelfReferentialVectors(t *testing.T) {
	a := &VectorValue{Elements: []Value{nil, Integer(1)}}
	a.Elements[0] = a
	b := &VectorValue{Elements: []Value{nil, Integer(1)}}
	b.Elements[0] = b
	if !ValuesEqual(a, b) {
		t.Fatalf("expected structurally equal cyclic vectors")
	}
	c := &VectorValue{Elements: []Value{nil, Integer(2)}}
	c.Elements[0] = c
	if ValuesEqual(a, c) {
		t.Fatalf("expected cyclic vectors with different elements to differ")
	}
}
