package runtime

import (
	"errors"
	"testing"
)

func TestEnvironmentLookupWalksParents(t *testing.T) {
	global := NewEnvironment(nil)
	global.Put("x", Integer(1))
	child := NewEnvironment(global)
	child.Put("y", Integer(2))

	v, err := child.Lookup("x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.(*IntegerValue).Val; got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if _, err := global.Lookup("y"); err == nil {
		t.Fatalf("expected parent not to see child binding")
	}
}

func TestEnvironmentLookupUnbound(t *testing.T) {
	env := NewEnvironment(nil)
	_, err := env.Lookup("missing")
	var unbound *UnboundVariableError
	if !errors.As(err, &unbound) {
		t.Fatalf("expected UnboundVariableError, got %v", err)
	}
	if unbound.Name != "missing" {
		t.Fatalf("unexpected name %q", unbound.Name)
	}
	if ErrorKindOf(err) != "UnboundVariable" {
		t.Fatalf("unexpected kind %q", ErrorKindOf(err))
	}
}

func TestEnvironmentPutTargetsInnermostScope(t *testing.T) {
	global := NewEnvironment(nil)
	global.Put("x", Integer(1))
	child := NewEnvironment(global)
	child.Put("x", Integer(2))

	outer, _ := global.Lookup("x")
	inner, _ := child.Lookup("x")
	if outer.(*IntegerValue).Val != 1 || inner.(*IntegerValue).Val != 2 {
		t.Fatalf("expected shadowing, got outer=%s inner=%s", Format(outer), Format(inner))
	}
	if _, err := NewEnvironment(global).Lookup("y"); err == nil {
		t.Fatalf("expected unbound y")
	}
}

func TestNewChildEnvironment(t *testing.T) {
	parent := NewEnvironment(nil)
	env, err := NewChildEnvironment([]string{"a", "b"}, []Value{Integer(1), String("two")}, parent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Parent() != parent {
		t.Fatalf("expected parent link")
	}
	b, err := env.Lookup("b")
	if err != nil || Format(b) != "two" {
		t.Fatalf("unexpected binding b=%v err=%v", b, err)
	}

	_, err = NewChildEnvironment([]string{"a"}, nil, parent)
	var arity *ArityError
	if !errors.As(err, &arity) {
		t.Fatalf("expected ArityError, got %v", err)
	}
}

func TestEnvironmentMemoIsPerScope(t *testing.T) {
	parent := NewEnvironment(nil)
	if _, ok := parent.Memo(); ok {
		t.Fatalf("expected empty memo")
	}
	parent.SetMemo(Integer(7))
	child := NewEnvironment(parent)
	if _, ok := child.Memo(); ok {
		t.Fatalf("memo must not be inherited")
	}
	v, ok := parent.Memo()
	if !ok || v.(*IntegerValue).Val != 7 {
		t.Fatalf("expected memoized 7, got %v", v)
	}
	if child.Has("anything") {
		t.Fatalf("memo slot must not be visible as a binding")
	}
}
