package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AnnerChan/SMPLPROJECT/pkg/ast"
	"github.com/AnnerChan/SMPLPROJECT/pkg/runtime"
)

// newTestInterpreter returns an interpreter reading stdin from the given text
// and the buffer capturing its output.
func newTestInterpreter(stdin string) (*Interpreter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewWithIO(&out, NewReaderConsole(strings.NewReader(stdin))), &out
}

func mustRun(t *testing.T, interp *Interpreter, stmts ...ast.Statement) runtime.Value {
	t.Helper()
	val, err := interp.EvaluateModule(ast.Prog(stmts...))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return val
}

func runExpectingKind(t *testing.T, kind string, stmts ...ast.Statement) error {
	t.Helper()
	interp, _ := newTestInterpreter("")
	_, err := interp.EvaluateModule(ast.Prog(stmts...))
	if err == nil {
		t.Fatalf("expected %s, got nil error", kind)
	}
	if got := runtime.ErrorKindOf(err); got != kind {
		t.Fatalf("expected %s, got %q (%v)", kind, got, err)
	}
	return err
}

func expectInteger(t *testing.T, val runtime.Value, want int64) {
	t.Helper()
	n, ok := val.(*runtime.IntegerValue)
	if !ok || n.Val != want {
		t.Fatalf("expected integer %d, got %#v", want, val)
	}
}

func expectFormat(t *testing.T, val runtime.Value, want string) {
	t.Helper()
	if got := runtime.Format(val); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

// factorialDef binds fact in the current scope to a procedure that recurses
// through its own name.
func factorialDef() *ast.Definition {
	return ast.Set("fact", ast.Proc([]string{"n"},
		ast.IfElse(
			ast.Bin("<=", ast.ID("n"), ast.Int(1)),
			ast.Int(1),
			ast.Bin("*", ast.ID("n"), ast.Call("fact", ast.Bin("-", ast.ID("n"), ast.Int(1)))),
		),
	))
}
