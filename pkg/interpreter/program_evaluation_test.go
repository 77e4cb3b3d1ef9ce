package interpreter

import (
	"strings"
	"testing"

	"github.com/AnnerChan/SMPLPROJECT/pkg/ast"
	"github.com/AnnerChan/SMPLPROJECT/pkg/driver"
	"github.com/AnnerChan/SMPLPROJECT/pkg/runtime"
)

func TestEvaluateProgramSharesGlobalScope(t *testing.T) {
	prelude := &driver.Module{
		Name: "lib/prelude",
		AST: ast.Prog(
			factorialDef(),
			ast.Set("base", ast.Int(2)),
		),
	}
	entry := &driver.Module{
		Name: "app/main",
		AST: ast.Prog(
			ast.Println(ast.Str("start")),
			ast.Bin("+", ast.Call("fact", ast.Int(4)), ast.ID("base")),
		),
	}
	program := &driver.Program{Entry: entry, Modules: []*driver.Module{prelude, entry}}

	interp, out := newTestInterpreter("")
	val, err := interp.EvaluateProgram(program)
	if err != nil {
		t.Fatalf("EvaluateProgram error: %v", err)
	}
	expectInteger(t, val, 26)
	if out.String() != "start\n" {
		t.Fatalf("unexpected stdout %q", out.String())
	}
}

func TestEvaluateProgramWrapsModuleErrors(t *testing.T) {
	broken := &driver.Module{Name: "lib/broken", Path: "/tmp/broken.json", AST: ast.Prog(ast.ID("nope"))}
	entry := &driver.Module{Name: "app/main", AST: ast.Prog(ast.Int(1))}
	program := &driver.Program{Entry: entry, Modules: []*driver.Module{broken, entry}}

	interp, _ := newTestInterpreter("")
	_, err := interp.EvaluateProgram(program)
	if err == nil {
		t.Fatalf("expected error")
	}
	if runtime.ErrorKindOf(err) != "UnboundVariable" {
		t.Fatalf("expected wrapped UnboundVariable, got %v", err)
	}
	if !strings.Contains(err.Error(), "module lib/broken (/tmp/broken.json)") {
		t.Fatalf("expected module context in %q", err.Error())
	}
}

func TestEvaluateProgramRequiresEntry(t *testing.T) {
	interp, _ := newTestInterpreter("")
	if _, err := interp.EvaluateProgram(nil); err == nil {
		t.Fatalf("expected error for nil program")
	}
	if _, err := interp.EvaluateProgram(&driver.Program{}); err == nil {
		t.Fatalf("expected error for missing entry")
	}
	orphan := &driver.Module{Name: "orphan", AST: ast.Prog(ast.Int(1))}
	if _, err := interp.EvaluateProgram(&driver.Program{Entry: orphan}); err == nil {
		t.Fatalf("expected error when the entry is not among the modules")
	}
}
