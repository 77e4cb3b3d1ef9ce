package interpreter

import (
	"fmt"
	"io"
	"os"

	"fortio.org/log"

	"github.com/AnnerChan/SMPLPROJECT/pkg/ast"
	"github.com/AnnerChan/SMPLPROJECT/pkg/runtime"
)

// Interpreter walks SMPL AST nodes against a lexical environment chain. It
// implements ast.Visitor[*runtime.Environment, runtime.Value].
type Interpreter struct {
	global  *runtime.Environment
	stdout  io.Writer
	console Console

	// result is the accumulated-result register: reset at the start of every
	// sequence and returned by if/case forms that fall through.
	result runtime.Value
}

var _ ast.Visitor[*runtime.Environment, runtime.Value] = (*Interpreter)(nil)

// New returns an interpreter with an empty global environment wired to the
// process stdin/stdout.
func New() *Interpreter {
	return NewWithIO(os.Stdout, NewReaderConsole(os.Stdin))
}

// NewWithIO returns an interpreter that prints to stdout and reads from console.
func NewWithIO(stdout io.Writer, console Console) *Interpreter {
	if stdout == nil {
		stdout = io.Discard
	}
	return &Interpreter{
		global:  runtime.NewEnvironment(nil),
		stdout:  stdout,
		console: console,
		result:  runtime.Integer(0),
	}
}

// GlobalEnvironment returns the interpreter’s global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// EvaluateModule executes a program in the global environment and returns
// the value of its last statement.
func (i *Interpreter) EvaluateModule(program *ast.Program) (runtime.Value, error) {
	if program == nil {
		return nil, fmt.Errorf("interpreter: program is nil")
	}
	if program.Body != nil {
		log.LogVf("evaluating program with %d statements", len(program.Body.Statements))
	}
	return i.Evaluate(program, i.global)
}

// Evaluate visits node in env.
func (i *Interpreter) Evaluate(node ast.Node, env *runtime.Environment) (runtime.Value, error) {
	return ast.Accept[*runtime.Environment, runtime.Value](node, i, env)
}

// CallProcedure applies proc to args. Arguments beyond the declared
// parameters are collected into the rest parameter when there is one and
// rejected with an ArityError otherwise. Missing trailing arguments leave
// their parameters unbound.
func (i *Interpreter) CallProcedure(proc *runtime.ProcedureValue, args []runtime.Value) (runtime.Value, error) {
	if proc == nil || proc.Declaration == nil {
		return nil, fmt.Errorf("interpreter: procedure is nil")
	}
	params := proc.Parameters()
	rest := proc.Rest()
	if len(args) > len(params) && rest == "" {
		return nil, &runtime.ArityError{Context: "procedure call", Expected: len(params), Actual: len(args)}
	}
	bound := min(len(args), len(params))
	names := append([]string(nil), params[:bound]...)
	values := append([]runtime.Value(nil), args[:bound]...)
	if rest != "" {
		names = append(names, rest)
		values = append(values, runtime.MakeList(args[bound:]...))
	}
	env, err := runtime.NewChildEnvironment(names, values, proc.Closure)
	if err != nil {
		return nil, err
	}
	log.LogVf("call procedure with %d args (params=%v rest=%q)", len(args), params, rest)
	return i.Evaluate(proc.Declaration.Body, env)
}
