package interpreter

import (
	"fmt"
	"io"

	"github.com/AnnerChan/SMPLPROJECT/pkg/ast"
	"github.com/AnnerChan/SMPLPROJECT/pkg/runtime"
)

func (i *Interpreter) VisitProgram(node *ast.Program, env *runtime.Environment) (runtime.Value, error) {
	if node.Body == nil {
		i.result = runtime.Integer(0)
		return i.result, nil
	}
	return i.VisitSequence(node.Body, env)
}

// VisitSequence runs statements in order in env. The register starts at 0 so
// an empty sequence, or one whose only statement falls through, yields 0.
func (i *Interpreter) VisitSequence(node *ast.Sequence, env *runtime.Environment) (runtime.Value, error) {
	i.result = runtime.Integer(0)
	for _, stmt := range node.Statements {
		val, err := i.Evaluate(stmt, env)
		if err != nil {
			return nil, err
		}
		i.result = val
	}
	return i.result, nil
}

func (i *Interpreter) VisitDefinition(node *ast.Definition, env *runtime.Environment) (runtime.Value, error) {
	switch {
	case node.Index != nil:
		if err := i.assignVectorSlot(node, env); err != nil {
			return nil, err
		}
	case len(node.Values) == 1 && len(node.Names) > 1:
		if err := i.destructureList(node, env); err != nil {
			return nil, err
		}
	default:
		if len(node.Names) != len(node.Values) {
			return nil, &runtime.ArityError{Context: "definition", Expected: len(node.Names), Actual: len(node.Values)}
		}
		// Every value is computed before any name is bound.
		values := make([]runtime.Value, len(node.Values))
		for idx, expr := range node.Values {
			val, err := i.Evaluate(expr, env)
			if err != nil {
				return nil, err
			}
			values[idx] = val
		}
		for idx, id := range node.Names {
			env.Put(id.Name, values[idx])
		}
	}
	return runtime.Bool(true), nil
}

// destructureList binds the leading list elements to the names in order.
// Surplus elements are ignored and surplus names stay unbound.
func (i *Interpreter) destructureList(node *ast.Definition, env *runtime.Environment) error {
	val, err := i.Evaluate(node.Values[0], env)
	if err != nil {
		return err
	}
	if !runtime.IsListLike(val) {
		return &runtime.ArityError{Context: "definition", Expected: len(node.Names), Actual: 1}
	}
	cur := val
	for _, id := range node.Names {
		cell, ok := cur.(*runtime.ListValue)
		if !ok {
			break
		}
		env.Put(id.Name, cell.Head)
		cur = cell.Tail
	}
	return nil
}

// assignVectorSlot evaluates the index, checks it against the named vector,
// then evaluates the value and overwrites the slot in place.
func (i *Interpreter) assignVectorSlot(node *ast.Definition, env *runtime.Environment) error {
	if len(node.Values) != 1 {
		return &runtime.ArityError{Context: "vector assignment", Expected: 1, Actual: len(node.Values)}
	}
	vec, idx, err := i.resolveVectorSlot(node.Index, env)
	if err != nil {
		return err
	}
	val, err := i.Evaluate(node.Values[0], env)
	if err != nil {
		return err
	}
	vec.Elements[idx] = val
	return nil
}

func (i *Interpreter) VisitPrint(node *ast.PrintStatement, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.Evaluate(node.Expression, env)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(i.stdout, runtime.Format(val)+node.Terminator); err != nil {
		return nil, fmt.Errorf("print: %w", err)
	}
	i.result = val
	return val, nil
}

// VisitLet evaluates every binding in the enclosing scope, then runs the body
// in one child scope holding all of them.
func (i *Interpreter) VisitLet(node *ast.Let, env *runtime.Environment) (runtime.Value, error) {
	names := make([]string, len(node.Bindings))
	values := make([]runtime.Value, len(node.Bindings))
	for idx, binding := range node.Bindings {
		val, err := i.Evaluate(binding.Value, env)
		if err != nil {
			return nil, err
		}
		names[idx] = binding.Name.Name
		values[idx] = val
	}
	scope, err := runtime.NewChildEnvironment(names, values, env)
	if err != nil {
		return nil, err
	}
	return i.Evaluate(node.Body, scope)
}
