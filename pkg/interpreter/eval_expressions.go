package interpreter

import (
	"fmt"
	"math"

	"fortio.org/log"

	"github.com/AnnerChan/SMPLPROJECT/pkg/ast"
	"github.com/AnnerChan/SMPLPROJECT/pkg/runtime"
)

// Literals and variables

func (i *Interpreter) VisitIdentifier(node *ast.Identifier, env *runtime.Environment) (runtime.Value, error) {
	return env.Lookup(node.Name)
}

func (i *Interpreter) VisitIntegerLiteral(node *ast.IntegerLiteral, _ *runtime.Environment) (runtime.Value, error) {
	return runtime.Integer(node.Value), nil
}

func (i *Interpreter) VisitRealLiteral(node *ast.RealLiteral, _ *runtime.Environment) (runtime.Value, error) {
	return runtime.Real(node.Value), nil
}

func (i *Interpreter) VisitBooleanLiteral(node *ast.BooleanLiteral, _ *runtime.Environment) (runtime.Value, error) {
	return runtime.Bool(node.Value), nil
}

func (i *Interpreter) VisitStringLiteral(node *ast.StringLiteral, _ *runtime.Environment) (runtime.Value, error) {
	return runtime.String(node.Value), nil
}

func (i *Interpreter) VisitEmptyListLiteral(*ast.EmptyListLiteral, *runtime.Environment) (runtime.Value, error) {
	return runtime.EmptyList, nil
}

// Procedures

func (i *Interpreter) VisitProcedureExpression(node *ast.ProcedureExpression, env *runtime.Environment) (runtime.Value, error) {
	return &runtime.ProcedureValue{Declaration: node, Closure: env}, nil
}

func (i *Interpreter) VisitCall(node *ast.CallExpression, env *runtime.Environment) (runtime.Value, error) {
	calleeVal, err := i.Evaluate(node.Callee, env)
	if err != nil {
		return nil, err
	}
	proc, ok := calleeVal.(*runtime.ProcedureValue)
	if !ok {
		return nil, runtime.NewTypeError("call", calleeVal, runtime.KindProcedure)
	}
	argsVal, err := i.Evaluate(node.Arguments, env)
	if err != nil {
		return nil, err
	}
	args, err := runtime.ListElements(argsVal)
	if err != nil {
		return nil, err
	}
	return i.CallProcedure(proc, args)
}

// Control forms

func (i *Interpreter) condition(op string, node ast.Expression, env *runtime.Environment) (bool, error) {
	val, err := i.Evaluate(node, env)
	if err != nil {
		return false, err
	}
	b, ok := val.(*runtime.BoolValue)
	if !ok {
		return false, runtime.NewTypeError(op, val, runtime.KindBool)
	}
	return b.Val, nil
}

// VisitIfExpression returns the register unchanged when the condition is false
// and there is no else branch.
func (i *Interpreter) VisitIfExpression(node *ast.IfExpression, env *runtime.Environment) (runtime.Value, error) {
	ok, err := i.condition("if", node.Condition, env)
	if err != nil {
		return nil, err
	}
	var branch ast.Expression
	switch {
	case ok:
		branch = node.Then
	case node.Else != nil:
		branch = node.Else
	default:
		return i.result, nil
	}
	val, err := i.Evaluate(branch, env)
	if err != nil {
		return nil, err
	}
	i.result = val
	return val, nil
}

// VisitCaseExpression tries clauses in order. A condition that evaluates to
// the string "else" selects its result; any other must be boolean.
func (i *Interpreter) VisitCaseExpression(node *ast.CaseExpression, env *runtime.Environment) (runtime.Value, error) {
	for _, clause := range node.Clauses {
		check, err := i.Evaluate(clause.Condition, env)
		if err != nil {
			return nil, err
		}
		selected := false
		switch c := check.(type) {
		case *runtime.StringValue:
			if c.Val != ast.ElseCondition {
				return nil, runtime.NewTypeError("case", check, runtime.KindBool)
			}
			selected = true
		case *runtime.BoolValue:
			selected = c.Val
		default:
			return nil, runtime.NewTypeError("case", check, runtime.KindBool)
		}
		if !selected {
			continue
		}
		val, err := i.Evaluate(clause.Result, env)
		if err != nil {
			return nil, err
		}
		i.result = val
		return val, nil
	}
	return i.result, nil
}

// VisitLazyExpression evaluates its body once per scope. Every lazy expression
// evaluated directly in the same scope shares the one memo slot.
func (i *Interpreter) VisitLazyExpression(node *ast.LazyExpression, env *runtime.Environment) (runtime.Value, error) {
	if memo, ok := env.Memo(); ok {
		log.Debugf("lazy memo hit: %s", runtime.Format(memo))
		i.result = memo
		return memo, nil
	}
	val, err := i.Evaluate(node.Body, env)
	if err != nil {
		return nil, err
	}
	env.SetMemo(val)
	return val, nil
}

func (i *Interpreter) VisitDefineExpression(node *ast.DefineExpression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.Evaluate(node.Body, env)
	if err != nil {
		return nil, err
	}
	env.Put(node.Name.Name, val)
	return val, nil
}

// Console input

func (i *Interpreter) VisitReadExpression(*ast.ReadExpression, *runtime.Environment) (runtime.Value, error) {
	if i.console == nil {
		return nil, fmt.Errorf("read: no console attached")
	}
	line, err := i.console.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return runtime.String(line), nil
}

func (i *Interpreter) VisitReadIntegerExpression(*ast.ReadIntegerExpression, *runtime.Environment) (runtime.Value, error) {
	if i.console == nil {
		return nil, fmt.Errorf("read-integer: no console attached")
	}
	n, err := i.console.ReadInteger()
	if err != nil {
		return nil, err
	}
	return runtime.Integer(n), nil
}

// Strings

// VisitSubstringExpression slices by rune. start must lie in [0, len] and end
// must not exceed len; end below start yields "".
func (i *Interpreter) VisitSubstringExpression(node *ast.SubstringExpression, env *runtime.Environment) (runtime.Value, error) {
	strVal, err := i.Evaluate(node.String, env)
	if err != nil {
		return nil, err
	}
	str, ok := strVal.(*runtime.StringValue)
	if !ok {
		return nil, runtime.NewTypeError("substr", strVal, runtime.KindString)
	}
	start, err := i.integerOperand("substr", node.Start, env)
	if err != nil {
		return nil, err
	}
	end, err := i.integerOperand("substr", node.End, env)
	if err != nil {
		return nil, err
	}
	runes := []rune(str.Val)
	size := int64(len(runes))
	if start < 0 || start > size {
		return nil, &runtime.BoundsError{Index: start, Size: len(runes), Detail: fmt.Sprintf("substring start %d outside of bounds of string of length %d", start, size)}
	}
	if end > size {
		return nil, &runtime.BoundsError{Index: end, Size: len(runes), Detail: fmt.Sprintf("substring end %d outside of bounds of string of length %d", end, size)}
	}
	if end < start {
		return runtime.String(""), nil
	}
	return runtime.String(string(runes[start:end])), nil
}

func (i *Interpreter) integerOperand(op string, node ast.Expression, env *runtime.Environment) (int64, error) {
	val, err := i.Evaluate(node, env)
	if err != nil {
		return 0, err
	}
	n, ok := val.(*runtime.IntegerValue)
	if !ok {
		return 0, runtime.NewTypeError(op, val, runtime.KindInteger)
	}
	return n.Val, nil
}

// Pairs and lists

func (i *Interpreter) VisitPairExpression(node *ast.PairExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.Evaluate(node.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.Evaluate(node.Right, env)
	if err != nil {
		return nil, err
	}
	return runtime.Cons(left, right), nil
}

func (i *Interpreter) VisitListExpression(node *ast.ListExpression, env *runtime.Environment) (runtime.Value, error) {
	values, err := i.evaluateAll(node.Elements, env)
	if err != nil {
		return nil, err
	}
	return runtime.MakeList(values...), nil
}

func (i *Interpreter) evaluateAll(exprs []ast.Expression, env *runtime.Environment) ([]runtime.Value, error) {
	values := make([]runtime.Value, 0, len(exprs))
	for _, expr := range exprs {
		val, err := i.Evaluate(expr, env)
		if err != nil {
			return nil, err
		}
		values = append(values, val)
	}
	return values, nil
}

func (i *Interpreter) VisitCarExpression(node *ast.CarExpression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.Evaluate(node.Expression, env)
	if err != nil {
		return nil, err
	}
	switch v := val.(type) {
	case *runtime.PairValue:
		return v.First, nil
	case *runtime.ListValue:
		return v.Head, nil
	case *runtime.EmptyListValue:
		return runtime.EmptyList, nil
	default:
		return nil, runtime.NewTypeError("car", val, runtime.KindPair)
	}
}

func (i *Interpreter) VisitCdrExpression(node *ast.CdrExpression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.Evaluate(node.Expression, env)
	if err != nil {
		return nil, err
	}
	switch v := val.(type) {
	case *runtime.PairValue:
		return v.Second, nil
	case *runtime.ListValue:
		return v.Tail, nil
	case *runtime.EmptyListValue:
		return runtime.EmptyList, nil
	default:
		return nil, runtime.NewTypeError("cdr", val, runtime.KindPair)
	}
}

func (i *Interpreter) VisitPairCheckExpression(node *ast.PairCheckExpression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.Evaluate(node.Expression, env)
	if err != nil {
		return nil, err
	}
	switch val.(type) {
	case *runtime.PairValue, *runtime.ListValue, *runtime.EmptyListValue:
		return runtime.Bool(true), nil
	default:
		return nil, runtime.NewTypeError("pair?", val, runtime.KindPair)
	}
}

// Vectors

// VisitVectorExpression splices every generator element in place as Count
// values produced by its procedure.
func (i *Interpreter) VisitVectorExpression(node *ast.VectorExpression, env *runtime.Environment) (runtime.Value, error) {
	elements := make([]runtime.Value, 0, len(node.Elements))
	for _, expr := range node.Elements {
		val, err := i.Evaluate(expr, env)
		if err != nil {
			return nil, err
		}
		gen, ok := val.(*runtime.VectorGeneratorValue)
		if !ok {
			elements = append(elements, val)
			continue
		}
		expanded, err := i.expandGenerator(gen)
		if err != nil {
			return nil, err
		}
		elements = append(elements, expanded...)
	}
	return &runtime.VectorValue{Elements: elements}, nil
}

func (i *Interpreter) expandGenerator(gen *runtime.VectorGeneratorValue) ([]runtime.Value, error) {
	proc := gen.Procedure
	params := proc.Parameters()
	if proc.Rest() != "" {
		return nil, &runtime.ArityError{Context: "vector generator procedure rest parameter", Expected: 0, Actual: 1}
	}
	if len(params) > 1 {
		return nil, &runtime.ArityError{Context: "vector generator procedure", Expected: 1, Actual: len(params)}
	}
	out := make([]runtime.Value, 0, gen.Count)
	for idx := int64(0); idx < gen.Count; idx++ {
		var values []runtime.Value
		if len(params) == 1 {
			values = []runtime.Value{runtime.Integer(idx)}
		}
		scope, err := runtime.NewChildEnvironment(params, values, proc.Closure)
		if err != nil {
			return nil, err
		}
		val, err := i.Evaluate(proc.Declaration.Body, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

func (i *Interpreter) VisitVectorGenerator(node *ast.VectorGenerator, env *runtime.Environment) (runtime.Value, error) {
	count, err := i.integerOperand("vector generator", node.Count, env)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, &runtime.BoundsError{Index: count, Detail: fmt.Sprintf("vector generator count must be non-negative, got %d", count)}
	}
	procVal, err := i.Evaluate(node.Procedure, env)
	if err != nil {
		return nil, err
	}
	proc, ok := procVal.(*runtime.ProcedureValue)
	if !ok {
		return nil, runtime.NewTypeError("vector generator", procVal, runtime.KindProcedure)
	}
	return &runtime.VectorGeneratorValue{Count: count, Procedure: proc}, nil
}

func (i *Interpreter) VisitVectorIndex(node *ast.VectorIndex, env *runtime.Environment) (runtime.Value, error) {
	vec, idx, err := i.resolveVectorSlot(node, env)
	if err != nil {
		return nil, err
	}
	return vec.Elements[idx], nil
}

// resolveVectorSlot evaluates the index (reals truncate), looks up the named
// vector and bounds-checks the index against its current length.
func (i *Interpreter) resolveVectorSlot(node *ast.VectorIndex, env *runtime.Environment) (*runtime.VectorValue, int64, error) {
	idxVal, err := i.Evaluate(node.Index, env)
	if err != nil {
		return nil, 0, err
	}
	var idx int64
	switch v := idxVal.(type) {
	case *runtime.IntegerValue:
		idx = v.Val
	case *runtime.RealValue:
		idx = int64(math.Trunc(v.Val))
	default:
		return nil, 0, runtime.NewTypeError("vector index", idxVal, runtime.KindInteger, runtime.KindReal)
	}
	target, err := env.Lookup(node.Name.Name)
	if err != nil {
		return nil, 0, err
	}
	vec, ok := target.(*runtime.VectorValue)
	if !ok {
		return nil, 0, runtime.NewTypeError("vector index", target, runtime.KindVector)
	}
	if idx < 0 || idx >= int64(len(vec.Elements)) {
		return nil, 0, &runtime.BoundsError{Index: idx, Size: len(vec.Elements), Name: node.Name.Name}
	}
	return vec, idx, nil
}

func (i *Interpreter) VisitSizeExpression(node *ast.SizeExpression, env *runtime.Environment) (runtime.Value, error) {
	val, err := i.Evaluate(node.Expression, env)
	if err != nil {
		return nil, err
	}
	vec, ok := val.(*runtime.VectorValue)
	if !ok {
		return nil, runtime.NewTypeError("size", val, runtime.KindVector)
	}
	return runtime.Integer(int64(len(vec.Elements))), nil
}

// Operators

func (i *Interpreter) VisitEqualvExpression(node *ast.EqualvExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.Evaluate(node.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.Evaluate(node.Right, env)
	if err != nil {
		return nil, err
	}
	return runtime.Bool(runtime.Identical(left, right)), nil
}

// VisitBinaryExpression evaluates both operands before dispatching, including
// for and/or.
func (i *Interpreter) VisitBinaryExpression(node *ast.BinaryExpression, env *runtime.Environment) (runtime.Value, error) {
	left, err := i.Evaluate(node.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.Evaluate(node.Right, env)
	if err != nil {
		return nil, err
	}
	return runtime.ApplyBinary(node.Operator, left, right)
}

func (i *Interpreter) VisitUnaryExpression(node *ast.UnaryExpression, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.Evaluate(node.Operand, env)
	if err != nil {
		return nil, err
	}
	return runtime.ApplyUnary(node.Operator, operand)
}
