package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func IDs(names ...string) []*Identifier {
	ids := make([]*Identifier, len(names))
	for i, name := range names {
		ids[i] = ID(name)
	}
	return ids
}

func Int(value int64) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Real(value float64) *RealLiteral {
	return NewRealLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Nil() *EmptyListLiteral {
	return NewEmptyListLiteral()
}

// Statement helpers.

func Prog(statements ...Statement) *Program {
	return NewProgram(Seq(statements...))
}

func Seq(statements ...Statement) *Sequence {
	return NewSequence(statements)
}

// Def binds one name per value; with a single value and several names it
// destructures a list.
func Def(names []string, values ...Expression) *Definition {
	return NewDefinition(IDs(names...), values)
}

func Set(name string, value Expression) *Definition {
	return Def([]string{name}, value)
}

func SetIndex(name string, index Expression, value Expression) *Definition {
	return NewIndexedDefinition(Index(name, index), value)
}

func Println(expr Expression) *PrintStatement {
	return NewPrintStatement(expr, "\n")
}

func Print(expr Expression) *PrintStatement {
	return NewPrintStatement(expr, "")
}

func Bind(name string, value Expression) *Binding {
	return NewBinding(ID(name), value)
}

func LetIn(bindings []*Binding, body Expression) *Let {
	return NewLet(bindings, body)
}

// Expression helpers.

func Proc(params []string, body Expression) *ProcedureExpression {
	return NewProcedureExpression(IDs(params...), nil, body)
}

func ProcRest(params []string, rest string, body Expression) *ProcedureExpression {
	return NewProcedureExpression(IDs(params...), ID(rest), body)
}

func CallExpr(callee Expression, args ...Expression) *CallExpression {
	return NewCallExpression(callee, List(args...))
}

func Call(name string, args ...Expression) *CallExpression {
	return CallExpr(ID(name), args...)
}

func If(condition, then Expression) *IfExpression {
	return NewIfExpression(condition, then, nil)
}

func IfElse(condition, then, otherwise Expression) *IfExpression {
	return NewIfExpression(condition, then, otherwise)
}

func Clause(condition, result Expression) *CaseClause {
	return NewCaseClause(condition, result)
}

func Else(result Expression) *CaseClause {
	return NewCaseClause(Str(ElseCondition), result)
}

func Case(clauses ...*CaseClause) *CaseExpression {
	return NewCaseExpression(clauses)
}

func Lazy(body Expression) *LazyExpression {
	return NewLazyExpression(body)
}

func Define(name string, body Expression) *DefineExpression {
	return NewDefineExpression(ID(name), body)
}

func Read() *ReadExpression {
	return NewReadExpression()
}

func ReadInt() *ReadIntegerExpression {
	return NewReadIntegerExpression()
}

func Substr(str, start, end Expression) *SubstringExpression {
	return NewSubstringExpression(str, start, end)
}

func Pair(left, right Expression) *PairExpression {
	return NewPairExpression(left, right)
}

func List(elements ...Expression) *ListExpression {
	return NewListExpression(elements)
}

func Vec(elements ...Expression) *VectorExpression {
	return NewVectorExpression(elements)
}

func Gen(count, procedure Expression) *VectorGenerator {
	return NewVectorGenerator(count, procedure)
}

func Index(name string, index Expression) *VectorIndex {
	return NewVectorIndex(ID(name), index)
}

func Size(expr Expression) *SizeExpression {
	return NewSizeExpression(expr)
}

func Car(expr Expression) *CarExpression {
	return NewCarExpression(expr)
}

func Cdr(expr Expression) *CdrExpression {
	return NewCdrExpression(expr)
}

func IsPair(expr Expression) *PairCheckExpression {
	return NewPairCheckExpression(expr)
}

func Eqv(left, right Expression) *EqualvExpression {
	return NewEqualvExpression(left, right)
}

func Bin(operator string, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(operator, left, right)
}

func Not(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryNot, operand)
}

func BitNot(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryBitNot, operand)
}
