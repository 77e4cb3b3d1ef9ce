package ast

type NodeType string

const (
	NodeProgram               NodeType = "Program"
	NodeSequence              NodeType = "Sequence"
	NodeDefinition            NodeType = "Definition"
	NodePrint                 NodeType = "Print"
	NodeLet                   NodeType = "Let"
	NodeBinding               NodeType = "Binding"
	NodeIdentifier            NodeType = "Identifier"
	NodeIntegerLiteral        NodeType = "IntegerLiteral"
	NodeRealLiteral           NodeType = "RealLiteral"
	NodeBooleanLiteral        NodeType = "BooleanLiteral"
	NodeStringLiteral         NodeType = "StringLiteral"
	NodeEmptyListLiteral      NodeType = "EmptyListLiteral"
	NodeProcedureExpression   NodeType = "ProcedureExpression"
	NodeCall                  NodeType = "Call"
	NodeIfExpression          NodeType = "IfExpression"
	NodeCaseClause            NodeType = "CaseClause"
	NodeCaseExpression        NodeType = "CaseExpression"
	NodeLazyExpression        NodeType = "LazyExpression"
	NodeDefineExpression      NodeType = "DefineExpression"
	NodeReadExpression        NodeType = "ReadExpression"
	NodeReadIntegerExpression NodeType = "ReadIntegerExpression"
	NodeSubstringExpression   NodeType = "SubstringExpression"
	NodePairExpression        NodeType = "PairExpression"
	NodeListExpression        NodeType = "ListExpression"
	NodeVectorExpression      NodeType = "VectorExpression"
	NodeVectorGenerator       NodeType = "VectorGenerator"
	NodeVectorIndex           NodeType = "VectorIndex"
	NodeSizeExpression        NodeType = "SizeExpression"
	NodeCarExpression         NodeType = "CarExpression"
	NodeCdrExpression         NodeType = "CdrExpression"
	NodePairCheckExpression   NodeType = "PairCheckExpression"
	NodeEqualvExpression      NodeType = "EqualvExpression"
	NodeBinaryExpression      NodeType = "BinaryExpression"
	NodeUnaryExpression       NodeType = "UnaryExpression"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Expression nodes may appear anywhere a statement is expected.
type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

// Program

type Program struct {
	nodeImpl

	Body *Sequence `json:"body"`
}

func NewProgram(body *Sequence) *Program {
	if body == nil {
		body = NewSequence(nil)
	}
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

// Statements

// Sequence evaluates statements in order; it doubles as a block expression
// so procedure bodies can hold several statements.
type Sequence struct {
	nodeImpl
	expressionMarker
	statementMarker

	Statements []Statement `json:"statements"`
}

func NewSequence(statements []Statement) *Sequence {
	return &Sequence{nodeImpl: newNodeImpl(NodeSequence), Statements: statements}
}

// Definition covers three forms: multi-binding (len(Names) == len(Values)),
// list destructuring (one value, several names) and indexed vector
// assignment (Index set, exactly one value).
type Definition struct {
	nodeImpl
	statementMarker

	Names  []*Identifier `json:"names,omitempty"`
	Values []Expression  `json:"values"`
	Index  *VectorIndex  `json:"index,omitempty"`
}

func NewDefinition(names []*Identifier, values []Expression) *Definition {
	return &Definition{nodeImpl: newNodeImpl(NodeDefinition), Names: names, Values: values}
}

func NewIndexedDefinition(index *VectorIndex, value Expression) *Definition {
	return &Definition{nodeImpl: newNodeImpl(NodeDefinition), Index: index, Values: []Expression{value}}
}

type PrintStatement struct {
	nodeImpl
	statementMarker

	Expression Expression `json:"expression"`
	Terminator string     `json:"terminator"`
}

func NewPrintStatement(expr Expression, terminator string) *PrintStatement {
	return &PrintStatement{nodeImpl: newNodeImpl(NodePrint), Expression: expr, Terminator: terminator}
}

type Binding struct {
	nodeImpl

	Name  *Identifier `json:"name"`
	Value Expression  `json:"value"`
}

func NewBinding(name *Identifier, value Expression) *Binding {
	return &Binding{nodeImpl: newNodeImpl(NodeBinding), Name: name, Value: value}
}

type Let struct {
	nodeImpl
	expressionMarker
	statementMarker

	Bindings []*Binding `json:"bindings"`
	Body     Expression `json:"body"`
}

func NewLet(bindings []*Binding, body Expression) *Let {
	return &Let{nodeImpl: newNodeImpl(NodeLet), Bindings: bindings, Body: body}
}

// Identifier

type Identifier struct {
	nodeImpl
	expressionMarker
	statementMarker

	Name string `json:"name"`
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{nodeImpl: newNodeImpl(NodeIdentifier), Name: name}
}

// Literals

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value int64 `json:"value"`
}

func NewIntegerLiteral(value int64) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type RealLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewRealLiteral(value float64) *RealLiteral {
	return &RealLiteral{nodeImpl: newNodeImpl(NodeRealLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}

type EmptyListLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker
}

func NewEmptyListLiteral() *EmptyListLiteral {
	return &EmptyListLiteral{nodeImpl: newNodeImpl(NodeEmptyListLiteral)}
}

// Procedures and calls

type ProcedureExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Parameters []*Identifier `json:"parameters"`
	Rest       *Identifier   `json:"rest,omitempty"`
	Body       Expression    `json:"body"`
}

func NewProcedureExpression(params []*Identifier, rest *Identifier, body Expression) *ProcedureExpression {
	return &ProcedureExpression{nodeImpl: newNodeImpl(NodeProcedureExpression), Parameters: params, Rest: rest, Body: body}
}

// ParameterNames returns the declared positional parameter names in order.
func (p *ProcedureExpression) ParameterNames() []string {
	names := make([]string, 0, len(p.Parameters))
	for _, id := range p.Parameters {
		if id == nil {
			continue
		}
		names = append(names, id.Name)
	}
	return names
}

// RestName returns the rest parameter name, or "" when the procedure has none.
func (p *ProcedureExpression) RestName() string {
	if p.Rest == nil {
		return ""
	}
	return p.Rest.Name
}

// CallExpression applies Callee to the list produced by Arguments.
type CallExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Callee    Expression `json:"callee"`
	Arguments Expression `json:"arguments"`
}

func NewCallExpression(callee Expression, arguments Expression) *CallExpression {
	return &CallExpression{nodeImpl: newNodeImpl(NodeCall), Callee: callee, Arguments: arguments}
}

// Control forms

type IfExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Condition Expression `json:"condition"`
	Then      Expression `json:"then"`
	Else      Expression `json:"else,omitempty"`
}

func NewIfExpression(condition, then, otherwise Expression) *IfExpression {
	return &IfExpression{nodeImpl: newNodeImpl(NodeIfExpression), Condition: condition, Then: then, Else: otherwise}
}

type CaseClause struct {
	nodeImpl

	Condition Expression `json:"condition"`
	Result    Expression `json:"result"`
}

func NewCaseClause(condition, result Expression) *CaseClause {
	return &CaseClause{nodeImpl: newNodeImpl(NodeCaseClause), Condition: condition, Result: result}
}

// ElseCondition is the sentinel condition text that selects a clause unconditionally.
const ElseCondition = "else"

type CaseExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Clauses []*CaseClause `json:"clauses"`
}

func NewCaseExpression(clauses []*CaseClause) *CaseExpression {
	return &CaseExpression{nodeImpl: newNodeImpl(NodeCaseExpression), Clauses: clauses}
}

type LazyExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Body Expression `json:"body"`
}

func NewLazyExpression(body Expression) *LazyExpression {
	return &LazyExpression{nodeImpl: newNodeImpl(NodeLazyExpression), Body: body}
}

type DefineExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Name *Identifier `json:"name"`
	Body Expression  `json:"body"`
}

func NewDefineExpression(name *Identifier, body Expression) *DefineExpression {
	return &DefineExpression{nodeImpl: newNodeImpl(NodeDefineExpression), Name: name, Body: body}
}

// Console input

type ReadExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewReadExpression() *ReadExpression {
	return &ReadExpression{nodeImpl: newNodeImpl(NodeReadExpression)}
}

type ReadIntegerExpression struct {
	nodeImpl
	expressionMarker
	statementMarker
}

func NewReadIntegerExpression() *ReadIntegerExpression {
	return &ReadIntegerExpression{nodeImpl: newNodeImpl(NodeReadIntegerExpression)}
}

// Strings

type SubstringExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	String Expression `json:"string"`
	Start  Expression `json:"start"`
	End    Expression `json:"end"`
}

func NewSubstringExpression(str, start, end Expression) *SubstringExpression {
	return &SubstringExpression{nodeImpl: newNodeImpl(NodeSubstringExpression), String: str, Start: start, End: end}
}

// Pairs, lists and vectors

type PairExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

func NewPairExpression(left, right Expression) *PairExpression {
	return &PairExpression{nodeImpl: newNodeImpl(NodePairExpression), Left: left, Right: right}
}

type ListExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Elements []Expression `json:"elements"`
}

func NewListExpression(elements []Expression) *ListExpression {
	return &ListExpression{nodeImpl: newNodeImpl(NodeListExpression), Elements: elements}
}

type VectorExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Elements []Expression `json:"elements"`
}

func NewVectorExpression(elements []Expression) *VectorExpression {
	return &VectorExpression{nodeImpl: newNodeImpl(NodeVectorExpression), Elements: elements}
}

// VectorGenerator produces Count vector elements by calling Procedure with
// the indices 0..Count-1; it only expands inside a VectorExpression.
type VectorGenerator struct {
	nodeImpl
	expressionMarker
	statementMarker

	Count     Expression `json:"count"`
	Procedure Expression `json:"procedure"`
}

func NewVectorGenerator(count, procedure Expression) *VectorGenerator {
	return &VectorGenerator{nodeImpl: newNodeImpl(NodeVectorGenerator), Count: count, Procedure: procedure}
}

type VectorIndex struct {
	nodeImpl
	expressionMarker
	statementMarker

	Name  *Identifier `json:"name"`
	Index Expression  `json:"index"`
}

func NewVectorIndex(name *Identifier, index Expression) *VectorIndex {
	return &VectorIndex{nodeImpl: newNodeImpl(NodeVectorIndex), Name: name, Index: index}
}

type SizeExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Expression Expression `json:"expression"`
}

func NewSizeExpression(expr Expression) *SizeExpression {
	return &SizeExpression{nodeImpl: newNodeImpl(NodeSizeExpression), Expression: expr}
}

type CarExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Expression Expression `json:"expression"`
}

func NewCarExpression(expr Expression) *CarExpression {
	return &CarExpression{nodeImpl: newNodeImpl(NodeCarExpression), Expression: expr}
}

type CdrExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Expression Expression `json:"expression"`
}

func NewCdrExpression(expr Expression) *CdrExpression {
	return &CdrExpression{nodeImpl: newNodeImpl(NodeCdrExpression), Expression: expr}
}

type PairCheckExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Expression Expression `json:"expression"`
}

func NewPairCheckExpression(expr Expression) *PairCheckExpression {
	return &PairCheckExpression{nodeImpl: newNodeImpl(NodePairCheckExpression), Expression: expr}
}

// Operators

type EqualvExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

func NewEqualvExpression(left, right Expression) *EqualvExpression {
	return &EqualvExpression{nodeImpl: newNodeImpl(NodeEqualvExpression), Left: left, Right: right}
}

type BinaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryExpression(operator string, left, right Expression) *BinaryExpression {
	return &BinaryExpression{nodeImpl: newNodeImpl(NodeBinaryExpression), Operator: operator, Left: left, Right: right}
}

type UnaryOperator string

const (
	UnaryNot    UnaryOperator = "not"
	UnaryBitNot UnaryOperator = "~"
)

type UnaryExpression struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator UnaryOperator `json:"operator"`
	Operand  Expression    `json:"operand"`
}

func NewUnaryExpression(operator UnaryOperator, operand Expression) *UnaryExpression {
	return &UnaryExpression{nodeImpl: newNodeImpl(NodeUnaryExpression), Operator: operator, Operand: operand}
}
