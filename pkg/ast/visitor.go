package ast

import "fmt"

// Visitor evaluates each node kind against an argument of type S (for the
// interpreter, the current environment) and produces a T.
type Visitor[S, T any] interface {
	VisitProgram(node *Program, arg S) (T, error)
	VisitSequence(node *Sequence, arg S) (T, error)
	VisitDefinition(node *Definition, arg S) (T, error)
	VisitPrint(node *PrintStatement, arg S) (T, error)
	VisitLet(node *Let, arg S) (T, error)
	VisitIdentifier(node *Identifier, arg S) (T, error)
	VisitIntegerLiteral(node *IntegerLiteral, arg S) (T, error)
	VisitRealLiteral(node *RealLiteral, arg S) (T, error)
	VisitBooleanLiteral(node *BooleanLiteral, arg S) (T, error)
	VisitStringLiteral(node *StringLiteral, arg S) (T, error)
	VisitEmptyListLiteral(node *EmptyListLiteral, arg S) (T, error)
	VisitProcedureExpression(node *ProcedureExpression, arg S) (T, error)
	VisitCall(node *CallExpression, arg S) (T, error)
	VisitIfExpression(node *IfExpression, arg S) (T, error)
	VisitCaseExpression(node *CaseExpression, arg S) (T, error)
	VisitLazyExpression(node *LazyExpression, arg S) (T, error)
	VisitDefineExpression(node *DefineExpression, arg S) (T, error)
	VisitReadExpression(node *ReadExpression, arg S) (T, error)
	VisitReadIntegerExpression(node *ReadIntegerExpression, arg S) (T, error)
	VisitSubstringExpression(node *SubstringExpression, arg S) (T, error)
	VisitPairExpression(node *PairExpression, arg S) (T, error)
	VisitListExpression(node *ListExpression, arg S) (T, error)
	VisitVectorExpression(node *VectorExpression, arg S) (T, error)
	VisitVectorGenerator(node *VectorGenerator, arg S) (T, error)
	VisitVectorIndex(node *VectorIndex, arg S) (T, error)
	VisitSizeExpression(node *SizeExpression, arg S) (T, error)
	VisitCarExpression(node *CarExpression, arg S) (T, error)
	VisitCdrExpression(node *CdrExpression, arg S) (T, error)
	VisitPairCheckExpression(node *PairCheckExpression, arg S) (T, error)
	VisitEqualvExpression(node *EqualvExpression, arg S) (T, error)
	VisitBinaryExpression(node *BinaryExpression, arg S) (T, error)
	VisitUnaryExpression(node *UnaryExpression, arg S) (T, error)
}

// Accept dispatches node to the matching Visit method.
func Accept[S, T any](node Node, v Visitor[S, T], arg S) (T, error) {
	switch n := node.(type) {
	case *Program:
		return v.VisitProgram(n, arg)
	case *Sequence:
		return v.VisitSequence(n, arg)
	case *Definition:
		return v.VisitDefinition(n, arg)
	case *PrintStatement:
		return v.VisitPrint(n, arg)
	case *Let:
		return v.VisitLet(n, arg)
	case *Identifier:
		return v.VisitIdentifier(n, arg)
	case *IntegerLiteral:
		return v.VisitIntegerLiteral(n, arg)
	case *RealLiteral:
		return v.VisitRealLiteral(n, arg)
	case *BooleanLiteral:
		return v.VisitBooleanLiteral(n, arg)
	case *StringLiteral:
		return v.VisitStringLiteral(n, arg)
	case *EmptyListLiteral:
		return v.VisitEmptyListLiteral(n, arg)
	case *ProcedureExpression:
		return v.VisitProcedureExpression(n, arg)
	case *CallExpression:
		return v.VisitCall(n, arg)
	case *IfExpression:
		return v.VisitIfExpression(n, arg)
	case *CaseExpression:
		return v.VisitCaseExpression(n, arg)
	case *LazyExpression:
		return v.VisitLazyExpression(n, arg)
	case *DefineExpression:
		return v.VisitDefineExpression(n, arg)
	case *ReadExpression:
		return v.VisitReadExpression(n, arg)
	case *ReadIntegerExpression:
		return v.VisitReadIntegerExpression(n, arg)
	case *SubstringExpression:
		return v.VisitSubstringExpression(n, arg)
	case *PairExpression:
		return v.VisitPairExpression(n, arg)
	case *ListExpression:
		return v.VisitListExpression(n, arg)
	case *VectorExpression:
		return v.VisitVectorExpression(n, arg)
	case *VectorGenerator:
		return v.VisitVectorGenerator(n, arg)
	case *VectorIndex:
		return v.VisitVectorIndex(n, arg)
	case *SizeExpression:
		return v.VisitSizeExpression(n, arg)
	case *CarExpression:
		return v.VisitCarExpression(n, arg)
	case *CdrExpression:
		return v.VisitCdrExpression(n, arg)
	case *PairCheckExpression:
		return v.VisitPairCheckExpression(n, arg)
	case *EqualvExpression:
		return v.VisitEqualvExpression(n, arg)
	case *BinaryExpression:
		return v.VisitBinaryExpression(n, arg)
	case *UnaryExpression:
		return v.VisitUnaryExpression(n, arg)
	default:
		var zero T
		if node == nil {
			return zero, fmt.Errorf("cannot visit nil node")
		}
		return zero, fmt.Errorf("unsupported node type %s", node.NodeType())
	}
}
