package ast

import (
	"strconv"
	"strings"
)

// Render renders node in a compact single-line surface form.
func Render(node Node) string {
	var p printer
	p.node(node)
	return p.b.String()
}

type printer struct {
	b strings.Builder
}

func (p *printer) write(parts ...string) {
	for _, s := range parts {
		p.b.WriteString(s)
	}
}

func (p *printer) list(nodes []Expression) {
	for i, n := range nodes {
		if i > 0 {
			p.write(", ")
		}
		p.node(n)
	}
}

func (p *printer) call(name string, args ...Expression) {
	p.write(name, "(")
	p.list(args)
	p.write(")")
}

func (p *printer) statements(stmts []Statement) {
	for i, s := range stmts {
		if i > 0 {
			p.write("; ")
		}
		p.node(s)
	}
}

func (p *printer) node(node Node) {
	switch n := node.(type) {
	case nil:
		p.write("<nil>")
	case *Program:
		if n.Body != nil {
			p.statements(n.Body.Statements)
		}
	case *Sequence:
		p.write("{")
		p.statements(n.Statements)
		p.write("}")
	case *Definition:
		if n.Index != nil {
			p.node(n.Index)
		} else {
			for i, id := range n.Names {
				if i > 0 {
					p.write(", ")
				}
				p.node(id)
			}
		}
		p.write(" := ")
		p.list(n.Values)
	case *PrintStatement:
		if n.Terminator == "\n" {
			p.call("println", n.Expression)
		} else {
			p.call("print", n.Expression)
		}
	case *Let:
		p.write("let (")
		for i, b := range n.Bindings {
			if i > 0 {
				p.write(", ")
			}
			p.node(b.Name)
			p.write(" = ")
			p.node(b.Value)
		}
		p.write(") ")
		p.node(n.Body)
	case *Identifier:
		p.write(n.Name)
	case *IntegerLiteral:
		p.write(strconv.FormatInt(n.Value, 10))
	case *RealLiteral:
		p.write(FormatReal(n.Value))
	case *BooleanLiteral:
		if n.Value {
			p.write("#t")
		} else {
			p.write("#f")
		}
	case *StringLiteral:
		p.write(strconv.Quote(n.Value))
	case *EmptyListLiteral:
		p.write("#e")
	case *ProcedureExpression:
		p.write("proc(")
		for i, id := range n.Parameters {
			if i > 0 {
				p.write(", ")
			}
			p.node(id)
		}
		if n.Rest != nil {
			if len(n.Parameters) > 0 {
				p.write(" ")
			}
			p.write(". ", n.Rest.Name)
		}
		p.write(") ")
		p.node(n.Body)
	case *CallExpression:
		p.call("call", n.Callee, n.Arguments)
	case *IfExpression:
		p.write("if ")
		p.node(n.Condition)
		p.write(" then ")
		p.node(n.Then)
		if n.Else != nil {
			p.write(" else ")
			p.node(n.Else)
		}
	case *CaseExpression:
		p.write("case {")
		for i, c := range n.Clauses {
			if i > 0 {
				p.write(", ")
			}
			if lit, ok := c.Condition.(*StringLiteral); ok && lit.Value == ElseCondition {
				p.write(ElseCondition)
			} else {
				p.node(c.Condition)
			}
			p.write(": ")
			p.node(c.Result)
		}
		p.write("}")
	case *LazyExpression:
		p.call("lazy", n.Body)
	case *DefineExpression:
		p.call("def", n.Name, n.Body)
	case *ReadExpression:
		p.write("read()")
	case *ReadIntegerExpression:
		p.write("readint()")
	case *SubstringExpression:
		p.call("substr", n.String, n.Start, n.End)
	case *PairExpression:
		p.call("pair", n.Left, n.Right)
	case *ListExpression:
		p.call("list", n.Elements...)
	case *VectorExpression:
		p.write("[")
		p.list(n.Elements)
		p.write("]")
	case *VectorGenerator:
		p.node(n.Count)
		p.write(": ")
		p.node(n.Procedure)
	case *VectorIndex:
		p.node(n.Name)
		p.write("[")
		p.node(n.Index)
		p.write("]")
	case *SizeExpression:
		p.call("size", n.Expression)
	case *CarExpression:
		p.call("car", n.Expression)
	case *CdrExpression:
		p.call("cdr", n.Expression)
	case *PairCheckExpression:
		p.call("pair?", n.Expression)
	case *EqualvExpression:
		p.call("eqv", n.Left, n.Right)
	case *BinaryExpression:
		p.write("(")
		p.node(n.Left)
		p.write(" ", n.Operator, " ")
		p.node(n.Right)
		p.write(")")
	case *UnaryExpression:
		if n.Operator == UnaryNot {
			p.write("not ")
		} else {
			p.write(string(n.Operator))
		}
		p.node(n.Operand)
	default:
		p.write("<", string(node.NodeType()), ">")
	}
}

// FormatReal renders a float in its shortest round-trip form, keeping a
// trailing ".0" on integral values.
func FormatReal(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEIN") {
		return s
	}
	return s + ".0"
}
