package runtime

import (
	"strconv"
	"strings"

	"github.com/AnnerChan/SMPLPROJECT/pkg/ast"
)

// Format renders a value in its canonical printed form.
func Format(v Value) string {
	var b strings.Builder
	p := printer{b: &b}
	p.write(v)
	return b.String()
}

// printer tracks the vectors currently being rendered; a vector reached
// again through its own elements prints as [...].
type printer struct {
	b      *strings.Builder
	active map[*VectorValue]bool
}

func (p *printer) write(v Value) {
	b := p.b
	switch val := v.(type) {
	case nil:
		b.WriteString("<nil>")
	case *IntegerValue:
		b.WriteString(strconv.FormatInt(val.Val, 10))
	case *RealValue:
		b.WriteString(ast.FormatReal(val.Val))
	case *BoolValue:
		b.WriteString(strconv.FormatBool(val.Val))
	case *StringValue:
		b.WriteString(val.Val)
	case *EmptyListValue:
		b.WriteString("()")
	case *PairValue:
		b.WriteString("(")
		p.write(val.First)
		b.WriteString(" . ")
		p.write(val.Second)
		b.WriteString(")")
	case *ListValue:
		b.WriteString("(")
		var cur Value = val
		for first := true; ; first = false {
			cell, ok := cur.(*ListValue)
			if !ok {
				if _, empty := cur.(*EmptyListValue); !empty {
					b.WriteString(" . ")
					p.write(cur)
				}
				break
			}
			if !first {
				b.WriteString(" ")
			}
			p.write(cell.Head)
			cur = cell.Tail
		}
		b.WriteString(")")
	case *VectorValue:
		if p.active[val] {
			b.WriteString("[...]")
			return
		}
		if p.active == nil {
			p.active = make(map[*VectorValue]bool)
		}
		p.active[val] = true
		b.WriteString("[")
		for i, el := range val.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			p.write(el)
		}
		b.WriteString("]")
		delete(p.active, val)
	case *VectorGeneratorValue:
		b.WriteString("[VectorGenerator: ")
		b.WriteString(strconv.FormatInt(val.Count, 10))
		b.WriteString("]")
	case *ProcedureValue:
		b.WriteString("[Procedure: (")
		b.WriteString(strings.Join(val.Parameters(), ", "))
		if rest := val.Rest(); rest != "" {
			if len(val.Parameters()) > 0 {
				b.WriteString(" ")
			}
			b.WriteString(". ")
			b.WriteString(rest)
		}
		b.WriteString(") -> ")
		if val.Declaration != nil {
			b.WriteString(ast.Render(val.Declaration.Body))
		}
		b.WriteString("]")
	default:
		b.WriteString("<" + v.Kind().String() + ">")
	}
}
