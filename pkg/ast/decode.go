package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// DecodeProgram decodes a serialized program. The root may be a Program, a
// Sequence, or a bare array of statements.
func DecodeProgram(data []byte) (*Program, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode program: %w", err)
	}
	switch root := raw.(type) {
	case []any:
		stmts, err := decodeStatements("Program", "body", root)
		if err != nil {
			return nil, err
		}
		return NewProgram(NewSequence(stmts)), nil
	case map[string]any:
		node, err := decodeNode(root)
		if err != nil {
			return nil, err
		}
		switch n := node.(type) {
		case *Program:
			return n, nil
		case *Sequence:
			return NewProgram(n), nil
		case Statement:
			return NewProgram(NewSequence([]Statement{n})), nil
		}
		return nil, fmt.Errorf("decode program: unexpected root %s", node.NodeType())
	default:
		return nil, fmt.Errorf("decode program: unexpected root %T", raw)
	}
}

func decodeNode(node map[string]any) (Node, error) {
	typ, _ := node["type"].(string)
	switch NodeType(typ) {
	case NodeProgram:
		body, err := decodeSequenceField(typ, node, "body")
		if err != nil {
			return nil, err
		}
		return NewProgram(body), nil
	case NodeSequence:
		raw, _ := node["statements"].([]any)
		stmts, err := decodeStatements(typ, "statements", raw)
		if err != nil {
			return nil, err
		}
		return NewSequence(stmts), nil
	case NodeDefinition:
		rawValues, _ := node["values"].([]any)
		values, err := decodeExpressions(typ, "values", rawValues)
		if err != nil {
			return nil, err
		}
		if rawIndex, ok := node["index"].(map[string]any); ok {
			child, err := decodeNode(rawIndex)
			if err != nil {
				return nil, err
			}
			index, ok := child.(*VectorIndex)
			if !ok {
				return nil, fieldError(typ, "index", child)
			}
			if len(values) != 1 {
				return nil, fmt.Errorf("%s.values: indexed definition takes one value, got %d", typ, len(values))
			}
			return NewIndexedDefinition(index, values[0]), nil
		}
		rawNames, _ := node["names"].([]any)
		names, err := decodeIdentifiers(typ, "names", rawNames)
		if err != nil {
			return nil, err
		}
		return NewDefinition(names, values), nil
	case NodePrint:
		expr, err := decodeExpressionField(typ, node, "expression")
		if err != nil {
			return nil, err
		}
		terminator := "\n"
		if t, ok := node["terminator"].(string); ok {
			terminator = t
		}
		return NewPrintStatement(expr, terminator), nil
	case NodeLet:
		rawBindings, _ := node["bindings"].([]any)
		bindings := make([]*Binding, 0, len(rawBindings))
		for _, raw := range rawBindings {
			entry, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s.bindings: invalid entry %T", typ, raw)
			}
			name, err := decodeIdentifierField(string(NodeBinding), entry, "name")
			if err != nil {
				return nil, err
			}
			value, err := decodeExpressionField(string(NodeBinding), entry, "value")
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, NewBinding(name, value))
		}
		body, err := decodeExpressionField(typ, node, "body")
		if err != nil {
			return nil, err
		}
		return NewLet(bindings, body), nil
	case NodeIdentifier:
		name, _ := node["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("%s.name: missing", typ)
		}
		return NewIdentifier(name), nil
	case NodeIntegerLiteral:
		value, err := parseInteger(node["value"])
		if err != nil {
			return nil, fmt.Errorf("%s.value: %w", typ, err)
		}
		return NewIntegerLiteral(value), nil
	case NodeRealLiteral:
		value, err := parseReal(node["value"])
		if err != nil {
			return nil, fmt.Errorf("%s.value: %w", typ, err)
		}
		return NewRealLiteral(value), nil
	case NodeBooleanLiteral:
		value, ok := node["value"].(bool)
		if !ok {
			return nil, fmt.Errorf("%s.value: expected boolean, got %T", typ, node["value"])
		}
		return NewBooleanLiteral(value), nil
	case NodeStringLiteral:
		value, ok := node["value"].(string)
		if !ok {
			return nil, fmt.Errorf("%s.value: expected string, got %T", typ, node["value"])
		}
		return NewStringLiteral(value), nil
	case NodeEmptyListLiteral:
		return NewEmptyListLiteral(), nil
	case NodeProcedureExpression:
		rawParams, _ := node["parameters"].([]any)
		params, err := decodeIdentifiers(typ, "parameters", rawParams)
		if err != nil {
			return nil, err
		}
		var rest *Identifier
		if _, ok := node["rest"].(map[string]any); ok {
			if rest, err = decodeIdentifierField(typ, node, "rest"); err != nil {
				return nil, err
			}
		}
		body, err := decodeExpressionField(typ, node, "body")
		if err != nil {
			return nil, err
		}
		return NewProcedureExpression(params, rest, body), nil
	case NodeCall:
		callee, err := decodeExpressionField(typ, node, "callee")
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressionField(typ, node, "arguments")
		if err != nil {
			return nil, err
		}
		return NewCallExpression(callee, args), nil
	case NodeIfExpression:
		condition, err := decodeExpressionField(typ, node, "condition")
		if err != nil {
			return nil, err
		}
		then, err := decodeExpressionField(typ, node, "then")
		if err != nil {
			return nil, err
		}
		var otherwise Expression
		if _, ok := node["else"].(map[string]any); ok {
			if otherwise, err = decodeExpressionField(typ, node, "else"); err != nil {
				return nil, err
			}
		}
		return NewIfExpression(condition, then, otherwise), nil
	case NodeCaseExpression:
		rawClauses, _ := node["clauses"].([]any)
		clauses := make([]*CaseClause, 0, len(rawClauses))
		for _, raw := range rawClauses {
			entry, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s.clauses: invalid entry %T", typ, raw)
			}
			condition, err := decodeExpressionField(string(NodeCaseClause), entry, "condition")
			if err != nil {
				return nil, err
			}
			result, err := decodeExpressionField(string(NodeCaseClause), entry, "result")
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, NewCaseClause(condition, result))
		}
		return NewCaseExpression(clauses), nil
	case NodeLazyExpression:
		body, err := decodeExpressionField(typ, node, "body")
		if err != nil {
			return nil, err
		}
		return NewLazyExpression(body), nil
	case NodeDefineExpression:
		name, err := decodeIdentifierField(typ, node, "name")
		if err != nil {
			return nil, err
		}
		body, err := decodeExpressionField(typ, node, "body")
		if err != nil {
			return nil, err
		}
		return NewDefineExpression(name, body), nil
	case NodeReadExpression:
		return NewReadExpression(), nil
	case NodeReadIntegerExpression:
		return NewReadIntegerExpression(), nil
	case NodeSubstringExpression:
		str, err := decodeExpressionField(typ, node, "string")
		if err != nil {
			return nil, err
		}
		start, err := decodeExpressionField(typ, node, "start")
		if err != nil {
			return nil, err
		}
		end, err := decodeExpressionField(typ, node, "end")
		if err != nil {
			return nil, err
		}
		return NewSubstringExpression(str, start, end), nil
	case NodePairExpression:
		left, right, err := decodeOperands(typ, node)
		if err != nil {
			return nil, err
		}
		return NewPairExpression(left, right), nil
	case NodeEqualvExpression:
		left, right, err := decodeOperands(typ, node)
		if err != nil {
			return nil, err
		}
		return NewEqualvExpression(left, right), nil
	case NodeBinaryExpression:
		op, _ := node["operator"].(string)
		if op == "" {
			return nil, fmt.Errorf("%s.operator: missing", typ)
		}
		left, right, err := decodeOperands(typ, node)
		if err != nil {
			return nil, err
		}
		return NewBinaryExpression(op, left, right), nil
	case NodeUnaryExpression:
		op, _ := node["operator"].(string)
		operand, err := decodeExpressionField(typ, node, "operand")
		if err != nil {
			return nil, err
		}
		switch UnaryOperator(op) {
		case UnaryNot, UnaryBitNot:
		default:
			return nil, fmt.Errorf("%s.operator: unsupported %q", typ, op)
		}
		return NewUnaryExpression(UnaryOperator(op), operand), nil
	case NodeListExpression:
		raw, _ := node["elements"].([]any)
		elements, err := decodeExpressions(typ, "elements", raw)
		if err != nil {
			return nil, err
		}
		return NewListExpression(elements), nil
	case NodeVectorExpression:
		raw, _ := node["elements"].([]any)
		elements, err := decodeExpressions(typ, "elements", raw)
		if err != nil {
			return nil, err
		}
		return NewVectorExpression(elements), nil
	case NodeVectorGenerator:
		count, err := decodeExpressionField(typ, node, "count")
		if err != nil {
			return nil, err
		}
		procedure, err := decodeExpressionField(typ, node, "procedure")
		if err != nil {
			return nil, err
		}
		return NewVectorGenerator(count, procedure), nil
	case NodeVectorIndex:
		name, err := decodeIdentifierField(typ, node, "name")
		if err != nil {
			return nil, err
		}
		index, err := decodeExpressionField(typ, node, "index")
		if err != nil {
			return nil, err
		}
		return NewVectorIndex(name, index), nil
	case NodeSizeExpression, NodeCarExpression, NodeCdrExpression, NodePairCheckExpression:
		expr, err := decodeExpressionField(typ, node, "expression")
		if err != nil {
			return nil, err
		}
		switch NodeType(typ) {
		case NodeSizeExpression:
			return NewSizeExpression(expr), nil
		case NodeCarExpression:
			return NewCarExpression(expr), nil
		case NodeCdrExpression:
			return NewCdrExpression(expr), nil
		default:
			return NewPairCheckExpression(expr), nil
		}
	case "":
		return nil, fmt.Errorf("node missing type")
	default:
		return nil, fmt.Errorf("unsupported node type %s", typ)
	}
}

func fieldError(typ, field string, got Node) error {
	if got == nil {
		return fmt.Errorf("%s.%s: missing", typ, field)
	}
	return fmt.Errorf("%s.%s: unexpected %s", typ, field, got.NodeType())
}

func decodeChild(typ string, node map[string]any, field string) (Node, error) {
	raw, ok := node[field].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s.%s: missing", typ, field)
	}
	return decodeNode(raw)
}

func decodeExpressionField(typ string, node map[string]any, field string) (Expression, error) {
	child, err := decodeChild(typ, node, field)
	if err != nil {
		return nil, err
	}
	expr, ok := child.(Expression)
	if !ok {
		return nil, fieldError(typ, field, child)
	}
	return expr, nil
}

func decodeIdentifierField(typ string, node map[string]any, field string) (*Identifier, error) {
	child, err := decodeChild(typ, node, field)
	if err != nil {
		return nil, err
	}
	id, ok := child.(*Identifier)
	if !ok {
		return nil, fieldError(typ, field, child)
	}
	return id, nil
}

func decodeSequenceField(typ string, node map[string]any, field string) (*Sequence, error) {
	if raw, ok := node[field].([]any); ok {
		stmts, err := decodeStatements(typ, field, raw)
		if err != nil {
			return nil, err
		}
		return NewSequence(stmts), nil
	}
	child, err := decodeChild(typ, node, field)
	if err != nil {
		return nil, err
	}
	seq, ok := child.(*Sequence)
	if !ok {
		return nil, fieldError(typ, field, child)
	}
	return seq, nil
}

func decodeOperands(typ string, node map[string]any) (Expression, Expression, error) {
	left, err := decodeExpressionField(typ, node, "left")
	if err != nil {
		return nil, nil, err
	}
	right, err := decodeExpressionField(typ, node, "right")
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func decodeStatements(typ, field string, raw []any) ([]Statement, error) {
	stmts := make([]Statement, 0, len(raw))
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s.%s[%d]: invalid entry %T", typ, field, i, entry)
		}
		child, err := decodeNode(obj)
		if err != nil {
			return nil, err
		}
		stmt, ok := child.(Statement)
		if !ok {
			return nil, fmt.Errorf("%s.%s[%d]: unexpected %s", typ, field, i, child.NodeType())
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func decodeExpressions(typ, field string, raw []any) ([]Expression, error) {
	exprs := make([]Expression, 0, len(raw))
	for i, entry := range raw {
		obj, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s.%s[%d]: invalid entry %T", typ, field, i, entry)
		}
		child, err := decodeNode(obj)
		if err != nil {
			return nil, err
		}
		expr, ok := child.(Expression)
		if !ok {
			return nil, fmt.Errorf("%s.%s[%d]: unexpected %s", typ, field, i, child.NodeType())
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func decodeIdentifiers(typ, field string, raw []any) ([]*Identifier, error) {
	ids := make([]*Identifier, 0, len(raw))
	for i, entry := range raw {
		var id *Identifier
		switch v := entry.(type) {
		case string:
			id = NewIdentifier(v)
		case map[string]any:
			child, err := decodeNode(v)
			if err != nil {
				return nil, err
			}
			ident, ok := child.(*Identifier)
			if !ok {
				return nil, fmt.Errorf("%s.%s[%d]: unexpected %s", typ, field, i, child.NodeType())
			}
			id = ident
		default:
			return nil, fmt.Errorf("%s.%s[%d]: invalid entry %T", typ, field, i, entry)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseInteger(value any) (int64, error) {
	switch v := value.(type) {
	case json.Number:
		return strconv.ParseInt(v.String(), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("expected integer, got %v", v)
		}
		return int64(v), nil
	default:
		return 0, fmt.Errorf("expected integer, got %T", value)
	}
}

func parseReal(value any) (float64, error) {
	switch v := value.(type) {
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(v, 64)
	case float64:
		return v, nil
	default:
		return 0, fmt.Errorf("expected number, got %T", value)
	}
}
