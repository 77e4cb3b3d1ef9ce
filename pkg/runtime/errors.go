package runtime

import (
	"errors"
	"fmt"
	"strings"
)

// UnboundVariableError reports a failed lookup.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("Undefined variable '%s'", e.Name)
}

// TypeError reports an operand whose tag does not fit the operation.
type TypeError struct {
	Op       string
	Expected []Kind
	Actual   Kind
}

// NewTypeError records actual's tag against the accepted kinds.
func NewTypeError(op string, actual Value, expected ...Kind) *TypeError {
	err := &TypeError{Op: op, Expected: expected, Actual: -1}
	if actual != nil {
		err.Actual = actual.Kind()
	}
	return err
}

func (e *TypeError) Error() string {
	names := make([]string, len(e.Expected))
	for i, k := range e.Expected {
		names[i] = k.String()
	}
	actual := "nothing"
	if e.Actual >= 0 {
		actual = e.Actual.String()
	}
	return fmt.Sprintf("%s: expected %s, got %s", e.Op, strings.Join(names, " or "), actual)
}

// ArithmeticError reports division or modulo by zero.
type ArithmeticError struct {
	Op string
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s by zero", e.Op)
}

// BoundsError reports an index outside a vector or string. Detail, when set,
// replaces the default message.
type BoundsError struct {
	Index  int64
	Size   int
	Name   string
	Detail string
}

func (e *BoundsError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Reference to index [%d] outside of bounds of %s[%d]", e.Index, e.Name, e.Size)
}

// ArityError reports mismatched counts of names and values.
type ArityError struct {
	Context  string
	Expected int
	Actual   int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: expected %d, got %d", e.Context, e.Expected, e.Actual)
}

// ErrorKindOf names the runtime error kind carried by err, or "" when err is
// not a runtime error.
func ErrorKindOf(err error) string {
	var (
		unbound *UnboundVariableError
		typeErr *TypeError
		arith   *ArithmeticError
		bounds  *BoundsError
		arity   *ArityError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &unbound):
		return "UnboundVariable"
	case errors.As(err, &typeErr):
		return "TypeError"
	case errors.As(err, &arith):
		return "ArithmeticError"
	case errors.As(err, &bounds):
		return "BoundsError"
	case errors.As(err, &arity):
		return "ArityError"
	default:
		return ""
	}
}
