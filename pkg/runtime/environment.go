package runtime

// Environment is one lexical scope: a binding table plus a parent link.
type Environment struct {
	values map[string]Value
	parent *Environment

	// memo is the lazy-once slot shared by every lazy expression evaluated
	// directly in this scope. It is not inherited by child scopes.
	memo Value
}

// NewEnvironment creates a new environment, optionally nested under a parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// NewChildEnvironment binds names[i] to values[i] in a fresh scope under
// parent. Mismatched lengths fail with an ArityError.
func NewChildEnvironment(names []string, values []Value, parent *Environment) (*Environment, error) {
	if len(names) != len(values) {
		return nil, &ArityError{Context: "scope bindings", Expected: len(names), Actual: len(values)}
	}
	env := NewEnvironment(parent)
	for i, name := range names {
		env.values[name] = values[i]
	}
	return env, nil
}

// Parent exposes the lexical parent (nil when global).
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Put inserts or overwrites a binding in this scope only.
func (e *Environment) Put(name string, value Value) {
	e.values[name] = value
}

// Lookup retrieves a binding, searching outward through the scope chain.
func (e *Environment) Lookup(name string) (Value, error) {
	for scope := e; scope != nil; scope = scope.parent {
		if v, ok := scope.values[name]; ok {
			return v, nil
		}
	}
	return nil, &UnboundVariableError{Name: name}
}

// Has reports whether name is bound in this scope or an ancestor.
func (e *Environment) Has(name string) bool {
	_, err := e.Lookup(name)
	return err == nil
}

// Memo returns the lazy-once value memoized in this scope, if any.
func (e *Environment) Memo() (Value, bool) {
	return e.memo, e.memo != nil
}

func (e *Environment) SetMemo(value Value) {
	e.memo = value
}
