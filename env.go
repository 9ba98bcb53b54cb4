package lispy

import "sort"

// Env is one lexical scope, chained to its enclosing scope. A name may be
// defined at most once per Env; shadowing a name from an ancestor is allowed.
type Env struct {
	bindings map[string]Value
	parent   *Env
}

// NewEnv creates a scope whose lookups fall back to parent (which may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{
		bindings: make(map[string]Value),
		parent:   parent,
	}
}

// Parent returns the enclosing scope, or nil for the top level.
func (e *Env) Parent() *Env { return e.parent }

// Define binds name in this scope. Ancestor scopes are not consulted.
func (e *Env) Define(name string, val Value) error {
	if _, ok := e.bindings[name]; ok {
		return semanticf("symbol '%s' already defined in this scope", name)
	}
	e.bindings[name] = val
	return nil
}

// Has reports whether name is bound in this scope itself.
func (e *Env) Has(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

func (e *Env) Lookup(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.bindings[name]; ok {
			return val, nil
		}
	}
	return Value{}, semanticf("undefined symbol '%s'", name)
}

// Assign overwrites the nearest existing binding of name.
func (e *Env) Assign(name string, val Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.bindings[name]; ok {
			env.bindings[name] = val
			return nil
		}
	}
	return semanticf("undefined symbol '%s'", name)
}

// Names returns the names bound in this scope, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for k := range e.bindings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
