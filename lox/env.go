package lox

// Env is one scope in the lexical environment chain. Closures share the
// chain, so an Env may outlive the block that created it; the parent links
// are acyclic by construction.
type Env struct {
	parent *Env
	values map[string]Value
}

func newEnv(parent *Env) *Env {
	return &Env{parent: parent, values: make(map[string]Value)}
}

// Define inserts or overwrites a binding in this scope only.
func (e *Env) Define(name string, val Value) {
	e.values[name] = val
}

// Get searches this scope then each enclosing scope in order.
func (e *Env) Get(name string) (Value, bool) {
	if val, ok := e.values[name]; ok {
		return val, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return Value{}, false
}

// Assign overwrites the nearest existing binding for name. It never
// creates one; assigning an undeclared name reports false.
func (e *Env) Assign(name string, val Value) bool {
	if _, ok := e.values[name]; ok {
		e.values[name] = val
		return true
	}
	if e.parent != nil {
		return e.parent.Assign(name, val)
	}
	return false
}

// GetAt reads name after walking exactly hops parent links. The resolver
// guarantees the binding exists there; a miss is an interpreter defect,
// not a user error.
func (e *Env) GetAt(hops int, name string) (Value, bool) {
	scope := e.ancestor(hops)
	if scope == nil {
		return Value{}, false
	}
	val, ok := scope.values[name]
	return val, ok
}

// AssignAt overwrites name in the scope exactly hops parent links up.
func (e *Env) AssignAt(hops int, name string, val Value) bool {
	scope := e.ancestor(hops)
	if scope == nil {
		return false
	}
	if _, ok := scope.values[name]; !ok {
		return false
	}
	scope.values[name] = val
	return true
}

func (e *Env) ancestor(hops int) *Env {
	scope := e
	for i := 0; i < hops && scope != nil; i++ {
		scope = scope.parent
	}
	return scope
}
