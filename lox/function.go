package lox

// Function is a closure: a declaration paired with the environment active
// at its definition site.
type Function struct {
	Declaration   *FunctionStmt
	Closure       *Env
	IsInitializer bool
}

func (f *Function) arity() int { return len(f.Declaration.Params) }

// bind produces a fresh function whose closure is one scope deeper than
// the method's defining environment, holding `this`. Binding happens at
// lookup time, so every property access sees the accessed instance.
func (f *Function) bind(instance Value) *Function {
	env := newEnv(f.Closure)
	env.Define("this", instance)
	return &Function{Declaration: f.Declaration, Closure: env, IsInitializer: f.IsInitializer}
}

// BuiltinFunc is a host-provided native. It runs inline; there are no
// suspension points anywhere in the pipeline.
type BuiltinFunc func(in *Interpreter, args []Value) (Value, error)

type Builtin struct {
	Name  string
	Arity int
	Fn    BuiltinFunc
}
