package lox

import (
	"fmt"
	"io"
	"maps"
	"os"
	"sort"
	"time"
)

// Config controls interpreter output and execution bounds.
type Config struct {
	Stdout         io.Writer
	RecursionLimit int
	Clock          func() time.Time
}

// Interpreter executes resolved programs against a persistent global
// environment. It is single-threaded and synchronous; every native call
// runs inline.
type Interpreter struct {
	config    Config
	globals   *Env
	locals    map[Expression]int
	callStack []StackFrame
	source    string
}

// NewInterpreter constructs an Interpreter with sane defaults and
// registers the native functions available to programs.
func NewInterpreter(cfg Config) *Interpreter {
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.RecursionLimit <= 0 {
		cfg.RecursionLimit = 256
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	in := &Interpreter{
		config:  cfg,
		globals: newEnv(nil),
		locals:  make(map[Expression]int),
	}
	registerDefaultBuiltins(in)
	return in
}

// RegisterBuiltin installs a host-provided native in the global scope.
func (in *Interpreter) RegisterBuiltin(name string, arity int, fn BuiltinFunc) {
	in.globals.Define(name, NewBuiltin(name, arity, fn))
}

// GlobalNames returns the names bound in the global scope, sorted.
func (in *Interpreter) GlobalNames() []string {
	names := make([]string, 0, len(in.globals.values))
	for name := range in.globals.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Global reads a global binding by name.
func (in *Interpreter) Global(name string) (Value, bool) {
	return in.globals.Get(name)
}

// Run executes a compiled program. Global bindings persist across runs,
// which is what keeps a REPL session stateful.
func (in *Interpreter) Run(program *Program) error {
	maps.Copy(in.locals, program.Locals)
	in.source = program.source
	_, _, err := in.evalStatements(program.Statements, in.globals)
	return err
}

// RunLast executes a compiled program and returns the value of its final
// expression statement, if any.
func (in *Interpreter) RunLast(program *Program) (Value, error) {
	maps.Copy(in.locals, program.Locals)
	in.source = program.source
	val, _, err := in.evalStatements(program.Statements, in.globals)
	return val, err
}

// Evaluate evaluates a bare expression against the global environment.
func (in *Interpreter) Evaluate(expr Expression) (Value, error) {
	return in.evalExpression(expr, in.globals)
}

func (in *Interpreter) evalStatements(stmts []Statement, env *Env) (Value, bool, error) {
	result := NewNil()
	for _, stmt := range stmts {
		val, returned, err := in.evalStatement(stmt, env)
		if err != nil {
			return NewNil(), false, err
		}
		if returned {
			return val, true, nil
		}
		result = val
	}
	return result, false, nil
}

func (in *Interpreter) evalStatement(stmt Statement, env *Env) (Value, bool, error) {
	switch s := stmt.(type) {
	case *ExprStmt:
		val, err := in.evalExpression(s.Expr, env)
		return val, false, err
	case *PrintStmt:
		val, err := in.evalExpression(s.Expr, env)
		if err != nil {
			return NewNil(), false, err
		}
		fmt.Fprintln(in.config.Stdout, val.String())
		return NewNil(), false, nil
	case *VarStmt:
		val := NewNil()
		if s.Initializer != nil {
			var err error
			val, err = in.evalExpression(s.Initializer, env)
			if err != nil {
				return NewNil(), false, err
			}
		}
		env.Define(s.Name, val)
		return NewNil(), false, nil
	case *BlockStmt:
		return in.evalStatements(s.Statements, newEnv(env))
	case *IfStmt:
		cond, err := in.evalExpression(s.Condition, env)
		if err != nil {
			return NewNil(), false, err
		}
		if cond.Truthy() {
			return in.evalStatement(s.Consequent, env)
		}
		if s.Alternate != nil {
			return in.evalStatement(s.Alternate, env)
		}
		return NewNil(), false, nil
	case *WhileStmt:
		for {
			cond, err := in.evalExpression(s.Condition, env)
			if err != nil {
				return NewNil(), false, err
			}
			if !cond.Truthy() {
				return NewNil(), false, nil
			}
			val, returned, err := in.evalStatement(s.Body, env)
			if err != nil {
				return NewNil(), false, err
			}
			if returned {
				return val, true, nil
			}
		}
	case *FunctionStmt:
		fn := &Function{Declaration: s, Closure: env}
		env.Define(s.Name, NewFunction(fn))
		return NewNil(), false, nil
	case *ReturnStmt:
		val := NewNil()
		if s.Value != nil {
			var err error
			val, err = in.evalExpression(s.Value, env)
			if err != nil {
				return NewNil(), false, err
			}
		}
		return val, true, nil
	case *ClassStmt:
		return NewNil(), false, in.evalClassDeclaration(s, env)
	default:
		return NewNil(), false, in.errorAt(stmt.Pos(), "unsupported statement")
	}
}

func (in *Interpreter) evalClassDeclaration(s *ClassStmt, env *Env) error {
	var superclass *Class
	methodEnv := env
	if s.Superclass != nil {
		superVal, err := in.lookUpVariable(s.Superclass, s.Superclass.Name, env)
		if err != nil {
			return err
		}
		if superVal.Kind() != KindClass {
			return in.errorAt(s.Superclass.Pos(), "superclass must be a class, got %s", superVal.Kind())
		}
		superclass = superVal.Class()

		// Methods close over a scope holding the statically declared
		// superclass, which is what super resolves against.
		methodEnv = newEnv(env)
		methodEnv.Define("super", superVal)
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, decl := range s.Methods {
		methods[decl.Name] = &Function{
			Declaration:   decl,
			Closure:       methodEnv,
			IsInitializer: decl.Name == "init",
		}
	}

	env.Define(s.Name, NewClass(&Class{Name: s.Name, Superclass: superclass, Methods: methods}))
	return nil
}

func (in *Interpreter) evalExpression(expr Expression, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *LiteralExpr:
		switch v := e.Value.(type) {
		case nil:
			return NewNil(), nil
		case bool:
			return NewBool(v), nil
		case float64:
			return NewNumber(v), nil
		case string:
			return NewString(v), nil
		default:
			return NewNil(), in.errorAt(e.Pos(), "unsupported literal")
		}
	case *GroupingExpr:
		return in.evalExpression(e.Expr, env)
	case *UnaryExpr:
		return in.evalUnaryExpr(e, env)
	case *BinaryExpr:
		return in.evalBinaryExpr(e, env)
	case *LogicalExpr:
		return in.evalLogicalExpr(e, env)
	case *VariableExpr:
		return in.lookUpVariable(e, e.Name, env)
	case *AssignExpr:
		val, err := in.evalExpression(e.Value, env)
		if err != nil {
			return NewNil(), err
		}
		if hops, ok := in.locals[e]; ok {
			if !env.AssignAt(hops, e.Name, val) {
				panic(fmt.Sprintf("resolver hop count disagrees with environment chain for %s", e.Name))
			}
			return val, nil
		}
		if !in.globals.Assign(e.Name, val) {
			return NewNil(), in.errorAt(e.Pos(), "undefined variable %s", e.Name)
		}
		return val, nil
	case *CallExpr:
		return in.evalCallExpr(e, env)
	case *GetExpr:
		obj, err := in.evalExpression(e.Object, env)
		if err != nil {
			return NewNil(), err
		}
		return in.getProperty(obj, e.Property, e.Pos())
	case *SetExpr:
		obj, err := in.evalExpression(e.Object, env)
		if err != nil {
			return NewNil(), err
		}
		if obj.Kind() != KindInstance {
			return NewNil(), in.errorAt(e.Pos(), "only instances have fields, got %s", obj.Kind())
		}
		val, err := in.evalExpression(e.Value, env)
		if err != nil {
			return NewNil(), err
		}
		obj.Instance().Fields[e.Property] = val
		return val, nil
	case *ThisExpr:
		return in.lookUpVariable(e, "this", env)
	case *SuperExpr:
		return in.evalSuperExpr(e, env)
	default:
		return NewNil(), in.errorAt(expr.Pos(), "unsupported expression")
	}
}

// lookUpVariable uses the resolver's hop count when one was recorded and
// falls back to the global scope otherwise (host builtins, bindings from
// earlier compiles against the same interpreter).
func (in *Interpreter) lookUpVariable(expr Expression, name string, env *Env) (Value, error) {
	if hops, ok := in.locals[expr]; ok {
		val, found := env.GetAt(hops, name)
		if !found {
			panic(fmt.Sprintf("resolver hop count disagrees with environment chain for %s", name))
		}
		return val, nil
	}
	if val, ok := in.globals.Get(name); ok {
		return val, nil
	}
	return NewNil(), in.errorAt(expr.Pos(), "undefined variable %s", name)
}

func (in *Interpreter) evalUnaryExpr(e *UnaryExpr, env *Env) (Value, error) {
	right, err := in.evalExpression(e.Right, env)
	if err != nil {
		return NewNil(), err
	}
	switch e.Operator.Type {
	case tokenMinus:
		if right.Kind() != KindNumber {
			return NewNil(), in.errorAt(e.Pos(), "operand of - must be a number, got %s", right.Kind())
		}
		return NewNumber(-right.Num()), nil
	case tokenBang:
		return NewBool(!right.Truthy()), nil
	default:
		return NewNil(), in.errorAt(e.Pos(), "unsupported unary operator %s", e.Operator.Lexeme)
	}
}

func (in *Interpreter) evalBinaryExpr(e *BinaryExpr, env *Env) (Value, error) {
	left, err := in.evalExpression(e.Left, env)
	if err != nil {
		return NewNil(), err
	}
	right, err := in.evalExpression(e.Right, env)
	if err != nil {
		return NewNil(), err
	}

	op := e.Operator
	switch op.Type {
	case tokenPlus:
		switch {
		case left.Kind() == KindNumber && right.Kind() == KindNumber:
			return NewNumber(left.Num() + right.Num()), nil
		case left.Kind() == KindString && right.Kind() == KindString:
			return NewString(left.Str() + right.Str()), nil
		default:
			return NewNil(), in.errorAt(e.Pos(), "operands of + must be two numbers or two strings, got %s and %s", left.Kind(), right.Kind())
		}
	case tokenEqualEqual:
		return NewBool(left.Equal(right)), nil
	case tokenBangEqual:
		return NewBool(!left.Equal(right)), nil
	}

	if left.Kind() != KindNumber || right.Kind() != KindNumber {
		return NewNil(), in.errorAt(e.Pos(), "operands of %s must be numbers, got %s and %s", op.Lexeme, left.Kind(), right.Kind())
	}
	l, r := left.Num(), right.Num()
	switch op.Type {
	case tokenMinus:
		return NewNumber(l - r), nil
	case tokenStar:
		return NewNumber(l * r), nil
	case tokenSlash:
		return NewNumber(l / r), nil
	case tokenLess:
		return NewBool(l < r), nil
	case tokenLessEqual:
		return NewBool(l <= r), nil
	case tokenGreater:
		return NewBool(l > r), nil
	case tokenGreaterEqual:
		return NewBool(l >= r), nil
	default:
		return NewNil(), in.errorAt(e.Pos(), "unsupported binary operator %s", op.Lexeme)
	}
}

// evalLogicalExpr short-circuits: the deciding operand is returned as-is
// and the right side is never evaluated when the left decides.
func (in *Interpreter) evalLogicalExpr(e *LogicalExpr, env *Env) (Value, error) {
	left, err := in.evalExpression(e.Left, env)
	if err != nil {
		return NewNil(), err
	}
	if e.Operator.Type == tokenAnd {
		if !left.Truthy() {
			return left, nil
		}
	} else {
		if left.Truthy() {
			return left, nil
		}
	}
	return in.evalExpression(e.Right, env)
}

func (in *Interpreter) evalCallExpr(e *CallExpr, env *Env) (Value, error) {
	callee, err := in.evalExpression(e.Callee, env)
	if err != nil {
		return NewNil(), err
	}

	args := make([]Value, len(e.Args))
	for i, argExpr := range e.Args {
		arg, err := in.evalExpression(argExpr, env)
		if err != nil {
			return NewNil(), err
		}
		args[i] = arg
	}

	switch callee.Kind() {
	case KindFunction:
		return in.callFunction(callee.Fn(), args, e.Pos())
	case KindBuiltin:
		builtin := callee.Builtin()
		if len(args) != builtin.Arity {
			return NewNil(), in.errorAt(e.Pos(), "%s expected %d arguments but got %d", builtin.Name, builtin.Arity, len(args))
		}
		return builtin.Fn(in, args)
	case KindClass:
		return in.instantiate(callee.Class(), args, e.Pos())
	default:
		return NewNil(), in.errorAt(e.Pos(), "cannot call %s value %s", callee.Kind(), callee.String())
	}
}

func (in *Interpreter) callFunction(fn *Function, args []Value, pos Position) (Value, error) {
	if len(args) != fn.arity() {
		return NewNil(), in.errorAt(pos, "%s expected %d arguments but got %d", fn.Declaration.Name, fn.arity(), len(args))
	}
	if len(in.callStack) >= in.config.RecursionLimit {
		return NewNil(), in.errorAt(pos, "stack overflow: call depth exceeds %d", in.config.RecursionLimit)
	}

	// The frame's parent is the captured closure environment, never the
	// caller's: that is what makes closures work.
	env := newEnv(fn.Closure)
	for i, param := range fn.Declaration.Params {
		env.Define(param, args[i])
	}

	in.callStack = append(in.callStack, StackFrame{Function: fn.Declaration.Name, Pos: pos})
	val, returned, err := in.evalStatements(fn.Declaration.Body, env)
	in.callStack = in.callStack[:len(in.callStack)-1]
	if err != nil {
		return NewNil(), err
	}

	if fn.IsInitializer {
		this, _ := fn.Closure.GetAt(0, "this")
		return this, nil
	}
	if returned {
		return val, nil
	}
	return NewNil(), nil
}

func (in *Interpreter) instantiate(class *Class, args []Value, pos Position) (Value, error) {
	instance := NewInstance(newInstance(class))
	if init, ok := class.initializer(); ok {
		if _, err := in.callFunction(init.bind(instance), args, pos); err != nil {
			return NewNil(), err
		}
		return instance, nil
	}
	if len(args) != 0 {
		return NewNil(), in.errorAt(pos, "%s expected 0 arguments but got %d", class.Name, len(args))
	}
	return instance, nil
}

// getProperty checks the instance's own fields first, then walks the
// class chain for a method, binding it to the instance at lookup time.
func (in *Interpreter) getProperty(obj Value, property string, pos Position) (Value, error) {
	if obj.Kind() != KindInstance {
		return NewNil(), in.errorAt(pos, "only instances have properties, got %s", obj.Kind())
	}
	instance := obj.Instance()
	if val, ok := instance.Fields[property]; ok {
		return val, nil
	}
	if method, ok := instance.Class.findMethod(property); ok {
		return NewFunction(method.bind(obj)), nil
	}
	return NewNil(), in.errorAt(pos, "undefined property %s on %s", property, obj.String())
}

// evalSuperExpr starts the method search at the statically enclosing
// class's superclass while keeping `this` bound to the original instance.
func (in *Interpreter) evalSuperExpr(e *SuperExpr, env *Env) (Value, error) {
	// A bare expression evaluated without the resolver pass (the evaluate
	// mode, the REPL fallback) has no annotation; that is a user error
	// here, not an interpreter defect.
	hops, ok := in.locals[e]
	if !ok {
		return NewNil(), in.errorAt(e.Pos(), "cannot use super outside of a class")
	}
	superVal, found := env.GetAt(hops, "super")
	if !found {
		panic("resolver hop count disagrees with environment chain for super")
	}
	this, found := env.GetAt(hops-1, "this")
	if !found {
		panic("resolver hop count disagrees with environment chain for this")
	}

	method, ok := superVal.Class().findMethod(e.Method)
	if !ok {
		return NewNil(), in.errorAt(e.Pos(), "undefined property %s on %s", e.Method, superVal.Class().Name)
	}
	return NewFunction(method.bind(this)), nil
}

func (in *Interpreter) errorAt(pos Position, format string, args ...any) error {
	frames := make([]StackFrame, 0, len(in.callStack))
	for i := len(in.callStack) - 1; i >= 0; i-- {
		frames = append(frames, in.callStack[i])
	}
	return &RuntimeError{
		Message:   fmt.Sprintf(format, args...),
		Pos:       pos,
		CodeFrame: formatCodeFrame(in.source, pos),
		Frames:    frames,
	}
}
