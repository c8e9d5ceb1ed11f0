package lox

import "fmt"

type resolveError struct {
	pos Position
	msg string
}

func (e *resolveError) Error() string {
	return fmt.Sprintf("resolve error at %d:%d: %s", e.pos.Line, e.pos.Column, e.msg)
}

type functionKind int

const (
	fnKindNone functionKind = iota
	fnKindFunction
	fnKindMethod
	fnKindInitializer
)

type classKind int

const (
	classKindNone classKind = iota
	classKindClass
	classKindSubclass
)

// resolver walks the AST after parsing, mirroring the scope nesting the
// interpreter will use, and records a hop count for every variable
// reference it can bind statically. It also enforces the placement rules
// for return, this, and super. All errors are accumulated.
type resolver struct {
	// scopes[0] is the global scope; each map tracks declared names and
	// whether their initializer has finished (declared=false until then).
	scopes []map[string]bool
	locals map[Expression]int
	errors []error

	currentFn    functionKind
	currentClass classKind
}

// Resolve computes hop counts for the program and validates static rules.
// The returned side table is stored on the program; the interpreter trusts
// it unconditionally.
func Resolve(program *Program) []error {
	r := &resolver{
		scopes: []map[string]bool{make(map[string]bool)},
		locals: make(map[Expression]int),
	}
	for _, stmt := range program.Statements {
		r.resolveStatement(stmt)
	}
	program.Locals = r.locals
	return r.errors
}

func (r *resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) declare(name string, pos Position) {
	scope := r.scopes[len(r.scopes)-1]
	if _, exists := scope[name]; exists && len(r.scopes) > 1 {
		r.errorAt(pos, "variable %s already declared in this scope", name)
	}
	scope[name] = false
}

func (r *resolver) define(name string) {
	r.scopes[len(r.scopes)-1][name] = true
}

func (r *resolver) resolveLocal(expr Expression, name string) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
	// Unknown here: either a host builtin or a binding from an earlier
	// compile sharing the same globals. Left to the dynamic chain walk.
}

func (r *resolver) resolveStatement(stmt Statement) {
	switch s := stmt.(type) {
	case *ExprStmt:
		r.resolveExpression(s.Expr)
	case *PrintStmt:
		r.resolveExpression(s.Expr)
	case *VarStmt:
		r.declare(s.Name, s.Pos())
		if s.Initializer != nil {
			r.resolveExpression(s.Initializer)
		}
		r.define(s.Name)
	case *BlockStmt:
		r.beginScope()
		for _, inner := range s.Statements {
			r.resolveStatement(inner)
		}
		r.endScope()
	case *IfStmt:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Consequent)
		if s.Alternate != nil {
			r.resolveStatement(s.Alternate)
		}
	case *WhileStmt:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Body)
	case *FunctionStmt:
		r.declare(s.Name, s.Pos())
		r.define(s.Name)
		r.resolveFunction(s, fnKindFunction)
	case *ReturnStmt:
		if r.currentFn == fnKindNone {
			r.errorAt(s.Pos(), "return outside of a function")
		}
		if s.Value != nil {
			if r.currentFn == fnKindInitializer {
				r.errorAt(s.Pos(), "cannot return a value from an initializer")
			}
			r.resolveExpression(s.Value)
		}
	case *ClassStmt:
		r.resolveClass(s)
	}
}

func (r *resolver) resolveClass(s *ClassStmt) {
	enclosing := r.currentClass
	r.currentClass = classKindClass
	defer func() { r.currentClass = enclosing }()

	r.declare(s.Name, s.Pos())
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name == s.Name {
			r.errorAt(s.Superclass.Pos(), "a class cannot inherit from itself")
		}
		r.currentClass = classKindSubclass
		r.resolveExpression(s.Superclass)

		r.beginScope()
		r.define("super")
	}

	r.beginScope()
	r.define("this")

	for _, method := range s.Methods {
		kind := fnKindMethod
		if method.Name == "init" {
			kind = fnKindInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.endScope()
	if s.Superclass != nil {
		r.endScope()
	}
}

func (r *resolver) resolveFunction(fn *FunctionStmt, kind functionKind) {
	enclosing := r.currentFn
	r.currentFn = kind
	defer func() { r.currentFn = enclosing }()

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param, fn.Pos())
		r.define(param)
	}
	for _, stmt := range fn.Body {
		r.resolveStatement(stmt)
	}
	r.endScope()
}

func (r *resolver) resolveExpression(expr Expression) {
	switch e := expr.(type) {
	case *LiteralExpr:
	case *GroupingExpr:
		r.resolveExpression(e.Expr)
	case *UnaryExpr:
		r.resolveExpression(e.Right)
	case *BinaryExpr:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)
	case *LogicalExpr:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)
	case *VariableExpr:
		if defined, declared := r.scopes[len(r.scopes)-1][e.Name]; declared && !defined {
			r.errorAt(e.Pos(), "cannot read variable %s in its own initializer", e.Name)
		}
		r.resolveLocal(e, e.Name)
	case *AssignExpr:
		r.resolveExpression(e.Value)
		r.resolveLocal(e, e.Name)
	case *CallExpr:
		r.resolveExpression(e.Callee)
		for _, arg := range e.Args {
			r.resolveExpression(arg)
		}
	case *GetExpr:
		r.resolveExpression(e.Object)
	case *SetExpr:
		r.resolveExpression(e.Object)
		r.resolveExpression(e.Value)
	case *ThisExpr:
		if r.currentClass == classKindNone {
			r.errorAt(e.Pos(), "this outside of a class method")
			return
		}
		r.resolveLocal(e, "this")
	case *SuperExpr:
		switch r.currentClass {
		case classKindNone:
			r.errorAt(e.Pos(), "super outside of a class")
			return
		case classKindClass:
			r.errorAt(e.Pos(), "super in a class with no superclass")
			return
		}
		r.resolveLocal(e, "super")
	}
}

func (r *resolver) errorAt(pos Position, format string, args ...any) {
	r.errors = append(r.errors, &resolveError{pos: pos, msg: fmt.Sprintf(format, args...)})
}
