package lox

import (
	"strings"
	"testing"
)

func compileErrors(t *testing.T, source string) []error {
	t.Helper()
	_, errs := Compile(source)
	if len(errs) == 0 {
		t.Fatalf("expected compile errors for %q", source)
	}
	return errs
}

func wantErrorContaining(t *testing.T, errs []error, substr string) {
	t.Helper()
	for _, err := range errs {
		if strings.Contains(err.Error(), substr) {
			return
		}
	}
	t.Fatalf("no error containing %q in %v", substr, errs)
}

func TestResolveSelfReferenceInInitializer(t *testing.T) {
	errs := compileErrors(t, "var a = a;")
	wantErrorContaining(t, errs, "cannot read variable a in its own initializer")
}

func TestResolveSelfReferenceInNestedScope(t *testing.T) {
	errs := compileErrors(t, "var a = 1; { var a = a; }")
	wantErrorContaining(t, errs, "cannot read variable a in its own initializer")
}

func TestResolveShadowingFromOuterScopeIsFine(t *testing.T) {
	if _, errs := Compile("var a = 1; { var b = a; }"); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestResolveDuplicateLocal(t *testing.T) {
	errs := compileErrors(t, "{ var a = 1; var a = 2; }")
	wantErrorContaining(t, errs, "variable a already declared in this scope")
}

func TestResolveDuplicateParameter(t *testing.T) {
	errs := compileErrors(t, "fun f(a, a) {}")
	wantErrorContaining(t, errs, "variable a already declared in this scope")
}

func TestResolveGlobalRedeclarationAllowed(t *testing.T) {
	if _, errs := Compile("var a = 1; var a = 2;"); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestResolveReturnOutsideFunction(t *testing.T) {
	errs := compileErrors(t, "return 1;")
	wantErrorContaining(t, errs, "return outside of a function")
}

func TestResolveReturnValueFromInitializer(t *testing.T) {
	errs := compileErrors(t, "class A { init() { return 1; } }")
	wantErrorContaining(t, errs, "cannot return a value from an initializer")
}

func TestResolveBareReturnFromInitializerAllowed(t *testing.T) {
	if _, errs := Compile("class A { init() { return; } }"); len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestResolveThisOutsideClass(t *testing.T) {
	errs := compileErrors(t, "print this;")
	wantErrorContaining(t, errs, "this outside of a class method")
}

func TestResolveThisInPlainFunction(t *testing.T) {
	errs := compileErrors(t, "fun f() { return this; }")
	wantErrorContaining(t, errs, "this outside of a class method")
}

func TestResolveSuperOutsideClass(t *testing.T) {
	errs := compileErrors(t, "print super.method;")
	wantErrorContaining(t, errs, "super outside of a class")
}

func TestResolveSuperWithoutSuperclass(t *testing.T) {
	errs := compileErrors(t, "class A { m() { return super.m; } }")
	wantErrorContaining(t, errs, "super in a class with no superclass")
}

func TestResolveSelfInheritance(t *testing.T) {
	errs := compileErrors(t, "class A < A {}")
	wantErrorContaining(t, errs, "a class cannot inherit from itself")
}

func TestResolveAccumulatesAllErrors(t *testing.T) {
	errs := compileErrors(t, "return 1;\nprint this;\nvar a = a;")
	if len(errs) != 3 {
		t.Fatalf("expected 3 resolve errors, got %d: %v", len(errs), errs)
	}
}

func TestResolveRecordsHopCounts(t *testing.T) {
	program, errs := Compile("var a = 1; { print a; }")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	block := program.Statements[1].(*BlockStmt)
	ref := block.Statements[0].(*PrintStmt).Expr.(*VariableExpr)
	hops, ok := program.Locals[ref]
	if !ok {
		t.Fatalf("expected a hop count for the block-level reference")
	}
	if hops != 1 {
		t.Fatalf("expected 1 hop to the global scope, got %d", hops)
	}
}

func TestResolveLeavesUnknownNamesToDynamicLookup(t *testing.T) {
	program, errs := Compile("print clock();")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	ref := program.Statements[0].(*PrintStmt).Expr.(*CallExpr).Callee.(*VariableExpr)
	if _, ok := program.Locals[ref]; ok {
		t.Fatalf("builtin reference should not be statically bound")
	}
}
