package lox

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func runSource(t *testing.T, source string) string {
	t.Helper()
	program, errs := Compile(source)
	if len(errs) > 0 {
		t.Fatalf("compile failed: %v", errs)
	}
	var out bytes.Buffer
	interp := NewInterpreter(Config{Stdout: &out})
	if err := interp.Run(program); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return out.String()
}

func runtimeErr(t *testing.T, source string) *RuntimeError {
	t.Helper()
	program, errs := Compile(source)
	if len(errs) > 0 {
		t.Fatalf("compile failed: %v", errs)
	}
	interp := NewInterpreter(Config{Stdout: &bytes.Buffer{}})
	err := interp.Run(program)
	if err == nil {
		t.Fatalf("expected runtime error for %q", source)
	}
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	return re
}

func TestArithmeticPrecedence(t *testing.T) {
	if got := runSource(t, "print 2 + 3 * 4 - 6 / 2;"); got != "11\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestNumberDisplayDropsFractionalZero(t *testing.T) {
	got := runSource(t, "print 5.0; print 2.5; print 10 / 4;")
	if got != "5\n2.5\n2.5\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestStringConcatenation(t *testing.T) {
	if got := runSource(t, `print "foo" + "bar";`); got != "foobar\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEqualityHasNoCoercion(t *testing.T) {
	got := runSource(t, `print 1 < 2; print "a" == "a"; print 1 == "1"; print nil == nil; print 1 != 2;`)
	if got != "true\ntrue\nfalse\ntrue\ntrue\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestTruthiness(t *testing.T) {
	got := runSource(t, `print !nil; print !false; print !0; print !"";`)
	if got != "true\ntrue\nfalse\nfalse\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestShortCircuitSkipsRightSide(t *testing.T) {
	got := runSource(t, `
fun boom() { print "boom"; return true; }
print false and boom();
print true or boom();
`)
	if got != "false\ntrue\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestLogicalOperatorsReturnDecidingOperand(t *testing.T) {
	got := runSource(t, `print nil or "fallback"; print "first" and "second";`)
	if got != "fallback\nsecond\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestIfElse(t *testing.T) {
	got := runSource(t, `if (1 > 2) print "then"; else print "else";`)
	if got != "else\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestWhileLoop(t *testing.T) {
	got := runSource(t, "var i = 0; while (i < 3) { print i; i = i + 1; }")
	if got != "0\n1\n2\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestForLoop(t *testing.T) {
	got := runSource(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	if got != "0\n1\n2\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestBlockScoping(t *testing.T) {
	got := runSource(t, "var a = 1; { var a = 2; print a; } print a;")
	if got != "2\n1\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFunctionCallAndReturn(t *testing.T) {
	got := runSource(t, "fun add(a, b) { return a + b; } print add(2, 3);")
	if got != "5\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFunctionWithoutReturnYieldsNil(t *testing.T) {
	got := runSource(t, "fun noop() {} print noop();")
	if got != "nil\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEarlyReturnStopsLoop(t *testing.T) {
	got := runSource(t, `
fun firstAbove(limit) {
  var i = 0;
  while (true) {
    if (i > limit) return i;
    i = i + 1;
  }
}
print firstAbove(3);
`)
	if got != "4\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRecursion(t *testing.T) {
	got := runSource(t, `
fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(10);
`)
	if got != "55\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestClosureCounter(t *testing.T) {
	got := runSource(t, `
fun makeCounter() {
  var count = 0;
  fun increment() {
    count = count + 1;
    return count;
  }
  return increment;
}
var counter = makeCounter();
print counter();
print counter();
`)
	if got != "1\n2\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestClosureCapturesBindingNotValue(t *testing.T) {
	got := runSource(t, `
var a = "global";
{
  fun show() { print a; }
  show();
  var a = "block";
  show();
}
`)
	if got != "global\nglobal\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFunctionValueDisplay(t *testing.T) {
	got := runSource(t, "fun greet() {} print greet; print clock;")
	if got != "<fn greet>\n<native fn>\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestClassInstanceFields(t *testing.T) {
	got := runSource(t, "class Box {} var b = Box(); b.value = 42; print b.value;")
	if got != "42\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestMethodsBindThis(t *testing.T) {
	got := runSource(t, `
class Greeter {
  init(name) { this.name = name; }
  greet() { return "hello " + this.name; }
}
print Greeter("lox").greet();
`)
	if got != "hello lox\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestDetachedMethodKeepsThis(t *testing.T) {
	got := runSource(t, `
class Counter {
  init() { this.n = 0; }
  bump() { this.n = this.n + 1; return this.n; }
}
var c = Counter();
var bump = c.bump;
print bump();
print c.n;
`)
	if got != "1\n1\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInitializerReturnsInstance(t *testing.T) {
	got := runSource(t, "class A { init() {} } print A();")
	if got != "A instance\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestFieldShadowsMethod(t *testing.T) {
	got := runSource(t, `
class Thing { describe() { return "method"; } }
var x = Thing();
print x.describe();
x.describe = "field";
print x.describe;
`)
	if got != "method\nfield\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInheritanceAndSuper(t *testing.T) {
	got := runSource(t, `
class A { method() { return "A"; } }
class B < A { method() { return "B(" + super.method() + ")"; } }
print B().method();
`)
	if got != "B(A)\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestSuperResolvesStatically(t *testing.T) {
	got := runSource(t, `
class A { cook() { print "A"; } }
class B < A { cook() { super.cook(); print "B"; } }
class C < B {}
C().cook();
`)
	if got != "A\nB\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestInheritedInitializer(t *testing.T) {
	got := runSource(t, "class A { init(v) { this.v = v; } } class B < A {} print B(7).v;")
	if got != "7\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestUnaryTypeError(t *testing.T) {
	re := runtimeErr(t, `print -"no";`)
	if !strings.Contains(re.Message, "operand of - must be a number, got string") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestPlusTypeError(t *testing.T) {
	re := runtimeErr(t, `print 1 + "one";`)
	if !strings.Contains(re.Message, "operands of + must be two numbers or two strings, got number and string") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestComparisonTypeError(t *testing.T) {
	re := runtimeErr(t, `print "a" < "b";`)
	if !strings.Contains(re.Message, "operands of < must be numbers, got string and string") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestUndefinedVariable(t *testing.T) {
	re := runtimeErr(t, "print missing;")
	if !strings.Contains(re.Message, "undefined variable missing") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestAssignToUndeclaredVariable(t *testing.T) {
	re := runtimeErr(t, "missing = 1;")
	if !strings.Contains(re.Message, "undefined variable missing") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestArityMismatch(t *testing.T) {
	re := runtimeErr(t, "fun f(a) {} f(1, 2);")
	if !strings.Contains(re.Message, "f expected 1 arguments but got 2") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestCallNonCallable(t *testing.T) {
	re := runtimeErr(t, `"text"();`)
	if !strings.Contains(re.Message, "cannot call string value text") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestUndefinedProperty(t *testing.T) {
	re := runtimeErr(t, "class A {} print A().missing;")
	if !strings.Contains(re.Message, "undefined property missing on A instance") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestPropertyOnNonInstance(t *testing.T) {
	re := runtimeErr(t, "print 42.answer;")
	if !strings.Contains(re.Message, "only instances have properties, got number") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestSetFieldOnNonInstance(t *testing.T) {
	re := runtimeErr(t, `var s = "x"; s.field = 1;`)
	if !strings.Contains(re.Message, "only instances have fields, got string") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestSuperclassMustBeClass(t *testing.T) {
	re := runtimeErr(t, "var NotClass = 1; class A < NotClass {}")
	if !strings.Contains(re.Message, "superclass must be a class, got number") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestStackOverflow(t *testing.T) {
	program, errs := Compile("fun loop() { return loop(); } loop();")
	if len(errs) > 0 {
		t.Fatalf("compile failed: %v", errs)
	}
	interp := NewInterpreter(Config{Stdout: &bytes.Buffer{}, RecursionLimit: 32})
	err := interp.Run(program)
	if err == nil {
		t.Fatalf("expected stack overflow")
	}
	if !strings.Contains(err.Error(), "stack overflow: call depth exceeds 32") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRuntimeErrorCarriesStackTrace(t *testing.T) {
	re := runtimeErr(t, `
fun inner() { return missing; }
fun outer() { return inner(); }
outer();
`)
	msg := re.Error()
	if !strings.Contains(msg, "at inner") || !strings.Contains(msg, "at outer") {
		t.Fatalf("expected call frames in %q", msg)
	}
	if !strings.Contains(msg, "--> line") {
		t.Fatalf("expected code frame in %q", msg)
	}
}

func TestRuntimeErrorStopsExecution(t *testing.T) {
	program, errs := Compile(`print "before"; print missing; print "after";`)
	if len(errs) > 0 {
		t.Fatalf("compile failed: %v", errs)
	}
	var out bytes.Buffer
	interp := NewInterpreter(Config{Stdout: &out})
	if err := interp.Run(program); err == nil {
		t.Fatalf("expected runtime error")
	}
	if out.String() != "before\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestGlobalsPersistAcrossRuns(t *testing.T) {
	var out bytes.Buffer
	interp := NewInterpreter(Config{Stdout: &out})

	first, errs := Compile("var a = 1;")
	if len(errs) > 0 {
		t.Fatalf("compile failed: %v", errs)
	}
	if err := interp.Run(first); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	second, errs := Compile("print a;")
	if len(errs) > 0 {
		t.Fatalf("compile failed: %v", errs)
	}
	if err := interp.Run(second); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "1\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestRegisterBuiltin(t *testing.T) {
	var out bytes.Buffer
	interp := NewInterpreter(Config{Stdout: &out})
	interp.RegisterBuiltin("double", 1, func(in *Interpreter, args []Value) (Value, error) {
		return NewNumber(args[0].Num() * 2), nil
	})

	program, errs := Compile("print double(21);")
	if len(errs) > 0 {
		t.Fatalf("compile failed: %v", errs)
	}
	if err := interp.Run(program); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestClockUsesConfiguredSource(t *testing.T) {
	var out bytes.Buffer
	interp := NewInterpreter(Config{
		Stdout: &out,
		Clock:  func() time.Time { return time.Unix(42, 0) },
	})

	program, errs := Compile("print clock();")
	if len(errs) > 0 {
		t.Fatalf("compile failed: %v", errs)
	}
	if err := interp.Run(program); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out.String() != "42\n" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestBuiltinArityChecked(t *testing.T) {
	re := runtimeErr(t, "clock(1);")
	if !strings.Contains(re.Message, "clock expected 0 arguments but got 1") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestRunLastReturnsFinalExpressionValue(t *testing.T) {
	program, errs := Compile("var a = 2; a * 3;")
	if len(errs) > 0 {
		t.Fatalf("compile failed: %v", errs)
	}
	interp := NewInterpreter(Config{Stdout: &bytes.Buffer{}})
	val, err := interp.RunLast(program)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if val.Kind() != KindNumber || val.Num() != 6 {
		t.Fatalf("unexpected value %v", val)
	}
}

func TestEvaluateExpression(t *testing.T) {
	expr, errs := ParseExpression("(2 + 3) * 4")
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs)
	}
	interp := NewInterpreter(Config{Stdout: &bytes.Buffer{}})
	val, err := interp.Evaluate(expr)
	if err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if val.Kind() != KindNumber || val.Num() != 20 {
		t.Fatalf("unexpected value %v", val)
	}
}

func TestEvaluateSuperWithoutClassContext(t *testing.T) {
	expr, errs := ParseExpression("super.foo")
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs)
	}
	interp := NewInterpreter(Config{Stdout: &bytes.Buffer{}})
	_, err := interp.Evaluate(expr)
	if err == nil {
		t.Fatalf("expected runtime error")
	}
	re, ok := err.(*RuntimeError)
	if !ok {
		t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
	}
	if !strings.Contains(re.Message, "cannot use super outside of a class") {
		t.Fatalf("unexpected message %q", re.Message)
	}
}

func TestGlobalNamesSorted(t *testing.T) {
	interp := NewInterpreter(Config{Stdout: &bytes.Buffer{}})
	program, errs := Compile("var zebra = 1; var apple = 2;")
	if len(errs) > 0 {
		t.Fatalf("compile failed: %v", errs)
	}
	if err := interp.Run(program); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	names := interp.GlobalNames()
	want := []string{"apple", "clock", "zebra"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}
