package lox

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatExpression renders an expression tree as a fully parenthesized
// prefix-notation dump: operators as `(<op> <operand>...)`, grouped
// sub-expressions as `(group <expr>)`.
func FormatExpression(expr Expression) string {
	switch e := expr.(type) {
	case *LiteralExpr:
		switch v := e.Value.(type) {
		case nil:
			return "nil"
		case bool:
			return strconv.FormatBool(v)
		case float64:
			return formatNumberLiteral(v)
		case string:
			return v
		default:
			return fmt.Sprintf("%v", v)
		}
	case *GroupingExpr:
		return parenthesize("group", e.Expr)
	case *UnaryExpr:
		return parenthesize(e.Operator.Lexeme, e.Right)
	case *BinaryExpr:
		return parenthesize(e.Operator.Lexeme, e.Left, e.Right)
	case *LogicalExpr:
		return parenthesize(e.Operator.Lexeme, e.Left, e.Right)
	case *VariableExpr:
		return e.Name
	case *AssignExpr:
		return "(= " + e.Name + " " + FormatExpression(e.Value) + ")"
	case *CallExpr:
		return parenthesize("call", append([]Expression{e.Callee}, e.Args...)...)
	case *GetExpr:
		return "(. " + FormatExpression(e.Object) + " " + e.Property + ")"
	case *SetExpr:
		return "(= (. " + FormatExpression(e.Object) + " " + e.Property + ") " + FormatExpression(e.Value) + ")"
	case *ThisExpr:
		return "this"
	case *SuperExpr:
		return "(super " + e.Method + ")"
	default:
		return fmt.Sprintf("<unknown %T>", expr)
	}
}

func parenthesize(name string, exprs ...Expression) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(name)
	for _, e := range exprs {
		b.WriteByte(' ')
		b.WriteString(FormatExpression(e))
	}
	b.WriteByte(')')
	return b.String()
}

// formatNumberLiteral renders a number the way the token dump and the AST
// dump expect: integral values keep an explicit `.0`.
func formatNumberLiteral(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// formatNumber renders a runtime number: integral values drop the
// fractional zero (5 not 5.0), everything else prints its shortest
// decimal or exponential form.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
