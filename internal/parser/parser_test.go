package parser

import (
	"testing"

	"github.com/cognitedata/kuiper/internal/ast"
)

func mustParse(t *testing.T, src string) ast.Expression {
	t.Helper()
	expr, errs := Parse(src)
	if len(errs) != 0 {
		t.Fatalf("Parse(%q) returned errors: %v", src, errs)
	}
	return expr
}

func TestParseLiterals(t *testing.T) {
	cases := map[string]string{
		"1":       "1",
		"3.5":     "3.5",
		`"hi"`:    `"hi"`,
		"true":    "true",
		"false":   "false",
		"null":    "null",
	}
	for src, want := range cases {
		expr := mustParse(t, src)
		if got := expr.String(); got != want {
			t.Errorf("Parse(%q).String() = %q, want %q", src, got, want)
		}
	}
}

func TestOperatorPrecedence(t *testing.T) {
	cases := map[string]string{
		"1 + 2 * 3":        "(1 + (2 * 3))",
		"(1 + 2) * 3":      "((1 + 2) * 3)",
		"1 < 2 && 3 > 4":   "((1 < 2) && (3 > 4))",
		"!a && b":          "((!a) && b)",
		"-1 + 2":           "((-1) + 2)",
		"a || b && c":      "(a || (b && c))",
	}
	for src, want := range cases {
		expr := mustParse(t, src)
		if got := expr.String(); got != want {
			t.Errorf("Parse(%q).String() = %q, want %q", src, got, want)
		}
	}
}

func TestIsExpression(t *testing.T) {
	expr := mustParse(t, "x is not string")
	is, ok := expr.(*ast.IsExpression)
	if !ok {
		t.Fatalf("expected *ast.IsExpression, got %T", expr)
	}
	if !is.Negated || is.TypeName != "string" {
		t.Errorf("got Negated=%v TypeName=%q, want true/string", is.Negated, is.TypeName)
	}
}

func TestSelectorChain(t *testing.T) {
	expr := mustParse(t, "a.b[0].c")
	sel, ok := expr.(*ast.SelectorExpression)
	if !ok {
		t.Fatalf("expected *ast.SelectorExpression, got %T", expr)
	}
	if len(sel.Steps) != 3 {
		t.Fatalf("expected 3 selector steps, got %d", len(sel.Steps))
	}
}

func TestCallExpression(t *testing.T) {
	expr := mustParse(t, `concat("a", "b")`)
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected *ast.CallExpression, got %T", expr)
	}
	if call.Name != "concat" || len(call.Args) != 2 {
		t.Errorf("got Name=%q len(Args)=%d", call.Name, len(call.Args))
	}
}

func TestMethodCallDesugarsToCallWithReceiverFirst(t *testing.T) {
	expr := mustParse(t, `x.map(e => e)`)
	call, ok := expr.(*ast.CallExpression)
	if !ok {
		t.Fatalf("expected *ast.CallExpression, got %T", expr)
	}
	if call.Name != "map" || len(call.Args) != 2 {
		t.Fatalf("got Name=%q len(Args)=%d", call.Name, len(call.Args))
	}
	if _, ok := call.Args[0].(*ast.Identifier); !ok {
		t.Errorf("expected receiver as first arg, got %T", call.Args[0])
	}
	if _, ok := call.Args[1].(*ast.LambdaExpression); !ok {
		t.Errorf("expected lambda as second arg, got %T", call.Args[1])
	}
}

func TestLambdaSingleAndMultiParam(t *testing.T) {
	expr := mustParse(t, `map(xs, x => x)`)
	call := expr.(*ast.CallExpression)
	lam, ok := call.Args[1].(*ast.LambdaExpression)
	if !ok || len(lam.Params) != 1 {
		t.Fatalf("expected single-param lambda, got %#v", call.Args[1])
	}

	expr2 := mustParse(t, `zip(a, b, (x, y) => x)`)
	call2 := expr2.(*ast.CallExpression)
	lam2, ok := call2.Args[2].(*ast.LambdaExpression)
	if !ok || len(lam2.Params) != 2 {
		t.Fatalf("expected two-param lambda, got %#v", call2.Args[2])
	}
}

func TestGroupedExpressionIsNotMisreadAsLambda(t *testing.T) {
	expr := mustParse(t, "(1 + 2)")
	if _, ok := expr.(*ast.LambdaExpression); ok {
		t.Fatal("(1 + 2) must not parse as a lambda")
	}
	if got := expr.String(); got != "(1 + 2)" {
		t.Errorf("got %q", got)
	}
}

func TestLambdaOnlyLegalInArgPosition(t *testing.T) {
	_, errs := Parse("x => x")
	if len(errs) == 0 {
		t.Fatal("expected a parse error: lambda syntax is not legal outside argument position")
	}
}

func TestArrayLiteralWithSpread(t *testing.T) {
	expr := mustParse(t, "[1, ...xs, 2]")
	arr, ok := expr.(*ast.ArrayLiteral)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected 3-element array literal, got %#v", expr)
	}
	if !arr.Elements[1].Spread {
		t.Error("expected second element to be a spread")
	}
}

func TestObjectLiteralWithSpread(t *testing.T) {
	expr := mustParse(t, `{a: 1, ...rest}`)
	obj, ok := expr.(*ast.ObjectLiteral)
	if !ok || len(obj.Entries) != 2 {
		t.Fatalf("expected 2-entry object literal, got %#v", expr)
	}
	if !obj.Entries[1].Spread {
		t.Error("expected second entry to be a spread")
	}
}

func TestTrailingTokenIsAnError(t *testing.T) {
	_, errs := Parse("1 2")
	if len(errs) == 0 {
		t.Fatal("expected a trailing-token parse error")
	}
}
