package compiler

import (
	"testing"

	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/kerrors"
	"github.com/cognitedata/kuiper/internal/parser"
)

func mustLower(t *testing.T, src string, inputNames ...string) exprtree.Node {
	t.Helper()
	expr, perrs := parser.Parse(src)
	if len(perrs) != 0 {
		t.Fatalf("parse(%q): %v", src, perrs)
	}
	node, lerrs := Lower(expr, src, inputNames)
	if len(lerrs) != 0 {
		t.Fatalf("lower(%q): %v", src, lerrs)
	}
	return node
}

func lowerErrs(t *testing.T, src string, inputNames ...string) []*kerrors.Error {
	t.Helper()
	expr, perrs := parser.Parse(src)
	if len(perrs) != 0 {
		t.Fatalf("parse(%q): %v", src, perrs)
	}
	_, lerrs := Lower(expr, src, inputNames)
	return lerrs
}

func TestLowerInputRefResolvesSlot(t *testing.T) {
	node := mustLower(t, "x", "x", "y")
	ref, ok := node.(*exprtree.InputRef)
	if !ok || ref.Index != 0 {
		t.Fatalf("expected InputRef{Index:0}, got %#v", node)
	}
}

func TestLowerUnknownVariableErrors(t *testing.T) {
	errs := lowerErrs(t, "z", "x", "y")
	if len(errs) != 1 || errs[0].Kind != kerrors.KindUnknownVariable {
		t.Fatalf("expected one KindUnknownVariable error, got %v", errs)
	}
}

func TestLowerUnrecognizedFunctionErrors(t *testing.T) {
	errs := lowerErrs(t, "nonexistent_fn(1)")
	if len(errs) != 1 || errs[0].Kind != kerrors.KindUnrecognizedFunction {
		t.Fatalf("expected one KindUnrecognizedFunction error, got %v", errs)
	}
}

func TestLowerArityMismatchErrors(t *testing.T) {
	errs := lowerErrs(t, "pow(1)")
	if len(errs) != 1 || errs[0].Kind != kerrors.KindNFunctionArgs {
		t.Fatalf("expected one KindNFunctionArgs error, got %v", errs)
	}
}

func TestLowerLambdaOutsideLegalPositionErrors(t *testing.T) {
	errs := lowerErrs(t, "pow(x => x, 2)")
	if len(errs) != 1 || errs[0].Kind != kerrors.KindUnexpectedLambda {
		t.Fatalf("expected one KindUnexpectedLambda error, got %v", errs)
	}
}

func TestLowerLambdaInLegalPositionProducesLambdaNode(t *testing.T) {
	node := mustLower(t, "map(xs, x => x)", "xs")
	fn, ok := node.(*exprtree.Function)
	if !ok || fn.Tag != "map" {
		t.Fatalf("expected Function{Tag: map}, got %#v", node)
	}
	if _, ok := fn.Args[1].(*exprtree.Lambda); !ok {
		t.Fatalf("expected lambda arg, got %T", fn.Args[1])
	}
}

func TestLowerFunctionResolvesTag(t *testing.T) {
	node := mustLower(t, "floor(1.5)")
	fn, ok := node.(*exprtree.Function)
	if !ok || fn.Tag != "floor" {
		t.Fatalf("expected Function{Tag: floor}, got %#v", node)
	}
}

func TestLowerIfProducesIfNode(t *testing.T) {
	node := mustLower(t, "if(true, 1, 2)")
	ifn, ok := node.(*exprtree.If)
	if !ok {
		t.Fatalf("expected *exprtree.If, got %#v", node)
	}
	if len(ifn.Branches) != 1 || ifn.Else == nil {
		t.Fatalf("expected one branch and an else, got %#v", ifn)
	}
}

func TestLowerIfWrongArityErrors(t *testing.T) {
	errs := lowerErrs(t, "if(true)")
	if len(errs) != 1 || errs[0].Kind != kerrors.KindNFunctionArgs {
		t.Fatalf("expected one KindNFunctionArgs error, got %v", errs)
	}
}

func TestLowerCaseProducesChainedIfNode(t *testing.T) {
	node := mustLower(t, `case(x, 1, "a", 2, "b", "default")`, "x")
	ifn, ok := node.(*exprtree.If)
	if !ok {
		t.Fatalf("expected *exprtree.If, got %#v", node)
	}
	if len(ifn.Branches) != 2 || ifn.Else == nil {
		t.Fatalf("expected two branches and a default else, got %#v", ifn)
	}
}

func TestLowerRegexArgMustBeStringConstant(t *testing.T) {
	errs := lowerErrs(t, "regex_is_match(x, y)", "x", "y")
	if len(errs) != 1 {
		t.Fatalf("expected one error for a non-constant regex argument, got %v", errs)
	}
}

func TestLowerRegexArgCompilesConstant(t *testing.T) {
	node := mustLower(t, `regex_is_match(x, "^[a-z]+$")`, "x")
	fn := node.(*exprtree.Function)
	if fn.Regex == nil {
		t.Fatal("expected precompiled regex on the Function node")
	}
}

func TestLowerVariableConflictInNestedLambdaScope(t *testing.T) {
	errs := lowerErrs(t, "map(xs, x => map(xs, x => x))", "xs")
	for _, e := range errs {
		if e.Kind == kerrors.KindVariableConflict {
			t.Fatal("shadowing a variable in a nested lambda scope should not be a conflict")
		}
	}
}

func TestLowerSelectorWithLiteralAndComputedSteps(t *testing.T) {
	node := mustLower(t, "x.a[y]", "x", "y")
	sel, ok := node.(*exprtree.Selector)
	if !ok || len(sel.Path) != 2 {
		t.Fatalf("expected Selector with 2 path steps, got %#v", node)
	}
	if sel.Path[0].Kind != exprtree.StepName {
		t.Errorf("expected first step to be a name step, got %v", sel.Path[0].Kind)
	}
	if sel.Path[1].Kind != exprtree.StepComputed {
		t.Errorf("expected second step to be computed, got %v", sel.Path[1].Kind)
	}
}

func TestLowerSelectorWithConstantIntegerIndex(t *testing.T) {
	node := mustLower(t, "x[0]", "x")
	sel := node.(*exprtree.Selector)
	if sel.Path[0].Kind != exprtree.StepIndex || sel.Path[0].Index != 0 {
		t.Errorf("expected a constant index step, got %#v", sel.Path[0])
	}
}
