package infer

import (
	"testing"

	"github.com/cognitedata/kuiper/internal/compiler"
	"github.com/cognitedata/kuiper/internal/parser"
	"github.com/cognitedata/kuiper/internal/types"
)

func inferOf(t *testing.T, src string, inputNames []string, inputs []types.Type) types.Type {
	t.Helper()
	expr, perrs := parser.Parse(src)
	if len(perrs) != 0 {
		t.Fatalf("parse(%q): %v", src, perrs)
	}
	node, lerrs := compiler.Lower(expr, src, inputNames)
	if len(lerrs) != 0 {
		t.Fatalf("lower(%q): %v", src, lerrs)
	}
	inf := New()
	env := NewEnv(inputs)
	got, err := inf.Infer(node, env)
	if err != nil {
		t.Fatalf("infer(%q): %v", src, err)
	}
	return got
}

func assertType(t *testing.T, got types.Type, want string) {
	t.Helper()
	if got.String() != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestInferConstantFolding(t *testing.T) {
	assertType(t, inferOf(t, "1 + 2", nil, nil), "Constant(3)")
}

func TestInferArithmeticOnVariables(t *testing.T) {
	assertType(t, inferOf(t, "x + y", []string{"x", "y"}, []types.Type{types.Integer(), types.FloatT()}), types.FloatT().String())
}

func TestInferUnionDistributesOverBinary(t *testing.T) {
	u := types.Integer().UnionWith(types.FloatT())
	got := inferOf(t, "x + 1", []string{"x"}, []types.Type{u})
	// Integer+1 stays (non-constant) Integer-ish, Float+1 stays Float; union result must contain both.
	if got.IsNever() {
		t.Fatal("expected a non-Never union result")
	}
}

func TestInferNeverPropagates(t *testing.T) {
	got := inferOf(t, "x + 1", []string{"x"}, []types.Type{types.Never()})
	if !got.IsNever() {
		t.Errorf("expected Never to propagate, got %v", got)
	}
}

func TestInferIfUnionsBranches(t *testing.T) {
	got := inferOf(t, `if(b, 1, "x")`, []string{"b"}, []types.Type{types.Boolean()})
	if len(got.Members()) != 2 {
		t.Errorf("expected a 2-member union, got %v", got)
	}
}

func TestInferIsReturnsBoolean(t *testing.T) {
	assertType(t, inferOf(t, "x is int", []string{"x"}, []types.Type{types.Number()}), types.Boolean().String())
}

func TestInferMapOverArray(t *testing.T) {
	arr := types.ArrayOf(types.Integer())
	got := inferOf(t, "map(xs, x => x)", []string{"xs"}, []types.Type{arr})
	a, ok := got.TryAsArray()
	if !ok {
		t.Fatalf("expected an array type, got %v", got)
	}
	if a.EndDynamic == nil || !a.EndDynamic.IsInteger() {
		t.Errorf("expected dynamic-tail Integer, got %#v", a)
	}
}

func TestInferFilterDropsSizeInfo(t *testing.T) {
	arr := types.Array{Elements: []types.Type{types.Integer(), types.StringT()}}
	got := inferOf(t, "filter(xs, x => true)", []string{"xs"}, []types.Type{types.ArrayT(arr)})
	a, ok := got.TryAsArray()
	if !ok || len(a.Elements) != 0 || a.EndDynamic == nil {
		t.Fatalf("expected a pure-dynamic-tail array after filter, got %#v", got)
	}
}

func TestInferReduceUnionsInitWithLambdaResult(t *testing.T) {
	arr := types.ArrayOf(types.Integer())
	got := inferOf(t, `reduce(xs, (acc, x) => acc, "")`, []string{"xs"}, []types.Type{arr})
	if len(got.Members()) < 1 {
		t.Fatal("expected a non-empty union of init and lambda result types")
	}
}

func TestInferNowReturnsIntegerWithoutEvaluating(t *testing.T) {
	assertType(t, inferOf(t, "now()", nil, nil), types.Integer().String())
}

func TestInferExceptCollapsesConservatively(t *testing.T) {
	obj := types.NewObject().WithField("a", types.Integer()).WithField("b", types.StringT())
	got := inferOf(t, `except(x, ["a"])`, []string{"x"}, []types.Type{types.ObjectT(obj)})
	o, ok := got.TryAsObject()
	if !ok {
		t.Fatalf("expected an object type, got %v", got)
	}
	if o.Generic == nil {
		t.Error("expected except's result to carry a generic field bucket (conservative collapse)")
	}
}

func TestInferSelectorUnknownFieldIsNullable(t *testing.T) {
	obj := types.NewObject().WithField("a", types.Integer())
	got := inferOf(t, "x.missing", []string{"x"}, []types.Type{types.ObjectT(obj)})
	if !got.IsNull() {
		t.Errorf("expected selecting an unknown field with no generic bucket to infer Null, got %v", got)
	}
}
