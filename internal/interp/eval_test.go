package interp

import (
	"testing"

	"github.com/cognitedata/kuiper/internal/clock"
	"github.com/cognitedata/kuiper/internal/compiler"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/parser"
)

// run parses, lowers, and evaluates src against the given named inputs,
// failing the test on any parse/lower/eval error.
func run(t *testing.T, src string, inputNames []string, inputs []jsonvalue.Value) jsonvalue.Value {
	t.Helper()
	expr, perrs := parser.Parse(src)
	if len(perrs) != 0 {
		t.Fatalf("parse(%q): %v", src, perrs)
	}
	node, lerrs := compiler.Lower(expr, src, inputNames)
	if len(lerrs) != 0 {
		t.Fatalf("lower(%q): %v", src, lerrs)
	}
	ev := New(clock.Frozen(1700000000000))
	env := NewEnv(inputs)
	v, err := ev.Eval(node, env)
	if err != nil {
		t.Fatalf("eval(%q): %v", src, err)
	}
	return v
}

func mustJSON(t *testing.T, v jsonvalue.Value, want string) {
	t.Helper()
	got, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestArithmeticAndComparison(t *testing.T) {
	mustJSON(t, run(t, "1 + 2 * 3", nil, nil), "7")
	mustJSON(t, run(t, "10 / 4", nil, nil), "2.5")
	mustJSON(t, run(t, "-7 % 3", nil, nil), "-1")
	mustJSON(t, run(t, "1 < 2 && 3 > 2", nil, nil), "true")
}

func TestShortCircuitAndOr(t *testing.T) {
	// right side references an unbound input; short-circuiting must avoid evaluating it.
	mustJSON(t, run(t, "false && x", []string{"x"}, nil), "false")
	mustJSON(t, run(t, "true || x", []string{"x"}, nil), "true")
}

func TestIfAndCase(t *testing.T) {
	mustJSON(t, run(t, "if(1 > 0, \"pos\", \"neg\")", nil, nil), `"pos"`)
	mustJSON(t, run(t, `case(2, 1, "a", 2, "b", "z")`, nil, nil), `"b"`)
	mustJSON(t, run(t, `case(9, 1, "a", 2, "b", "z")`, nil, nil), `"z"`)
}

func TestIsExpression(t *testing.T) {
	mustJSON(t, run(t, "1 is int", nil, nil), "true")
	mustJSON(t, run(t, "1.5 is int", nil, nil), "false")
	mustJSON(t, run(t, `"x" is not number`, nil, nil), "true")
}

func TestSelectorAndArrayObjectLiterals(t *testing.T) {
	mustJSON(t, run(t, "x.a[1]", []string{"x"}, []jsonvalue.Value{
		func() jsonvalue.Value {
			b := jsonvalue.NewObjectBuilder()
			b.Set("a", jsonvalue.Array(jsonvalue.Int(10), jsonvalue.Int(20)))
			return b.Build()
		}(),
	}), "20")
	mustJSON(t, run(t, "[1, ...[2, 3], 4]", nil, nil), "[1,2,3,4]")
	mustJSON(t, run(t, `{"a": 1, ...{"b": 2}}`, nil, nil), `{"a":1,"b":2}`)
}

func TestMapOverArray(t *testing.T) {
	mustJSON(t, run(t, "map(xs, x => x * 2)", []string{"xs"}, []jsonvalue.Value{
		jsonvalue.Array(jsonvalue.Int(1), jsonvalue.Int(2), jsonvalue.Int(3)),
	}), "[2,4,6]")
}

func TestFilterAndReduce(t *testing.T) {
	mustJSON(t, run(t, "filter(xs, x => x > 1)", []string{"xs"}, []jsonvalue.Value{
		jsonvalue.Array(jsonvalue.Int(1), jsonvalue.Int(2), jsonvalue.Int(3)),
	}), "[2,3]")
	mustJSON(t, run(t, "reduce(xs, (acc, x) => acc + x, 0)", []string{"xs"}, []jsonvalue.Value{
		jsonvalue.Array(jsonvalue.Int(1), jsonvalue.Int(2), jsonvalue.Int(3)),
	}), "6")
}

func TestAllAny(t *testing.T) {
	mustJSON(t, run(t, "all(xs)", []string{"xs"}, []jsonvalue.Value{
		jsonvalue.Array(jsonvalue.Bool(true), jsonvalue.Bool(true)),
	}), "true")
	mustJSON(t, run(t, "any(xs)", []string{"xs"}, []jsonvalue.Value{
		jsonvalue.Array(jsonvalue.Bool(false), jsonvalue.Bool(true)),
	}), "true")
	mustJSON(t, run(t, "all(xs)", []string{"xs"}, []jsonvalue.Value{
		jsonvalue.Array(jsonvalue.Bool(true), jsonvalue.Bool(false)),
	}), "false")
}

func TestTailBuiltin(t *testing.T) {
	mustJSON(t, run(t, "tail(xs)", []string{"xs"}, []jsonvalue.Value{
		jsonvalue.Array(jsonvalue.Int(1), jsonvalue.Int(2), jsonvalue.Int(3)),
	}), "3")
	mustJSON(t, run(t, "tail(xs, 2)", []string{"xs"}, []jsonvalue.Value{
		jsonvalue.Array(jsonvalue.Int(1), jsonvalue.Int(2), jsonvalue.Int(3)),
	}), "[2,3]")
	mustJSON(t, run(t, "tail(xs, 0)", []string{"xs"}, []jsonvalue.Value{
		jsonvalue.Array(jsonvalue.Int(1), jsonvalue.Int(2)),
	}), "[]")
}

func TestJoinArraysAndObjects(t *testing.T) {
	mustJSON(t, run(t, "join([1, 2], [3])", nil, nil), "[1,2,3]")
	mustJSON(t, run(t, `join({"a": 1}, {"b": 2})`, nil, nil), `{"a":1,"b":2}`)
}

func TestExceptAndSelect(t *testing.T) {
	obj := func() jsonvalue.Value {
		b := jsonvalue.NewObjectBuilder()
		b.Set("a", jsonvalue.Int(1))
		b.Set("b", jsonvalue.Int(2))
		return b.Build()
	}()
	mustJSON(t, run(t, `except(x, ["a"])`, []string{"x"}, []jsonvalue.Value{obj}), `{"b":2}`)
	mustJSON(t, run(t, `select(x, ["a"])`, []string{"x"}, []jsonvalue.Value{obj}), `{"a":1}`)
}

func TestStringBuiltins(t *testing.T) {
	mustJSON(t, run(t, `concat("a", "b", "c")`, nil, nil), `"abc"`)
	mustJSON(t, run(t, `upper("hi")`, nil, nil), `"HI"`)
	mustJSON(t, run(t, `starts_with("hello", "he")`, nil, nil), "true")
}

func TestNowReturnsFrozenClock(t *testing.T) {
	mustJSON(t, run(t, "now()", nil, nil), "1700000000000")
}

func TestSliceNegativeAndTwoBoundIndices(t *testing.T) {
	xs := []jsonvalue.Value{jsonvalue.Array(
		jsonvalue.Int(1), jsonvalue.Int(2), jsonvalue.Int(3), jsonvalue.Int(4),
	)}
	mustJSON(t, run(t, "slice(xs, -3)", []string{"xs"}, xs), "[2,3,4]")
	mustJSON(t, run(t, "slice(xs, 1, 3)", []string{"xs"}, xs), "[2,3]")
	mustJSON(t, run(t, "slice(xs, -3, -1)", []string{"xs"}, xs), "[2,3]")
	mustJSON(t, run(t, "slice(xs, -10)", []string{"xs"}, xs), "[1,2,3,4]")
}

func TestSubstringNegativeAndTwoBoundIndices(t *testing.T) {
	mustJSON(t, run(t, `substring("hello", -3)`, nil, nil), `"llo"`)
	mustJSON(t, run(t, `substring("hello", 1, 3)`, nil, nil), `"el"`)
	mustJSON(t, run(t, `substring("hello", -4, -1)`, nil, nil), `"ell"`)
}

func TestSplitEmptySeparator(t *testing.T) {
	mustJSON(t, run(t, `split("test", "")`, nil, nil), `["","t","e","s","t",""]`)
	mustJSON(t, run(t, `split("a,b,c", ",")`, nil, nil), `["a","b","c"]`)
}
