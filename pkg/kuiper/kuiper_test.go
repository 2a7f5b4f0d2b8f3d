package kuiper

import (
	"testing"

	"github.com/cognitedata/kuiper/internal/clock"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/types"
)

func TestCompileEvaluateRoundTrip(t *testing.T) {
	expr, errs := Compile("x + 1", []string{"x"})
	if len(errs) != 0 {
		t.Fatalf("Compile: %v", errs)
	}
	got, err := expr.Evaluate([]jsonvalue.Value{jsonvalue.Int(41)})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	b, _ := got.MarshalJSON()
	if string(b) != "42" {
		t.Errorf("got %s, want 42", b)
	}
}

func TestCompileErrorsSurfaceWithSpans(t *testing.T) {
	_, errs := Compile("1 +", nil)
	if len(errs) == 0 {
		t.Fatal("expected a parse error for incomplete input")
	}
}

func TestEvaluateWithFrozenClock(t *testing.T) {
	expr, errs := Compile("now()", nil)
	if len(errs) != 0 {
		t.Fatalf("Compile: %v", errs)
	}
	got, err := expr.EvaluateWithClock(clock.Frozen(123), nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	b, _ := got.MarshalJSON()
	if string(b) != "123" {
		t.Errorf("got %s, want 123", b)
	}
}

func TestInfer(t *testing.T) {
	expr, errs := Compile("x + 1", []string{"x"})
	if len(errs) != 0 {
		t.Fatalf("Compile: %v", errs)
	}
	got, err := expr.Infer([]types.Type{types.Integer()})
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if !got.IsInteger() {
		t.Errorf("expected Integer, got %v", got)
	}
}

func TestFromJSONAndToJSON(t *testing.T) {
	v, err := FromJSON([]byte(`{"a":1,"b":[1,2,3]}`))
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	out, err := ToJSON(v)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected non-empty JSON output")
	}
}
