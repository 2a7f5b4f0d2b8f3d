package kuipernum

import (
	"math"
	"testing"
)

func TestAddNarrowsToTightestKind(t *testing.T) {
	r, err := Int(3).Add(Int(4))
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind() != KindUint && r.Kind() != KindInt {
		t.Errorf("expected integer result, got %v", r.Kind())
	}
	if got, _ := r.AsInt64(); got != 7 {
		t.Errorf("3+4 = %d, want 7", got)
	}
}

func TestAddFloatWidens(t *testing.T) {
	r, err := Int(1).Add(Float(0.5))
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind() != KindFloat {
		t.Errorf("int+float should widen to float, got %v", r.Kind())
	}
	if r.AsFloat() != 1.5 {
		t.Errorf("1+0.5 = %v, want 1.5", r.AsFloat())
	}
}

func TestMulOverflowsToError(t *testing.T) {
	big1 := Uint(math.MaxUint64)
	_, err := big1.Mul(Uint(2))
	if err == nil {
		t.Fatal("expected overflow error")
	}
	if _, ok := err.(*OverflowError); !ok {
		t.Errorf("expected *OverflowError, got %T", err)
	}
}

func TestDivAlwaysFloat(t *testing.T) {
	r, err := Int(4).Div(Int(2))
	if err != nil {
		t.Fatal(err)
	}
	if r.Kind() != KindFloat {
		t.Errorf("division must always yield Float, got %v", r.Kind())
	}
	if r.AsFloat() != 2.0 {
		t.Errorf("4/2 = %v, want 2.0", r.AsFloat())
	}
}

func TestDivByZero(t *testing.T) {
	_, err := Int(1).Div(Int(0))
	if err == nil {
		t.Fatal("expected divide-by-zero error")
	}
	if _, ok := err.(*DivideByZeroError); !ok {
		t.Errorf("expected *DivideByZeroError, got %T", err)
	}
}

func TestModSignFollowsDividend(t *testing.T) {
	r, err := Int(-7).Mod(Int(3))
	if err != nil {
		t.Fatal(err)
	}
	got, _ := r.AsInt64()
	if got != -1 {
		t.Errorf("-7 %% 3 = %d, want -1 (Go truncated-division semantics)", got)
	}
}

func TestNegOverflowWidensOrErrors(t *testing.T) {
	r, err := Int(math.MinInt64).Neg()
	if err != nil {
		t.Fatalf("negating MinInt64 should narrow to Uint, got error: %v", err)
	}
	if !r.IsInteger() {
		t.Errorf("expected an integer result, got %v", r.Kind())
	}
}

func TestCmpNaNNeverOrdered(t *testing.T) {
	nan := Float(math.NaN())
	if nan.Cmp(nan) != 2 {
		t.Error("NaN compared to itself should report unordered (2)")
	}
	if nan.Equal(nan) {
		t.Error("NaN should never equal itself")
	}
}

func TestCmpAcrossKinds(t *testing.T) {
	if Int(3).Cmp(Float(3.5)) >= 0 {
		t.Error("3 should compare less than 3.5")
	}
	if Uint(5).Cmp(Int(5)) != 0 {
		t.Error("5 (uint) should compare equal to 5 (int)")
	}
}

func TestStringFormatting(t *testing.T) {
	if got := Int(42).String(); got != "42" {
		t.Errorf("Int(42).String() = %q, want 42", got)
	}
	if got := Float(1.0).String(); got != "1.0" {
		t.Errorf("Float(1.0).String() = %q, want 1.0", got)
	}
}
