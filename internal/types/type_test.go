package types

import (
	"testing"

	"github.com/cognitedata/kuiper/internal/jsonvalue"
)

func TestBasicKindStrings(t *testing.T) {
	tests := []struct {
		t    Type
		want string
	}{
		{Integer(), "Integer"},
		{FloatT(), "Float"},
		{StringT(), "String"},
		{Boolean(), "Boolean"},
		{Any(), "Any"},
		{Never(), "Never"},
		{Null(), "Constant(null)"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestConstantFromConst(t *testing.T) {
	v := jsonvalue.Int(42)
	c := Constant(v)
	if !c.IsInteger() {
		t.Error("Constant(42) should be an integer")
	}
	got, ok := c.ConstVal()
	if !ok || !got.Equal(v) {
		t.Errorf("ConstVal() = %v, %v; want %v, true", got, ok, v)
	}
}

func TestFromConstArrayAndObject(t *testing.T) {
	arr := jsonvalue.Array(jsonvalue.Int(1), jsonvalue.Str("x"))
	at := FromConst(arr)
	a, ok := at.TryAsArray()
	if !ok {
		t.Fatal("expected array type")
	}
	if len(a.Elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(a.Elements))
	}
	if !a.Elements[0].IsInteger() {
		t.Error("first element should be integer")
	}
	if a.Elements[1].Kind() != KindConstant {
		t.Error("second element should be a constant string")
	}

	b := jsonvalue.NewObjectBuilder()
	b.Set("a", jsonvalue.Int(1))
	obj := b.Build()
	ot := FromConst(obj)
	o, ok := ot.TryAsObject()
	if !ok {
		t.Fatal("expected object type")
	}
	if !o.Fields["a"].IsInteger() {
		t.Error("field a should be integer")
	}
}

func TestUnionWithFlattensAndDedups(t *testing.T) {
	u := Integer().UnionWith(StringT()).UnionWith(Integer())
	members := u.Members()
	if len(members) != 2 {
		t.Fatalf("expected 2 members after dedup, got %d: %v", len(members), u)
	}
}

func TestUnionWithAnyAbsorbs(t *testing.T) {
	u := Integer().UnionWith(Any())
	if !u.IsAny() {
		t.Errorf("Union with Any should collapse to Any, got %v", u)
	}
}

func TestUnionWithNeverIsIdentity(t *testing.T) {
	if got := Integer().UnionWith(Never()); got.String() != Integer().String() {
		t.Errorf("Integer ∪ Never = %v, want Integer", got)
	}
	if got := Never().UnionWith(Integer()); got.String() != Integer().String() {
		t.Errorf("Never ∪ Integer = %v, want Integer", got)
	}
}

func TestTruthyness(t *testing.T) {
	if Constant(jsonvalue.Bool(true)).Truthyness() != TruthyAlways {
		t.Error("Constant(true) should be TruthyAlways")
	}
	if Constant(jsonvalue.Null()).Truthyness() != TruthyNever {
		t.Error("null should be TruthyNever")
	}
	if Boolean().Truthyness() != TruthyMaybe {
		t.Error("Boolean should be TruthyMaybe")
	}
	u := Union(Constant(jsonvalue.Bool(true)), Constant(jsonvalue.Int(1)))
	if u.Truthyness() != TruthyAlways {
		t.Errorf("union of two always-truthy constants should be TruthyAlways, got %v", u.Truthyness())
	}
}

func TestIsAssignableTo(t *testing.T) {
	if !Integer().IsAssignableTo(Number()) {
		t.Error("Integer should be assignable to Number")
	}
	if FloatT().IsAssignableTo(Integer()) {
		t.Error("Float should not be assignable to Integer")
	}
	if !Never().IsAssignableTo(StringT()) {
		t.Error("Never should be assignable to anything")
	}
	if !Integer().IsAssignableTo(Any()) {
		t.Error("anything should be assignable to Any")
	}
}

func TestArrayIndexIntoAndUnionWith(t *testing.T) {
	a := Array{Elements: []Type{Integer(), StringT()}}
	if el, ok := a.IndexInto(0); !ok || !el.IsInteger() {
		t.Errorf("IndexInto(0) = %v, %v", el, ok)
	}
	if _, ok := a.IndexInto(5); ok {
		t.Error("IndexInto out of range with no dynamic tail should be false")
	}
	dyn := Boolean()
	a2 := Array{Elements: []Type{Integer()}, EndDynamic: &dyn}
	merged := a.UnionWith(a2)
	if merged.Elements[0].String() != Integer().String() {
		t.Errorf("expected merged[0] Integer, got %v", merged.Elements[0])
	}
	if merged.EndDynamic == nil {
		t.Error("expected a dynamic tail after merging mismatched-length arrays")
	}
}

func TestObjectUnionWithAbsentFieldBecomesNullable(t *testing.T) {
	o1 := NewObject().WithField("a", Integer())
	o2 := NewObject().WithField("b", StringT())
	merged := o1.UnionWith(o2)
	at, ok := merged.fieldType("a")
	if !ok {
		t.Fatal("expected field a to survive the union")
	}
	if at.String() != Integer().UnionWith(Null()).String() {
		t.Errorf("field a should become Integer ∪ Null, got %v", at)
	}
}

func TestObjectElementUnion(t *testing.T) {
	o := NewObject().WithField("a", Integer()).WithField("b", StringT())
	eu := o.ElementUnion()
	if len(eu.Members()) != 2 {
		t.Errorf("expected 2-member union, got %v", eu)
	}
}
