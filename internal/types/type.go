// Package types implements Kuiper's compile-time Type lattice: a
// constant/primitive/structural approximation of the set of JSON values an
// expression can produce, used by the type inferencer (internal/infer).
package types

import (
	"fmt"
	"strings"

	"github.com/cognitedata/kuiper/internal/jsonvalue"
)

// Kind tags which branch of the lattice a Type occupies.
type Kind uint8

const (
	KindConstant Kind = iota
	KindInteger
	KindFloat
	KindString
	KindBoolean
	KindArray
	KindObject
	KindUnion
	KindAny
)

// Type is a compile-time approximation of a set of JSON values.
type Type struct {
	kind     Kind
	constVal jsonvalue.Value
	array    *Array
	object   *Object
	union    []Type
}

func Any() Type { return Type{kind: KindAny} }

func Integer() Type { return Type{kind: KindInteger} }

func FloatT() Type { return Type{kind: KindFloat} }

func StringT() Type { return Type{kind: KindString} }

func Boolean() Type { return Type{kind: KindBoolean} }

// Never is the empty union: the bottom of the lattice, matching no value.
func Never() Type { return Type{kind: KindUnion, union: nil} }

func Null() Type { return Constant(jsonvalue.Null()) }

func Constant(v jsonvalue.Value) Type { return Type{kind: KindConstant, constVal: v} }

func ArrayT(a Array) Type { return Type{kind: KindArray, array: &a} }

func AnyArray() Type { return ArrayT(Array{EndDynamic: ptr(Any())}) }

func ArrayOf(elem Type) Type { return ArrayT(Array{EndDynamic: ptr(elem)}) }

func ObjectT(o Object) Type { return Type{kind: KindObject, object: &o} }

func AnyObject() Type { return ObjectT(Object{Generic: ptr(Any())}) }

func ObjectOf(val Type) Type { return ObjectT(Object{Generic: ptr(val)}) }

func Union(members ...Type) Type {
	t := Type{kind: KindUnion, union: members}
	return t.flatten()
}

func ptr(t Type) *Type { return &t }

func (t Type) Kind() Kind { return t.kind }

func (t Type) IsNever() bool { return t.kind == KindUnion && len(t.union) == 0 }

func (t Type) IsAny() bool { return t.kind == KindAny }

func (t Type) IsNull() bool {
	return t.kind == KindConstant && t.constVal.Kind() == jsonvalue.KindNull
}

func (t Type) IsInteger() bool {
	if t.kind == KindInteger {
		return true
	}
	return t.kind == KindConstant && t.constVal.Kind() == jsonvalue.KindNumber && t.constVal.Number().IsInteger()
}

func (t Type) IsFloat() bool {
	if t.kind == KindFloat {
		return true
	}
	return t.kind == KindConstant && t.constVal.Kind() == jsonvalue.KindNumber && !t.constVal.Number().IsInteger()
}

// IsNumber reports whether t is assignable to "any number".
func (t Type) IsNumber() bool { return t.IsInteger() || t.IsFloat() }

// Number returns the Integer∪Float type (spec.md's "number" requirement).
func Number() Type { return Union(Integer(), FloatT()) }

// FromConst builds the most specific Type for a concrete runtime value.
func FromConst(v jsonvalue.Value) Type {
	switch v.Kind() {
	case jsonvalue.KindArray:
		elems := v.Array()
		ts := make([]Type, len(elems))
		for i, e := range elems {
			ts[i] = FromConst(e)
		}
		return ArrayT(arrayFromConst(ts))
	case jsonvalue.KindObject:
		o := NewObject()
		for _, k := range v.ObjectKeys() {
			fv, _ := v.ObjectGet(k)
			o = o.WithField(k, FromConst(fv))
		}
		return ObjectT(o)
	default:
		return Constant(v)
	}
}

// Truthyness reports how a Type behaves under truthiness coercion.
type Truthyness uint8

const (
	TruthyAlways Truthyness = iota
	TruthyMaybe
	TruthyNever
)

func (t Type) Truthyness() Truthyness {
	switch t.kind {
	case KindConstant:
		if t.constVal.Truthy() {
			return TruthyAlways
		}
		return TruthyNever
	case KindBoolean:
		return TruthyMaybe
	case KindUnion:
		if t.IsNever() {
			return TruthyNever
		}
		all := map[Truthyness]bool{}
		for _, m := range t.union {
			all[m.Truthyness()] = true
		}
		if len(all) == 1 {
			for k := range all {
				return k
			}
		}
		return TruthyMaybe
	case KindAny:
		return TruthyMaybe
	default:
		return TruthyAlways
	}
}

// TryAsArray coerces t into an Array shape if any branch could be an array.
func (t Type) TryAsArray() (Array, bool) {
	switch t.kind {
	case KindArray:
		return *t.array, true
	case KindAny:
		return Array{EndDynamic: ptr(Any())}, true
	case KindConstant:
		if t.constVal.Kind() == jsonvalue.KindArray {
			return FromConst(t.constVal).array.clone(), true
		}
		return Array{}, false
	case KindUnion:
		result := Array{}
		found := false
		for _, m := range t.union {
			if a, ok := m.TryAsArray(); ok {
				if !found {
					result = a
				} else {
					result = result.UnionWith(a)
				}
				found = true
			}
		}
		return result, found
	default:
		return Array{}, false
	}
}

func (a *Array) clone() Array {
	if a == nil {
		return Array{}
	}
	return *a
}

// TryAsObject coerces t into an Object shape if any branch could be an object.
func (t Type) TryAsObject() (Object, bool) {
	switch t.kind {
	case KindObject:
		return *t.object, true
	case KindAny:
		return Object{Generic: ptr(Any())}, true
	case KindConstant:
		if t.constVal.Kind() == jsonvalue.KindObject {
			return FromConst(t.constVal).object.cloneObj(), true
		}
		return Object{}, false
	case KindUnion:
		result := Object{}
		found := false
		for _, m := range t.union {
			if o, ok := m.TryAsObject(); ok {
				if !found {
					result = o
				} else {
					result = result.UnionWith(o)
				}
				found = true
			}
		}
		return result, found
	default:
		return Object{}, false
	}
}

func (o *Object) cloneObj() Object {
	if o == nil {
		return NewObject()
	}
	return *o
}

// ConstEquals reports whether t is exactly Constant(v) for a value equal to v.
func (t Type) ConstEquals(v jsonvalue.Value) bool {
	return t.kind == KindConstant && t.constVal.Equal(v)
}

// ExtractSingleUnion returns the sole member if t is a union of exactly one
// type (used after distributing operators over unions, to avoid
// over-wrapping a result that collapsed to one branch).
func (t Type) ExtractSingleUnion() Type {
	if t.kind == KindUnion && len(t.union) == 1 {
		return t.union[0]
	}
	return t
}

// Members returns the branches of a union type, or []Type{t} if t is not a
// union — lets callers distribute an operation over every branch uniformly
// without special-casing the non-union case.
func (t Type) Members() []Type {
	if t.kind != KindUnion {
		return []Type{t}
	}
	return t.union
}

// ConstVal returns the folded constant value for a Constant-kind type.
func (t Type) ConstVal() (jsonvalue.Value, bool) {
	if t.kind != KindConstant {
		return jsonvalue.Value{}, false
	}
	return t.constVal, true
}

// flatten normalizes a union: expands nested unions, drops duplicate and
// Never members, merges Array/Object members together, absorbs Any.
func (t Type) flatten() Type {
	if t.kind != KindUnion {
		return t
	}
	var flat []Type
	var walk func(Type)
	walk = func(m Type) {
		if m.kind == KindUnion {
			for _, inner := range m.union {
				walk(inner)
			}
			return
		}
		flat = append(flat, m)
	}
	for _, m := range t.union {
		walk(m)
	}

	for _, m := range flat {
		if m.kind == KindAny {
			return Any()
		}
	}

	var result []Type
	var arrAcc *Array
	var objAcc *Object
	seenConst := map[string]jsonvalue.Value{}

	appendUnique := func(m Type) {
		for _, r := range result {
			if typeEqual(r, m) {
				return
			}
		}
		result = append(result, m)
	}

	for _, m := range flat {
		switch m.kind {
		case KindArray:
			if arrAcc == nil {
				a := *m.array
				arrAcc = &a
			} else {
				merged := arrAcc.UnionWith(*m.array)
				arrAcc = &merged
			}
		case KindObject:
			if objAcc == nil {
				o := *m.object
				objAcc = &o
			} else {
				merged := objAcc.UnionWith(*m.object)
				objAcc = &merged
			}
		case KindConstant:
			key := fmt.Sprintf("%v", m.constVal.ToGo())
			if _, ok := seenConst[key]; ok {
				continue
			}
			seenConst[key] = m.constVal
			appendUnique(m)
		default:
			appendUnique(m)
		}
	}
	if arrAcc != nil {
		appendUnique(ArrayT(*arrAcc))
	}
	if objAcc != nil {
		appendUnique(ObjectT(*objAcc))
	}

	if len(result) == 1 {
		return result[0]
	}
	return Type{kind: KindUnion, union: result}
}

func typeEqual(a, b Type) bool {
	return a.String() == b.String()
}

// UnionWith combines t with other, normalizing the result.
func (t Type) UnionWith(other Type) Type {
	if t.IsAny() || other.IsAny() {
		return Any()
	}
	if t.IsNever() {
		return other
	}
	if other.IsNever() {
		return t
	}
	return Union(t, other).ExtractSingleUnion()
}

// IsAssignableTo reports whether every value matching t also matches other.
func (t Type) IsAssignableTo(other Type) bool {
	if other.IsAny() {
		return true
	}
	if t.IsNever() {
		return true
	}
	if t.kind == KindUnion {
		for _, m := range t.union {
			if !m.IsAssignableTo(other) {
				return false
			}
		}
		return true
	}
	if other.kind == KindUnion {
		for _, m := range other.union {
			if t.IsAssignableTo(m) {
				return true
			}
		}
		return false
	}
	switch t.kind {
	case KindConstant:
		switch other.kind {
		case KindConstant:
			return t.constVal.Equal(other.constVal)
		case KindInteger:
			return t.constVal.Kind() == jsonvalue.KindNumber && t.constVal.Number().IsInteger()
		case KindFloat:
			return t.constVal.Kind() == jsonvalue.KindNumber && !t.constVal.Number().IsInteger()
		case KindString:
			return t.constVal.Kind() == jsonvalue.KindString
		case KindBoolean:
			return t.constVal.Kind() == jsonvalue.KindBoolean
		case KindArray:
			if t.constVal.Kind() != jsonvalue.KindArray {
				return false
			}
			a, _ := FromConst(t.constVal).TryAsArray()
			return a.IsAssignableTo(*other.array)
		case KindObject:
			if t.constVal.Kind() != jsonvalue.KindObject {
				return false
			}
			o, _ := FromConst(t.constVal).TryAsObject()
			return o.IsAssignableTo(*other.object)
		default:
			return false
		}
	case KindInteger:
		return other.kind == KindInteger
	case KindFloat:
		return other.kind == KindFloat
	case KindString:
		return other.kind == KindString
	case KindBoolean:
		return other.kind == KindBoolean
	case KindArray:
		return other.kind == KindArray && t.array.IsAssignableTo(*other.array)
	case KindObject:
		return other.kind == KindObject && t.object.IsAssignableTo(*other.object)
	default:
		return false
	}
}

func (t Type) String() string {
	switch t.kind {
	case KindConstant:
		b, err := t.constVal.MarshalJSON()
		if err != nil {
			return "Constant(?)"
		}
		return fmt.Sprintf("Constant(%s)", string(b))
	case KindInteger:
		return "Integer"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindBoolean:
		return "Boolean"
	case KindArray:
		return t.array.String()
	case KindObject:
		return t.object.String()
	case KindAny:
		return "Any"
	case KindUnion:
		if t.IsNever() {
			return "Never"
		}
		parts := make([]string, len(t.union))
		for i, m := range t.union {
			parts[i] = m.String()
		}
		return "Union<" + strings.Join(parts, ", ") + ">"
	default:
		return "?"
	}
}
