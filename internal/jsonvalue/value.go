// Package jsonvalue is Kuiper's in-memory representation of JSON values.
// A Value is a kind-tagged struct rather than an interface{} tree; the
// evaluator (internal/interp) passes and returns Values directly, with no
// separate borrowed/owned wrapper.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/cognitedata/kuiper/internal/kuipernum"
)

// Kind identifies which JSON shape a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a JSON value: null, boolean, one of three number kinds, string,
// an ordered array of values, or an insertion-ordered string-keyed object.
type Value struct {
	kind Kind

	b bool
	n kuipernum.Number
	s string

	arr []Value

	objVals map[string]Value
	objKeys []string
}

func Null() Value { return Value{kind: KindNull} }

func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

func Num(n kuipernum.Number) Value { return Value{kind: KindNumber, n: n} }

func Uint(u uint64) Value { return Num(kuipernum.Uint(u)) }

func Int(i int64) Value { return Num(kuipernum.Int(i)) }

func Float(f float64) Value { return Num(kuipernum.Float(f)) }

func Str(s string) Value { return Value{kind: KindString, s: s} }

// Array builds an array value from the given elements (copied).
func Array(elems ...Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, arr: cp}
}

// NewObject returns an empty object value, ready for Set calls.
func NewObject() Value {
	return Value{kind: KindObject, objVals: map[string]Value{}, objKeys: []string{}}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// Truthy implements Kuiper's truthiness rule: everything except null and
// false is truthy (including 0, "", [], {}).
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBoolean:
		return v.b
	default:
		return true
	}
}

func (v Value) Bool() bool { return v.b }

func (v Value) Number() kuipernum.Number { return v.n }

func (v Value) Str() string { return v.s }

func (v Value) Array() []Value {
	out := make([]Value, len(v.arr))
	copy(out, v.arr)
	return out
}

func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.objKeys)
	case KindString:
		return len([]rune(v.s))
	default:
		return 0
	}
}

// ObjectGet returns the field value and whether it was present.
func (v Value) ObjectGet(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	val, ok := v.objVals[key]
	return val, ok
}

func (v Value) ObjectKeys() []string {
	out := make([]string, len(v.objKeys))
	copy(out, v.objKeys)
	return out
}

// ObjectBuilder accumulates object fields preserving insertion order with
// later-wins overwrite semantics (used for literal construction and spread).
type ObjectBuilder struct {
	vals map[string]Value
	keys []string
}

func NewObjectBuilder() *ObjectBuilder {
	return &ObjectBuilder{vals: map[string]Value{}, keys: []string{}}
}

func (b *ObjectBuilder) Set(key string, val Value) {
	if _, exists := b.vals[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.vals[key] = val
}

func (b *ObjectBuilder) Build() Value {
	keys := make([]string, len(b.keys))
	copy(keys, b.keys)
	vals := make(map[string]Value, len(b.vals))
	for k, v := range b.vals {
		vals[k] = v
	}
	return Value{kind: KindObject, objVals: vals, objKeys: keys}
}

// Equal implements Kuiper's equality rule: numeric values compare across
// kinds numerically, strings compare bytewise, arrays/objects compare
// structurally, null == null is true.
func (v Value) Equal(other Value) bool {
	if v.kind == KindNumber && other.kind == KindNumber {
		return v.n.Equal(other.n)
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBoolean:
		return v.b == other.b
	case KindString:
		return v.s == other.s
	case KindArray:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.objKeys) != len(other.objKeys) {
			return false
		}
		for _, k := range v.objKeys {
			ov, ok := other.ObjectGet(k)
			if !ok {
				return false
			}
			sv, _ := v.ObjectGet(k)
			if !sv.Equal(ov) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler, preserving object key order (which
// encoding/json's native map handling cannot do).
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBoolean:
		if v.b {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case KindNumber:
		return marshalNumber(v.n)
	case KindString:
		return json.Marshal(v.s)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range v.objKeys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := v.objVals[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

func marshalNumber(n kuipernum.Number) ([]byte, error) {
	switch n.Kind() {
	case kuipernum.KindUint:
		u, _ := n.AsUint64()
		return []byte(strconv.FormatUint(u, 10)), nil
	case kuipernum.KindInt:
		i, _ := n.AsInt64()
		return []byte(strconv.FormatInt(i, 10)), nil
	default:
		f := n.AsFloat()
		return json.Marshal(f) // fails on NaN/Inf, matching ConversionFailed semantics upstream
	}
}

// FromGo converts a decoded interface{} tree (as produced by encoding/json,
// gjson's Value(), or goccy/go-yaml) into a jsonvalue.Value. Keys of a
// map[string]interface{} are sorted alphabetically, since the map carries no
// source order. Values of unsupported Go types, json.RawMessage included,
// become null.
func FromGo(x interface{}) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case string:
		return Str(t)
	case float64:
		return Float(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint64:
		return Uint(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		f, _ := t.Float64()
		return Float(f)
	case []interface{}:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = FromGo(e)
		}
		return Array(elems...)
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b := NewObjectBuilder()
		for _, k := range keys {
			b.Set(k, FromGo(t[k]))
		}
		return b.Build()
	default:
		return Null()
	}
}

// ToGo converts back to a plain interface{} tree, for handing results to
// callers that want standard encoding/json behavior.
func (v Value) ToGo() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindBoolean:
		return v.b
	case KindNumber:
		switch v.n.Kind() {
		case kuipernum.KindUint:
			u, _ := v.n.AsUint64()
			return u
		case kuipernum.KindInt:
			i, _ := v.n.AsInt64()
			return i
		default:
			return v.n.AsFloat()
		}
	case KindString:
		return v.s
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.ToGo()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.objKeys))
		for _, k := range v.objKeys {
			out[k] = v.objVals[k].ToGo()
		}
		return out
	default:
		return nil
	}
}
