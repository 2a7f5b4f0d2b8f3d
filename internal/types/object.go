package types

// Object is a JSON object type: a set of named fields with known types,
// plus an optional Generic type applying to any other field name. A field
// absent from Fields and with no Generic set means that field is unknown
// (not necessarily absent — callers asking "is field X present" should
// check Generic too).
type Object struct {
	Fields     map[string]Type
	FieldOrder []string
	Generic    *Type
}

func NewObject() Object {
	return Object{Fields: map[string]Type{}}
}

// WithField returns a copy with a named field set, preserving declaration
// order for Display.
func (o Object) WithField(name string, t Type) Object {
	fields := make(map[string]Type, len(o.Fields)+1)
	for k, v := range o.Fields {
		fields[k] = v
	}
	order := o.FieldOrder
	if _, exists := o.Fields[name]; !exists {
		order = append(append([]string{}, o.FieldOrder...), name)
	}
	fields[name] = t
	return Object{Fields: fields, FieldOrder: order, Generic: o.Generic}
}

// WithGeneric returns a copy with the generic (catch-all) field type set.
func (o Object) WithGeneric(t Type) Object {
	return Object{Fields: o.Fields, FieldOrder: o.FieldOrder, Generic: &t}
}

// fieldType resolves a field's type via explicit fields first, then the
// generic bucket.
func (o Object) fieldType(name string) (Type, bool) {
	if t, ok := o.Fields[name]; ok {
		return t, true
	}
	if o.Generic != nil {
		return *o.Generic, true
	}
	return Type{}, false
}

// IndexInto resolves a constant field access, unioning with null because
// the field may be absent at runtime unless it is a required named field.
func (o Object) IndexInto(name string) (Type, bool) {
	if t, ok := o.Fields[name]; ok {
		return t, true
	}
	if o.Generic != nil {
		return o.Generic.UnionWith(Null()), true
	}
	return Null(), true
}

// ElementUnion returns the union of every known field type (named and
// generic), used where a caller needs "any possible value type" for the
// object (e.g. `all`/`any` over an object's values).
func (o Object) ElementUnion() Type {
	result := Never()
	for _, t := range o.Fields {
		result = result.UnionWith(t)
	}
	if o.Generic != nil {
		result = result.UnionWith(*o.Generic)
	}
	return result
}

// UnionWith merges two object shapes. Fields present in both are unioned;
// a field present in only one side is unioned with the other side's
// generic type (if any) plus null, reflecting that it may be absent.
func (o Object) UnionWith(other Object) Object {
	fields := map[string]Type{}
	var order []string
	seen := map[string]bool{}

	merge := func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		order = append(order, name)

		st, sok := o.Fields[name]
		ot, ook := other.Fields[name]
		switch {
		case sok && ook:
			fields[name] = st.UnionWith(ot)
		case sok && !ook:
			if other.Generic != nil {
				fields[name] = st.UnionWith(*other.Generic)
			} else {
				fields[name] = st.UnionWith(Null())
			}
		case !sok && ook:
			if o.Generic != nil {
				fields[name] = ot.UnionWith(*o.Generic)
			} else {
				fields[name] = ot.UnionWith(Null())
			}
		}
	}
	for _, name := range o.FieldOrder {
		merge(name)
	}
	for _, name := range other.FieldOrder {
		merge(name)
	}

	var generic *Type
	switch {
	case o.Generic != nil && other.Generic != nil:
		g := o.Generic.UnionWith(*other.Generic)
		generic = &g
	case o.Generic != nil:
		generic = o.Generic
	case other.Generic != nil:
		generic = other.Generic
	}

	return Object{Fields: fields, FieldOrder: order, Generic: generic}
}

// AcceptsField reports whether a field with this name would type-check
// against the object's shape (either declared explicitly or covered by the
// generic bucket).
func (o Object) AcceptsField(name string) bool {
	_, ok := o.fieldType(name)
	return ok
}

// IsAssignableTo reports whether every value matching o also matches other:
// every field other requires must be present (or absent-but-nullable) in o
// with a compatible type, and if other has no generic bucket, o's generic
// (if any) must itself be compatible with every field other explicitly
// declares it does NOT constrain — in practice this relaxes to: any field
// in o not explicitly named by other must be acceptable to other's generic.
func (o Object) IsAssignableTo(other Object) bool {
	for name, ot := range other.Fields {
		st, ok := o.fieldType(name)
		if !ok {
			if !Null().IsAssignableTo(ot) {
				return false
			}
			continue
		}
		if !st.IsAssignableTo(ot) {
			return false
		}
	}
	if other.Generic != nil {
		for name, st := range o.Fields {
			if _, explicit := other.Fields[name]; explicit {
				continue
			}
			if !st.IsAssignableTo(*other.Generic) {
				return false
			}
		}
		if o.Generic != nil {
			if !o.Generic.IsAssignableTo(*other.Generic) {
				return false
			}
		}
	} else if o.Generic != nil {
		// o accepts arbitrary field names with o.Generic's type; other
		// declares no catch-all, so o is only assignable if its generic
		// bucket doesn't introduce fields other doesn't also allow via
		// its named fields — JSON objects are open, so we accept this.
		_ = o.Generic
	}
	return true
}

func (o Object) String() string {
	s := "{"
	first := true
	for _, name := range o.FieldOrder {
		if !first {
			s += ", "
		}
		first = false
		s += name + ": " + o.Fields[name].String()
	}
	if o.Generic != nil {
		if !first {
			s += ", "
		}
		s += "...: " + o.Generic.String()
	}
	return s + "}"
}
