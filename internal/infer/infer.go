// Package infer implements the type inferencer: a static approximation of
// Evaluator that walks the same ExecutionTree and produces a types.Type
// instead of a jsonvalue.Value, never itself evaluating the tree. Its
// shape mirrors internal/interp's evaluator deliberately — same
// type-switch dispatch, same per-node-kind helpers — so that a change to
// one evaluation rule has an obvious structural counterpart here.
package infer

import (
	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/kerrors"
	"github.com/cognitedata/kuiper/internal/kuipernum"
	"github.com/cognitedata/kuiper/internal/types"
)

// Inferencer computes the static Type of an ExecutionTree node. It carries
// no mutable state of its own; Env plays the same role here that
// interp.Env plays for the Evaluator.
type Inferencer struct {
	Source string
}

func New() *Inferencer { return &Inferencer{} }

func (inf *Inferencer) errf(kind kerrors.Kind, span exprtree.Span, format string, args ...interface{}) error {
	return kerrors.New(kerrors.StageInfer, kind, kerrors.Span{Start: span.Start, End: span.End}, inf.Source, format, args...)
}

// Infer computes node's static type against env. Never propagates: a node
// whose required operand infers to Never itself infers to Never, since no
// value could ever reach it.
func (inf *Inferencer) Infer(node exprtree.Node, env *Env) (types.Type, error) {
	switch n := node.(type) {
	case *exprtree.Constant:
		return types.FromConst(n.Value), nil

	case *exprtree.InputRef:
		t, ok := env.Get(n.Index)
		if !ok {
			return types.Type{}, inf.errf(kerrors.KindExpectedType, n.SpanVal, "input %q is not bound", n.Name)
		}
		return t, nil

	case *exprtree.Selector:
		return inf.inferSelector(n, env)

	case *exprtree.BinaryOp:
		return inf.inferBinary(n, env)

	case *exprtree.UnaryOp:
		return inf.inferUnary(n, env)

	case *exprtree.ArrayLit:
		return inf.inferArrayLit(n, env)

	case *exprtree.ObjectLit:
		return inf.inferObjectLit(n, env)

	case *exprtree.If:
		return inf.inferIf(n, env)

	case *exprtree.Is:
		return inf.inferIs(n, env)

	case *exprtree.Function:
		return inf.inferFunction(n, env)

	case *exprtree.Lambda:
		return types.Type{}, inf.errf(kerrors.KindExpectedType, n.SpanVal, "a lambda has no standalone type")

	default:
		return types.Type{}, inf.errf(kerrors.KindExpectedType, exprtree.Span{}, "internal error: unknown node %T", node)
	}
}

// distribute applies f to every member of a union type independently and
// unions the successes back together (spec.md's "operators distribute over
// unions" rule). If every branch fails, the first branch's error is
// surfaced; a single failing branch among otherwise-successful branches is
// simply dropped from the result, mirroring how a runtime value only ever
// occupies one branch at a time.
func distribute(t types.Type, f func(types.Type) (types.Type, error)) (types.Type, error) {
	if t.IsNever() {
		return types.Never(), nil
	}
	members := t.Members()
	if len(members) == 1 {
		return f(members[0])
	}
	result := types.Never()
	var firstErr error
	ok := false
	for _, m := range members {
		rt, err := f(m)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result = result.UnionWith(rt)
		ok = true
	}
	if !ok {
		return types.Type{}, firstErr
	}
	return result, nil
}

// mapType is distribute's no-error counterpart, for operations that never
// fail at the type level (selector traversal: a missing field or
// out-of-range index is null, not an error).
func mapType(t types.Type, f func(types.Type) types.Type) types.Type {
	members := t.Members()
	if len(members) == 1 {
		return f(members[0])
	}
	result := types.Never()
	for _, m := range members {
		result = result.UnionWith(f(m))
	}
	return result
}

func (inf *Inferencer) inferSelector(n *exprtree.Selector, env *Env) (types.Type, error) {
	cur, err := inf.Infer(n.Source, env)
	if err != nil {
		return types.Type{}, err
	}
	if cur.IsNever() {
		return types.Never(), nil
	}
	for _, step := range n.Path {
		switch step.Kind {
		case exprtree.StepName:
			name := step.Name
			cur = mapType(cur, func(m types.Type) types.Type { return fieldType(m, name) })
		case exprtree.StepIndex:
			idx := step.Index
			cur = mapType(cur, func(m types.Type) types.Type { return indexType(m, idx) })
		case exprtree.StepComputed:
			keyT, err := inf.Infer(step.Computed, env)
			if err != nil {
				return types.Type{}, err
			}
			cur, err = distribute(cur, func(m types.Type) (types.Type, error) {
				return inf.computedStepType(m, keyT, step.Computed.Span())
			})
			if err != nil {
				return types.Type{}, err
			}
		}
		if cur.IsNever() {
			return types.Never(), nil
		}
	}
	return cur, nil
}

func fieldType(t types.Type, name string) types.Type {
	if t.IsAny() {
		return types.Any()
	}
	o, ok := t.TryAsObject()
	if !ok {
		return types.Null()
	}
	result, _ := o.IndexInto(name)
	return result
}

func indexType(t types.Type, idx int) types.Type {
	if t.IsAny() {
		return types.Any()
	}
	a, ok := t.TryAsArray()
	if !ok {
		return types.Null()
	}
	result, ok := a.IndexInto(idx)
	if !ok {
		return types.Null()
	}
	return result
}

// computedStepType handles a dynamic `x[key]` selector step: string keys
// index into an object, nonnegative-looking integer keys index into an
// array, anything else is a compile-time IncorrectType error (the
// evaluator's equivalent runtime error, surfaced early when the key type
// is unambiguous).
func (inf *Inferencer) computedStepType(source, key types.Type, span exprtree.Span) (types.Type, error) {
	if source.IsAny() {
		return types.Any(), nil
	}
	switch {
	case key.IsInteger():
		if v, ok := key.ConstVal(); ok {
			iv, _ := v.Number().AsInt64()
			if iv < 0 {
				return types.Null(), nil
			}
			return indexType(source, int(iv)), nil
		}
		a, ok := source.TryAsArray()
		if !ok {
			return types.Null(), nil
		}
		return elementUnionOf(a).UnionWith(types.Null()), nil
	case key.Kind() == types.KindString:
		if v, ok := key.ConstVal(); ok {
			return fieldType(source, v.Str()), nil
		}
		o, ok := source.TryAsObject()
		if !ok {
			return types.Null(), nil
		}
		return o.ElementUnion().UnionWith(types.Null()), nil
	case key.IsAny():
		return types.Any(), nil
	default:
		return types.Type{}, inf.errf(kerrors.KindExpectedType, span, "selector index must be a string or nonnegative integer, got %s", key.String())
	}
}

func (inf *Inferencer) inferUnary(n *exprtree.UnaryOp, env *Env) (types.Type, error) {
	operand, err := inf.Infer(n.Operand, env)
	if err != nil {
		return types.Type{}, err
	}
	if operand.IsNever() {
		return types.Never(), nil
	}
	switch n.Op {
	case "!":
		return distribute(operand, func(m types.Type) (types.Type, error) {
			switch m.Truthyness() {
			case types.TruthyAlways:
				return types.Constant(jsonvalue.Bool(false)), nil
			case types.TruthyNever:
				return types.Constant(jsonvalue.Bool(true)), nil
			default:
				return types.Boolean(), nil
			}
		})
	case "-":
		return distribute(operand, func(m types.Type) (types.Type, error) {
			if m.IsAny() {
				return types.Any(), nil
			}
			if v, ok := m.ConstVal(); ok && v.Kind() == jsonvalue.KindNumber {
				res, err := v.Number().Neg()
				if err != nil {
					return types.Type{}, inf.errf(kerrors.KindExpectedType, n.SpanVal, "%s", err.Error())
				}
				return types.Constant(jsonvalue.Num(res)), nil
			}
			if !m.IsNumber() {
				return types.Type{}, inf.errf(kerrors.KindExpectedType, n.SpanVal, "unary '-' requires a number, got %s", m.String())
			}
			if m.IsInteger() {
				return types.Integer(), nil
			}
			return types.FloatT(), nil
		})
	default:
		return types.Type{}, inf.errf(kerrors.KindExpectedType, n.SpanVal, "unknown unary operator %q", n.Op)
	}
}

func (inf *Inferencer) inferBinary(n *exprtree.BinaryOp, env *Env) (types.Type, error) {
	if n.Op == "&&" || n.Op == "||" {
		return inf.inferLogical(n, env)
	}
	left, err := inf.Infer(n.Left, env)
	if err != nil {
		return types.Type{}, err
	}
	right, err := inf.Infer(n.Right, env)
	if err != nil {
		return types.Type{}, err
	}
	if left.IsNever() || right.IsNever() {
		return types.Never(), nil
	}
	return distribute(left, func(l types.Type) (types.Type, error) {
		return distribute(right, func(r types.Type) (types.Type, error) {
			return inf.binaryPair(n, l, r)
		})
	})
}

// inferLogical implements the constant-folding truthiness rule for && and
// ||: when the left side's truthiness is already decided, the right side
// still has to be evaluated for its type (the runtime still evaluates it
// unless fully short-circuited), but the result is known without it.
func (inf *Inferencer) inferLogical(n *exprtree.BinaryOp, env *Env) (types.Type, error) {
	left, err := inf.Infer(n.Left, env)
	if err != nil {
		return types.Type{}, err
	}
	if left.IsNever() {
		return types.Never(), nil
	}
	right, err := inf.Infer(n.Right, env)
	if err != nil {
		return types.Type{}, err
	}
	lt := left.Truthyness()
	if n.Op == "&&" && lt == types.TruthyNever {
		return types.Constant(jsonvalue.Bool(false)), nil
	}
	if n.Op == "||" && lt == types.TruthyAlways {
		return types.Constant(jsonvalue.Bool(true)), nil
	}
	if right.IsNever() {
		return types.Never(), nil
	}
	rt := right.Truthyness()
	if lt == types.TruthyAlways && rt == types.TruthyAlways && n.Op == "&&" {
		return types.Constant(jsonvalue.Bool(true)), nil
	}
	if lt == types.TruthyNever && rt == types.TruthyNever && n.Op == "||" {
		return types.Constant(jsonvalue.Bool(false)), nil
	}
	return types.Boolean(), nil
}

func (inf *Inferencer) binaryPair(n *exprtree.BinaryOp, left, right types.Type) (types.Type, error) {
	switch n.Op {
	case "+", "-", "*", "/", "%":
		return inf.arithPair(n, left, right)
	case "==", "!=":
		return equalPair(n.Op, left, right), nil
	case "<", "<=", ">", ">=":
		return inf.comparePair(n, left, right)
	default:
		return types.Type{}, inf.errf(kerrors.KindExpectedType, n.SpanVal, "unknown binary operator %q", n.Op)
	}
}

func (inf *Inferencer) arithPair(n *exprtree.BinaryOp, left, right types.Type) (types.Type, error) {
	if left.IsAny() || right.IsAny() {
		return types.Any(), nil
	}
	if !left.IsNumber() || !right.IsNumber() {
		return types.Type{}, inf.errf(kerrors.KindExpectedType, n.SpanVal, "%q requires two numbers, got %s and %s", n.Op, left.String(), right.String())
	}
	lv, lok := left.ConstVal()
	rv, rok := right.ConstVal()
	if lok && rok {
		var res kuipernum.Number
		var opErr error
		switch n.Op {
		case "+":
			res, opErr = lv.Number().Add(rv.Number())
		case "-":
			res, opErr = lv.Number().Sub(rv.Number())
		case "*":
			res, opErr = lv.Number().Mul(rv.Number())
		case "/":
			res, opErr = lv.Number().Div(rv.Number())
		case "%":
			res, opErr = lv.Number().Mod(rv.Number())
		}
		if opErr != nil {
			return types.Type{}, inf.errf(kerrors.KindExpectedType, n.SpanVal, "%s", opErr.Error())
		}
		return types.Constant(jsonvalue.Num(res)), nil
	}
	if n.Op == "/" {
		return types.FloatT(), nil
	}
	if left.IsInteger() && right.IsInteger() {
		return types.Integer(), nil
	}
	return types.FloatT(), nil
}

func equalPair(op string, left, right types.Type) types.Type {
	lv, lok := left.ConstVal()
	rv, rok := right.ConstVal()
	if lok && rok {
		eq := lv.Equal(rv)
		if op == "!=" {
			eq = !eq
		}
		return types.Constant(jsonvalue.Bool(eq))
	}
	return types.Boolean()
}

func (inf *Inferencer) comparePair(n *exprtree.BinaryOp, left, right types.Type) (types.Type, error) {
	if left.IsAny() || right.IsAny() {
		return types.Boolean(), nil
	}
	numberPair := left.IsNumber() && right.IsNumber()
	stringPair := isStringlike(left) && isStringlike(right)
	if !numberPair && !stringPair {
		return types.Type{}, inf.errf(kerrors.KindExpectedType, n.SpanVal, "%q is not defined between %s and %s", n.Op, left.String(), right.String())
	}
	lv, lok := left.ConstVal()
	rv, rok := right.ConstVal()
	if lok && rok {
		var c int
		if numberPair {
			c = lv.Number().Cmp(rv.Number())
			if c == 2 {
				return types.Constant(jsonvalue.Bool(false)), nil
			}
		} else {
			switch {
			case lv.Str() < rv.Str():
				c = -1
			case lv.Str() > rv.Str():
				c = 1
			}
		}
		return types.Constant(jsonvalue.Bool(compareResult(n.Op, c))), nil
	}
	return types.Boolean(), nil
}

func isStringlike(t types.Type) bool {
	if t.Kind() == types.KindString {
		return true
	}
	if v, ok := t.ConstVal(); ok {
		return v.Kind() == jsonvalue.KindString
	}
	return false
}

func compareResult(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	default:
		return c >= 0
	}
}

// inferArrayLit accumulates a known prefix of element types followed by an
// optional dynamic tail (introduced by spreading a value whose own length
// isn't known statically). While every element seen so far is a constant
// and no dynamic tail has been opened, the whole literal folds to a single
// Constant(array) — the same folding a plain Constant binary op gets.
func (inf *Inferencer) inferArrayLit(n *exprtree.ArrayLit, env *Env) (types.Type, error) {
	var prefix []jsonvalue.Value
	isConst := true
	var elems []types.Type
	var dynTail *types.Type

	openDyn := func(t types.Type) {
		isConst = false
		if dynTail == nil {
			dynTail = &t
		} else {
			merged := dynTail.UnionWith(t)
			dynTail = &merged
		}
	}

	for _, el := range n.Elements {
		t, err := inf.Infer(el.Value, env)
		if err != nil {
			return types.Type{}, err
		}
		if t.IsNever() {
			return types.Never(), nil
		}
		if el.Spread {
			if t.IsAny() {
				openDyn(types.Any())
				continue
			}
			a, ok := t.TryAsArray()
			if !ok {
				return types.Type{}, inf.errf(kerrors.KindExpectedType, el.Value.Span(), "spread in an array literal requires an array, got %s", t.String())
			}
			if dynTail != nil {
				for _, e := range a.AllElements() {
					openDyn(e)
				}
				continue
			}
			for _, e := range a.Elements {
				elems = append(elems, e)
				if v, ok := e.ConstVal(); ok && isConst {
					prefix = append(prefix, v)
				} else {
					isConst = false
				}
			}
			if a.EndDynamic != nil {
				openDyn(*a.EndDynamic)
			}
			continue
		}
		if dynTail != nil {
			openDyn(t)
			continue
		}
		elems = append(elems, t)
		if v, ok := t.ConstVal(); ok && isConst {
			prefix = append(prefix, v)
		} else {
			isConst = false
		}
	}
	if isConst {
		return types.Constant(jsonvalue.Array(prefix...)), nil
	}
	return types.ArrayT(types.Array{Elements: elems, EndDynamic: dynTail}), nil
}

func (inf *Inferencer) inferObjectLit(n *exprtree.ObjectLit, env *Env) (types.Type, error) {
	obj := types.NewObject()
	constFields := jsonvalue.NewObjectBuilder()
	isConst := true
	for _, entry := range n.Entries {
		if entry.Spread {
			t, err := inf.Infer(entry.Value, env)
			if err != nil {
				return types.Type{}, err
			}
			if t.IsNever() {
				return types.Never(), nil
			}
			if t.IsAny() {
				isConst = false
				obj = obj.WithGeneric(types.Any())
				continue
			}
			o, ok := t.TryAsObject()
			if !ok {
				return types.Type{}, inf.errf(kerrors.KindExpectedType, entry.Value.Span(), "spread in an object literal requires an object, got %s", t.String())
			}
			if v, ok := t.ConstVal(); ok && isConst {
				for _, k := range v.ObjectKeys() {
					fv, _ := v.ObjectGet(k)
					constFields.Set(k, fv)
				}
			} else {
				isConst = false
			}
			for _, name := range o.FieldOrder {
				obj = obj.WithField(name, o.Fields[name])
			}
			if o.Generic != nil {
				obj = obj.WithGeneric(*o.Generic)
			}
			continue
		}
		keyT, err := inf.Infer(entry.Key, env)
		if err != nil {
			return types.Type{}, err
		}
		valT, err := inf.Infer(entry.Value, env)
		if err != nil {
			return types.Type{}, err
		}
		if valT.IsNever() {
			return types.Never(), nil
		}
		keyName, keyConst := constKeyName(keyT)
		if keyConst {
			obj = obj.WithField(keyName, valT)
			if fv, ok := valT.ConstVal(); ok && isConst {
				constFields.Set(keyName, fv)
			} else {
				isConst = false
			}
			continue
		}
		isConst = false
		obj = obj.WithGeneric(valT)
	}
	if isConst {
		return types.Constant(constFields.Build()), nil
	}
	return types.ObjectT(obj), nil
}

// constKeyName resolves an object-literal key to a constant field name
// when its type has folded to a single constant scalar, mirroring the
// evaluator's stringifyKey coercion (string/number/boolean/null).
func constKeyName(t types.Type) (string, bool) {
	v, ok := t.ConstVal()
	if !ok {
		return "", false
	}
	switch v.Kind() {
	case jsonvalue.KindString:
		return v.Str(), true
	case jsonvalue.KindNumber:
		return v.Number().String(), true
	case jsonvalue.KindBoolean:
		if v.Bool() {
			return "true", true
		}
		return "false", true
	case jsonvalue.KindNull:
		return "null", true
	default:
		return "", false
	}
}

func (inf *Inferencer) inferIf(n *exprtree.If, env *Env) (types.Type, error) {
	result := types.Never()
	reachable := false
	for _, branch := range n.Branches {
		condT, err := inf.Infer(branch.Cond, env)
		if err != nil {
			return types.Type{}, err
		}
		if condT.IsNever() {
			return types.Never(), nil
		}
		switch condT.Truthyness() {
		case types.TruthyNever:
			continue
		case types.TruthyAlways:
			thenT, err := inf.Infer(branch.Then, env)
			if err != nil {
				return types.Type{}, err
			}
			if !reachable {
				return thenT, nil
			}
			return result.UnionWith(thenT), nil
		default:
			thenT, err := inf.Infer(branch.Then, env)
			if err != nil {
				return types.Type{}, err
			}
			result = result.UnionWith(thenT)
			reachable = true
		}
	}
	if n.Else != nil {
		elseT, err := inf.Infer(n.Else, env)
		if err != nil {
			return types.Type{}, err
		}
		return result.UnionWith(elseT), nil
	}
	return result.UnionWith(types.Null()), nil
}

// inferIs always returns plain Boolean: narrowing the operand's type on
// the taken branch would require flow-sensitive re-binding of `is`'s
// operand expression through the rest of the tree, which the inferencer's
// single bottom-up pass does not attempt.
func (inf *Inferencer) inferIs(n *exprtree.Is, env *Env) (types.Type, error) {
	operand, err := inf.Infer(n.Operand, env)
	if err != nil {
		return types.Type{}, err
	}
	if operand.IsNever() {
		return types.Never(), nil
	}
	return types.Boolean(), nil
}

// inferLambdaCall mirrors Evaluator.callLambda: it binds argTypes into a
// fresh scope over lam's parameter slots (padding short calls with Null,
// matching the evaluator's null-padding of missing arguments) and infers
// the body's type in that scope.
func (inf *Inferencer) inferLambdaCall(lam *exprtree.Lambda, env *Env, argTypes ...types.Type) (types.Type, error) {
	padded := make([]types.Type, len(lam.ParamNames))
	for i := range padded {
		if i < len(argTypes) {
			padded[i] = argTypes[i]
		} else {
			padded[i] = types.Null()
		}
	}
	mark := env.Push(padded...)
	defer env.Pop(mark)
	return inf.Infer(lam.Body, env)
}
