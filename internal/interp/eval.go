// Package interp implements the Evaluator: a direct-recursion interpreter
// over the exprtree.Node ExecutionTree against an Env of JSON values.
// Grounded on the teacher's interp.Interpreter tree-walking idiom
// (internal/interp evaluate-by-type-switch), generalized from DWScript's
// statement/class execution model down to Kuiper's pure-expression model.
package interp

import (
	"fmt"

	"github.com/cognitedata/kuiper/internal/clock"
	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/kerrors"
	"github.com/cognitedata/kuiper/internal/kuipernum"
)

// Evaluator interprets an ExecutionTree. It is stateless apart from the
// injected clock, so one Evaluator may be reused across calls; all mutable
// state lives on the Env passed to Eval.
type Evaluator struct {
	Clock  clock.Clock
	Source string // original source text, for error rendering only
}

func New(clk clock.Clock) *Evaluator {
	if clk == nil {
		clk = clock.System
	}
	return &Evaluator{Clock: clk}
}

func (ev *Evaluator) errf(kind kerrors.Kind, span exprtree.Span, format string, args ...interface{}) error {
	return kerrors.New(kerrors.StageEval, kind, kerrors.Span{Start: span.Start, End: span.End}, ev.Source, format, args...)
}

// Eval interprets node against env, returning the JSON result or the first
// error encountered (evaluation is fail-fast; no partial result exists).
func (ev *Evaluator) Eval(node exprtree.Node, env *Env) (jsonvalue.Value, error) {
	switch n := node.(type) {
	case *exprtree.Constant:
		return n.Value, nil

	case *exprtree.InputRef:
		v, ok := env.Get(n.Index)
		if !ok {
			return jsonvalue.Value{}, ev.errf(kerrors.KindSourceMissing, n.SpanVal, "input %q is not bound", n.Name)
		}
		return v, nil

	case *exprtree.Selector:
		return ev.evalSelector(n, env)

	case *exprtree.BinaryOp:
		return ev.evalBinary(n, env)

	case *exprtree.UnaryOp:
		return ev.evalUnary(n, env)

	case *exprtree.ArrayLit:
		return ev.evalArrayLit(n, env)

	case *exprtree.ObjectLit:
		return ev.evalObjectLit(n, env)

	case *exprtree.If:
		return ev.evalIf(n, env)

	case *exprtree.Is:
		return ev.evalIs(n, env)

	case *exprtree.Function:
		return ev.evalFunction(n, env)

	case *exprtree.Lambda:
		return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "a lambda cannot be evaluated directly")

	default:
		return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, exprtree.Span{}, "internal error: unknown node %T", node)
	}
}

func (ev *Evaluator) evalSelector(n *exprtree.Selector, env *Env) (jsonvalue.Value, error) {
	cur, err := ev.Eval(n.Source, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	for _, step := range n.Path {
		switch step.Kind {
		case exprtree.StepName:
			cur = fieldOrNull(cur, step.Name)
		case exprtree.StepIndex:
			cur = indexOrNull(cur, step.Index)
		case exprtree.StepComputed:
			key, err := ev.Eval(step.Computed, env)
			if err != nil {
				return jsonvalue.Value{}, err
			}
			switch key.Kind() {
			case jsonvalue.KindString:
				cur = fieldOrNull(cur, key.Str())
			case jsonvalue.KindNumber:
				iv, ok := key.Number().AsInt64()
				if !ok || iv < 0 {
					cur = jsonvalue.Null()
				} else {
					cur = indexOrNull(cur, int(iv))
				}
			default:
				return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, step.Computed.Span(), "selector index must be a string or nonnegative integer, got %s", key.Kind())
			}
		}
	}
	return cur, nil
}

func fieldOrNull(v jsonvalue.Value, name string) jsonvalue.Value {
	if v.Kind() != jsonvalue.KindObject {
		return jsonvalue.Null()
	}
	if fv, ok := v.ObjectGet(name); ok {
		return fv
	}
	return jsonvalue.Null()
}

func indexOrNull(v jsonvalue.Value, idx int) jsonvalue.Value {
	if v.Kind() != jsonvalue.KindArray || idx < 0 {
		return jsonvalue.Null()
	}
	arr := v.Array()
	if idx >= len(arr) {
		return jsonvalue.Null()
	}
	return arr[idx]
}

func (ev *Evaluator) evalUnary(n *exprtree.UnaryOp, env *Env) (jsonvalue.Value, error) {
	operand, err := ev.Eval(n.Operand, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	switch n.Op {
	case "!":
		return jsonvalue.Bool(!operand.Truthy()), nil
	case "-":
		if operand.Kind() != jsonvalue.KindNumber {
			return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "unary '-' requires a number, got %s", operand.Kind())
		}
		res, err := operand.Number().Neg()
		if err != nil {
			return jsonvalue.Value{}, ev.numErr(err, n.SpanVal)
		}
		return jsonvalue.Num(res), nil
	default:
		return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "unknown unary operator %q", n.Op)
	}
}

func (ev *Evaluator) numErr(err error, span exprtree.Span) error {
	switch err.(type) {
	case *kuipernum.OverflowError:
		return ev.errf(kerrors.KindArithmeticOverflow, span, "%s", err.Error())
	case *kuipernum.DivideByZeroError:
		return ev.errf(kerrors.KindInvalidOperation, span, "%s", err.Error())
	default:
		return ev.errf(kerrors.KindInvalidOperation, span, "%s", err.Error())
	}
}

func (ev *Evaluator) evalBinary(n *exprtree.BinaryOp, env *Env) (jsonvalue.Value, error) {
	switch n.Op {
	case "&&":
		left, err := ev.Eval(n.Left, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		if !left.Truthy() {
			return jsonvalue.Bool(false), nil
		}
		right, err := ev.Eval(n.Right, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		return jsonvalue.Bool(right.Truthy()), nil
	case "||":
		left, err := ev.Eval(n.Left, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		if left.Truthy() {
			return jsonvalue.Bool(true), nil
		}
		right, err := ev.Eval(n.Right, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		return jsonvalue.Bool(right.Truthy()), nil
	}

	left, err := ev.Eval(n.Left, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	right, err := ev.Eval(n.Right, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}

	switch n.Op {
	case "+", "-", "*", "/", "%":
		if left.Kind() != jsonvalue.KindNumber || right.Kind() != jsonvalue.KindNumber {
			return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "%q requires two numbers, got %s and %s", n.Op, left.Kind(), right.Kind())
		}
		var res kuipernum.Number
		var opErr error
		switch n.Op {
		case "+":
			res, opErr = left.Number().Add(right.Number())
		case "-":
			res, opErr = left.Number().Sub(right.Number())
		case "*":
			res, opErr = left.Number().Mul(right.Number())
		case "/":
			res, opErr = left.Number().Div(right.Number())
		case "%":
			res, opErr = left.Number().Mod(right.Number())
		}
		if opErr != nil {
			return jsonvalue.Value{}, ev.numErr(opErr, n.SpanVal)
		}
		return jsonvalue.Num(res), nil

	case "==", "!=":
		eq := left.Equal(right)
		if n.Op == "!=" {
			eq = !eq
		}
		return jsonvalue.Bool(eq), nil

	case "<", "<=", ">", ">=":
		return ev.evalCompare(n, left, right)

	default:
		return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "unknown binary operator %q", n.Op)
	}
}

func (ev *Evaluator) evalCompare(n *exprtree.BinaryOp, left, right jsonvalue.Value) (jsonvalue.Value, error) {
	if left.Kind() == jsonvalue.KindNumber && right.Kind() == jsonvalue.KindNumber {
		c := left.Number().Cmp(right.Number())
		if c == 2 { // NaN: every ordered comparison is false
			return jsonvalue.Bool(false), nil
		}
		return jsonvalue.Bool(compareResult(n.Op, c)), nil
	}
	if left.Kind() == jsonvalue.KindString && right.Kind() == jsonvalue.KindString {
		var c int
		switch {
		case left.Str() < right.Str():
			c = -1
		case left.Str() > right.Str():
			c = 1
		}
		return jsonvalue.Bool(compareResult(n.Op, c)), nil
	}
	return jsonvalue.Value{}, ev.errf(kerrors.KindInvalidOperation, n.SpanVal, "%q is not defined between %s and %s", n.Op, left.Kind(), right.Kind())
}

func compareResult(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	default: // ">="
		return c >= 0
	}
}

func (ev *Evaluator) evalArrayLit(n *exprtree.ArrayLit, env *Env) (jsonvalue.Value, error) {
	var out []jsonvalue.Value
	for _, el := range n.Elements {
		v, err := ev.Eval(el.Value, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		if el.Spread {
			if v.Kind() != jsonvalue.KindArray {
				return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, el.Value.Span(), "spread in an array literal requires an array, got %s", v.Kind())
			}
			out = append(out, v.Array()...)
		} else {
			out = append(out, v)
		}
	}
	return jsonvalue.Array(out...), nil
}

func (ev *Evaluator) evalObjectLit(n *exprtree.ObjectLit, env *Env) (jsonvalue.Value, error) {
	b := jsonvalue.NewObjectBuilder()
	for _, entry := range n.Entries {
		if entry.Spread {
			v, err := ev.Eval(entry.Value, env)
			if err != nil {
				return jsonvalue.Value{}, err
			}
			if v.Kind() != jsonvalue.KindObject {
				return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, entry.Value.Span(), "spread in an object literal requires an object, got %s", v.Kind())
			}
			for _, k := range v.ObjectKeys() {
				fv, _ := v.ObjectGet(k)
				b.Set(k, fv)
			}
			continue
		}
		keyVal, err := ev.Eval(entry.Key, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		key, err := stringifyKey(keyVal)
		if err != nil {
			return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, entry.Key.Span(), "%s", err.Error())
		}
		val, err := ev.Eval(entry.Value, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		b.Set(key, val)
	}
	return b.Build(), nil
}

// stringifyKey implements the object-literal key coercion rule: string,
// number, boolean, or null keys are all accepted and stringified.
func stringifyKey(v jsonvalue.Value) (string, error) {
	switch v.Kind() {
	case jsonvalue.KindString:
		return v.Str(), nil
	case jsonvalue.KindNumber:
		return v.Number().String(), nil
	case jsonvalue.KindBoolean:
		if v.Bool() {
			return "true", nil
		}
		return "false", nil
	case jsonvalue.KindNull:
		return "null", nil
	default:
		return "", fmt.Errorf("object key must be a string, number, boolean, or null, got %s", v.Kind())
	}
}

func (ev *Evaluator) evalIf(n *exprtree.If, env *Env) (jsonvalue.Value, error) {
	for _, branch := range n.Branches {
		cond, err := ev.Eval(branch.Cond, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		if cond.Truthy() {
			return ev.Eval(branch.Then, env)
		}
	}
	if n.Else != nil {
		return ev.Eval(n.Else, env)
	}
	return jsonvalue.Null(), nil
}

func (ev *Evaluator) evalIs(n *exprtree.Is, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Operand, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	match := matchesTypeName(v, n.TypeName)
	if n.Negated {
		match = !match
	}
	return jsonvalue.Bool(match), nil
}

func matchesTypeName(v jsonvalue.Value, name string) bool {
	switch name {
	case "int":
		return v.Kind() == jsonvalue.KindNumber && v.Number().IsInteger()
	case "float":
		return v.Kind() == jsonvalue.KindNumber && !v.Number().IsInteger()
	case "number":
		return v.Kind() == jsonvalue.KindNumber
	case "string":
		return v.Kind() == jsonvalue.KindString
	case "bool":
		return v.Kind() == jsonvalue.KindBoolean
	case "array":
		return v.Kind() == jsonvalue.KindArray
	case "object":
		return v.Kind() == jsonvalue.KindObject
	case "null":
		return v.Kind() == jsonvalue.KindNull
	default:
		return false
	}
}

// callLambda pushes arg values onto env in order, evaluates the lambda
// body, and pops them. Extra declared parameters receive null; extra
// supplied args beyond the lambda's declared arity are dropped — per
// spec.md §4.4, the callee decides how many parameters it provides.
func (ev *Evaluator) callLambda(lam *exprtree.Lambda, env *Env, args ...jsonvalue.Value) (jsonvalue.Value, error) {
	padded := make([]jsonvalue.Value, len(lam.ParamNames))
	for i := range padded {
		if i < len(args) {
			padded[i] = args[i]
		} else {
			padded[i] = jsonvalue.Null()
		}
	}
	mark := env.Push(padded...)
	defer env.Pop(mark)
	return ev.Eval(lam.Body, env)
}
