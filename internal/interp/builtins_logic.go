package interp

import (
	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/kerrors"
)

func init() {
	register("coalesce", biCoalesce)
	register("all", biAll)
	register("any", biAny)
}

// biCoalesce evaluates its arguments left to right, returning the first
// non-null one (or null if every argument is null or there are none left).
func biCoalesce(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	for _, a := range n.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		if !v.IsNull() {
			return v, nil
		}
	}
	return jsonvalue.Null(), nil
}

func biAll(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	elems, err := truthinessElements(ev, v, n.SpanVal, "all")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	for _, el := range elems {
		if !el.Truthy() {
			return jsonvalue.Bool(false), nil
		}
	}
	return jsonvalue.Bool(true), nil
}

func biAny(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	elems, err := truthinessElements(ev, v, n.SpanVal, "any")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	for _, el := range elems {
		if el.Truthy() {
			return jsonvalue.Bool(true), nil
		}
	}
	return jsonvalue.Bool(false), nil
}

// truthinessElements flattens an array or object's values into a slice for
// all/any, which compare every element by truthiness regardless of kind.
func truthinessElements(ev *Evaluator, v jsonvalue.Value, span exprtree.Span, who string) ([]jsonvalue.Value, error) {
	switch v.Kind() {
	case jsonvalue.KindArray:
		return v.Array(), nil
	case jsonvalue.KindObject:
		keys := v.ObjectKeys()
		out := make([]jsonvalue.Value, len(keys))
		for i, k := range keys {
			out[i], _ = v.ObjectGet(k)
		}
		return out, nil
	default:
		return nil, ev.errf(kerrors.KindIncorrectType, span, "%s requires an array or object, got %s", who, v.Kind())
	}
}
