package interp

import (
	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/kerrors"
)

type builtinFn func(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error)

var builtins = map[exprtree.FuncTag]builtinFn{}

func register(tag exprtree.FuncTag, fn builtinFn) { builtins[tag] = fn }

func (ev *Evaluator) evalFunction(n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	fn, ok := builtins[n.Tag]
	if !ok {
		return jsonvalue.Value{}, ev.errf(kerrors.KindUnrecognizedFunction, n.SpanVal, "unrecognized function %q", n.Tag)
	}
	return fn(ev, n, env)
}

// evalArgs evaluates every non-lambda argument of n in order.
func (ev *Evaluator) evalArgs(n *exprtree.Function, env *Env) ([]jsonvalue.Value, error) {
	out := make([]jsonvalue.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.Eval(a, env)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func requireNumber(ev *Evaluator, v jsonvalue.Value, span exprtree.Span, who string) (float64, error) {
	if v.Kind() != jsonvalue.KindNumber {
		return 0, ev.errf(kerrors.KindIncorrectType, span, "%s requires a number, got %s", who, v.Kind())
	}
	return v.Number().AsFloat(), nil
}

func requireString(ev *Evaluator, v jsonvalue.Value, span exprtree.Span, who string) (string, error) {
	if v.Kind() != jsonvalue.KindString {
		return "", ev.errf(kerrors.KindIncorrectType, span, "%s requires a string, got %s", who, v.Kind())
	}
	return v.Str(), nil
}

func requireArray(ev *Evaluator, v jsonvalue.Value, span exprtree.Span, who string) ([]jsonvalue.Value, error) {
	if v.Kind() != jsonvalue.KindArray {
		return nil, ev.errf(kerrors.KindIncorrectType, span, "%s requires an array, got %s", who, v.Kind())
	}
	return v.Array(), nil
}

func requireLambda(ev *Evaluator, node exprtree.Node, span exprtree.Span, who string) (*exprtree.Lambda, error) {
	lam, ok := node.(*exprtree.Lambda)
	if !ok {
		return nil, ev.errf(kerrors.KindIncorrectType, span, "%s requires a lambda argument", who)
	}
	return lam, nil
}
