package interp

import (
	"math"

	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
)

func init() {
	register("pow", biFloat2("pow", math.Pow))
	register("log", biFloat2("log", func(x, base float64) float64 { return math.Log(x) / math.Log(base) }))
	register("atan2", biFloat2("atan2", math.Atan2))
	register("floor", biFloat1("floor", math.Floor))
	register("ceil", biFloat1("ceil", math.Ceil))
	register("round", biFloat1("round", math.RoundToEven))
}

// biFloat1 builds a builtin that takes one numeric argument and returns a float.
func biFloat1(name string, f func(float64) float64) builtinFn {
	return func(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
		args, err := ev.evalArgs(n, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		x, err := requireNumber(ev, args[0], n.SpanVal, name)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		return jsonvalue.Float(f(x)), nil
	}
}

// biFloat2 builds a builtin that takes two numeric arguments and returns a float.
func biFloat2(name string, f func(float64, float64) float64) builtinFn {
	return func(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
		args, err := ev.evalArgs(n, env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		x, err := requireNumber(ev, args[0], n.SpanVal, name)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		y, err := requireNumber(ev, args[1], n.SpanVal, name)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		return jsonvalue.Float(f(x, y)), nil
	}
}
