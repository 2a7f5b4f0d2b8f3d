package interp

import (
	"strconv"

	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/kerrors"
)

func init() {
	register("int", biInt)
	register("float", biFloatCast)
	register("string", biString)
	register("try_int", biTryInt)
	register("try_float", biTryFloat)
	register("try_bool", biTryBool)
}

func biInt(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, ok := castToInt(args[0])
	if !ok {
		return jsonvalue.Value{}, ev.errf(kerrors.KindConversionFailed, n.SpanVal, "int() cannot convert %s value %s", args[0].Kind(), stringify(args[0]))
	}
	return v, nil
}

func biFloatCast(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	v, ok := castToFloat(args[0])
	if !ok {
		return jsonvalue.Value{}, ev.errf(kerrors.KindConversionFailed, n.SpanVal, "float() cannot convert %s value %s", args[0].Kind(), stringify(args[0]))
	}
	return v, nil
}

func biString(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Str(stringify(args[0])), nil
}

// biTryInt, biTryFloat, biTryBool evaluate their first argument; on a failed
// conversion they fall back to the (lazily unevaluated) second argument,
// matching the fixed higher-order-free try_* family in the builtin registry.
func biTryInt(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if cast, ok := castToInt(v); ok {
		return cast, nil
	}
	return ev.Eval(n.Args[1], env)
}

func biTryFloat(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if cast, ok := castToFloat(v); ok {
		return cast, nil
	}
	return ev.Eval(n.Args[1], env)
}

func biTryBool(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if cast, ok := castToBool(v); ok {
		return cast, nil
	}
	return ev.Eval(n.Args[1], env)
}

func castToInt(v jsonvalue.Value) (jsonvalue.Value, bool) {
	switch v.Kind() {
	case jsonvalue.KindNumber:
		if i, ok := v.Number().AsInt64(); ok {
			return jsonvalue.Int(i), true
		}
		return jsonvalue.Int(int64(v.Number().AsFloat())), true
	case jsonvalue.KindString:
		if i, err := strconv.ParseInt(v.Str(), 10, 64); err == nil {
			return jsonvalue.Int(i), true
		}
		return jsonvalue.Value{}, false
	case jsonvalue.KindBoolean:
		if v.Bool() {
			return jsonvalue.Int(1), true
		}
		return jsonvalue.Int(0), true
	default:
		return jsonvalue.Value{}, false
	}
}

func castToFloat(v jsonvalue.Value) (jsonvalue.Value, bool) {
	switch v.Kind() {
	case jsonvalue.KindNumber:
		return jsonvalue.Float(v.Number().AsFloat()), true
	case jsonvalue.KindString:
		if f, err := strconv.ParseFloat(v.Str(), 64); err == nil {
			return jsonvalue.Float(f), true
		}
		return jsonvalue.Value{}, false
	case jsonvalue.KindBoolean:
		if v.Bool() {
			return jsonvalue.Float(1), true
		}
		return jsonvalue.Float(0), true
	default:
		return jsonvalue.Value{}, false
	}
}

func castToBool(v jsonvalue.Value) (jsonvalue.Value, bool) {
	switch v.Kind() {
	case jsonvalue.KindBoolean:
		return v, true
	case jsonvalue.KindString:
		switch v.Str() {
		case "true":
			return jsonvalue.Bool(true), true
		case "false":
			return jsonvalue.Bool(false), true
		default:
			return jsonvalue.Value{}, false
		}
	case jsonvalue.KindNumber:
		return jsonvalue.Bool(v.Number().AsFloat() != 0), true
	default:
		return jsonvalue.Value{}, false
	}
}

// stringify implements the string() cast / string-concatenation coercion:
// every value kind has a defined textual form.
func stringify(v jsonvalue.Value) string {
	switch v.Kind() {
	case jsonvalue.KindString:
		return v.Str()
	case jsonvalue.KindNumber:
		return v.Number().String()
	case jsonvalue.KindBoolean:
		if v.Bool() {
			return "true"
		}
		return "false"
	case jsonvalue.KindNull:
		return "null"
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	}
}
