package interp

import (
	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/kerrors"
	"github.com/cognitedata/kuiper/internal/kuipernum"
)

func init() {
	register("length", biLength)
	register("chunk", biChunk)
	register("tail", biTail)
	register("slice", biSlice)
	register("sum", biSum)
	register("zip", biZip)
	register("map", biMap)
	register("flatmap", biFlatmap)
	register("filter", biFilter)
	register("reduce", biReduce)
	register("distinct_by", biDistinctBy)
	register("pairs", biPairs)
	register("to_object", biToObject)
	register("join", biJoin)
	register("except", biExcept)
	register("select", biSelect)
}

// length reports string byte-count-free rune length for strings, element
// count for arrays, and field count for objects.
func biLength(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	switch v.Kind() {
	case jsonvalue.KindString:
		return jsonvalue.Int(int64(len([]rune(v.Str())))), nil
	case jsonvalue.KindArray:
		return jsonvalue.Int(int64(len(v.Array()))), nil
	case jsonvalue.KindObject:
		return jsonvalue.Int(int64(len(v.ObjectKeys()))), nil
	default:
		return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "length requires a string, array, or object, got %s", v.Kind())
	}
}

func biChunk(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	arr, err := requireArray(ev, args[0], n.SpanVal, "chunk")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	size, err := requireNumber(ev, args[1], n.SpanVal, "chunk")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	sz := int(size)
	if sz <= 0 {
		return jsonvalue.Value{}, ev.errf(kerrors.KindInvalidOperation, n.SpanVal, "chunk size must be positive, got %d", sz)
	}
	var out []jsonvalue.Value
	for i := 0; i < len(arr); i += sz {
		end := i + sz
		if end > len(arr) {
			end = len(arr)
		}
		out = append(out, jsonvalue.Array(arr[i:end]...))
	}
	return jsonvalue.Array(out...), nil
}

// tail returns the scalar last element when n is 1 (the default), an array
// of the last n elements otherwise, and [] when n is 0.
func biTail(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	arr, err := requireArray(ev, args[0], n.SpanVal, "tail")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	count := 1
	if len(args) == 2 {
		c, err := requireNumber(ev, args[1], n.SpanVal, "tail")
		if err != nil {
			return jsonvalue.Value{}, err
		}
		count = int(c)
	}
	if count == 0 {
		return jsonvalue.Array(), nil
	}
	from := clampIndex(len(arr)-count, len(arr))
	if count > len(arr) {
		from = 0
	}
	tailArr := arr[from:]
	if count == 1 {
		if len(tailArr) == 0 {
			return jsonvalue.Null(), nil
		}
		return tailArr[0], nil
	}
	return jsonvalue.Array(tailArr...), nil
}

func biSlice(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	arr, err := requireArray(ev, args[0], n.SpanVal, "slice")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	start, err := requireNumber(ev, args[1], n.SpanVal, "slice")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	from := clampIndex(int(start), len(arr))
	to := len(arr)
	if len(args) == 3 {
		end, err := requireNumber(ev, args[2], n.SpanVal, "slice")
		if err != nil {
			return jsonvalue.Value{}, err
		}
		to = clampIndex(int(end), len(arr))
	}
	if to < from {
		to = from
	}
	return jsonvalue.Array(arr[from:to]...), nil
}

func biSum(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	arr, err := requireArray(ev, args[0], n.SpanVal, "sum")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	total := kuipernum.Int(0)
	for i, el := range arr {
		if el.Kind() != jsonvalue.KindNumber {
			return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "sum requires an array of numbers, element %d is %s", i, el.Kind())
		}
		res, err := total.Add(el.Number())
		if err != nil {
			return jsonvalue.Value{}, ev.numErr(err, n.SpanVal)
		}
		total = res
	}
	return jsonvalue.Num(total), nil
}

// zip evaluates one or more arrays followed by a trailing lambda, calling
// the lambda once per index with the matching element from every array
// (shorter arrays contribute null past their own length) up to the longest
// array's length.
func biZip(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	nArrays := len(n.Args) - 1
	arrays := make([][]jsonvalue.Value, nArrays)
	maxLen := 0
	for i := 0; i < nArrays; i++ {
		v, err := ev.Eval(n.Args[i], env)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		arr, err := requireArray(ev, v, n.SpanVal, "zip")
		if err != nil {
			return jsonvalue.Value{}, err
		}
		arrays[i] = arr
		if len(arr) > maxLen {
			maxLen = len(arr)
		}
	}
	lam, err := requireLambda(ev, n.Args[len(n.Args)-1], n.SpanVal, "zip")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	out := make([]jsonvalue.Value, maxLen)
	for idx := 0; idx < maxLen; idx++ {
		callArgs := make([]jsonvalue.Value, nArrays)
		for i, arr := range arrays {
			if idx < len(arr) {
				callArgs[i] = arr[idx]
			} else {
				callArgs[i] = jsonvalue.Null()
			}
		}
		res, err := ev.callLambda(lam, env, callArgs...)
		if err != nil {
			return jsonvalue.Value{}, err
		}
		out[idx] = res
	}
	return jsonvalue.Array(out...), nil
}

// map applies the lambda to every element of an array (el, index) or every
// field of an object (value, key), preserving the object's key structure.
func biMap(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	lam, err := requireLambda(ev, n.Args[1], n.SpanVal, "map")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	switch v.Kind() {
	case jsonvalue.KindObject:
		b := jsonvalue.NewObjectBuilder()
		for _, k := range v.ObjectKeys() {
			fv, _ := v.ObjectGet(k)
			res, err := ev.callLambda(lam, env, fv, jsonvalue.Str(k))
			if err != nil {
				return jsonvalue.Value{}, err
			}
			b.Set(k, res)
		}
		return b.Build(), nil
	case jsonvalue.KindArray:
		arr := v.Array()
		out := make([]jsonvalue.Value, len(arr))
		for i, el := range arr {
			res, err := ev.callLambda(lam, env, el, jsonvalue.Int(int64(i)))
			if err != nil {
				return jsonvalue.Value{}, err
			}
			out[i] = res
		}
		return jsonvalue.Array(out...), nil
	default:
		return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "map requires an array or object, got %s", v.Kind())
	}
}

func biFlatmap(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	arr, err := requireArray(ev, v, n.SpanVal, "flatmap")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	lam, err := requireLambda(ev, n.Args[1], n.SpanVal, "flatmap")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var out []jsonvalue.Value
	for i, el := range arr {
		res, err := ev.callLambda(lam, env, el, jsonvalue.Int(int64(i)))
		if err != nil {
			return jsonvalue.Value{}, err
		}
		if res.Kind() != jsonvalue.KindArray {
			return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "flatmap's lambda must return an array, got %s", res.Kind())
		}
		out = append(out, res.Array()...)
	}
	return jsonvalue.Array(out...), nil
}

func biFilter(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	arr, err := requireArray(ev, v, n.SpanVal, "filter")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	lam, err := requireLambda(ev, n.Args[1], n.SpanVal, "filter")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var out []jsonvalue.Value
	for i, el := range arr {
		keep, err := ev.callLambda(lam, env, el, jsonvalue.Int(int64(i)))
		if err != nil {
			return jsonvalue.Value{}, err
		}
		if keep.Truthy() {
			out = append(out, el)
		}
	}
	return jsonvalue.Array(out...), nil
}

func biReduce(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	arr, err := requireArray(ev, v, n.SpanVal, "reduce")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	lam, err := requireLambda(ev, n.Args[1], n.SpanVal, "reduce")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	acc, err := ev.Eval(n.Args[2], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	for i, el := range arr {
		acc, err = ev.callLambda(lam, env, acc, el, jsonvalue.Int(int64(i)))
		if err != nil {
			return jsonvalue.Value{}, err
		}
	}
	return acc, nil
}

func biDistinctBy(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	arr, err := requireArray(ev, v, n.SpanVal, "distinctBy")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	lam, err := requireLambda(ev, n.Args[1], n.SpanVal, "distinctBy")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var out []jsonvalue.Value
	var seen []jsonvalue.Value
	for i, el := range arr {
		key, err := ev.callLambda(lam, env, el, jsonvalue.Int(int64(i)))
		if err != nil {
			return jsonvalue.Value{}, err
		}
		dup := false
		for _, s := range seen {
			if s.Equal(key) {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, key)
			out = append(out, el)
		}
	}
	return jsonvalue.Array(out...), nil
}

// pairs turns an object into an array of {key, value} objects, preserving
// field order.
func biPairs(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if v.Kind() != jsonvalue.KindObject {
		return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "pairs requires an object, got %s", v.Kind())
	}
	keys := v.ObjectKeys()
	out := make([]jsonvalue.Value, len(keys))
	for i, k := range keys {
		val, _ := v.ObjectGet(k)
		b := jsonvalue.NewObjectBuilder()
		b.Set("key", jsonvalue.Str(k))
		b.Set("value", val)
		out[i] = b.Build()
	}
	return jsonvalue.Array(out...), nil
}

// to_object turns an array into an object via a key lambda and an optional
// value lambda (defaulting to the identity of the element).
func biToObject(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	arr, err := requireArray(ev, v, n.SpanVal, "to_object")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	keyLam, err := requireLambda(ev, n.Args[1], n.SpanVal, "to_object")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var valLam *exprtree.Lambda
	if len(n.Args) == 3 {
		valLam, err = requireLambda(ev, n.Args[2], n.SpanVal, "to_object")
		if err != nil {
			return jsonvalue.Value{}, err
		}
	}
	b := jsonvalue.NewObjectBuilder()
	for i, el := range arr {
		keyV, err := ev.callLambda(keyLam, env, el, jsonvalue.Int(int64(i)))
		if err != nil {
			return jsonvalue.Value{}, err
		}
		key, err := stringifyKey(keyV)
		if err != nil {
			return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "%s", err.Error())
		}
		val := el
		if valLam != nil {
			val, err = ev.callLambda(valLam, env, el, jsonvalue.Int(int64(i)))
			if err != nil {
				return jsonvalue.Value{}, err
			}
		}
		b.Set(key, val)
	}
	return b.Build(), nil
}

// join concatenates arrays or unions objects (later argument wins on
// conflicting keys); every argument must be the same kind.
func biJoin(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if len(args) == 0 {
		return jsonvalue.Value{}, ev.errf(kerrors.KindNFunctionArgs, n.SpanVal, "join requires at least one argument")
	}
	switch args[0].Kind() {
	case jsonvalue.KindArray:
		var out []jsonvalue.Value
		for i, a := range args {
			if a.Kind() != jsonvalue.KindArray {
				return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "join requires arguments of the same kind, argument %d is %s", i, a.Kind())
			}
			out = append(out, a.Array()...)
		}
		return jsonvalue.Array(out...), nil
	case jsonvalue.KindObject:
		b := jsonvalue.NewObjectBuilder()
		for i, a := range args {
			if a.Kind() != jsonvalue.KindObject {
				return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "join requires arguments of the same kind, argument %d is %s", i, a.Kind())
			}
			for _, k := range a.ObjectKeys() {
				fv, _ := a.ObjectGet(k)
				b.Set(k, fv)
			}
		}
		return b.Build(), nil
	default:
		return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "join requires arrays or objects, got %s", args[0].Kind())
	}
}

func biExcept(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	return filterObjectFields(ev, n, env, false)
}

func biSelect(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	return filterObjectFields(ev, n, env, true)
}

// filterObjectFields implements except/select: a field's (key, value) pair
// is passed to the predicate, which is either a lambda or a constant array
// of key names matched by membership. select keeps fields the predicate
// matches; except drops them.
func filterObjectFields(ev *Evaluator, n *exprtree.Function, env *Env, keepOnMatch bool) (jsonvalue.Value, error) {
	who := "except"
	if keepOnMatch {
		who = "select"
	}
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	if v.Kind() != jsonvalue.KindObject {
		return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "%s requires an object, got %s", who, v.Kind())
	}
	if lam, ok := n.Args[1].(*exprtree.Lambda); ok {
		b := jsonvalue.NewObjectBuilder()
		for _, k := range v.ObjectKeys() {
			fv, _ := v.ObjectGet(k)
			match, err := ev.callLambda(lam, env, fv, jsonvalue.Str(k))
			if err != nil {
				return jsonvalue.Value{}, err
			}
			if match.Truthy() == keepOnMatch {
				b.Set(k, fv)
			}
		}
		return b.Build(), nil
	}
	listV, err := ev.Eval(n.Args[1], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	names, err := requireArray(ev, listV, n.SpanVal, who)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	keySet := make(map[string]bool, len(names))
	for i, nameV := range names {
		if nameV.Kind() != jsonvalue.KindString {
			return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "%s key list must contain only strings, element %d is %s", who, i, nameV.Kind())
		}
		keySet[nameV.Str()] = true
	}
	b := jsonvalue.NewObjectBuilder()
	for _, k := range v.ObjectKeys() {
		fv, _ := v.ObjectGet(k)
		if keySet[k] == keepOnMatch {
			b.Set(k, fv)
		}
	}
	return b.Build(), nil
}
