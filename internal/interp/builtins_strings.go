package interp

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/kerrors"
)

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

func init() {
	register("concat", biConcat)
	register("replace", biReplace)
	register("substring", biSubstring)
	register("split", biSplit)
	register("starts_with", biStartsWith)
	register("ends_with", biEndsWith)
	register("contains", biContains)
	register("trim_whitespace", biTrimWhitespace)
	register("chars", biChars)
	register("string_join", biStringJoin)
	register("lower", biLower)
	register("upper", biUpper)
	register("translate", biTranslate)
}

func biConcat(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var b strings.Builder
	for _, a := range args {
		b.WriteString(stringify(a))
	}
	return jsonvalue.Str(b.String()), nil
}

func biReplace(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "replace")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	old, err := requireString(ev, args[1], n.SpanVal, "replace")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	nw, err := requireString(ev, args[2], n.SpanVal, "replace")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Str(strings.ReplaceAll(s, old, nw)), nil
}

func biSubstring(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "substring")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	start, err := requireNumber(ev, args[1], n.SpanVal, "substring")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	runes := []rune(s)
	from := clampIndex(int(start), len(runes))
	to := len(runes)
	if len(args) == 3 {
		end, err := requireNumber(ev, args[2], n.SpanVal, "substring")
		if err != nil {
			return jsonvalue.Value{}, err
		}
		to = clampIndex(int(end), len(runes))
	}
	if to < from {
		to = from
	}
	return jsonvalue.Str(string(runes[from:to])), nil
}

// clampIndex normalizes a (possibly negative) index against a length,
// matching arrays.rs's get_array_index: negative indices count from the
// end (idx<0 && -idx<=len -> len+idx), indices past either end clamp to
// the nearest bound.
func clampIndex(i, n int) int {
	if i < 0 {
		if -i <= n {
			return n + i
		}
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func biSplit(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "split")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	sep, err := requireString(ev, args[1], n.SpanVal, "split")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	var parts []string
	if sep == "" {
		// strings.Split(s, "") splits between codepoints but drops the
		// leading/trailing empty strings Rust's str::split("") keeps.
		runes := []rune(s)
		parts = make([]string, 0, len(runes)+2)
		parts = append(parts, "")
		for _, r := range runes {
			parts = append(parts, string(r))
		}
		parts = append(parts, "")
	} else {
		parts = strings.Split(s, sep)
	}
	out := make([]jsonvalue.Value, len(parts))
	for i, p := range parts {
		out[i] = jsonvalue.Str(p)
	}
	return jsonvalue.Array(out...), nil
}

func biStartsWith(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "starts_with")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	prefix, err := requireString(ev, args[1], n.SpanVal, "starts_with")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Bool(strings.HasPrefix(s, prefix)), nil
}

func biEndsWith(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "ends_with")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	suffix, err := requireString(ev, args[1], n.SpanVal, "ends_with")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Bool(strings.HasSuffix(s, suffix)), nil
}

func biContains(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "contains")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	sub, err := requireString(ev, args[1], n.SpanVal, "contains")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Bool(strings.Contains(s, sub)), nil
}

func biTrimWhitespace(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "trim_whitespace")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Str(strings.TrimSpace(s)), nil
}

func biChars(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "chars")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	runes := []rune(s)
	out := make([]jsonvalue.Value, len(runes))
	for i, r := range runes {
		out[i] = jsonvalue.Str(string(r))
	}
	return jsonvalue.Array(out...), nil
}

func biStringJoin(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	arr, err := requireArray(ev, args[0], n.SpanVal, "string_join")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	sep := ""
	if len(args) == 2 {
		sep, err = requireString(ev, args[1], n.SpanVal, "string_join")
		if err != nil {
			return jsonvalue.Value{}, err
		}
	}
	parts := make([]string, len(arr))
	for i, el := range arr {
		if el.Kind() != jsonvalue.KindString {
			return jsonvalue.Value{}, ev.errf(kerrors.KindIncorrectType, n.SpanVal, "string_join requires an array of strings, element %d is %s", i, el.Kind())
		}
		parts[i] = el.Str()
	}
	return jsonvalue.Str(strings.Join(parts, sep)), nil
}

func biLower(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "lower")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Str(lowerCaser.String(s)), nil
}

func biUpper(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "upper")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Str(upperCaser.String(s)), nil
}

// biTranslate maps each rune of its source string present in `from` to the
// rune at the same position in `to`, dropping runes found in `from` beyond
// the length of `to`.
func biTranslate(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	args, err := ev.evalArgs(n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	s, err := requireString(ev, args[0], n.SpanVal, "translate")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	from, err := requireString(ev, args[1], n.SpanVal, "translate")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	to, err := requireString(ev, args[2], n.SpanVal, "translate")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	fromRunes := []rune(from)
	toRunes := []rune(to)
	table := make(map[rune]rune, len(fromRunes))
	drop := make(map[rune]bool)
	for i, r := range fromRunes {
		if i < len(toRunes) {
			table[r] = toRunes[i]
		} else {
			drop[r] = true
		}
	}
	var b strings.Builder
	for _, r := range s {
		if drop[r] {
			continue
		}
		if mapped, ok := table[r]; ok {
			b.WriteRune(mapped)
		} else {
			b.WriteRune(r)
		}
	}
	return jsonvalue.Str(b.String()), nil
}
