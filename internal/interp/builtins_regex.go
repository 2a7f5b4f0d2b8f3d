package interp

import (
	"regexp"
	"strconv"

	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
)

// regexGroupNamer resolves a capture group index to the key it should use
// in a captures object: its name if the pattern gave it one, otherwise its
// 1-based positional index as a string.
type regexGroupNamer struct {
	names []string
}

func namerFor(re *regexp.Regexp) *regexGroupNamer {
	return &regexGroupNamer{names: re.SubexpNames()}
}

func (g *regexGroupNamer) nameFor(i int) string {
	if i < len(g.names) && g.names[i] != "" {
		return g.names[i]
	}
	return strconv.Itoa(i)
}

func init() {
	register("regex_is_match", biRegexIsMatch)
	register("regex_first_match", biRegexFirstMatch)
	register("regex_first_captures", biRegexFirstCaptures)
	register("regex_all_matches", biRegexAllMatches)
	register("regex_all_captures", biRegexAllCaptures)
	register("regex_replace", biRegexReplace)
	register("regex_replace_all", biRegexReplaceAll)
}

// regexSubject evaluates a regex builtin's subject (argument 0); the pattern
// argument is never evaluated at runtime since it was precompiled onto
// n.Regex at lowering time.
func regexSubject(ev *Evaluator, n *exprtree.Function, env *Env) (string, error) {
	v, err := ev.Eval(n.Args[0], env)
	if err != nil {
		return "", err
	}
	return requireString(ev, v, n.SpanVal, "regex")
}

func biRegexIsMatch(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	s, err := regexSubject(ev, n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Bool(n.Regex.MatchString(s)), nil
}

func biRegexFirstMatch(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	s, err := regexSubject(ev, n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	m := n.Regex.FindString(s)
	if m == "" && !n.Regex.MatchString(s) {
		return jsonvalue.Null(), nil
	}
	return jsonvalue.Str(m), nil
}

// captureObject builds the named/positional capture object for a single
// regex match: every capture group, named or not, becomes a field keyed by
// its name (named groups) or its 1-based index (unnamed groups).
func captureObject(re *regexGroupNamer, match []string) jsonvalue.Value {
	b := jsonvalue.NewObjectBuilder()
	for i := 1; i < len(match); i++ {
		key := re.nameFor(i)
		b.Set(key, jsonvalue.Str(match[i]))
	}
	return b.Build()
}

func biRegexFirstCaptures(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	s, err := regexSubject(ev, n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	match := n.Regex.FindStringSubmatch(s)
	if match == nil {
		return jsonvalue.Null(), nil
	}
	return captureObject(namerFor(n.Regex), match), nil
}

func biRegexAllMatches(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	s, err := regexSubject(ev, n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	matches := n.Regex.FindAllString(s, -1)
	out := make([]jsonvalue.Value, len(matches))
	for i, m := range matches {
		out[i] = jsonvalue.Str(m)
	}
	return jsonvalue.Array(out...), nil
}

func biRegexAllCaptures(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	s, err := regexSubject(ev, n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	matches := n.Regex.FindAllStringSubmatch(s, -1)
	namer := namerFor(n.Regex)
	out := make([]jsonvalue.Value, len(matches))
	for i, m := range matches {
		out[i] = captureObject(namer, m)
	}
	return jsonvalue.Array(out...), nil
}

func biRegexReplace(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	s, err := regexSubject(ev, n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	replV, err := ev.Eval(n.Args[2], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	repl, err := requireString(ev, replV, n.SpanVal, "regex_replace")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	loc := n.Regex.FindStringIndex(s)
	if loc == nil {
		return jsonvalue.Str(s), nil
	}
	out := s[:loc[0]] + n.Regex.ReplaceAllString(s[loc[0]:loc[1]], repl) + s[loc[1]:]
	return jsonvalue.Str(out), nil
}

func biRegexReplaceAll(ev *Evaluator, n *exprtree.Function, env *Env) (jsonvalue.Value, error) {
	s, err := regexSubject(ev, n, env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	replV, err := ev.Eval(n.Args[2], env)
	if err != nil {
		return jsonvalue.Value{}, err
	}
	repl, err := requireString(ev, replV, n.SpanVal, "regex_replace_all")
	if err != nil {
		return jsonvalue.Value{}, err
	}
	return jsonvalue.Str(n.Regex.ReplaceAllString(s, repl)), nil
}
