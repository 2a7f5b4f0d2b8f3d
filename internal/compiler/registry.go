package compiler

import "github.com/cognitedata/kuiper/internal/exprtree"

// spec describes one built-in's lowering-time contract: its execution-tree
// tag, its arity, which argument positions may hold a lambda, and which
// positions carry a regex pattern that must be a string constant (compiled
// once at lowering, per spec.md §4.3 point 4).
type spec struct {
	tag       exprtree.FuncTag
	minArgs   int
	maxArgs   int // -1 means unbounded
	lambdaAt  map[int]bool
	lambdaLast bool // zip: the lambda is always the final argument
	regexAt   int  // -1 if none
}

// registry is the fixed set of built-in functions. `if` and `case` are
// handled separately in lower.go because they produce an exprtree.If node
// rather than an exprtree.Function node.
var registry = map[string]spec{
	// Math
	"pow":   {tag: "pow", minArgs: 2, maxArgs: 2, regexAt: -1},
	"log":   {tag: "log", minArgs: 2, maxArgs: 2, regexAt: -1},
	"atan2": {tag: "atan2", minArgs: 2, maxArgs: 2, regexAt: -1},
	"floor": {tag: "floor", minArgs: 1, maxArgs: 1, regexAt: -1},
	"ceil":  {tag: "ceil", minArgs: 1, maxArgs: 1, regexAt: -1},
	"round": {tag: "round", minArgs: 1, maxArgs: 1, regexAt: -1},

	// Casts
	"int":       {tag: "int", minArgs: 1, maxArgs: 1, regexAt: -1},
	"float":     {tag: "float", minArgs: 1, maxArgs: 1, regexAt: -1},
	"string":    {tag: "string", minArgs: 1, maxArgs: 1, regexAt: -1},
	"try_int":   {tag: "try_int", minArgs: 2, maxArgs: 2, regexAt: -1},
	"try_float": {tag: "try_float", minArgs: 2, maxArgs: 2, regexAt: -1},
	"try_bool":  {tag: "try_bool", minArgs: 2, maxArgs: 2, regexAt: -1},

	// Logic (excluding if/case, lowered to exprtree.If directly)
	"coalesce": {tag: "coalesce", minArgs: 1, maxArgs: -1, regexAt: -1},
	"all":      {tag: "all", minArgs: 1, maxArgs: 1, regexAt: -1},
	"any":      {tag: "any", minArgs: 1, maxArgs: 1, regexAt: -1},

	// Strings
	"concat":          {tag: "concat", minArgs: 1, maxArgs: -1, regexAt: -1},
	"replace":         {tag: "replace", minArgs: 3, maxArgs: 3, regexAt: -1},
	"substring":       {tag: "substring", minArgs: 2, maxArgs: 3, regexAt: -1},
	"split":           {tag: "split", minArgs: 2, maxArgs: 2, regexAt: -1},
	"starts_with":     {tag: "starts_with", minArgs: 2, maxArgs: 2, regexAt: -1},
	"ends_with":       {tag: "ends_with", minArgs: 2, maxArgs: 2, regexAt: -1},
	"contains":        {tag: "contains", minArgs: 2, maxArgs: 2, regexAt: -1},
	"trim_whitespace": {tag: "trim_whitespace", minArgs: 1, maxArgs: 1, regexAt: -1},
	"chars":           {tag: "chars", minArgs: 1, maxArgs: 1, regexAt: -1},
	"string_join":     {tag: "string_join", minArgs: 1, maxArgs: 2, regexAt: -1},
	"lower":           {tag: "lower", minArgs: 1, maxArgs: 1, regexAt: -1},
	"upper":           {tag: "upper", minArgs: 1, maxArgs: 1, regexAt: -1},
	"translate":       {tag: "translate", minArgs: 3, maxArgs: 3, regexAt: -1},

	// Regex
	"regex_is_match":       {tag: "regex_is_match", minArgs: 2, maxArgs: 2, regexAt: 1},
	"regex_first_match":    {tag: "regex_first_match", minArgs: 2, maxArgs: 2, regexAt: 1},
	"regex_first_captures": {tag: "regex_first_captures", minArgs: 2, maxArgs: 2, regexAt: 1},
	"regex_all_matches":    {tag: "regex_all_matches", minArgs: 2, maxArgs: 2, regexAt: 1},
	"regex_all_captures":   {tag: "regex_all_captures", minArgs: 2, maxArgs: 2, regexAt: 1},
	"regex_replace":        {tag: "regex_replace", minArgs: 3, maxArgs: 3, regexAt: 1},
	"regex_replace_all":    {tag: "regex_replace_all", minArgs: 3, maxArgs: 3, regexAt: 1},

	// Arrays/objects
	"length":    {tag: "length", minArgs: 1, maxArgs: 1, regexAt: -1},
	"chunk":     {tag: "chunk", minArgs: 2, maxArgs: 2, regexAt: -1},
	"tail":      {tag: "tail", minArgs: 1, maxArgs: 2, regexAt: -1},
	"slice":     {tag: "slice", minArgs: 2, maxArgs: 3, regexAt: -1},
	"sum":       {tag: "sum", minArgs: 1, maxArgs: 1, regexAt: -1},
	"zip":       {tag: "zip", minArgs: 3, maxArgs: -1, lambdaLast: true, regexAt: -1},
	"map":       {tag: "map", minArgs: 2, maxArgs: 2, lambdaAt: map[int]bool{1: true}, regexAt: -1},
	"flatmap":   {tag: "flatmap", minArgs: 2, maxArgs: 2, lambdaAt: map[int]bool{1: true}, regexAt: -1},
	"filter":    {tag: "filter", minArgs: 2, maxArgs: 2, lambdaAt: map[int]bool{1: true}, regexAt: -1},
	"reduce":    {tag: "reduce", minArgs: 3, maxArgs: 3, lambdaAt: map[int]bool{1: true}, regexAt: -1},
	"distinct_by": {tag: "distinct_by", minArgs: 2, maxArgs: 2, lambdaAt: map[int]bool{1: true}, regexAt: -1},
	"pairs":      {tag: "pairs", minArgs: 1, maxArgs: 1, regexAt: -1},
	"to_object":  {tag: "to_object", minArgs: 2, maxArgs: 3, lambdaAt: map[int]bool{1: true, 2: true}, regexAt: -1},
	"join":       {tag: "join", minArgs: 2, maxArgs: -1, regexAt: -1},
	"except":     {tag: "except", minArgs: 2, maxArgs: 2, lambdaAt: map[int]bool{1: true}, regexAt: -1},
	"select":     {tag: "select", minArgs: 2, maxArgs: 2, lambdaAt: map[int]bool{1: true}, regexAt: -1},

	// Time
	"now":                {tag: "now", minArgs: 0, maxArgs: 0, regexAt: -1},
	"to_unix_timestamp":  {tag: "to_unix_timestamp", minArgs: 2, maxArgs: 3, regexAt: -1},
	"format_timestamp":   {tag: "format_timestamp", minArgs: 2, maxArgs: 2, regexAt: -1},

	// Crypto
	"digest": {tag: "digest", minArgs: 1, maxArgs: -1, regexAt: -1},
}
