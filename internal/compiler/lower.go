// Package compiler implements Lowering: the single AST walk that resolves
// names to flat environment slots, dispatches call sites against the fixed
// builtin registry, flattens selector chains, precompiles constant regexes,
// and rejects lambdas outside their legal argument positions. Grounded on
// original_source/kuiper_lang/src/compiler/exec_tree.rs's BuildError
// variants and ExecTreeBuilder shape, generalized into the teacher's
// single-pass-with-accumulated-errors idiom used by its internal/semantic
// analyzer.
package compiler

import (
	"regexp"
	"strconv"

	"github.com/cognitedata/kuiper/internal/ast"
	"github.com/cognitedata/kuiper/internal/exprtree"
	"github.com/cognitedata/kuiper/internal/jsonvalue"
	"github.com/cognitedata/kuiper/internal/kerrors"
	"github.com/cognitedata/kuiper/internal/lexer"
)

type lowerer struct {
	source   string
	scopes   []map[string]int
	nextSlot int
	errors   []*kerrors.Error
}

// Lower converts a parsed expression into an ExecutionTree, resolving
// inputNames to slots 0..len(inputNames)-1.
func Lower(expr ast.Expression, source string, inputNames []string) (exprtree.Node, []*kerrors.Error) {
	l := &lowerer{source: source}
	top := make(map[string]int, len(inputNames))
	for i, name := range inputNames {
		top[name] = i
	}
	l.scopes = []map[string]int{top}
	l.nextSlot = len(inputNames)

	node := l.lower(expr)
	return node, l.errors
}

func toSpan(s lexer.Span) exprtree.Span { return exprtree.Span{Start: s.Start, End: s.End} }

func (l *lowerer) errorf(kind kerrors.Kind, span lexer.Span, format string, args ...interface{}) {
	l.errors = append(l.errors, kerrors.New(kerrors.StageBuild, kind, kerrors.Span{Start: span.Start, End: span.End}, l.source, format, args...))
}

func (l *lowerer) pushScope() int {
	saved := l.nextSlot
	l.scopes = append(l.scopes, map[string]int{})
	return saved
}

func (l *lowerer) popScope(saved int) {
	l.scopes = l.scopes[:len(l.scopes)-1]
	l.nextSlot = saved
}

func (l *lowerer) declare(name string, span lexer.Span) int {
	top := l.scopes[len(l.scopes)-1]
	if _, exists := top[name]; exists {
		l.errorf(kerrors.KindVariableConflict, span, "%q is already declared in this scope", name)
	}
	slot := l.nextSlot
	top[name] = slot
	l.nextSlot++
	return slot
}

func (l *lowerer) resolve(name string) (int, bool) {
	for i := len(l.scopes) - 1; i >= 0; i-- {
		if slot, ok := l.scopes[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

func (l *lowerer) lower(expr ast.Expression) exprtree.Node {
	switch e := expr.(type) {
	case *ast.Identifier:
		slot, ok := l.resolve(e.Value)
		if !ok {
			l.errorf(kerrors.KindUnknownVariable, e.Span(), "unknown variable %q", e.Value)
		}
		return &exprtree.InputRef{Index: slot, Name: e.Value, SpanVal: toSpan(e.Span())}

	case *ast.IntegerLiteral:
		return &exprtree.Constant{Value: jsonvalue.Uint(e.Value), SpanVal: toSpan(e.Span())}

	case *ast.FloatLiteral:
		return &exprtree.Constant{Value: jsonvalue.Float(e.Value), SpanVal: toSpan(e.Span())}

	case *ast.StringLiteral:
		return &exprtree.Constant{Value: jsonvalue.Str(e.Value), SpanVal: toSpan(e.Span())}

	case *ast.BooleanLiteral:
		return &exprtree.Constant{Value: jsonvalue.Bool(e.Value), SpanVal: toSpan(e.Span())}

	case *ast.NullLiteral:
		return &exprtree.Constant{Value: jsonvalue.Null(), SpanVal: toSpan(e.Span())}

	case *ast.ArrayLiteral:
		elems := make([]exprtree.ArrayElem, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = exprtree.ArrayElem{Value: l.lowerArg(el.Value), Spread: el.Spread}
		}
		return &exprtree.ArrayLit{Elements: elems, SpanVal: toSpan(e.Span())}

	case *ast.ObjectLiteral:
		entries := make([]exprtree.ObjectEntry, len(e.Entries))
		for i, en := range e.Entries {
			if en.Spread {
				entries[i] = exprtree.ObjectEntry{Value: l.lowerArg(en.Value), Spread: true}
			} else {
				entries[i] = exprtree.ObjectEntry{Key: l.lowerArg(en.Key), Value: l.lowerArg(en.Value)}
			}
		}
		return &exprtree.ObjectLit{Entries: entries, SpanVal: toSpan(e.Span())}

	case *ast.UnaryExpression:
		return &exprtree.UnaryOp{Op: e.Operator, Operand: l.lowerArg(e.Operand), SpanVal: toSpan(e.Span())}

	case *ast.BinaryExpression:
		return &exprtree.BinaryOp{Op: e.Operator, Left: l.lowerArg(e.Left), Right: l.lowerArg(e.Right), SpanVal: toSpan(e.Span())}

	case *ast.IsExpression:
		return &exprtree.Is{Operand: l.lowerArg(e.Operand), TypeName: e.TypeName, Negated: e.Negated, SpanVal: toSpan(e.Span())}

	case *ast.SelectorExpression:
		return l.lowerSelector(e)

	case *ast.CallExpression:
		return l.lowerCall(e)

	case *ast.LambdaExpression:
		l.errorf(kerrors.KindUnexpectedLambda, e.Span(), "a lambda is only legal as a direct argument to a function that accepts one")
		return &exprtree.Constant{Value: jsonvalue.Null(), SpanVal: toSpan(e.Span())}

	default:
		l.errorf(kerrors.KindBuildOther, expr.Span(), "internal error: unknown AST node %T", expr)
		return &exprtree.Constant{Value: jsonvalue.Null(), SpanVal: toSpan(expr.Span())}
	}
}

// lowerArg lowers an expression known NOT to be in a lambda-legal position;
// a bare LambdaExpression there is a compile error.
func (l *lowerer) lowerArg(expr ast.Expression) exprtree.Node {
	if lam, ok := expr.(*ast.LambdaExpression); ok {
		l.errorf(kerrors.KindUnexpectedLambda, lam.Span(), "a lambda is not legal here")
		return &exprtree.Constant{Value: jsonvalue.Null(), SpanVal: toSpan(lam.Span())}
	}
	return l.lower(expr)
}

func (l *lowerer) lowerSelector(e *ast.SelectorExpression) exprtree.Node {
	source := l.lower(e.Receiver)
	path := make([]exprtree.PathStep, 0, len(e.Steps))
	for _, s := range e.Steps {
		if s.IsLiteral {
			path = append(path, exprtree.PathStep{Kind: exprtree.StepName, Name: s.Name})
			continue
		}
		if lit, ok := s.Index.(*ast.IntegerLiteral); ok {
			path = append(path, exprtree.PathStep{Kind: exprtree.StepIndex, Index: int(lit.Value)})
			continue
		}
		path = append(path, exprtree.PathStep{Kind: exprtree.StepComputed, Computed: l.lowerArg(s.Index)})
	}
	return &exprtree.Selector{Source: source, Path: path, SpanVal: toSpan(e.Span())}
}

func (l *lowerer) lowerCall(e *ast.CallExpression) exprtree.Node {
	switch e.Name {
	case "if":
		return l.lowerIf(e)
	case "case":
		return l.lowerCase(e)
	}

	sp, ok := registry[e.Name]
	if !ok {
		l.errorf(kerrors.KindUnrecognizedFunction, e.Span(), "unrecognized function %q", e.Name)
		return &exprtree.Constant{Value: jsonvalue.Null(), SpanVal: toSpan(e.Span())}
	}
	if len(e.Args) < sp.minArgs || (sp.maxArgs >= 0 && len(e.Args) > sp.maxArgs) {
		l.errorf(kerrors.KindNFunctionArgs, e.Span(), "%q expects between %d and %s arguments, got %d", e.Name, sp.minArgs, maxArgsLabel(sp.maxArgs), len(e.Args))
	}

	args := make([]exprtree.Node, len(e.Args))
	for i, a := range e.Args {
		lastIdx := len(e.Args) - 1
		isLambdaPos := sp.lambdaAt[i] || (sp.lambdaLast && i == lastIdx)
		if lam, isLambda := a.(*ast.LambdaExpression); isLambda {
			if !isLambdaPos {
				l.errorf(kerrors.KindUnexpectedLambda, lam.Span(), "%q does not accept a lambda at argument %d", e.Name, i)
				args[i] = &exprtree.Constant{Value: jsonvalue.Null(), SpanVal: toSpan(lam.Span())}
				continue
			}
			args[i] = l.lowerLambda(lam)
			continue
		}
		args[i] = l.lower(a)
	}

	fn := &exprtree.Function{Tag: sp.tag, Args: args, SpanVal: toSpan(e.Span())}
	if sp.regexAt >= 0 && sp.regexAt < len(e.Args) {
		fn.Regex = l.compileConstRegex(e.Args[sp.regexAt])
	}
	return fn
}

func maxArgsLabel(maxArgs int) string {
	if maxArgs < 0 {
		return "unbounded"
	}
	return strconv.Itoa(maxArgs)
}

func (l *lowerer) lowerLambda(lam *ast.LambdaExpression) *exprtree.Lambda {
	saved := l.pushScope()
	names := make([]string, len(lam.Params))
	slots := make([]int, len(lam.Params))
	for i, p := range lam.Params {
		names[i] = p.Value
		slots[i] = l.declare(p.Value, p.Span())
	}
	body := l.lower(lam.Body)
	l.popScope(saved)
	return &exprtree.Lambda{ParamNames: names, ParamSlots: slots, Body: body, SpanVal: toSpan(lam.Span())}
}

// compileConstRegex requires argExpr to be a string literal; it is an error
// at lowering time otherwise.
func (l *lowerer) compileConstRegex(argExpr ast.Expression) *regexp.Regexp {
	lit, ok := argExpr.(*ast.StringLiteral)
	if !ok {
		l.errorf(kerrors.KindBuildOther, argExpr.Span(), "regex argument must be a string constant")
		return nil
	}
	re, err := regexp.Compile(lit.Value)
	if err != nil {
		l.errorf(kerrors.KindBuildOther, argExpr.Span(), "invalid regular expression %q: %v", lit.Value, err)
		return nil
	}
	return re
}

// lowerIf converts `if(cond, then, else?)` into exprtree.If directly, per
// spec.md §3's ExecutionTree shape (If is a dedicated node, not a Function).
func (l *lowerer) lowerIf(e *ast.CallExpression) exprtree.Node {
	if len(e.Args) < 2 || len(e.Args) > 3 {
		l.errorf(kerrors.KindNFunctionArgs, e.Span(), "if expects 2 or 3 arguments, got %d", len(e.Args))
	}
	var branches []exprtree.IfBranch
	if len(e.Args) >= 2 {
		branches = append(branches, exprtree.IfBranch{Cond: l.lowerArg(e.Args[0]), Then: l.lowerArg(e.Args[1])})
	}
	var elseNode exprtree.Node
	if len(e.Args) >= 3 {
		elseNode = l.lowerArg(e.Args[2])
	}
	return &exprtree.If{Branches: branches, Else: elseNode, SpanVal: toSpan(e.Span())}
}

// lowerCase converts `case(x, k1, v1, k2, v2, …, default?)` into a chain of
// equality-guarded branches against x.
func (l *lowerer) lowerCase(e *ast.CallExpression) exprtree.Node {
	if len(e.Args) < 3 {
		l.errorf(kerrors.KindNFunctionArgs, e.Span(), "case expects at least 3 arguments, got %d", len(e.Args))
		return &exprtree.Constant{Value: jsonvalue.Null(), SpanVal: toSpan(e.Span())}
	}
	subject := l.lowerArg(e.Args[0])
	rest := e.Args[1:]
	hasDefault := len(rest)%2 == 1
	pairCount := len(rest) / 2

	var branches []exprtree.IfBranch
	for i := 0; i < pairCount; i++ {
		keyExpr := rest[2*i]
		valExpr := rest[2*i+1]
		key := l.lowerArg(keyExpr)
		val := l.lowerArg(valExpr)
		cond := &exprtree.BinaryOp{Op: "==", Left: cloneRef(subject), Right: key, SpanVal: toSpan(keyExpr.Span())}
		branches = append(branches, exprtree.IfBranch{Cond: cond, Then: val})
	}
	var elseNode exprtree.Node
	if hasDefault {
		elseNode = l.lowerArg(rest[len(rest)-1])
	}
	return &exprtree.If{Branches: branches, Else: elseNode, SpanVal: toSpan(e.Span())}
}

// cloneRef duplicates a reference to the case subject for each comparison
// branch. Nodes are immutable value producers with no shared mutable state,
// so the same pointer is simply reused rather than deep-copied.
func cloneRef(n exprtree.Node) exprtree.Node { return n }
