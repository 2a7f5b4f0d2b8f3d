// Package ast defines the Abstract Syntax Tree node types produced by the
// parser. Kuiper source is a single expression, so unlike a statement-based
// language the tree has no Program/Statement split — every node is an
// Expression.
package ast

import (
	"strings"

	"github.com/cognitedata/kuiper/internal/lexer"
)

// Node is the base interface for all AST nodes.
type Node interface {
	// TokenLiteral returns the literal text of the token this node starts at.
	TokenLiteral() string

	// String returns a debug rendering of the node, not guaranteed to
	// round-trip to valid source.
	String() string

	// Pos returns the node's starting source position.
	Pos() lexer.Position

	// Span returns the node's byte span in the source.
	Span() lexer.Span
}

// Expression is any node that produces a value; every Kuiper AST node is one.
type Expression interface {
	Node
	expressionNode()
}

// Identifier is a bare name reference, resolved during lowering to either an
// input slot or a lambda-parameter slot.
type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) Pos() lexer.Position  { return i.Token.Pos }
func (i *Identifier) Span() lexer.Span     { return i.Token.Span }

// IntegerLiteral is an unsigned integer literal (the lexer only ever
// produces nonnegative integer tokens; unary minus is a separate node).
type IntegerLiteral struct {
	Token lexer.Token
	Value uint64
}

func (l *IntegerLiteral) expressionNode()      {}
func (l *IntegerLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *IntegerLiteral) String() string       { return l.Token.Literal }
func (l *IntegerLiteral) Pos() lexer.Position  { return l.Token.Pos }
func (l *IntegerLiteral) Span() lexer.Span     { return l.Token.Span }

// FloatLiteral is a floating-point literal, including scientific notation.
type FloatLiteral struct {
	Token lexer.Token
	Value float64
}

func (l *FloatLiteral) expressionNode()      {}
func (l *FloatLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *FloatLiteral) String() string       { return l.Token.Literal }
func (l *FloatLiteral) Pos() lexer.Position  { return l.Token.Pos }
func (l *FloatLiteral) Span() lexer.Span     { return l.Token.Span }

// StringLiteral is a quoted string literal with escapes already resolved.
type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (l *StringLiteral) expressionNode()      {}
func (l *StringLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *StringLiteral) String() string       { return "\"" + l.Value + "\"" }
func (l *StringLiteral) Pos() lexer.Position  { return l.Token.Pos }
func (l *StringLiteral) Span() lexer.Span     { return l.Token.Span }

// BooleanLiteral is the `true`/`false` keyword literal.
type BooleanLiteral struct {
	Token lexer.Token
	Value bool
}

func (l *BooleanLiteral) expressionNode()      {}
func (l *BooleanLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *BooleanLiteral) String() string       { return l.Token.Literal }
func (l *BooleanLiteral) Pos() lexer.Position  { return l.Token.Pos }
func (l *BooleanLiteral) Span() lexer.Span     { return l.Token.Span }

// NullLiteral is the `null` keyword literal.
type NullLiteral struct {
	Token lexer.Token
}

func (l *NullLiteral) expressionNode()      {}
func (l *NullLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *NullLiteral) String() string       { return "null" }
func (l *NullLiteral) Pos() lexer.Position  { return l.Token.Pos }
func (l *NullLiteral) Span() lexer.Span     { return l.Token.Span }

// ArrayElement is either a plain expression or `...expr` spread.
type ArrayElement struct {
	Value  Expression
	Spread bool
}

// ArrayLiteral is `[elem_or_spread, …]`.
type ArrayLiteral struct {
	Token    lexer.Token // the '['
	EndToken lexer.Token // the ']'
	Elements []ArrayElement
}

func (l *ArrayLiteral) expressionNode()      {}
func (l *ArrayLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *ArrayLiteral) Pos() lexer.Position  { return l.Token.Pos }
func (l *ArrayLiteral) Span() lexer.Span {
	return lexer.Span{Start: l.Token.Span.Start, End: l.EndToken.Span.End}
}
func (l *ArrayLiteral) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		if e.Spread {
			parts[i] = "..." + e.Value.String()
		} else {
			parts[i] = e.Value.String()
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ObjectEntry is either a `key: value` pair or a `...expr` spread.
type ObjectEntry struct {
	Key    Expression // nil when Spread is true
	Value  Expression
	Spread bool
}

// ObjectLiteral is `{ key_expr_or_spread: value_expr, … }`.
type ObjectLiteral struct {
	Token    lexer.Token // the '{'
	EndToken lexer.Token // the '}'
	Entries  []ObjectEntry
}

func (l *ObjectLiteral) expressionNode()      {}
func (l *ObjectLiteral) TokenLiteral() string { return l.Token.Literal }
func (l *ObjectLiteral) Pos() lexer.Position  { return l.Token.Pos }
func (l *ObjectLiteral) Span() lexer.Span {
	return lexer.Span{Start: l.Token.Span.Start, End: l.EndToken.Span.End}
}
func (l *ObjectLiteral) String() string {
	parts := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		if e.Spread {
			parts[i] = "..." + e.Value.String()
		} else {
			parts[i] = e.Key.String() + ": " + e.Value.String()
		}
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// BinaryExpression is `lhs op rhs`.
type BinaryExpression struct {
	Token    lexer.Token // the operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (e *BinaryExpression) expressionNode()      {}
func (e *BinaryExpression) TokenLiteral() string { return e.Token.Literal }
func (e *BinaryExpression) Pos() lexer.Position  { return e.Left.Pos() }
func (e *BinaryExpression) Span() lexer.Span {
	return lexer.Span{Start: e.Left.Span().Start, End: e.Right.Span().End}
}
func (e *BinaryExpression) String() string {
	return "(" + e.Left.String() + " " + e.Operator + " " + e.Right.String() + ")"
}

// UnaryExpression is `op operand` (`!` or unary `-`).
type UnaryExpression struct {
	Token    lexer.Token // the operator token
	Operator string
	Operand  Expression
}

func (e *UnaryExpression) expressionNode()      {}
func (e *UnaryExpression) TokenLiteral() string { return e.Token.Literal }
func (e *UnaryExpression) Pos() lexer.Position  { return e.Token.Pos }
func (e *UnaryExpression) Span() lexer.Span {
	return lexer.Span{Start: e.Token.Span.Start, End: e.Operand.Span().End}
}
func (e *UnaryExpression) String() string {
	return "(" + e.Operator + e.Operand.String() + ")"
}

// IsExpression is `expr is TypeLiteral` / `expr is not TypeLiteral`.
type IsExpression struct {
	Token     lexer.Token // the `is` token
	Operand   Expression
	TypeName  string // one of "int" "float" "number" "string" "bool" "array" "object" "null"
	TypeToken lexer.Token
	Negated   bool
}

func (e *IsExpression) expressionNode()      {}
func (e *IsExpression) TokenLiteral() string { return e.Token.Literal }
func (e *IsExpression) Pos() lexer.Position  { return e.Operand.Pos() }
func (e *IsExpression) Span() lexer.Span {
	return lexer.Span{Start: e.Operand.Span().Start, End: e.TypeToken.Span.End}
}
func (e *IsExpression) String() string {
	if e.Negated {
		return "(" + e.Operand.String() + " is not " + e.TypeName + ")"
	}
	return "(" + e.Operand.String() + " is " + e.TypeName + ")"
}

// SelectorStep is one link in a postfix chain: `.name` or `[expr]`.
type SelectorStep struct {
	Name      string // set when the step is a literal `.name`
	IsLiteral bool
	Index     Expression // set when the step is `[expr]`
	Token     lexer.Token
}

// SelectorExpression is a chain of field/index accesses off a receiver.
type SelectorExpression struct {
	Receiver Expression
	Steps    []SelectorStep
}

func (e *SelectorExpression) expressionNode()      {}
func (e *SelectorExpression) TokenLiteral() string { return e.Receiver.TokenLiteral() }
func (e *SelectorExpression) Pos() lexer.Position  { return e.Receiver.Pos() }
func (e *SelectorExpression) Span() lexer.Span {
	end := e.Receiver.Span().End
	if n := len(e.Steps); n > 0 {
		last := e.Steps[n-1]
		if last.IsLiteral {
			end = last.Token.Span.End
		} else {
			end = last.Index.Span().End
		}
	}
	return lexer.Span{Start: e.Receiver.Span().Start, End: end}
}
func (e *SelectorExpression) String() string {
	var sb strings.Builder
	sb.WriteString(e.Receiver.String())
	for _, s := range e.Steps {
		if s.IsLiteral {
			sb.WriteString(".")
			sb.WriteString(s.Name)
		} else {
			sb.WriteString("[")
			sb.WriteString(s.Index.String())
			sb.WriteString("]")
		}
	}
	return sb.String()
}

// CallExpression is `callee(args…)`, where callee names a built-in
// function. A method-call form `recv.name(args)` desugars, during
// parsing, into a CallExpression whose Args are prefixed with the receiver.
type CallExpression struct {
	Token    lexer.Token // the callee identifier token
	EndToken lexer.Token // the ')'
	Name     string
	Args     []Expression
}

func (e *CallExpression) expressionNode()      {}
func (e *CallExpression) TokenLiteral() string { return e.Token.Literal }
func (e *CallExpression) Pos() lexer.Position  { return e.Token.Pos }
func (e *CallExpression) Span() lexer.Span {
	return lexer.Span{Start: e.Token.Span.Start, End: e.EndToken.Span.End}
}
func (e *CallExpression) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return e.Name + "(" + strings.Join(parts, ", ") + ")"
}

// LambdaExpression is `name => body` or `(name, name, …) => body`, legal
// only where the parser expects a function argument position.
type LambdaExpression struct {
	Token  lexer.Token // the first token (either the lone param or '(')
	Params []Identifier
	Body   Expression
}

func (e *LambdaExpression) expressionNode()      {}
func (e *LambdaExpression) TokenLiteral() string { return e.Token.Literal }
func (e *LambdaExpression) Pos() lexer.Position  { return e.Token.Pos }
func (e *LambdaExpression) Span() lexer.Span {
	return lexer.Span{Start: e.Token.Span.Start, End: e.Body.Span().End}
}
func (e *LambdaExpression) String() string {
	names := make([]string, len(e.Params))
	for i, p := range e.Params {
		names[i] = p.Value
	}
	if len(names) == 1 {
		return names[0] + " => " + e.Body.String()
	}
	return "(" + strings.Join(names, ", ") + ") => " + e.Body.String()
}
