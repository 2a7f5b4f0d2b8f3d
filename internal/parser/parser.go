// Package parser implements Kuiper's expression parser using Pratt
// (operator-precedence) parsing: a prefix-parse-function table for primaries
// and unary operators, an infix-parse-function table plus a precedence map
// for binary operators, matching the teacher's own parser idiom.
package parser

import (
	"strconv"

	"github.com/cognitedata/kuiper/internal/ast"
	"github.com/cognitedata/kuiper/internal/kerrors"
	"github.com/cognitedata/kuiper/internal/lexer"
)

// Precedence levels, lowest to highest, per spec.md §4.2.
const (
	_ int = iota
	LOWEST
	OR          // ||
	AND         // &&
	EQUALS      // == !=
	COMPARE     // < <= > >= is
	SUM         // + -
	PRODUCT     // * / %
	PREFIX      // unary ! -
	POSTFIX     // selector / call chain
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:       OR,
	lexer.AND:      AND,
	lexer.EQ:       EQUALS,
	lexer.NOT_EQ:   EQUALS,
	lexer.LT:       COMPARE,
	lexer.LT_EQ:    COMPARE,
	lexer.GT:       COMPARE,
	lexer.GT_EQ:    COMPARE,
	lexer.IS:       COMPARE,
	lexer.PLUS:     SUM,
	lexer.MINUS:    SUM,
	lexer.STAR:     PRODUCT,
	lexer.SLASH:    PRODUCT,
	lexer.PERCENT:  PRODUCT,
	lexer.DOT:      POSTFIX,
	lexer.LBRACKET: POSTFIX,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser turns a token stream into a single Kuiper Expression AST.
type Parser struct {
	lex    *lexer.Lexer
	source string

	cur  lexer.Token
	peek lexer.Token

	// inArgPosition is true exactly while parsing an argument of a call,
	// the one place `name =>`/`(names) =>` is legal (spec.md §4.2).
	inArgPosition bool

	errors []*kerrors.Error

	prefixFns map[lexer.TokenType]prefixParseFn
	infixFns  map[lexer.TokenType]infixParseFn
}

// New constructs a Parser over source text, lexing it on demand.
func New(source string) *Parser {
	p := &Parser{lex: lexer.New(source), source: source}

	p.prefixFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:    p.parseIdentifierOrCall,
		lexer.INT:      p.parseIntegerLiteral,
		lexer.FLOAT:    p.parseFloatLiteral,
		lexer.STRING:   p.parseStringLiteral,
		lexer.TRUE:     p.parseBooleanLiteral,
		lexer.FALSE:    p.parseBooleanLiteral,
		lexer.NULL:     p.parseNullLiteral,
		lexer.LPAREN:   p.parseGroupedOrLambda,
		lexer.LBRACKET: p.parseArrayLiteral,
		lexer.LBRACE:   p.parseObjectLiteral,
		lexer.BANG:     p.parseUnaryExpression,
		lexer.MINUS:    p.parseUnaryExpression,
	}

	p.infixFns = map[lexer.TokenType]infixParseFn{
		lexer.OR:       p.parseBinaryExpression,
		lexer.AND:      p.parseBinaryExpression,
		lexer.EQ:       p.parseBinaryExpression,
		lexer.NOT_EQ:   p.parseBinaryExpression,
		lexer.LT:       p.parseBinaryExpression,
		lexer.LT_EQ:    p.parseBinaryExpression,
		lexer.GT:       p.parseBinaryExpression,
		lexer.GT_EQ:    p.parseBinaryExpression,
		lexer.IS:       p.parseIsExpression,
		lexer.PLUS:     p.parseBinaryExpression,
		lexer.MINUS:    p.parseBinaryExpression,
		lexer.STAR:     p.parseBinaryExpression,
		lexer.SLASH:    p.parseBinaryExpression,
		lexer.PERCENT:  p.parseBinaryExpression,
		lexer.DOT:      p.parseSelectorOrMethodCall,
		lexer.LBRACKET: p.parseIndexSelector,
	}

	p.next()
	p.next()
	return p
}

// Parse parses the whole source as a single expression, returning any
// accumulated parse errors (lexer errors are folded in too).
func Parse(source string) (ast.Expression, []*kerrors.Error) {
	p := New(source)
	expr := p.parseExpression(LOWEST)
	if p.cur.Type != lexer.EOF {
		p.errorf(kerrors.KindUnexpectedToken, p.cur.Span, "unexpected trailing token %q", p.cur.Literal)
	}
	return expr, p.errors
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lex.NextToken()
}

func (p *Parser) errorf(kind kerrors.Kind, span lexer.Span, format string, args ...interface{}) {
	p.errors = append(p.errors, kerrors.New(kerrors.StageParse, kind, kerrors.Span{Start: span.Start, End: span.End}, p.source, format, args...))
}

func (p *Parser) expect(t lexer.TokenType) lexer.Token {
	if p.cur.Type != t {
		kind := kerrors.KindUnexpectedToken
		if p.cur.Type == lexer.EOF {
			kind = kerrors.KindUnexpectedEOF
		}
		p.errorf(kind, p.cur.Span, "expected %s, got %s", t, p.cur.Type)
		tok := p.cur
		return tok
	}
	tok := p.cur
	p.next()
	return tok
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	return LOWEST
}

// parseExpression is the Pratt-parsing core: one prefix parse, then a loop
// of infix parses while the upcoming operator binds tighter than minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	prefix, ok := p.prefixFns[p.cur.Type]
	if !ok {
		kind := kerrors.KindUnexpectedToken
		if p.cur.Type == lexer.EOF {
			kind = kerrors.KindUnexpectedEOF
		}
		p.errorf(kind, p.cur.Span, "unexpected token %q", p.cur.Literal)
		p.next()
		return &ast.NullLiteral{Token: p.cur}
	}
	left := prefix()

	for minPrec < p.curPrecedence() {
		infix, ok := p.infixFns[p.cur.Type]
		if !ok {
			return left
		}
		left = infix(left)
		// Fold each postfix step onto the selector it extends, so a chain
		// such as a.b[0].c is one SelectorExpression with three steps.
		if sel, ok := left.(*ast.SelectorExpression); ok {
			if inner, ok := sel.Receiver.(*ast.SelectorExpression); ok {
				inner.Steps = append(inner.Steps, sel.Steps...)
				left = inner
			}
		}
	}
	return left
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	tok := p.cur
	var v uint64
	for _, r := range tok.Literal {
		v = v*10 + uint64(r-'0')
	}
	p.next()
	return &ast.IntegerLiteral{Token: tok, Value: v}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	tok := p.cur
	v := tok.Type == lexer.TRUE
	p.next()
	return &ast.BooleanLiteral{Token: tok, Value: v}
}

func (p *Parser) parseNullLiteral() ast.Expression {
	tok := p.cur
	p.next()
	return &ast.NullLiteral{Token: tok}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	tok := p.cur
	p.next()
	return &ast.StringLiteral{Token: tok, Value: tok.Literal}
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	tok := p.cur
	p.next()
	operand := p.parseExpression(PREFIX)
	return &ast.UnaryExpression{Token: tok, Operator: tok.Literal, Operand: operand}
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	prec := precedences[tok.Type]
	p.next()
	right := p.parseExpression(prec)
	return &ast.BinaryExpression{Token: tok, Operator: tok.Literal, Left: left, Right: right}
}

// parseIsExpression handles both `expr is TYPE` and `expr is not TYPE`.
func (p *Parser) parseIsExpression(left ast.Expression) ast.Expression {
	tok := p.cur
	p.next()
	negated := false
	if p.cur.Type == lexer.NOT {
		negated = true
		p.next()
	}
	typeTok, typeName, ok := p.parseTypeLiteral()
	if !ok {
		p.errorf(kerrors.KindUnexpectedToken, p.cur.Span, "expected a type literal after 'is', got %q", p.cur.Literal)
	}
	return &ast.IsExpression{Token: tok, Operand: left, TypeName: typeName, TypeToken: typeTok, Negated: negated}
}

func (p *Parser) parseTypeLiteral() (lexer.Token, string, bool) {
	tok := p.cur
	switch tok.Type {
	case lexer.TYPE_INT:
		p.next()
		return tok, "int", true
	case lexer.TYPE_FLOAT:
		p.next()
		return tok, "float", true
	case lexer.TYPE_NUMBER:
		p.next()
		return tok, "number", true
	case lexer.TYPE_STRING:
		p.next()
		return tok, "string", true
	case lexer.TYPE_BOOL:
		p.next()
		return tok, "bool", true
	case lexer.TYPE_ARRAY:
		p.next()
		return tok, "array", true
	case lexer.TYPE_OBJECT:
		p.next()
		return tok, "object", true
	case lexer.NULL:
		p.next()
		return tok, "null", true
	default:
		return tok, "", false
	}
}

func (p *Parser) parseGroupedOrLambda() ast.Expression {
	startTok := p.cur
	// Lambda params `(a, b) => body` are only legal where an argument is
	// expected; elsewhere `(expr)` is always grouping. Disambiguate by
	// scanning ahead: `(` IDENT (',' IDENT)* ')' '=>' is a lambda header.
	if p.inArgPosition && p.looksLikeLambdaParams() {
		return p.parseLambda(startTok)
	}
	p.next() // consume '('
	inner := p.parseExpression(LOWEST)
	p.expect(lexer.RPAREN)
	return inner
}

// looksLikeLambdaParams performs bounded lookahead over the lexer without
// consuming tokens from the parser's own cur/peek state, by running a
// throwaway sub-lexer from the current span onward.
func (p *Parser) looksLikeLambdaParams() bool {
	sub := lexer.New(p.source[p.cur.Span.Start:])
	tok := sub.NextToken()
	if tok.Type != lexer.LPAREN {
		return false
	}
	tok = sub.NextToken()
	if tok.Type == lexer.RPAREN {
		tok = sub.NextToken()
		return tok.Type == lexer.ARROW
	}
	for {
		if tok.Type != lexer.IDENT {
			return false
		}
		tok = sub.NextToken()
		if tok.Type == lexer.COMMA {
			tok = sub.NextToken()
			continue
		}
		if tok.Type == lexer.RPAREN {
			tok = sub.NextToken()
			return tok.Type == lexer.ARROW
		}
		return false
	}
}

func (p *Parser) parseLambda(startTok lexer.Token) ast.Expression {
	p.expect(lexer.LPAREN)
	var params []ast.Identifier
	for p.cur.Type != lexer.RPAREN {
		nameTok := p.expect(lexer.IDENT)
		params = append(params, ast.Identifier{Token: nameTok, Value: nameTok.Literal})
		if p.cur.Type == lexer.COMMA {
			p.next()
		}
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.ARROW)
	body := p.parseLambdaBody()
	return &ast.LambdaExpression{Token: startTok, Params: params, Body: body}
}

// parseLambdaBody parses the body at LOWEST precedence but outside
// argument position, so nested parens inside the body are never
// misread as a further lambda header.
func (p *Parser) parseLambdaBody() ast.Expression {
	wasArg := p.inArgPosition
	p.inArgPosition = false
	body := p.parseExpression(LOWEST)
	p.inArgPosition = wasArg
	return body
}

// parseIdentifierOrCall handles a bare identifier, a bare call `name(args)`,
// and a single-param lambda `name => body`.
func (p *Parser) parseIdentifierOrCall() ast.Expression {
	tok := p.cur
	if p.inArgPosition && p.peek.Type == lexer.ARROW {
		p.next() // consume the identifier
		p.next() // consume '=>'
		body := p.parseLambdaBody()
		return &ast.LambdaExpression{
			Token:  tok,
			Params: []ast.Identifier{{Token: tok, Value: tok.Literal}},
			Body:   body,
		}
	}
	p.next()
	if p.cur.Type == lexer.LPAREN {
		return p.parseCallArgs(tok, tok.Literal)
	}
	return &ast.Identifier{Token: tok, Value: tok.Literal}
}

// parseCallArgs parses `(args…)` for a call whose name/start token and
// already-known leading args (used by method-call desugaring) are given.
func (p *Parser) parseCallArgs(startTok lexer.Token, name string, leading ...ast.Expression) *ast.CallExpression {
	p.expect(lexer.LPAREN)
	args := append([]ast.Expression{}, leading...)
	wasArg := p.inArgPosition
	p.inArgPosition = true
	for p.cur.Type != lexer.RPAREN && p.cur.Type != lexer.EOF {
		args = append(args, p.parseExpression(LOWEST))
		if p.cur.Type == lexer.COMMA {
			p.next()
		} else {
			break
		}
	}
	p.inArgPosition = wasArg
	endTok := p.expect(lexer.RPAREN)
	return &ast.CallExpression{Token: startTok, EndToken: endTok, Name: name, Args: args}
}

// parseSelectorOrMethodCall consumes one `.name` or `.name(args)` step.
// A trailing `(args)` desugars into Function(name, [receiver, args…]).
func (p *Parser) parseSelectorOrMethodCall(left ast.Expression) ast.Expression {
	dotTok := p.cur
	p.next() // consume '.'
	nameTok := p.expect(lexer.IDENT)
	if p.cur.Type == lexer.LPAREN {
		return p.parseCallArgs(nameTok, nameTok.Literal, left)
	}
	return &ast.SelectorExpression{
		Receiver: left,
		Steps:    []ast.SelectorStep{{Name: nameTok.Literal, IsLiteral: true, Token: dotTok}},
	}
}

func (p *Parser) parseIndexSelector(left ast.Expression) ast.Expression {
	brTok := p.cur
	p.next() // consume '['
	wasArg := p.inArgPosition
	p.inArgPosition = false
	idx := p.parseExpression(LOWEST)
	p.inArgPosition = wasArg
	p.expect(lexer.RBRACKET)
	return &ast.SelectorExpression{
		Receiver: left,
		Steps:    []ast.SelectorStep{{Index: idx, Token: brTok}},
	}
}

func (p *Parser) parseArrayLiteral() ast.Expression {
	startTok := p.cur
	p.next() // consume '['
	var elems []ast.ArrayElement
	wasArg := p.inArgPosition
	p.inArgPosition = true
	for p.cur.Type != lexer.RBRACKET && p.cur.Type != lexer.EOF {
		spread := false
		if p.cur.Type == lexer.SPREAD {
			spread = true
			p.next()
		}
		elems = append(elems, ast.ArrayElement{Value: p.parseExpression(LOWEST), Spread: spread})
		if p.cur.Type == lexer.COMMA {
			p.next()
		} else {
			break
		}
	}
	p.inArgPosition = wasArg
	endTok := p.expect(lexer.RBRACKET)
	return &ast.ArrayLiteral{Token: startTok, EndToken: endTok, Elements: elems}
}

func (p *Parser) parseObjectLiteral() ast.Expression {
	startTok := p.cur
	p.next() // consume '{'
	var entries []ast.ObjectEntry
	wasArg := p.inArgPosition
	p.inArgPosition = true
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		if p.cur.Type == lexer.SPREAD {
			p.next()
			entries = append(entries, ast.ObjectEntry{Value: p.parseExpression(LOWEST), Spread: true})
		} else {
			key := p.parseExpression(LOWEST)
			p.expect(lexer.COLON)
			val := p.parseExpression(LOWEST)
			entries = append(entries, ast.ObjectEntry{Key: key, Value: val})
		}
		if p.cur.Type == lexer.COMMA {
			p.next()
		} else {
			break
		}
	}
	p.inArgPosition = wasArg
	endTok := p.expect(lexer.RBRACE)
	return &ast.ObjectLiteral{Token: startTok, EndToken: endTok, Entries: entries}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	tok := p.cur
	v, err := strconv.ParseFloat(tok.Literal, 64)
	if err != nil {
		p.errorf(kerrors.KindUnexpectedToken, tok.Span, "invalid float literal %q", tok.Literal)
	}
	p.next()
	return &ast.FloatLiteral{Token: tok, Value: v}
}
