// Package parser builds an ast.Node from a token stream using a recursive
// descent over the following LL(1) grammar:
//
//	E  -> T E'
//	E' -> + T E' | - T E' | ε
//	T  -> V T'
//	T' -> * V T' | / V T' | ε
//	V  -> - F | F
//	F  -> Number | ( E )
//
// Precedence lives in the shape of the grammar: a whole T is built before E'
// sees it. E' and T' carry the operand built so far and fold each new operator
// into it, which keeps chains like 8-3-2 left associative.
package parser

import (
	"errors"
	"fmt"

	"calc/engine/ast"
	"calc/engine/lexer"
	"calc/lib/stack"
)

var (
	ErrUnmatch        = errors.New("unexpected token")
	ErrMissingBracket = errors.New("missing closing bracket")
	ErrTooDeep        = errors.New("brackets nested too deeply")
)

// Error wraps one of the parse sentinels with the source offset it applies
// to. Found is the lexeme at that point, empty at end of input.
type Error struct {
	Kind   error
	Offset int
	Found  string
}

func (e *Error) Error() string {
	found := "end of input"
	if e.Found != "" {
		found = fmt.Sprintf("'%s'", e.Found)
	}
	return fmt.Sprintf("%v at offset %d: found %s", e.Kind, e.Offset, found)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

type Option func(*Parser)

// WithMaxDepth bounds how deeply brackets may nest. Zero means unbounded.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

type Parser struct {
	lexer    *lexer.Lexer
	maxDepth int
	// source offsets of the currently open brackets
	open stack.Stack[int]
}

func New(l *lexer.Lexer, opts ...Option) *Parser {
	p := &Parser{lexer: l, open: stack.New[int](8)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse consumes tokens from l and returns the root of the expression tree.
func Parse(l *lexer.Lexer, opts ...Option) (ast.Node, error) {
	return New(l, opts...).Parse()
}

func (p *Parser) Parse() (ast.Node, error) {
	return p.e()
}

// E -> T E'
func (p *Parser) e() (ast.Node, error) {
	t, err := p.t()
	if err != nil {
		return nil, err
	}
	return p.equote(t)
}

// E' -> + T E' | - T E' | ε
func (p *Parser) equote(val ast.Node) (ast.Node, error) {
	next := p.lexer.Peek()
	if next.IsAbsent() {
		return val, nil
	}
	tok := next.MustGet()
	switch {
	case tok.IsOperator(lexer.Plus, lexer.Sub):
		p.lexer.Next()
		t, err := p.t()
		if err != nil {
			return nil, err
		}
		return p.equote(ast.Binary{Left: val, Op: tok.Op, Right: t})
	case tok.IsBracket(lexer.Right):
		return val, nil
	default:
		return nil, p.unmatch()
	}
}

// T -> V T'
func (p *Parser) t() (ast.Node, error) {
	v, err := p.v()
	if err != nil {
		return nil, err
	}
	return p.tquote(v)
}

// T' -> * V T' | / V T' | ε
func (p *Parser) tquote(val ast.Node) (ast.Node, error) {
	next := p.lexer.Peek()
	if next.IsAbsent() {
		return val, nil
	}
	tok := next.MustGet()
	switch {
	case tok.IsOperator(lexer.Mul, lexer.Div):
		p.lexer.Next()
		v, err := p.v()
		if err != nil {
			return nil, err
		}
		return p.tquote(ast.Binary{Left: val, Op: tok.Op, Right: v})
	case tok.IsOperator(lexer.Plus, lexer.Sub), tok.IsBracket(lexer.Right):
		return val, nil
	default:
		return nil, p.unmatch()
	}
}

// V -> - F | F
//
// Only a single leading minus is accepted; "--1" fails in F.
func (p *Parser) v() (ast.Node, error) {
	if tok, ok := p.lexer.Peek().Get(); ok && tok.IsOperator(lexer.Sub) {
		p.lexer.Next()
		f, err := p.f()
		if err != nil {
			return nil, err
		}
		return ast.Unary{Op: lexer.Sub, Child: f}, nil
	}
	return p.f()
}

// F -> Number | ( E )
func (p *Parser) f() (ast.Node, error) {
	next := p.lexer.Peek()
	if next.IsAbsent() {
		return nil, p.unmatch()
	}
	tok := next.MustGet()
	switch {
	case tok.Kind == lexer.Number:
		p.lexer.Next()
		return ast.Number{Value: tok.Value}, nil
	case tok.IsBracket(lexer.Left):
		return p.group(tok)
	default:
		return nil, p.unmatch()
	}
}

func (p *Parser) group(open lexer.Token) (ast.Node, error) {
	if p.maxDepth > 0 && p.open.Len() >= p.maxDepth {
		return nil, &Error{Kind: ErrTooDeep, Offset: open.Offset, Found: open.String()}
	}
	p.lexer.Next()
	p.open.Push(open.Offset)
	defer p.open.Pop()

	// an error inside the group takes priority over the missing bracket
	inner, err := p.e()
	if err != nil {
		return nil, err
	}
	found := ""
	if tok, ok := p.lexer.Peek().Get(); ok {
		found = tok.String()
	}
	if closing, ok := p.lexer.Next().Get(); !ok || !closing.IsBracket(lexer.Right) {
		offset, _ := p.open.Top()
		return nil, &Error{Kind: ErrMissingBracket, Offset: offset, Found: found}
	}
	return inner, nil
}

func (p *Parser) unmatch() error {
	found := ""
	if tok, ok := p.lexer.Peek().Get(); ok {
		found = tok.String()
	}
	return &Error{Kind: ErrUnmatch, Offset: p.lexer.Offset(), Found: found}
}
