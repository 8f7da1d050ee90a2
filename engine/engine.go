package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calc/engine/ast"
	"calc/engine/interpreter"
	"calc/engine/lexer"
	"calc/engine/parser"
	"calc/lib/cache"
	"calc/lib/timer"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Result is everything produced while evaluating one expression.
type Result struct {
	Tokens []lexer.Token
	Ast    ast.Node
	Value  int32
}

type Option func(*Calculator)

// WithCache memoizes successful results by expression text.
func WithCache(c *cache.Local[Result]) Option {
	return func(calc *Calculator) {
		calc.cache = c
	}
}

// WithMaxDepth rejects expressions with brackets nested deeper than depth.
func WithMaxDepth(depth int) Option {
	return func(calc *Calculator) {
		calc.maxDepth = depth
	}
}

// WithCacheTTL expires memoized results after ttl. Zero keeps them until
// evicted.
func WithCacheTTL(ttl time.Duration) Option {
	return func(calc *Calculator) {
		calc.cacheTTL = ttl
	}
}

// WithMaxTokens rejects expressions that lex to more than n tokens.
func WithMaxTokens(n int) Option {
	return func(calc *Calculator) {
		calc.maxTokens = n
	}
}

type Calculator struct {
	logger    *zap.Logger
	cache     *cache.Local[Result]
	cacheTTL  time.Duration
	maxDepth  int
	maxTokens int
}

func NewCalculator(logger *zap.Logger, opts ...Option) Calculator {
	calc := Calculator{logger: logger}
	for _, opt := range opts {
		opt(&calc)
	}
	return calc
}

// Exec lexes, parses and evaluates text, stopping at the first error.
func (c Calculator) Exec(ctx context.Context, text string) (Result, error) {
	defer timer.Start("engine.exec").Stop()
	if c.cache != nil {
		if res, ok := c.cache.Get(text); ok {
			timer.Mark(ctx, "engine.cache_hit")
			return res, nil
		}
	}
	res, err := c.exec(ctx, text)
	if err != nil {
		c.logger.Debug("failed to evaluate expression",
			zap.String("expr", text),
			zap.String("stage", Stage(err)),
			zap.Error(err),
		)
		return Result{}, err
	}
	if c.cache != nil {
		if c.cacheTTL > 0 {
			c.cache.SetWithTTL(text, res, c.cacheTTL)
		} else {
			c.cache.Set(text, res)
		}
	}
	return res, nil
}

// Lex runs only the lexer stage.
func (c Calculator) Lex(ctx context.Context, text string) ([]lexer.Token, error) {
	l, err := c.lex(ctx, text)
	if err != nil {
		return nil, err
	}
	return l.Tokens(), nil
}

// Parse runs the lexer and parser stages without evaluating.
func (c Calculator) Parse(ctx context.Context, text string) (ast.Node, error) {
	l, err := c.lex(ctx, text)
	if err != nil {
		return nil, err
	}
	return c.parse(ctx, l)
}

// ParseTokens parses an already lexed token sequence. Error offsets past the
// last token point just after it.
func (c Calculator) ParseTokens(ctx context.Context, tokens []lexer.Token) (ast.Node, error) {
	if err := c.checkLen(tokens); err != nil {
		return nil, fmt.Errorf("could not lex expression: %w", err)
	}
	return c.parse(ctx, lexer.FromTokens(tokens))
}

func (c Calculator) exec(ctx context.Context, text string) (Result, error) {
	l, err := c.lex(ctx, text)
	if err != nil {
		return Result{}, err
	}
	tokens := l.Tokens()
	c.logger.Debug("lexed expression",
		zap.String("expr", text),
		zap.Strings("tokens", lo.Map(tokens, func(t lexer.Token, _ int) string { return t.String() })),
	)
	node, err := c.parse(ctx, l)
	if err != nil {
		return Result{}, err
	}
	c.logger.Debug("parsed expression", zap.String("expr", text), zap.Int("depth", ast.Depth(node)))
	return Result{Tokens: tokens, Ast: node, Value: c.eval(ctx, node)}, nil
}

func (c Calculator) lex(ctx context.Context, text string) (*lexer.Lexer, error) {
	defer timer.Start("engine.lex").Stop()
	defer timer.Mark(ctx, "engine.lex")
	l, err := lexer.Lex(text)
	if err == nil {
		err = c.checkLen(l.Tokens())
	}
	if err != nil {
		return nil, fmt.Errorf("could not lex expression: %w", err)
	}
	return l, nil
}

// checkLen reports the first token past the limit. Parsing and evaluation
// recurse once per operator.
func (c Calculator) checkLen(tokens []lexer.Token) error {
	if c.maxTokens <= 0 || len(tokens) <= c.maxTokens {
		return nil
	}
	tok := tokens[c.maxTokens]
	return &lexer.Error{Kind: lexer.ErrTooLong, Offset: tok.Offset, Text: tok.String()}
}

func (c Calculator) parse(ctx context.Context, l *lexer.Lexer) (ast.Node, error) {
	defer timer.Start("engine.parse").Stop()
	defer timer.Mark(ctx, "engine.parse")
	node, err := parser.Parse(l, parser.WithMaxDepth(c.maxDepth))
	if err != nil {
		return nil, fmt.Errorf("could not parse expression: %w", err)
	}
	return node, nil
}

func (c Calculator) eval(ctx context.Context, node ast.Node) int32 {
	defer timer.Start("engine.eval").Stop()
	defer timer.Mark(ctx, "engine.eval")
	return interpreter.Eval(node)
}

const (
	StageLex   = "lex"
	StageParse = "parse"
)

// Stage names the pipeline stage that produced err, or "" if err did not
// come from Exec.
func Stage(err error) string {
	var lerr *lexer.Error
	var perr *parser.Error
	switch {
	case errors.As(err, &lerr):
		return StageLex
	case errors.As(err, &perr):
		return StageParse
	default:
		return ""
	}
}
