package parser

import (
	"errors"
	"testing"

	"calc/engine/ast"
	"calc/engine/lexer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, text string, opts ...Option) (ast.Node, error) {
	l, err := lexer.Lex(text)
	require.NoError(t, err, text)
	return Parse(l, opts...)
}

func num(n int32) ast.Node {
	return ast.MakeNumber(n)
}

func bin(l ast.Node, op lexer.OperatorType, r ast.Node) ast.Node {
	return ast.MakeBinary(l, op, r)
}

func testValid(t *testing.T, text string, expected ast.Node) {
	found, err := parse(t, text)
	require.NoError(t, err, text)
	assert.True(t, expected.Equals(found), "%s: expected %s, found %s", text, ast.Print(expected), ast.Print(found))
}

func testError(t *testing.T, text string, kind error, offset int, found string) {
	node, err := parse(t, text)
	assert.Nil(t, node, text)
	require.Error(t, err, text)
	assert.True(t, errors.Is(err, kind), "%s: unexpected error %v", text, err)
	var perr *Error
	require.True(t, errors.As(err, &perr), text)
	assert.Equal(t, offset, perr.Offset, text)
	assert.Equal(t, found, perr.Found, text)
}

func TestParser(t *testing.T) {
	testValid(t, "1+2*3", bin(num(1), lexer.Plus, bin(num(2), lexer.Mul, num(3))))
	testValid(t, "42", num(42))
	testValid(t, " ( 42 ) ", num(42))
	testValid(t, "(1+2)*3", bin(bin(num(1), lexer.Plus, num(2)), lexer.Mul, num(3)))
	testValid(t, "(1+2)*3+4/2",
		bin(
			bin(bin(num(1), lexer.Plus, num(2)), lexer.Mul, num(3)),
			lexer.Plus,
			bin(num(4), lexer.Div, num(2)),
		),
	)
	testValid(t, "((7))", num(7))
}

func TestParser_LeftAssociative(t *testing.T) {
	testValid(t, "8-3-2", bin(bin(num(8), lexer.Sub, num(3)), lexer.Sub, num(2)))
	testValid(t, "1+2-3+4",
		bin(bin(bin(num(1), lexer.Plus, num(2)), lexer.Sub, num(3)), lexer.Plus, num(4)),
	)
	testValid(t, "64/4/2", bin(bin(num(64), lexer.Div, num(4)), lexer.Div, num(2)))
	testValid(t, "2*3/4*5",
		bin(bin(bin(num(2), lexer.Mul, num(3)), lexer.Div, num(4)), lexer.Mul, num(5)),
	)
	testValid(t, "8-(3-2)", bin(num(8), lexer.Sub, bin(num(3), lexer.Sub, num(2))))
}

func TestParser_Unary(t *testing.T) {
	testValid(t, "-1+2", bin(ast.MakeNeg(num(1)), lexer.Plus, num(2)))
	testValid(t, "2*-3", bin(num(2), lexer.Mul, ast.MakeNeg(num(3))))
	testValid(t, "1--2", bin(num(1), lexer.Sub, ast.MakeNeg(num(2))))
	testValid(t, "-(1+2)", ast.MakeNeg(bin(num(1), lexer.Plus, num(2))))
	testValid(t, "(-1)", ast.MakeNeg(num(1)))
	testValid(t, "-(-1)", ast.MakeNeg(ast.MakeNeg(num(1))))
}

func TestParser_UnaryRejected(t *testing.T) {
	testError(t, "--1+2", ErrUnmatch, 1, "-")
	testError(t, "1---2", ErrUnmatch, 3, "-")
	testError(t, "+1", ErrUnmatch, 0, "+")
	testError(t, "2*+3", ErrUnmatch, 2, "+")
	testError(t, "-", ErrUnmatch, 1, "")
}

func TestParser_Unmatch(t *testing.T) {
	testError(t, "", ErrUnmatch, 0, "")
	testError(t, "   ", ErrUnmatch, 3, "")
	testError(t, "1+2*", ErrUnmatch, 4, "")
	testError(t, "1 2", ErrUnmatch, 2, "2")
	testError(t, "(1)2", ErrUnmatch, 3, "2")
	testError(t, "2(3)", ErrUnmatch, 1, "(")
	testError(t, "()", ErrUnmatch, 1, ")")
	testError(t, "*3", ErrUnmatch, 0, "*")
	testError(t, ")", ErrUnmatch, 0, ")")
}

func TestParser_Brackets(t *testing.T) {
	testError(t, "(1+2", ErrMissingBracket, 0, "")
	testError(t, "((1+2)", ErrMissingBracket, 0, "")
	testError(t, "(1+(2", ErrMissingBracket, 3, "")
	testError(t, "2 * (3 + (4)", ErrMissingBracket, 4, "")
	// an invalid group body is reported before the missing bracket
	testError(t, "(1+", ErrUnmatch, 3, "")
	testError(t, "(1 2", ErrUnmatch, 3, "2")
}

func TestParser_TrailingRightBracket(t *testing.T) {
	// a stray ')' ends the top level expression like end of input does
	testValid(t, "1+2)", bin(num(1), lexer.Plus, num(2)))
	testValid(t, "1*2)3", bin(num(1), lexer.Mul, num(2)))

	l, err := lexer.Lex("(1))+5")
	require.NoError(t, err)
	node, err := Parse(l)
	require.NoError(t, err)
	assert.True(t, num(1).Equals(node))
	// the cursor stops at the unmatched bracket
	assert.True(t, lexer.MakeBracket(lexer.Right).Equal(l.Peek().MustGet()))
	assert.Equal(t, 3, l.Offset())
}

func TestParser_MaxDepth(t *testing.T) {
	node, err := parse(t, "((1))", WithMaxDepth(2))
	require.NoError(t, err)
	assert.True(t, num(1).Equals(node))

	_, err = parse(t, "(((1)))", WithMaxDepth(2))
	assert.True(t, errors.Is(err, ErrTooDeep))
	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Offset)

	// siblings do not add up
	_, err = parse(t, "((1)+(2))*((3))", WithMaxDepth(2))
	assert.NoError(t, err)
}

func TestParser_LongChain(t *testing.T) {
	text := "1"
	for i := 0; i < 1000; i++ {
		text += "+1"
	}
	node, err := parse(t, text)
	require.NoError(t, err)
	assert.Equal(t, 1001, ast.Depth(node))
}

func TestParser_ReusesParser(t *testing.T) {
	l, err := lexer.Lex("1+1")
	require.NoError(t, err)
	p := New(l)
	node, err := p.Parse()
	require.NoError(t, err)
	assert.True(t, bin(num(1), lexer.Plus, num(1)).Equals(node))
	// the stream is consumed, parsing again sees end of input
	_, err = p.Parse()
	assert.True(t, errors.Is(err, ErrUnmatch))
}

func TestError_Message(t *testing.T) {
	_, err := parse(t, "1 2")
	assert.EqualError(t, err, "unexpected token at offset 2: found '2'")
	_, err = parse(t, "(1")
	assert.EqualError(t, err, "missing closing bracket at offset 0: found end of input")
}
