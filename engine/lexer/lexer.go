package lexer

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/samber/mo"
)

var (
	ErrNumberFormat = errors.New("number out of range")
	ErrUnknownChar  = errors.New("unknown character")
	ErrLex          = errors.New("lexer error")
	ErrTooLong      = errors.New("too many tokens")
)

// Error is returned by Lex. It wraps one of ErrNumberFormat, ErrUnknownChar
// or ErrLex. Callers bounding input size report ErrTooLong through it as well.
type Error struct {
	Kind   error
	Offset int
	Text   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v at offset %d: '%s'", e.Kind, e.Offset, e.Text)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Lexer holds the full token sequence of an expression and a cursor into it.
// It is not safe for concurrent use.
type Lexer struct {
	tokens []Token
	pos    int
	end    int
}

// Lex scans the whole of text into tokens. Either every character is consumed
// or an error is returned and no tokens are exposed.
func Lex(text string) (*Lexer, error) {
	s := scanner{source: text}
	tokens := make([]Token, 0, len(text)/2+1)
	for !s.done() {
		ch := s.peek()
		start := s.cursor
		switch {
		case ch == ' ':
			s.cursor++
		case isDigit(ch):
			run := s.digits()
			n, err := strconv.ParseInt(run, 10, 32)
			if err != nil {
				return nil, &Error{Kind: ErrNumberFormat, Offset: start, Text: run}
			}
			tokens = append(tokens, Token{Kind: Number, Value: int32(n), Offset: start})
		case ch == '+' || ch == '-' || ch == '*' || ch == '/':
			op, err := ParseOperator(string(ch))
			if err != nil {
				return nil, &Error{Kind: ErrLex, Offset: start, Text: string(ch)}
			}
			tokens = append(tokens, Token{Kind: Operator, Op: op, Offset: start})
			s.cursor++
		case ch == '(':
			tokens = append(tokens, Token{Kind: Bracket, Side: Left, Offset: start})
			s.cursor++
		case ch == ')':
			tokens = append(tokens, Token{Kind: Bracket, Side: Right, Offset: start})
			s.cursor++
		default:
			return nil, &Error{Kind: ErrUnknownChar, Offset: start, Text: s.char()}
		}
	}
	return &Lexer{tokens: tokens, end: len(text)}, nil
}

// FromTokens creates a lexer positioned at the start of an existing sequence.
func FromTokens(tokens []Token) *Lexer {
	ts := make([]Token, len(tokens))
	copy(ts, tokens)
	end := 0
	if len(ts) > 0 {
		last := ts[len(ts)-1]
		end = last.Offset + len(last.String())
	}
	return &Lexer{tokens: ts, end: end}
}

// Peek returns the token under the cursor without consuming it, or None at
// the end of input.
func (l *Lexer) Peek() mo.Option[Token] {
	if l.pos >= len(l.tokens) {
		return mo.None[Token]()
	}
	return mo.Some(l.tokens[l.pos])
}

// Next returns the token under the cursor and advances past it.
func (l *Lexer) Next() mo.Option[Token] {
	ret := l.Peek()
	if ret.IsPresent() {
		l.pos++
	}
	return ret
}

// Offset returns the source offset of the token under the cursor, or the
// length of the source once the tokens are exhausted.
func (l *Lexer) Offset() int {
	if tok, ok := l.Peek().Get(); ok {
		return tok.Offset
	}
	return l.end
}

func (l *Lexer) Len() int {
	return len(l.tokens)
}

// Tokens returns a copy of the complete token sequence.
func (l *Lexer) Tokens() []Token {
	ret := make([]Token, len(l.tokens))
	copy(ret, l.tokens)
	return ret
}

type scanner struct {
	source string
	cursor int
}

func (s *scanner) done() bool {
	return s.cursor >= len(s.source)
}

func (s *scanner) peek() byte {
	return s.source[s.cursor]
}

// digits consumes the maximal run of decimal digits at the cursor.
func (s *scanner) digits() string {
	start := s.cursor
	for s.cursor < len(s.source) && isDigit(s.source[s.cursor]) {
		s.cursor++
	}
	return s.source[start:s.cursor]
}

// char returns the full utf-8 character at the cursor for error reporting.
func (s *scanner) char() string {
	for _, r := range s.source[s.cursor:] {
		return string(r)
	}
	return ""
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
